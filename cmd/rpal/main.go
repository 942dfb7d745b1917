// Command rpal runs the RPAL interpreter: rpal <filename> [-ast | -st].
package main

import (
	"os"

	"github.com/Gangadari11/RPAL-Interpreter/internal/driver"
)

func main() {
	os.Exit(driver.Run(os.Args[1:], os.Stdout, os.Stderr))
}
