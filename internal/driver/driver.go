// Package driver wires the lexer, parser, standardizer, and CSE
// machine into the rpal command-line contract: read a source file,
// run it through each stage in order, and fail at the first stage
// that reports an error.
package driver

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Gangadari11/RPAL-Interpreter/internal/cse"
	"github.com/Gangadari11/RPAL-Interpreter/internal/lexer"
	"github.com/Gangadari11/RPAL-Interpreter/internal/parser"
	"github.com/Gangadari11/RPAL-Interpreter/internal/standardize"
)

// Run implements `rpal <filename> [-ast | -st]`. It writes Print output
// and -ast/-st dumps to stdout, one-line diagnostics to stderr, and
// returns the process exit code (0 on success).
func Run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("rpal", flag.ContinueOnError)
	fs.SetOutput(stderr)
	printAST := fs.Bool("ast", false, "print the unstandardized abstract syntax tree and exit")
	printST := fs.Bool("st", false, "print the standardized tree and exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: rpal <filename> [-ast | -st]")
		fs.PrintDefaults()
	}
	// Flags may come before or after the filename, so move them to the
	// front: the flag package stops at the first non-flag argument.
	var flagArgs, posArgs []string
	for _, a := range args {
		if len(a) > 1 && strings.HasPrefix(a, "-") {
			flagArgs = append(flagArgs, a)
		} else {
			posArgs = append(posArgs, a)
		}
	}
	if err := fs.Parse(append(flagArgs, posArgs...)); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	if *printAST && *printST {
		fmt.Fprintln(stderr, "rpal: -ast and -st are mutually exclusive")
		return 2
	}

	src, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return errExit(stderr, err)
	}

	toks, err := lexer.Tokenize(string(src))
	if err != nil {
		return errExit(stderr, err)
	}

	tree, err := parser.Parse(toks)
	if err != nil {
		return errExit(stderr, err)
	}
	if *printAST {
		fmt.Fprint(stdout, tree.String())
		return 0
	}

	std, err := standardize.Standardize(tree)
	if err != nil {
		return errExit(stderr, err)
	}
	if *printST {
		fmt.Fprint(stdout, std.String())
		return 0
	}

	prog := cse.Compile(std)
	if _, err := cse.Run(prog, stdout); err != nil {
		return errExit(stderr, err)
	}
	return 0
}

func errExit(stderr io.Writer, err error) int {
	fmt.Fprintln(stderr, err)
	return 1
}
