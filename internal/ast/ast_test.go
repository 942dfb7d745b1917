package ast_test

import (
	"strings"
	"testing"

	"github.com/Gangadari11/RPAL-Interpreter/internal/ast"
)

func TestPrintOrderAndIndentation(t *testing.T) {
	// gamma(x, 1) pretty-printed as pre-order, dot-indented children.
	tree := ast.New(ast.Gamma, ast.Leaf(ast.Identifier, "x"), ast.Leaf(ast.Integer, "1"))

	got := tree.String()
	want := "gamma\n.<IDENTIFIER:x>\n.<INTEGER:1>\n"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestNestedIndentationGrows(t *testing.T) {
	inner := ast.New(ast.Neg, ast.Leaf(ast.Integer, "2"))
	outer := ast.New(ast.Plus, ast.Leaf(ast.Integer, "1"), inner)

	lines := strings.Split(strings.TrimRight(outer.String(), "\n"), "\n")
	want := []string{"+", ".<INTEGER:1>", ".neg", "..<INTEGER:2>"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %v", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestCompareNodeUsesOperatorAsLabel(t *testing.T) {
	n := ast.NewCompare("gr", ast.Leaf(ast.Identifier, "a"), ast.Leaf(ast.Identifier, "b"))
	if got := n.String(); !strings.HasPrefix(got, "gr\n") {
		t.Errorf("String() = %q, want it to start with \"gr\\n\"", got)
	}
}

func TestNewWiresParentPointers(t *testing.T) {
	child := ast.Leaf(ast.Identifier, "x")
	parent := ast.New(ast.Lambda, child, ast.Leaf(ast.Identifier, "x"))
	if child.Parent != parent {
		t.Error("New did not set the child's Parent pointer")
	}
}
