package cse_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Gangadari11/RPAL-Interpreter/internal/cse"
	"github.com/Gangadari11/RPAL-Interpreter/internal/lexer"
	"github.com/Gangadari11/RPAL-Interpreter/internal/parser"
	"github.com/Gangadari11/RPAL-Interpreter/internal/standardize"
)

func run(t *testing.T, src string) (string, error) {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", src, err)
	}
	tree, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	std, err := standardize.Standardize(tree)
	if err != nil {
		t.Fatalf("Standardize(%q): %v", src, err)
	}
	prog := cse.Compile(std)
	var buf bytes.Buffer
	v, runErr := cse.Run(prog, &buf)
	if runErr != nil {
		return buf.String(), runErr
	}
	if v.Tag != cse.TagDummy {
		buf.WriteString(cse.Format(v))
	}
	return buf.String(), nil
}

func TestPrintHelloWorld(t *testing.T) {
	out, err := run(t, "Print('Hello, World!')")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "Hello, World!\n" {
		t.Errorf("out = %q", out)
	}
}

func TestLetArithmetic(t *testing.T) {
	out, err := run(t, "let x = 3 in Print(x + 4 * 2)")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "11\n" {
		t.Errorf("out = %q, want 11", out)
	}
}

func TestConditional(t *testing.T) {
	out, err := run(t, "let x = 5 in Print(x gr 3 -> 'big' | 'small')")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "big\n" {
		t.Errorf("out = %q, want big", out)
	}
}

func TestTupleConstruction(t *testing.T) {
	out, err := run(t, "let t = (1, 2, 3) in Print(t)")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "(1, 2, 3)\n" {
		t.Errorf("out = %q, want (1, 2, 3)", out)
	}
}

func TestTupleIndexingDirect(t *testing.T) {
	out, err := run(t, "let t = (10, 20, 30) in Print(t 2)")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "20\n" {
		t.Errorf("out = %q, want 20", out)
	}
}

func TestFunctionFormAndCurrying(t *testing.T) {
	out, err := run(t, "let add x y = x + y in Print((add 3) 4)")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "7\n" {
		t.Errorf("out = %q, want 7", out)
	}
}

func TestCurryEquivalenceMultiParamVsNested(t *testing.T) {
	multi, err := run(t, "let add x y = x + y in Print(add 3 4)")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	nested, err := run(t, "let add = fn x . fn y . x + y in Print(add 3 4)")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if multi != nested {
		t.Errorf("multi-param %q != nested-lambda %q", multi, nested)
	}
}

func TestLexicalScopeShadowing(t *testing.T) {
	out, err := run(t, "let x = 1 in let f = fn y . x + y in let x = 100 in Print(f 5)")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "6\n" {
		t.Errorf("out = %q, want 6 (f must see its defining-time x, not the shadowed one)", out)
	}
}

func TestRecursiveFactorial(t *testing.T) {
	out, err := run(t, `let rec fact n = n eq 0 -> 1 | n * fact (n - 1) in Print(fact 5)`)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "120\n" {
		t.Errorf("out = %q, want 120", out)
	}
}

func TestFixedPointUnfoldingAgreesAcrossDepths(t *testing.T) {
	for n, want := range map[string]string{"0": "1", "1": "1", "4": "24", "6": "720"} {
		out, err := run(t, "let rec fact n = n eq 0 -> 1 | n * fact (n - 1) in Print(fact "+n+")")
		if err != nil {
			t.Fatalf("run(fact %s): %v", n, err)
		}
		if strings.TrimSpace(out) != want {
			t.Errorf("fact %s = %q, want %s", n, strings.TrimSpace(out), want)
		}
	}
}

func TestBuiltinOrder(t *testing.T) {
	out, err := run(t, "Print(Order (1, 2, 3))")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "3\n" {
		t.Errorf("out = %q, want 3", out)
	}

	out, err = run(t, "Print(Order nil)")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "0\n" {
		t.Errorf("out = %q, want 0 for Order of nil", out)
	}
}

func TestDuplicateTupleBinderNameRejected(t *testing.T) {
	_, err := run(t, "let f = fn (x, x) . x in Print(f (1, 2))")
	if err == nil {
		t.Fatal("expected an error for a tuple binder that names the same identifier twice")
	}
}

func TestBuiltinStringOps(t *testing.T) {
	out, err := run(t, "Print(Conc 'foo' 'bar')")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "foobar\n" {
		t.Errorf("out = %q, want foobar", out)
	}
}

func TestBuiltinPredicates(t *testing.T) {
	out, err := run(t, "Print(Isinteger 5)")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "true\n" {
		t.Errorf("out = %q, want true", out)
	}
}

func TestDivisionByZeroError(t *testing.T) {
	_, err := run(t, "Print(1 / 0)")
	if err == nil {
		t.Fatal("expected a division-by-zero error")
	}
}

func TestUnboundIdentifierError(t *testing.T) {
	_, err := run(t, "Print(doesNotExist)")
	if err == nil {
		t.Fatal("expected an unbound identifier error")
	}
}

func TestAugAlwaysGrowsArityByOne(t *testing.T) {
	out, err := run(t, "Print((1, 2) aug (3, 4))")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "(1, 2, (3, 4))\n" {
		t.Errorf("out = %q, want (1, 2, (3, 4))", out)
	}
}

func TestPrintSideEffectsBeforeErrorStayVisible(t *testing.T) {
	out, err := run(t, "let x = Print(1) in 1 / 0")
	if err == nil {
		t.Fatal("expected a division-by-zero error")
	}
	if out != "1\n" {
		t.Errorf("out = %q, want the Print before the failing division to still appear", out)
	}
}
