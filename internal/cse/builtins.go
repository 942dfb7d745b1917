package cse

import (
	"io"
	"strconv"

	"golang.org/x/exp/slices"
)

// applyBuiltin runs a fully-applied builtin and returns its result.
// Print additionally writes to out, the caller-supplied writer, so
// tests can capture it without touching real stdout.
func applyBuiltin(name string, args []Value, out io.Writer) Value {
	if !slices.Contains(builtinNames, name) {
		fail("unknown builtin " + name)
	}
	switch name {
	case "Print":
		io.WriteString(out, Format(args[0]))
		io.WriteString(out, "\n")
		return dummyValue
	case "Conc":
		a, b := args[0], args[1]
		if a.Tag != TagStr || b.Tag != TagStr {
			fail("Conc: string operands required")
		}
		return strVal(a.Str + b.Str)
	case "Stem":
		s := args[0]
		if s.Tag != TagStr {
			fail("Stem: string operand required")
		}
		if len(s.Str) == 0 {
			fail("Stem: empty string")
		}
		return strVal(string(s.Str[0]))
	case "Stern":
		s := args[0]
		if s.Tag != TagStr {
			fail("Stern: string operand required")
		}
		if len(s.Str) == 0 {
			fail("Stern: empty string")
		}
		return strVal(s.Str[1:])
	case "Order":
		t := args[0]
		if t.Tag == TagNil {
			return intVal(0)
		}
		if t.Tag != TagTuple {
			fail("Order: tuple operand required")
		}
		return intVal(int64(len(t.Tuple)))
	case "Null":
		return boolVal(args[0].Tag == TagNil)
	case "Isinteger":
		return boolVal(args[0].Tag == TagInt)
	case "Isstring":
		return boolVal(args[0].Tag == TagStr)
	case "Istuple":
		return boolVal(args[0].Tag == TagTuple)
	case "Isdummy":
		return boolVal(args[0].Tag == TagDummy)
	case "Istruthvalue":
		return boolVal(args[0].Tag == TagBool)
	case "Isfunction":
		return boolVal(args[0].Tag == TagClosure || args[0].Tag == TagBuiltin)
	case "ItoS":
		if args[0].Tag != TagInt {
			fail("ItoS: integer operand required")
		}
		return strVal(strconv.FormatInt(args[0].Int, 10))
	}
	fail("unknown builtin " + name)
	return Value{}
}
