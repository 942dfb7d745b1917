// Package cse compiles a standardized AST into delta-indexed control
// sequences and runs them on a stack/environment CSE machine.
package cse

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Tag discriminates the Value union.
type Tag int

const (
	TagInt Tag = iota
	TagStr
	TagBool
	TagNil
	TagDummy
	TagTuple
	TagClosure
	TagBuiltin
	TagYMarker
)

// Value is the tagged union every CSE rule pushes and pops.
type Value struct {
	Tag     Tag
	Int     int64
	Str     string
	Bool    bool
	Tuple   []Value
	Closure *closureVal
	Builtin *builtinVal
}

// closureVal is a user-defined function: a binder spec plus the body's
// compiled delta and the environment frame captured at lambda-creation
// time. YTied marks an eta-closure produced by applying Y* to it.
type closureVal struct {
	Params    []string
	IsTuple   bool
	IsEmpty   bool
	BodyDelta int
	Env       int
	YTied     bool
}

type builtinVal struct {
	Name  string
	Bound []Value
}

var arity = map[string]int{
	"Print": 1, "Conc": 2, "Stem": 1, "Stern": 1, "Order": 1, "Null": 1,
	"Isinteger": 1, "Isstring": 1, "Istuple": 1, "Isdummy": 1,
	"Istruthvalue": 1, "Isfunction": 1, "ItoS": 1,
}

var builtinNames = []string{
	"Print", "Conc", "Stem", "Stern", "Order", "Null",
	"Isinteger", "Isstring", "Istuple", "Isdummy",
	"Istruthvalue", "Isfunction", "ItoS",
}

var nilValue = Value{Tag: TagNil}
var dummyValue = Value{Tag: TagDummy}

func intVal(i int64) Value  { return Value{Tag: TagInt, Int: i} }
func strVal(s string) Value { return Value{Tag: TagStr, Str: s} }
func boolVal(b bool) Value  { return Value{Tag: TagBool, Bool: b} }

// Format renders v exactly as Print would show it: raw
// string content with the quotes stripped, decimal integers, true/false,
// nil, dummy, parenthesized tuples, and bracketed descriptors for
// closures and builtins.
func Format(v Value) string {
	switch v.Tag {
	case TagInt:
		return strconv.FormatInt(v.Int, 10)
	case TagStr:
		return v.Str
	case TagBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case TagNil:
		return "nil"
	case TagDummy:
		return "dummy"
	case TagTuple:
		if len(v.Tuple) == 0 {
			return "()"
		}
		parts := lo.Map(v.Tuple, func(e Value, _ int) string { return Format(e) })
		return "(" + strings.Join(parts, ", ") + ")"
	case TagClosure:
		params := strings.Join(v.Closure.Params, ", ")
		return "[lambda closure: " + params + ": " + strconv.Itoa(v.Closure.BodyDelta) + "]"
	case TagBuiltin:
		if len(v.Builtin.Bound) == 0 {
			return "[builtin function: " + v.Builtin.Name + "]"
		}
		return "[partial builtin function: " + v.Builtin.Name + "]"
	case TagYMarker:
		return "<Y*>"
	}
	return ""
}
