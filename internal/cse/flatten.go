package cse

import "github.com/Gangadari11/RPAL-Interpreter/internal/ast"

// elemKind tags one compiled control element.
type elemKind int

const (
	ekIdent elemKind = iota
	ekInt
	ekStr
	ekBool
	ekNil
	ekDummy
	ekYStar
	ekGamma
	ekLambda
	ekTau
	ekUop
	ekBop
	ekBeta
)

// elem is one entry of a compiled delta. Only the fields relevant to
// its kind are populated.
type elem struct {
	kind elemKind
	text string // identifier name / op name (uop, bop, compare)
	ival int64  // integer literal value
	bval bool   // bool literal value

	// ekLambda
	params    []string
	isTuple   bool
	isEmpty   bool
	bodyDelta int

	// ekTau
	n int

	// ekBeta
	thenDelta, elseDelta int
}

// Program is the flattener's output: a table of deltas (control element
// sequences) and the index of the root delta to run.
type Program struct {
	deltas [][]elem
	root   int
}

type compiler struct {
	deltas [][]elem
}

// Compile flattens a standardized AST into a delta table, per the rules:
// lambda bodies and conditional arms become freshly allocated deltas;
// every other node's children are compiled inline, in evaluation order,
// directly preceding their own marker.
func Compile(root *ast.Node) *Program {
	c := &compiler{}
	rootIdx := c.newDelta()
	c.compileInto(rootIdx, root)
	return &Program{deltas: c.deltas, root: rootIdx}
}

func (c *compiler) newDelta() int {
	c.deltas = append(c.deltas, nil)
	return len(c.deltas) - 1
}

func (c *compiler) emit(idx int, e elem) {
	c.deltas[idx] = append(c.deltas[idx], e)
}

// compileInto appends n's compiled control elements onto the delta at idx.
func (c *compiler) compileInto(idx int, n *ast.Node) {
	switch n.Kind {
	case ast.Identifier:
		c.emit(idx, elem{kind: ekIdent, text: n.Value})
	case ast.Integer:
		c.emit(idx, elem{kind: ekInt, ival: parseInt(n.Value)})
	case ast.String:
		c.emit(idx, elem{kind: ekStr, text: n.Value})
	case ast.True:
		c.emit(idx, elem{kind: ekBool, bval: true})
	case ast.False:
		c.emit(idx, elem{kind: ekBool, bval: false})
	case ast.Nil:
		c.emit(idx, elem{kind: ekNil})
	case ast.Dummy:
		c.emit(idx, elem{kind: ekDummy})
	case ast.YStar:
		c.emit(idx, elem{kind: ekYStar})

	case ast.Lambda:
		binder := n.Children[0]
		body := n.Children[1]
		bodyIdx := c.newDelta()
		c.compileInto(bodyIdx, body)
		e := elem{kind: ekLambda, bodyDelta: bodyIdx}
		switch binder.Kind {
		case ast.Comma:
			e.isTuple = true
			for _, id := range binder.Children {
				e.params = append(e.params, id.Value)
			}
		case ast.EmptyParams:
			e.isEmpty = true
		default:
			e.params = []string{binder.Value}
		}
		c.emit(idx, e)

	case ast.Conditional:
		guard, then, els := n.Children[0], n.Children[1], n.Children[2]
		c.compileInto(idx, guard)
		thenIdx := c.newDelta()
		c.compileInto(thenIdx, then)
		elseIdx := c.newDelta()
		c.compileInto(elseIdx, els)
		c.emit(idx, elem{kind: ekBeta, thenDelta: thenIdx, elseDelta: elseIdx})

	case ast.Tau:
		for _, child := range n.Children {
			c.compileInto(idx, child)
		}
		c.emit(idx, elem{kind: ekTau, n: len(n.Children)})

	case ast.Gamma:
		fn, arg := n.Children[0], n.Children[1]
		c.compileInto(idx, arg)
		c.compileInto(idx, fn)
		c.emit(idx, elem{kind: ekGamma})

	case ast.Neg, ast.Not:
		c.compileInto(idx, n.Children[0])
		c.emit(idx, elem{kind: ekUop, text: string(n.Kind)})

	case ast.Compare:
		c.compileInto(idx, n.Children[0])
		c.compileInto(idx, n.Children[1])
		c.emit(idx, elem{kind: ekBop, text: n.Value})

	default:
		// Binary operator nodes: +, -, *, /, **, or, &, aug.
		c.compileInto(idx, n.Children[0])
		c.compileInto(idx, n.Children[1])
		c.emit(idx, elem{kind: ekBop, text: string(n.Kind)})
	}
}

func parseInt(s string) int64 {
	var v int64
	for _, r := range s {
		v = v*10 + int64(r-'0')
	}
	return v
}
