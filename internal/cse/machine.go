package cse

import (
	"fmt"
	"io"

	"golang.org/x/exp/slices"
)

// frame is one environment-arena entry: an index-linked parent plus
// the bindings introduced at that scope. Frame 0 is primordial and
// holds the fixed builtin bindings; frames are never freed, matching
// the arena-for-the-run's-duration model.
type frame struct {
	parent   int
	bindings map[string]Value
}

// ctrlFrame is one entry of the control stack: a reference into a
// compiled delta plus a cursor, and the environment frame to restore
// once this frame is exhausted (-1 means "stay in the current frame",
// used for conditional arms, which don't change environment).
type ctrlFrame struct {
	deltaIdx   int
	pos        int
	restoreEnv int
}

// Machine runs a compiled Program.
type Machine struct {
	prog       *Program
	frames     []*frame
	stack      []Value
	control    []ctrlFrame
	currentEnv int
	out        io.Writer
}

// Run executes prog's root delta to completion and returns the single
// resulting value, or the first runtime error encountered.
func Run(prog *Program, out io.Writer) (result Value, err error) {
	m := &Machine{prog: prog, out: out}
	m.frames = []*frame{{parent: -1, bindings: primordialBindings()}}
	m.currentEnv = 0
	m.control = []ctrlFrame{{deltaIdx: prog.root, pos: 0, restoreEnv: -1}}

	defer func() {
		if r := recover(); r != nil {
			if rt, ok := r.(rtError); ok {
				err = rt
				return
			}
			panic(r)
		}
	}()

	for len(m.control) > 0 {
		top := &m.control[len(m.control)-1]
		delta := m.prog.deltas[top.deltaIdx]
		if top.pos >= len(delta) {
			restore := top.restoreEnv
			m.control = m.control[:len(m.control)-1]
			if restore >= 0 {
				m.currentEnv = restore
			}
			continue
		}
		e := delta[top.pos]
		top.pos++
		m.dispatch(e)
	}

	if len(m.stack) != 1 {
		return Value{}, fmt.Errorf("control exhausted with wrong stack depth (%d values remain)", len(m.stack))
	}
	return m.stack[0], nil
}

func primordialBindings() map[string]Value {
	b := make(map[string]Value, len(builtinNames))
	for _, name := range builtinNames {
		b[name] = Value{Tag: TagBuiltin, Builtin: &builtinVal{Name: name}}
	}
	return b
}

func (m *Machine) push(v Value) { m.stack = append(m.stack, v) }

func (m *Machine) pop() Value {
	if len(m.stack) == 0 {
		fail("stack underflow")
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}

func (m *Machine) lookup(name string) Value {
	idx := m.currentEnv
	for idx != -1 {
		f := m.frames[idx]
		if v, ok := f.bindings[name]; ok {
			return v
		}
		idx = f.parent
	}
	fail("unbound identifier " + name)
	return Value{}
}

func (m *Machine) pushControlFrame(deltaIdx, restoreEnv int) {
	m.control = append(m.control, ctrlFrame{deltaIdx: deltaIdx, pos: 0, restoreEnv: restoreEnv})
}

func (m *Machine) dispatch(e elem) {
	switch e.kind {
	case ekIdent:
		m.push(m.lookup(e.text))
	case ekInt:
		m.push(intVal(e.ival))
	case ekStr:
		m.push(strVal(e.text))
	case ekBool:
		m.push(boolVal(e.bval))
	case ekNil:
		m.push(nilValue)
	case ekDummy:
		m.push(dummyValue)
	case ekYStar:
		m.push(Value{Tag: TagYMarker})
	case ekLambda:
		m.push(Value{Tag: TagClosure, Closure: &closureVal{
			Params: e.params, IsTuple: e.isTuple, IsEmpty: e.isEmpty,
			BodyDelta: e.bodyDelta, Env: m.currentEnv,
		}})
	case ekTau:
		vals := make([]Value, e.n)
		for i := e.n - 1; i >= 0; i-- {
			vals[i] = m.pop()
		}
		m.push(Value{Tag: TagTuple, Tuple: vals})
	case ekBeta:
		guard := m.pop()
		if guard.Tag != TagBool {
			fail("conditional guard is not a truth value")
		}
		if guard.Bool {
			m.pushControlFrame(e.thenDelta, -1)
		} else {
			m.pushControlFrame(e.elseDelta, -1)
		}
	case ekUop:
		m.applyUnary(e.text)
	case ekBop:
		m.applyBinary(e.text)
	case ekGamma:
		m.applyGamma()
	default:
		fail("unknown control element")
	}
}

// applyGamma implements rule 4: pop the rator (top of S) and the rand
// (next), then dispatch on the rator's shape.
func (m *Machine) applyGamma() {
	rator := m.pop()
	rand := m.pop()

	switch rator.Tag {
	case TagClosure:
		if rator.Closure.YTied {
			m.applyEta(rator, rand)
			return
		}
		m.enterClosure(rator.Closure, rand)

	case TagBuiltin:
		bound := append(append([]Value{}, rator.Builtin.Bound...), rand)
		if len(bound) >= arity[rator.Builtin.Name] {
			m.push(applyBuiltin(rator.Builtin.Name, bound, m.out))
		} else {
			m.push(Value{Tag: TagBuiltin, Builtin: &builtinVal{Name: rator.Builtin.Name, Bound: bound}})
		}

	case TagYMarker:
		if rand.Tag != TagClosure {
			fail("Y* requires a closure operand")
		}
		tied := *rand.Closure
		tied.YTied = true
		m.push(Value{Tag: TagClosure, Closure: &tied})

	case TagTuple:
		if rand.Tag != TagInt {
			fail("tuple selection requires an integer index")
		}
		i := rand.Int
		if i < 1 || int(i) > len(rator.Tuple) {
			fail("tuple index out of range")
		}
		m.push(rator.Tuple[i-1])

	default:
		fail("applied non-function")
	}
}

// enterClosure binds cl's params to rand in a fresh frame and pushes a
// control frame for the body, recording the caller's environment so it
// is restored once the body delta is exhausted (rule 9/10).
func (m *Machine) enterClosure(cl *closureVal, rand Value) {
	bindings := make(map[string]Value)
	switch {
	case cl.IsEmpty:
		// no bindings; applying to () discards the argument's dummy value
	case cl.IsTuple:
		if rand.Tag != TagTuple || len(rand.Tuple) != len(cl.Params) {
			fail("tuple binder arity mismatch")
		}
		for i, name := range cl.Params {
			if slices.IndexFunc(cl.Params, func(p string) bool { return p == name }) != i {
				fail("duplicate tuple binder name " + name)
			}
			bindings[name] = rand.Tuple[i]
		}
	default:
		bindings[cl.Params[0]] = rand
	}
	m.frames = append(m.frames, &frame{parent: cl.Env, bindings: bindings})
	newEnv := len(m.frames) - 1
	caller := m.currentEnv
	m.currentEnv = newEnv
	m.pushControlFrame(cl.BodyDelta, caller)
}

// applyEta performs the eta/Y* recursion dance: tied $ rand is
// equivalent to (untied-closure $ tied) $ rand, so the untied closure's
// body runs once with its own name bound to the tied value (letting any
// recursive reference resolve to the same eta-closure), and the result
// of that is then applied to the real argument.
func (m *Machine) applyEta(tied Value, rand Value) {
	untied := *tied.Closure
	untied.YTied = false
	m.push(rand)                                              // saved for the second, real application
	m.push(tied)                                               // rand for the first application
	m.push(Value{Tag: TagClosure, Closure: &untied})           // rator for the first application
	synthetic := m.compileSynthetic(elem{kind: ekGamma}, elem{kind: ekGamma})
	m.pushControlFrame(synthetic, -1)
}

// compileSynthetic allocates a throwaway delta holding exactly the
// given elements, used for the two chained gamma applications the
// eta/Y* dance needs.
func (m *Machine) compileSynthetic(elems ...elem) int {
	m.prog.deltas = append(m.prog.deltas, elems)
	return len(m.prog.deltas) - 1
}
