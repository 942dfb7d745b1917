// Package parser builds an *ast.Node tree from a token stream via
// recursive descent with one token of lookahead, following the RPAL
// grammar's E/Ew/T/Ta/Tc/B/Bt/Bs/Bp/A/At/Af/Ap/R/Rn/D/Da/Dr/Db/Vb/Vl
// productions.
package parser

import (
	"fmt"

	"github.com/Gangadari11/RPAL-Interpreter/internal/ast"
	"github.com/Gangadari11/RPAL-Interpreter/internal/lexer"
)

type parser struct {
	toks []lexer.Token
	pos  int
}

// Parse consumes the full token stream and returns the root of the
// unstandardized AST.
func Parse(toks []lexer.Token) (*ast.Node, error) {
	p := &parser{toks: toks}
	n, err := p.parseE()
	if err != nil {
		return nil, err
	}
	if p.cur().Kind != lexer.End {
		return nil, p.errorf("unexpected trailing token %q", p.cur().Text)
	}
	return n, nil
}

func (p *parser) cur() lexer.Token {
	return p.toks[p.pos]
}

func (p *parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) is(text string) bool {
	return p.cur().Text == text
}

func (p *parser) errorf(format string, args ...any) error {
	t := p.cur()
	return fmt.Errorf("parse error at line %d, col %d: %s", t.Line, t.Col, fmt.Sprintf(format, args...))
}

func (p *parser) expect(text string) error {
	if !p.is(text) {
		return p.errorf("%q expected, found %q", text, p.cur().Text)
	}
	p.advance()
	return nil
}

// E -> 'let' D 'in' E | 'fn' Vb+ '.' E | Ew
func (p *parser) parseE() (*ast.Node, error) {
	switch {
	case p.cur().Kind == lexer.Keyword && p.is("let"):
		p.advance()
		d, err := p.parseD()
		if err != nil {
			return nil, err
		}
		if err := p.expect("in"); err != nil {
			return nil, err
		}
		e, err := p.parseE()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Let, d, e), nil
	case p.cur().Kind == lexer.Keyword && p.is("fn"):
		p.advance()
		var binders []*ast.Node
		for p.cur().Kind == lexer.Identifier || p.is("(") {
			vb, err := p.parseVb()
			if err != nil {
				return nil, err
			}
			binders = append(binders, vb)
		}
		if len(binders) == 0 {
			return nil, p.errorf("at least one parameter expected after 'fn'")
		}
		if err := p.expect("."); err != nil {
			return nil, err
		}
		e, err := p.parseE()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Lambda, append(binders, e)...), nil
	default:
		return p.parseEw()
	}
}

// Ew -> T ('where' Dr)?
func (p *parser) parseEw() (*ast.Node, error) {
	t, err := p.parseT()
	if err != nil {
		return nil, err
	}
	if p.is("where") {
		p.advance()
		dr, err := p.parseDr()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Where, t, dr), nil
	}
	return t, nil
}

// T -> Ta (',' Ta)*  -- becomes a tau node only when there's more than one.
func (p *parser) parseT() (*ast.Node, error) {
	first, err := p.parseTa()
	if err != nil {
		return nil, err
	}
	elems := []*ast.Node{first}
	for p.is(",") {
		p.advance()
		next, err := p.parseTa()
		if err != nil {
			return nil, err
		}
		elems = append(elems, next)
	}
	if len(elems) == 1 {
		return first, nil
	}
	return ast.New(ast.Tau, elems...), nil
}

// Ta -> Tc ('aug' Tc)*
func (p *parser) parseTa() (*ast.Node, error) {
	left, err := p.parseTc()
	if err != nil {
		return nil, err
	}
	for p.is("aug") {
		p.advance()
		right, err := p.parseTc()
		if err != nil {
			return nil, err
		}
		left = ast.New(ast.Aug, left, right)
	}
	return left, nil
}

// Tc -> B ('->' Tc '|' Tc)?
func (p *parser) parseTc() (*ast.Node, error) {
	guard, err := p.parseB()
	if err != nil {
		return nil, err
	}
	if p.is("->") {
		p.advance()
		then, err := p.parseTc()
		if err != nil {
			return nil, err
		}
		if err := p.expect("|"); err != nil {
			return nil, err
		}
		els, err := p.parseTc()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Conditional, guard, then, els), nil
	}
	return guard, nil
}

// B -> Bt ('or' Bt)*
func (p *parser) parseB() (*ast.Node, error) {
	left, err := p.parseBt()
	if err != nil {
		return nil, err
	}
	for p.is("or") {
		p.advance()
		right, err := p.parseBt()
		if err != nil {
			return nil, err
		}
		left = ast.New(ast.Or, left, right)
	}
	return left, nil
}

// Bt -> Bs ('&' Bs)*
func (p *parser) parseBt() (*ast.Node, error) {
	left, err := p.parseBs()
	if err != nil {
		return nil, err
	}
	for p.is("&") {
		p.advance()
		right, err := p.parseBs()
		if err != nil {
			return nil, err
		}
		left = ast.New(ast.And, left, right)
	}
	return left, nil
}

// Bs -> 'not' Bp | Bp
func (p *parser) parseBs() (*ast.Node, error) {
	if p.is("not") {
		p.advance()
		operand, err := p.parseBp()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Not, operand), nil
	}
	return p.parseBp()
}

var relOps = map[string]string{
	">": "gr", ">=": "ge", "<": "ls", "<=": "le",
	"gr": "gr", "ge": "ge", "ls": "ls", "le": "le", "eq": "eq", "ne": "ne",
}

// Bp -> A (relop A)?
func (p *parser) parseBp() (*ast.Node, error) {
	left, err := p.parseA()
	if err != nil {
		return nil, err
	}
	if op, ok := relOps[p.cur().Text]; ok {
		p.advance()
		right, err := p.parseA()
		if err != nil {
			return nil, err
		}
		return ast.NewCompare(op, left, right), nil
	}
	return left, nil
}

// A -> ('+'|'-')? At (('+'|'-') At)*
func (p *parser) parseA() (*ast.Node, error) {
	var left *ast.Node
	var err error
	switch {
	case p.is("+"):
		p.advance()
		left, err = p.parseAt()
	case p.is("-"):
		p.advance()
		left, err = p.parseAt()
		if err == nil {
			left = ast.New(ast.Neg, left)
		}
	default:
		left, err = p.parseAt()
	}
	if err != nil {
		return nil, err
	}
	for p.is("+") || p.is("-") {
		op := p.advance().Text
		right, err := p.parseAt()
		if err != nil {
			return nil, err
		}
		if op == "+" {
			left = ast.New(ast.Plus, left, right)
		} else {
			left = ast.New(ast.Minus, left, right)
		}
	}
	return left, nil
}

// At -> Af (('*'|'/') Af)*
func (p *parser) parseAt() (*ast.Node, error) {
	left, err := p.parseAf()
	if err != nil {
		return nil, err
	}
	for p.is("*") || p.is("/") {
		op := p.advance().Text
		right, err := p.parseAf()
		if err != nil {
			return nil, err
		}
		if op == "*" {
			left = ast.New(ast.Mul, left, right)
		} else {
			left = ast.New(ast.Div, left, right)
		}
	}
	return left, nil
}

// Af -> Ap ('**' Af)?  -- right-associative.
func (p *parser) parseAf() (*ast.Node, error) {
	left, err := p.parseAp()
	if err != nil {
		return nil, err
	}
	if p.is("**") {
		p.advance()
		right, err := p.parseAf()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Pow, left, right), nil
	}
	return left, nil
}

// Ap -> R ('@' IDENTIFIER R)*
func (p *parser) parseAp() (*ast.Node, error) {
	left, err := p.parseR()
	if err != nil {
		return nil, err
	}
	for p.is("@") {
		p.advance()
		if p.cur().Kind != lexer.Identifier {
			return nil, p.errorf("identifier expected after '@'")
		}
		name := ast.Leaf(ast.Identifier, p.advance().Text)
		right, err := p.parseR()
		if err != nil {
			return nil, err
		}
		left = ast.New(ast.At, left, name, right)
	}
	return left, nil
}

func (p *parser) startsRn() bool {
	t := p.cur()
	switch t.Kind {
	case lexer.Identifier, lexer.Integer, lexer.StringLit:
		return true
	}
	return t.Text == "true" || t.Text == "false" || t.Text == "nil" || t.Text == "dummy" || t.Text == "("
}

// R -> Rn Rn* -- left-associative function application.
func (p *parser) parseR() (*ast.Node, error) {
	left, err := p.parseRn()
	if err != nil {
		return nil, err
	}
	for p.startsRn() {
		right, err := p.parseRn()
		if err != nil {
			return nil, err
		}
		left = ast.New(ast.Gamma, left, right)
	}
	return left, nil
}

// Rn -> IDENTIFIER | INTEGER | STRING | 'true' | 'false' | 'nil' | 'dummy' | '(' E ')'
func (p *parser) parseRn() (*ast.Node, error) {
	t := p.cur()
	switch t.Kind {
	case lexer.Identifier:
		p.advance()
		return ast.Leaf(ast.Identifier, t.Text), nil
	case lexer.Integer:
		p.advance()
		return ast.Leaf(ast.Integer, t.Text), nil
	case lexer.StringLit:
		p.advance()
		return ast.Leaf(ast.String, t.Text), nil
	}
	switch t.Text {
	case "true":
		p.advance()
		return ast.Leaf(ast.True, t.Text), nil
	case "false":
		p.advance()
		return ast.Leaf(ast.False, t.Text), nil
	case "nil":
		p.advance()
		return ast.Leaf(ast.Nil, t.Text), nil
	case "dummy":
		p.advance()
		return ast.Leaf(ast.Dummy, t.Text), nil
	case "(":
		p.advance()
		e, err := p.parseE()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, p.errorf("unexpected token %q", t.Text)
}

// D -> Da ('within' D)?
func (p *parser) parseD() (*ast.Node, error) {
	left, err := p.parseDa()
	if err != nil {
		return nil, err
	}
	if p.is("within") {
		p.advance()
		right, err := p.parseD()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Within, left, right), nil
	}
	return left, nil
}

// Da -> Dr ('and' Dr)*
func (p *parser) parseDa() (*ast.Node, error) {
	first, err := p.parseDr()
	if err != nil {
		return nil, err
	}
	defs := []*ast.Node{first}
	for p.is("and") {
		p.advance()
		next, err := p.parseDr()
		if err != nil {
			return nil, err
		}
		defs = append(defs, next)
	}
	if len(defs) == 1 {
		return first, nil
	}
	return ast.New(ast.SimDef, defs...), nil
}

// Dr -> 'rec'? Db
func (p *parser) parseDr() (*ast.Node, error) {
	isRec := false
	if p.is("rec") {
		p.advance()
		isRec = true
	}
	db, err := p.parseDb()
	if err != nil {
		return nil, err
	}
	if isRec {
		return ast.New(ast.Rec, db), nil
	}
	return db, nil
}

// Db -> '(' D ')' | IDENTIFIER Vb+ '=' E | IDENTIFIER ',' Vl '=' E | IDENTIFIER '=' E
func (p *parser) parseDb() (*ast.Node, error) {
	if p.is("(") {
		p.advance()
		d, err := p.parseD()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return d, nil
	}
	if p.cur().Kind != lexer.Identifier {
		return nil, p.errorf("identifier or '(' expected")
	}
	name := p.cur().Text
	next := p.toks[p.pos+1]

	switch {
	case next.Text == "(" || next.Kind == lexer.Identifier:
		// function_form: name Vb+ '=' E
		p.advance()
		ident := ast.Leaf(ast.Identifier, name)
		var binders []*ast.Node
		for p.cur().Kind == lexer.Identifier || p.is("(") {
			vb, err := p.parseVb()
			if err != nil {
				return nil, err
			}
			binders = append(binders, vb)
		}
		if err := p.expect("="); err != nil {
			return nil, err
		}
		e, err := p.parseE()
		if err != nil {
			return nil, err
		}
		children := append([]*ast.Node{ident}, binders...)
		children = append(children, e)
		return ast.New(ast.FunctionForm, children...), nil
	case next.Text == "=":
		p.advance()
		ident := ast.Leaf(ast.Identifier, name)
		p.advance() // '='
		e, err := p.parseE()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Equal, ident, e), nil
	case next.Text == ",":
		vl, err := p.parseVl()
		if err != nil {
			return nil, err
		}
		if err := p.expect("="); err != nil {
			return nil, err
		}
		e, err := p.parseE()
		if err != nil {
			return nil, err
		}
		return ast.New(ast.Equal, vl, e), nil
	}
	return nil, p.errorf("unexpected token sequence after identifier %q", name)
}

// Vb -> '(' Vl? ')' | IDENTIFIER
func (p *parser) parseVb() (*ast.Node, error) {
	if p.is("(") {
		p.advance()
		if p.cur().Kind == lexer.Identifier {
			vl, err := p.parseVl()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return vl, nil
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.EmptyParams}, nil
	}
	if p.cur().Kind == lexer.Identifier {
		return ast.Leaf(ast.Identifier, p.advance().Text), nil
	}
	return nil, p.errorf("identifier or '(' expected")
}

// Vl -> IDENTIFIER (',' IDENTIFIER)*
func (p *parser) parseVl() (*ast.Node, error) {
	if p.cur().Kind != lexer.Identifier {
		return nil, p.errorf("identifier expected")
	}
	idents := []*ast.Node{ast.Leaf(ast.Identifier, p.advance().Text)}
	for p.is(",") {
		p.advance()
		if p.cur().Kind != lexer.Identifier {
			return nil, p.errorf("identifier expected")
		}
		idents = append(idents, ast.Leaf(ast.Identifier, p.advance().Text))
	}
	if len(idents) == 1 {
		return idents[0], nil
	}
	return ast.New(ast.Comma, idents...), nil
}
