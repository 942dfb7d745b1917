// Package standardize rewrites an RPAL AST into the five-node-kind
// standardized form (gamma, lambda, tau, the operator nodes, and
// terminals) that the control flattener consumes, applying eight
// rewrite rules bottom-up: let, where, function_form, multi-param
// lambda, within, @, and/simultaneous definition, and rec.
package standardize

import (
	"fmt"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"

	"github.com/Gangadari11/RPAL-Interpreter/internal/ast"
)

// Standardize rewrites n (and its children, bottom-up) in place and
// returns n. Calling it again on an already-standardized node is a
// no-op, guarded by the Standardized flag.
func Standardize(n *ast.Node) (*ast.Node, error) {
	if n.Standardized {
		return n, nil
	}
	for _, c := range n.Children {
		if _, err := Standardize(c); err != nil {
			return nil, err
		}
	}

	switch n.Kind {
	case ast.Let:
		// let X = E in P  ->  gamma(lambda(X, P), E)
		eq := n.Children[0]
		p := n.Children[1]
		x, e := eq.Children[0], eq.Children[1]
		lam := ast.New(ast.Lambda, x, p)
		replace(n, ast.New(ast.Gamma, lam, e))

	case ast.Where:
		// P where Dr  ->  let Dr in P, then re-apply the let rewrite.
		p, dr := n.Children[0], n.Children[1]
		n.Kind = ast.Let
		n.Children = []*ast.Node{dr, p}
		for _, c := range n.Children {
			c.Parent = n
		}
		return Standardize(n)

	case ast.FunctionForm:
		// name V1..Vk E  ->  name = lambda(V1, lambda(V2, ... lambda(Vk, E)))
		name := n.Children[0]
		binders := n.Children[1 : len(n.Children)-1]
		body := n.Children[len(n.Children)-1]
		replace(n, ast.New(ast.Equal, name, nestLambdas(binders, body)))

	case ast.Lambda:
		if len(n.Children) > 2 {
			binders := n.Children[:len(n.Children)-1]
			body := n.Children[len(n.Children)-1]
			replace(n, nestLambdas(binders, body))
		}

	case ast.Within:
		// x1 = E1 within x2 = E2  ->  x2 = gamma(lambda(x1, E2), E1)
		eq1, eq2 := n.Children[0], n.Children[1]
		x1, e1 := eq1.Children[0], eq1.Children[1]
		x2, e2 := eq2.Children[0], eq2.Children[1]
		lam := ast.New(ast.Lambda, x1, e2)
		replace(n, ast.New(ast.Equal, x2, ast.New(ast.Gamma, lam, e1)))

	case ast.At:
		// E1 @ N E2  ->  gamma(gamma(N, E1), E2)
		e1, name, e2 := n.Children[0], n.Children[1], n.Children[2]
		inner := ast.New(ast.Gamma, name, e1)
		replace(n, ast.New(ast.Gamma, inner, e2))

	case ast.SimDef:
		// x1 = E1 and x2 = E2 and ...  ->  (x1, x2, ...) = tau(E1, E2, ...)
		vars := lo.Map(n.Children, func(eq *ast.Node, _ int) *ast.Node { return eq.Children[0] })
		exprs := lo.Map(n.Children, func(eq *ast.Node, _ int) *ast.Node { return eq.Children[1] })
		if err := checkDistinctBinders(vars); err != nil {
			return nil, err
		}
		comma := ast.New(ast.Comma, vars...)
		tau := ast.New(ast.Tau, exprs...)
		replace(n, ast.New(ast.Equal, comma, tau))

	case ast.Rec:
		// x = E  ->  x = gamma(Y*, lambda(x, E))
		eq := n.Children[0]
		x, e := eq.Children[0], eq.Children[1]
		xCopy := ast.Leaf(x.Kind, x.Value)
		ystar := &ast.Node{Kind: ast.YStar}
		lam := ast.New(ast.Lambda, x, e)
		replace(n, ast.New(ast.Equal, xCopy, ast.New(ast.Gamma, ystar, lam)))
	}

	n.Standardized = true
	return n, nil
}

// replace overwrites n in place with src's shape, re-parenting src's
// children to n itself rather than to the discarded src node.
func replace(n, src *ast.Node) {
	parent := n.Parent
	*n = *src
	n.Parent = parent
	for _, c := range n.Children {
		c.Parent = n
	}
}

// nestLambdas builds lambda(V1, lambda(V2, ... lambda(Vk, body))) from a
// flat binder list, folding right-to-left.
func nestLambdas(binders []*ast.Node, body *ast.Node) *ast.Node {
	result := body
	for i := len(binders) - 1; i >= 0; i-- {
		result = ast.New(ast.Lambda, binders[i], result)
	}
	return result
}

// checkDistinctBinders rejects simultaneous definitions that bind the
// same identifier twice, since the resulting tuple-binder would make a
// later binding silently shadow an earlier one at application time.
func checkDistinctBinders(vars []*ast.Node) error {
	var names []string
	for _, v := range vars {
		if v.Kind != ast.Identifier {
			continue
		}
		if slices.Contains(names, v.Value) {
			return fmt.Errorf("standardization error: %q bound twice in simultaneous definition", v.Value)
		}
		names = append(names, v.Value)
	}
	return nil
}
