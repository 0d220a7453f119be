// Package normalize implements the five-stage pipeline that turns a parsed
// formula into a clause set: Simplify, NNF, Prenex, Skolemize, Clausify.
package normalize

import "folengine/internal/ast"

// trueName and falseName are the reserved nullary predicate names Simplify
// treats as boolean literals. The grammar has no dedicated true/false
// tokens, so a bare predicate application with one of these names doubles
// as a boolean constant wherever constant folding needs one.
const (
	trueName  = "true"
	falseName = "false"
)

func isBoolConst(n *ast.Node, name string) bool {
	return n.Kind == ast.KPredicate && n.Name == name && len(n.Args) == 0
}

func trueNode() *ast.Node  { return ast.NewPredicate(trueName) }
func falseNode() *ast.Node { return ast.NewPredicate(falseName) }

// Simplify folds And/Or over true/false and collapses double negation,
// iterating to a fixed point (testable property #2: idempotence).
func Simplify(n *ast.Node) *ast.Node {
	for {
		next := simplifyOnce(n)
		if next.StructurallyEqual(n) {
			return next
		}
		n = next
	}
}

func simplifyOnce(n *ast.Node) *ast.Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case ast.KAnd:
		l, r := simplifyOnce(n.Left()), simplifyOnce(n.Right())
		switch {
		case isBoolConst(l, falseName), isBoolConst(r, falseName):
			return falseNode()
		case isBoolConst(l, trueName):
			return r
		case isBoolConst(r, trueName):
			return l
		default:
			return ast.NewAnd(l, r)
		}
	case ast.KOr:
		l, r := simplifyOnce(n.Left()), simplifyOnce(n.Right())
		switch {
		case isBoolConst(l, trueName), isBoolConst(r, trueName):
			return trueNode()
		case isBoolConst(l, falseName):
			return r
		case isBoolConst(r, falseName):
			return l
		default:
			return ast.NewOr(l, r)
		}
	case ast.KImplies:
		l, r := simplifyOnce(n.Left()), simplifyOnce(n.Right())
		switch {
		case isBoolConst(l, falseName), isBoolConst(r, trueName):
			return trueNode()
		case isBoolConst(l, trueName):
			return r
		default:
			return ast.NewImplies(l, r)
		}
	case ast.KIff:
		l, r := simplifyOnce(n.Left()), simplifyOnce(n.Right())
		return ast.NewIff(l, r)
	case ast.KNot:
		op := simplifyOnce(n.Body())
		switch {
		case op.Kind == ast.KNot:
			return simplifyOnce(op.Body())
		case isBoolConst(op, trueName):
			return falseNode()
		case isBoolConst(op, falseName):
			return trueNode()
		default:
			return ast.NewNot(op)
		}
	case ast.KForall:
		return &ast.Node{Kind: ast.KForall, BoundVar: n.BoundVar, Args: []*ast.Node{simplifyOnce(n.Body())}}
	case ast.KExists:
		return &ast.Node{Kind: ast.KExists, BoundVar: n.BoundVar, Args: []*ast.Node{simplifyOnce(n.Body())}}
	default:
		return n.Clone()
	}
}
