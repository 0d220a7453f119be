package normalize

import "folengine/internal/ast"

// ToNNF eliminates -> and <-> and pushes negation down to the atoms via De
// Morgan's laws and the quantifier duals (testable property #3: every Not
// in the result wraps an atomic Predicate or Equals node).
func ToNNF(n *ast.Node) *ast.Node {
	return nnf(n, false)
}

// nnf renders n (or its negation, if neg is true) in negation normal form.
func nnf(n *ast.Node, neg bool) *ast.Node {
	switch n.Kind {
	case ast.KAnd:
		l, r := n.Left(), n.Right()
		if !neg {
			return ast.NewAnd(nnf(l, false), nnf(r, false))
		}
		return ast.NewOr(nnf(l, true), nnf(r, true))
	case ast.KOr:
		l, r := n.Left(), n.Right()
		if !neg {
			return ast.NewOr(nnf(l, false), nnf(r, false))
		}
		return ast.NewAnd(nnf(l, true), nnf(r, true))
	case ast.KImplies:
		// l -> r  ==  -l | r ; its negation is l & -r
		l, r := n.Left(), n.Right()
		if !neg {
			return ast.NewOr(nnf(l, true), nnf(r, false))
		}
		return ast.NewAnd(nnf(l, false), nnf(r, true))
	case ast.KIff:
		// l <-> r  ==  (-l | r) & (-r | l) ; its negation is (l & -r) | (-l & r)
		l, r := n.Left(), n.Right()
		if !neg {
			return ast.NewAnd(
				ast.NewOr(nnf(l, true), nnf(r, false)),
				ast.NewOr(nnf(r, true), nnf(l, false)),
			)
		}
		return ast.NewOr(
			ast.NewAnd(nnf(l, false), nnf(r, true)),
			ast.NewAnd(nnf(l, true), nnf(r, false)),
		)
	case ast.KNot:
		return nnf(n.Body(), !neg)
	case ast.KForall:
		if !neg {
			return ast.NewForall(n.BoundVar, nnf(n.Body(), false))
		}
		return ast.NewExists(n.BoundVar, nnf(n.Body(), true))
	case ast.KExists:
		if !neg {
			return ast.NewExists(n.BoundVar, nnf(n.Body(), false))
		}
		return ast.NewForall(n.BoundVar, nnf(n.Body(), true))
	default:
		// Predicate or Equals: an atom.
		if !neg {
			return n.Clone()
		}
		return ast.NewNot(n.Clone())
	}
}
