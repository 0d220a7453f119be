package normalize

import (
	"folengine/internal/ast"
	"folengine/internal/clause"
)

// Clausify converts a Skolemized prenex formula (only Forall quantifiers and
// a quantifier-free NNF matrix remain) into a deduplicated, tautology-free
// clause set in conjunctive normal form.
func Clausify(n *ast.Node) clause.ClauseSet {
	matrix := stripForalls(n)
	cnf := distribute(matrix)

	var clauses []clause.Clause
	for _, disjunct := range conjuncts(cnf) {
		lits := literalsOf(disjunct)
		c := clause.Clause{Literals: lits}.Dedup()
		if c.IsTautology() {
			continue
		}
		clauses = append(clauses, c)
	}
	return clause.ClauseSet{Clauses: clauses}
}

func stripForalls(n *ast.Node) *ast.Node {
	for n.Kind == ast.KForall {
		n = n.Body()
	}
	return n
}

// distribute pushes Or inward over And until the formula is in CNF.
func distribute(n *ast.Node) *ast.Node {
	switch n.Kind {
	case ast.KAnd:
		return ast.NewAnd(distribute(n.Left()), distribute(n.Right()))
	case ast.KOr:
		l := distribute(n.Left())
		r := distribute(n.Right())
		if l.Kind == ast.KAnd {
			return ast.NewAnd(distribute(ast.NewOr(l.Left(), r)), distribute(ast.NewOr(l.Right(), r)))
		}
		if r.Kind == ast.KAnd {
			return ast.NewAnd(distribute(ast.NewOr(l, r.Left())), distribute(ast.NewOr(l, r.Right())))
		}
		return ast.NewOr(l, r)
	default:
		return n.Clone()
	}
}

// conjuncts flattens the top-level And spine into its disjunct subformulas.
func conjuncts(n *ast.Node) []*ast.Node {
	if n.Kind == ast.KAnd {
		return append(conjuncts(n.Left()), conjuncts(n.Right())...)
	}
	return []*ast.Node{n}
}

// disjuncts flattens an Or spine into its literal subformulas.
func disjuncts(n *ast.Node) []*ast.Node {
	if n.Kind == ast.KOr {
		return append(disjuncts(n.Left()), disjuncts(n.Right())...)
	}
	return []*ast.Node{n}
}

func literalsOf(n *ast.Node) []clause.Literal {
	var out []clause.Literal
	for _, d := range disjuncts(n) {
		out = append(out, toLiteral(d))
	}
	return out
}

func toLiteral(n *ast.Node) clause.Literal {
	negated := false
	if n.Kind == ast.KNot {
		negated = true
		n = n.Body()
	}
	if n.Kind == ast.KEquals {
		return clause.NewEquality(n.Left(), n.Right(), negated)
	}
	return clause.Literal{Predicate: n.Name, Args: n.Args, Negated: negated}
}
