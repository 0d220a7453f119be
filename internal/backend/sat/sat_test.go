package sat

import (
	"context"
	"testing"

	"folengine/internal/ast"
	"folengine/internal/backend"
	"folengine/internal/clause"
)

func unitClause(pred string, negated bool, args ...*ast.Node) clause.Clause {
	return clause.Clause{Literals: []clause.Literal{{Predicate: pred, Args: args, Negated: negated}}}
}

func TestCheckSatReportsNoModelFoundOnUnsatisfiableClauseSet(t *testing.T) {
	a := ast.NewConstant("a")
	cs := clause.ClauseSet{Clauses: []clause.Clause{
		unitClause("P", false, a),
		unitClause("P", true, a),
	}}

	e := New()
	result := e.CheckSat(context.Background(), cs)
	if result.Result != backend.NoModelFound {
		t.Fatalf("expected NoModelFound for an unsatisfiable clause set, got %v (err=%v)", result.Result, result.Err)
	}
}

func TestCheckSatReportsFailedWithModelOnSatisfiableClauseSet(t *testing.T) {
	a := ast.NewConstant("a")
	cs := clause.ClauseSet{Clauses: []clause.Clause{
		unitClause("P", false, a),
	}}

	e := New()
	result := e.CheckSat(context.Background(), cs)
	if result.Result != backend.Failed {
		t.Fatalf("expected Failed (satisfiable) for a consistent clause set, got %v (err=%v)", result.Result, result.Err)
	}
	if result.Bindings == nil {
		t.Fatal("expected a satisfying assignment to be returned")
	}
}

func TestProveSimpleGroundSyllogism(t *testing.T) {
	socrates := ast.NewConstant("socrates")
	// man(socrates); man(socrates) -> mortal(socrates); goal mortal(socrates).
	// The back-end is propositional, so the rule is given as its ground
	// instance. cs carries premises plus the negated goal, as the dispatcher
	// builds it.
	cs := clause.ClauseSet{Clauses: []clause.Clause{
		unitClause("man", false, socrates),
		{Literals: []clause.Literal{
			{Predicate: "man", Args: []*ast.Node{socrates}, Negated: true},
			{Predicate: "mortal", Args: []*ast.Node{socrates}, Negated: false},
		}},
		unitClause("mortal", true, socrates),
	}}
	goal := clause.Literal{Predicate: "mortal", Args: []*ast.Node{socrates}, Negated: true}

	e := New()
	result := e.Prove(context.Background(), cs, goal, backend.Options{})
	if result.Result != backend.Proved {
		t.Fatalf("expected Proved, got %v (err=%v)", result.Result, result.Err)
	}
}
