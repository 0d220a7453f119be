package smt

import (
	"context"
	"strings"
	"testing"

	"folengine/internal/ast"
	"folengine/internal/backend"
	"folengine/internal/clause"
	"folengine/internal/normalize"
)

func mustClausify(t *testing.T, formula string) clause.ClauseSet {
	t.Helper()
	n, err := ast.Parse(formula)
	if err != nil {
		t.Fatalf("parse(%q): %v", formula, err)
	}
	return normalize.Pipeline(n, normalize.NewSkolemEnv())
}

func TestCompileProgramRendersHornRuleAndGoal(t *testing.T) {
	cs := mustClausify(t, "all x (man(x) -> mortal(x))")
	// goal carries the negated conclusion, as the dispatcher always hands
	// it: Negated=true here stands for "not mortal(socrates)".
	goal := clause.Literal{Predicate: "mortal", Args: []*ast.Node{ast.NewConstant("socrates")}, Negated: true}

	program, err := compileProgram(cs, goal)
	if err != nil {
		t.Fatalf("compileProgram: %v", err)
	}
	if !strings.Contains(program, "Decl mortal(X0).") {
		t.Fatalf("expected a Decl for mortal/1, got:\n%s", program)
	}
	if !strings.Contains(program, "mortal(X) :- man(X).") {
		t.Fatalf("expected mortal(X) :- man(X). with the body rendered positively (no NAF marker), got:\n%s", program)
	}
	if !strings.Contains(program, goalPredicate+"() :- !mortal(/socrates).") {
		t.Fatalf("expected the negated goal rule, got:\n%s", program)
	}
}

func TestMangleTermRendersConstantsAndVariablesDistinctly(t *testing.T) {
	c := ast.NewConstant("socrates")
	v := ast.NewVariable("x")
	if got := mangleTerm(c); got != "/socrates" {
		t.Fatalf("expected /socrates, got %s", got)
	}
	if got := mangleTerm(v); got != "X" {
		t.Fatalf("expected uppercased variable name X, got %s", got)
	}
}

func TestProveRejectsNonHornClauseSet(t *testing.T) {
	cs := mustClausify(t, "P(a) | Q(a)")
	e := New()
	result := e.Prove(context.Background(), cs, clause.Literal{Predicate: "P", Args: []*ast.Node{ast.NewConstant("a")}}, backend.Options{})
	if result.Result != backend.Error {
		t.Fatalf("expected non-Horn input to be rejected, got %v", result.Result)
	}
	if result.Err == nil || result.Err.Kind != backend.ErrUnsupported {
		t.Fatalf("expected ErrUnsupported, got %v", result.Err)
	}
}
