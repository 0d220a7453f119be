package asp

import (
	"strings"
	"testing"

	"folengine/internal/ast"
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

// TestWriteShiftedRulesSplitsDisjunction verifies the shifting
// transformation: a clause with two positive literals becomes two rules,
// each with the sibling head moved to the body as a NAF literal.
func TestWriteShiftedRulesSplitsDisjunction(t *testing.T) {
	cs := mustClausify(t, "P(a) | Q(a)")

	var b strings.Builder
	writeShiftedRules(&b, cs)
	program := b.String()

	if !strings.Contains(program, "P(/a) :- !Q(/a).") {
		t.Fatalf("expected P(/a) :- !Q(/a)., got:\n%s", program)
	}
	if !strings.Contains(program, "Q(/a) :- !P(/a).") {
		t.Fatalf("expected Q(/a) :- !P(/a)., got:\n%s", program)
	}
}

// TestWriteShiftedRulesHornRuleUnchanged verifies a Horn rule (single
// positive literal) shifts to itself unchanged.
func TestWriteShiftedRulesHornRuleUnchanged(t *testing.T) {
	cs := mustClausify(t, "all x (man(x) -> mortal(x))")

	var b strings.Builder
	writeShiftedRules(&b, cs)
	program := b.String()

	if !strings.Contains(program, "mortal(X) :- man(X).") {
		t.Fatalf("expected an unshifted Horn rule, got:\n%s", program)
	}
}

func TestNafGoalRendersNegation(t *testing.T) {
	lit := clause.Literal{Predicate: "P", Args: []*ast.Node{ast.NewConstant("a")}, Negated: true}
	if got := nafGoal(lit); got != "!P(/a)" {
		t.Fatalf("expected !P(/a), got %s", got)
	}
}

func TestCompileProgramIncludesGoalRule(t *testing.T) {
	cs := mustClausify(t, "all x (man(x) -> mortal(x))")
	// goal carries the negated conclusion, as the dispatcher always hands
	// it: Negated=true here stands for "not mortal(socrates)".
	goal := clause.Literal{Predicate: "mortal", Args: []*ast.Node{ast.NewConstant("socrates")}, Negated: true}

	program, err := compileProgram(cs, goal)
	if err != nil {
		t.Fatalf("compileProgram: %v", err)
	}
	if !strings.Contains(program, goalPredicate+"() :- !mortal(/socrates).") {
		t.Fatalf("expected the negated goal rule, got:\n%s", program)
	}
}
