package clause

import (
	"testing"

	"folengine/internal/ast"
)

func TestUnifyConstants(t *testing.T) {
	a := ast.NewConstant("socrates")
	b := ast.NewConstant("socrates")
	if _, ok := Unify(a, b, NewSubstitution()); !ok {
		t.Fatal("expected identical constants to unify")
	}
	c := ast.NewConstant("plato")
	if _, ok := Unify(a, c, NewSubstitution()); ok {
		t.Fatal("expected distinct constants to fail to unify")
	}
}

func TestUnifyVariableBinding(t *testing.T) {
	x := ast.NewVariable("x")
	c := ast.NewConstant("socrates")
	s, ok := Unify(x, c, NewSubstitution())
	if !ok {
		t.Fatal("expected variable to unify with constant")
	}
	if got := s.Apply(x); got.Name != "socrates" {
		t.Fatalf("expected x bound to socrates, got %v", got)
	}
}

func TestUnifyFunctions(t *testing.T) {
	left := ast.NewFunction("f", ast.NewVariable("x"), ast.NewConstant("a"))
	right := ast.NewFunction("f", ast.NewConstant("b"), ast.NewConstant("a"))
	s, ok := Unify(left, right, NewSubstitution())
	if !ok {
		t.Fatal("expected f(x,a) and f(b,a) to unify with x bound to b")
	}
	if got := s.Apply(ast.NewVariable("x")); got.Name != "b" {
		t.Fatalf("expected x bound to b, got %v", got)
	}
}

func TestUnifyFunctionsInconsistentBinding(t *testing.T) {
	left := ast.NewFunction("f", ast.NewVariable("x"), ast.NewConstant("a"))
	right := ast.NewFunction("f", ast.NewConstant("b"), ast.NewVariable("x"))
	if _, ok := Unify(left, right, NewSubstitution()); ok {
		t.Fatal("expected f(x,a) and f(b,x) to fail: x cannot be both b and a")
	}
}

func TestUnifyOccursCheck(t *testing.T) {
	x := ast.NewVariable("x")
	fx := ast.NewFunction("f", x)
	if _, ok := Unify(x, fx, NewSubstitution()); ok {
		t.Fatal("expected occurs-check to reject x = f(x)")
	}
}

func TestUnifyArityMismatch(t *testing.T) {
	left := ast.NewFunction("f", ast.NewConstant("a"))
	right := ast.NewFunction("f", ast.NewConstant("a"), ast.NewConstant("b"))
	if _, ok := Unify(left, right, NewSubstitution()); ok {
		t.Fatal("expected arity mismatch to fail unification")
	}
}

func TestComplementaryLiterals(t *testing.T) {
	pos := Literal{Predicate: "mortal", Args: []*ast.Node{ast.NewVariable("x")}}
	neg := Literal{Predicate: "mortal", Args: []*ast.Node{ast.NewConstant("socrates")}, Negated: true}
	s, ok := Complementary(pos, neg, NewSubstitution())
	if !ok {
		t.Fatal("expected mortal(x) and -mortal(socrates) to be complementary")
	}
	if got := s.Apply(ast.NewVariable("x")); got.Name != "socrates" {
		t.Fatalf("expected x bound to socrates, got %v", got)
	}
}

func TestComplementaryRequiresOppositePolarity(t *testing.T) {
	a := Literal{Predicate: "p", Args: []*ast.Node{ast.NewConstant("a")}}
	b := Literal{Predicate: "p", Args: []*ast.Node{ast.NewConstant("a")}}
	if _, ok := Complementary(a, b, NewSubstitution()); ok {
		t.Fatal("expected same-polarity literals not to be complementary")
	}
}

func TestLiteralKeyDistinguishesArityAndPolarity(t *testing.T) {
	a := Literal{Predicate: "p", Args: []*ast.Node{ast.NewConstant("a")}}
	b := Literal{Predicate: "p", Args: []*ast.Node{ast.NewConstant("a")}, Negated: true}
	if a.Key() == b.Key() {
		t.Fatal("expected differing polarity to produce differing keys")
	}
	c := Literal{Predicate: "p", Args: []*ast.Node{ast.NewConstant("a"), ast.NewConstant("b")}}
	if a.Key() == c.Key() {
		t.Fatal("expected differing arity to produce differing keys")
	}
}

func TestClauseHornClassification(t *testing.T) {
	fact := Clause{Literals: []Literal{{Predicate: "man", Args: []*ast.Node{ast.NewConstant("socrates")}}}}
	if !fact.IsHorn() || !fact.IsFact() {
		t.Fatal("expected unit positive clause to be a Horn fact")
	}

	rule := Clause{Literals: []Literal{
		{Predicate: "mortal", Args: []*ast.Node{ast.NewVariable("x")}},
		{Predicate: "man", Args: []*ast.Node{ast.NewVariable("x")}, Negated: true},
	}}
	if !rule.IsHorn() || !rule.IsRule() {
		t.Fatal("expected one-positive-literal clause to be a Horn rule")
	}

	nonHorn := Clause{Literals: []Literal{
		{Predicate: "p", Args: nil},
		{Predicate: "q", Args: nil},
	}}
	if nonHorn.IsHorn() {
		t.Fatal("expected two positive literals to be non-Horn")
	}
}

func TestClauseTautologyAndDedup(t *testing.T) {
	p := Literal{Predicate: "p", Args: []*ast.Node{ast.NewConstant("a")}}
	c := Clause{Literals: []Literal{p, p, p.Negate()}}
	if !c.IsTautology() {
		t.Fatal("expected p(a) | -p(a) to be a tautology")
	}
	d := c.Dedup()
	if len(d.Literals) != 2 {
		t.Fatalf("expected dedup to collapse duplicate p(a), got %d literals", len(d.Literals))
	}
}
