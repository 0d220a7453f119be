package ast

import (
	"testing"
)

func TestParseSocrates(t *testing.T) {
	n, err := Parse("all x (man(x) -> mortal(x))")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if n.Kind != KForall || n.BoundVar != "x" {
		t.Fatalf("expected Forall(x), got %v", n.Kind)
	}
	if n.Body().Kind != KImplies {
		t.Fatalf("expected Implies body, got %v", n.Body().Kind)
	}
}

func TestParseNullaryPredicateAndConstant(t *testing.T) {
	n, err := Parse("mortal(socrates)")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if n.Kind != KPredicate || n.Name != "mortal" {
		t.Fatalf("expected Predicate(mortal), got %v %s", n.Kind, n.Name)
	}
	if len(n.Args) != 1 || n.Args[0].Kind != KConstant || n.Args[0].Name != "socrates" {
		t.Fatalf("expected Constant(socrates) argument, got %+v", n.Args)
	}
}

func TestParseVariableConvention(t *testing.T) {
	n, err := Parse("P(x, y, abc)")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if n.Args[0].Kind != KVariable || n.Args[1].Kind != KVariable {
		t.Fatalf("expected x, y to be variables, got %v %v", n.Args[0].Kind, n.Args[1].Kind)
	}
	if n.Args[2].Kind != KConstant {
		t.Fatalf("expected abc to be a constant, got %v", n.Args[2].Kind)
	}
}

func TestParseEquality(t *testing.T) {
	n, err := Parse("a = b")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if n.Kind != KEquals {
		t.Fatalf("expected Equals, got %v", n.Kind)
	}
}

func TestParsePrecedence(t *testing.T) {
	// AND binds tighter than OR, which binds tighter than IMPLIES, tighter than IFF.
	n, err := Parse("P(a) & Q(a) | R(a) -> S(a) <-> T(a)")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if n.Kind != KIff {
		t.Fatalf("expected top-level Iff, got %v", n.Kind)
	}
	implies := n.Left()
	if implies.Kind != KImplies {
		t.Fatalf("expected Implies under Iff, got %v", implies.Kind)
	}
	or := implies.Left()
	if or.Kind != KOr {
		t.Fatalf("expected Or under Implies, got %v", or.Kind)
	}
	and := or.Left()
	if and.Kind != KAnd {
		t.Fatalf("expected And under Or, got %v", and.Kind)
	}
}

func TestParseDoubleNegation(t *testing.T) {
	n, err := Parse("--P(a)")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if n.Kind != KNot || n.Body().Kind != KNot {
		t.Fatalf("expected Not(Not(...)), got %v", n.Kind)
	}
}

func TestParseMultiVariableQuantifier(t *testing.T) {
	n, err := Parse("all x y P(x, y)")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if n.Kind != KForall || n.BoundVar != "x" {
		t.Fatalf("expected outer Forall(x), got %v %s", n.Kind, n.BoundVar)
	}
	inner := n.Body()
	if inner.Kind != KForall || inner.BoundVar != "y" {
		t.Fatalf("expected inner Forall(y), got %v %s", inner.Kind, inner.BoundVar)
	}
}

func TestParseTrailingDot(t *testing.T) {
	if _, err := Parse("man(socrates)."); err != nil {
		t.Fatalf("expected trailing dot to be accepted, got %v", err)
	}
}

func TestParseUnterminated(t *testing.T) {
	_, err := Parse("P(x")
	if err == nil {
		t.Fatal("expected parse error for unterminated input")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Pos != 3 {
		t.Fatalf("expected error position at end of input (3), got %d", pe.Pos)
	}
}

func TestParseUnrecognizedChar(t *testing.T) {
	if _, err := Parse("P(a) # Q(b)"); err == nil {
		t.Fatal("expected parse error for unrecognized character")
	}
}

// TestParserTotalityRoundTrip verifies testable property #1: every accepted
// string reparses via String() to a structurally equivalent AST.
func TestParserTotalityRoundTrip(t *testing.T) {
	inputs := []string{
		"all x (man(x) -> mortal(x))",
		"man(socrates)",
		"P(a) | Q(a)",
		"-P(a)",
		"--P(a)",
		"a = b",
		"exists x all y (P(x, y) <-> Q(y, x))",
		"all x y P(x, y)",
		"f(g(x), a) = h(b, y)",
	}
	for _, in := range inputs {
		n, err := Parse(in)
		if err != nil {
			t.Fatalf("parse(%q) failed: %v", in, err)
		}
		s := String(n)
		n2, err := Parse(s)
		if err != nil {
			t.Fatalf("reparse of %q (from %q) failed: %v", s, in, err)
		}
		if !n.StructurallyEqual(n2) {
			t.Fatalf("round-trip mismatch for %q: rendered %q reparsed to a different shape", in, s)
		}
	}
}

func TestFreeVars(t *testing.T) {
	n, err := Parse("all x (P(x, y) -> Q(z))")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	fv := FreeVars(n)
	if fv["x"] {
		t.Error("x should be bound, not free")
	}
	if !fv["y"] || !fv["z"] {
		t.Error("y and z should be free")
	}
}
