package normalize

import (
	"testing"

	"folengine/internal/ast"
)

func mustParse(t *testing.T, s string) *ast.Node {
	t.Helper()
	n, err := ast.Parse(s)
	if err != nil {
		t.Fatalf("parse(%q): %v", s, err)
	}
	return n
}

func TestSimplifyIdempotent(t *testing.T) {
	n := mustParse(t, "true(a) & P(a)")
	once := Simplify(n)
	twice := Simplify(once)
	if !once.StructurallyEqual(twice) {
		t.Fatal("expected Simplify to be idempotent")
	}
}

func TestSimplifyFoldsConjunctionWithFalse(t *testing.T) {
	n := mustParse(t, "false & P(a)")
	got := Simplify(n)
	if !got.StructurallyEqual(falseNode()) {
		t.Fatalf("expected false & P(a) to fold to false, got %s", ast.String(got))
	}
}

func TestSimplifyCollapsesDoubleNegation(t *testing.T) {
	n := mustParse(t, "--P(a)")
	got := Simplify(n)
	if got.Kind != ast.KPredicate {
		t.Fatalf("expected double negation to collapse to a bare predicate, got %v", got.Kind)
	}
}

// TestNNFShape verifies testable property #3: every Not in the result
// wraps an atomic node.
func TestNNFShape(t *testing.T) {
	n := mustParse(t, "-(all x (man(x) -> mortal(x)))")
	got := ToNNF(n)
	assertNNFShape(t, got)
}

func assertNNFShape(t *testing.T, n *ast.Node) {
	t.Helper()
	switch n.Kind {
	case ast.KNot:
		if !n.Body().IsAtomic() {
			t.Fatalf("Not wraps non-atomic node %v in %s", n.Body().Kind, ast.String(n))
		}
	case ast.KForall, ast.KExists:
		assertNNFShape(t, n.Body())
	case ast.KAnd, ast.KOr:
		assertNNFShape(t, n.Left())
		assertNNFShape(t, n.Right())
	case ast.KImplies, ast.KIff:
		t.Fatalf("NNF result retained a %v connective in %s", n.Kind, ast.String(n))
	}
}

func TestNNFNegatedExistsBecomesForall(t *testing.T) {
	n := mustParse(t, "-(exists x P(x))")
	got := ToNNF(n)
	if got.Kind != ast.KForall {
		t.Fatalf("expected negated Exists to become Forall, got %v", got.Kind)
	}
	if got.Body().Kind != ast.KNot {
		t.Fatalf("expected negated body, got %v", got.Body().Kind)
	}
}

func TestPrenexHoistsInOrder(t *testing.T) {
	n := mustParse(t, "(all x P(x)) & (exists y Q(y))")
	got := Prenex(ToNNF(n))
	if got.Kind != ast.KForall {
		t.Fatalf("expected outer Forall (left operand bound first), got %v", got.Kind)
	}
	if got.Body().Kind != ast.KExists {
		t.Fatalf("expected inner Exists, got %v", got.Body().Kind)
	}
}

func TestPrenexAlphaRenamesCapture(t *testing.T) {
	// Both sides bind "x"; prenexing must not let one capture the other's
	// free occurrence.
	n := mustParse(t, "(all x P(x)) & (exists x Q(x))")
	got := Prenex(ToNNF(n))
	binders := map[string]bool{}
	cur := got
	for cur.IsQuantifier() {
		binders[cur.BoundVar] = true
		cur = cur.Body()
	}
	if len(binders) != 2 {
		t.Fatalf("expected two distinct bound variable names after alpha-renaming, got %v", binders)
	}
}

func TestSkolemizeGroundExistentialBecomesConstant(t *testing.T) {
	n := mustParse(t, "exists x P(x)")
	env := NewSkolemEnv()
	got := Skolemize(Prenex(ToNNF(n)), env)
	pred := got
	if pred.Kind == ast.KForall || pred.Kind == ast.KExists {
		t.Fatalf("expected existential to vanish, got %v", pred.Kind)
	}
	if pred.Args[0].Kind != ast.KConstant {
		t.Fatalf("expected Skolem constant, got %v", pred.Args[0].Kind)
	}
}

func TestSkolemizeDependsOnUniversalPrefix(t *testing.T) {
	n := mustParse(t, "all x exists y P(x, y)")
	env := NewSkolemEnv()
	got := Skolemize(Prenex(ToNNF(n)), env)
	if got.Kind != ast.KForall {
		t.Fatalf("expected outer Forall x to remain, got %v", got.Kind)
	}
	body := got.Body()
	if body.Kind != ast.KPredicate {
		t.Fatalf("expected predicate body, got %v", body.Kind)
	}
	skTerm := body.Args[1]
	if skTerm.Kind != ast.KFunction || len(skTerm.Args) != 1 || skTerm.Args[0].Name != "x" {
		t.Fatalf("expected Skolem function of x, got %s", ast.String(skTerm))
	}
}

// TestSkolemEnvReusesContext verifies testable property #4: identical
// contexts reuse the same Skolem symbol, and distinct contexts never
// collide.
func TestSkolemEnvReusesContext(t *testing.T) {
	env := NewSkolemEnv()
	a := Skolemize(Prenex(ToNNF(mustParse(t, "all x exists y P(x, y)"))), env)
	b := Skolemize(Prenex(ToNNF(mustParse(t, "all x exists y P(x, y)"))), env)
	if ast.String(a) != ast.String(b) {
		t.Fatalf("expected identical contexts to reuse the same Skolem symbol:\n%s\n%s", ast.String(a), ast.String(b))
	}
	if env.Count() != 1 {
		t.Fatalf("expected exactly one Skolem symbol minted, got %d", env.Count())
	}

	c := Skolemize(Prenex(ToNNF(mustParse(t, "all x exists y Q(x, y)"))), env)
	_ = c
	if env.Count() != 2 {
		t.Fatalf("expected a distinct existential context to mint a new symbol, got count %d", env.Count())
	}
}

func TestClausifySocrates(t *testing.T) {
	n := mustParse(t, "all x (man(x) -> mortal(x))")
	env := NewSkolemEnv()
	cs := Pipeline(n, env)
	if len(cs.Clauses) != 1 {
		t.Fatalf("expected 1 clause, got %d", len(cs.Clauses))
	}
	c := cs.Clauses[0]
	if !c.IsHorn() || !c.IsRule() {
		t.Fatalf("expected mortal(x) :- man(x) to be a Horn rule, got %+v", c)
	}
}

func TestClausifyDisjunctionIsNonHorn(t *testing.T) {
	n := mustParse(t, "P(a) | Q(a)")
	env := NewSkolemEnv()
	cs := Pipeline(n, env)
	if len(cs.Clauses) != 1 {
		t.Fatalf("expected 1 clause, got %d", len(cs.Clauses))
	}
	if cs.Clauses[0].PositiveCount() != 2 {
		t.Fatalf("expected two positive literals in disjunction clause")
	}
	if cs.IsHorn() {
		t.Fatal("expected P(a) | Q(a) not to be Horn")
	}
}

func TestClausifyDropsTautology(t *testing.T) {
	n := mustParse(t, "P(a) | -P(a)")
	env := NewSkolemEnv()
	cs := Pipeline(n, env)
	if len(cs.Clauses) != 0 {
		t.Fatalf("expected tautology to be dropped, got %d clauses", len(cs.Clauses))
	}
}

func TestClausifyDistributesConjunctionUnderDisjunction(t *testing.T) {
	n := mustParse(t, "(P(a) & Q(a)) | R(a)")
	env := NewSkolemEnv()
	cs := Pipeline(n, env)
	if len(cs.Clauses) != 2 {
		t.Fatalf("expected distribution into 2 clauses, got %d: %+v", len(cs.Clauses), cs.Clauses)
	}
}
