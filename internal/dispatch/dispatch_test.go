package dispatch

import (
	"context"
	"testing"
	"time"

	"folengine/internal/ast"
	"folengine/internal/backend"
	"folengine/internal/normalize"
)

func mustParse(t *testing.T, s string) *ast.Node {
	t.Helper()
	n, err := ast.Parse(s)
	if err != nil {
		t.Fatalf("parse(%q): %v", s, err)
	}
	return n
}

func newDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	d, err := New()
	if err != nil {
		t.Fatalf("New(): %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// TestRouteHornNoEqualityPrefersProlog verifies testable property #6: a
// Horn, equality-free clause set routes to the Prolog back-end.
func TestRouteHornNoEqualityPrefersProlog(t *testing.T) {
	d := newDispatcher(t)
	premises := []*ast.Node{mustParse(t, "all x (man(x) -> mortal(x))"), mustParse(t, "man(socrates)")}
	goal := mustParse(t, "mortal(socrates)")

	_, _, engine, err := d.route(normalize.NewSkolemEnv(), conjoin(premises), goal, Auto)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if engine != Prolog {
		t.Fatalf("expected Horn equality-free input to route to prolog, got %s", engine)
	}
}

// TestRouteEqualityPrefersSMT verifies that a clause set carrying an
// equality literal routes to the SMT back-end regardless of its Horn shape.
func TestRouteEqualityPrefersSMT(t *testing.T) {
	d := newDispatcher(t)
	premises := []*ast.Node{mustParse(t, "a = b"), mustParse(t, "b = c")}
	goal := mustParse(t, "a = c")

	_, _, engine, err := d.route(normalize.NewSkolemEnv(), conjoin(premises), goal, Auto)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if engine != SMT {
		t.Fatalf("expected equality-bearing input to route to smt, got %s", engine)
	}
}

// TestProveEqualityChain exercises the full Prove path over the transitive
// equality chain a=b, b=c, c=d |- a=d, which requires the SMT back-end's
// directed equality rewriting rather than a bare uninterpreted atom.
func TestProveEqualityChain(t *testing.T) {
	d := newDispatcher(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result := d.Prove(ctx, Request{
		Premises: []*ast.Node{
			mustParse(t, "a = b"),
			mustParse(t, "b = c"),
			mustParse(t, "c = d"),
		},
		Goal:    mustParse(t, "a = d"),
		Engine:  Auto,
		Options: backend.Options{MaxSeconds: 5 * time.Second},
	})
	if result.Result != backend.Proved {
		t.Fatalf("expected the equality chain to be proved, got %v (err=%v)", result.Result, result.Err)
	}
	if result.EngineUsed == "" {
		t.Fatal("expected EngineUsed to be populated")
	}
}

// TestProveEqualityChainFailsWhenNotEntailed verifies the same SMT path
// correctly reports a countermodel when the chain does not reach the goal.
func TestProveEqualityChainFailsWhenNotEntailed(t *testing.T) {
	d := newDispatcher(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result := d.Prove(ctx, Request{
		Premises: []*ast.Node{
			mustParse(t, "a = b"),
		},
		Goal:    mustParse(t, "a = c"),
		Engine:  Auto,
		Options: backend.Options{MaxSeconds: 5 * time.Second},
	})
	if result.Result != backend.Failed {
		t.Fatalf("expected the unentailed equality goal to fail, got %v (err=%v)", result.Result, result.Err)
	}
}

// TestRouteNonHornPrefersSAT verifies a non-Horn, equality-free clause set
// routes to SAT.
func TestRouteNonHornPrefersSAT(t *testing.T) {
	d := newDispatcher(t)
	premises := []*ast.Node{mustParse(t, "P(a) | Q(a)")}
	goal := mustParse(t, "R(a)")

	_, _, engine, err := d.route(normalize.NewSkolemEnv(), conjoin(premises), goal, Auto)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if engine != SAT {
		t.Fatalf("expected non-Horn equality-free input to route to sat, got %s", engine)
	}
}

// TestRouteHonorsExplicitEngine verifies an explicit engine request
// bypasses the auto-mode heuristic entirely.
func TestRouteHonorsExplicitEngine(t *testing.T) {
	d := newDispatcher(t)
	premises := []*ast.Node{mustParse(t, "all x (man(x) -> mortal(x))")}
	goal := mustParse(t, "mortal(socrates)")

	_, _, engine, err := d.route(normalize.NewSkolemEnv(), conjoin(premises), goal, SAT)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if engine != SAT {
		t.Fatalf("expected explicit sat request to be honored, got %s", engine)
	}
}

// TestProveSocrates exercises the full Prove path end to end against the
// textbook syllogism.
func TestProveSocrates(t *testing.T) {
	d := newDispatcher(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result := d.Prove(ctx, Request{
		Premises: []*ast.Node{
			mustParse(t, "all x (man(x) -> mortal(x))"),
			mustParse(t, "man(socrates)"),
		},
		Goal:    mustParse(t, "mortal(socrates)"),
		Engine:  Auto,
		Options: backend.Options{MaxSeconds: 5 * time.Second},
	})
	if result.Result != backend.Proved {
		t.Fatalf("expected Proved, got %v (err=%v)", result.Result, result.Err)
	}
	if result.EngineUsed == "" {
		t.Fatal("expected EngineUsed to be populated")
	}
}

// TestProveFailsWhenGoalUnprovable exercises the full Prove path with a goal
// the premises do not entail: P(a) says nothing about Q(a), so the result
// must not be Proved.
func TestProveFailsWhenGoalUnprovable(t *testing.T) {
	d := newDispatcher(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result := d.Prove(ctx, Request{
		Premises: []*ast.Node{mustParse(t, "P(a)")},
		Goal:     mustParse(t, "Q(a)"),
		Engine:   Auto,
		Options:  backend.Options{MaxSeconds: 5 * time.Second},
	})
	if result.Result == backend.Proved {
		t.Fatal("expected an unrelated goal not to be proved from an unrelated premise")
	}
}
