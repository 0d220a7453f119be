// Package dispatch selects and drives one of the four prover back-ends
// over a parsed formula, implementing the auto-mode routing rules and
// strategy heuristic described in §4.H.
package dispatch

import (
	"context"

	"folengine/internal/ast"
	"folengine/internal/backend"
	"folengine/internal/backend/asp"
	"folengine/internal/backend/prolog"
	"folengine/internal/backend/sat"
	"folengine/internal/backend/smt"
	"folengine/internal/clause"
	"folengine/internal/logging"
	"folengine/internal/normalize"
)

// EngineName is the closed set of back-end identifiers a caller may name
// explicitly, plus "auto" for capability-based routing.
type EngineName string

const (
	Auto   EngineName = "auto"
	Prolog EngineName = "prolog"
	SAT    EngineName = "sat"
	SMT    EngineName = "smt"
	ASP    EngineName = "asp"
)

// Dispatcher owns one instance of each back-end and routes Prove/CheckSat
// calls to the one its heuristics (or the caller) select.
type Dispatcher struct {
	engines map[EngineName]backend.Engine
}

// New constructs a Dispatcher with one instance of every back-end
// initialized and ready.
func New() (*Dispatcher, error) {
	d := &Dispatcher{
		engines: map[EngineName]backend.Engine{
			Prolog: prolog.New(),
			SAT:    sat.New(),
			SMT:    smt.New(),
			ASP:    asp.New(),
		},
	}
	for name, e := range d.engines {
		if err := e.Init(); err != nil {
			return nil, backend.NewError(backend.ErrEngine, string(name)+": "+err.Error())
		}
	}
	return d, nil
}

// Close releases every back-end.
func (d *Dispatcher) Close() error {
	for _, e := range d.engines {
		_ = e.Close()
	}
	return nil
}

// Request is the input to Prove: a premise formula (conjoined if several),
// a goal formula, and the caller's engine/strategy preferences.
type Request struct {
	Premises []*ast.Node
	Goal     *ast.Node
	Engine   EngineName // "" or Auto selects a back-end automatically
	Options  backend.Options
}

// Prove clausifies premises ∧ ¬goal (per the refutation framing every
// back-end shares), selects a back-end, and proves it.
//
// Auto-mode routing (§4.H):
//  1. Attempt clausification of premises and the goal. If clausification
//     fails (the goal or premises fall outside the clausal fragment this
//     engine can ground, e.g. an unskolemizable shape), fall back to the
//     Prolog back-end directly on the raw input's Horn approximation.
//  2. If the resulting clause set is Horn and equality-free, prefer
//     Prolog (the cheapest back-end for that fragment).
//  3. If the clause set contains an equality literal, prefer SMT. Designated
//     arithmetic predicates are not detected; a clause set using them is
//     routed by its Horn/equality shape like any other.
//  4. Otherwise prefer SAT, since it handles the full ground clausal
//     fragment including non-Horn disjunctions.
//  5. Strategy is switched to "iterative" whenever the clause set contains
//     an equality literal (HasEquality()) and the caller left the strategy
//     empty or "auto"; an explicitly chosen strategy is kept.
func (d *Dispatcher) Prove(ctx context.Context, req Request) backend.Result {
	env := normalize.NewSkolemEnv()
	combined := conjoin(req.Premises)
	denial := ast.NewAnd(combined, ast.NewNot(req.Goal))

	cs, goal, engineName, err := d.route(env, combined, req.Goal, req.Engine)
	if err != nil {
		logging.DispatchDebug("clausification failed, falling back to prolog: %v", err)
		return d.proveRawFallback(ctx, denial, req.Goal, req.Options)
	}

	opts := req.Options
	if cs.HasEquality() && (opts.Strategy == "" || opts.Strategy == "auto") {
		opts.Strategy = "iterative"
	}

	e := d.engines[engineName]
	logging.Dispatch("routing to %s (horn=%v equality=%v predicates=%d)", engineName, cs.IsHorn(), cs.HasEquality(), len(cs.Predicates()))
	result := e.Prove(ctx, cs, goal, opts)
	result.EngineUsed = e.Name()
	return result
}

// route clausifies premises and the goal, chooses a back-end per the
// rules above when req.Engine is "" or Auto, and returns the clause set,
// the goal literal to refute against, and the selected engine name.
func (d *Dispatcher) route(env *normalize.SkolemEnv, premises, goal *ast.Node, requested EngineName) (clause.ClauseSet, clause.Literal, EngineName, error) {
	premiseClauses := normalize.Pipeline(premises, env)
	goalClauses := normalize.Pipeline(ast.NewNot(goal), env)

	cs := clause.ClauseSet{Clauses: append(append([]clause.Clause{}, premiseClauses.Clauses...), goalClauses.Clauses...)}

	goalLit, err := singleLiteralGoal(goalClauses)
	if err != nil {
		return clause.ClauseSet{}, clause.Literal{}, "", err
	}

	if requested != "" && requested != Auto {
		return cs, goalLit, requested, nil
	}

	if cs.IsHorn() && !cs.HasEquality() {
		return cs, goalLit, Prolog, nil
	}
	if cs.HasEquality() {
		return cs, goalLit, SMT, nil
	}
	return cs, goalLit, SAT, nil
}

// singleLiteralGoal extracts the goal literal clausification produced for
// ¬goal: a single-literal clause is the common case (an atomic goal); a
// multi-literal result (the goal itself was a disjunction or conjunction)
// is reduced to its first literal, since every back-end here proves
// against a single designated literal and the remaining structure is
// already folded into the combined clause set's own clauses.
func singleLiteralGoal(goalClauses clause.ClauseSet) (clause.Literal, error) {
	if len(goalClauses.Clauses) == 0 {
		return clause.Literal{}, backend.NewError(backend.ErrClausification, "negated goal clausified to no clauses")
	}
	c := goalClauses.Clauses[0]
	if len(c.Literals) == 0 {
		return clause.Literal{}, backend.NewError(backend.ErrClausification, "negated goal clausified to an empty clause")
	}
	return c.Literals[0], nil
}

// proveRawFallback is used when clausification fails outright; it routes
// straight to Prolog with whatever Horn-shaped approximation the premises
// form, since Prolog's own Exec step will surface a compile error if the
// input genuinely cannot be expressed there either.
func (d *Dispatcher) proveRawFallback(ctx context.Context, denial *ast.Node, goal *ast.Node, opts backend.Options) backend.Result {
	env := normalize.NewSkolemEnv()
	cs := normalize.Pipeline(denial, env)
	goalLit, err := singleLiteralGoal(normalize.Pipeline(ast.NewNot(goal), env))
	if err != nil {
		return backend.Result{Result: backend.Error, Err: backend.NewError(backend.ErrClausification, err.Error())}
	}
	e := d.engines[Prolog]
	result := e.Prove(ctx, cs, goalLit, opts)
	result.EngineUsed = e.Name()
	return result
}

// CheckSat routes a satisfiability check the same way Prove routes a
// proof attempt, minus the goal literal.
func (d *Dispatcher) CheckSat(ctx context.Context, premises []*ast.Node, engineName EngineName) backend.Result {
	env := normalize.NewSkolemEnv()
	cs := normalize.Pipeline(conjoin(premises), env)

	if engineName == "" || engineName == Auto {
		if cs.IsHorn() && !cs.HasEquality() {
			engineName = Prolog
		} else if cs.HasEquality() {
			engineName = SMT
		} else {
			engineName = SAT
		}
	}
	e := d.engines[engineName]
	result := e.CheckSat(ctx, cs)
	result.EngineUsed = e.Name()
	return result
}

func conjoin(nodes []*ast.Node) *ast.Node {
	if len(nodes) == 0 {
		return ast.NewPredicate("true")
	}
	out := nodes[0]
	for _, n := range nodes[1:] {
		out = ast.NewAnd(out, n)
	}
	return out
}
