// Package sat wraps github.com/irifrance/gini as the propositional ground
// solver back-end (§4.E), including blocking-clause multi-model
// extraction.
package sat

import (
	"context"
	"fmt"
	"time"

	"github.com/irifrance/gini"
	"github.com/irifrance/gini/z"

	"folengine/internal/backend"
	"folengine/internal/clause"
	"folengine/internal/logging"
)

// Engine drives a gini instance over ground propositional clauses derived
// from a folengine clause.ClauseSet — every distinct ground literal key
// (`pred(args)`) becomes a stable gini variable.
type Engine struct{}

// New returns a SAT back-end. gini instances are created per call since
// clause sets differ between calls and gini has no incremental "reset".
func New() *Engine { return &Engine{} }

func (e *Engine) Name() string { return "sat/gini" }

func (e *Engine) Capabilities() backend.Capabilities {
	return backend.Capabilities{FullFOL: true, Streaming: true}
}

func (e *Engine) Init() error  { return nil }
func (e *Engine) Close() error { return nil }

// litTable maps a ground literal's key to its gini variable, assigning
// fresh variables on first sight.
type litTable struct {
	g    *gini.Gini
	vars map[string]z.Var
}

func newLitTable(g *gini.Gini) *litTable {
	return &litTable{g: g, vars: make(map[string]z.Var)}
}

func (t *litTable) lit(l clause.Literal) z.Lit {
	key := l.PositiveKey()
	v, ok := t.vars[key]
	if !ok {
		lit := t.g.Lit()
		v = lit.Var()
		t.vars[key] = v
	}
	m := v.Pos()
	if l.Negated {
		m = v.Neg()
	}
	return m
}

func assertClauseSet(g *gini.Gini, t *litTable, cs clause.ClauseSet, extra ...clause.Literal) {
	for _, c := range cs.Clauses {
		for _, l := range c.Literals {
			g.Add(t.lit(l))
		}
		g.Add(z.LitNull)
	}
	if len(extra) > 0 {
		for _, l := range extra {
			g.Add(t.lit(l))
		}
		g.Add(z.LitNull)
	}
}

// Prove asserts premises ∧ ¬goal and checks satisfiability: UNSAT means the
// premises entail the goal (proved); SAT exposes a countermodel (failed).
// cs already carries the negated goal as one of its own clauses (the
// dispatcher clausifies premises and ¬goal together), so no separate
// assertion of goal is needed or correct here.
func (e *Engine) Prove(ctx context.Context, cs clause.ClauseSet, goal clause.Literal, opts backend.Options) backend.Result {
	start := time.Now()
	if len(cs.Clauses) == 0 {
		return backend.Result{Result: backend.Failed, EngineUsed: e.Name(), Message: "empty clause set is trivially satisfiable"}
	}

	g := gini.New()
	t := newLitTable(g)
	assertClauseSet(g, t, cs)

	verdict := solveWithBudget(ctx, g, opts.MaxSeconds)
	stats := backend.Statistics{
		TimeMs:        time.Since(start).Milliseconds(),
		ClauseCount:   len(cs.Clauses),
		VariableCount: len(t.vars),
	}
	logging.SAT("prove: vars=%d clauses=%d verdict=%d", stats.VariableCount, stats.ClauseCount, verdict)

	switch verdict {
	case -1:
		return backend.Result{Result: backend.Proved, EngineUsed: e.Name(), Statistics: stats}
	case 1:
		return backend.Result{
			Result:     backend.Failed,
			EngineUsed: e.Name(),
			Statistics: stats,
			Bindings:   extractAssignment(g, t),
			Message:    "premises and the negated goal are jointly satisfiable",
		}
	default:
		return backend.Result{Result: backend.Timeout, EngineUsed: e.Name(), Statistics: stats, Err: backend.NewError(backend.ErrTimeout, "sat solve exceeded maxSeconds")}
	}
}

// CheckSat reports whether cs alone is satisfiable.
func (e *Engine) CheckSat(ctx context.Context, cs clause.ClauseSet) backend.Result {
	start := time.Now()
	if len(cs.Clauses) == 0 {
		return backend.Result{Result: backend.Failed, EngineUsed: e.Name(), Message: "empty clause set is trivially satisfiable"}
	}
	g := gini.New()
	t := newLitTable(g)
	assertClauseSet(g, t, cs)

	verdict := solveWithBudget(ctx, g, 0)
	stats := backend.Statistics{
		TimeMs:        time.Since(start).Milliseconds(),
		ClauseCount:   len(cs.Clauses),
		VariableCount: len(t.vars),
	}
	if verdict == -1 {
		return backend.Result{Result: backend.NoModelFound, EngineUsed: e.Name(), Statistics: stats, Message: "unsatisfiable"}
	}
	return backend.Result{Result: backend.Failed, EngineUsed: e.Name(), Statistics: stats, Bindings: extractAssignment(g, t)}
}

// FindModels extracts up to k satisfying assignments of cs by repeatedly
// adding a blocking clause that excludes the previous assignment, per
// §4.E's multiple-model extraction.
func (e *Engine) FindModels(ctx context.Context, cs clause.ClauseSet, k int) []map[string]bool {
	g := gini.New()
	t := newLitTable(g)
	assertClauseSet(g, t, cs)

	var models []map[string]bool
	for len(models) < k {
		if solveWithBudget(ctx, g, 0) != 1 {
			break
		}
		assignment := make(map[string]bool, len(t.vars))
		for key, v := range t.vars {
			assignment[key] = g.Value(v.Pos())
		}
		models = append(models, assignment)

		for _, v := range t.vars {
			if g.Value(v.Pos()) {
				g.Add(v.Neg())
			} else {
				g.Add(v.Pos())
			}
		}
		g.Add(z.LitNull)
	}
	return models
}

func solveWithBudget(ctx context.Context, g *gini.Gini, maxSeconds time.Duration) int {
	if maxSeconds <= 0 {
		if dl, ok := ctx.Deadline(); ok {
			maxSeconds = time.Until(dl)
		}
	}
	if maxSeconds > 0 {
		return g.Try(maxSeconds)
	}
	return g.Solve()
}

func extractAssignment(g *gini.Gini, t *litTable) map[string]string {
	out := make(map[string]string, len(t.vars))
	for key, v := range t.vars {
		out[key] = fmt.Sprintf("%v", g.Value(v.Pos()))
	}
	return out
}
