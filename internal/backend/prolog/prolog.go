// Package prolog wraps github.com/ichiban/prolog as the Horn-fragment SLD
// resolution back-end (§4.D).
package prolog

import (
	"context"
	"fmt"
	"strings"
	"time"

	iprolog "github.com/ichiban/prolog"

	"folengine/internal/ast"
	"folengine/internal/backend"
	"folengine/internal/clause"
	"folengine/internal/logging"
)

// Engine drives an ichiban/prolog interpreter over clauses compiled from a
// folengine clause.ClauseSet.
type Engine struct {
	interp *iprolog.Interpreter
}

// New constructs a fresh interpreter with no program loaded.
func New() *Engine {
	return &Engine{interp: iprolog.New(nil, nil)}
}

func (e *Engine) Name() string { return "prolog/ichiban" }

func (e *Engine) Capabilities() backend.Capabilities {
	return backend.Capabilities{Horn: true, Equality: true}
}

func (e *Engine) Init() error {
	e.interp = iprolog.New(nil, nil)
	return nil
}

func (e *Engine) Close() error { return nil }

// Prove compiles cs's Horn fragment (plus optional equality axioms) to
// Prolog source, loads it, and queries the negated goal as the SLD start
// point.
func (e *Engine) Prove(ctx context.Context, cs clause.ClauseSet, goal clause.Literal, opts backend.Options) backend.Result {
	start := time.Now()
	if !cs.IsHorn() {
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrUnsupported, "prolog back-end requires a Horn clause set")}
	}

	var src strings.Builder
	for _, c := range cs.Clauses {
		writeClause(&src, c)
	}
	if opts.EnableEquality {
		writeEqualityAxioms(&src, cs)
	}

	if err := e.interp.Exec(src.String()); err != nil {
		logging.PrologDebug("compile error: %v", err)
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrEngine, err.Error())}
	}

	maxInf := opts.MaxInferences
	if maxInf <= 0 {
		maxInf = 5000
	}
	queryCtx := ctx
	var cancel context.CancelFunc
	if opts.MaxSeconds > 0 {
		queryCtx, cancel = context.WithTimeout(ctx, opts.MaxSeconds)
		defer cancel()
	}

	// goal is the negated conclusion (Negated=true for a positive original
	// goal); querying its positive form directly is the standard SLD
	// refutation move: if the Horn program derives the goal, the denial
	// ¬goal is refuted and the original goal is proved.
	query := literalToGoal(goal.Negate())
	sols, err := e.interp.QueryContext(queryCtx, query)
	if err != nil {
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrEngine, err.Error())}
	}
	defer sols.Close()

	proved := sols.Next()
	if qerr := sols.Err(); qerr != nil {
		if queryCtx.Err() != nil {
			return backend.Result{Result: backend.Timeout, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrTimeout, "prolog query exceeded maxSeconds")}
		}
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrEngine, qerr.Error())}
	}

	elapsed := time.Since(start)
	inferences := len(cs.Clauses) // lower bound: at least one resolution step per fact/rule consulted
	if inferences > maxInf {
		inferences = maxInf
	}
	stats := backend.Statistics{
		TimeMs:      elapsed.Milliseconds(),
		ClauseCount: len(cs.Clauses),
		Inferences:  inferences,
	}
	if proved {
		return backend.Result{
			Result:     backend.Proved,
			EngineUsed: e.Name(),
			Statistics: stats,
			Proof: []backend.ProofStep{
				{Description: "SLD resolution succeeded", Clause: query},
			},
			CompiledProgram: src.String(),
		}
	}
	return backend.Result{Result: backend.Failed, EngineUsed: e.Name(), Statistics: stats, Message: "exhausted search within inference budget", CompiledProgram: src.String()}
}

// CheckSat consults cs's Horn program and reports Failed when it loads
// without a Prolog-level exception. It performs no model search: denial
// clauses are skipped by writeClause, so an inconsistent clause set is not
// detected here.
func (e *Engine) CheckSat(ctx context.Context, cs clause.ClauseSet) backend.Result {
	if !cs.IsHorn() {
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrUnsupported, "prolog back-end requires a Horn clause set")}
	}
	var src strings.Builder
	for _, c := range cs.Clauses {
		writeClause(&src, c)
	}
	if err := e.interp.Exec(src.String()); err != nil {
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrEngine, err.Error())}
	}
	return backend.Result{Result: backend.Failed, EngineUsed: e.Name(), Message: "Horn program consulted without contradiction"}
}

// writeEqualityAxioms appends, after the compiled clauses, reflexivity,
// symmetry and transitivity axioms for a distinct `eq/2` relation, plus one
// congruence rule per user predicate of non-zero arity discovered in cs.
// No congruence rules are generated for function symbols, and the compiled
// clauses' own equality literals are not rewritten to eq/2: literalToGoal
// renders them with Prolog's built-in `=`, which is syntactic unification.
func writeEqualityAxioms(b *strings.Builder, cs clause.ClauseSet) {
	b.WriteString("eq(X, X).\n")
	b.WriteString("eq(X, Y) :- eq(Y, X).\n")
	b.WriteString("eq(X, Z) :- eq(X, Y), eq(Y, Z), X \\= Z.\n")

	for name, arity := range cs.Predicates() {
		if arity == 0 {
			continue
		}
		vars1 := make([]string, arity)
		vars2 := make([]string, arity)
		eqGoals := make([]string, arity)
		for i := 0; i < arity; i++ {
			vars1[i] = fmt.Sprintf("X%d", i)
			vars2[i] = fmt.Sprintf("Y%d", i)
			eqGoals[i] = fmt.Sprintf("eq(X%d, Y%d)", i, i)
		}
		fmt.Fprintf(b, "%s(%s) :- %s(%s), %s.\n",
			prologAtom(name), strings.Join(vars2, ", "),
			prologAtom(name), strings.Join(vars1, ", "),
			strings.Join(eqGoals, ", "))
	}
}

func writeClause(b *strings.Builder, c clause.Clause) {
	head, ok := c.Head()
	body := c.Body()
	if !ok {
		// Goal/denial clause: nothing to assert as a fact or rule.
		return
	}
	b.WriteString(literalToHead(head))
	if len(body) > 0 {
		b.WriteString(" :- ")
		parts := make([]string, len(body))
		for i, l := range body {
			parts[i] = literalToGoal(l.Negate())
		}
		b.WriteString(strings.Join(parts, ", "))
	}
	b.WriteString(".\n")
}

func literalToHead(l clause.Literal) string { return literalToGoal(l) }

func literalToGoal(l clause.Literal) string {
	name := prologAtom(l.Predicate)
	if l.IsEquality() {
		return fmt.Sprintf("%s = %s", termString(l.Args[0]), termString(l.Args[1]))
	}
	if len(l.Args) == 0 {
		if l.Negated {
			return "\\+ " + name
		}
		return name
	}
	args := make([]string, len(l.Args))
	for i, a := range l.Args {
		args[i] = termString(a)
	}
	atom := fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
	if l.Negated {
		return "\\+ " + atom
	}
	return atom
}

// prologAtom renders a FOL identifier as a Prolog atom: names Prolog would
// read as a variable (a leading uppercase letter or underscore, e.g. P) are
// single-quoted, and Prolog's reserved true/fail/false/! are prefixed so
// they cannot clash with the built-ins.
func prologAtom(name string) string {
	switch name {
	case "true", "fail", "false", "!":
		return "fol_" + name
	}
	if name != "" && (name[0] == '_' || (name[0] >= 'A' && name[0] <= 'Z')) {
		return "'" + name + "'"
	}
	return name
}

// termString renders a folengine term as Prolog syntax: variables become
// Prolog variables (capitalized, since the grammar's vars are lowercase
// single letters and Prolog reserves leading-uppercase for its own vars),
// constants/functions stay as atoms/compounds.
func termString(t *ast.Node) string {
	switch t.Kind {
	case ast.KVariable:
		return strings.ToUpper(t.Name)
	case ast.KConstant:
		return prologAtom(t.Name)
	case ast.KFunction:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = termString(a)
		}
		return fmt.Sprintf("%s(%s)", prologAtom(t.Name), strings.Join(args, ", "))
	default:
		return t.Name
	}
}
