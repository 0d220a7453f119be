// Package asp wraps github.com/google/mangle as an answer-set/Datalog
// back-end (§4.G): ground clauses become `head :- body` rules with
// negation-as-failure for negative body literals, and clauses with more
// than one positive literal are shifted into several NAF-guarded rules
// (the standard disjunctive-to-normal "shifting" transformation), since
// Mangle itself evaluates stratified-negation normal programs rather than
// disjunctive ones. The back-end never retracts facts mid-program: each
// call compiles and evaluates a fresh program from the clause set handed
// to it.
package asp

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	_ "github.com/google/mangle/packages"
	"github.com/google/mangle/parse"

	folast "folengine/internal/ast"
	"folengine/internal/backend"
	"folengine/internal/clause"
	"folengine/internal/logging"
)

const goalPredicate = "fol_denial_holds"

// Engine evaluates a shifted, NAF-guarded Mangle program derived from a
// clause set and asks whether the negated goal is a consequence of its
// stable model.
type Engine struct{}

// New returns an ASP/Datalog back-end.
func New() *Engine { return &Engine{} }

func (e *Engine) Name() string { return "asp/mangle" }

func (e *Engine) Capabilities() backend.Capabilities {
	return backend.Capabilities{Horn: true, FullFOL: true}
}

func (e *Engine) Init() error  { return nil }
func (e *Engine) Close() error { return nil }

// Prove shifts cs into a normal logic program, adds a `fol_denial_holds`
// rule whose body is the negated goal, and reports `proved` when that
// predicate has no stable derivation, `failed` when it does.
func (e *Engine) Prove(ctx context.Context, cs clause.ClauseSet, goal clause.Literal, opts backend.Options) backend.Result {
	start := time.Now()

	program, err := compileProgram(cs, goal)
	if err != nil {
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrClausification, err.Error())}
	}
	logging.ASPDebug("compiled program:\n%s", program)

	info, err := analyze(program)
	if err != nil {
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrEngine, err.Error())}
	}

	store := factstore.NewSimpleInMemoryStore()
	if _, err := mengine.EvalProgramWithStats(info, store); err != nil {
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrEngine, err.Error())}
	}

	goalSym := ast.PredicateSym{Symbol: goalPredicate, Arity: 0}
	derived := false
	_ = store.GetFacts(ast.NewQuery(goalSym), func(ast.Atom) error {
		derived = true
		return nil
	})

	stats := backend.Statistics{TimeMs: time.Since(start).Milliseconds(), ClauseCount: len(cs.Clauses)}
	if derived {
		return backend.Result{Result: backend.Failed, EngineUsed: e.Name(), Statistics: stats, Message: "negated goal holds in the stable model", CompiledProgram: program}
	}
	return backend.Result{Result: backend.Proved, EngineUsed: e.Name(), Statistics: stats, CompiledProgram: program}
}

// CheckSat evaluates cs alone and reports whether its stable model exists
// (mangle's stratified evaluation either succeeds or errors on an
// unstratifiable program; it never reports "inconsistent" directly, so a
// clean evaluation is reported as Failed/satisfiable per the same
// refutation convention used elsewhere in this package).
func (e *Engine) CheckSat(ctx context.Context, cs clause.ClauseSet) backend.Result {
	start := time.Now()
	program, err := compileClauses(cs)
	if err != nil {
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrClausification, err.Error())}
	}
	info, err := analyze(program)
	if err != nil {
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrEngine, err.Error())}
	}
	store := factstore.NewSimpleInMemoryStore()
	if _, err := mengine.EvalProgramWithStats(info, store); err != nil {
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrEngine, err.Error())}
	}
	return backend.Result{Result: backend.Failed, EngineUsed: e.Name(), Statistics: backend.Statistics{TimeMs: time.Since(start).Milliseconds(), ClauseCount: len(cs.Clauses)}}
}

func analyze(program string) (*analysis.ProgramInfo, error) {
	unit, err := parse.Unit(bytes.NewReader([]byte(program)))
	if err != nil {
		return nil, fmt.Errorf("parse program: %w", err)
	}
	info, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("analyze program: %w", err)
	}
	return info, nil
}

func compileProgram(cs clause.ClauseSet, goal clause.Literal) (string, error) {
	var b strings.Builder
	writeDecls(&b, cs, goal)
	writeShiftedRules(&b, cs)
	// goal is already the negated conclusion (Negated=true for a positive
	// original goal); rendering it as-is gives the NAF form directly, so
	// fol_denial_holds derives exactly when the positive goal does not.
	fmt.Fprintf(&b, "%s() :- %s.\n", goalPredicate, nafGoal(goal))
	return b.String(), nil
}

func compileClauses(cs clause.ClauseSet) (string, error) {
	var b strings.Builder
	writeDecls(&b, cs, clause.Literal{})
	writeShiftedRules(&b, cs)
	return b.String(), nil
}

func writeDecls(b *strings.Builder, cs clause.ClauseSet, goal clause.Literal) {
	fmt.Fprintf(b, "Decl %s().\n", goalPredicate)
	for name, arity := range cs.Predicates() {
		vars := make([]string, arity)
		for i := range vars {
			vars[i] = fmt.Sprintf("X%d", i)
		}
		fmt.Fprintf(b, "Decl %s(%s).\n", name, strings.Join(vars, ", "))
	}
	if goal.Predicate != "" && !goal.IsEquality() {
		if _, ok := cs.Predicates()[goal.Predicate]; !ok {
			vars := make([]string, len(goal.Args))
			for i := range vars {
				vars[i] = fmt.Sprintf("X%d", i)
			}
			fmt.Fprintf(b, "Decl %s(%s).\n", goal.Predicate, strings.Join(vars, ", "))
		}
	}
}

// writeShiftedRules applies the disjunctive-to-normal shifting
// transformation: a clause with positive literals h1..hn and negative
// literals (body) b1..bm becomes n rules, one per head hi, each with
// body1..bm and the remaining heads moved into the body as NAF literals
// (`!hj`). A clause with zero positive literals (a denial) contributes no
// standalone rule; its content only matters when it is the designated
// goal clause compiled separately.
func writeShiftedRules(b *strings.Builder, cs clause.ClauseSet) {
	for _, c := range cs.Clauses {
		var heads []clause.Literal
		var body []clause.Literal
		for _, l := range c.Literals {
			if l.Negated {
				body = append(body, l)
			} else {
				heads = append(heads, l)
			}
		}
		if len(heads) == 0 {
			continue
		}
		for i, h := range heads {
			parts := make([]string, 0, len(body)+len(heads)-1)
			for _, l := range body {
				// l.Negated is true here because body holds the clause's
				// negative literals, whose negation already encodes
				// implication into the shifted head; render them positive.
				parts = append(parts, nafGoal(l.Negate()))
			}
			for j, other := range heads {
				if j == i {
					continue
				}
				parts = append(parts, nafGoal(other.Negate()))
			}
			fmt.Fprint(b, nafGoal(h))
			if len(parts) > 0 {
				fmt.Fprintf(b, " :- %s", strings.Join(parts, ", "))
			}
			fmt.Fprint(b, ".\n")
		}
	}
}

func nafGoal(l clause.Literal) string {
	name := l.Predicate
	args := make([]string, len(l.Args))
	for i, a := range l.Args {
		args[i] = nafTerm(a)
	}
	atom := fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
	if l.Negated {
		return "!" + atom
	}
	return atom
}

func nafTerm(t *folast.Node) string {
	switch t.Kind {
	case folast.KVariable:
		return strings.ToUpper(t.Name)
	case folast.KConstant:
		return "/" + t.Name
	case folast.KFunction:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = nafTerm(a)
		}
		return fmt.Sprintf("%s(%s)", t.Name, strings.Join(args, ", "))
	default:
		return "/" + t.Name
	}
}
