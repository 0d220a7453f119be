// Package smt wraps github.com/google/mangle as an equality-and-linear-
// arithmetic back-end (§4.F) over a fixed fragment: predicates are
// uninterpreted relations and functions are uninterpreted. The designated
// arithmetic predicate names are compiled like any other relation; they are
// not mapped to built-in theory operators, even when EnableArithmetic is
// set. Compiles and evaluates a fresh ad hoc Mangle program per call
// (parse -> analyze -> evaluate against an in-memory fact store) rather
// than accumulating facts against a long-lived schema.
package smt

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

// arithmeticPredicates names the designated arithmetic symbols. The compiler
// does not translate them to built-in theory operators; they are rendered
// as ordinary predicates.
var arithmeticPredicates = map[string]bool{
	"less": true, "plus": true, "times": true, "gt": true,
}

// Engine compiles a clause set to a Mangle program (decls + rules + the
// negated-goal query) and asks Mangle whether the denial predicate derives:
// no derivation is reported as proved, a derivation as failed, per the same
// refutation framing as the Prolog and SAT back-ends.
type Engine struct {
	enableArithmetic bool
}

// New returns an SMT-style back-end.
func New() *Engine { return &Engine{} }

func (e *Engine) Name() string { return "smt/mangle" }

func (e *Engine) Capabilities() backend.Capabilities {
	return backend.Capabilities{FullFOL: false, Horn: true, Equality: true, Arithmetic: true}
}

func (e *Engine) Init() error  { return nil }
func (e *Engine) Close() error { return nil }

// Prove asserts premises ∧ ¬goal and reports `proved` when the decision
// procedure finds the query unsatisfiable (no derivation of the denial
// holds under the compiled rules), `failed` when it finds a derivation, and
// `error` on a decision-procedure error (§4.F). Ground equality literals
// are resolved by directed rewriting (see equalityRewriter) before any
// Mangle program is built, since Mangle has no native notion of "=" as a
// transitive, congruence-respecting predicate.
func (e *Engine) Prove(ctx context.Context, cs clause.ClauseSet, goal clause.Literal, opts backend.Options) backend.Result {
	start := time.Now()
	e.enableArithmetic = opts.EnableArithmetic

	if !cs.IsHorn() {
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrUnsupported, "smt back-end handles only the Horn fragment of the clause set")}
	}

	program, err := compileProgram(cs, goal)
	if err != nil {
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrClausification, err.Error())}
	}
	logging.SMTDebug("compiled program:\n%s", program)

	unit, err := parse.Unit(bytes.NewReader([]byte(program)))
	if err != nil {
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrEngine, fmt.Sprintf("parse mangle program: %v", err))}
	}
	info, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrEngine, fmt.Sprintf("analyze mangle program: %v", err))}
	}

	store := factstore.NewSimpleInMemoryStore()
	if _, err := mengine.EvalProgramWithStats(info, store); err != nil {
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrEngine, fmt.Sprintf("evaluate mangle program: %v", err))}
	}

	goalSym := ast.PredicateSym{Symbol: goalPredicate, Arity: 0}
	derived := false
	_ = store.GetFacts(ast.NewQuery(goalSym), func(ast.Atom) error {
		derived = true
		return nil
	})

	stats := backend.Statistics{TimeMs: time.Since(start).Milliseconds(), ClauseCount: len(cs.Clauses)}
	if derived {
		return backend.Result{Result: backend.Failed, EngineUsed: e.Name(), Statistics: stats, Message: "denial derivable: premises and negated goal are jointly satisfiable", CompiledProgram: program}
	}
	return backend.Result{Result: backend.Proved, EngineUsed: e.Name(), Statistics: stats, CompiledProgram: program}
}

// CheckSat compiles and evaluates cs alone and reports Failed (satisfiable)
// whenever Mangle evaluates it without error. No marker predicate is
// queried, so denial clauses, which compile to no rule, are not checked.
func (e *Engine) CheckSat(ctx context.Context, cs clause.ClauseSet) backend.Result {
	start := time.Now()
	program, err := compileClauses(cs)
	if err != nil {
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrClausification, err.Error())}
	}
	unit, err := parse.Unit(bytes.NewReader([]byte(program)))
	if err != nil {
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrEngine, err.Error())}
	}
	info, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrEngine, err.Error())}
	}
	store := factstore.NewSimpleInMemoryStore()
	if _, err := mengine.EvalProgramWithStats(info, store); err != nil {
		return backend.Result{Result: backend.Error, EngineUsed: e.Name(), Err: backend.NewError(backend.ErrEngine, err.Error())}
	}
	return backend.Result{Result: backend.Failed, EngineUsed: e.Name(), Statistics: backend.Statistics{TimeMs: time.Since(start).Milliseconds(), ClauseCount: len(cs.Clauses)}}
}

const goalPredicate = "fol_denial_holds"

// compileProgram renders cs's Horn fragment plus the negated goal as a
// Mangle source unit. Ground equality literals never reach Mangle as atoms:
// they are resolved first by an equalityRewriter, which rewrites every other
// literal's arguments to their equivalence class's representative and
// decides an equality goal's truth directly in Go (§4.D).
func compileProgram(cs clause.ClauseSet, goal clause.Literal) (string, error) {
	r := newEqualityRewriter(cs)
	rewritten, err := rewriteClauses(cs, r)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	writeDecls(&b, rewritten, goal)
	if err := writeRules(&b, rewritten); err != nil {
		return "", err
	}

	if goal.IsEquality() {
		if !isGroundTerm(goal.Args[0]) || !isGroundTerm(goal.Args[1]) {
			return "", fmt.Errorf("smt back-end requires a ground equality goal, got %s", goal.Key())
		}
		// goal carries the negated conclusion (¬original_goal): its truth
		// under the rewriter's equivalence classes directly decides whether
		// the denial holds, so fol_denial_holds never needs a body
		// referencing "=" — Mangle cannot express it as a predicate anyway.
		holds := r.equal(goal.Args[0], goal.Args[1])
		if holds != goal.Negated {
			fmt.Fprintf(&b, "%s().\n", goalPredicate)
		}
		return b.String(), nil
	}

	args := make([]*folast.Node, len(goal.Args))
	for i, a := range goal.Args {
		args[i] = r.rewrite(a)
	}
	// goal is already the negated conclusion (Negated=true for a positive
	// original goal): rendering it as-is gives Mangle's NAF form directly,
	// so fol_denial_holds derives exactly when the positive goal does not.
	rewrittenGoal := clause.Literal{Predicate: goal.Predicate, Args: args, Negated: goal.Negated}
	fmt.Fprintf(&b, "%s() :- %s.\n", goalPredicate, mangleGoal(rewrittenGoal))
	return b.String(), nil
}

func compileClauses(cs clause.ClauseSet) (string, error) {
	r := newEqualityRewriter(cs)
	rewritten, err := rewriteClauses(cs, r)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	writeDecls(&b, rewritten, clause.Literal{})
	if err := writeRules(&b, rewritten); err != nil {
		return "", err
	}
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

func writeRules(b *strings.Builder, cs clause.ClauseSet) error {
	for _, c := range cs.Clauses {
		head, ok := c.Head()
		if !ok {
			continue // goal/denial clauses contribute nothing as standalone rules
		}
		body := c.Body()
		fmt.Fprint(b, mangleGoal(head))
		if len(body) > 0 {
			parts := make([]string, len(body))
			for i, l := range body {
				// l.Negated is true here because Body() returns the clause's
				// negative literals; that negation already encodes "Q implies
				// head", so the rendered atom must be positive, not NAF-negated.
				parts[i] = mangleGoal(l.Negate())
			}
			fmt.Fprintf(b, " :- %s", strings.Join(parts, ", "))
		}
		fmt.Fprint(b, ".\n")
	}
	return nil
}

// mangleGoal renders a literal as a Mangle atom, with negative literals as
// `!atom` (Mangle's negation syntax). Designated arithmetic predicates are
// rendered like any other predicate.
func mangleGoal(l clause.Literal) string {
	name := l.Predicate
	args := make([]string, len(l.Args))
	for i, a := range l.Args {
		args[i] = mangleTerm(a)
	}
	atom := fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
	if l.Negated {
		return "!" + atom
	}
	return atom
}

func mangleTerm(t *folast.Node) string {
	switch t.Kind {
	case folast.KVariable:
		return strings.ToUpper(t.Name)
	case folast.KConstant:
		return "/" + t.Name
	case folast.KFunction:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = mangleTerm(a)
		}
		return fmt.Sprintf("%s(%s)", t.Name, strings.Join(args, ", "))
	default:
		return "/" + t.Name
	}
}

// equalityRewriter implements §4.D's ground equality mode: union-find over
// every ground term mentioned in a unit positive equality fact, oriented so
// each class's representative is its smallest member (fewer AST nodes,
// then lexicographically smaller key — "orient larger to smaller"),
// with bottom-up rewriting through function arguments so congruence over
// the discovered signature falls out of the lookup rather than needing
// separate congruence axioms.
type equalityRewriter struct {
	parent map[string]string
	term   map[string]*folast.Node
}

func newEqualityRewriter(cs clause.ClauseSet) *equalityRewriter {
	r := &equalityRewriter{parent: map[string]string{}, term: map[string]*folast.Node{}}
	for _, c := range cs.Clauses {
		if len(c.Literals) != 1 {
			continue
		}
		l := c.Literals[0]
		if !l.IsEquality() || l.Negated {
			continue
		}
		if !isGroundTerm(l.Args[0]) || !isGroundTerm(l.Args[1]) {
			continue
		}
		r.union(l.Args[0], l.Args[1])
	}
	return r
}

func isGroundTerm(t *folast.Node) bool {
	switch t.Kind {
	case folast.KVariable:
		return false
	case folast.KFunction:
		for _, a := range t.Args {
			if !isGroundTerm(a) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func groundKey(t *folast.Node) string {
	switch t.Kind {
	case folast.KFunction:
		var b strings.Builder
		b.WriteString(t.Name)
		b.WriteByte('(')
		for i, a := range t.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(groundKey(a))
		}
		b.WriteByte(')')
		return b.String()
	default:
		return t.Name
	}
}

func termSize(t *folast.Node) int {
	n := 1
	for _, a := range t.Args {
		n += termSize(a)
	}
	return n
}

// smaller reports whether a should remain/become the representative in
// place of b.
func smaller(a, b *folast.Node, akey, bkey string) bool {
	as, bs := termSize(a), termSize(b)
	if as != bs {
		return as < bs
	}
	return akey < bkey
}

func (r *equalityRewriter) register(t *folast.Node) string {
	k := groundKey(t)
	if _, ok := r.term[k]; !ok {
		r.term[k] = t
	}
	if _, ok := r.parent[k]; !ok {
		r.parent[k] = k
	}
	return k
}

func (r *equalityRewriter) find(key string) string {
	p, ok := r.parent[key]
	if !ok || p == key {
		return key
	}
	root := r.find(p)
	r.parent[key] = root
	return root
}

func (r *equalityRewriter) union(a, b *folast.Node) {
	ak, bk := r.register(a), r.register(b)
	ra, rb := r.find(ak), r.find(bk)
	if ra == rb {
		return
	}
	if smaller(r.term[ra], r.term[rb], ra, rb) {
		r.parent[rb] = ra
	} else {
		r.parent[ra] = rb
	}
}

// rewrite returns t's canonical ground form: function arguments are
// rewritten first, then the (possibly rebuilt) term is replaced by its
// equivalence class's representative, if any equality fact placed it in
// one.
func (r *equalityRewriter) rewrite(t *folast.Node) *folast.Node {
	if t.Kind == folast.KFunction {
		args := make([]*folast.Node, len(t.Args))
		changed := false
		for i, a := range t.Args {
			args[i] = r.rewrite(a)
			if args[i] != a {
				changed = true
			}
		}
		if changed {
			t = folast.NewFunction(t.Name, args...)
		}
	}
	k := groundKey(t)
	if _, ok := r.parent[k]; !ok {
		return t
	}
	if rep, ok := r.term[r.find(k)]; ok {
		return rep
	}
	return t
}

// equal reports whether a and b denote the same ground term under r's
// equivalence classes.
func (r *equalityRewriter) equal(a, b *folast.Node) bool {
	return groundKey(r.rewrite(a)) == groundKey(r.rewrite(b))
}

// rewriteClauses resolves every ground equality literal directly: a literal
// that resolves true makes its clause a tautology (dropped); one that
// resolves false contributes nothing (omitted). Every other literal's
// arguments are rewritten to their canonical form. A non-ground equality
// literal is reported as an error — full paramodulation over free variables
// is outside this back-end's Horn-plus-ground-equality fragment.
func rewriteClauses(cs clause.ClauseSet, r *equalityRewriter) (clause.ClauseSet, error) {
	var out []clause.Clause
	for _, c := range cs.Clauses {
		var lits []clause.Literal
		tautology := false
		for _, l := range c.Literals {
			if l.IsEquality() {
				if !isGroundTerm(l.Args[0]) || !isGroundTerm(l.Args[1]) {
					return clause.ClauseSet{}, fmt.Errorf("smt back-end requires ground equality literals, got %s", l.Key())
				}
				holds := r.equal(l.Args[0], l.Args[1])
				if holds != l.Negated {
					tautology = true
					break
				}
				continue
			}
			args := make([]*folast.Node, len(l.Args))
			for i, a := range l.Args {
				args[i] = r.rewrite(a)
			}
			lits = append(lits, clause.Literal{Predicate: l.Predicate, Args: args, Negated: l.Negated})
		}
		if tautology {
			continue
		}
		out = append(out, clause.Clause{Literals: lits})
	}
	return clause.ClauseSet{Clauses: out}, nil
}
