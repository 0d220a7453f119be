// Package model implements the finite model finder (§4.I): bounded domain
// enumeration with restricted-growth-string symmetry breaking over
// constant assignment, isomorphism filtering over emitted models, and an
// optional SAT-assisted grounding mode for larger domains.
package model

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"folengine/internal/ast"
	"folengine/internal/backend"
	satbackend "folengine/internal/backend/sat"
	"folengine/internal/clause"
	"folengine/internal/logging"
	"folengine/internal/normalize"
)

// Options configures a find-model/find-counterexample call.
type Options struct {
	MaxDomainSize int
	Count         int // how many non-isomorphic models to return; 0 means 1
	UseSAT        bool
	SATThreshold  int // domain size at/above which SAT-assisted mode engages even if UseSAT is false
	MaxSeconds    time.Duration
}

// Interpretation is one finite model: a domain {0,...,Domain-1}, a mapping
// from constant symbols to domain elements, total function tables, and
// relation extensions.
type Interpretation struct {
	Domain    int
	Constants map[string]int
	Functions map[string]map[string]int // funcSym -> comma-joined arg ints -> result int
	Relations map[string]map[string]bool
}

// Result is findModel's contract: {success, model?|models?, attemptsByDomainSize}.
type Result struct {
	Success              bool
	Models               []Interpretation
	AttemptsByDomainSize map[int]int
	Kind                 backend.ResultKind
}

// FindModel searches domain sizes 1..opts.MaxDomainSize for one or more
// (when opts.Count>1) non-isomorphic models of the conjunction of
// premises.
func FindModel(ctx context.Context, premises []*ast.Node, opts Options) Result {
	start := time.Now()
	if opts.MaxDomainSize <= 0 {
		opts.MaxDomainSize = 8
	}
	if opts.Count <= 0 {
		opts.Count = 1
	}

	env := normalize.NewSkolemEnv()
	combined := conjoin(premises)
	cs := normalize.Pipeline(combined, env)

	attempts := map[int]int{}
	var seen []string
	var found []Interpretation

	for n := 1; n <= opts.MaxDomainSize; n++ {
		if opts.MaxSeconds > 0 && time.Since(start) > opts.MaxSeconds {
			return Result{Success: len(found) > 0, Models: found, AttemptsByDomainSize: attempts, Kind: backend.Timeout}
		}
		sig := signatureOf(cs)
		useSAT := opts.UseSAT || n >= opts.SATThreshold && opts.SATThreshold > 0

		models := searchDomain(ctx, cs, sig, n, opts.Count-len(found), useSAT, &attempts)
		for _, m := range models {
			c := canonicalForm(m)
			if containsString(seen, c) {
				continue
			}
			seen = append(seen, c)
			found = append(found, m)
			if len(found) >= opts.Count {
				logging.ModelDebug("found %d model(s) at domain size %d", len(found), n)
				return Result{Success: true, Models: found, AttemptsByDomainSize: attempts, Kind: backend.Proved}
			}
		}
	}

	if len(found) > 0 {
		return Result{Success: true, Models: found, AttemptsByDomainSize: attempts, Kind: backend.Proved}
	}
	return Result{Success: false, AttemptsByDomainSize: attempts, Kind: backend.NoModelFound}
}

// FindCounterexample looks for a model of premises ∧ ¬goal — a finite
// structure witnessing that the premises do not entail the goal.
func FindCounterexample(ctx context.Context, premises []*ast.Node, goal *ast.Node, opts Options) Result {
	all := append(append([]*ast.Node{}, premises...), ast.NewNot(goal))
	return FindModel(ctx, all, opts)
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

// signature is the set of symbols a domain-size-n interpretation must
// assign: distinct constant names, function symbols with arity, predicate
// symbols with arity.
type signature struct {
	Constants []string
	Functions map[string]int
	Predicates map[string]int
}

func signatureOf(cs clause.ClauseSet) signature {
	sig := signature{Functions: cs.Functions(), Predicates: cs.Predicates()}
	constSet := map[string]bool{}
	for _, c := range cs.Clauses {
		for _, l := range c.Literals {
			for _, a := range l.Args {
				collectConstants(a, constSet)
			}
		}
	}
	for name := range constSet {
		sig.Constants = append(sig.Constants, name)
	}
	sort.Strings(sig.Constants)
	return sig
}

func collectConstants(t *ast.Node, out map[string]bool) {
	switch t.Kind {
	case ast.KConstant:
		out[t.Name] = true
	case ast.KFunction:
		for _, a := range t.Args {
			collectConstants(a, out)
		}
	}
}

// searchDomain enumerates restricted-growth-string constant assignments
// and total function tables for the given domain size, and for each
// combination attempts to satisfy the grounded clause set by assigning
// truth values to ground relation atoms. Constant assignments are fanned
// out across a bounded worker pool (errgroup), since each is independent
// and the combinatorial space is exactly what makes this search expensive;
// the pool stops taking new work as soon as want models are found.
func searchDomain(ctx context.Context, cs clause.ClauseSet, sig signature, n int, want int, useSAT bool, attempts *map[int]int) []Interpretation {
	assignments := restrictedGrowthAssignments(sig.Constants, n)

	workers := runtime.GOMAXPROCS(0)
	if workers > len(assignments) {
		workers = len(assignments)
	}
	if workers < 1 {
		workers = 1
	}

	var mu sync.Mutex
	var out []Interpretation
	localAttempts := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, constants := range assignments {
		constants := constants
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			for _, functions := range allFunctionTableCombos(sig.Functions, n) {
				mu.Lock()
				localAttempts++
				done := len(out) >= want
				mu.Unlock()
				if done {
					return nil
				}

				ground, ok := groundClauses(cs, sig, n, constants, functions)
				if !ok {
					continue
				}

				mu.Lock()
				remaining := want - len(out)
				mu.Unlock()
				if remaining <= 0 {
					return nil
				}

				var relAssignments []map[string]bool
				if useSAT {
					relAssignments = satAssistedSearch(ground, remaining)
				} else if r, ok := bruteForceSearch(ground); ok {
					relAssignments = []map[string]bool{r}
				}

				for _, rel := range relAssignments {
					mu.Lock()
					if len(out) < want {
						out = append(out, Interpretation{
							Domain:    n,
							Constants: constants,
							Functions: functions,
							Relations: decodeRelations(rel),
						})
					}
					full := len(out) >= want
					mu.Unlock()
					if full {
						return nil
					}
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	(*attempts)[n] += localAttempts
	return out
}

// restrictedGrowthAssignments enumerates canonical constant-to-domain
// mappings: the i-th distinct constant (in sorted name order) may be
// mapped to any value already used by an earlier constant, or to
// max(used)+1 — the restricted growth string rule that collapses the
// domain's (n^k) raw mappings to the Bell-number many mappings distinct up
// to renaming of domain elements, then widened to the requested domain
// size n by capping at n-1.
func restrictedGrowthAssignments(names []string, n int) []map[string]int {
	if len(names) == 0 {
		return []map[string]int{{}}
	}
	var results []map[string]int
	var rec func(i, maxUsed int, cur map[string]int)
	rec = func(i, maxUsed int, cur map[string]int) {
		if i == len(names) {
			cp := make(map[string]int, len(cur))
			for k, v := range cur {
				cp[k] = v
			}
			results = append(results, cp)
			return
		}
		limit := maxUsed + 1
		if limit > n-1 {
			limit = n - 1
		}
		for v := 0; v <= limit; v++ {
			cur[names[i]] = v
			nextMax := maxUsed
			if v > nextMax {
				nextMax = v
			}
			rec(i+1, nextMax, cur)
		}
	}
	rec(0, -1, map[string]int{})
	return results
}

// allFunctionTableCombos enumerates every total function table for every
// function symbol in funcs and returns their cartesian product — the
// "allFunctionTables" step of §4.I's algorithm. Exhaustive and only
// intended for small domains/arities, as the algorithm itself is.
func allFunctionTableCombos(funcs map[string]int, n int) []map[string]map[string]int {
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)

	tablesPerFunc := make([][]map[string]int, len(names))
	for i, name := range names {
		tablesPerFunc[i] = allFunctionTables(funcs[name], n)
	}

	var out []map[string]map[string]int
	var rec func(i int, cur map[string]map[string]int)
	rec = func(i int, cur map[string]map[string]int) {
		if i == len(names) {
			cp := make(map[string]map[string]int, len(cur))
			for k, v := range cur {
				cp[k] = v
			}
			out = append(out, cp)
			return
		}
		for _, table := range tablesPerFunc[i] {
			cur[names[i]] = table
			rec(i+1, cur)
		}
		delete(cur, names[i])
	}
	rec(0, map[string]map[string]int{})
	if len(out) == 0 {
		out = []map[string]map[string]int{{}}
	}
	return out
}

func allFunctionTables(arity, n int) []map[string]int {
	if arity == 0 {
		var out []map[string]int
		for v := 0; v < n; v++ {
			out = append(out, map[string]int{"": v})
		}
		return out
	}
	tuples := cartesianTuples(arity, n)
	return assignTables(tuples, 0, map[string]int{}, n)
}

func assignTables(tuples []string, i int, cur map[string]int, n int) []map[string]int {
	if i == len(tuples) {
		cp := make(map[string]int, len(cur))
		for k, v := range cur {
			cp[k] = v
		}
		return []map[string]int{cp}
	}
	var out []map[string]int
	for v := 0; v < n; v++ {
		cur[tuples[i]] = v
		out = append(out, assignTables(tuples, i+1, cur, n)...)
	}
	delete(cur, tuples[i])
	return out
}

func cartesianTuples(arity, n int) []string {
	if arity == 0 {
		return []string{""}
	}
	var out []string
	var rec func(depth int, cur []int)
	rec = func(depth int, cur []int) {
		if depth == arity {
			parts := make([]string, len(cur))
			for i, v := range cur {
				parts[i] = fmt.Sprintf("%d", v)
			}
			out = append(out, strings.Join(parts, ","))
			return
		}
		for v := 0; v < n; v++ {
			rec(depth+1, append(cur, v))
		}
	}
	rec(0, nil)
	return out
}

// groundLiteral is a fully instantiated literal: predicate name, concrete
// domain-element arguments, and polarity.
type groundLiteral struct {
	Predicate string
	Args      []int
	Negated   bool
}

func (g groundLiteral) atomKey() string {
	parts := make([]string, len(g.Args))
	for i, a := range g.Args {
		parts[i] = fmt.Sprintf("%d", a)
	}
	return g.Predicate + "(" + strings.Join(parts, ",") + ")"
}

// groundClauses instantiates every clause's free variables over the
// domain {0,...,n-1} (each clause's variables are implicitly universally
// quantified), evaluating any nested function applications against the
// supplied function tables.
func groundClauses(cs clause.ClauseSet, sig signature, n int, constants map[string]int, functions map[string]map[string]int) ([][]groundLiteral, bool) {
	var out [][]groundLiteral
	for _, c := range cs.Clauses {
		vars := sortedVarNames(c.Vars())
		for _, assignment := range allAssignments(vars, n) {
			var gc []groundLiteral
			ok := true
			for _, l := range c.Literals {
				args := make([]int, len(l.Args))
				for i, a := range l.Args {
					v, evalOK := evalTerm(a, assignment, constants, functions)
					if !evalOK {
						ok = false
						break
					}
					args[i] = v
				}
				if !ok {
					break
				}
				gc = append(gc, groundLiteral{Predicate: l.Predicate, Args: args, Negated: l.Negated})
			}
			if !ok {
				return nil, false
			}
			out = append(out, gc)
		}
	}
	return out, true
}

func sortedVarNames(vars map[string]bool) []string {
	names := make([]string, 0, len(vars))
	for v := range vars {
		names = append(names, v)
	}
	sort.Strings(names)
	return names
}

func allAssignments(vars []string, n int) []map[string]int {
	if len(vars) == 0 {
		return []map[string]int{{}}
	}
	var out []map[string]int
	var rec func(i int, cur map[string]int)
	rec = func(i int, cur map[string]int) {
		if i == len(vars) {
			cp := make(map[string]int, len(cur))
			for k, v := range cur {
				cp[k] = v
			}
			out = append(out, cp)
			return
		}
		for v := 0; v < n; v++ {
			cur[vars[i]] = v
			rec(i+1, cur)
		}
	}
	rec(0, map[string]int{})
	return out
}

func evalTerm(t *ast.Node, assignment, constants map[string]int, functions map[string]map[string]int) (int, bool) {
	switch t.Kind {
	case ast.KVariable:
		v, ok := assignment[t.Name]
		return v, ok
	case ast.KConstant:
		v, ok := constants[t.Name]
		return v, ok
	case ast.KFunction:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			v, ok := evalTerm(a, assignment, constants, functions)
			if !ok {
				return 0, false
			}
			args[i] = fmt.Sprintf("%d", v)
		}
		table, ok := functions[t.Name]
		if !ok {
			return 0, false
		}
		v, ok := table[strings.Join(args, ",")]
		return v, ok
	default:
		return 0, false
	}
}

// bruteForceSearch finds a single truth assignment over the distinct
// ground atoms in groundClausesIn satisfying every clause, via recursive
// backtracking that abandons a branch once some clause has all its atoms
// assigned and none satisfied; there is no unit propagation. This is the
// "naive enumeration" search mode.
func bruteForceSearch(groundClausesIn [][]groundLiteral) (map[string]bool, bool) {
	atoms := map[string]bool{}
	for _, gc := range groundClausesIn {
		for _, l := range gc {
			atoms[l.atomKey()] = true
		}
	}
	names := make([]string, 0, len(atoms))
	for a := range atoms {
		names = append(names, a)
	}
	sort.Strings(names)

	assignment := map[string]bool{}
	if backtrack(groundClausesIn, names, 0, assignment) {
		return assignment, true
	}
	return nil, false
}

func backtrack(clauses [][]groundLiteral, names []string, i int, assignment map[string]bool) bool {
	if i == len(names) {
		return allSatisfied(clauses, assignment)
	}
	// prune as soon as every remaining-unassigned clause still has a
	// chance; cheap check: if some clause is already fully assigned and
	// false, stop early.
	for _, v := range []bool{false, true} {
		assignment[names[i]] = v
		if partiallyConsistent(clauses, assignment) && backtrack(clauses, names, i+1, assignment) {
			return true
		}
	}
	delete(assignment, names[i])
	return false
}

func partiallyConsistent(clauses [][]groundLiteral, assignment map[string]bool) bool {
	for _, gc := range clauses {
		allAssigned := true
		satisfied := false
		for _, l := range gc {
			v, ok := assignment[l.atomKey()]
			if !ok {
				allAssigned = false
				continue
			}
			if v != l.Negated {
				satisfied = true
			}
		}
		if allAssigned && !satisfied {
			return false
		}
	}
	return true
}

func allSatisfied(clauses [][]groundLiteral, assignment map[string]bool) bool {
	for _, gc := range clauses {
		satisfied := false
		for _, l := range gc {
			v := assignment[l.atomKey()]
			if v != l.Negated {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false
		}
	}
	return true
}

// satAssistedSearch delegates solving to the SAT back-end once a domain
// has been grounded: each distinct ground atom becomes a nullary clause
// literal (its name is the atom key), and FindModels extracts up to want
// satisfying assignments via blocking clauses.
func satAssistedSearch(groundClausesIn [][]groundLiteral, want int) []map[string]bool {
	if want <= 0 {
		want = 1
	}
	var cs clause.ClauseSet
	for _, gc := range groundClausesIn {
		var lits []clause.Literal
		for _, l := range gc {
			lits = append(lits, clause.Literal{Predicate: l.atomKey(), Negated: l.Negated})
		}
		cs.Clauses = append(cs.Clauses, clause.Clause{Literals: lits})
	}

	e := satbackend.New()
	models := e.FindModels(context.Background(), cs, want)
	var out []map[string]bool
	for _, m := range models {
		assignment := map[string]bool{}
		for key, v := range m {
			assignment[key] = v
		}
		out = append(out, assignment)
	}
	return out
}

func decodeRelations(assignment map[string]bool) map[string]map[string]bool {
	out := map[string]map[string]bool{}
	for atomKey, v := range assignment {
		idx := strings.Index(atomKey, "(")
		if idx < 0 {
			continue
		}
		pred := atomKey[:idx]
		args := strings.TrimSuffix(atomKey[idx+1:], ")")
		if out[pred] == nil {
			out[pred] = map[string]bool{}
		}
		out[pred][args] = v
	}
	return out
}

// canonicalForm computes interp's signature under every domain-element
// permutation and returns the lexicographically smallest rendering — the
// isomorphism-filtering step of §4.I, feasible since maxDomainSize is
// small.
func canonicalForm(interp Interpretation) string {
	perms := permutations(interp.Domain)
	best := ""
	for i, p := range perms {
		s := renderUnder(interp, p)
		if i == 0 || s < best {
			best = s
		}
	}
	return best
}

func renderUnder(interp Interpretation, perm []int) string {
	var b strings.Builder

	names := make([]string, 0, len(interp.Constants))
	for n := range interp.Constants {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(&b, "c:%s=%d;", n, perm[interp.Constants[n]])
	}

	fnames := make([]string, 0, len(interp.Functions))
	for n := range interp.Functions {
		fnames = append(fnames, n)
	}
	sort.Strings(fnames)
	for _, n := range fnames {
		table := interp.Functions[n]
		keys := make([]string, 0, len(table))
		for k := range table {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "f:%s(%s)=%d;", n, permuteArgKey(k, perm), perm[table[k]])
		}
	}

	pnames := make([]string, 0, len(interp.Relations))
	for n := range interp.Relations {
		pnames = append(pnames, n)
	}
	sort.Strings(pnames)
	for _, n := range pnames {
		rel := interp.Relations[n]
		var tuples []string
		for k, v := range rel {
			if v {
				tuples = append(tuples, permuteArgKey(k, perm))
			}
		}
		sort.Strings(tuples)
		fmt.Fprintf(&b, "r:%s={%s};", n, strings.Join(tuples, ","))
	}
	return b.String()
}

func permuteArgKey(key string, perm []int) string {
	if key == "" {
		return ""
	}
	parts := strings.Split(key, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		var v int
		fmt.Sscanf(p, "%d", &v)
		out[i] = fmt.Sprintf("%d", perm[v])
	}
	return strings.Join(out, ",")
}

func permutations(n int) [][]int {
	elems := make([]int, n)
	for i := range elems {
		elems[i] = i
	}
	var out [][]int
	var rec func(k int)
	rec = func(k int) {
		if k == n {
			cp := make([]int, n)
			copy(cp, elems)
			out = append(out, cp)
			return
		}
		for i := k; i < n; i++ {
			elems[k], elems[i] = elems[i], elems[k]
			rec(k + 1)
			elems[k], elems[i] = elems[i], elems[k]
		}
	}
	rec(0)
	return out
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
