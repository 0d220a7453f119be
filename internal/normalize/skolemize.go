package normalize

import (
	"fmt"
	"strings"
	"sync"

	"folengine/internal/ast"
)

// SkolemEnv is a reusable Skolem-function namer. The same (enclosing
// universals, existential variable, existential body) context always yields the same Skolem
// symbol across calls to Skolemize that share an env — letting a session
// reassert structurally identical axioms without minting fresh function
// symbols each time — while distinct contexts never collide (testable
// property #4).
type SkolemEnv struct {
	mu      sync.Mutex
	counter int
	cache   map[string]string
}

// NewSkolemEnv returns an empty Skolem environment.
func NewSkolemEnv() *SkolemEnv {
	return &SkolemEnv{cache: make(map[string]string)}
}

func (env *SkolemEnv) symbolFor(universals []string, existential string, body *ast.Node) string {
	env.mu.Lock()
	defer env.mu.Unlock()

	key := strings.Join(universals, ",") + "|" + existential + "|" + ast.String(body)
	if name, ok := env.cache[key]; ok {
		return name
	}
	env.counter++
	name := fmt.Sprintf("sk%d", env.counter)
	env.cache[key] = name
	return name
}

// Count returns the number of distinct Skolem symbols minted so far.
func (env *SkolemEnv) Count() int {
	env.mu.Lock()
	defer env.mu.Unlock()
	return env.counter
}

// Skolemize replaces every existential quantifier in a prenex formula with
// a fresh (or reused, per env) Skolem function of the universals enclosing
// it, dropping the existential. Forall quantifiers are left in place as the
// implicit top-level binders Clausify strips next.
func Skolemize(n *ast.Node, env *SkolemEnv) *ast.Node {
	return skolemizeRec(n, nil, env)
}

func skolemizeRec(n *ast.Node, universals []string, env *SkolemEnv) *ast.Node {
	switch n.Kind {
	case ast.KForall:
		next := append(append([]string{}, universals...), n.BoundVar)
		return ast.NewForall(n.BoundVar, skolemizeRec(n.Body(), next, env))
	case ast.KExists:
		sym := env.symbolFor(universals, n.BoundVar, n.Body())
		var term *ast.Node
		if len(universals) == 0 {
			term = ast.NewConstant(sym)
		} else {
			args := make([]*ast.Node, len(universals))
			for i, u := range universals {
				args[i] = ast.NewVariable(u)
			}
			term = ast.NewFunction(sym, args...)
		}
		replaced := ast.Substitute(n.Body(), n.BoundVar, term)
		return skolemizeRec(replaced, universals, env)
	default:
		return n.Clone()
	}
}
