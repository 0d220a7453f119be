package clause

import "folengine/internal/ast"

// Substitution is a finite map from variable name to the term it is bound
// to. Substitutions compose left-to-right: Apply walks a term through the
// map until it reaches a fixed point (chained bindings are resolved).
type Substitution map[string]*ast.Node

// NewSubstitution returns an empty substitution.
func NewSubstitution() Substitution { return make(Substitution) }

// Resolve follows variable bindings until it reaches a non-variable or an
// unbound variable.
func (s Substitution) Resolve(t *ast.Node) *ast.Node {
	for t.Kind == ast.KVariable {
		bound, ok := s[t.Name]
		if !ok {
			return t
		}
		t = bound
	}
	return t
}

// Apply substitutes every variable in t according to s, recursively.
func (s Substitution) Apply(t *ast.Node) *ast.Node {
	t = s.Resolve(t)
	if t.Kind != ast.KFunction {
		return t
	}
	args := make([]*ast.Node, len(t.Args))
	for i, a := range t.Args {
		args[i] = s.Apply(a)
	}
	return ast.NewFunction(t.Name, args...)
}

// ApplyLiteral substitutes every variable occurring in l's arguments.
func (s Substitution) ApplyLiteral(l Literal) Literal {
	args := make([]*ast.Node, len(l.Args))
	for i, a := range l.Args {
		args[i] = s.Apply(a)
	}
	return Literal{Predicate: l.Predicate, Args: args, Negated: l.Negated}
}

// occursIn reports whether variable name occurs anywhere within t, after
// resolving bindings already recorded in s — the occurs-check that keeps
// unification from building an infinite term.
func occursIn(name string, t *ast.Node, s Substitution) bool {
	t = s.Resolve(t)
	switch t.Kind {
	case ast.KVariable:
		return t.Name == name
	case ast.KFunction:
		for _, a := range t.Args {
			if occursIn(name, a, s) {
				return true
			}
		}
	}
	return false
}

// Unify attempts to find a substitution that makes terms a and b identical,
// extending base. It returns the extended substitution and true on success,
// or (nil, false) if the terms cannot be unified (occurs-check included).
func Unify(a, b *ast.Node, base Substitution) (Substitution, bool) {
	s := cloneSubst(base)
	if unify(a, b, s) {
		return s, true
	}
	return nil, false
}

func cloneSubst(s Substitution) Substitution {
	out := make(Substitution, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func unify(a, b *ast.Node, s Substitution) bool {
	a = s.Resolve(a)
	b = s.Resolve(b)

	if a.Kind == ast.KVariable {
		return bindVariable(a.Name, b, s)
	}
	if b.Kind == ast.KVariable {
		return bindVariable(b.Name, a, s)
	}
	if a.Kind == ast.KConstant && b.Kind == ast.KConstant {
		return a.Name == b.Name
	}
	if a.Kind == ast.KFunction && b.Kind == ast.KFunction {
		if a.Name != b.Name || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !unify(a.Args[i], b.Args[i], s) {
				return false
			}
		}
		return true
	}
	return false
}

func bindVariable(name string, t *ast.Node, s Substitution) bool {
	if t.Kind == ast.KVariable && t.Name == name {
		return true
	}
	if occursIn(name, t, s) {
		return false
	}
	s[name] = t
	return true
}

// UnifyLiterals unifies two literals if their predicate, arity and polarity
// match, extending base.
func UnifyLiterals(a, b Literal, base Substitution) (Substitution, bool) {
	if a.Predicate != b.Predicate || a.Negated != b.Negated || len(a.Args) != len(b.Args) {
		return nil, false
	}
	s := cloneSubst(base)
	for i := range a.Args {
		if !unify(a.Args[i], b.Args[i], s) {
			return nil, false
		}
	}
	return s, true
}

// Complementary reports whether a and b are the same predicate/arity with
// opposite polarity and unifiable arguments — i.e. resolvable in one
// resolution step.
func Complementary(a, b Literal, base Substitution) (Substitution, bool) {
	if a.Predicate != b.Predicate || a.Negated == b.Negated || len(a.Args) != len(b.Args) {
		return nil, false
	}
	s := cloneSubst(base)
	for i := range a.Args {
		if !unify(a.Args[i], b.Args[i], s) {
			return nil, false
		}
	}
	return s, true
}
