// Package clause defines the ground/quantifier-free clause model that the
// CNF clausifier emits, plus substitutions and Robinson unification over it.
package clause

import (
	"fmt"
	"strings"

	"folengine/internal/ast"
)

// equalityPredicate is the sentinel predicate name an equality literal uses
// so that {predicate, args, negated} — per §3 — can represent both ordinary
// atoms and equalities uniformly.
const equalityPredicate = "="

// Literal is an atomic formula or its negation: {predicate, args, negated}.
type Literal struct {
	Predicate string
	Args      []*ast.Node // ground terms or free (universally-quantified) variables
	Negated   bool
}

// IsEquality reports whether l is an equality literal.
func (l Literal) IsEquality() bool { return l.Predicate == equalityPredicate }

// Arity returns the literal's argument count.
func (l Literal) Arity() int { return len(l.Args) }

// Negate returns a copy of l with negation flipped.
func (l Literal) Negate() Literal {
	return Literal{Predicate: l.Predicate, Args: l.Args, Negated: !l.Negated}
}

// Key returns a canonical string identifying the literal's predicate, arity,
// negation and term structure — used for clause deduplication and tautology
// detection, and as a map key during unification bookkeeping.
func (l Literal) Key() string {
	var b strings.Builder
	if l.Negated {
		b.WriteByte('-')
	}
	b.WriteString(l.Predicate)
	b.WriteByte('/')
	for i, a := range l.Args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(termKey(a))
	}
	return b.String()
}

// PositiveKey is Key() ignoring negation — used to test whether a literal
// and its complement share the same predicate/arity/term-shape.
func (l Literal) PositiveKey() string {
	neg := l
	neg.Negated = false
	return neg.Key()
}

func termKey(t *ast.Node) string {
	switch t.Kind {
	case ast.KVariable, ast.KConstant:
		return t.Name
	case ast.KFunction:
		var b strings.Builder
		b.WriteString(t.Name)
		b.WriteByte('(')
		for i, a := range t.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(termKey(a))
		}
		b.WriteByte(')')
		return b.String()
	default:
		return fmt.Sprintf("?%v", t.Kind)
	}
}

// NewEquality builds an equality literal between two terms.
func NewEquality(l, r *ast.Node, negated bool) Literal {
	return Literal{Predicate: equalityPredicate, Args: []*ast.Node{l, r}, Negated: negated}
}

// Clause is an ordered list of literals; a clause with no literals denotes
// the empty clause (⊥).
type Clause struct {
	Literals []Literal
}

// IsEmpty reports whether c is the empty clause.
func (c Clause) IsEmpty() bool { return len(c.Literals) == 0 }

// PositiveCount returns the number of non-negated literals.
func (c Clause) PositiveCount() int {
	n := 0
	for _, l := range c.Literals {
		if !l.Negated {
			n++
		}
	}
	return n
}

// Vars returns the set of free variable names occurring in c.
func (c Clause) Vars() map[string]bool {
	out := make(map[string]bool)
	for _, l := range c.Literals {
		for _, a := range l.Args {
			collectVars(a, out)
		}
	}
	return out
}

func collectVars(t *ast.Node, out map[string]bool) {
	switch t.Kind {
	case ast.KVariable:
		out[t.Name] = true
	case ast.KFunction:
		for _, a := range t.Args {
			collectVars(a, out)
		}
	}
}

// ClauseSet is an ordered sequence of clauses. The Skolem bookkeeping that
// produced it is kept separately, in normalize.SkolemEnv.
type ClauseSet struct {
	Clauses []Clause
}

// IsHorn reports whether every clause has at most one positive literal.
func (cs ClauseSet) IsHorn() bool {
	for _, c := range cs.Clauses {
		if c.PositiveCount() > 1 {
			return false
		}
	}
	return true
}

// HasEquality reports whether any clause contains an equality literal.
func (cs ClauseSet) HasEquality() bool {
	for _, c := range cs.Clauses {
		for _, l := range c.Literals {
			if l.IsEquality() {
				return true
			}
		}
	}
	return false
}

// Predicates returns the set of predicate names (excluding "=") used across
// the clause set, with their arities, for signature discovery (e.g. equality
// axiom generation in the Prolog back-end).
func (cs ClauseSet) Predicates() map[string]int {
	out := make(map[string]int)
	for _, c := range cs.Clauses {
		for _, l := range c.Literals {
			if !l.IsEquality() {
				out[l.Predicate] = l.Arity()
			}
		}
	}
	return out
}

// Functions returns the set of function symbols (excluding 0-arity
// constants) with their arities, found anywhere in the clause set's terms.
func (cs ClauseSet) Functions() map[string]int {
	out := make(map[string]int)
	for _, c := range cs.Clauses {
		for _, l := range c.Literals {
			for _, a := range l.Args {
				collectFunctions(a, out)
			}
		}
	}
	return out
}

func collectFunctions(t *ast.Node, out map[string]int) {
	if t.Kind == ast.KFunction {
		out[t.Name] = len(t.Args)
		for _, a := range t.Args {
			collectFunctions(a, out)
		}
	}
}
