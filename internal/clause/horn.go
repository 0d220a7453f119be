package clause

// IsHorn reports whether c has at most one positive literal — the Horn
// fragment the Prolog back-end can run directly as SLD resolution.
func (c Clause) IsHorn() bool { return c.PositiveCount() <= 1 }

// IsFact reports whether c is a unit clause with a single positive literal.
func (c Clause) IsFact() bool {
	return len(c.Literals) == 1 && !c.Literals[0].Negated
}

// IsRule reports whether c is a Horn clause with exactly one positive
// literal and at least one negative literal (head :- body1, body2, ...).
func (c Clause) IsRule() bool {
	return c.IsHorn() && c.PositiveCount() == 1 && len(c.Literals) > 1
}

// IsGoal reports whether c has no positive literal at all (a denial,
// i.e. the negated conjecture in a refutation-style proof).
func (c Clause) IsGoal() bool { return c.PositiveCount() == 0 }

// Head returns the clause's single positive literal and true, for a fact or
// rule clause; ok is false for a goal clause or a non-Horn clause.
func (c Clause) Head() (Literal, bool) {
	if !c.IsHorn() || c.PositiveCount() != 1 {
		return Literal{}, false
	}
	for _, l := range c.Literals {
		if !l.Negated {
			return l, true
		}
	}
	return Literal{}, false
}

// Body returns every negative literal in c (the rule's antecedents).
func (c Clause) Body() []Literal {
	var out []Literal
	for _, l := range c.Literals {
		if l.Negated {
			out = append(out, l)
		}
	}
	return out
}

// IsTautology reports whether c contains both a literal and its negation
// with identical term structure, making the clause trivially satisfied.
func (c Clause) IsTautology() bool {
	seen := make(map[string]bool)
	for _, l := range c.Literals {
		seen[l.Key()] = true
	}
	for _, l := range c.Literals {
		if seen[l.Negate().Key()] {
			return true
		}
	}
	return false
}

// Dedup returns c with duplicate literals (by Key) removed, preserving
// first-seen order.
func (c Clause) Dedup() Clause {
	seen := make(map[string]bool, len(c.Literals))
	out := make([]Literal, 0, len(c.Literals))
	for _, l := range c.Literals {
		k := l.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, l)
	}
	return Clause{Literals: out}
}
