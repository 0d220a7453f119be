// Package ast defines the abstract syntax tree for first-order formulas with
// equality, plus the parser that produces it.
package ast

import "sort"

// Kind tags the variant a Node represents.
type Kind int

const (
	KForall Kind = iota
	KExists
	KAnd
	KOr
	KImplies
	KIff
	KNot
	KEquals
	KPredicate
	KFunction
	KVariable
	KConstant
)

func (k Kind) String() string {
	switch k {
	case KForall:
		return "Forall"
	case KExists:
		return "Exists"
	case KAnd:
		return "And"
	case KOr:
		return "Or"
	case KImplies:
		return "Implies"
	case KIff:
		return "Iff"
	case KNot:
		return "Not"
	case KEquals:
		return "Equals"
	case KPredicate:
		return "Predicate"
	case KFunction:
		return "Function"
	case KVariable:
		return "Variable"
	case KConstant:
		return "Constant"
	}
	return "Unknown"
}

// Node is a tagged-union AST node. Field usage depends on Kind:
//
//	KForall/KExists:   BoundVar, Args[0]=body
//	KAnd/KOr/KImplies/KIff: Args[0]=left, Args[1]=right
//	KNot:              Args[0]=operand
//	KEquals:           Args[0]=left term, Args[1]=right term
//	KPredicate/KFunction: Name, Args=terms
//	KVariable/KConstant:  Name
type Node struct {
	Kind     Kind
	Name     string
	BoundVar string
	Args     []*Node
}

func NewForall(v string, body *Node) *Node  { return &Node{Kind: KForall, BoundVar: v, Args: []*Node{body}} }
func NewExists(v string, body *Node) *Node  { return &Node{Kind: KExists, BoundVar: v, Args: []*Node{body}} }
func NewAnd(l, r *Node) *Node               { return &Node{Kind: KAnd, Args: []*Node{l, r}} }
func NewOr(l, r *Node) *Node                { return &Node{Kind: KOr, Args: []*Node{l, r}} }
func NewImplies(l, r *Node) *Node           { return &Node{Kind: KImplies, Args: []*Node{l, r}} }
func NewIff(l, r *Node) *Node               { return &Node{Kind: KIff, Args: []*Node{l, r}} }
func NewNot(op *Node) *Node                 { return &Node{Kind: KNot, Args: []*Node{op}} }
func NewEquals(l, r *Node) *Node            { return &Node{Kind: KEquals, Args: []*Node{l, r}} }
func NewPredicate(name string, args ...*Node) *Node {
	return &Node{Kind: KPredicate, Name: name, Args: args}
}
func NewFunction(name string, args ...*Node) *Node {
	return &Node{Kind: KFunction, Name: name, Args: args}
}
func NewVariable(name string) *Node { return &Node{Kind: KVariable, Name: name} }
func NewConstant(name string) *Node { return &Node{Kind: KConstant, Name: name} }

// Body returns the single child of a quantifier or Not node.
func (n *Node) Body() *Node { return n.Args[0] }

// Left returns the first child of a binary connective or Equals node.
func (n *Node) Left() *Node { return n.Args[0] }

// Right returns the second child of a binary connective or Equals node.
func (n *Node) Right() *Node { return n.Args[1] }

// IsAtomic reports whether n is a Predicate or Equals node — the only
// operands a well-formed Not may carry after NNF conversion.
func (n *Node) IsAtomic() bool {
	return n.Kind == KPredicate || n.Kind == KEquals
}

// IsQuantifier reports whether n binds a variable.
func (n *Node) IsQuantifier() bool {
	return n.Kind == KForall || n.Kind == KExists
}

// IsTerm reports whether n denotes a term rather than a formula.
func (n *Node) IsTerm() bool {
	switch n.Kind {
	case KVariable, KConstant, KFunction:
		return true
	default:
		return false
	}
}

// Clone deep-copies the subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{Kind: n.Kind, Name: n.Name, BoundVar: n.BoundVar}
	if n.Args != nil {
		cp.Args = make([]*Node, len(n.Args))
		for i, a := range n.Args {
			cp.Args[i] = a.Clone()
		}
	}
	return cp
}

// StructurallyEqual reports whether two nodes have identical shape: same
// kind, same names, same bound variables, and recursively equal children.
func (n *Node) StructurallyEqual(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Kind != o.Kind || n.Name != o.Name || n.BoundVar != o.BoundVar {
		return false
	}
	if len(n.Args) != len(o.Args) {
		return false
	}
	for i := range n.Args {
		if !n.Args[i].StructurallyEqual(o.Args[i]) {
			return false
		}
	}
	return true
}

// FreeVars returns the set of variable names with a free occurrence in n.
func FreeVars(n *Node) map[string]bool {
	fv := make(map[string]bool)
	collectFreeVars(n, make(map[string]bool), fv)
	return fv
}

func collectFreeVars(n *Node, bound map[string]bool, out map[string]bool) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KVariable:
		if !bound[n.Name] {
			out[n.Name] = true
		}
	case KForall, KExists:
		nb := make(map[string]bool, len(bound)+1)
		for k := range bound {
			nb[k] = true
		}
		nb[n.BoundVar] = true
		collectFreeVars(n.Body(), nb, out)
	default:
		for _, a := range n.Args {
			collectFreeVars(a, bound, out)
		}
	}
}

// SortedKeys returns the keys of a string set in sorted order — used
// wherever a variable set must be iterated deterministically.
func SortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Substitute returns a copy of n with every free occurrence of variable
// `from` replaced by term `to`. Bound occurrences (shadowed by a quantifier
// over the same name) are left untouched.
func Substitute(n *Node, from string, to *Node) *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KVariable:
		if n.Name == from {
			return to.Clone()
		}
		return n.Clone()
	case KForall, KExists:
		if n.BoundVar == from {
			return n.Clone()
		}
		return &Node{Kind: n.Kind, BoundVar: n.BoundVar, Args: []*Node{Substitute(n.Body(), from, to)}}
	default:
		cp := &Node{Kind: n.Kind, Name: n.Name, BoundVar: n.BoundVar}
		if n.Args != nil {
			cp.Args = make([]*Node, len(n.Args))
			for i, a := range n.Args {
				cp.Args[i] = Substitute(a, from, to)
			}
		}
		return cp
	}
}
