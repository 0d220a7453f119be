package ast

import "strings"

// String renders n back into the surface syntax of §4.A. Every connective is
// fully parenthesized so that Parse(String(n)) reparses to a structurally
// equivalent tree regardless of operator precedence.
func String(n *Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KForall:
		b.WriteString("all ")
		b.WriteString(n.BoundVar)
		b.WriteString(" ")
		writeNode(b, n.Body())
	case KExists:
		b.WriteString("exists ")
		b.WriteString(n.BoundVar)
		b.WriteString(" ")
		writeNode(b, n.Body())
	case KAnd:
		b.WriteString("(")
		writeLeftOperand(b, n.Left())
		b.WriteString(" & ")
		writeNode(b, n.Right())
		b.WriteString(")")
	case KOr:
		b.WriteString("(")
		writeLeftOperand(b, n.Left())
		b.WriteString(" | ")
		writeNode(b, n.Right())
		b.WriteString(")")
	case KImplies:
		b.WriteString("(")
		writeLeftOperand(b, n.Left())
		b.WriteString(" -> ")
		writeNode(b, n.Right())
		b.WriteString(")")
	case KIff:
		b.WriteString("(")
		writeLeftOperand(b, n.Left())
		b.WriteString(" <-> ")
		writeNode(b, n.Right())
		b.WriteString(")")
	case KNot:
		b.WriteString("-")
		writeAtomOrParen(b, n.Body())
	case KEquals:
		writeTerm(b, n.Left())
		b.WriteString(" = ")
		writeTerm(b, n.Right())
	case KPredicate:
		writeApplication(b, n.Name, n.Args)
	case KVariable, KConstant, KFunction:
		writeTerm(b, n)
	}
}

// writeLeftOperand parenthesizes a quantifier in left-operand position: a
// quantifier's body extends as far right as possible on reparse, so without
// parens it would absorb the connective's right operand.
func writeLeftOperand(b *strings.Builder, n *Node) {
	if n.IsQuantifier() {
		b.WriteString("(")
		writeNode(b, n)
		b.WriteString(")")
		return
	}
	writeNode(b, n)
}

// writeAtomOrParen wraps a Not's operand in parens unless it is already an
// atomic form that parses back unambiguously (predicate, equality, or a
// nested Not, which the grammar allows without parens since NOT is prefix).
func writeAtomOrParen(b *strings.Builder, n *Node) {
	switch n.Kind {
	case KPredicate, KEquals, KNot:
		writeNode(b, n)
	default:
		b.WriteString("(")
		writeNode(b, n)
		b.WriteString(")")
	}
}

func writeTerm(b *strings.Builder, n *Node) {
	switch n.Kind {
	case KVariable, KConstant:
		b.WriteString(n.Name)
	case KFunction:
		writeApplication(b, n.Name, n.Args)
	default:
		writeNode(b, n)
	}
}

func writeApplication(b *strings.Builder, name string, args []*Node) {
	b.WriteString(name)
	if len(args) == 0 {
		return
	}
	b.WriteString("(")
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		writeTerm(b, a)
	}
	b.WriteString(")")
}
