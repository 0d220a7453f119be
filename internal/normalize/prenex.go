package normalize

import (
	"fmt"

	"folengine/internal/ast"
)

// binder records one quantifier stripped off during prenexing.
type binder struct {
	kind ast.Kind // KForall or KExists
	v    string
}

// freshGen mints variable names guaranteed not to collide with any name
// already in use, by appending a '$'-delimited counter the surface grammar
// can never produce (identifiers are alphanumeric/underscore only).
type freshGen struct{ n int }

func (g *freshGen) rename(base string) string {
	g.n++
	return fmt.Sprintf("%s$%d", base, g.n)
}

// Prenex hoists every quantifier in an NNF formula to the front, preserving
// the left-to-right order in which each binder was originally encountered,
// alpha-renaming apart where two subformulas would otherwise capture the
// same bound variable name.
func Prenex(n *ast.Node) *ast.Node {
	fg := &freshGen{}
	binders, matrix := prenexSplit(n, fg)
	result := matrix
	for i := len(binders) - 1; i >= 0; i-- {
		if binders[i].kind == ast.KForall {
			result = ast.NewForall(binders[i].v, result)
		} else {
			result = ast.NewExists(binders[i].v, result)
		}
	}
	return result
}

func prenexSplit(n *ast.Node, fg *freshGen) ([]binder, *ast.Node) {
	switch n.Kind {
	case ast.KForall, ast.KExists:
		inner, matrix := prenexSplit(n.Body(), fg)
		return append([]binder{{kind: n.Kind, v: n.BoundVar}}, inner...), matrix
	case ast.KAnd, ast.KOr:
		lb, lm := prenexSplit(n.Left(), fg)
		rb, rm := prenexSplit(n.Right(), fg)

		rAvoid := unionSets(ast.FreeVars(rm), binderVars(rb))
		lb, lm = renameApart(lb, lm, rAvoid, fg)

		lAvoid := unionSets(ast.FreeVars(lm), binderVars(lb))
		rb, rm = renameApart(rb, rm, lAvoid, fg)

		combined := append(append([]binder{}, lb...), rb...)
		if n.Kind == ast.KAnd {
			return combined, ast.NewAnd(lm, rm)
		}
		return combined, ast.NewOr(lm, rm)
	default:
		return nil, n.Clone()
	}
}

func binderVars(bs []binder) map[string]bool {
	out := make(map[string]bool, len(bs))
	for _, b := range bs {
		out[b.v] = true
	}
	return out
}

func unionSets(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

// renameApart replaces any binder whose variable name collides with avoid
// with a fresh name, substituting the new name through matrix.
func renameApart(bs []binder, matrix *ast.Node, avoid map[string]bool, fg *freshGen) ([]binder, *ast.Node) {
	out := make([]binder, len(bs))
	used := make(map[string]bool, len(avoid))
	for k := range avoid {
		used[k] = true
	}
	for i, b := range bs {
		if used[b.v] {
			fresh := fg.rename(b.v)
			for used[fresh] {
				fresh = fg.rename(b.v)
			}
			matrix = ast.Substitute(matrix, b.v, ast.NewVariable(fresh))
			out[i] = binder{kind: b.kind, v: fresh}
			used[fresh] = true
		} else {
			out[i] = b
			used[b.v] = true
		}
	}
	return out, matrix
}
