package normalize

import (
	"folengine/internal/ast"
	"folengine/internal/clause"
	"folengine/internal/logging"
)

// Pipeline runs Simplify -> NNF -> Prenex -> Skolemize -> Clausify over a
// parsed formula, logging each stage at CategoryNormalize/CategoryClausify.
// Skolemization shares env across every call so that repeated assertions of
// structurally identical axioms within one session reuse Skolem symbols.
func Pipeline(n *ast.Node, env *SkolemEnv) clause.ClauseSet {
	simplified := Simplify(n)
	logging.Normalize("simplify: %s -> %s", ast.String(n), ast.String(simplified))

	nnf := ToNNF(simplified)
	logging.Normalize("nnf: %s", ast.String(nnf))

	prenex := Prenex(nnf)
	logging.Normalize("prenex: %s", ast.String(prenex))

	skolemized := Skolemize(prenex, env)
	logging.Normalize("skolemize: %s (skolem count=%d)", ast.String(skolemized), env.Count())

	cs := Clausify(skolemized)
	logging.Clausify("clausify produced %d clause(s), horn=%v, equality=%v", len(cs.Clauses), cs.IsHorn(), cs.HasEquality())

	return cs
}
