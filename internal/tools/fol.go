package tools

import (
	"context"
	"encoding/json"
	"time"

	"folengine/internal/ast"
	"folengine/internal/backend"
	"folengine/internal/dispatch"
	"folengine/internal/model"
	"folengine/internal/session"
)

// proveResponse is the JSON shape returned by the prove tool (§6), shaped by
// the requested verbosity tier: minimal carries only the verdict booleans;
// standard adds message/proof/bindings/error; detailed adds the compiled
// back-end program and the full statistics (timeMs, inferences).
type proveResponse struct {
	Found           bool                `json:"found"`
	Success         bool                `json:"success"`
	Result          backend.ResultKind  `json:"result"`
	Message         string              `json:"message,omitempty"`
	EngineUsed      string              `json:"engineUsed,omitempty"`
	Bindings        map[string]string   `json:"bindings,omitempty"`
	Proof           []backend.ProofStep `json:"proof,omitempty"`
	Statistics      *backend.Statistics `json:"statistics,omitempty"`
	Error           *backend.Error      `json:"error,omitempty"`
	CompiledProgram string              `json:"compiledProgram,omitempty"`
}

// verbosity is the closed set of detail tiers the prove/query-session tools
// accept (§6).
type verbosity string

const (
	verbosityMinimal  verbosity = "minimal"
	verbosityStandard verbosity = "standard"
	verbosityDetailed verbosity = "detailed"
)

func verbosityArg(args map[string]any) verbosity {
	switch verbosity(stringArg(args, "verbosity", string(verbosityStandard))) {
	case verbosityMinimal:
		return verbosityMinimal
	case verbosityDetailed:
		return verbosityDetailed
	default:
		return verbosityStandard
	}
}

// proveResponseFor shapes a backend.Result into the response tier v calls
// for. engineUsed is always carried: it identifies which back-end answered,
// not how much it is willing to say about the answer.
func proveResponseFor(result backend.Result, v verbosity) proveResponse {
	resp := proveResponse{
		Found:      result.Result == backend.Proved,
		Success:    result.Result == backend.Proved,
		Result:     result.Result,
		EngineUsed: result.EngineUsed,
	}
	if v == verbosityMinimal {
		return resp
	}

	resp.Message = result.Message
	resp.Bindings = result.Bindings
	resp.Proof = result.Proof
	resp.Error = result.Err

	if v == verbosityDetailed {
		stats := result.Statistics
		resp.Statistics = &stats
		resp.CompiledProgram = result.CompiledProgram
	}
	return resp
}

func parseAll(formulas []string) ([]*ast.Node, *backend.Error) {
	nodes := make([]*ast.Node, len(formulas))
	for i, f := range formulas {
		n, err := ast.Parse(f)
		if err != nil {
			return nil, backend.NewError(backend.ErrParse, err.Error())
		}
		nodes[i] = n
	}
	return nodes, nil
}

func stringSlice(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func stringArg(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return def
}

func intArg(args map[string]any, key, def int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}

func boolArg(args map[string]any, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

func marshalResponse(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// RegisterFOLTools wires the prove/model/session tool surface (§6) against
// the dispatcher and session manager, and registers them on r.
func RegisterFOLTools(r *Registry, d *dispatch.Dispatcher, sessions *session.Manager) error {
	tools := []*Tool{
		proveTool(d),
		checkWellFormedTool(),
		findModelTool(),
		findCounterexampleTool(),
		createSessionTool(sessions),
		assertPremiseTool(sessions),
		retractPremiseTool(sessions),
		listPremisesTool(sessions),
		clearSessionTool(sessions),
		deleteSessionTool(sessions),
		querySessionTool(sessions, d),
		listSessionsTool(sessions),
	}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func proveTool(d *dispatch.Dispatcher) *Tool {
	return &Tool{
		Name:        "prove",
		Description: "Attempt to prove goal from premises using the auto-selected or named back-end.",
		Category:    CategoryProve,
		Priority:    80,
		Schema: ToolSchema{
			Required: []string{"premises", "goal"},
			Properties: map[string]Property{
				"premises":      {Type: "array", Description: "Premise formulas", Items: &PropertyItems{Type: "string"}},
				"goal":          {Type: "string", Description: "Goal formula"},
				"engine":        {Type: "string", Description: "auto|prolog|sat|smt|asp", Default: "auto"},
				"strategy":      {Type: "string", Description: "fast|balanced|iterative"},
				"maxSeconds":    {Type: "number", Description: "Wall-clock timeout in seconds"},
				"maxInferences": {Type: "number", Description: "Inference budget"},
				"verbosity":     {Type: "string", Description: "minimal|standard|detailed", Default: "standard"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			v := verbosityArg(args)
			premiseStrs := stringSlice(args, "premises")
			goalStr := stringArg(args, "goal", "")

			premises, perr := parseAll(premiseStrs)
			if perr != nil {
				return marshalResponse(proveResponseFor(backend.Result{Result: backend.Error, Err: perr}, v))
			}
			goalNode, err := ast.Parse(goalStr)
			if err != nil {
				return marshalResponse(proveResponseFor(backend.Result{Result: backend.Error, Err: backend.NewError(backend.ErrParse, err.Error())}, v))
			}

			maxSeconds := intArg(args, "maxSeconds", 10)
			opts := backend.Options{
				Strategy:      stringArg(args, "strategy", ""),
				MaxSeconds:    time.Duration(maxSeconds) * time.Second,
				MaxInferences: intArg(args, "maxInferences", 5000),
			}
			engineName := dispatch.EngineName(stringArg(args, "engine", "auto"))

			result := d.Prove(ctx, dispatch.Request{Premises: premises, Goal: goalNode, Engine: engineName, Options: opts})
			return marshalResponse(proveResponseFor(result, v))
		},
	}
}

func checkWellFormedTool() *Tool {
	return &Tool{
		Name:        "check-well-formed",
		Description: "Check whether a formula parses.",
		Category:    CategoryProve,
		Priority:    50,
		Schema: ToolSchema{
			Required:   []string{"formula"},
			Properties: map[string]Property{"formula": {Type: "string", Description: "Formula to check"}},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			formula := stringArg(args, "formula", "")
			_, err := ast.Parse(formula)
			if err != nil {
				return marshalResponse(map[string]any{"valid": false, "error": err.Error()})
			}
			return marshalResponse(map[string]any{"valid": true})
		},
	}
}

func modelOptionsFrom(args map[string]any) model.Options {
	return model.Options{
		MaxDomainSize: intArg(args, "max_domain_size", 8),
		Count:         intArg(args, "count", 1),
		UseSAT:        boolArg(args, "useSAT", false),
		SATThreshold:  intArg(args, "sat_threshold", 0),
		MaxSeconds:    time.Duration(intArg(args, "maxSeconds", 10)) * time.Second,
	}
}

func modelResponse(result model.Result) (string, error) {
	return marshalResponse(map[string]any{
		"success":              result.Success,
		"models":               result.Models,
		"attemptsByDomainSize": result.AttemptsByDomainSize,
		"result":               result.Kind,
	})
}

func findModelTool() *Tool {
	return &Tool{
		Name:        "find-model",
		Description: "Search for a finite model of premises.",
		Category:    CategoryModel,
		Priority:    70,
		Schema: ToolSchema{
			Required: []string{"premises"},
			Properties: map[string]Property{
				"premises":        {Type: "array", Description: "Premise formulas", Items: &PropertyItems{Type: "string"}},
				"domain_size":     {Type: "number", Description: "If given, replaces max_domain_size; sizes from 1 up to it are searched"},
				"max_domain_size": {Type: "number", Description: "Upper bound to search up to", Default: 8},
				"count":           {Type: "number", Description: "Number of non-isomorphic models to return", Default: 1},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			premises, perr := parseAll(stringSlice(args, "premises"))
			if perr != nil {
				return marshalResponse(map[string]any{"success": false, "error": perr})
			}
			opts := modelOptionsFrom(args)
			if ds := intArg(args, "domain_size", 0); ds > 0 {
				opts.MaxDomainSize = ds
			}
			result := model.FindModel(ctx, premises, opts)
			return modelResponse(result)
		},
	}
}

func findCounterexampleTool() *Tool {
	return &Tool{
		Name:        "find-counterexample",
		Description: "Search for a finite model of premises and the negated conclusion.",
		Category:    CategoryModel,
		Priority:    70,
		Schema: ToolSchema{
			Required: []string{"premises", "conclusion"},
			Properties: map[string]Property{
				"premises":        {Type: "array", Description: "Premise formulas", Items: &PropertyItems{Type: "string"}},
				"conclusion":      {Type: "string", Description: "Goal formula to refute"},
				"domain_size":     {Type: "number", Description: "If given, replaces max_domain_size; sizes from 1 up to it are searched"},
				"max_domain_size": {Type: "number", Description: "Upper bound to search up to", Default: 8},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			premises, perr := parseAll(stringSlice(args, "premises"))
			if perr != nil {
				return marshalResponse(map[string]any{"success": false, "error": perr})
			}
			goal, err := ast.Parse(stringArg(args, "conclusion", ""))
			if err != nil {
				return marshalResponse(map[string]any{"success": false, "error": backend.NewError(backend.ErrParse, err.Error())})
			}
			opts := modelOptionsFrom(args)
			if ds := intArg(args, "domain_size", 0); ds > 0 {
				opts.MaxDomainSize = ds
			}
			result := model.FindCounterexample(ctx, premises, goal, opts)
			return modelResponse(result)
		},
	}
}

func createSessionTool(sessions *session.Manager) *Tool {
	return &Tool{
		Name:        "create-session",
		Description: "Create a new reasoning session with its own premise list.",
		Category:    CategorySession,
		Priority:    60,
		Schema: ToolSchema{
			Properties: map[string]Property{
				"ttlMs": {Type: "number", Description: "Idle eviction window in milliseconds"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			ttl := time.Duration(intArg(args, "ttlMs", 0)) * time.Millisecond
			rec, err := sessions.Create(ttl)
			if err != nil {
				return marshalResponse(map[string]any{"error": err})
			}
			return marshalResponse(map[string]any{"id": rec.ID})
		},
	}
}

func assertPremiseTool(sessions *session.Manager) *Tool {
	return &Tool{
		Name:            "assert-premise",
		Description:     "Append a premise formula to a session.",
		Category:        CategorySession,
		Priority:        60,
		RequiresContext: true,
		Schema: ToolSchema{
			Required: []string{"id", "formula"},
			Properties: map[string]Property{
				"id":      {Type: "string", Description: "Session id"},
				"formula": {Type: "string", Description: "Premise formula"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			id := stringArg(args, "id", "")
			formula := stringArg(args, "formula", "")
			if err := sessions.Assert(id, formula); err != nil {
				return marshalResponse(map[string]any{"ok": false, "error": err})
			}
			return marshalResponse(map[string]any{"ok": true})
		},
	}
}

func retractPremiseTool(sessions *session.Manager) *Tool {
	return &Tool{
		Name:            "retract-premise",
		Description:     "Remove the first exact-match premise from a session.",
		Category:        CategorySession,
		Priority:        60,
		RequiresContext: true,
		Schema: ToolSchema{
			Required: []string{"id", "formula"},
			Properties: map[string]Property{
				"id":      {Type: "string", Description: "Session id"},
				"formula": {Type: "string", Description: "Premise formula"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			id := stringArg(args, "id", "")
			formula := stringArg(args, "formula", "")
			removed, err := sessions.Retract(id, formula)
			if err != nil {
				return marshalResponse(map[string]any{"removed": false, "error": err})
			}
			return marshalResponse(map[string]any{"removed": removed})
		},
	}
}

func listPremisesTool(sessions *session.Manager) *Tool {
	return &Tool{
		Name:            "list-premises",
		Description:     "List the current premises of a session.",
		Category:        CategorySession,
		Priority:        55,
		RequiresContext: true,
		Schema: ToolSchema{
			Required:   []string{"id"},
			Properties: map[string]Property{"id": {Type: "string", Description: "Session id"}},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			id := stringArg(args, "id", "")
			premises, err := sessions.ListPremises(id)
			if err != nil {
				return marshalResponse(map[string]any{"error": err})
			}
			return marshalResponse(map[string]any{"premises": premises})
		},
	}
}

func clearSessionTool(sessions *session.Manager) *Tool {
	return &Tool{
		Name:            "clear-session",
		Description:     "Empty a session's premise list, keeping the session alive.",
		Category:        CategorySession,
		Priority:        55,
		RequiresContext: true,
		Schema: ToolSchema{
			Required:   []string{"id"},
			Properties: map[string]Property{"id": {Type: "string", Description: "Session id"}},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			id := stringArg(args, "id", "")
			if err := sessions.Clear(id); err != nil {
				return marshalResponse(map[string]any{"ok": false, "error": err})
			}
			return marshalResponse(map[string]any{"ok": true})
		},
	}
}

func deleteSessionTool(sessions *session.Manager) *Tool {
	return &Tool{
		Name:            "delete-session",
		Description:     "Delete a session outright.",
		Category:        CategorySession,
		Priority:        55,
		RequiresContext: true,
		Schema: ToolSchema{
			Required:   []string{"id"},
			Properties: map[string]Property{"id": {Type: "string", Description: "Session id"}},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			id := stringArg(args, "id", "")
			if err := sessions.Delete(id); err != nil {
				return marshalResponse(map[string]any{"ok": false, "error": err})
			}
			return marshalResponse(map[string]any{"ok": true})
		},
	}
}

func querySessionTool(sessions *session.Manager, d *dispatch.Dispatcher) *Tool {
	return &Tool{
		Name:            "query-session",
		Description:     "Prove a goal against a session's accumulated premises.",
		Category:        CategorySession,
		Priority:        65,
		RequiresContext: true,
		Schema: ToolSchema{
			Required: []string{"id", "goal"},
			Properties: map[string]Property{
				"id":         {Type: "string", Description: "Session id"},
				"goal":       {Type: "string", Description: "Goal formula"},
				"engine":     {Type: "string", Description: "auto|prolog|sat|smt|asp", Default: "auto"},
				"maxSeconds": {Type: "number", Description: "Wall-clock timeout in seconds"},
				"verbosity":  {Type: "string", Description: "minimal|standard|detailed", Default: "standard"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			v := verbosityArg(args)
			id := stringArg(args, "id", "")
			goalStr := stringArg(args, "goal", "")

			premises, _, serr := sessions.Formulas(id)
			if serr != nil {
				return marshalResponse(proveResponseFor(backend.Result{Result: backend.Error, Err: serr}, v))
			}
			goalNode, err := ast.Parse(goalStr)
			if err != nil {
				return marshalResponse(proveResponseFor(backend.Result{Result: backend.Error, Err: backend.NewError(backend.ErrParse, err.Error())}, v))
			}
			opts := backend.Options{MaxSeconds: time.Duration(intArg(args, "maxSeconds", 10)) * time.Second}
			engineName := dispatch.EngineName(stringArg(args, "engine", "auto"))
			result := d.Prove(ctx, dispatch.Request{Premises: premises, Goal: goalNode, Engine: engineName, Options: opts})
			return marshalResponse(proveResponseFor(result, v))
		},
	}
}

// listSessionsTool rounds out the session tool surface with a way to
// discover which sessions currently exist, alongside create/assert/retract/
// list-premises/clear/delete/query.
func listSessionsTool(sessions *session.Manager) *Tool {
	return &Tool{
		Name:        "list-sessions",
		Description: "List the ids of every currently live session.",
		Category:    CategorySession,
		Priority:    40,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return marshalResponse(map[string]any{"ids": sessions.List()})
		},
	}
}
