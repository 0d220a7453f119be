package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"folengine/internal/dispatch"
	"folengine/internal/session"
)

func newFOLRegistry(t *testing.T) (*Registry, *session.Manager) {
	t.Helper()
	d, err := dispatch.New()
	if err != nil {
		t.Fatalf("dispatch.New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	sessions := session.NewManager(10, time.Minute, time.Hour)
	t.Cleanup(sessions.Close)

	reg := NewRegistry()
	if err := RegisterFOLTools(reg, d, sessions); err != nil {
		t.Fatalf("RegisterFOLTools: %v", err)
	}
	return reg, sessions
}

func mustExecute(t *testing.T, reg *Registry, name string, args map[string]any) string {
	t.Helper()
	res, err := reg.Execute(context.Background(), name, args)
	if err != nil {
		t.Fatalf("Execute(%s): %v", name, err)
	}
	return res.Result
}

func TestProveToolSocrates(t *testing.T) {
	reg, _ := newFOLRegistry(t)

	raw := mustExecute(t, reg, "prove", map[string]any{
		"premises": []any{"all x (man(x) -> mortal(x))", "man(socrates)"},
		"goal":     "mortal(socrates)",
	})
	var resp proveResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
}

func TestProveToolVerbosityTiers(t *testing.T) {
	reg, _ := newFOLRegistry(t)
	base := map[string]any{
		"premises": []any{"all x (man(x) -> mortal(x))", "man(socrates)"},
		"goal":     "mortal(socrates)",
	}

	minimalArgs := map[string]any{"verbosity": "minimal"}
	for k, v := range base {
		minimalArgs[k] = v
	}
	raw := mustExecute(t, reg, "prove", minimalArgs)
	var minimal map[string]any
	if err := json.Unmarshal([]byte(raw), &minimal); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if minimal["found"] != true || minimal["success"] != true {
		t.Fatalf("expected minimal verdict booleans, got %+v", minimal)
	}
	for _, k := range []string{"message", "proof", "bindings", "error", "statistics", "compiledProgram"} {
		if _, ok := minimal[k]; ok {
			t.Fatalf("expected minimal verbosity to omit %q, got %+v", k, minimal)
		}
	}

	standardArgs := map[string]any{"verbosity": "standard"}
	for k, v := range base {
		standardArgs[k] = v
	}
	raw = mustExecute(t, reg, "prove", standardArgs)
	var standard map[string]any
	if err := json.Unmarshal([]byte(raw), &standard); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := standard["proof"]; !ok {
		t.Fatalf("expected standard verbosity to include proof, got %+v", standard)
	}
	if _, ok := standard["statistics"]; ok {
		t.Fatalf("expected standard verbosity to omit statistics, got %+v", standard)
	}

	detailedArgs := map[string]any{"verbosity": "detailed"}
	for k, v := range base {
		detailedArgs[k] = v
	}
	raw = mustExecute(t, reg, "prove", detailedArgs)
	var detailed map[string]any
	if err := json.Unmarshal([]byte(raw), &detailed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := detailed["statistics"]; !ok {
		t.Fatalf("expected detailed verbosity to include statistics, got %+v", detailed)
	}
	if _, ok := detailed["compiledProgram"]; !ok {
		t.Fatalf("expected detailed verbosity to include the compiled back-end program, got %+v", detailed)
	}
}

func TestCheckWellFormedTool(t *testing.T) {
	reg, _ := newFOLRegistry(t)

	raw := mustExecute(t, reg, "check-well-formed", map[string]any{"formula": "P(a)"})
	var resp map[string]any
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["valid"] != true {
		t.Fatalf("expected valid=true, got %+v", resp)
	}

	raw = mustExecute(t, reg, "check-well-formed", map[string]any{"formula": "P("})
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["valid"] != false {
		t.Fatalf("expected valid=false for malformed input, got %+v", resp)
	}
}

func TestSessionToolsLifecycle(t *testing.T) {
	reg, _ := newFOLRegistry(t)

	createRaw := mustExecute(t, reg, "create-session", map[string]any{})
	var created map[string]any
	if err := json.Unmarshal([]byte(createRaw), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatal("expected a non-empty session id")
	}

	mustExecute(t, reg, "assert-premise", map[string]any{"id": id, "formula": "man(socrates)"})
	mustExecute(t, reg, "assert-premise", map[string]any{"id": id, "formula": "all x (man(x) -> mortal(x))"})

	listRaw := mustExecute(t, reg, "list-premises", map[string]any{"id": id})
	var listed map[string]any
	if err := json.Unmarshal([]byte(listRaw), &listed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	premises, _ := listed["premises"].([]any)
	if len(premises) != 2 {
		t.Fatalf("expected 2 premises, got %d", len(premises))
	}

	queryRaw := mustExecute(t, reg, "query-session", map[string]any{"id": id, "goal": "mortal(socrates)"})
	var resp proveResponse
	if err := json.Unmarshal([]byte(queryRaw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected query-session to prove the goal, got %+v", resp)
	}

	listSessionsRaw := mustExecute(t, reg, "list-sessions", map[string]any{})
	var listSessionsResp map[string]any
	if err := json.Unmarshal([]byte(listSessionsRaw), &listSessionsResp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	ids, _ := listSessionsResp["ids"].([]any)
	found := false
	for _, v := range ids {
		if v == id {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected list-sessions to include %s, got %+v", id, ids)
	}

	mustExecute(t, reg, "delete-session", map[string]any{"id": id})
	afterDeleteRaw := mustExecute(t, reg, "list-premises", map[string]any{"id": id})
	var afterDelete map[string]any
	if err := json.Unmarshal([]byte(afterDeleteRaw), &afterDelete); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if afterDelete["error"] == nil {
		t.Fatalf("expected list-premises on a deleted session to report an error, got %+v", afterDelete)
	}
}
