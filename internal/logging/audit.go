package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// AuditEventType names an audit event. generateMangleFact renders it
// either as the fact's predicate name or as a /name argument of a shared
// predicate such as session_lifecycle or query_event.
type AuditEventType string

const (
	AuditSessionCreate  AuditEventType = "session_create"
	AuditSessionAssert  AuditEventType = "session_assert"
	AuditSessionRetract AuditEventType = "session_retract"
	AuditSessionEvict   AuditEventType = "session_evict"
	AuditSessionDelete  AuditEventType = "session_delete"

	AuditParseError     AuditEventType = "parse_error"
	AuditClausifyError  AuditEventType = "clausify_error"
	AuditEngineFallback AuditEventType = "engine_fallback"

	AuditProveStart    AuditEventType = "prove_start"
	AuditProveComplete AuditEventType = "prove_complete"
	AuditModelFind     AuditEventType = "model_find"
	AuditToolExec      AuditEventType = "tool_exec"

	AuditPerfMetric AuditEventType = "perf_metric"
	AuditErrorEvent AuditEventType = "error_event"
)

// AuditEvent represents a structured audit log entry that can be parsed as a
// Mangle fact by downstream tooling. Format: predicate(timestamp, ...args).
type AuditEvent struct {
	Timestamp  int64                  `json:"ts"`
	EventType  AuditEventType         `json:"event"`
	Category   string                 `json:"cat"`
	SessionID  string                 `json:"session"`
	RequestID  string                 `json:"req"`
	Target     string                 `json:"target"`
	Action     string                 `json:"action"`
	Success    bool                   `json:"success"`
	DurationMs int64                  `json:"dur_ms"`
	Error      string                 `json:"error"`
	Message    string                 `json:"msg"`
	Fields     map[string]interface{} `json:"fields"`
	MangleFact string                 `json:"mangle"`
}

var (
	auditFile   *os.File
	auditMu     sync.Mutex
	auditLogger *AuditLogger
)

// AuditLogger handles structured audit logging with Mangle fact generation.
type AuditLogger struct {
	sessionID string
	category  Category
}

// InitAudit initializes the audit logging system.
func InitAudit() error {
	if !IsDebugMode() {
		return nil
	}
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil
	}

	date := time.Now().Format("2006-01-02")
	auditPath := filepath.Join(logsDir, fmt.Sprintf("%s_audit.log", date))

	file, err := os.OpenFile(auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	auditFile = file

	header := fmt.Sprintf("# Audit log started at %s\n# Format: Mangle-queryable structured events\n", time.Now().Format(time.RFC3339))
	auditFile.WriteString(header)
	return nil
}

// CloseAudit closes the audit log file.
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()
	if auditFile != nil {
		auditFile.Close()
		auditFile = nil
	}
}

// Audit returns the global audit logger.
func Audit() *AuditLogger {
	if auditLogger == nil {
		auditLogger = &AuditLogger{}
	}
	return auditLogger
}

// AuditWithSession creates an audit logger scoped to a session.
func AuditWithSession(sessionID string) *AuditLogger {
	return &AuditLogger{sessionID: sessionID}
}

// Log writes an audit event.
func (a *AuditLogger) Log(event AuditEvent) {
	if !IsDebugMode() || auditFile == nil {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.SessionID == "" && a.sessionID != "" {
		event.SessionID = a.sessionID
	}
	if event.Category == "" && a.category != "" {
		event.Category = string(a.category)
	}
	if event.Fields == nil {
		event.Fields = make(map[string]interface{})
	}

	event.MangleFact = generateMangleFact(event)

	auditMu.Lock()
	defer auditMu.Unlock()

	data, err := json.Marshal(event)
	if err == nil {
		auditFile.WriteString(string(data) + "\n")
	}
}

// generateMangleFact creates a Mangle-compatible fact string from an event.
func generateMangleFact(e AuditEvent) string {
	switch e.EventType {
	case AuditSessionCreate, AuditSessionDelete, AuditSessionEvict:
		return fmt.Sprintf("session_lifecycle(%d, /%s, \"%s\", %v).",
			e.Timestamp, e.EventType, e.SessionID, e.Success)

	case AuditSessionAssert, AuditSessionRetract:
		return fmt.Sprintf("session_mutation(%d, /%s, \"%s\", \"%s\").",
			e.Timestamp, e.EventType, e.SessionID, escapeString(e.Target))

	case AuditParseError, AuditClausifyError:
		return fmt.Sprintf("pipeline_error(%d, /%s, \"%s\").",
			e.Timestamp, e.EventType, escapeString(e.Error))

	case AuditEngineFallback:
		return fmt.Sprintf("engine_fallback(%d, \"%s\", \"%s\").",
			e.Timestamp, e.Target, e.Action)

	case AuditProveStart, AuditProveComplete, AuditModelFind:
		return fmt.Sprintf("query_event(%d, /%s, \"%s\", \"%s\", %v, %d).",
			e.Timestamp, e.EventType, e.SessionID, e.Action, e.Success, e.DurationMs)

	case AuditToolExec:
		return fmt.Sprintf("tool_exec(%d, \"%s\", %v, %d).",
			e.Timestamp, e.Target, e.Success, e.DurationMs)

	case AuditPerfMetric:
		return fmt.Sprintf("perf_metric(%d, \"%s\", \"%s\", %d).",
			e.Timestamp, e.Category, e.Action, e.DurationMs)

	case AuditErrorEvent:
		return fmt.Sprintf("error_event(%d, \"%s\", \"%s\").",
			e.Timestamp, e.Category, escapeString(e.Error))

	default:
		return fmt.Sprintf("audit_event(%d, /%s, \"%s\", \"%s\", %v).",
			e.Timestamp, e.EventType, e.Category, escapeString(e.Message), e.Success)
	}
}

func escapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/10)
	for _, c := range s {
		switch c {
		case '"':
			b.WriteString("\\\"")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\r':
			b.WriteString("\\r")
		case '\t':
			b.WriteString("\\t")
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

// =============================================================================
// CONVENIENCE METHODS FOR COMMON EVENTS
// =============================================================================

func (a *AuditLogger) SessionCreate(sessionID string) {
	a.Log(AuditEvent{EventType: AuditSessionCreate, SessionID: sessionID, Success: true})
}

func (a *AuditLogger) SessionEvict(sessionID string, reason string) {
	a.Log(AuditEvent{EventType: AuditSessionEvict, SessionID: sessionID, Message: reason, Success: true})
}

func (a *AuditLogger) SessionDelete(sessionID string) {
	a.Log(AuditEvent{EventType: AuditSessionDelete, SessionID: sessionID, Success: true})
}

func (a *AuditLogger) SessionAssert(sessionID, formula string) {
	a.Log(AuditEvent{EventType: AuditSessionAssert, SessionID: sessionID, Target: formula, Success: true})
}

func (a *AuditLogger) SessionRetract(sessionID, formula string) {
	a.Log(AuditEvent{EventType: AuditSessionRetract, SessionID: sessionID, Target: formula, Success: true})
}

func (a *AuditLogger) ProveStart(sessionID, engine string) {
	a.Log(AuditEvent{EventType: AuditProveStart, SessionID: sessionID, Action: engine, Success: true})
}

func (a *AuditLogger) ProveComplete(sessionID, engine string, durationMs int64, success bool) {
	a.Log(AuditEvent{EventType: AuditProveComplete, SessionID: sessionID, Action: engine, DurationMs: durationMs, Success: success})
}

func (a *AuditLogger) ModelFind(sessionID string, domainSize int, found bool, durationMs int64) {
	a.Log(AuditEvent{
		EventType: AuditModelFind, SessionID: sessionID, Success: found, DurationMs: durationMs,
		Fields: map[string]interface{}{"domainSize": domainSize},
	})
}

func (a *AuditLogger) EngineFallback(from, to string) {
	a.Log(AuditEvent{EventType: AuditEngineFallback, Target: from, Action: to, Success: true})
}

func (a *AuditLogger) ParseError(err error) {
	a.Log(AuditEvent{EventType: AuditParseError, Error: err.Error(), Success: false})
}

func (a *AuditLogger) ClausifyError(err error) {
	a.Log(AuditEvent{EventType: AuditClausifyError, Error: err.Error(), Success: false})
}

func (a *AuditLogger) ToolExec(toolName string, success bool, durationMs int64) {
	a.Log(AuditEvent{EventType: AuditToolExec, Target: toolName, Success: success, DurationMs: durationMs})
}

func (a *AuditLogger) PerfMetric(operation string, durationMs int64) {
	a.Log(AuditEvent{EventType: AuditPerfMetric, Action: operation, DurationMs: durationMs, Success: true})
}

func (a *AuditLogger) ErrorEvent(category string, err error) {
	a.Log(AuditEvent{EventType: AuditErrorEvent, Category: category, Error: err.Error(), Success: false})
}
