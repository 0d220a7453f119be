// Package backend defines the capability interface every prover back-end
// satisfies (§4.D-G, Design Notes "Dynamic dispatch") and the structured
// result/options types shared across them.
package backend

import (
	"context"
	"time"

	"folengine/internal/clause"
)

// ResultKind is the closed set of verdicts a prove call may return (§6).
type ResultKind string

const (
	Proved       ResultKind = "proved"
	Failed       ResultKind = "failed"
	Timeout      ResultKind = "timeout"
	Error        ResultKind = "error"
	NoModelFound ResultKind = "no-model-found"
)

// ErrorKind is the closed set of stable error-kind strings (§6/§7).
type ErrorKind string

const (
	ErrParse          ErrorKind = "PARSE_ERROR"
	ErrClausification ErrorKind = "CLAUSIFICATION_ERROR"
	ErrEngine         ErrorKind = "ENGINE_ERROR"
	ErrTimeout        ErrorKind = "TIMEOUT"
	ErrInferenceLimit ErrorKind = "INFERENCE_LIMIT"
	ErrSessionNotFound ErrorKind = "SESSION_NOT_FOUND"
	ErrSessionLimit   ErrorKind = "SESSION_LIMIT"
	ErrInvalidArgument ErrorKind = "INVALID_ARGUMENT"
	ErrUnsupported    ErrorKind = "UNSUPPORTED"
)

// Error is the structured error value every layer of the core carries
// instead of a bare error string (§7: "never as untyped panics").
type Error struct {
	Kind    ErrorKind
	Message string
	Pos     int // byte offset, for ErrParse; -1 if not applicable
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Message }

// NewError builds an *Error with no associated position.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message, Pos: -1}
}

// Statistics accompanies a prove/find-model result at `detailed` verbosity.
type Statistics struct {
	Inferences    int
	TimeMs        int64
	VariableCount int
	ClauseCount   int
}

// Capabilities is the subset-flag record the dispatcher reads at routing
// time (Design Notes "Dynamic dispatch") without invoking the back-end.
type Capabilities struct {
	Horn       bool // handles the Horn fragment
	FullFOL    bool // handles non-Horn / full first-order clause sets
	Equality   bool // understands "=" literals natively
	Arithmetic bool // understands designated arithmetic predicates
	Streaming  bool // can yield multiple models incrementally
}

// Options configures a single prove/checkSat call.
type Options struct {
	Strategy         string // "auto", "iterative", "fixed"
	MaxSeconds       time.Duration
	MaxInferences    int
	EnableEquality   bool
	EnableArithmetic bool
}

// ProofStep is one step of the linear trace a back-end recorded while
// proving — not a minimal proof (§1 Non-goals explicitly disclaim
// minimality), just the steps actually taken.
type ProofStep struct {
	Description string
	Clause      string
}

// Result is the structured outcome of a prove call — the re-expression of
// the underlying solver libraries' callback-style APIs into a single
// returned value (Design Notes "Callback-style solver APIs").
type Result struct {
	Result          ResultKind
	EngineUsed      string
	Message         string
	Bindings        map[string]string
	Proof           []ProofStep
	Statistics      Statistics
	Err             *Error
	CompiledProgram string // the back-end's compiled source; always filled by the textual back-ends, surfaced by the tools only at `detailed` verbosity
}

// Engine is the common capability set every back-end implements (Design
// Notes "Dynamic dispatch": "{prove, checkSat, init, close, capabilities}").
type Engine interface {
	Name() string
	Capabilities() Capabilities
	Init() error
	Close() error
	Prove(ctx context.Context, cs clause.ClauseSet, goal clause.Literal, opts Options) Result
	CheckSat(ctx context.Context, cs clause.ClauseSet) Result
}
