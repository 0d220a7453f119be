package ast

import "fmt"

// ParseError carries the offending input and byte offset so callers can
// surface a PARSE_ERROR with enough context to point at the failure.
type ParseError struct {
	Message string
	Input   string
	Pos     int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at byte %d: %s", e.Pos, e.Message)
}

func newParseError(input string, pos int, format string, args ...interface{}) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...), Input: input, Pos: pos}
}
