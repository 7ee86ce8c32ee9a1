package boolexpr

import (
	"errors"
	"fmt"
)

// Compile errors.
var (
	ErrEmptyExpr      = errors.New("empty expression")
	ErrUnmatchedParen = errors.New("unmatched parenthesis")
)

// Evaluation errors.
var (
	ErrStackUnderflow  = errors.New("operator is missing an operand")
	ErrDanglingOperand = errors.New("operands left without an operator")
)

// CompileError reports a malformed expression. Pos is the index of the
// offending token in the token stream, or -1 when the problem is only
// visible at the end of input.
type CompileError struct {
	Pos     int
	Message string
	Err     error
}

func (e *CompileError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("compile error at end of expression: %s", e.Message)
	}
	return fmt.Sprintf("compile error at token %d: %s", e.Pos, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

func newCompileError(pos int, err error, msgFmt string, args ...any) *CompileError {
	return &CompileError{
		Pos:     pos,
		Message: fmt.Sprintf(msgFmt, args...),
		Err:     err,
	}
}
