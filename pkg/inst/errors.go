package inst

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"plvm/pkg/lexer"
)

var (
	ErrDivisionByZero   = errors.New("division by zero")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrNullPointer      = errors.New("null pointer")
	ErrThrown           = errors.New("exception")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrStackOverflow    = errors.New("stack overflow")
	ErrMaxStepsExceeded = errors.New("maximum steps exceeded")
	ErrAborted          = errors.New("execution aborted")
)

// StackInfo tags an instruction with the scope it was compiled in.
type StackInfo struct {
	Class    string         // declaring class, empty outside classes
	Function string         // declaring function, empty at the top level
	Pos      lexer.Position // source position
}

// String renders the frame like "Point.len (3:5)"
func (s StackInfo) String() string {
	var name string
	switch {
	case s.Class != "" && s.Function != "":
		name = s.Class + "." + s.Function
	case s.Class != "":
		name = s.Class
	case s.Function != "":
		name = s.Function
	default:
		name = "<script>"
	}
	return fmt.Sprintf("%s (%s)", name, s.Pos)
}

// ExecError is a run-time failure with the call path captured where it happened.
type ExecError struct {
	Message string
	Cause   error
	Trace   []StackInfo // outermost first
}

func (e *ExecError) Error() string {
	return e.Message
}

func (e *ExecError) Unwrap() error {
	return e.Cause
}

// FormatTrace renders the trace innermost first, one frame per line
func (e *ExecError) FormatTrace() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	for i := len(e.Trace) - 1; i >= 0; i-- {
		sb.WriteString("\n\tat ")
		sb.WriteString(e.Trace[i].String())
	}
	return sb.String()
}

// IsHostAbort reports errors that come from the host rather than the
// script; error handling instructions never catch them.
func IsHostAbort(err error) bool {
	return errors.Is(err, ErrMaxStepsExceeded) ||
		errors.Is(err, ErrAborted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// ErrorMessage returns the script visible message of a caught error
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var ee *ExecError
	if errors.As(err, &ee) {
		return ee.Message
	}
	return err.Error()
}
