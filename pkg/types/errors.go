package types

import (
	"errors"
	"fmt"

	"plvm/pkg/lexer"
)

var (
	ErrUndefinedType          = errors.New("undefined type")
	ErrUndefinedVariable      = errors.New("undefined variable")
	ErrTypeAlreadyDefined     = errors.New("type already defined")
	ErrVariableAlreadyDefined = errors.New("variable already defined")
	ErrTypeMismatch           = errors.New("type mismatch")
	ErrArity                  = errors.New("wrong number of arguments")
	ErrReturnOutsideFunction  = errors.New("return outside function")
	ErrUnreachable            = errors.New("unreachable statement")
	ErrToString               = errors.New("missing toString")
	ErrNotModifiable          = errors.New("not modifiable")
	ErrNotAssignable          = errors.New("not assignable")
	ErrBreakOutsideLoop       = errors.New("break or continue outside loop")
	ErrMissingReturn          = errors.New("missing return")
	ErrNoSuchField            = errors.New("no such field")
	ErrNotCallable            = errors.New("not callable")
	ErrTemplateParams         = errors.New("template parameter mismatch")
	ErrDefaultValue           = errors.New("invalid default value")
)

// CheckError is a compile time failure. Kind is one of the sentinels above.
type CheckError struct {
	Kind error
	Pos  lexer.Position
	Msg  string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s: %s (line %d, column %d)", e.Kind, e.Msg, e.Pos.Line, e.Pos.Column)
}

func (e *CheckError) Unwrap() error {
	return e.Kind
}

// Errorf builds a CheckError of the given kind
func Errorf(kind error, pos lexer.Position, format string, args ...any) *CheckError {
	return &CheckError{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
