package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrStructural       = errors.New("structural error")
	ErrType             = errors.New("type error")
	ErrIllegalOperation = errors.New("illegal operation")
	ErrParse            = errors.New("parse error")
	ErrIO               = errors.New("io error")
)

// Error carries the kind, the failing operation and an optional cause.
type Error struct {
	Kind error
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// StructuralError reports malformed graphs, unresolved labels and invalid
// operation preconditions.
func StructuralError(op, format string, args ...any) error {
	return &Error{Kind: ErrStructural, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// TypeError reports an attempted broadening of a concept or relation type.
func TypeError(op, format string, args ...any) error {
	return &Error{Kind: ErrType, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// IllegalOperation reports an operator or member applied to a value kind that
// does not support it.
func IllegalOperation(op, format string, args ...any) error {
	return &Error{Kind: ErrIllegalOperation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// ParseError wraps a syntax or decoding failure from a codec or loader.
func ParseError(op string, err error) error {
	return &Error{Kind: ErrParse, Op: op, Msg: "failed to parse", Err: err}
}

// IOError wraps a read or write failure.
func IOError(op string, err error) error {
	return &Error{Kind: ErrIO, Op: op, Msg: "i/o failure", Err: err}
}
