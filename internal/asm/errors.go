package asm

import (
	"errors"
	"fmt"

	"llasm/internal/diag"
	"llasm/internal/source"
)

// Class is the error family a parse failure belongs to.
type Class string

const (
	SyntaxError         Class = "SyntaxError"
	DuplicateDefinition Class = "DuplicateDefinitionError"
	TypeMismatch        Class = "TypeMismatchError"
	UnresolvedReference Class = "UnresolvedReferenceError"
	AttributeMisuse     Class = "AttributeMisuseError"
)

// Error is the single failure returned by Parse. The same diagnostic has
// already been sent to Options.Reporter when one is set.
type Error struct {
	Class Class
	Code  diag.Code
	Span  source.Span
	Msg   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code.ID(), e.Msg)
}

func newError(code diag.Code, sp source.Span, msg string) *Error {
	return &Error{
		Class: Class(code.Class()),
		Code:  code,
		Span:  sp,
		Msg:   msg,
	}
}

// ClassOf returns the class of err when it is (or wraps) an *Error.
func ClassOf(err error) (Class, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Class, true
	}
	return "", false
}
