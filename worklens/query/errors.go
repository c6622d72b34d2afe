package query

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	// lexical failures
	ErrUnterminatedString       ErrorKind = "unterminated_string"
	ErrUnterminatedBracedString ErrorKind = "unterminated_braced_string"
	ErrUnexpectedChar           ErrorKind = "unexpected_character"
	ErrInvalidNumber            ErrorKind = "invalid_number_literal"

	// parse failures
	ErrUnknownField    ErrorKind = "unknown_field"
	ErrTypeMismatch    ErrorKind = "type_mismatch"
	ErrUnexpectedToken ErrorKind = "unexpected_token"
	ErrExpectedValue   ErrorKind = "expected_value"
	ErrExpectedToken   ErrorKind = "expected_token"
)

// Error is the single failure value produced by the lexer and parser.
// Pos is a best-effort rune offset into the source for UI highlighting,
// or -1 when no offset is known.
type Error struct {
	Kind        ErrorKind
	Message     string
	Pos         int
	Field       string
	Suggestions []string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	base := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Field != "" {
		base = fmt.Sprintf("%s (field=%s)", base, e.Field)
	}
	if len(e.Suggestions) > 0 {
		base = fmt.Sprintf("%s, did you mean %s?", base, strings.Join(e.Suggestions, ", "))
	}
	if e.Pos >= 0 {
		base = fmt.Sprintf("%s at offset %d", base, e.Pos)
	}
	return base
}

// IsKind reports whether err is a query Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func newError(kind ErrorKind, pos int, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

func unknownFieldError(name string, pos int) *Error {
	return &Error{
		Kind:        ErrUnknownField,
		Message:     fmt.Sprintf("unknown field %q", name),
		Pos:         pos,
		Field:       name,
		Suggestions: SuggestFields(name, maxFieldSuggestions),
	}
}

func typeMismatchError(f *Field, raw string, pos int) *Error {
	return &Error{
		Kind:    ErrTypeMismatch,
		Message: fmt.Sprintf("cannot use %q as %s", raw, f.Kind),
		Pos:     pos,
		Field:   f.Name,
	}
}

// maxFieldSuggestions caps the registry suggestions embedded in
// unknown-field errors.
const maxFieldSuggestions = 3
