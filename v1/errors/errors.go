// Package errors defines the error values shared by go-lockbox packages.
//
// Field-shape failures produced while decoding a record are reported as
// *FieldError values, which match the corresponding sentinel with errors.Is.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateField  = errors.New("duplicate field")
	ErrMissingField    = errors.New("missing field")
	ErrUnknownField    = errors.New("unknown field")
	ErrInvalidType     = errors.New("invalid type")
	ErrLockUnavailable = errors.New("lock unavailable")
	ErrNotFound        = errors.New("not found")
	ErrUnknownCodec    = errors.New("unknown codec")
)

// FieldKind classifies a FieldError.
type FieldKind int

const (
	FieldDuplicate FieldKind = iota
	FieldMissing
	FieldUnknown
)

func (k FieldKind) sentinel() error {
	switch k {
	case FieldDuplicate:
		return ErrDuplicateField
	case FieldMissing:
		return ErrMissingField
	default:
		return ErrUnknownField
	}
}

// FieldError reports a record whose field set does not match the expected shape.
type FieldError struct {
	Kind   FieldKind
	Record string
	Field  string
}

// DuplicateField returns an error for a field that appeared more than once.
func DuplicateField(record, field string) error {
	return &FieldError{Kind: FieldDuplicate, Record: record, Field: field}
}

// MissingField returns an error for a required field that never appeared.
func MissingField(record, field string) error {
	return &FieldError{Kind: FieldMissing, Record: record, Field: field}
}

// UnknownField returns an error for a field the record does not recognise.
func UnknownField(record, field string) error {
	return &FieldError{Kind: FieldUnknown, Record: record, Field: field}
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("%v %q", e.Kind.sentinel(), e.Field)
	if e.Record != "" {
		return e.Record + ": " + msg
	}
	return msg
}

// Is reports whether target is the sentinel for e's kind.
func (e *FieldError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// TypeError reports input that is not shaped like the expected record.
type TypeError struct {
	Got      string
	Expected string
}

// InvalidType returns a TypeError describing what was found and what was expected.
func InvalidType(got, expected string) error {
	return &TypeError{Got: got, Expected: expected}
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("invalid type: %s, expected %s", e.Got, e.Expected)
}

func (e *TypeError) Is(target error) bool {
	return target == ErrInvalidType
}
