package importer

import (
	"errors"
	"fmt"
)

// ErrAmbiguous signals that a related-entity lookup matched more than one
// record. Store implementations wrap it so the coercion layer can classify
// the failure without knowing the store's concrete type.
var ErrAmbiguous = errors.New("reference matches more than one record")

// CoercionKind classifies why a field value could not be coerced.
type CoercionKind string

const (
	KindInvalidFormat       CoercionKind = "invalid_format"
	KindConstraintViolation CoercionKind = "constraint_violation"
	KindAmbiguousReference  CoercionKind = "ambiguous_reference"
)

// CoercionError reports a per-field coercion failure: a value that does not
// parse, violates a field constraint, or resolves ambiguously.
type CoercionError struct {
	Field string
	Kind  CoercionKind
	Value string
	Err   error
}

func (e *CoercionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("field %q: %s (value %q): %v", e.Field, e.Kind, e.Value, e.Err)
	}
	return fmt.Sprintf("field %q: %s (value %q)", e.Field, e.Kind, e.Value)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// ValidationError reports a missing required column or a whole-record
// invariant violation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
	}
	return e.Reason
}

// PersistenceError reports a record store failure. Fatal for the affected
// row only; the batch continues.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
