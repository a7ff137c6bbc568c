package object

import (
	"errors"
	"fmt"
	"strings"
)

// Object errors. They are returned by the public API and can be checked with errors.Is.
var (
	// ErrInvalidArgument is returned for empty property names, a nil locker,
	// a nil default provider or a nil error passed to ReportErrors.
	ErrInvalidArgument = errors.New("object: invalid argument")

	// ErrUnknownProperty is returned when a strict property set is configured
	// and the name is not part of it.
	ErrUnknownProperty = errors.New("object: unknown property")

	// ErrPropertyType is returned when a stored value does not have the type of the key.
	ErrPropertyType = errors.New("object: property type mismatch")

	// ErrDisposed matches every *DisposedError.
	ErrDisposed = errors.New("object: disposed")

	// ErrCannotStart is returned by Start when the can-start predicate refuses.
	ErrCannotStart = errors.New("object: object cannot be started")
)

// DisposedError reports an operation on an object that has already been disposed.
type DisposedError struct {
	TypeName string
	ID       string
}

func (e *DisposedError) Error() string {
	return fmt.Sprintf("%s: instance %s has already been disposed", e.TypeName, e.ID)
}

// Is makes errors.Is(err, ErrDisposed) succeed.
func (e *DisposedError) Is(target error) bool {
	return target == ErrDisposed
}

// AggregateError holds one or more errors reported together.
type AggregateError struct {
	Errors []error
}

// Aggregate wraps err into an *AggregateError unless it already is one.
func Aggregate(err error) *AggregateError {
	if agg, ok := err.(*AggregateError); ok {
		return agg
	}
	return &AggregateError{Errors: []error{err}}
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d errors occurred: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap returns the underlying errors.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

func invalidArgument(what string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, what)
}
