package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below unwrap to these, so callers can use
// errors.Is without caring which entity or field was involved.
var (
	ErrNotFound         = errors.New("not found")
	ErrPropertyNotFound = errors.New("property not found")
	ErrClosed           = errors.New("graph closed")
)

// NotFoundError reports a node or edge id absent from its membership set.
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.ID, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// PropertyNotFoundError reports a get or remove of a field that is not set
// on the entity.
type PropertyNotFoundError struct {
	Field string
}

func (e *PropertyNotFoundError) Error() string {
	return fmt.Sprintf("property %q: %v", e.Field, ErrPropertyNotFound)
}

func (e *PropertyNotFoundError) Unwrap() error { return ErrPropertyNotFound }
