package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrLoading           = errors.New("still loading")
	ErrLoadAborted       = errors.New("load aborted before delivering data")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrWorkerClosed      = errors.New("task worker closed")
	ErrManagerClosed     = errors.New("manager closed")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// ResourceKind names the family of resources a manager owns.
type ResourceKind string

const (
	KindTexture  ResourceKind = "texture"
	KindGeometry ResourceKind = "geometry"
	KindScene    ResourceKind = "scene"
)

// LoadError reports that a create call could not obtain the underlying resource.
// No id is allocated when it is returned.
type LoadError struct {
	Kind  ResourceKind
	Path  string
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("can't load %s '%s': %v", e.Kind, e.Path, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// UnavailableError reports a query against an id that is not usable right now.
// Reason is one of ErrNotFound, ErrLoading or ErrLoadAborted.
type UnavailableError struct {
	Kind   ResourceKind
	ID     uint64
	Reason error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s #%d unavailable: %v", e.Kind, e.ID, e.Reason)
}

func (e *UnavailableError) Unwrap() error {
	return e.Reason
}

func NewNotFoundError(kind ResourceKind, id uint64) error {
	return &UnavailableError{Kind: kind, ID: id, Reason: ErrNotFound}
}

func NewLoadingError(kind ResourceKind, id uint64) error {
	return &UnavailableError{Kind: kind, ID: id, Reason: ErrLoading}
}
