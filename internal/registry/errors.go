package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrLoadFailed matches every *LoadError.
	ErrLoadFailed = errors.New("dependency load failed")

	// ErrCycle is returned when an Extends edge would close a cycle.
	ErrCycle = errors.New("dependency cycle")

	// ErrNotDefined means a unit loaded but never defined the requested type.
	ErrNotDefined = errors.New("unit did not define type")

	// ErrUnitNotFound is returned by a Loader that has no unit for a path.
	// Chain moves on to the next loader when it sees it.
	ErrUnitNotFound = errors.New("unit not found")
)

// LoadError carries the attempted unit path and the underlying failure.
type LoadError struct {
	Type string
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s (%s): %v", ErrLoadFailed, e.Type, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrLoadFailed) match without wrapping twice.
func (e *LoadError) Is(target error) bool { return target == ErrLoadFailed }
