package quantity

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching.
var (
	ErrDimension   = errors.New("dimension mismatch")
	ErrUnknownUnit = errors.New("unknown unit")
	ErrUnknownKind = errors.New("unknown kind")
)

// DimensionError is returned when an operation combines quantities of
// different kinds.
type DimensionError struct {
	Op    string
	Left  Kind
	Right Kind
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: cannot combine %s [%s] with %s [%s]",
		e.Op, e.Left, e.Left.Unit(), e.Right, e.Right.Unit())
}

// Is reports a match against ErrDimension.
func (e *DimensionError) Is(target error) bool {
	return target == ErrDimension
}

// UnitError is returned when a unit string is unknown or does not measure
// the requested kind.
type UnitError struct {
	Unit string
	Kind Kind // KindUnknown when the unit itself is not recognized
}

func (e *UnitError) Error() string {
	if e.Kind == KindUnknown {
		return fmt.Sprintf("unknown unit %q", e.Unit)
	}
	return fmt.Sprintf("unit %q does not measure %s (SI unit %s)", e.Unit, e.Kind, e.Kind.Unit())
}

// Is reports a match against ErrUnknownUnit or ErrDimension.
func (e *UnitError) Is(target error) bool {
	if e.Kind == KindUnknown {
		return target == ErrUnknownUnit
	}
	return target == ErrDimension
}

// UnknownKindError is returned by ParseKind for unrecognized names.
type UnknownKindError struct {
	Name string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown quantity kind %q", e.Name)
}

// Is reports a match against ErrUnknownKind.
func (e *UnknownKindError) Is(target error) bool {
	return target == ErrUnknownKind
}
