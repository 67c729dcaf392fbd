package edit

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownAttribute = errors.New("unknown attribute")
	ErrLengthMismatch   = errors.New("length mismatch")
	ErrInvalidValue     = errors.New("invalid value")
	ErrUnsupportedNode  = errors.New("node kind is not editable")
)

// UnknownAttributeError names a key that is not editable on the node.
type UnknownAttributeError struct {
	Kind      string
	Node      string
	Attribute string
	Allowed   []string
}

func (e *UnknownAttributeError) Error() string {
	msg := fmt.Sprintf("%q is not a recognized attribute of %s %q", e.Attribute, e.Kind, e.Node)
	if len(e.Allowed) > 0 {
		msg += "; expected one of: " + strings.Join(e.Allowed, ", ")
	}
	return msg
}

func (e *UnknownAttributeError) Is(target error) bool { return target == ErrUnknownAttribute }

// LengthMismatchError is returned when a layered value does not have one
// entry per soil layer.
type LengthMismatchError struct {
	Attribute string
	Got       int
	Want      int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s: got %d values, the profile has %d layers", e.Attribute, e.Got, e.Want)
}

func (e *LengthMismatchError) Is(target error) bool { return target == ErrLengthMismatch }

// InvalidValueError is returned when a value cannot be converted to what the
// field stores.
type InvalidValueError struct {
	Attribute string
	Value     any
	Reason    string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %v for %s: %s", e.Value, e.Attribute, e.Reason)
}

func (e *InvalidValueError) Is(target error) bool { return target == ErrInvalidValue }

// UnsupportedNodeError is returned for node kinds without an edit variant.
type UnsupportedNodeError struct {
	Kind string
	Node string
}

func (e *UnsupportedNodeError) Error() string {
	return fmt.Sprintf("%s %q cannot be edited", e.Kind, e.Node)
}

func (e *UnsupportedNodeError) Is(target error) bool { return target == ErrUnsupportedNode }
