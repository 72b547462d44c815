package schema

import (
	"errors"
	"fmt"
)

// ErrRootNotRecord is returned when a schema offered for conversion is not
// a record at the top level.
var ErrRootNotRecord = errors.New("root schema must be a record")

// ConversionError reports a node that can not be represented in the columnar
// model: an unrecognized kind, or a union that is not the [null, T] pattern.
// Path is the dotted field path from the root (empty for the root itself).
type ConversionError struct {
	Path string
	Kind string
}

func (e *ConversionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("unsupported schema type %s", e.Kind)
	}
	return fmt.Sprintf("unsupported schema type %s at %q", e.Kind, e.Path)
}

// NewConversionError builds a ConversionError for the given field path and
// offending kind description.
func NewConversionError(path, kind string) *ConversionError {
	return &ConversionError{Path: path, Kind: kind}
}
