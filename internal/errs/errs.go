// Package errs holds the error kinds reported by scenerender.
//
// Every failure returned by the other packages unwraps to exactly one of the
// sentinel kinds below, so callers can classify it with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrUsage                  = errors.New("usage error")
	ErrFileOpen               = errors.New("could not open file")
	ErrMalformedInput         = errors.New("malformed input")
	ErrSchemaViolation        = errors.New("invalid description")
	ErrInvalidColorFormat     = errors.New("invalid colour")
	ErrUnsupportedElementType = errors.New("unsupported element type")
	ErrOutputDirectory        = errors.New("could not create output folder")
	ErrCanvasTooLarge         = errors.New("canvas too large")
	ErrEncode                 = errors.New("could not encode image")
)

// SchemaError reports a missing or mistyped field of a description.
type SchemaError struct {
	Path   string // field path, e.g. images[0].elements[1].x
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrSchemaViolation, e.Path, e.Reason)
}

func (e *SchemaError) Unwrap() error { return ErrSchemaViolation }

// Schema builds a SchemaError.
func Schema(path, format string, args ...any) error {
	return &SchemaError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// ColourError reports colour text that is not a valid hex colour.
type ColourError struct {
	Text   string
	Reason string
}

func (e *ColourError) Error() string {
	return fmt.Sprintf("%v %q: %s", ErrInvalidColorFormat, e.Text, e.Reason)
}

func (e *ColourError) Unwrap() error { return ErrInvalidColorFormat }

// ElementError reports an element whose type tag is not known.
type ElementError struct {
	Path string
	Type string
}

func (e *ElementError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v %q", ErrUnsupportedElementType, e.Type)
	}
	return fmt.Sprintf("%v %q at %s", ErrUnsupportedElementType, e.Type, e.Path)
}

func (e *ElementError) Unwrap() error { return ErrUnsupportedElementType }
