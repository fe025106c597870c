package df

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a source does not exist.
	ErrNotFound = errors.New("source not found")
	// ErrEmpty is returned when a source has no header or no data rows.
	ErrEmpty = errors.New("source is empty")
	// ErrRagged is returned when the rows of a source do not all have the same number of fields.
	ErrRagged = errors.New("ragged rows")
)

// LoadError is returned when a source table is missing or malformed.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError wraps err as a LoadError for source.
func NewLoadError(source string, err error) *LoadError {
	return &LoadError{Source: source, Err: err}
}

// ValidationError is returned when a cleaned table fails an invariant.
type ValidationError struct {
	Stage string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Msg)
}

// Validationf creates a ValidationError for stage.
func Validationf(stage, format string, args ...any) *ValidationError {
	return &ValidationError{Stage: stage, Msg: fmt.Sprintf(format, args...)}
}
