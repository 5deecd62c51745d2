package transform

import (
	"errors"
	"fmt"
)

// ErrEmptyTable indicates the results table has no rows.
var ErrEmptyTable = errors.New("results table is empty")

// ErrMissingField indicates a required column or value is absent.
var ErrMissingField = errors.New("missing required field")

// ConfigurationError reports input that cannot be rendered.
// No sheet is written when it is returned.
type ConfigurationError struct {
	Field string // offending column, "" for table-level problems
	Row   int    // 0-based data row, -1 when not row specific
	Err   error
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Field == "":
		return fmt.Sprintf("configuration error: %v", e.Err)
	case e.Row < 0:
		return fmt.Sprintf("configuration error in %q: %v", e.Field, e.Err)
	default:
		return fmt.Sprintf("configuration error in %q at row %d: %v", e.Field, e.Row, e.Err)
	}
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configError(field string, row int, err error) *ConfigurationError {
	return &ConfigurationError{Field: field, Row: row, Err: err}
}
