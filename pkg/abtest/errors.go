package abtest

import (
	"fmt"

	"github.com/ukaji3/abtest-summary-go/pkg/abtest/transform"
)

// ConfigurationError reports input that cannot be rendered. No sheet service
// call is made when it is returned.
type ConfigurationError = transform.ConfigurationError

// SheetCreationError represents a failure to create the summary sheet.
type SheetCreationError struct {
	Title string
	Err   error
}

func (e *SheetCreationError) Error() string {
	return fmt.Sprintf("failed to create sheet %q: %v", e.Title, e.Err)
}

func (e *SheetCreationError) Unwrap() error {
	return e.Err
}

// RenderError represents a sheet service failure after the sheet was created.
type RenderError struct {
	Sheet string
	Step  string // "write_preamble", "write_table", "apply_format_plan"
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render error in sheet %q (%s): %v", e.Sheet, e.Step, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// NewRenderError creates a new RenderError.
func NewRenderError(sheet, step string, err error) *RenderError {
	return &RenderError{
		Sheet: sheet,
		Step:  step,
		Err:   err,
	}
}
