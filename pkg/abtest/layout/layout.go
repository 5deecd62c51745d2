// Package layout derives the formatting plan of a summary sheet.
package layout

import (
	"errors"
	"fmt"

	"github.com/ukaji3/abtest-summary-go/pkg/abtest/models"
)

// ErrUnknownLayout indicates an unsupported layout variant.
var ErrUnknownLayout = errors.New("unknown layout")

// Variant selects one of the supported sheet layouts.
type Variant string

const (
	// VariantPreamble places a "Test Configurations" block above the table.
	VariantPreamble Variant = "preamble"
	// VariantInline carries analysis type and alpha as table columns.
	VariantInline Variant = "inline"
)

// preambleRows is the height of the configuration block plus its spacer row.
const preambleRows = 4

// Layout is a resolved layout variant.
type Layout struct {
	Variant Variant
	// Schema is the column schema of the table.
	Schema models.ColumnSchema
	// HeaderRow is the 0-based row of the table header.
	HeaderRow int
	// Preamble reports whether a configuration block precedes the table.
	Preamble bool
	// Filter attaches a basic filter to the table.
	Filter bool
}

// Resolve returns the layout for variant, with the basic filter enabled.
func Resolve(variant Variant) (Layout, error) {
	switch variant {
	case VariantPreamble, "":
		return Layout{
			Variant:   VariantPreamble,
			Schema:    models.PreambleSchema(),
			HeaderRow: preambleRows,
			Preamble:  true,
			Filter:    true,
		}, nil
	case VariantInline:
		return Layout{
			Variant: VariantInline,
			Schema:  models.InlineSchema(),
			Filter:  true,
		}, nil
	}
	return Layout{}, fmt.Errorf("%w: %q (must be preamble or inline)", ErrUnknownLayout, variant)
}

// FirstDataRow is the 0-based row of the first data row.
func (l Layout) FirstDataRow() int {
	return l.HeaderRow + 1
}

// GridRows is the number of sheet rows needed for n data rows.
func (l Layout) GridRows(n int) int {
	return l.HeaderRow + 1 + n
}

// Anchor is the A1 reference of the header's first cell.
func (l Layout) Anchor() string {
	return fmt.Sprintf("A%d", l.HeaderRow+1)
}

// PreambleValues returns the configuration block written above the table.
func (l Layout) PreambleValues(analysisType string, alpha float64) [][]any {
	if !l.Preamble {
		return nil
	}
	return [][]any{
		{"Test Configurations", ""},
		{"Type", analysisType},
		{"Alpha", alpha},
	}
}
