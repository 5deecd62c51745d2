// Package abtest renders experiment results into formatted summary sheets.
package abtest

import "github.com/ukaji3/abtest-summary-go/pkg/abtest/layout"

// Options configures rendering behavior.
type Options struct {
	// Layout selects the sheet layout (preamble, inline).
	Layout layout.Variant
	// VariantMapping renames raw treatment names. Unknown keys are ignored.
	VariantMapping map[string]string
	// BasicFilter specifies whether to attach a filter to the table.
	// If nil, defaults to the layout's setting.
	BasicFilter *bool
	// Palette overrides the default colors and font.
	Palette *layout.Palette
}

// DefaultOptions returns default rendering options.
func DefaultOptions() Options {
	return Options{
		Layout: layout.VariantPreamble,
	}
}

// ShouldIncludeFilter returns whether to attach a basic filter, given the
// layout's default.
func (o Options) ShouldIncludeFilter(layoutDefault bool) bool {
	if o.BasicFilter != nil {
		return *o.BasicFilter
	}
	return layoutDefault
}

func (o Options) palette() layout.Palette {
	if o.Palette != nil {
		return *o.Palette
	}
	return layout.DefaultPalette()
}
