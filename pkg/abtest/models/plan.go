package models

import (
	"fmt"
	"math"
	"strconv"
)

// Color is an RGB color with components in [0, 1].
type Color struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

// Hex returns the color as an RRGGBB string.
func (c Color) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", channel(c.Red), channel(c.Green), channel(c.Blue))
}

func channel(v float64) int {
	return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// GridRange is a half-open cell range with 0-based indexes.
type GridRange struct {
	StartRow int `json:"start_row"`
	EndRow   int `json:"end_row"`
	StartCol int `json:"start_col"`
	EndCol   int `json:"end_col"`
}

// Empty reports whether the range covers no cells.
func (r GridRange) Empty() bool {
	return r.EndRow <= r.StartRow || r.EndCol <= r.StartCol
}

// Contains reports whether the cell at (row, col) lies inside the range.
func (r GridRange) Contains(row, col int) bool {
	return row >= r.StartRow && row < r.EndRow && col >= r.StartCol && col < r.EndCol
}

// Clip returns the intersection of the range with a rows x cols grid.
func (r GridRange) Clip(rows, cols int) GridRange {
	r.StartRow = max(r.StartRow, 0)
	r.StartCol = max(r.StartCol, 0)
	r.EndRow = min(r.EndRow, rows)
	r.EndCol = min(r.EndCol, cols)
	return r
}

// Alignment is a horizontal cell alignment.
type Alignment string

const (
	AlignLeft   Alignment = "LEFT"
	AlignCenter Alignment = "CENTER"
)

// NumberFormat is a number format type and pattern.
type NumberFormat struct {
	// Type is NUMBER or PERCENT.
	Type string `json:"type"`
	// Pattern is the format code (e.g., "#,##0.00").
	Pattern string `json:"pattern"`
}

// StyleField names a style property written by a FormatRegion.
type StyleField string

const (
	FieldBackground   StyleField = "backgroundColor"
	FieldTextFormat   StyleField = "textFormat"
	FieldFontFamily   StyleField = "textFormat.fontFamily"
	FieldAlignment    StyleField = "horizontalAlignment"
	FieldNumberFormat StyleField = "numberFormat"
)

// CellStyle is the style payload of a FormatRegion.
type CellStyle struct {
	Background   *Color        `json:"background,omitempty"`
	TextColor    *Color        `json:"text_color,omitempty"`
	FontFamily   string        `json:"font_family,omitempty"`
	Bold         bool          `json:"bold,omitempty"`
	Align        Alignment     `json:"align,omitempty"`
	NumberFormat *NumberFormat `json:"number_format,omitempty"`
}

// BorderStyle is applied to every edge (outer and inner) of a range.
type BorderStyle struct {
	// Style is the line style (e.g., SOLID).
	Style string `json:"style"`
	// Width is the line width in pixels; 0 leaves the service default.
	Width int `json:"width,omitempty"`
	// Color is the line color.
	Color Color `json:"color"`
}

// FormatRegion styles a range. Exactly one of Style or Border is set.
// Only the properties listed in Fields are written; a listed property with a
// zero value resets it.
type FormatRegion struct {
	Range  GridRange    `json:"range"`
	Style  *CellStyle   `json:"style,omitempty"`
	Fields []StyleField `json:"fields,omitempty"`
	Border *BorderStyle `json:"border,omitempty"`
}

// Operator is a comparison applied by a ConditionalRule.
type Operator string

const (
	OpGreater Operator = "NUMBER_GREATER"
	OpLess    Operator = "NUMBER_LESS"
	// OpBetween is inclusive on both ends.
	OpBetween Operator = "NUMBER_BETWEEN"
)

// Condition is a predicate over a cell's own numeric value.
type Condition struct {
	Op     Operator  `json:"op"`
	Values []float64 `json:"values"`
}

// Matches evaluates the predicate.
func (c Condition) Matches(v float64) bool {
	switch c.Op {
	case OpGreater:
		return len(c.Values) == 1 && v > c.Values[0]
	case OpLess:
		return len(c.Values) == 1 && v < c.Values[0]
	case OpBetween:
		return len(c.Values) == 2 && v >= c.Values[0] && v <= c.Values[1]
	}
	return false
}

// MatchesCell evaluates the predicate on a written cell value. Text such as
// the N/A sentinel never matches.
func (c Condition) MatchesCell(v any) bool {
	switch x := v.(type) {
	case float64:
		return c.Matches(x)
	case float32:
		return c.Matches(float64(x))
	case int:
		return c.Matches(float64(x))
	case int64:
		return c.Matches(float64(x))
	}
	return false
}

// Formula renders the predicate as a spreadsheet formula over cell, which is
// the top-left cell of the rule's range (e.g., "G6"). The formula is guarded
// by ISNUMBER since spreadsheets rank text above every number.
// It returns "" for a malformed condition.
func (c Condition) Formula(cell string) string {
	vals := make([]string, len(c.Values))
	for i, v := range c.Values {
		vals[i] = FormatNumber(v)
	}
	switch {
	case c.Op == OpGreater && len(vals) == 1:
		return fmt.Sprintf("=AND(ISNUMBER(%s), %s>%s)", cell, cell, vals[0])
	case c.Op == OpLess && len(vals) == 1:
		return fmt.Sprintf("=AND(ISNUMBER(%s), %s<%s)", cell, cell, vals[0])
	case c.Op == OpBetween && len(vals) == 2:
		return fmt.Sprintf("=AND(ISNUMBER(%s), %s>=%s, %s<=%s)", cell, cell, vals[0], cell, vals[1])
	}
	return ""
}

// FormatNumber renders a threshold the way it is typed into a sheet.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ConditionalRule fills a cell with Background when Condition holds for the
// cell's own value.
type ConditionalRule struct {
	Range      GridRange `json:"range"`
	Condition  Condition `json:"condition"`
	Background Color     `json:"background"`
	// Formula renders the rule as a custom formula anchored at the range's
	// top-left cell instead of a built-in comparison.
	Formula bool `json:"formula,omitempty"`
}

// ColumnWidth sizes one column.
type ColumnWidth struct {
	Column int `json:"column"`
	// Chars is the estimated content width in characters, padding included.
	Chars int `json:"chars"`
	// Pixels is the rendered width.
	Pixels int `json:"pixels"`
}

// DirectiveKind tags the payload of a Directive.
type DirectiveKind string

const (
	KindFormat      DirectiveKind = "format"
	KindBorders     DirectiveKind = "borders"
	KindConditional DirectiveKind = "conditional"
	KindColumnWidth DirectiveKind = "column_width"
	KindBasicFilter DirectiveKind = "basic_filter"
)

// Directive is one entry of a Plan.
type Directive struct {
	Kind   DirectiveKind    `json:"kind"`
	Region *FormatRegion    `json:"region,omitempty"`
	Rule   *ConditionalRule `json:"rule,omitempty"`
	Width  *ColumnWidth     `json:"width,omitempty"`
	Filter *GridRange       `json:"filter,omitempty"`
}

// Plan is the ordered formatting of one sheet. Later directives layer over
// earlier ones, so consumers must apply them in order.
type Plan struct {
	// Rows and Columns are the grid dimensions the plan was computed for.
	Rows       int         `json:"rows"`
	Columns    int         `json:"columns"`
	Directives []Directive `json:"directives"`
}

// Rules returns the conditional rules in plan order.
func (p Plan) Rules() []ConditionalRule {
	var rules []ConditionalRule
	for _, d := range p.Directives {
		if d.Kind == KindConditional && d.Rule != nil {
			rules = append(rules, *d.Rule)
		}
	}
	return rules
}

// Regions returns the regions of the given kind in plan order.
func (p Plan) Regions(kind DirectiveKind) []FormatRegion {
	var regions []FormatRegion
	for _, d := range p.Directives {
		if d.Kind == kind && d.Region != nil {
			regions = append(regions, *d.Region)
		}
	}
	return regions
}

// Widths returns the column widths in plan order.
func (p Plan) Widths() []ColumnWidth {
	var widths []ColumnWidth
	for _, d := range p.Directives {
		if d.Kind == KindColumnWidth && d.Width != nil {
			widths = append(widths, *d.Width)
		}
	}
	return widths
}
