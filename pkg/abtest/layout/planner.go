package layout

import "github.com/ukaji3/abtest-summary-go/pkg/abtest/models"

const (
	borderSolid    = "SOLID"
	numberPattern  = "#,##0.00"
	percentPattern = "0.00%"
)

// Planner derives the formatting plan of a summary sheet. A Planner holds no
// per-call state and may be reused.
type Planner struct {
	layout  Layout
	palette Palette
	padding int
}

// NewPlanner creates a Planner for the given layout and palette.
func NewPlanner(l Layout, p Palette) *Planner {
	return &Planner{layout: l, palette: p, padding: DefaultPadding}
}

// Layout returns the planner's layout.
func (p *Planner) Layout() Layout {
	return p.layout
}

// Plan returns the ordered directives for t. Every region boundary is derived
// from the column roles of t.Schema and the layout's header row.
func (p *Planner) Plan(t models.TransformedTable, alpha float64) models.Plan {
	cols := len(t.Schema)
	n := t.Len()
	rows := p.layout.GridRows(n)
	b := &builder{plan: models.Plan{Rows: rows, Columns: cols}}

	grid := models.GridRange{StartRow: 0, EndRow: rows, StartCol: 0, EndCol: cols}
	headerRow := p.layout.HeaderRow

	b.style(grid, &models.CellStyle{FontFamily: p.palette.FontFamily}, models.FieldFontFamily)
	b.border(grid, models.BorderStyle{Style: borderSolid, Color: p.palette.White})

	if p.layout.Preamble {
		p.planPreamble(b, cols)
	}
	p.planHeader(b, t.Schema)
	p.planStripes(b, n, cols)
	p.planHighlights(b, t.Schema, n, alpha)
	p.planAlignment(b, t.Schema, headerRow, rows)
	p.planNumberFormats(b, t.Schema, headerRow, rows)

	for _, w := range EstimateWidths(t, valueColumnsHeaderOnly, p.padding) {
		b.width(w)
	}
	if p.layout.Filter {
		b.filter(models.GridRange{StartRow: headerRow, EndRow: rows, StartCol: 0, EndCol: cols})
	}
	return b.plan
}

// planPreamble styles the two-column "Test Configurations" block.
func (p *Planner) planPreamble(b *builder, cols int) {
	width := min(2, cols)
	title := models.GridRange{StartRow: 0, EndRow: 1, StartCol: 0, EndCol: width}
	b.style(title, &models.CellStyle{
		Background: &p.palette.Header,
		TextColor:  &p.palette.HeaderText,
		FontFamily: p.palette.FontFamily,
		Bold:       true,
	}, models.FieldBackground, models.FieldTextFormat, models.FieldAlignment)
	b.border(title, models.BorderStyle{Style: borderSolid, Color: p.palette.Header})

	values := models.GridRange{StartRow: 1, EndRow: 3, StartCol: 1, EndCol: width}
	b.style(values, &models.CellStyle{Align: models.AlignCenter}, models.FieldAlignment)
}

// planHeader paints the header row, then the accent over the value block.
func (p *Planner) planHeader(b *builder, schema models.ColumnSchema) {
	row := p.layout.HeaderRow
	header := models.GridRange{StartRow: row, EndRow: row + 1, StartCol: 0, EndCol: len(schema)}

	b.border(header, models.BorderStyle{Style: borderSolid, Color: p.palette.Header})
	b.style(header, p.headerStyle(p.palette.Header), models.FieldBackground, models.FieldTextFormat, models.FieldAlignment)

	for _, span := range schema.Runs(models.RoleMean, models.RolePValue, models.RoleEffect, models.RoleLift) {
		accent := models.GridRange{StartRow: row, EndRow: row + 1, StartCol: span.Start, EndCol: span.End}
		b.style(accent, p.headerStyle(p.palette.Accent), models.FieldBackground, models.FieldTextFormat, models.FieldAlignment)
		b.border(accent, models.BorderStyle{Style: borderSolid, Width: 1, Color: p.palette.Accent})
	}
}

func (p *Planner) headerStyle(background models.Color) *models.CellStyle {
	return &models.CellStyle{
		Background: &background,
		TextColor:  &p.palette.HeaderText,
		FontFamily: p.palette.FontFamily,
		Bold:       true,
		Align:      models.AlignCenter,
	}
}

// planStripes alternates data row fills, starting with Stripe.
func (p *Planner) planStripes(b *builder, n, cols int) {
	first := p.layout.FirstDataRow()
	for i := 0; i < n; i++ {
		fill := p.palette.White
		if i%2 == 0 {
			fill = p.palette.Stripe
		}
		b.style(models.GridRange{StartRow: first + i, EndRow: first + i + 1, StartCol: 0, EndCol: cols},
			&models.CellStyle{Background: &fill}, models.FieldBackground)
	}
}

// planHighlights adds sign rules over the effect and lift block and the
// significance bands over the p-value column: p < alpha is positive,
// alpha <= p <= 2*alpha is neutral and p > 2*alpha is negative.
func (p *Planner) planHighlights(b *builder, schema models.ColumnSchema, n int, alpha float64) {
	if n == 0 {
		return
	}
	first := p.layout.FirstDataRow()
	last := first + n

	for _, span := range schema.Runs(models.RoleEffect, models.RoleLift) {
		r := models.GridRange{StartRow: first, EndRow: last, StartCol: span.Start, EndCol: span.End}
		b.rule(models.ConditionalRule{Range: r, Condition: models.Condition{Op: models.OpGreater, Values: []float64{0}}, Background: p.palette.Positive})
		b.rule(models.ConditionalRule{Range: r, Condition: models.Condition{Op: models.OpLess, Values: []float64{0}}, Background: p.palette.Negative})
	}

	for _, span := range schema.Runs(models.RolePValue) {
		r := models.GridRange{StartRow: first, EndRow: last, StartCol: span.Start, EndCol: span.End}
		for _, rule := range SignificanceRules(r, alpha, p.palette) {
			b.rule(rule)
		}
	}
}

// SignificanceRules returns the three p-value bands over r. The bands
// partition the value domain: the neutral band is closed at both ends.
func SignificanceRules(r models.GridRange, alpha float64, palette Palette) []models.ConditionalRule {
	return []models.ConditionalRule{
		{Range: r, Condition: models.Condition{Op: models.OpGreater, Values: []float64{2 * alpha}}, Background: palette.Negative, Formula: true},
		{Range: r, Condition: models.Condition{Op: models.OpLess, Values: []float64{alpha}}, Background: palette.Positive, Formula: true},
		{Range: r, Condition: models.Condition{Op: models.OpBetween, Values: []float64{alpha, 2 * alpha}}, Background: palette.Neutral, Formula: true},
	}
}

// planAlignment centers every non-label column and left-aligns labels, from
// the header row down.
func (p *Planner) planAlignment(b *builder, schema models.ColumnSchema, from, to int) {
	center := schema.Runs(models.RoleConfig, models.RoleMean, models.RolePValue, models.RoleEffect, models.RoleLift)
	for _, span := range center {
		b.style(models.GridRange{StartRow: from, EndRow: to, StartCol: span.Start, EndCol: span.End},
			&models.CellStyle{Align: models.AlignCenter}, models.FieldAlignment)
	}
	for _, span := range schema.Runs(models.RoleLabel) {
		b.style(models.GridRange{StartRow: from, EndRow: to, StartCol: span.Start, EndCol: span.End},
			&models.CellStyle{Align: models.AlignLeft}, models.FieldAlignment)
	}
}

func (p *Planner) planNumberFormats(b *builder, schema models.ColumnSchema, from, to int) {
	formats := []struct {
		format models.NumberFormat
		roles  []models.Role
	}{
		{models.NumberFormat{Type: "NUMBER", Pattern: numberPattern}, []models.Role{models.RoleMean, models.RolePValue, models.RoleEffect}},
		{models.NumberFormat{Type: "PERCENT", Pattern: percentPattern}, []models.Role{models.RoleLift}},
	}
	for _, f := range formats {
		for _, span := range schema.Runs(f.roles...) {
			nf := f.format
			b.style(models.GridRange{StartRow: from, EndRow: to, StartCol: span.Start, EndCol: span.End},
				&models.CellStyle{NumberFormat: &nf, Align: models.AlignCenter},
				models.FieldNumberFormat, models.FieldAlignment)
		}
	}
}

// builder appends directives, skipping empty ranges.
type builder struct {
	plan models.Plan
}

func (b *builder) style(r models.GridRange, s *models.CellStyle, fields ...models.StyleField) {
	if r.Empty() {
		return
	}
	b.plan.Directives = append(b.plan.Directives, models.Directive{
		Kind:   models.KindFormat,
		Region: &models.FormatRegion{Range: r, Style: s, Fields: fields},
	})
}

func (b *builder) border(r models.GridRange, s models.BorderStyle) {
	if r.Empty() {
		return
	}
	b.plan.Directives = append(b.plan.Directives, models.Directive{
		Kind:   models.KindBorders,
		Region: &models.FormatRegion{Range: r, Border: &s},
	})
}

func (b *builder) rule(r models.ConditionalRule) {
	if r.Range.Empty() {
		return
	}
	b.plan.Directives = append(b.plan.Directives, models.Directive{Kind: models.KindConditional, Rule: &r})
}

func (b *builder) width(w models.ColumnWidth) {
	b.plan.Directives = append(b.plan.Directives, models.Directive{Kind: models.KindColumnWidth, Width: &w})
}

func (b *builder) filter(r models.GridRange) {
	if r.Empty() {
		return
	}
	b.plan.Directives = append(b.plan.Directives, models.Directive{Kind: models.KindBasicFilter, Filter: &r})
}
