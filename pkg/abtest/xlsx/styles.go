package xlsx

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/abtest-summary-go/pkg/abtest/models"
)

// excelize border line styles.
const (
	lineThin   = 1
	lineMedium = 2
	lineThick  = 5
)

// cellStyle is the composite style of one cell after folding a plan. It is
// comparable so it can key the style cache.
type cellStyle struct {
	hasBackground bool
	background    models.Color
	hasTextColor  bool
	textColor     models.Color
	fontFamily    string
	bold          bool
	align         models.Alignment
	numberFormat  models.NumberFormat
	hasBorder     bool
	border        models.BorderStyle
}

func (c cellStyle) isZero() bool {
	return c == cellStyle{}
}

// merge writes the listed fields of s over c. A listed field with a zero
// value in s resets it.
func (c *cellStyle) merge(s *models.CellStyle, fields []models.StyleField) {
	for _, f := range fields {
		switch f {
		case models.FieldBackground:
			c.hasBackground = s.Background != nil
			c.background = models.Color{}
			if s.Background != nil {
				c.background = *s.Background
			}
		case models.FieldTextFormat:
			c.hasTextColor = s.TextColor != nil
			c.textColor = models.Color{}
			if s.TextColor != nil {
				c.textColor = *s.TextColor
			}
			c.fontFamily = s.FontFamily
			c.bold = s.Bold
		case models.FieldFontFamily:
			c.fontFamily = s.FontFamily
		case models.FieldAlignment:
			c.align = s.Align
		case models.FieldNumberFormat:
			c.numberFormat = models.NumberFormat{}
			if s.NumberFormat != nil {
				c.numberFormat = *s.NumberFormat
			}
		}
	}
}

func (c *cellStyle) setBorder(b models.BorderStyle) {
	c.hasBorder = true
	c.border = b
}

// excelizeStyle converts the composite style for NewStyle.
func (c cellStyle) excelizeStyle() *excelize.Style {
	style := &excelize.Style{}
	if c.hasBackground {
		style.Fill = solidFill(c.background)
	}
	if c.fontFamily != "" || c.bold || c.hasTextColor {
		font := &excelize.Font{Family: c.fontFamily, Bold: c.bold}
		if c.hasTextColor {
			font.Color = hexColor(c.textColor)
		}
		style.Font = font
	}
	if c.align != "" {
		style.Alignment = &excelize.Alignment{Horizontal: strings.ToLower(string(c.align))}
	}
	if c.numberFormat.Pattern != "" {
		pattern := c.numberFormat.Pattern
		style.CustomNumFmt = &pattern
	}
	if c.hasBorder {
		line := lineStyle(c.border)
		for _, side := range []string{"left", "right", "top", "bottom"} {
			style.Border = append(style.Border, excelize.Border{Type: side, Color: hexColor(c.border.Color), Style: line})
		}
	}
	return style
}

func lineStyle(b models.BorderStyle) int {
	switch {
	case b.Width >= 3:
		return lineThick
	case b.Width == 2:
		return lineMedium
	}
	return lineThin
}

func solidFill(c models.Color) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hexColor(c)}}
}

func hexColor(c models.Color) string {
	return "#" + c.Hex()
}

// conditionalOptions maps a rule onto an excelize conditional format. Every
// rule is written as a formula: a cell-value rule would also fire on text
// cells such as the N/A sentinel.
func conditionalOptions(rule models.ConditionalRule, format int) (excelize.ConditionalFormatOptions, error) {
	opts := excelize.ConditionalFormatOptions{Type: "formula", Format: &format}
	anchor, err := excelize.CoordinatesToCellName(rule.Range.StartCol+1, rule.Range.StartRow+1)
	if err != nil {
		return opts, err
	}
	formula := rule.Condition.Formula(anchor)
	if formula == "" {
		return opts, errInvalidCondition(rule)
	}
	opts.Criteria = strings.TrimPrefix(formula, "=")
	return opts, nil
}

// rangeRef renders a half-open grid range as an A1 range, e.g. "A5:M7".
func rangeRef(r models.GridRange) (string, error) {
	tl, err := excelize.CoordinatesToCellName(r.StartCol+1, r.StartRow+1)
	if err != nil {
		return "", err
	}
	br, err := excelize.CoordinatesToCellName(r.EndCol, r.EndRow)
	if err != nil {
		return "", err
	}
	return tl + ":" + br, nil
}

// columnWidth converts a pixel width to Excel character units.
func columnWidth(pixels int) float64 {
	if pixels <= 5 {
		return 0
	}
	return float64(pixels-5) / 7
}
