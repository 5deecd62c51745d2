package layout

import (
	"unicode/utf8"

	"github.com/ukaji3/abtest-summary-go/pkg/abtest/models"
)

// PixelsPerChar is the width of one character of the sheet font in pixels.
const PixelsPerChar = 7.2

// DefaultPadding is added to every estimated column length, in characters.
const DefaultPadding = 5

// PixelSize converts a length in characters to pixels.
func PixelSize(chars int) int {
	return int(float64(chars) * PixelsPerChar)
}

// EstimateWidths sizes every column of t. A column for which headerOnly
// returns true is measured on its header label alone; other columns use the
// longest of the header and every cell's text.
func EstimateWidths(t models.TransformedTable, headerOnly func(models.Column) bool, padding int) []models.ColumnWidth {
	widths := make([]models.ColumnWidth, len(t.Schema))
	for i, col := range t.Schema {
		maxLen := utf8.RuneCountInString(col.Name)
		if headerOnly == nil || !headerOnly(col) {
			for _, row := range t.Rows {
				if i >= len(row) {
					continue
				}
				if n := utf8.RuneCountInString(models.FormatValue(row[i])); n > maxLen {
					maxLen = n
				}
			}
		}
		chars := maxLen + padding
		widths[i] = models.ColumnWidth{Column: i, Chars: chars, Pixels: PixelSize(chars)}
	}
	return widths
}

// valueColumnsHeaderOnly keeps numeric value columns as narrow as their label.
func valueColumnsHeaderOnly(c models.Column) bool {
	return c.Role.IsValue()
}
