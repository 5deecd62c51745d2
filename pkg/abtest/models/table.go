package models

import (
	"fmt"
	"strconv"
)

// NotApplicable replaces derived values that are undefined or non-finite.
const NotApplicable = "N/A"

// TransformedTable is a results table projected onto a ColumnSchema.
type TransformedTable struct {
	// Schema is the resolved column schema.
	Schema ColumnSchema `json:"schema"`
	// Rows holds one value per schema column for each data row.
	Rows [][]any `json:"rows"`
}

// Header returns the header labels.
func (t TransformedTable) Header() []string {
	return t.Schema.Names()
}

// Len returns the number of data rows.
func (t TransformedTable) Len() int {
	return len(t.Rows)
}

// Values returns the header followed by the data rows, ready to be written.
func (t TransformedTable) Values() [][]any {
	out := make([][]any, 0, len(t.Rows)+1)
	header := make([]any, len(t.Schema))
	for i, name := range t.Header() {
		header[i] = name
	}
	out = append(out, header)
	return append(out, t.Rows...)
}

// Column returns the values of column i across all data rows.
func (t TransformedTable) Column(i int) []any {
	col := make([]any, len(t.Rows))
	for r, row := range t.Rows {
		if i < len(row) {
			col[r] = row[i]
		}
	}
	return col
}

// FormatValue renders a cell value as plain text.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
