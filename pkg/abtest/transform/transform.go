// Package transform turns a raw results table into the values of a summary sheet.
package transform

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ukaji3/abtest-summary-go/pkg/abtest/models"
)

// TotalLabel replaces the placeholder labels of the overall (unsplit) rows.
const TotalLabel = "TOTAL"

// totalAliases are the raw labels rewritten to TotalLabel.
var totalAliases = map[string]bool{
	"__total_dimension": true,
	"total":             true,
}

// requiredFields must be present, and non-nil on every row.
var requiredFields = []string{models.FieldMetric, models.FieldControlMean, models.FieldAlpha}

// liftFields maps each derived lift column to the effect column it divides.
var liftFields = map[string]string{
	models.FieldLift:      models.FieldATE,
	models.FieldLiftLower: models.FieldATELower,
	models.FieldLiftUpper: models.FieldATEUpper,
}

// Transform projects table onto schema. It returns the transformed table
// together with alpha and the upper-cased analysis type read from the first
// row. Unknown input columns are dropped, unmapped variant names pass through.
// The input table is not modified.
func Transform(table models.ResultTable, variantMapping map[string]string, schema models.ColumnSchema) (models.TransformedTable, float64, string, error) {
	var out models.TransformedTable
	if err := schema.Validate(); err != nil {
		return out, 0, "", configError("", -1, err)
	}

	n := table.Len()
	if n == 0 {
		return out, 0, "", configError("", -1, ErrEmptyTable)
	}
	for _, field := range requiredFields {
		if !table.Has(field) {
			return out, 0, "", configError(field, -1, ErrMissingField)
		}
		for i := 0; i < n; i++ {
			if table.Value(field, i) == nil {
				return out, 0, "", configError(field, i, ErrMissingField)
			}
		}
	}

	alpha, ok := toFloat(table.Value(models.FieldAlpha, 0))
	if !ok || !(alpha > 0 && alpha < 1) {
		return out, 0, "", configError(models.FieldAlpha, 0,
			fmt.Errorf("alpha must be a number in (0, 1), got %v", table.Value(models.FieldAlpha, 0)))
	}
	analysisType := ""
	if v := table.Value(models.FieldAnalysisType, 0); v != nil {
		analysisType = strings.ToUpper(models.FormatValue(v))
	}

	out.Schema = schema
	out.Rows = make([][]any, n)
	for i := 0; i < n; i++ {
		row := make([]any, len(schema))
		for c, col := range schema {
			row[c] = cellValue(table, col, i, alpha, analysisType, variantMapping)
		}
		out.Rows[i] = row
	}
	return out, alpha, analysisType, nil
}

func cellValue(table models.ResultTable, col models.Column, i int, alpha float64, analysisType string, variantMapping map[string]string) any {
	if col.Role == models.RoleConfig {
		switch col.Source {
		case models.FieldAlpha:
			return alpha
		case models.FieldAnalysisType:
			return analysisType
		}
	}

	var v any
	if effect, ok := liftFields[col.Source]; ok {
		v = Ratio(table.Value(effect, i), table.Value(models.FieldControlMean, i))
	} else {
		v = table.Value(col.Source, i)
	}

	switch col.Source {
	case models.FieldTreatment:
		v = renameVariant(v, variantMapping)
	case models.FieldDimension, models.FieldDimensionValue:
		v = Relabel(v)
	}
	return sanitize(v)
}

// Ratio divides num by den. A zero or missing denominator, a missing
// numerator, or a non-finite result yields models.NotApplicable.
func Ratio(num, den any) any {
	n, ok := toFloat(num)
	if !ok {
		return models.NotApplicable
	}
	d, ok := toFloat(den)
	if !ok || d == 0 {
		return models.NotApplicable
	}
	r := n / d
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return models.NotApplicable
	}
	return r
}

// Relabel rewrites the total placeholders to TotalLabel.
func Relabel(v any) any {
	if s, ok := v.(string); ok && totalAliases[s] {
		return TotalLabel
	}
	return v
}

// renameVariant looks treatment names up by their text, so a name the loader
// parsed as a number (e.g., int64(2)) still matches the key "2".
func renameVariant(v any, mapping map[string]string) any {
	if v == nil || len(mapping) == 0 {
		return v
	}
	if display, ok := mapping[models.FormatValue(v)]; ok && display != "" {
		return display
	}
	return v
}

// sanitize keeps NaN and infinities out of the sheet.
func sanitize(v any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return models.NotApplicable
		}
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return models.NotApplicable
		}
	}
	return v
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint32:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
