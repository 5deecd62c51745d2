// Package models defines data structures for experiment summary rendering.
package models

// Source column names of an experiment results export.
const (
	FieldMetric         = "metric_alias"
	FieldTreatment      = "treatment_variant_name"
	FieldDimension      = "dimension_name"
	FieldDimensionValue = "dimension_value"
	FieldControlMean    = "control_variant_mean"
	FieldTreatmentMean  = "treatment_variant_mean"
	FieldPValue         = "p_value"
	FieldATE            = "ate"
	FieldATELower       = "ate_ci_lower"
	FieldATEUpper       = "ate_ci_upper"
	FieldAnalysisType   = "analysis_type"
	FieldAlpha          = "alpha"
	FieldLift           = "%_lift"
	FieldLiftLower      = "%_ci_lower"
	FieldLiftUpper      = "%_ci_upper"
)

// ResultRow represents one metric/variant/dimension-split result.
type ResultRow struct {
	// Metric is the metric alias.
	Metric string `json:"metric_alias" db:"metric_alias"`
	// Treatment is the treatment variant name.
	Treatment string `json:"treatment_variant_name" db:"treatment_variant_name"`
	// Dimension is the dimension the row is split on.
	Dimension string `json:"dimension_name" db:"dimension_name"`
	// DimensionValue is the value of the split dimension.
	DimensionValue string `json:"dimension_value" db:"dimension_value"`
	// ControlMean is the control variant mean.
	ControlMean float64 `json:"control_variant_mean" db:"control_variant_mean"`
	// TreatmentMean is the treatment variant mean.
	TreatmentMean float64 `json:"treatment_variant_mean" db:"treatment_variant_mean"`
	// PValue is the p-value of the effect (0..1).
	PValue float64 `json:"p_value" db:"p_value"`
	// ATE is the average treatment effect.
	ATE float64 `json:"ate" db:"ate"`
	// ATELower is the lower bound of the ATE confidence interval.
	ATELower float64 `json:"ate_ci_lower" db:"ate_ci_lower"`
	// ATEUpper is the upper bound of the ATE confidence interval.
	ATEUpper float64 `json:"ate_ci_upper" db:"ate_ci_upper"`
	// AnalysisType is the analysis label (e.g., frequentist).
	AnalysisType string `json:"analysis_type" db:"analysis_type"`
	// Alpha is the significance threshold.
	Alpha float64 `json:"alpha" db:"alpha"`
}

// ResultTable is a column-oriented results table.
// Column order and row order are both preserved.
type ResultTable struct {
	// Columns lists column names in insertion order.
	Columns []string `json:"columns"`
	// Data maps column name to its values, one per row.
	Data map[string][]any `json:"data"`
}

// NewResultTable builds a ResultTable from typed rows.
func NewResultTable(rows []ResultRow) ResultTable {
	cols := map[string][]any{}
	for _, r := range rows {
		cols[FieldMetric] = append(cols[FieldMetric], r.Metric)
		cols[FieldTreatment] = append(cols[FieldTreatment], r.Treatment)
		cols[FieldDimension] = append(cols[FieldDimension], r.Dimension)
		cols[FieldDimensionValue] = append(cols[FieldDimensionValue], r.DimensionValue)
		cols[FieldControlMean] = append(cols[FieldControlMean], r.ControlMean)
		cols[FieldTreatmentMean] = append(cols[FieldTreatmentMean], r.TreatmentMean)
		cols[FieldPValue] = append(cols[FieldPValue], r.PValue)
		cols[FieldATE] = append(cols[FieldATE], r.ATE)
		cols[FieldATELower] = append(cols[FieldATELower], r.ATELower)
		cols[FieldATEUpper] = append(cols[FieldATEUpper], r.ATEUpper)
		cols[FieldAnalysisType] = append(cols[FieldAnalysisType], r.AnalysisType)
		cols[FieldAlpha] = append(cols[FieldAlpha], r.Alpha)
	}

	var t ResultTable
	for _, name := range []string{
		FieldMetric, FieldTreatment, FieldDimension, FieldDimensionValue,
		FieldControlMean, FieldTreatmentMean, FieldPValue,
		FieldATE, FieldATELower, FieldATEUpper,
		FieldAnalysisType, FieldAlpha,
	} {
		t.Set(name, cols[name])
	}
	return t
}

// Set stores the values of a column, appending the column name if it is new.
func (t *ResultTable) Set(name string, values []any) {
	if t.Data == nil {
		t.Data = make(map[string][]any)
	}
	if _, ok := t.Data[name]; !ok {
		t.Columns = append(t.Columns, name)
	}
	t.Data[name] = values
}

// Has reports whether the table has the named column.
func (t ResultTable) Has(name string) bool {
	_, ok := t.Data[name]
	return ok
}

// Len returns the number of rows (the length of the longest column).
func (t ResultTable) Len() int {
	n := 0
	for _, values := range t.Data {
		if len(values) > n {
			n = len(values)
		}
	}
	return n
}

// Value returns the value at row i of the named column, or nil when absent.
func (t ResultTable) Value(name string, i int) any {
	values := t.Data[name]
	if i < 0 || i >= len(values) {
		return nil
	}
	return values[i]
}
