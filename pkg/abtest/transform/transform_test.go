package transform

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/abtest-summary-go/pkg/abtest/models"
)

func scenarioTable() models.ResultTable {
	return models.NewResultTable([]models.ResultRow{
		{
			Metric: "signup_rate", Treatment: "treatment_1", Dimension: "__total_dimension", DimensionValue: "total",
			ControlMean: 0.10, TreatmentMean: 0.12, PValue: 0.01,
			ATE: 0.02, ATELower: 0.01, ATEUpper: 0.03,
			AnalysisType: "frequentist", Alpha: 0.05,
		},
		{
			Metric: "revenue", Treatment: "treatment_1", Dimension: "country", DimensionValue: "IT",
			ControlMean: 50.0, TreatmentMean: 45.0, PValue: 0.20,
			ATE: -5.0, ATELower: -10.0, ATEUpper: 1.0,
			AnalysisType: "frequentist", Alpha: 0.05,
		},
	})
}

func column(t *testing.T, tt models.TransformedTable, source string) []any {
	t.Helper()
	idx := tt.Schema.Index(source)
	require.GreaterOrEqual(t, idx, 0, "column %s not in schema", source)
	return tt.Column(idx)
}

func TestTransform_Scenario(t *testing.T) {
	out, alpha, analysisType, err := Transform(scenarioTable(), nil, models.PreambleSchema())
	require.NoError(t, err)

	assert.Equal(t, 0.05, alpha)
	assert.Equal(t, "FREQUENTIST", analysisType)
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, []string{
		"Metric", "Treatment", "Split", "Split Value",
		"Control Mean", "Treatment Mean", "P-Value",
		"ATE", "ATE Lower", "ATE Upper",
		"%Lift", "%Lift Lower", "%Lift Upper",
	}, out.Header())

	lift := column(t, out, models.FieldLift)
	assert.InDelta(t, 0.2, lift[0], 1e-12)
	assert.InDelta(t, -0.1, lift[1], 1e-12)

	lower := column(t, out, models.FieldLiftLower)
	assert.InDelta(t, 0.1, lower[0], 1e-12)
	assert.InDelta(t, -0.2, lower[1], 1e-12)

	assert.Equal(t, []any{"signup_rate", "revenue"}, column(t, out, models.FieldMetric))
	assert.Equal(t, []any{0.01, 0.20}, column(t, out, models.FieldPValue))
}

func TestTransform_LiftMatchesRatio(t *testing.T) {
	table := scenarioTable()
	out, _, _, err := Transform(table, nil, models.PreambleSchema())
	require.NoError(t, err)

	lift := column(t, out, models.FieldLift)
	for i := 0; i < table.Len(); i++ {
		ate := table.Value(models.FieldATE, i).(float64)
		mean := table.Value(models.FieldControlMean, i).(float64)
		assert.InDelta(t, ate/mean, lift[i], 1e-12)
	}
}

func TestTransform_ZeroControlMeanYieldsSentinel(t *testing.T) {
	table := models.NewResultTable([]models.ResultRow{{
		Metric: "clicks", Treatment: "b", Dimension: "__total_dimension", DimensionValue: "total",
		ControlMean: 0, TreatmentMean: 3, PValue: 0.5,
		ATE: 3, ATELower: -1, ATEUpper: 7,
		AnalysisType: "frequentist", Alpha: 0.1,
	}})

	out, _, _, err := Transform(table, nil, models.PreambleSchema())
	require.NoError(t, err)

	for _, field := range []string{models.FieldLift, models.FieldLiftLower, models.FieldLiftUpper} {
		assert.Equal(t, models.NotApplicable, column(t, out, field)[0], field)
	}
	for _, v := range out.Rows[0] {
		if f, ok := v.(float64); ok {
			assert.False(t, math.IsInf(f, 0) || math.IsNaN(f))
		}
	}
}

func TestTransform_NonFiniteValuesYieldSentinel(t *testing.T) {
	table := scenarioTable()
	table.Data[models.FieldATE] = []any{math.Inf(1), math.NaN()}

	out, _, _, err := Transform(table, nil, models.PreambleSchema())
	require.NoError(t, err)

	assert.Equal(t, []any{models.NotApplicable, models.NotApplicable}, column(t, out, models.FieldATE))
	assert.Equal(t, []any{models.NotApplicable, models.NotApplicable}, column(t, out, models.FieldLift))
}

func TestTransform_VariantMapping(t *testing.T) {
	table := scenarioTable()
	table.Data[models.FieldTreatment] = []any{"treatment_1", "treatment_2"}

	out, _, _, err := Transform(table, map[string]string{
		"treatment_1": "Bigger Button",
		"unknown":     "Ignored",
		"treatment_2": "",
	}, models.PreambleSchema())
	require.NoError(t, err)

	assert.Equal(t, []any{"Bigger Button", "treatment_2"}, column(t, out, models.FieldTreatment))
}

func TestTransform_RelabelsTotals(t *testing.T) {
	table := scenarioTable()
	table.Data[models.FieldDimension] = []any{"__total_dimension", "total"}
	table.Data[models.FieldDimensionValue] = []any{"total", "__total_dimension"}

	out, _, _, err := Transform(table, nil, models.PreambleSchema())
	require.NoError(t, err)

	assert.Equal(t, []any{"TOTAL", "TOTAL"}, column(t, out, models.FieldDimension))
	assert.Equal(t, []any{"TOTAL", "TOTAL"}, column(t, out, models.FieldDimensionValue))
}

func TestRelabel_Idempotent(t *testing.T) {
	for _, v := range []any{"__total_dimension", "total", "TOTAL", "Total", "country", nil, 3.5} {
		once := Relabel(v)
		assert.Equal(t, once, Relabel(once), "value %v", v)
	}
}

func TestTransform_DropsUnknownColumnsAndKeepsInput(t *testing.T) {
	table := scenarioTable()
	table.Set("experiment_id", []any{"exp-1", "exp-1"})
	before := append([]any(nil), table.Data[models.FieldDimension]...)

	out, _, _, err := Transform(table, nil, models.PreambleSchema())
	require.NoError(t, err)

	assert.Equal(t, -1, out.Schema.Index("experiment_id"))
	assert.Len(t, out.Rows[0], 13)
	assert.Equal(t, before, table.Data[models.FieldDimension])
}

func TestTransform_InlineSchema(t *testing.T) {
	out, _, _, err := Transform(scenarioTable(), nil, models.InlineSchema())
	require.NoError(t, err)

	assert.Len(t, out.Header(), 15)
	assert.Equal(t, []any{"FREQUENTIST", "FREQUENTIST"}, column(t, out, models.FieldAnalysisType))
	assert.Equal(t, []any{0.05, 0.05}, column(t, out, models.FieldAlpha))
}

func TestTransform_ConfigurationErrors(t *testing.T) {
	missingMean := scenarioTable()
	delete(missingMean.Data, models.FieldControlMean)

	nilMetric := scenarioTable()
	nilMetric.Data[models.FieldMetric] = []any{"signup_rate", nil}

	badAlpha := scenarioTable()
	badAlpha.Data[models.FieldAlpha] = []any{1.5, 1.5}

	tests := []struct {
		name  string
		table models.ResultTable
		field string
		want  error
	}{
		{"empty", models.NewResultTable(nil), "", ErrEmptyTable},
		{"missing control mean", missingMean, models.FieldControlMean, ErrMissingField},
		{"nil metric", nilMetric, models.FieldMetric, ErrMissingField},
		{"alpha out of range", badAlpha, models.FieldAlpha, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := Transform(tt.table, nil, models.PreambleSchema())
			require.Error(t, err)

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestTransform_VariantMappingNumericNames(t *testing.T) {
	table := scenarioTable()
	table.Data[models.FieldTreatment] = []any{int64(2), 3.5}

	out, _, _, err := Transform(table, map[string]string{"2": "B", "3.5": "C"}, models.PreambleSchema())
	require.NoError(t, err)

	assert.Equal(t, []any{"B", "C"}, column(t, out, models.FieldTreatment))
}

func TestTransform_InvalidSchema(t *testing.T) {
	metric := models.Column{Source: models.FieldMetric, Name: "Metric", Role: models.RoleLabel}
	control := models.Column{Source: models.FieldControlMean, Name: "Control Mean", Role: models.RoleMean}
	pValue := models.Column{Source: models.FieldPValue, Name: "P-Value", Role: models.RolePValue}
	ate := models.Column{Source: models.FieldATE, Name: "ATE", Role: models.RoleEffect}
	alpha := models.Column{Source: models.FieldAlpha, Name: "Alpha", Role: models.RoleConfig}

	tests := []struct {
		name   string
		schema models.ColumnSchema
	}{
		{"empty", models.ColumnSchema{}},
		{"two p-values", models.ColumnSchema{metric, pValue, {Source: "p2", Name: "P2", Role: models.RolePValue}}},
		{"no p-value", models.ColumnSchema{metric, control, ate}},
		{"no labels", models.ColumnSchema{control, pValue, ate}},
		{"label after value", models.ColumnSchema{ate, metric, control, pValue}},
		{"split label block", models.ColumnSchema{metric, alpha, {Source: models.FieldTreatment, Name: "Treatment", Role: models.RoleLabel}, pValue}},
		{"split value block", models.ColumnSchema{metric, control, alpha, pValue, ate}},
		{"duplicate source", models.ColumnSchema{metric, pValue, {Source: models.FieldPValue, Name: "P again", Role: models.RoleEffect}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := Transform(scenarioTable(), nil, tt.schema)

			var cfgErr *ConfigurationError
			assert.True(t, errors.As(err, &cfgErr), "got %v", err)
		})
	}
}

func TestColumnSchema_ValidateBuiltins(t *testing.T) {
	assert.NoError(t, models.PreambleSchema().Validate())
	assert.NoError(t, models.InlineSchema().Validate())
}

func TestRatio(t *testing.T) {
	tests := []struct {
		num, den any
		want     any
	}{
		{0.5, 0.25, 2.0},
		{int64(4), 2.0, 2.0},
		{"3", "1.5", 2.0},
		{1.0, 0.0, models.NotApplicable},
		{0.0, 0.0, models.NotApplicable},
		{nil, 1.0, models.NotApplicable},
		{1.0, nil, models.NotApplicable},
		{math.Inf(-1), 2.0, models.NotApplicable},
		{"n/a", 2.0, models.NotApplicable},
	}

	for _, tt := range tests {
		result := Ratio(tt.num, tt.den)
		if result != tt.want {
			t.Errorf("Ratio(%v, %v) = %v, expected %v", tt.num, tt.den, result, tt.want)
		}
	}
}
