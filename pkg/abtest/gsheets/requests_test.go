package gsheets

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/abtest-summary-go/pkg/abtest/layout"
	"github.com/ukaji3/abtest-summary-go/pkg/abtest/models"
)

func scenarioPlan(t *testing.T, n int) models.Plan {
	t.Helper()
	l, err := layout.Resolve(layout.VariantPreamble)
	require.NoError(t, err)
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = make([]any, len(l.Schema))
		for j := range rows[i] {
			rows[i][j] = 0.01
		}
	}
	return layout.NewPlanner(l, layout.DefaultPalette()).Plan(models.TransformedTable{Schema: l.Schema, Rows: rows}, 0.05)
}

func TestFieldMask(t *testing.T) {
	tests := []struct {
		fields   []models.StyleField
		expected string
	}{
		{nil, "userEnteredFormat"},
		{[]models.StyleField{models.FieldBackground}, "userEnteredFormat.backgroundColor"},
		{[]models.StyleField{models.FieldFontFamily}, "userEnteredFormat.textFormat.fontFamily"},
		{
			[]models.StyleField{models.FieldBackground, models.FieldTextFormat, models.FieldAlignment},
			"userEnteredFormat(backgroundColor,textFormat,horizontalAlignment)",
		},
	}

	for _, tt := range tests {
		result := FieldMask(tt.fields)
		if result != tt.expected {
			t.Errorf("FieldMask(%v) = %q, expected %q", tt.fields, result, tt.expected)
		}
	}
}

func TestRequests_OneRequestPerDirective(t *testing.T) {
	plan := scenarioPlan(t, 2)
	reqs, err := Requests(plan, 42)
	require.NoError(t, err)
	require.Len(t, reqs, len(plan.Directives))

	for i, d := range plan.Directives {
		req := reqs[i]
		switch d.Kind {
		case models.KindFormat:
			require.NotNil(t, req.RepeatCell, "request %d", i)
			assert.Equal(t, int64(42), req.RepeatCell.Range.SheetId)
		case models.KindBorders:
			require.NotNil(t, req.UpdateBorders, "request %d", i)
		case models.KindConditional:
			require.NotNil(t, req.AddConditionalFormatRule, "request %d", i)
		case models.KindColumnWidth:
			require.NotNil(t, req.UpdateDimensionProperties, "request %d", i)
			assert.Equal(t, "COLUMNS", req.UpdateDimensionProperties.Range.Dimension)
		case models.KindBasicFilter:
			require.NotNil(t, req.SetBasicFilter, "request %d", i)
		}
	}
}

func TestRequests_PValueFormulas(t *testing.T) {
	reqs, err := Requests(scenarioPlan(t, 2), 7)
	require.NoError(t, err)

	var formulas []string
	for _, req := range reqs {
		rule := req.AddConditionalFormatRule
		if rule == nil {
			continue
		}
		cond := rule.Rule.BooleanRule.Condition
		if cond.Type == customFormula {
			formulas = append(formulas, cond.Values[0].UserEnteredValue)
		} else {
			assert.Equal(t, "0", cond.Values[0].UserEnteredValue)
		}
	}
	assert.Equal(t, []string{
		"=AND(ISNUMBER(G6), G6>0.1)",
		"=AND(ISNUMBER(G6), G6<0.05)",
		"=AND(ISNUMBER(G6), G6>=0.05, G6<=0.1)",
	}, formulas)
}

func TestRequests_ZeroIndexesAreSent(t *testing.T) {
	plan := models.Plan{Rows: 3, Columns: 2, Directives: []models.Directive{
		{Kind: models.KindBasicFilter, Filter: &models.GridRange{StartRow: 0, EndRow: 3, StartCol: 0, EndCol: 2}},
		{Kind: models.KindConditional, Rule: &models.ConditionalRule{
			Range:     models.GridRange{StartRow: 1, EndRow: 3, StartCol: 0, EndCol: 1},
			Condition: models.Condition{Op: models.OpLess, Values: []float64{0}},
		}},
	}}
	body, err := BatchUpdate(plan, 0)
	require.NoError(t, err)

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	var decoded struct {
		Requests []map[string]json.RawMessage `json:"requests"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Requests, 2)

	var filter struct {
		Filter struct {
			Range map[string]any `json:"range"`
		} `json:"filter"`
	}
	require.NoError(t, json.Unmarshal(decoded.Requests[0]["setBasicFilter"], &filter))
	assert.Contains(t, filter.Filter.Range, "sheetId")
	assert.Contains(t, filter.Filter.Range, "startRowIndex")
	assert.Contains(t, filter.Filter.Range, "startColumnIndex")

	var rule map[string]any
	require.NoError(t, json.Unmarshal(decoded.Requests[1]["addConditionalFormatRule"], &rule))
	assert.Contains(t, rule, "index")
}

func TestRequests_UnknownKind(t *testing.T) {
	_, err := Requests(models.Plan{Directives: []models.Directive{{Kind: "merge"}}}, 1)
	assert.Error(t, err)
}

func TestAddSheetRequest(t *testing.T) {
	req := AddSheetRequest("exp_summary", 7, 13)
	require.NotNil(t, req.AddSheet)
	assert.Equal(t, "exp_summary", req.AddSheet.Properties.Title)
	assert.Equal(t, int64(7), req.AddSheet.Properties.GridProperties.RowCount)
	assert.Equal(t, int64(13), req.AddSheet.Properties.GridProperties.ColumnCount)
}
