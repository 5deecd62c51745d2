// Package gsheets applies summary sheets through the Google Sheets v4 API.
package gsheets

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"google.golang.org/api/sheets/v4"

	"github.com/ukaji3/abtest-summary-go/pkg/abtest/models"
)

const (
	customFormula = "CUSTOM_FORMULA"
	formatPrefix  = "userEnteredFormat"
)

// AddSheetRequest creates a sheet with a grid of rows x cols.
func AddSheetRequest(title string, rows, cols int) *sheets.Request {
	return &sheets.Request{
		AddSheet: &sheets.AddSheetRequest{
			Properties: &sheets.SheetProperties{
				Title: title,
				GridProperties: &sheets.GridProperties{
					RowCount:    int64(rows),
					ColumnCount: int64(cols),
				},
			},
		},
	}
}

// Requests serializes plan into batchUpdate requests bound to sheetID, in
// plan order.
func Requests(plan models.Plan, sheetID int64) ([]*sheets.Request, error) {
	reqs := make([]*sheets.Request, 0, len(plan.Directives))
	for i, d := range plan.Directives {
		req, err := request(d, sheetID)
		if err != nil {
			return nil, fmt.Errorf("directive %d (%s): %w", i, d.Kind, err)
		}
		if req != nil {
			reqs = append(reqs, req)
		}
	}
	return reqs, nil
}

// BatchUpdate wraps Requests in a batchUpdate body.
func BatchUpdate(plan models.Plan, sheetID int64) (*sheets.BatchUpdateSpreadsheetRequest, error) {
	reqs, err := Requests(plan, sheetID)
	if err != nil {
		return nil, err
	}
	return &sheets.BatchUpdateSpreadsheetRequest{Requests: reqs}, nil
}

func request(d models.Directive, sheetID int64) (*sheets.Request, error) {
	switch d.Kind {
	case models.KindFormat:
		if d.Region == nil || d.Region.Style == nil {
			return nil, nil
		}
		return &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range:  gridRange(d.Region.Range, sheetID),
				Cell:   &sheets.CellData{UserEnteredFormat: cellFormat(d.Region.Style)},
				Fields: FieldMask(d.Region.Fields),
			},
		}, nil

	case models.KindBorders:
		if d.Region == nil || d.Region.Border == nil {
			return nil, nil
		}
		b := border(*d.Region.Border)
		return &sheets.Request{
			UpdateBorders: &sheets.UpdateBordersRequest{
				Range:           gridRange(d.Region.Range, sheetID),
				Top:             b,
				Bottom:          b,
				Left:            b,
				Right:           b,
				InnerHorizontal: b,
				InnerVertical:   b,
			},
		}, nil

	case models.KindConditional:
		if d.Rule == nil {
			return nil, nil
		}
		cond, err := booleanCondition(*d.Rule)
		if err != nil {
			return nil, err
		}
		return &sheets.Request{
			AddConditionalFormatRule: &sheets.AddConditionalFormatRuleRequest{
				Index: 0,
				Rule: &sheets.ConditionalFormatRule{
					Ranges: []*sheets.GridRange{gridRange(d.Rule.Range, sheetID)},
					BooleanRule: &sheets.BooleanRule{
						Condition: cond,
						Format:    &sheets.CellFormat{BackgroundColor: color(d.Rule.Background)},
					},
				},
				ForceSendFields: []string{"Index"},
			},
		}, nil

	case models.KindColumnWidth:
		if d.Width == nil {
			return nil, nil
		}
		return &sheets.Request{
			UpdateDimensionProperties: &sheets.UpdateDimensionPropertiesRequest{
				Range: &sheets.DimensionRange{
					SheetId:         sheetID,
					Dimension:       "COLUMNS",
					StartIndex:      int64(d.Width.Column),
					EndIndex:        int64(d.Width.Column + 1),
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
				Properties: &sheets.DimensionProperties{PixelSize: int64(d.Width.Pixels)},
				Fields:     "pixelSize",
			},
		}, nil

	case models.KindBasicFilter:
		if d.Filter == nil {
			return nil, nil
		}
		return &sheets.Request{
			SetBasicFilter: &sheets.SetBasicFilterRequest{
				Filter: &sheets.BasicFilter{Range: gridRange(*d.Filter, sheetID)},
			},
		}, nil
	}
	return nil, fmt.Errorf("unsupported directive kind %q", d.Kind)
}

// FieldMask renders the update mask of a format region, e.g.
// "userEnteredFormat.backgroundColor" or
// "userEnteredFormat(backgroundColor,textFormat)".
func FieldMask(fields []models.StyleField) string {
	switch len(fields) {
	case 0:
		return formatPrefix
	case 1:
		return formatPrefix + "." + string(fields[0])
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return formatPrefix + "(" + strings.Join(names, ",") + ")"
}

func booleanCondition(rule models.ConditionalRule) (*sheets.BooleanCondition, error) {
	if rule.Formula {
		anchor, err := excelize.CoordinatesToCellName(rule.Range.StartCol+1, rule.Range.StartRow+1)
		if err != nil {
			return nil, err
		}
		formula := rule.Condition.Formula(anchor)
		if formula == "" {
			return nil, fmt.Errorf("invalid condition %s %v", rule.Condition.Op, rule.Condition.Values)
		}
		return &sheets.BooleanCondition{
			Type:   customFormula,
			Values: []*sheets.ConditionValue{{UserEnteredValue: formula}},
		}, nil
	}
	values := make([]*sheets.ConditionValue, len(rule.Condition.Values))
	for i, v := range rule.Condition.Values {
		values[i] = &sheets.ConditionValue{UserEnteredValue: models.FormatNumber(v)}
	}
	return &sheets.BooleanCondition{Type: string(rule.Condition.Op), Values: values}, nil
}

func gridRange(r models.GridRange, sheetID int64) *sheets.GridRange {
	return &sheets.GridRange{
		SheetId:          sheetID,
		StartRowIndex:    int64(r.StartRow),
		EndRowIndex:      int64(r.EndRow),
		StartColumnIndex: int64(r.StartCol),
		EndColumnIndex:   int64(r.EndCol),
		ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
	}
}

func cellFormat(s *models.CellStyle) *sheets.CellFormat {
	f := &sheets.CellFormat{HorizontalAlignment: string(s.Align)}
	if s.Background != nil {
		f.BackgroundColor = color(*s.Background)
	}
	if s.TextColor != nil || s.FontFamily != "" || s.Bold {
		tf := &sheets.TextFormat{FontFamily: s.FontFamily, Bold: s.Bold}
		if s.TextColor != nil {
			tf.ForegroundColor = color(*s.TextColor)
		}
		f.TextFormat = tf
	}
	if s.NumberFormat != nil {
		f.NumberFormat = &sheets.NumberFormat{Type: s.NumberFormat.Type, Pattern: s.NumberFormat.Pattern}
	}
	return f
}

func border(b models.BorderStyle) *sheets.Border {
	return &sheets.Border{Style: b.Style, Width: int64(b.Width), Color: color(b.Color)}
}

func color(c models.Color) *sheets.Color {
	return &sheets.Color{Red: c.Red, Green: c.Green, Blue: c.Blue}
}
