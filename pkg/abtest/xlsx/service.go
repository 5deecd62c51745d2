// Package xlsx renders summary sheets into a local Excel workbook.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/abtest-summary-go/pkg/abtest/models"
)

// ErrSheetExists is returned when a sheet with the requested title exists.
var ErrSheetExists = errors.New("sheet already exists")

// defaultSheet is the sheet excelize creates in a new workbook.
const defaultSheet = "Sheet1"

func errInvalidCondition(rule models.ConditionalRule) error {
	return fmt.Errorf("invalid condition %s with %d values", rule.Condition.Op, len(rule.Condition.Values))
}

// Service creates and formats sheets in one workbook.
type Service struct {
	mu         sync.Mutex
	file       *excelize.File
	fresh      bool
	styles     map[cellStyle]int
	conditions map[models.Color]int
}

// NewService creates a Service over a new, empty workbook.
func NewService() *Service {
	s := newService(excelize.NewFile())
	s.fresh = true
	return s
}

// Open creates a Service over an existing workbook.
func Open(path string) (*Service, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return newService(f), nil
}

func newService(f *excelize.File) *Service {
	return &Service{
		file:       f,
		styles:     make(map[cellStyle]int),
		conditions: make(map[models.Color]int),
	}
}

// Save writes the workbook to path.
func (s *Service) Save(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// Close releases the workbook.
func (s *Service) Close() error {
	return s.file.Close()
}

// CreateSheet adds a sheet named title. The first sheet created in a new
// workbook replaces the default empty sheet. spreadsheetID is carried into
// the returned target unchanged.
func (s *Service) CreateSheet(ctx context.Context, spreadsheetID, title string, rows, cols int) (models.SheetTarget, error) {
	if err := ctx.Err(); err != nil {
		return models.SheetTarget{}, err
	}
	if rows < 1 || cols < 1 {
		return models.SheetTarget{}, fmt.Errorf("invalid grid %dx%d", rows, cols)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, err := s.file.GetSheetIndex(title); err != nil {
		return models.SheetTarget{}, err
	} else if idx >= 0 {
		return models.SheetTarget{}, fmt.Errorf("%w: %q", ErrSheetExists, title)
	}

	var idx int
	if s.fresh && len(s.file.GetSheetList()) == 1 && s.file.GetSheetName(0) == defaultSheet {
		if err := s.file.SetSheetName(defaultSheet, title); err != nil {
			return models.SheetTarget{}, err
		}
		idx, _ = s.file.GetSheetIndex(title)
	} else {
		var err error
		if idx, err = s.file.NewSheet(title); err != nil {
			return models.SheetTarget{}, err
		}
	}
	s.fresh = false
	s.file.SetActiveSheet(idx)

	zerolog.Ctx(ctx).Info().Str("title", title).Int("sheet_id", idx).Msg("sheet created")
	return models.SheetTarget{SpreadsheetID: spreadsheetID, SheetID: int64(idx), Title: title}, nil
}

// WriteValues writes rows starting at anchor, an A1 cell reference.
func (s *Service) WriteValues(ctx context.Context, target models.SheetTarget, anchor string, rows [][]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	col, row, err := excelize.CellNameToCoordinates(anchor)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(col, row+i)
		if err != nil {
			return err
		}
		vals := make([]interface{}, len(values))
		copy(vals, values)
		if err := s.file.SetSheetRow(target.Title, cell, &vals); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	zerolog.Ctx(ctx).Debug().Str("sheet", target.Title).Str("anchor", anchor).Int("rows", len(rows)).Msg("values written")
	return nil
}

// ApplyFormatPlan applies plan to the target sheet. Format and border
// directives are folded in plan order into one style per cell before the
// styles are registered.
func (s *Service) ApplyFormatPlan(ctx context.Context, target models.SheetTarget, plan models.Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	grid := foldStyles(plan)
	if err := s.applyCellStyles(target.Title, grid); err != nil {
		return err
	}

	if err := s.applyRules(target.Title, plan); err != nil {
		return fmt.Errorf("%s directive: %w", models.KindConditional, err)
	}

	for _, d := range plan.Directives {
		var err error
		switch {
		case d.Kind == models.KindColumnWidth && d.Width != nil:
			err = s.applyWidth(target.Title, *d.Width)
		case d.Kind == models.KindBasicFilter && d.Filter != nil:
			err = s.applyFilter(target.Title, d.Filter.Clip(plan.Rows, plan.Columns))
		}
		if err != nil {
			return fmt.Errorf("%s directive: %w", d.Kind, err)
		}
	}

	zerolog.Ctx(ctx).Debug().
		Str("sheet", target.Title).
		Int("directives", len(plan.Directives)).
		Int("styles", len(s.styles)).
		Msg("format plan applied")
	return nil
}

// foldStyles layers every format and border directive onto a grid of
// composite cell styles.
func foldStyles(plan models.Plan) [][]cellStyle {
	grid := make([][]cellStyle, plan.Rows)
	for i := range grid {
		grid[i] = make([]cellStyle, plan.Columns)
	}
	for _, d := range plan.Directives {
		if d.Region == nil || (d.Kind != models.KindFormat && d.Kind != models.KindBorders) {
			continue
		}
		r := d.Region.Range.Clip(plan.Rows, plan.Columns)
		for row := r.StartRow; row < r.EndRow; row++ {
			for col := r.StartCol; col < r.EndCol; col++ {
				switch {
				case d.Kind == models.KindFormat && d.Region.Style != nil:
					grid[row][col].merge(d.Region.Style, d.Region.Fields)
				case d.Kind == models.KindBorders && d.Region.Border != nil:
					grid[row][col].setBorder(*d.Region.Border)
				}
			}
		}
	}
	return grid
}

// applyCellStyles sets the folded styles, one call per run of equal styles
// in a row.
func (s *Service) applyCellStyles(sheet string, grid [][]cellStyle) error {
	for row, cells := range grid {
		for start := 0; start < len(cells); {
			end := start + 1
			for end < len(cells) && cells[end] == cells[start] {
				end++
			}
			if !cells[start].isZero() {
				id, err := s.styleID(cells[start])
				if err != nil {
					return err
				}
				tl, _ := excelize.CoordinatesToCellName(start+1, row+1)
				br, _ := excelize.CoordinatesToCellName(end, row+1)
				if err := s.file.SetCellStyle(sheet, tl, br, id); err != nil {
					return fmt.Errorf("set style %s:%s: %w", tl, br, err)
				}
			}
			start = end
		}
	}
	return nil
}

func (s *Service) styleID(c cellStyle) (int, error) {
	if id, ok := s.styles[c]; ok {
		return id, nil
	}
	id, err := s.file.NewStyle(c.excelizeStyle())
	if err != nil {
		return 0, fmt.Errorf("create style: %w", err)
	}
	s.styles[c] = id
	return id, nil
}

// applyRules registers the conditional rules, one call per range so rules
// sharing a range keep their plan order within it.
func (s *Service) applyRules(sheet string, plan models.Plan) error {
	var refs []string
	byRef := make(map[string][]excelize.ConditionalFormatOptions)
	for _, rule := range plan.Rules() {
		r := rule.Range.Clip(plan.Rows, plan.Columns)
		if r.Empty() {
			continue
		}
		rule.Range = r

		format, err := s.conditionalStyle(rule.Background)
		if err != nil {
			return err
		}
		opts, err := conditionalOptions(rule, format)
		if err != nil {
			return err
		}
		ref, err := rangeRef(r)
		if err != nil {
			return err
		}
		if _, ok := byRef[ref]; !ok {
			refs = append(refs, ref)
		}
		byRef[ref] = append(byRef[ref], opts)
	}

	for _, ref := range refs {
		if err := s.file.SetConditionalFormat(sheet, ref, byRef[ref]); err != nil {
			return fmt.Errorf("%s: %w", ref, err)
		}
	}
	return nil
}

func (s *Service) conditionalStyle(background models.Color) (int, error) {
	if id, ok := s.conditions[background]; ok {
		return id, nil
	}
	id, err := s.file.NewConditionalStyle(&excelize.Style{Fill: solidFill(background)})
	if err != nil {
		return 0, err
	}
	s.conditions[background] = id
	return id, nil
}

func (s *Service) applyWidth(sheet string, w models.ColumnWidth) error {
	name, err := excelize.ColumnNumberToName(w.Column + 1)
	if err != nil {
		return err
	}
	return s.file.SetColWidth(sheet, name, name, columnWidth(w.Pixels))
}

func (s *Service) applyFilter(sheet string, r models.GridRange) error {
	if r.Empty() {
		return nil
	}
	ref, err := rangeRef(r)
	if err != nil {
		return err
	}
	return s.file.AutoFilter(sheet, ref, nil)
}
