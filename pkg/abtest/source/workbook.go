package source

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/abtest-summary-go/pkg/abtest/models"
)

const printAreaName = "_xlnm.Print_Area"

// bounds is an inclusive, 0-based cell block.
type bounds struct {
	minRow, maxRow, minCol, maxCol int
}

// ReadWorkbook reads a table from one sheet of an xlsx workbook. The sheet's
// print area bounds the table when one is defined; otherwise the bounding box
// of non-empty cells does. The first row of the block is the header.
func ReadWorkbook(path, sheet string) (models.ResultTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return models.ResultTable{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return models.ResultTable{}, err
	}

	b, ok := printArea(f, sheet)
	if !ok {
		b, ok = findDataBounds(rows)
	}
	if !ok {
		return models.ResultTable{}, ErrNoRows
	}

	header := make([]string, 0, b.maxCol-b.minCol+1)
	for col := b.minCol; col <= b.maxCol; col++ {
		header = append(header, cellAt(rows, b.minRow, col))
	}

	var records [][]any
	for row := b.minRow + 1; row <= b.maxRow && row < len(rows); row++ {
		record := make([]any, 0, len(header))
		empty := true
		for col := b.minCol; col <= b.maxCol; col++ {
			v := parseValue(cellAt(rows, row, col))
			if v != nil {
				empty = false
			}
			record = append(record, v)
		}
		if !empty {
			records = append(records, record)
		}
	}
	return fromRecords(header, records), nil
}

func cellAt(rows [][]string, row, col int) string {
	if row < 0 || row >= len(rows) || col < 0 || col >= len(rows[row]) {
		return ""
	}
	return rows[row][col]
}

// findDataBounds finds the bounding box of non-empty cells.
func findDataBounds(rows [][]string) (bounds, bool) {
	b := bounds{minRow: -1, maxRow: -1, minCol: -1, maxCol: -1}
	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			if b.minRow < 0 || rowIdx < b.minRow {
				b.minRow = rowIdx
			}
			if rowIdx > b.maxRow {
				b.maxRow = rowIdx
			}
			if b.minCol < 0 || colIdx < b.minCol {
				b.minCol = colIdx
			}
			if colIdx > b.maxCol {
				b.maxCol = colIdx
			}
		}
	}
	return b, b.minRow >= 0
}

// printArea returns the first print area defined for sheet.
func printArea(f *excelize.File, sheet string) (bounds, bool) {
	for _, dn := range f.GetDefinedName() {
		if !strings.EqualFold(dn.Name, printAreaName) {
			continue
		}
		name, b, ok := parseAreaReference(dn.RefersTo)
		if ok && name == sheet {
			return b, true
		}
	}
	return bounds{}, false
}

// parseAreaReference parses the first range of a reference such as
// 'Sheet Name'!$A$1:$D$10.
func parseAreaReference(ref string) (string, bounds, bool) {
	part := strings.TrimSpace(strings.Split(ref, ",")[0])
	idx := strings.LastIndex(part, "!")
	if idx < 0 {
		return "", bounds{}, false
	}
	sheet := part[:idx]
	if len(sheet) >= 2 && strings.HasPrefix(sheet, "'") && strings.HasSuffix(sheet, "'") {
		sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}

	cells := strings.Split(strings.ReplaceAll(part[idx+1:], "$", ""), ":")
	if len(cells) != 2 {
		return "", bounds{}, false
	}
	startCol, startRow, err := excelize.CellNameToCoordinates(cells[0])
	if err != nil {
		return "", bounds{}, false
	}
	endCol, endRow, err := excelize.CellNameToCoordinates(cells[1])
	if err != nil {
		return "", bounds{}, false
	}
	return sheet, bounds{minRow: startRow - 1, maxRow: endRow - 1, minCol: startCol - 1, maxCol: endCol - 1}, true
}
