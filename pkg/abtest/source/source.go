// Package source loads experiment results tables from files and databases.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ukaji3/abtest-summary-go/pkg/abtest/models"
)

// ErrUnsupportedFormat indicates an input whose extension has no loader.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// ErrNoRows indicates an input without a header row.
var ErrNoRows = errors.New("no rows in input")

// Options selects what to read from a multi-table input.
type Options struct {
	// Sheet is the workbook sheet to read; empty reads the first sheet.
	Sheet string
	// Query is the SQL query run against a SQLite database.
	Query string
}

// Load reads a results table from path, choosing the loader by extension:
// .csv, .xlsx/.xlsm or .db/.sqlite/.sqlite3.
func Load(ctx context.Context, path string, opts Options) (models.ResultTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return models.ResultTable{}, err
		}
		defer f.Close()
		return ReadCSV(f)

	case ".xlsx", ".xlsm":
		return ReadWorkbook(path, opts.Sheet)

	case ".db", ".sqlite", ".sqlite3":
		if opts.Query == "" {
			return models.ResultTable{}, errors.New("a query is required for database inputs")
		}
		db, err := OpenSQLite(path)
		if err != nil {
			return models.ResultTable{}, err
		}
		defer db.Close()
		return QueryTable(ctx, db, opts.Query)
	}
	return models.ResultTable{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// fromRecords builds a table from a header and positional rows. Blank header
// cells drop their column; short rows are padded with nil.
func fromRecords(header []string, rows [][]any) models.ResultTable {
	var t models.ResultTable
	for col, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		values := make([]any, len(rows))
		for i, row := range rows {
			if col < len(row) {
				values[i] = row[col]
			}
		}
		t.Set(name, values)
	}
	return t
}

// parseValue attempts to parse a string value as a number.
// Returns int64 for integers, float64 for decimals, nil for blanks, or the
// original string.
func parseValue(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
