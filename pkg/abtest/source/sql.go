package source

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/ukaji3/abtest-summary-go/pkg/abtest/models"
)

// OpenSQLite opens a SQLite database file read through the pure-Go driver.
func OpenSQLite(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	return db, nil
}

// QueryTable runs query and returns its result set as a table. Column names
// come from the result set; text returned as bytes is decoded to string.
func QueryTable(ctx context.Context, db *sqlx.DB, query string, args ...any) (models.ResultTable, error) {
	rows, err := db.QueryxContext(ctx, query, args...)
	if err != nil {
		return models.ResultTable{}, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return models.ResultTable{}, err
	}

	var records [][]any
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return models.ResultTable{}, fmt.Errorf("scan row %d: %w", len(records)+1, err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		records = append(records, values)
	}
	if err := rows.Err(); err != nil {
		return models.ResultTable{}, err
	}
	return fromRecords(columns, records), nil
}
