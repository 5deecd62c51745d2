package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/ukaji3/abtest-summary-go/pkg/abtest/models"
)

// ReadCSV reads a table whose first record is the header.
func ReadCSV(r io.Reader) (models.ResultTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return models.ResultTable{}, ErrNoRows
	}
	if err != nil {
		return models.ResultTable{}, fmt.Errorf("read csv header: %w", err)
	}

	var rows [][]any
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return models.ResultTable{}, fmt.Errorf("read csv record %d: %w", len(rows)+1, err)
		}
		row := make([]any, len(record))
		for i, v := range record {
			row[i] = parseValue(v)
		}
		rows = append(rows, row)
	}
	return fromRecords(header, rows), nil
}
