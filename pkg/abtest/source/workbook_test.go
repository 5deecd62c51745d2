package source

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, build func(f *excelize.File)) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	build(f)

	tmpFile := filepath.Join(t.TempDir(), "results.xlsx")
	if err := f.SaveAs(tmpFile); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
	return tmpFile
}

func TestReadWorkbook(t *testing.T) {
	path := writeWorkbook(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "B2", "metric_alias")
		f.SetCellValue("Sheet1", "C2", "control_mean")
		f.SetCellValue("Sheet1", "D2", "p_value")
		f.SetCellValue("Sheet1", "B3", "signup_rate")
		f.SetCellValue("Sheet1", "C3", 100)
		f.SetCellValue("Sheet1", "D3", 0.01)
		f.SetCellValue("Sheet1", "B5", "revenue")
		f.SetCellValue("Sheet1", "C5", 200.5)
	})

	table, err := ReadWorkbook(path, "")
	if err != nil {
		t.Fatalf("ReadWorkbook failed: %v", err)
	}

	if len(table.Columns) != 3 {
		t.Fatalf("Expected 3 columns, got %v", table.Columns)
	}
	if table.Len() != 2 {
		t.Errorf("Expected 2 rows, got %d", table.Len())
	}
	if v := table.Value("control_mean", 0); v != int64(100) {
		t.Errorf("Expected int64(100), got %v (type: %T)", v, v)
	}
	if v := table.Value("control_mean", 1); v != 200.5 {
		t.Errorf("Expected 200.5, got %v", v)
	}
	if v := table.Value("p_value", 1); v != nil {
		t.Errorf("Expected nil for blank cell, got %v", v)
	}
}

func TestReadWorkbook_PrintArea(t *testing.T) {
	path := writeWorkbook(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "notes")
		f.SetCellValue("Sheet1", "A3", "metric_alias")
		f.SetCellValue("Sheet1", "B3", "p_value")
		f.SetCellValue("Sheet1", "A4", "signup_rate")
		f.SetCellValue("Sheet1", "B4", 0.01)
		f.SetCellValue("Sheet1", "D9", "footer")
		if err := f.SetDefinedName(&excelize.DefinedName{
			Name:     printAreaName,
			RefersTo: "Sheet1!$A$3:$B$4",
			Scope:    "Sheet1",
		}); err != nil {
			t.Fatalf("SetDefinedName failed: %v", err)
		}
	})

	table, err := ReadWorkbook(path, "Sheet1")
	if err != nil {
		t.Fatalf("ReadWorkbook failed: %v", err)
	}
	if len(table.Columns) != 2 || table.Columns[0] != "metric_alias" {
		t.Fatalf("Expected print area header, got %v", table.Columns)
	}
	if table.Len() != 1 {
		t.Errorf("Expected 1 row, got %d", table.Len())
	}
}

func TestReadWorkbook_EmptySheet(t *testing.T) {
	path := writeWorkbook(t, func(f *excelize.File) {})
	if _, err := ReadWorkbook(path, ""); err != ErrNoRows {
		t.Errorf("Expected ErrNoRows, got %v", err)
	}
}

func TestParseAreaReference(t *testing.T) {
	tests := []struct {
		ref   string
		sheet string
		want  bounds
		ok    bool
	}{
		{"Sheet1!$A$1:$D$10", "Sheet1", bounds{0, 9, 0, 3}, true},
		{"'My ''Data'''!$B$2:$C$3", "My 'Data'", bounds{1, 2, 1, 2}, true},
		{"'Data'!$A$1:$B$2,'Data'!$D$1:$E$2", "Data", bounds{0, 1, 0, 1}, true},
		{"$A$1:$B$2", "", bounds{}, false},
		{"Sheet1!A1", "", bounds{}, false},
	}

	for _, tt := range tests {
		sheet, b, ok := parseAreaReference(tt.ref)
		if ok != tt.ok || sheet != tt.sheet || b != tt.want {
			t.Errorf("parseAreaReference(%q) = %q, %+v, %v; expected %q, %+v, %v", tt.ref, sheet, b, ok, tt.sheet, tt.want, tt.ok)
		}
	}
}
