package models

// SheetTarget identifies a sheet created by a sheet service.
type SheetTarget struct {
	// SpreadsheetID is the owning spreadsheet (or workbook) id.
	SpreadsheetID string `json:"spreadsheet_id"`
	// SheetID is the service-assigned sheet id.
	SheetID int64 `json:"sheet_id"`
	// Title is the sheet title.
	Title string `json:"title"`
}
