package model

import "time"

// ValidationResult grades one snapshot row.
type ValidationResult string

const (
	// ValidationValid means every column was populated and parseable.
	ValidationValid ValidationResult = "VALID"
	// ValidationValidNecessary means all required columns are usable but
	// some optional column was blank or invalid.
	ValidationValidNecessary ValidationResult = "VALID-FOR-NECESSARY-FIELDS"
	// ValidationInvalid means a required column was blank or invalid.
	ValidationInvalid ValidationResult = "INVALID"
)

// QualityReportRow is the diagnostic record for one snapshot row. Rows are
// never dropped on validation failure; the report is purely observational.
type QualityReportRow struct {
	FileName       string           `json:"file_name"`
	CollectionID   int              `json:"collection_id"`
	RowNumber      int              `json:"row_number"`
	ChainID        string           `json:"chain_id"`
	ScrapeDate     *time.Time       `json:"scrape_date,omitempty"`
	Result         ValidationResult `json:"validation_result"`
	InvalidColumns []string         `json:"invalid_columns,omitempty"`
	BlankColumns   []string         `json:"blank_columns,omitempty"`
}

// FileEventStatus is the outcome recorded for one processed input file.
type FileEventStatus string

const (
	FileEventUploaded FileEventStatus = "UPLOADED"
	FileEventError    FileEventStatus = "ERROR"
)

// FileEvent is one row of the file event log, unique per (file, run date).
type FileEvent struct {
	FileName     string          `json:"file_name"`
	CollectionID int             `json:"collection_id"`
	Status       FileEventStatus `json:"status"`
	RunDate      time.Time       `json:"run_date"`
	ErrorMessage string          `json:"error_message,omitempty"`
}
