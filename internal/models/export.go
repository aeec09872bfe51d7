package models

import "time"

// ExportFormat selects the rendered output for an entry export.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// Valid returns true for a supported format.
func (f ExportFormat) Valid() bool {
	return f == ExportFormatCSV || f == ExportFormatPDF
}

// ExportStatus tracks an export job through its lifecycle.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "queued"
	ExportStatusProcessing ExportStatus = "processing"
	ExportStatusCompleted  ExportStatus = "completed"
	ExportStatusFailed     ExportStatus = "failed"
)

// ExportParams is the entry filter frozen into an export job at creation time.
type ExportParams struct {
	Search          string `json:"search,omitempty"`
	DepartmentID    string `json:"departmentId,omitempty"`
	SubDepartmentID string `json:"subDepartmentId,omitempty"`
	BaseID          string `json:"baseId,omitempty"`
	StartDate       string `json:"startDate,omitempty"`
	EndDate         string `json:"endDate,omitempty"`
}

// ExportJob tracks one asynchronous entry export. Jobs live in memory only; the
// rendered file on disk is the durable artifact.
type ExportJob struct {
	ID         string       `json:"id"`
	Format     ExportFormat `json:"format"`
	Status     ExportStatus `json:"status"`
	Progress   int          `json:"progress"`
	Params     ExportParams `json:"params"`
	Filename   string       `json:"-"`
	Error      string       `json:"error,omitempty"`
	CreatedBy  string       `json:"created_by"`
	CreatedAt  time.Time    `json:"created_at"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
}
