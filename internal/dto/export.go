package dto

import (
	"time"

	"github.com/tuvia-the-goat/gym-aman-admin-api/internal/models"
)

// ExportRequest asks for an asynchronous export of the filtered entry listing.
type ExportRequest struct {
	Format          models.ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
	Search          string              `json:"search"`
	DepartmentID    string              `json:"departmentId"`
	SubDepartmentID string              `json:"subDepartmentId"`
	StartDate       string              `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate         string              `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// ExportJobResponse acknowledges job creation.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse reports job progress and, once completed, the signed download
// location.
type ExportStatusResponse struct {
	ID          string              `json:"id"`
	Status      models.ExportStatus `json:"status"`
	Progress    int                 `json:"progress"`
	Format      models.ExportFormat `json:"format"`
	Error       string              `json:"error,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	FinishedAt  *time.Time          `json:"finished_at,omitempty"`
	DownloadURL string              `json:"download_url,omitempty"`
	ExpiresAt   *time.Time          `json:"expires_at,omitempty"`
}
