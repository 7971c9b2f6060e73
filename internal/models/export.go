package models

import "time"

// ExportFormat enumerates supported render targets.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatJSON ExportFormat = "json"
)

// ValidExportFormat reports whether f is a known format.
func ValidExportFormat(f ExportFormat) bool {
	switch f {
	case ExportFormatCSV, ExportFormatPDF, ExportFormatJSON:
		return true
	}
	return false
}

// ExportScope selects which view of a plan gets rendered.
type ExportScope string

const (
	// ExportScopePlan renders the decided assignments and conflicts.
	ExportScopePlan ExportScope = "plan"
	// ExportScopeCatalog renders every candidate option per session, for
	// manual review.
	ExportScopeCatalog ExportScope = "catalog"
	// ExportScopeCatalogSummary renders the best option per session with
	// option counts.
	ExportScopeCatalogSummary ExportScope = "catalog_summary"
)

// ValidExportScope reports whether s is a known scope.
func ValidExportScope(s ExportScope) bool {
	switch s {
	case ExportScopePlan, ExportScopeCatalog, ExportScopeCatalogSummary:
		return true
	}
	return false
}

// ExportStatus tracks the lifecycle of an export job.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusCompleted  ExportStatus = "COMPLETED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob is a queued request to render one view of a plan into a file.
type ExportJob struct {
	ID           string       `db:"id" json:"id"`
	PlanID       string       `db:"plan_id" json:"plan_id"`
	Scope        ExportScope  `db:"scope" json:"scope"`
	Format       ExportFormat `db:"format" json:"format"`
	Status       ExportStatus `db:"status" json:"status"`
	Progress     int          `db:"progress" json:"progress"`
	ResultURL    *string      `db:"result_url" json:"result_url,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time   `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage *string      `db:"error_message" json:"error_message,omitempty"`
}
