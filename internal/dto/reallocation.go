package dto

import "github.com/campus-ops/reflow-api/internal/models"

// ReallocationRequest captures POST /reallocations payload. Scope fields
// default to the server configuration when omitted.
type ReallocationRequest struct {
	SourceRooms    []string `json:"sourceRooms" binding:"required,min=1,dive,required" validate:"required,min=1,dive,required"`
	CampusCode     string   `json:"campusCode,omitempty"`
	PavilionCodes  []string `json:"pavilionCodes,omitempty"`
	Year           string   `json:"year,omitempty"`
	Term           string   `json:"term,omitempty"`
	ValidityPolicy string   `json:"validityPolicy,omitempty" binding:"omitempty,oneof=tolerant strict" validate:"omitempty,oneof=tolerant strict"`
	ScorePolicy    string   `json:"scorePolicy,omitempty" binding:"omitempty,oneof=capacity_diff oversize_penalty" validate:"omitempty,oneof=capacity_diff oversize_penalty"`
}

// ResumeRequest captures POST /reallocations/{id}/resume payload: further
// rooms to vacate on top of an existing plan.
type ResumeRequest struct {
	SourceRooms []string `json:"sourceRooms" binding:"required,min=1,dive,required" validate:"required,min=1,dive,required"`
}

// ExportRequest captures POST /reallocations/{id}/exports payload.
type ExportRequest struct {
	Scope  models.ExportScope  `json:"scope" binding:"required,oneof=plan catalog catalog_summary"`
	Format models.ExportFormat `json:"format" binding:"required,oneof=csv pdf json"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	PlanID   string              `json:"planId"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes export job progress metadata.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	PlanID    string              `json:"planId"`
	Scope     models.ExportScope  `json:"scope"`
	Format    models.ExportFormat `json:"format"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
