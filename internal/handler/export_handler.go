package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/reflow-api/internal/dto"
	"github.com/campus-ops/reflow-api/internal/models"
	"github.com/campus-ops/reflow-api/internal/service"
	appErrors "github.com/campus-ops/reflow-api/pkg/errors"
	"github.com/campus-ops/reflow-api/pkg/response"
)

type exportJobService interface {
	CreateJob(ctx context.Context, planID string, req dto.ExportRequest) (*dto.ExportJobResponse, error)
	GetStatus(ctx context.Context, id string) (*dto.ExportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

// ExportHandler exposes export job endpoints.
type ExportHandler struct {
	exports exportJobService
}

// NewExportHandler constructs the handler.
func NewExportHandler(exports exportJobService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// CreateExport godoc
// @Summary Queue an export of a plan view
// @Tags Exports
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param request body dto.ExportRequest true "Scope and format"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reallocations/{id}/exports [post]
func (h *ExportHandler) CreateExport(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	job, err := h.exports.CreateJob(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// ExportStatus godoc
// @Summary Poll export job progress
// @Tags Exports
// @Produce json
// @Param id path string true "Export job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ExportHandler) ExportStatus(c *gin.Context) {
	status, err := h.exports.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Download godoc
// @Summary Download an export file via signed token
// @Tags Exports
// @Produce octet-stream
// @Param id path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /exports/{id}/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	// The path segment carries the signed token, not the job ID.
	token := strings.TrimSpace(c.Param("id"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	result, err := h.exports.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck

	info, err := result.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentTypeFor(result.Format), result.File, nil)
}

func contentTypeFor(format models.ExportFormat) string {
	switch format {
	case models.ExportFormatCSV:
		return "text/csv"
	case models.ExportFormatPDF:
		return "application/pdf"
	case models.ExportFormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
