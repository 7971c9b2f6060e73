package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/reflow-api/internal/dto"
	"github.com/campus-ops/reflow-api/internal/models"
	"github.com/campus-ops/reflow-api/internal/service"
	appErrors "github.com/campus-ops/reflow-api/pkg/errors"
)

type exportServiceMock struct {
	createResp  *dto.ExportJobResponse
	createErr   error
	statusResp  *dto.ExportStatusResponse
	statusErr   error
	download    *service.ExportDownload
	downloadErr error
	lastPlanID  string
	lastToken   string
}

func (m *exportServiceMock) CreateJob(ctx context.Context, planID string, req dto.ExportRequest) (*dto.ExportJobResponse, error) {
	m.lastPlanID = planID
	return m.createResp, m.createErr
}

func (m *exportServiceMock) GetStatus(ctx context.Context, id string) (*dto.ExportStatusResponse, error) {
	return m.statusResp, m.statusErr
}

func (m *exportServiceMock) ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error) {
	m.lastToken = token
	return m.download, m.downloadErr
}

func TestExportHandlerCreateExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{
		createResp: &dto.ExportJobResponse{ID: "job-1", PlanID: "plan-1", Status: models.ExportStatusQueued},
	}
	handler := NewExportHandler(mockSvc)

	payload, _ := json.Marshal(dto.ExportRequest{Scope: models.ExportScopePlan, Format: models.ExportFormatCSV})
	c, w := newGinContext(http.MethodPost, "/reallocations/plan-1/exports", payload)
	c.Params = gin.Params{{Key: "id", Value: "plan-1"}}

	handler.CreateExport(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "plan-1", mockSvc.lastPlanID)
}

func TestExportHandlerCreateExportRejectsBadFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewExportHandler(&exportServiceMock{})

	c, w := newGinContext(http.MethodPost, "/reallocations/plan-1/exports", []byte(`{"scope":"plan","format":"xlsx"}`))
	c.Params = gin.Params{{Key: "id", Value: "plan-1"}}

	handler.CreateExport(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportHandlerExportStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{
		statusResp: &dto.ExportStatusResponse{ID: "job-1", Status: models.ExportStatusCompleted, Progress: 100},
	}
	handler := NewExportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/exports/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}

	handler.ExportStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestExportHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	file, err := os.CreateTemp(t.TempDir(), "plan*.csv")
	require.NoError(t, err)
	_, _ = file.WriteString("Tier,Day\n1,MO\n")
	_, _ = file.Seek(0, 0)

	mockSvc := &exportServiceMock{
		download: &service.ExportDownload{
			File:      file,
			Filename:  "plan_plan-1_job-1.csv",
			Format:    models.ExportFormatCSV,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	handler := NewExportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/exports/tok/download", nil)
	c.Params = gin.Params{{Key: "id", Value: "tok"}}

	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok", mockSvc.lastToken)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "plan_plan-1_job-1.csv")
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Tier,Day")
}

func TestExportHandlerDownloadExpiredToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewExportHandler(&exportServiceMock{downloadErr: appErrors.ErrUnauthorized})

	c, w := newGinContext(http.MethodGet, "/exports/tok/download", nil)
	c.Params = gin.Params{{Key: "id", Value: "tok"}}

	handler.Download(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExportHandlerDownloadNotReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewExportHandler(&exportServiceMock{downloadErr: appErrors.ErrExportState})

	c, w := newGinContext(http.MethodGet, "/exports/tok/download", nil)
	c.Params = gin.Params{{Key: "id", Value: "tok"}}

	handler.Download(c)
	require.Equal(t, http.StatusConflict, w.Code)
}
