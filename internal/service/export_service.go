package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campus-ops/reflow-api/internal/models"
	"github.com/campus-ops/reflow-api/internal/planner"
	"github.com/campus-ops/reflow-api/pkg/export"
	"github.com/campus-ops/reflow-api/pkg/storage"
)

// Export column headers, order significant for downstream consumers.
var planExportHeaders = []string{
	"Tier", "Day", "Start", "End", "Course", "Program", "Instructor",
	"Required_Capacity", "Source_Room", "Destination_Room",
	"Destination_Capacity", "Score", "Status",
}

var catalogExportHeaders = []string{
	"Tier", "Day", "Start", "End", "Course", "Program", "Instructor",
	"Required_Capacity", "Source_Room", "Destination_Room",
	"Destination_Capacity", "Score", "Destination_Pavilion", "Status", "Option_Rank",
}

var catalogSummaryHeaders = []string{
	"Tier", "Day", "Start", "End", "Course", "Program", "Instructor",
	"Required_Capacity", "Source_Room", "Best_Destination_Room",
	"Destination_Capacity", "Best_Score", "Total_Options",
	"High_Score_Options", "Mid_Score_Options", "Status",
}

const noOptionsMarker = "NO_ROOMS_AVAILABLE"

type planProvider interface {
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	Catalog(ctx context.Context, plan *models.Plan) ([]planner.CatalogEntry, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders plan views into files and signs download URLs.
type ExportService struct {
	plans   planProvider
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(plans planProvider, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		plans:   plans,
		storage: store,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate renders the job's scope and format and stores the result.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	plan, err := s.plans.GetPlan(ctx, job.PlanID)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Format {
	case models.ExportFormatJSON:
		payload, err = s.renderJSON(ctx, plan, job.Scope)
	case models.ExportFormatCSV, models.ExportFormatPDF:
		var dataset export.Dataset
		dataset, err = s.buildDataset(ctx, plan, job.Scope)
		if err != nil {
			break
		}
		if job.Format == models.ExportFormatCSV {
			payload, err = s.csv.Render(dataset)
		} else {
			payload, err = s.pdf.Render(dataset, s.title(plan, job.Scope))
		}
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/%s/download", prefix, token),
		Format:       job.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *ExportService) title(plan *models.Plan, scope models.ExportScope) string {
	switch scope {
	case models.ExportScopeCatalog:
		return fmt.Sprintf("Relocation options for %s", strings.Join(plan.SourceRooms, ", "))
	case models.ExportScopeCatalogSummary:
		return fmt.Sprintf("Best relocation options for %s", strings.Join(plan.SourceRooms, ", "))
	default:
		return fmt.Sprintf("Reallocation plan %s", plan.ID)
	}
}

func (s *ExportService) buildDataset(ctx context.Context, plan *models.Plan, scope models.ExportScope) (export.Dataset, error) {
	switch scope {
	case models.ExportScopePlan:
		return buildPlanDataset(plan), nil
	case models.ExportScopeCatalog:
		entries, err := s.plans.Catalog(ctx, plan)
		if err != nil {
			return export.Dataset{}, err
		}
		return buildCatalogDataset(entries), nil
	case models.ExportScopeCatalogSummary:
		entries, err := s.plans.Catalog(ctx, plan)
		if err != nil {
			return export.Dataset{}, err
		}
		return buildCatalogSummaryDataset(entries), nil
	default:
		return export.Dataset{}, fmt.Errorf("unsupported scope %s", scope)
	}
}

func (s *ExportService) renderJSON(ctx context.Context, plan *models.Plan, scope models.ExportScope) ([]byte, error) {
	switch scope {
	case models.ExportScopePlan:
		return json.MarshalIndent(plan, "", "  ")
	case models.ExportScopeCatalog, models.ExportScopeCatalogSummary:
		entries, err := s.plans.Catalog(ctx, plan)
		if err != nil {
			return nil, err
		}
		document := struct {
			PlanID      string                 `json:"plan_id"`
			SourceRooms []string               `json:"source_rooms"`
			GeneratedAt time.Time              `json:"generated_at"`
			Entries     []planner.CatalogEntry `json:"entries"`
		}{plan.ID, plan.SourceRooms, plan.GeneratedAt, entries}
		return json.MarshalIndent(document, "", "  ")
	default:
		return nil, fmt.Errorf("unsupported scope %s", scope)
	}
}

func sessionColumns(row map[string]string, sourceRoom string, session models.Session) {
	row["Tier"] = fmt.Sprint(session.Tier)
	row["Day"] = string(session.Slot.Day)
	row["Start"] = session.Slot.Start
	row["End"] = session.Slot.End
	row["Course"] = session.CourseName
	row["Program"] = session.Program
	row["Instructor"] = session.Instructor
	if session.RequiredCapacity > 0 {
		row["Required_Capacity"] = fmt.Sprint(session.RequiredCapacity)
	}
	row["Source_Room"] = sourceRoom
}

func buildPlanDataset(plan *models.Plan) export.Dataset {
	rows := make([]map[string]string, 0, len(plan.Assignments)+len(plan.Conflicts))
	for _, a := range plan.Assignments {
		row := map[string]string{}
		sessionColumns(row, a.SourceRoom, a.Session)
		row["Destination_Room"] = a.Room.Code
		row["Destination_Capacity"] = fmt.Sprint(a.Room.Capacity)
		row["Score"] = fmt.Sprint(a.Score)
		row["Status"] = "ASSIGNED"
		rows = append(rows, row)
	}
	for _, c := range plan.Conflicts {
		row := map[string]string{}
		sessionColumns(row, c.SourceRoom, c.Session)
		row["Status"] = "CONFLICT_" + string(c.Reason)
		rows = append(rows, row)
	}
	return export.Dataset{Headers: planExportHeaders, Rows: rows}
}

func buildCatalogDataset(entries []planner.CatalogEntry) export.Dataset {
	var rows []map[string]string
	for _, entry := range entries {
		if len(entry.Candidates) == 0 {
			row := map[string]string{}
			sessionColumns(row, entry.SourceRoom, entry.Session)
			row["Destination_Room"] = noOptionsMarker
			row["Status"] = "NO_OPTIONS"
			row["Option_Rank"] = "0 options"
			rows = append(rows, row)
			continue
		}
		for i, cand := range entry.Candidates {
			row := map[string]string{}
			sessionColumns(row, entry.SourceRoom, entry.Session)
			row["Destination_Room"] = cand.Room.Code
			row["Destination_Capacity"] = fmt.Sprint(cand.Room.Capacity)
			row["Score"] = fmt.Sprint(cand.Score)
			row["Destination_Pavilion"] = cand.Room.Pavilion()
			row["Status"] = "AVAILABLE"
			row["Option_Rank"] = fmt.Sprintf("Option %d of %d", i+1, len(entry.Candidates))
			rows = append(rows, row)
		}
	}
	return export.Dataset{Headers: catalogExportHeaders, Rows: rows}
}

func buildCatalogSummaryDataset(entries []planner.CatalogEntry) export.Dataset {
	rows := make([]map[string]string, 0, len(entries))
	for _, entry := range entries {
		row := map[string]string{}
		sessionColumns(row, entry.SourceRoom, entry.Session)
		if len(entry.Candidates) == 0 {
			row["Best_Destination_Room"] = noOptionsMarker
			row["Total_Options"] = "0"
			row["Status"] = "NO_OPTIONS"
			rows = append(rows, row)
			continue
		}
		best := entry.Candidates[0]
		high, mid := 0, 0
		for _, cand := range entry.Candidates {
			switch {
			case cand.Score >= 90:
				high++
			case cand.Score >= 70:
				mid++
			}
		}
		row["Best_Destination_Room"] = best.Room.Code
		row["Destination_Capacity"] = fmt.Sprint(best.Room.Capacity)
		row["Best_Score"] = fmt.Sprint(best.Score)
		row["Total_Options"] = fmt.Sprint(len(entry.Candidates))
		row["High_Score_Options"] = fmt.Sprint(high)
		row["Mid_Score_Options"] = fmt.Sprint(mid)
		row["Status"] = "MULTIPLE_OPTIONS"
		rows = append(rows, row)
	}
	return export.Dataset{Headers: catalogSummaryHeaders, Rows: rows}
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	return fmt.Sprintf("%s/%s_%s_%s.%s",
		time.Now().UTC().Format("2006/01/02"),
		job.Scope, job.PlanID, job.ID, job.Format)
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}
