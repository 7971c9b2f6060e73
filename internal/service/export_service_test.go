package service

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/reflow-api/internal/models"
	"github.com/campus-ops/reflow-api/internal/planner"
	appErrors "github.com/campus-ops/reflow-api/pkg/errors"
	"github.com/campus-ops/reflow-api/pkg/storage"
)

type planProviderStub struct {
	plan    *models.Plan
	entries []planner.CatalogEntry
}

func (s *planProviderStub) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	if s.plan == nil || s.plan.ID != id {
		return nil, appErrors.ErrNotFound
	}
	return s.plan, nil
}

func (s *planProviderStub) Catalog(ctx context.Context, plan *models.Plan) ([]planner.CatalogEntry, error) {
	return s.entries, nil
}

func exportPlanFixture() *models.Plan {
	session := models.Session{
		Slot:             models.WeeklySlot{Day: models.Monday, Start: "08:00", End: "10:00"},
		Origin:           models.OriginCourse,
		CourseCode:       "CS101",
		CourseName:       "Algorithms",
		Program:          "Computer Science",
		Instructor:       "Quispe Mamani, Rosa",
		RequiredCapacity: 40,
		Tier:             1,
		Weight:           4,
	}
	conflicted := session
	conflicted.Slot = models.WeeklySlot{Day: models.Tuesday, Start: "14:00", End: "16:00"}
	return &models.Plan{
		ID:          "plan-1",
		SourceRooms: []string{"2101105"},
		GeneratedAt: time.Date(2025, 8, 4, 12, 0, 0, 0, time.UTC),
		IsValid:     true,
		Assignments: []models.Assignment{{
			SourceRoom: "2101105",
			Session:    session,
			Room:       models.Room{Code: "2101106", Name: "Aula 106", Capacity: 40},
			Score:      100,
		}},
		Conflicts: []models.Conflict{{
			SourceRoom: "2101105",
			Session:    conflicted,
			Reason:     models.ReasonNoCandidates,
		}},
		Statistics: models.PlanStatistics{
			Assigned: 1, Conflicts: 1, RoomsUsed: 1, MeanScore: 100, SuccessRate: 50,
			BySource: []models.SourceStatistics{{Room: "2101105", Assigned: 1, Conflicts: 1, SuccessRate: 50}},
		},
	}
}

func newExportServiceFixture(t *testing.T, provider planProvider) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return NewExportService(provider, store, signer, ExportConfig{APIPrefix: "/api/v1"}, nil, nil, nil)
}

func TestExportServiceGeneratePlanCSV(t *testing.T) {
	provider := &planProviderStub{plan: exportPlanFixture()}
	svc := newExportServiceFixture(t, provider)

	result, err := svc.Generate(context.Background(), &models.ExportJob{
		ID:     "job-1",
		PlanID: "plan-1",
		Scope:  models.ExportScopePlan,
		Format: models.ExportFormatCSV,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/exports/"))
	assert.True(t, strings.HasSuffix(result.URL, "/download"))

	file, err := svc.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()

	raw, err := io.ReadAll(file)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(planExportHeaders, ","), lines[0])
	assert.Contains(t, lines[1], "2101105,2101106,40,100,ASSIGNED")
	assert.Contains(t, lines[2], "CONFLICT_NO_CANDIDATES")
	// Conflict rows leave destination columns blank.
	assert.Contains(t, lines[2], ",,,,CONFLICT_NO_CANDIDATES")
}

func TestExportServiceGeneratePlanJSON(t *testing.T) {
	provider := &planProviderStub{plan: exportPlanFixture()}
	svc := newExportServiceFixture(t, provider)

	result, err := svc.Generate(context.Background(), &models.ExportJob{
		ID:     "job-2",
		PlanID: "plan-1",
		Scope:  models.ExportScopePlan,
		Format: models.ExportFormatJSON,
	})
	require.NoError(t, err)

	file, err := svc.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()

	var decoded models.Plan
	require.NoError(t, json.NewDecoder(file).Decode(&decoded))
	assert.Equal(t, "plan-1", decoded.ID)
	assert.Equal(t, []string{"2101105"}, decoded.SourceRooms)
	require.Len(t, decoded.Assignments, 1)
	assert.True(t, decoded.IsValid)
	require.Len(t, decoded.Statistics.BySource, 1)
	assert.Equal(t, models.SourceStatistics{Room: "2101105", Assigned: 1, Conflicts: 1, SuccessRate: 50}, decoded.Statistics.BySource[0])
}

func TestExportServiceGenerateCatalogCSV(t *testing.T) {
	plan := exportPlanFixture()
	session := plan.Assignments[0].Session
	provider := &planProviderStub{
		plan: plan,
		entries: []planner.CatalogEntry{
			{
				SourceRoom: "2101105",
				Session:    session,
				Candidates: []planner.CandidateMatch{
					{Room: models.Room{Code: "2101106", Capacity: 40}, Score: 100},
					{Room: models.Room{Code: "2101205", Capacity: 45}, Score: 90},
				},
			},
			{SourceRoom: "2101105", Session: plan.Conflicts[0].Session},
		},
	}
	svc := newExportServiceFixture(t, provider)

	result, err := svc.Generate(context.Background(), &models.ExportJob{
		ID:     "job-3",
		PlanID: "plan-1",
		Scope:  models.ExportScopeCatalog,
		Format: models.ExportFormatCSV,
	})
	require.NoError(t, err)

	file, err := svc.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()

	raw, err := io.ReadAll(file)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "Option 1 of 2")
	assert.Contains(t, lines[1], "21") // destination pavilion
	assert.Contains(t, lines[2], "Option 2 of 2")
	assert.Contains(t, lines[3], "NO_ROOMS_AVAILABLE")
	assert.Contains(t, lines[3], "NO_OPTIONS")
}

func TestExportServiceGenerateCatalogSummary(t *testing.T) {
	plan := exportPlanFixture()
	provider := &planProviderStub{
		plan: plan,
		entries: []planner.CatalogEntry{{
			SourceRoom: "2101105",
			Session:    plan.Assignments[0].Session,
			Candidates: []planner.CandidateMatch{
				{Room: models.Room{Code: "2101106", Capacity: 40}, Score: 100},
				{Room: models.Room{Code: "2101205", Capacity: 45}, Score: 90},
				{Room: models.Room{Code: "2101305", Capacity: 60}, Score: 70},
			},
		}},
	}
	svc := newExportServiceFixture(t, provider)

	result, err := svc.Generate(context.Background(), &models.ExportJob{
		ID:     "job-4",
		PlanID: "plan-1",
		Scope:  models.ExportScopeCatalogSummary,
		Format: models.ExportFormatCSV,
	})
	require.NoError(t, err)

	file, err := svc.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()

	raw, err := io.ReadAll(file)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	// Best option, total, high (>=90), mid ([70,90)).
	assert.Contains(t, lines[1], "2101106,40,100,3,2,1,MULTIPLE_OPTIONS")
}

func TestExportServiceGeneratePDF(t *testing.T) {
	provider := &planProviderStub{plan: exportPlanFixture()}
	svc := newExportServiceFixture(t, provider)

	result, err := svc.Generate(context.Background(), &models.ExportJob{
		ID:     "job-5",
		PlanID: "plan-1",
		Scope:  models.ExportScopePlan,
		Format: models.ExportFormatPDF,
	})
	require.NoError(t, err)

	file, err := svc.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()

	header := make([]byte, 5)
	_, err = file.Read(header)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(header))
}

func TestExportServiceGenerateUnknownPlan(t *testing.T) {
	svc := newExportServiceFixture(t, &planProviderStub{})

	_, err := svc.Generate(context.Background(), &models.ExportJob{
		ID:     "job-6",
		PlanID: "nope",
		Scope:  models.ExportScopePlan,
		Format: models.ExportFormatCSV,
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
