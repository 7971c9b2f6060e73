package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-ops/reflow-api/internal/dto"
	"github.com/campus-ops/reflow-api/internal/models"
	"github.com/campus-ops/reflow-api/internal/planner"
	"github.com/campus-ops/reflow-api/pkg/config"
	appErrors "github.com/campus-ops/reflow-api/pkg/errors"
)

type roomCatalog interface {
	ListOccupancies(ctx context.Context, filter models.RoomFilter) ([]models.RoomOccupancy, error)
}

type sessionSource interface {
	ListByRoom(ctx context.Context, roomCode string, filter models.RoomFilter) ([]models.Session, error)
}

type planStore interface {
	Save(plan *models.Plan) error
	Load(id string) (*models.Plan, error)
	List() ([]string, error)
}

type planCacher interface {
	Get(ctx context.Context, id string) (*models.Plan, error)
	Set(ctx context.Context, plan *models.Plan)
	Invalidate(ctx context.Context, id string)
}

type planObserver interface {
	ObservePlan(plan *models.Plan)
}

// ReallocationService generates, extends and serves reallocation plans. It
// is the only component that touches the engine; handlers talk to it
// exclusively through DTOs and plans.
type ReallocationService struct {
	rooms      roomCatalog
	sessions   sessionSource
	plans      planStore
	cache      planCacher
	priorities models.PriorityTable
	cfg        config.ReallocationConfig
	validator  *validator.Validate
	logger     *zap.Logger
	metrics    planObserver
}

// WithMetrics attaches an instrumentation sink. Optional.
func (s *ReallocationService) WithMetrics(metrics planObserver) *ReallocationService {
	s.metrics = metrics
	return s
}

// NewReallocationService constructs the service.
func NewReallocationService(
	rooms roomCatalog,
	sessions sessionSource,
	plans planStore,
	cache planCacher,
	priorities models.PriorityTable,
	cfg config.ReallocationConfig,
	logger *zap.Logger,
) *ReallocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReallocationService{
		rooms:      rooms,
		sessions:   sessions,
		plans:      plans,
		cache:      cache,
		priorities: priorities,
		cfg:        cfg,
		validator:  validator.New(),
		logger:     logger,
	}
}

// filterFor merges request overrides onto the configured default scope.
func (s *ReallocationService) filterFor(req dto.ReallocationRequest) models.RoomFilter {
	filter := models.RoomFilter{
		CampusCode:      s.cfg.CampusCode,
		PavilionCodes:   s.cfg.PavilionCodes,
		Year:            s.cfg.Year,
		Term:            s.cfg.Term,
		ActiveHoldsOnly: s.cfg.ActiveHoldsOnly,
	}
	if req.CampusCode != "" {
		filter.CampusCode = req.CampusCode
	}
	if len(req.PavilionCodes) > 0 {
		filter.PavilionCodes = req.PavilionCodes
	}
	if req.Year != "" {
		filter.Year = req.Year
	}
	if req.Term != "" {
		filter.Term = req.Term
	}
	// Rooms being vacated must not receive their own sessions back.
	filter.ExcludedRoomCodes = append(filter.ExcludedRoomCodes, req.SourceRooms...)
	return filter
}

func (s *ReallocationService) gatherSources(ctx context.Context, roomCodes []string, filter models.RoomFilter) ([]planner.SourceRoom, error) {
	sources := make([]planner.SourceRoom, 0, len(roomCodes))
	for _, code := range roomCodes {
		sessions, err := s.sessions.ListByRoom(ctx, code, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
				fmt.Sprintf("failed to load sessions for room %s", code))
		}
		sources = append(sources, planner.SourceRoom{Code: code, Sessions: sessions})
	}
	return sources, nil
}

func (s *ReallocationService) availability(ctx context.Context, filter models.RoomFilter) ([]models.RoomAvailability, error) {
	occupancies, err := s.rooms.ListOccupancies(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room catalog")
	}
	availability, err := planner.ComputeFreeWindows(occupancies)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return availability, nil
}

// Generate builds a fresh plan for the requested source rooms. Vacating a
// room that holds no sessions produces an empty, valid plan rather than an
// error.
func (s *ReallocationService) Generate(ctx context.Context, req dto.ReallocationRequest) (*models.Plan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reallocation request")
	}
	filter := s.filterFor(req)

	availability, err := s.availability(ctx, filter)
	if err != nil {
		return nil, err
	}
	sources, err := s.gatherSources(ctx, req.SourceRooms, filter)
	if err != nil {
		return nil, err
	}

	validity := planner.ParseValidityPolicy(s.cfg.ValidityPolicy)
	if req.ValidityPolicy != "" {
		validity = planner.ParseValidityPolicy(req.ValidityPolicy)
	}
	orch := planner.NewOrchestrator(planner.ParseScorePolicy(req.ScorePolicy), validity)

	plan := orch.PlanRooms(sources, availability, s.priorities, models.PlanConfiguration{
		CampusCode:     filter.CampusCode,
		PavilionCodes:  filter.PavilionCodes,
		Year:           filter.Year,
		Term:           filter.Term,
		ValidityPolicy: string(validity),
	})
	plan.ID = uuid.NewString()

	if err := s.plans.Save(plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist plan")
	}
	s.cache.Set(ctx, plan)
	if s.metrics != nil {
		s.metrics.ObservePlan(plan)
	}

	s.logger.Info("plan generated",
		zap.String("plan_id", plan.ID),
		zap.Strings("source_rooms", plan.SourceRooms),
		zap.Int("assigned", plan.Statistics.Assigned),
		zap.Int("conflicts", plan.Statistics.Conflicts),
		zap.Bool("valid", plan.IsValid),
	)
	return plan, nil
}

// Resume extends a persisted plan with additional source rooms. The new
// sessions respect every placement the existing plan already made.
func (s *ReallocationService) Resume(ctx context.Context, planID string, req dto.ResumeRequest) (*models.Plan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resume request")
	}
	existing, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	genReq := dto.ReallocationRequest{
		SourceRooms:   append(append([]string(nil), existing.SourceRooms...), req.SourceRooms...),
		CampusCode:    existing.Configuration.CampusCode,
		PavilionCodes: existing.Configuration.PavilionCodes,
		Year:          existing.Configuration.Year,
		Term:          existing.Configuration.Term,
	}
	filter := s.filterFor(genReq)

	availability, err := s.availability(ctx, filter)
	if err != nil {
		return nil, err
	}
	sources, err := s.gatherSources(ctx, req.SourceRooms, filter)
	if err != nil {
		return nil, err
	}

	orch := planner.NewOrchestrator(planner.PolicyCapacityDiff, planner.ParseValidityPolicy(existing.Configuration.ValidityPolicy))
	plan := orch.Resume(existing, sources, availability, s.priorities)

	if err := s.plans.Save(plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist plan")
	}
	s.cache.Set(ctx, plan)
	if s.metrics != nil {
		s.metrics.ObservePlan(plan)
	}

	s.logger.Info("plan resumed",
		zap.String("plan_id", plan.ID),
		zap.Strings("added_rooms", req.SourceRooms),
		zap.Int("assigned", plan.Statistics.Assigned),
	)
	return plan, nil
}

// GetPlan loads a plan by identifier, serving from cache when possible.
func (s *ReallocationService) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	if plan, err := s.cache.Get(ctx, id); err == nil {
		return plan, nil
	}
	plan, err := s.plans.Load(id)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrNotFound) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	s.cache.Set(ctx, plan)
	return plan, nil
}

// ListPlans returns the identifiers of all persisted plans.
func (s *ReallocationService) ListPlans(ctx context.Context) ([]string, error) {
	ids, err := s.plans.List()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list plans")
	}
	return ids, nil
}

// Catalog rebuilds the full candidate listing for every source room of a
// plan, using the plan's recorded scope. Export rendering consumes this.
func (s *ReallocationService) Catalog(ctx context.Context, plan *models.Plan) ([]planner.CatalogEntry, error) {
	if plan == nil {
		return nil, fmt.Errorf("plan is required")
	}
	genReq := dto.ReallocationRequest{
		SourceRooms:   plan.SourceRooms,
		CampusCode:    plan.Configuration.CampusCode,
		PavilionCodes: plan.Configuration.PavilionCodes,
		Year:          plan.Configuration.Year,
		Term:          plan.Configuration.Term,
	}
	filter := s.filterFor(genReq)

	availability, err := s.availability(ctx, filter)
	if err != nil {
		return nil, err
	}
	sources, err := s.gatherSources(ctx, plan.SourceRooms, filter)
	if err != nil {
		return nil, err
	}

	orch := planner.NewOrchestrator(planner.PolicyCapacityDiff, planner.ParseValidityPolicy(plan.Configuration.ValidityPolicy))
	var entries []planner.CatalogEntry
	for _, src := range sources {
		entries = append(entries, orch.BuildCatalog(src, availability, s.priorities)...)
	}
	return entries, nil
}
