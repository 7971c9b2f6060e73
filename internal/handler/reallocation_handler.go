package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/reflow-api/internal/dto"
	"github.com/campus-ops/reflow-api/internal/models"
	appErrors "github.com/campus-ops/reflow-api/pkg/errors"
	"github.com/campus-ops/reflow-api/pkg/response"
)

type reallocationService interface {
	Generate(ctx context.Context, req dto.ReallocationRequest) (*models.Plan, error)
	Resume(ctx context.Context, planID string, req dto.ResumeRequest) (*models.Plan, error)
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	ListPlans(ctx context.Context) ([]string, error)
}

// ReallocationHandler exposes plan generation endpoints.
type ReallocationHandler struct {
	plans reallocationService
}

// NewReallocationHandler constructs the handler.
func NewReallocationHandler(plans reallocationService) *ReallocationHandler {
	return &ReallocationHandler{plans: plans}
}

// Generate godoc
// @Summary Generate a reallocation plan for one or more source rooms
// @Tags Reallocations
// @Accept json
// @Produce json
// @Param request body dto.ReallocationRequest true "Rooms to vacate and optional scope overrides"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reallocations [post]
func (h *ReallocationHandler) Generate(c *gin.Context) {
	var req dto.ReallocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	plan, err := h.plans.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan)
}

// Resume godoc
// @Summary Extend an existing plan with additional source rooms
// @Tags Reallocations
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param request body dto.ResumeRequest true "Further rooms to vacate"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reallocations/{id}/resume [post]
func (h *ReallocationHandler) Resume(c *gin.Context) {
	var req dto.ResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	plan, err := h.plans.Resume(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// GetPlan godoc
// @Summary Fetch a previously generated plan
// @Tags Reallocations
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reallocations/{id} [get]
func (h *ReallocationHandler) GetPlan(c *gin.Context) {
	plan, err := h.plans.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// ListPlans godoc
// @Summary List stored plan identifiers
// @Tags Reallocations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reallocations [get]
func (h *ReallocationHandler) ListPlans(c *gin.Context) {
	ids, err := h.plans.ListPlans(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ids, map[string]interface{}{"count": len(ids)})
}
