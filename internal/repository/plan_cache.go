package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campus-ops/reflow-api/internal/models"
	appErrors "github.com/campus-ops/reflow-api/pkg/errors"
)

// PlanCache keeps recently generated plans in Redis so read and export
// endpoints do not hit the snapshot store. A nil client degrades to a
// cache that always misses.
type PlanCache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewPlanCache constructs the cache.
func NewPlanCache(client *redis.Client, logger *zap.Logger, ttl time.Duration) *PlanCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanCache{client: client, logger: logger, ttl: ttl}
}

func planKey(id string) string {
	return "reflow:plan:" + id
}

// Get retrieves a cached plan by identifier.
func (c *PlanCache) Get(ctx context.Context, id string) (*models.Plan, error) {
	if c.client == nil {
		return nil, appErrors.ErrCacheMiss
	}
	raw, err := c.client.Get(ctx, planKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get plan %s: %w", id, err)
	}
	var plan models.Plan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("unmarshal cached plan %s: %w", id, err)
	}
	return &plan, nil
}

// Set stores the plan under its identifier with the configured TTL.
// Cache failures are logged and swallowed; the snapshot store remains the
// source of truth.
func (c *PlanCache) Set(ctx context.Context, plan *models.Plan) {
	if c.client == nil || plan == nil || plan.ID == "" {
		return
	}
	payload, err := json.Marshal(plan)
	if err != nil {
		c.logger.Warn("marshal plan for cache", zap.String("plan_id", plan.ID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, planKey(plan.ID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("cache plan", zap.String("plan_id", plan.ID), zap.Error(err))
	}
}

// Invalidate drops the cached plan, if any.
func (c *PlanCache) Invalidate(ctx context.Context, id string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, planKey(id)).Err(); err != nil {
		c.logger.Warn("invalidate cached plan", zap.String("plan_id", id), zap.Error(err))
	}
}
