package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/campus-ops/reflow-api/internal/models"
	appErrors "github.com/campus-ops/reflow-api/pkg/errors"
	"github.com/campus-ops/reflow-api/pkg/storage"
)

// PlanRepository persists generated plans as JSON documents on local
// storage. Plans are immutable snapshots; an incremental run writes a new
// document under the same identifier.
type PlanRepository struct {
	store *storage.LocalStorage
}

// NewPlanRepository constructs repository.
func NewPlanRepository(store *storage.LocalStorage) *PlanRepository {
	return &PlanRepository{store: store}
}

func planFilename(id string) string {
	return fmt.Sprintf("plans/%s.json", id)
}

// Save writes the plan document, replacing any previous snapshot with the
// same identifier.
func (r *PlanRepository) Save(plan *models.Plan) error {
	if plan == nil || plan.ID == "" {
		return fmt.Errorf("plan with identifier is required")
	}
	payload, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plan %s: %w", plan.ID, err)
	}
	if _, err := r.store.Save(planFilename(plan.ID), payload); err != nil {
		return fmt.Errorf("persist plan %s: %w", plan.ID, err)
	}
	return nil
}

// Load reads a plan snapshot by identifier.
func (r *PlanRepository) Load(id string) (*models.Plan, error) {
	file, err := r.store.Open(planFilename(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("plan %s not found", id))
		}
		return nil, fmt.Errorf("open plan %s: %w", id, err)
	}
	defer file.Close() //nolint:errcheck

	var plan models.Plan
	if err := json.NewDecoder(file).Decode(&plan); err != nil {
		return nil, fmt.Errorf("decode plan %s: %w", id, err)
	}
	return &plan, nil
}

// Delete removes a plan snapshot. Missing snapshots are not an error.
func (r *PlanRepository) Delete(id string) error {
	return r.store.Delete(planFilename(id))
}

// List returns the identifiers of all persisted plans in lexical order.
func (r *PlanRepository) List() ([]string, error) {
	entries, err := os.ReadDir(r.store.Path("plans"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list plans: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
