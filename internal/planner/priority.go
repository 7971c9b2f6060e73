package planner

import (
	"sort"

	"github.com/campus-ops/reflow-api/internal/models"
)

// OrderSessions stamps each session with its tier and weight from the
// caller-supplied table and returns a new slice ordered for processing:
// descending weight, then descending start time. Higher-priority and
// later-starting sessions are placed first. The tie-break is part of the
// output contract, not an artifact.
func OrderSessions(sessions []models.Session, table models.PriorityTable) []models.Session {
	ordered := make([]models.Session, len(sessions))
	copy(ordered, sessions)

	for i := range ordered {
		tier := table.Tier(ordered[i].CourseCode)
		ordered[i].Tier = tier
		ordered[i].Weight = models.WeightForTier(tier)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Weight != ordered[j].Weight {
			return ordered[i].Weight > ordered[j].Weight
		}
		return ordered[i].Slot.Start > ordered[j].Slot.Start
	})
	return ordered
}
