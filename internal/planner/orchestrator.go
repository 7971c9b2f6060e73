package planner

import (
	"time"

	"github.com/campus-ops/reflow-api/internal/models"
)

// ValidityPolicy selects how a plan's overall verdict is computed. Both are
// in active use: manual evaluation tolerates partial success, the fully
// automatic batch path does not.
type ValidityPolicy string

const (
	// ValidityTolerant accepts a plan when at least half of the sessions
	// that had any chance of placement were assigned.
	ValidityTolerant ValidityPolicy = "tolerant"
	// ValidityStrict accepts a plan only when it has zero conflicts.
	ValidityStrict ValidityPolicy = "strict"
)

// ParseValidityPolicy maps a config string onto a policy, defaulting to
// tolerant.
func ParseValidityPolicy(raw string) ValidityPolicy {
	if raw == string(ValidityStrict) {
		return ValidityStrict
	}
	return ValidityTolerant
}

// SourceRoom bundles a room being vacated with its sessions to relocate.
type SourceRoom struct {
	Code     string
	Sessions []models.Session
}

// Orchestrator drives the assigner across one or many source rooms and
// judges the resulting plan. The occupation set it owns is the only shared
// mutable state of a run and is never touched concurrently.
type Orchestrator struct {
	Assigner Assigner
	Policy   ValidityPolicy

	// Now is swappable for deterministic tests.
	Now func() time.Time
}

// NewOrchestrator builds an orchestrator with the given scoring and
// validity policies.
func NewOrchestrator(scorePolicy ScorePolicy, validity ValidityPolicy) Orchestrator {
	return Orchestrator{
		Assigner: Assigner{Finder: CandidateFinder{Policy: scorePolicy}},
		Policy:   validity,
		Now:      time.Now,
	}
}

// PlanRooms relocates the sessions of each source room in order. Each room's
// surviving assignments are folded into a cross-room occupation set before
// the next room is processed; an assignment that would overlap one made for
// an earlier room is re-tagged as a CROSS_ROOM_OVERLAP conflict instead.
// A single-element sources slice is the single-room mode.
func (o Orchestrator) PlanRooms(
	sources []SourceRoom,
	availability []models.RoomAvailability,
	table models.PriorityTable,
	cfg models.PlanConfiguration,
) *models.Plan {
	shared := NewOccupationSet()
	plan := o.newPlan(sources, cfg)

	for _, src := range sources {
		ordered := OrderSessions(src.Sessions, table)
		assignments, conflicts := o.Assigner.Assign(src.Code, ordered, availability, nil)

		for _, a := range assignments {
			if shared.Overlaps(a.Room.Code, a.Session.Slot) {
				plan.Conflicts = append(plan.Conflicts, models.Conflict{
					SourceRoom: a.SourceRoom,
					Session:    a.Session,
					Reason:     models.ReasonCrossRoomOverlap,
				})
				continue
			}
			shared.Add(a.Room.Code, a.Session.Slot)
			plan.Assignments = append(plan.Assignments, a)
		}
		plan.Conflicts = append(plan.Conflicts, conflicts...)
	}

	o.finalize(plan)
	return plan
}

// Resume extends a previously produced plan with additional source rooms.
// New sessions are filtered against the existing assignments via the same
// overlap test before reaching the assigner, and the new assignments are
// appended to the prior ones rather than replacing them.
func (o Orchestrator) Resume(
	existing *models.Plan,
	sources []SourceRoom,
	availability []models.RoomAvailability,
	table models.PriorityTable,
) *models.Plan {
	prior := NewOccupationSet()
	for _, a := range existing.Assignments {
		prior.Add(a.Room.Code, a.Session.Slot)
	}

	plan := &models.Plan{
		ID:            existing.ID,
		SourceRooms:   append([]string(nil), existing.SourceRooms...),
		GeneratedAt:   o.now(),
		Assignments:   append([]models.Assignment(nil), existing.Assignments...),
		Conflicts:     append([]models.Conflict(nil), existing.Conflicts...),
		Configuration: existing.Configuration,
	}

	for _, src := range sources {
		plan.SourceRooms = append(plan.SourceRooms, src.Code)
		ordered := OrderSessions(src.Sessions, table)
		assignments, conflicts := o.Assigner.Assign(src.Code, ordered, availability, prior)
		for _, a := range assignments {
			prior.Add(a.Room.Code, a.Session.Slot)
			plan.Assignments = append(plan.Assignments, a)
		}
		plan.Conflicts = append(plan.Conflicts, conflicts...)
	}

	o.finalize(plan)
	return plan
}

func (o Orchestrator) newPlan(sources []SourceRoom, cfg models.PlanConfiguration) *models.Plan {
	plan := &models.Plan{
		GeneratedAt:   o.now(),
		Configuration: cfg,
	}
	for _, src := range sources {
		plan.SourceRooms = append(plan.SourceRooms, src.Code)
	}
	return plan
}

func (o Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Orchestrator) finalize(plan *models.Plan) {
	plan.RoomsUsed = distinctRooms(plan.Assignments)
	plan.Statistics = computeStatistics(plan)
	plan.IsValid = Validate(o.Policy, plan)
}

// Validate judges a plan under the given policy. An empty plan (nothing to
// reorganize) is valid under both policies: "nothing to do" is not failure.
func Validate(policy ValidityPolicy, plan *models.Plan) bool {
	if plan.Empty() {
		return true
	}
	if policy == ValidityStrict {
		return len(plan.Conflicts) == 0
	}

	assigned := len(plan.Assignments)
	if assigned == 0 {
		return false
	}
	critical := 0
	for _, c := range plan.Conflicts {
		if c.Reason == models.ReasonNoCandidates {
			critical++
		}
	}
	return float64(assigned)/float64(assigned+critical) >= 0.5
}

func computeStatistics(plan *models.Plan) models.PlanStatistics {
	stats := models.PlanStatistics{
		Assigned:  len(plan.Assignments),
		Conflicts: len(plan.Conflicts),
		RoomsUsed: len(plan.RoomsUsed),
	}
	if stats.Assigned > 0 {
		sum := 0
		for _, a := range plan.Assignments {
			sum += a.Score
		}
		stats.MeanScore = float64(sum) / float64(stats.Assigned)
	}
	if total := stats.Assigned + stats.Conflicts; total > 0 {
		stats.SuccessRate = float64(stats.Assigned) / float64(total) * 100
	}
	stats.BySource = computeSourceStatistics(plan)
	return stats
}

// computeSourceStatistics tallies outcomes per source room, one entry per
// source in plan order, zero-count sources included.
func computeSourceStatistics(plan *models.Plan) []models.SourceStatistics {
	assigned := make(map[string]int, len(plan.SourceRooms))
	conflicted := make(map[string]int, len(plan.SourceRooms))
	for _, a := range plan.Assignments {
		assigned[a.SourceRoom]++
	}
	for _, c := range plan.Conflicts {
		conflicted[c.SourceRoom]++
	}

	out := make([]models.SourceStatistics, 0, len(plan.SourceRooms))
	for _, room := range plan.SourceRooms {
		entry := models.SourceStatistics{
			Room:      room,
			Assigned:  assigned[room],
			Conflicts: conflicted[room],
		}
		if total := entry.Assigned + entry.Conflicts; total > 0 {
			entry.SuccessRate = float64(entry.Assigned) / float64(total) * 100
		}
		out = append(out, entry)
	}
	return out
}

// distinctRooms returns destination room codes in first-use order. Sets are
// always serialized as ordered lists.
func distinctRooms(assignments []models.Assignment) []string {
	seen := make(map[string]struct{}, len(assignments))
	var rooms []string
	for _, a := range assignments {
		if _, ok := seen[a.Room.Code]; !ok {
			seen[a.Room.Code] = struct{}{}
			rooms = append(rooms, a.Room.Code)
		}
	}
	return rooms
}
