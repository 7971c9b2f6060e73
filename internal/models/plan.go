package models

import "time"

// ConflictReason classifies why a session could not be placed.
type ConflictReason string

const (
	// ReasonNoCandidates: no room has a free window covering the slot with
	// sufficient capacity.
	ReasonNoCandidates ConflictReason = "NO_CANDIDATES"
	// ReasonAllTaken: candidate rooms existed but every one was already
	// claimed for an overlapping time in this run.
	ReasonAllTaken ConflictReason = "ALL_TAKEN"
	// ReasonCrossRoomOverlap: the placement collided with an assignment made
	// for an earlier source room in the same batch.
	ReasonCrossRoomOverlap ConflictReason = "CROSS_ROOM_OVERLAP"
)

// Assignment binds a session to exactly one destination room. Once created
// it reserves that room's time for the remainder of the run.
type Assignment struct {
	SourceRoom string     `json:"source_room"`
	Session    Session    `json:"session"`
	Room       Room       `json:"room"`
	Score      int        `json:"score"`
	Window     WeeklySlot `json:"window"`
}

// Conflict records a session that could not be bound to any room.
type Conflict struct {
	SourceRoom string         `json:"source_room"`
	Session    Session        `json:"session"`
	Reason     ConflictReason `json:"reason"`
}

// SourceStatistics breaks run outcomes down per vacated source room.
type SourceStatistics struct {
	Room        string  `json:"room"`
	Assigned    int     `json:"assigned"`
	Conflicts   int     `json:"conflicts"`
	SuccessRate float64 `json:"success_rate"`
}

// PlanStatistics aggregates outcomes of one orchestration run. BySource
// follows the plan's source room order, one entry per source room.
type PlanStatistics struct {
	Assigned    int                `json:"assigned"`
	Conflicts   int                `json:"conflicts"`
	RoomsUsed   int                `json:"rooms_used"`
	MeanScore   float64            `json:"mean_score"`
	SuccessRate float64            `json:"success_rate"`
	BySource    []SourceStatistics `json:"by_source,omitempty"`
}

// PlanConfiguration echoes the query scope a plan was generated under.
type PlanConfiguration struct {
	CampusCode     string   `json:"campus_code"`
	PavilionCodes  []string `json:"pavilion_codes"`
	Year           string   `json:"year"`
	Term           string   `json:"term"`
	ValidityPolicy string   `json:"validity_policy"`
}

// Plan is the complete output of one orchestration run. Immutable once
// returned; incremental runs append new assignments rather than mutate.
type Plan struct {
	ID            string            `json:"id"`
	SourceRooms   []string          `json:"source_rooms"`
	GeneratedAt   time.Time         `json:"generated_at"`
	IsValid       bool              `json:"is_valid"`
	Assignments   []Assignment      `json:"assignments"`
	Conflicts     []Conflict        `json:"conflicts"`
	RoomsUsed     []string          `json:"rooms_used"`
	Statistics    PlanStatistics    `json:"statistics"`
	Configuration PlanConfiguration `json:"configuration"`
}

// Empty reports whether the plan produced neither assignments nor conflicts,
// i.e. the source rooms had nothing to reorganize.
func (p *Plan) Empty() bool {
	return len(p.Assignments) == 0 && len(p.Conflicts) == 0
}
