package planner

import "github.com/campus-ops/reflow-api/internal/models"

// CatalogEntry lists every destination option for one session, best-first.
// Unlike an Assignment it decides nothing; it exists for manual review.
type CatalogEntry struct {
	SourceRoom string           `json:"source_room"`
	Session    models.Session   `json:"session"`
	Candidates []CandidateMatch `json:"candidates"`
}

// BuildCatalog evaluates every session of the source room against the room
// catalog and returns its full candidate list in processing order. No
// occupation set is involved: options are reported even when they would
// collide with each other.
func (o Orchestrator) BuildCatalog(
	source SourceRoom,
	availability []models.RoomAvailability,
	table models.PriorityTable,
) []CatalogEntry {
	ordered := OrderSessions(source.Sessions, table)
	entries := make([]CatalogEntry, 0, len(ordered))
	for _, session := range ordered {
		entries = append(entries, CatalogEntry{
			SourceRoom: source.Code,
			Session:    session,
			Candidates: o.Assigner.Finder.Find(session, availability, source.Code, nil),
		})
	}
	return entries
}
