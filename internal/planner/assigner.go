package planner

import "github.com/campus-ops/reflow-api/internal/models"

// Assigner places ordered sessions into the best still-available candidate
// room. It is a single-pass greedy strategy with no backtracking: each
// decision is irrevocable, which keeps runs O(sessions x candidates) and
// makes every placement explainable.
type Assigner struct {
	Finder CandidateFinder
}

// Assign walks sessions in the given order. For each session it asks the
// finder for candidates (prior holds provisional occupations from earlier
// runs and is never mutated here); a session with no candidates becomes a
// NO_CANDIDATES conflict. Otherwise candidates are taken in score order and
// the first whose room/time is not already claimed within this run wins; if
// every candidate is claimed the session becomes an ALL_TAKEN conflict.
// Successful placements are recorded in an in-run occupation set so later
// sessions cannot double-book them.
func (a Assigner) Assign(
	sourceRoom string,
	sessions []models.Session,
	availability []models.RoomAvailability,
	prior *OccupationSet,
) ([]models.Assignment, []models.Conflict) {
	var assignments []models.Assignment
	var conflicts []models.Conflict
	inRun := NewOccupationSet()

	for _, session := range sessions {
		candidates := a.Finder.Find(session, availability, sourceRoom, prior)
		if len(candidates) == 0 {
			conflicts = append(conflicts, models.Conflict{
				SourceRoom: sourceRoom,
				Session:    session,
				Reason:     models.ReasonNoCandidates,
			})
			continue
		}

		placed := false
		for _, cand := range candidates {
			if inRun.Overlaps(cand.Room.Code, session.Slot) {
				continue
			}
			assignments = append(assignments, models.Assignment{
				SourceRoom: sourceRoom,
				Session:    session,
				Room:       cand.Room,
				Score:      cand.Score,
				Window:     cand.Window,
			})
			inRun.Add(cand.Room.Code, session.Slot)
			placed = true
			break
		}
		if !placed {
			conflicts = append(conflicts, models.Conflict{
				SourceRoom: sourceRoom,
				Session:    session,
				Reason:     models.ReasonAllTaken,
			})
		}
	}
	return assignments, conflicts
}
