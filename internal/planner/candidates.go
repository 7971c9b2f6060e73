package planner

import (
	"sort"

	"github.com/campus-ops/reflow-api/internal/models"
)

// CandidateMatch pairs a destination room with its compatibility score and
// the free window that covers the session's slot.
type CandidateMatch struct {
	Room   models.Room      `json:"room"`
	Score  int              `json:"score"`
	Window models.WeeklySlot `json:"window"`
}

type occKey struct {
	room string
	day  models.Weekday
}

type span struct {
	start, end int
}

// OccupationSet tracks provisional ("fictitious") reservations of destination
// room time, keyed by room and weekday. It is owned by a single orchestration
// run and mutated only between assigner invocations.
type OccupationSet struct {
	claims map[occKey][]span
}

// NewOccupationSet returns an empty set.
func NewOccupationSet() *OccupationSet {
	return &OccupationSet{claims: make(map[occKey][]span)}
}

// Add records a provisional occupation of the room for the slot.
func (s *OccupationSet) Add(roomCode string, slot models.WeeklySlot) {
	start, end := slot.Minutes()
	key := occKey{room: roomCode, day: slot.Day}
	s.claims[key] = append(s.claims[key], span{start: start, end: end})
}

// Overlaps reports whether any recorded occupation of the room intersects
// the slot.
func (s *OccupationSet) Overlaps(roomCode string, slot models.WeeklySlot) bool {
	if s == nil {
		return false
	}
	start, end := slot.Minutes()
	for _, sp := range s.claims[occKey{room: roomCode, day: slot.Day}] {
		if start < sp.end && sp.start < end {
			return true
		}
	}
	return false
}

// Len returns the number of recorded spans.
func (s *OccupationSet) Len() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, spans := range s.claims {
		n += len(spans)
	}
	return n
}

// CandidateFinder locates destination rooms for a session.
type CandidateFinder struct {
	Policy ScorePolicy
}

// Find returns every room, other than the excluded source room, whose
// capacity meets the session's requirement and which holds a free window
// fully containing the session's slot, with no provisional occupation
// overlapping it. Results are scored and sorted best-first; ties keep
// discovery order.
func (f CandidateFinder) Find(
	session models.Session,
	availability []models.RoomAvailability,
	excludeRoom string,
	taken *OccupationSet,
) []CandidateMatch {
	var matches []CandidateMatch

	for _, avail := range availability {
		if avail.Room.Code == excludeRoom {
			continue
		}
		if session.RequiredCapacity > 0 && avail.Room.Capacity < session.RequiredCapacity {
			continue
		}
		if taken.Overlaps(avail.Room.Code, session.Slot) {
			continue
		}
		for _, win := range avail.Windows {
			if win.Slot.Contains(session.Slot) {
				matches = append(matches, CandidateMatch{
					Room:   avail.Room,
					Score:  Score(f.Policy, avail.Room.Capacity, session.RequiredCapacity),
					Window: win.Slot,
				})
				break
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}
