package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/reflow-api/internal/models"
)

func availabilityFixture(t *testing.T, rooms ...models.RoomOccupancy) []models.RoomAvailability {
	t.Helper()
	avail, err := ComputeFreeWindows(rooms)
	require.NoError(t, err)
	return avail
}

func session(day models.Weekday, start, end string, required int) models.Session {
	return models.Session{
		Slot:             models.WeeklySlot{Day: day, Start: start, End: end},
		Origin:           models.OriginCourse,
		CourseCode:       "CS101",
		RequiredCapacity: required,
	}
}

func TestCandidateFinderExcludesSourceRoom(t *testing.T) {
	avail := availabilityFixture(t,
		models.RoomOccupancy{Room: models.Room{Code: "2101105", Name: "Origin", Capacity: 40}},
		models.RoomOccupancy{Room: models.Room{Code: "2101106", Name: "Other", Capacity: 40}},
	)

	finder := CandidateFinder{Policy: PolicyCapacityDiff}
	matches := finder.Find(session(models.Monday, "09:00", "11:00", 0), avail, "2101105", nil)
	require.Len(t, matches, 1)
	assert.Equal(t, "2101106", matches[0].Room.Code)
}

func TestCandidateFinderFiltersCapacity(t *testing.T) {
	avail := availabilityFixture(t,
		models.RoomOccupancy{Room: models.Room{Code: "A", Name: "Room A", Capacity: 40}},
		models.RoomOccupancy{Room: models.Room{Code: "B", Name: "Room B", Capacity: 35}},
	)

	finder := CandidateFinder{Policy: PolicyCapacityDiff}
	matches := finder.Find(session(models.Tuesday, "09:00", "10:30", 40), avail, "X", nil)
	require.Len(t, matches, 1)
	assert.Equal(t, "A", matches[0].Room.Code)
	assert.Equal(t, 100, matches[0].Score)

	// Requirement 0 never filters on capacity.
	matches = finder.Find(session(models.Tuesday, "09:00", "10:30", 0), avail, "X", nil)
	assert.Len(t, matches, 2)
}

func TestCandidateFinderRequiresFullWindowContainment(t *testing.T) {
	avail := availabilityFixture(t,
		models.RoomOccupancy{
			Room: models.Room{Code: "A", Name: "Room A", Capacity: 40},
			Occupied: []models.OccupiedInterval{
				occupied(models.Wednesday, "07:00", "14:30"),
				occupied(models.Wednesday, "15:00", "23:00"),
			},
		},
	)

	finder := CandidateFinder{Policy: PolicyCapacityDiff}
	// Free window is only 14:30-15:00; a 14:00-15:00 session does not fit.
	matches := finder.Find(session(models.Wednesday, "14:00", "15:00", 30), avail, "X", nil)
	assert.Empty(t, matches)
}

func TestCandidateFinderSkipsProvisionallyOccupiedRooms(t *testing.T) {
	avail := availabilityFixture(t,
		models.RoomOccupancy{Room: models.Room{Code: "A", Name: "Room A", Capacity: 40}},
		models.RoomOccupancy{Room: models.Room{Code: "B", Name: "Room B", Capacity: 40}},
	)

	taken := NewOccupationSet()
	taken.Add("A", models.WeeklySlot{Day: models.Monday, Start: "09:30", End: "10:30"})

	finder := CandidateFinder{Policy: PolicyCapacityDiff}
	matches := finder.Find(session(models.Monday, "09:00", "11:00", 0), avail, "X", taken)
	require.Len(t, matches, 1)
	assert.Equal(t, "B", matches[0].Room.Code)

	// Non-overlapping claims on the same room do not block.
	matches = finder.Find(session(models.Monday, "11:00", "12:00", 0), avail, "X", taken)
	assert.Len(t, matches, 2)
}

func TestCandidateFinderSortsByScoreKeepingDiscoveryOrderOnTies(t *testing.T) {
	avail := availabilityFixture(t,
		models.RoomOccupancy{Room: models.Room{Code: "C1", Name: "Alpha", Capacity: 80}},
		models.RoomOccupancy{Room: models.Room{Code: "C2", Name: "Beta", Capacity: 40}},
		models.RoomOccupancy{Room: models.Room{Code: "C3", Name: "Gamma", Capacity: 45}},
		models.RoomOccupancy{Room: models.Room{Code: "C4", Name: "Delta", Capacity: 45}},
	)

	finder := CandidateFinder{Policy: PolicyCapacityDiff}
	matches := finder.Find(session(models.Friday, "10:00", "12:00", 40), avail, "X", nil)
	require.Len(t, matches, 4)
	assert.Equal(t, "C2", matches[0].Room.Code) // exact, 100
	// Both 45-seat rooms score 90; availability order (by name) is kept.
	assert.Equal(t, "C4", matches[1].Room.Code) // Delta before Gamma
	assert.Equal(t, "C3", matches[2].Room.Code)
	assert.Equal(t, "C1", matches[3].Room.Code) // diff 40 -> 60
}

func TestOccupationSetOverlap(t *testing.T) {
	s := NewOccupationSet()
	s.Add("A", models.WeeklySlot{Day: models.Monday, Start: "10:00", End: "11:00"})

	assert.True(t, s.Overlaps("A", models.WeeklySlot{Day: models.Monday, Start: "10:30", End: "11:30"}))
	assert.False(t, s.Overlaps("A", models.WeeklySlot{Day: models.Monday, Start: "11:00", End: "12:00"}))
	assert.False(t, s.Overlaps("A", models.WeeklySlot{Day: models.Tuesday, Start: "10:00", End: "11:00"}))
	assert.False(t, s.Overlaps("B", models.WeeklySlot{Day: models.Monday, Start: "10:00", End: "11:00"}))
	assert.Equal(t, 1, s.Len())

	var nilSet *OccupationSet
	assert.False(t, nilSet.Overlaps("A", models.WeeklySlot{Day: models.Monday, Start: "10:00", End: "11:00"}))
}
