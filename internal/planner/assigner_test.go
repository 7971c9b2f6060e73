package planner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/reflow-api/internal/models"
)

func TestAssignerPrefersExactCapacityFit(t *testing.T) {
	avail := availabilityFixture(t,
		models.RoomOccupancy{Room: models.Room{Code: "A", Name: "Room A", Capacity: 40}},
		models.RoomOccupancy{Room: models.Room{Code: "B", Name: "Room B", Capacity: 35}},
	)

	a := Assigner{Finder: CandidateFinder{Policy: PolicyCapacityDiff}}
	assignments, conflicts := a.Assign("SRC", []models.Session{
		session(models.Tuesday, "09:00", "10:30", 40),
	}, avail, nil)

	require.Len(t, assignments, 1)
	assert.Empty(t, conflicts)
	assert.Equal(t, "A", assignments[0].Room.Code)
	assert.Equal(t, 100, assignments[0].Score)
	assert.Equal(t, "SRC", assignments[0].SourceRoom)
}

func TestAssignerReportsNoCandidates(t *testing.T) {
	avail := availabilityFixture(t,
		models.RoomOccupancy{Room: models.Room{Code: "A", Name: "Room A", Capacity: 25}},
	)

	a := Assigner{Finder: CandidateFinder{Policy: PolicyCapacityDiff}}
	assignments, conflicts := a.Assign("SRC", []models.Session{
		session(models.Monday, "09:00", "11:00", 50),
	}, avail, nil)

	assert.Empty(t, assignments)
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ReasonNoCandidates, conflicts[0].Reason)
	assert.Equal(t, "SRC", conflicts[0].SourceRoom)
	assert.Equal(t, 50, conflicts[0].Session.RequiredCapacity)
}

func TestAssignerReportsAllTakenWithinRun(t *testing.T) {
	avail := availabilityFixture(t,
		models.RoomOccupancy{Room: models.Room{Code: "A", Name: "Room A", Capacity: 30}},
	)

	a := Assigner{Finder: CandidateFinder{Policy: PolicyCapacityDiff}}
	assignments, conflicts := a.Assign("SRC", []models.Session{
		session(models.Monday, "09:00", "11:00", 30),
		session(models.Monday, "10:00", "12:00", 30),
	}, avail, nil)

	require.Len(t, assignments, 1)
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ReasonAllTaken, conflicts[0].Reason)
	assert.Equal(t, "10:00", conflicts[0].Session.Slot.Start)
}

func TestAssignerFallsBackToNextCandidate(t *testing.T) {
	avail := availabilityFixture(t,
		models.RoomOccupancy{Room: models.Room{Code: "A", Name: "Room A", Capacity: 30}},
		models.RoomOccupancy{Room: models.Room{Code: "B", Name: "Room B", Capacity: 35}},
	)

	a := Assigner{Finder: CandidateFinder{Policy: PolicyCapacityDiff}}
	assignments, conflicts := a.Assign("SRC", []models.Session{
		session(models.Monday, "09:00", "11:00", 30),
		session(models.Monday, "10:00", "12:00", 30),
	}, avail, nil)

	require.Len(t, assignments, 2)
	assert.Empty(t, conflicts)
	assert.Equal(t, "A", assignments[0].Room.Code)
	assert.Equal(t, "B", assignments[1].Room.Code)
}

func TestAssignerHonorsPriorOccupations(t *testing.T) {
	avail := availabilityFixture(t,
		models.RoomOccupancy{Room: models.Room{Code: "A", Name: "Room A", Capacity: 30}},
	)

	prior := NewOccupationSet()
	prior.Add("A", models.WeeklySlot{Day: models.Monday, Start: "09:00", End: "11:00"})

	a := Assigner{Finder: CandidateFinder{Policy: PolicyCapacityDiff}}
	assignments, conflicts := a.Assign("SRC", []models.Session{
		session(models.Monday, "10:00", "12:00", 30),
	}, avail, nil)
	require.Len(t, assignments, 1)

	// With the room claimed by a previous run the finder filters it out
	// entirely, so the outcome is NO_CANDIDATES rather than ALL_TAKEN.
	assignments, conflicts = a.Assign("SRC", []models.Session{
		session(models.Monday, "10:00", "12:00", 30),
	}, avail, prior)
	assert.Empty(t, assignments)
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ReasonNoCandidates, conflicts[0].Reason)
	assert.Equal(t, 1, prior.Len())
}

func TestAssignerNeverDoubleBooks(t *testing.T) {
	avail := availabilityFixture(t,
		models.RoomOccupancy{Room: models.Room{Code: "A", Name: "Room A", Capacity: 30}},
		models.RoomOccupancy{Room: models.Room{Code: "B", Name: "Room B", Capacity: 35}},
		models.RoomOccupancy{Room: models.Room{Code: "C", Name: "Room C", Capacity: 60}},
	)

	var sessions []models.Session
	for i := 0; i < 6; i++ {
		start := fmt.Sprintf("%02d:00", 8+i)
		end := fmt.Sprintf("%02d:00", 10+i)
		sessions = append(sessions, session(models.Monday, start, end, 30))
	}

	a := Assigner{Finder: CandidateFinder{Policy: PolicyCapacityDiff}}
	assignments, _ := a.Assign("SRC", sessions, avail, nil)

	claimed := NewOccupationSet()
	for _, asg := range assignments {
		assert.False(t, claimed.Overlaps(asg.Room.Code, asg.Session.Slot),
			"room %s double booked at %s", asg.Room.Code, asg.Session.Slot)
		claimed.Add(asg.Room.Code, asg.Session.Slot)
	}
}
