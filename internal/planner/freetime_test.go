package planner

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/reflow-api/internal/models"
	appErrors "github.com/campus-ops/reflow-api/pkg/errors"
)

func occupied(day models.Weekday, start, end string) models.OccupiedInterval {
	return models.OccupiedInterval{
		Slot:   models.WeeklySlot{Day: day, Start: start, End: end},
		Origin: models.OriginCourse,
	}
}

func TestComputeFreeWindowsBasicSweep(t *testing.T) {
	rooms := []models.RoomOccupancy{
		{
			Room: models.Room{Code: "2101105", Name: "Lab A", Capacity: 40},
			Occupied: []models.OccupiedInterval{
				occupied(models.Monday, "08:00", "10:00"),
				occupied(models.Monday, "12:00", "13:00"),
			},
		},
	}

	avail, err := ComputeFreeWindows(rooms)
	require.NoError(t, err)
	require.Len(t, avail, 1)

	var monday []models.WeeklySlot
	for _, w := range avail[0].Windows {
		if w.Slot.Day == models.Monday {
			monday = append(monday, w.Slot)
		}
	}
	require.Len(t, monday, 3)
	assert.Equal(t, models.WeeklySlot{Day: models.Monday, Start: "07:00", End: "08:00"}, monday[0])
	assert.Equal(t, models.WeeklySlot{Day: models.Monday, Start: "10:00", End: "12:00"}, monday[1])
	assert.Equal(t, models.WeeklySlot{Day: models.Monday, Start: "13:00", End: "23:00"}, monday[2])
}

func TestComputeFreeWindowsEmptyRoomSpansWholeDay(t *testing.T) {
	avail, err := ComputeFreeWindows([]models.RoomOccupancy{
		{Room: models.Room{Code: "2101201", Name: "Aula 201", Capacity: 30}},
	})
	require.NoError(t, err)
	require.Len(t, avail[0].Windows, 7)
	for i, day := range models.Weekdays() {
		assert.Equal(t, models.WeeklySlot{Day: day, Start: "07:00", End: "23:00"}, avail[0].Windows[i].Slot)
	}
}

func TestComputeFreeWindowsCollapsesOverlaps(t *testing.T) {
	rooms := []models.RoomOccupancy{
		{
			Room: models.Room{Code: "2101105", Name: "Lab A", Capacity: 40},
			Occupied: []models.OccupiedInterval{
				occupied(models.Tuesday, "08:00", "11:00"),
				occupied(models.Tuesday, "09:00", "10:00"),
				occupied(models.Tuesday, "11:00", "12:30"),
			},
		},
	}

	avail, err := ComputeFreeWindows(rooms)
	require.NoError(t, err)

	var tuesday []models.WeeklySlot
	for _, w := range avail[0].Windows {
		if w.Slot.Day == models.Tuesday {
			tuesday = append(tuesday, w.Slot)
		}
	}
	require.Len(t, tuesday, 2)
	assert.Equal(t, "07:00", tuesday[0].Start)
	assert.Equal(t, "08:00", tuesday[0].End)
	assert.Equal(t, "12:30", tuesday[1].Start)
	assert.Equal(t, "23:00", tuesday[1].End)
}

// Free windows plus occupied intervals must exactly cover the operating day
// with no overlap and no gap, per room and weekday.
func TestComputeFreeWindowsPartitionInvariant(t *testing.T) {
	rooms := []models.RoomOccupancy{
		{
			Room: models.Room{Code: "2101105", Name: "Lab A", Capacity: 40},
			Occupied: []models.OccupiedInterval{
				occupied(models.Monday, "07:00", "09:00"),
				occupied(models.Monday, "09:00", "11:00"),
				occupied(models.Monday, "15:45", "18:15"),
				occupied(models.Friday, "22:00", "23:00"),
			},
		},
	}

	avail, err := ComputeFreeWindows(rooms)
	require.NoError(t, err)

	for _, day := range models.Weekdays() {
		var slots []models.WeeklySlot
		for _, occ := range rooms[0].Occupied {
			if occ.Slot.Day == day {
				slots = append(slots, occ.Slot)
			}
		}
		for _, w := range avail[0].Windows {
			if w.Slot.Day == day {
				slots = append(slots, w.Slot)
			}
		}

		covered := 0
		for _, s := range slots {
			start, end := s.Minutes()
			covered += end - start
			for _, o := range slots {
				if s != o {
					assert.False(t, s.Overlaps(o), "overlap between %s and %s", s, o)
				}
			}
		}
		dayStart, _ := models.ClockMinutes(models.OperatingDayStart)
		dayEnd, _ := models.ClockMinutes(models.OperatingDayEnd)
		assert.Equal(t, dayEnd-dayStart, covered, "day %s not fully covered", day)
	}
}

func TestComputeFreeWindowsOrderIndependent(t *testing.T) {
	base := []models.OccupiedInterval{
		occupied(models.Wednesday, "08:00", "09:30"),
		occupied(models.Wednesday, "09:30", "11:00"),
		occupied(models.Wednesday, "14:00", "16:00"),
		occupied(models.Thursday, "10:00", "12:00"),
	}

	reference, err := ComputeFreeWindows([]models.RoomOccupancy{
		{Room: models.Room{Code: "2101105", Name: "Lab A", Capacity: 40}, Occupied: base},
	})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := make([]models.OccupiedInterval, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		avail, err := ComputeFreeWindows([]models.RoomOccupancy{
			{Room: models.Room{Code: "2101105", Name: "Lab A", Capacity: 40}, Occupied: shuffled},
		})
		require.NoError(t, err)
		assert.Equal(t, reference, avail)
	}
}

func TestComputeFreeWindowsOrdersRoomsByNameThenCode(t *testing.T) {
	avail, err := ComputeFreeWindows([]models.RoomOccupancy{
		{Room: models.Room{Code: "2101301", Name: "Aula B", Capacity: 50}},
		{Room: models.Room{Code: "2101102", Name: "Aula A", Capacity: 30}},
		{Room: models.Room{Code: "2101101", Name: "Aula A", Capacity: 30}},
	})
	require.NoError(t, err)
	require.Len(t, avail, 3)
	assert.Equal(t, "2101101", avail[0].Room.Code)
	assert.Equal(t, "2101102", avail[1].Room.Code)
	assert.Equal(t, "2101301", avail[2].Room.Code)
}

func TestComputeFreeWindowsRejectsMalformedTimes(t *testing.T) {
	for _, start := range []string{"8h00", " 8:00", "07:5a"} {
		_, err := ComputeFreeWindows([]models.RoomOccupancy{
			{
				Room:     models.Room{Code: "2101105", Name: "Lab A", Capacity: 40},
				Occupied: []models.OccupiedInterval{occupied(models.Monday, start, "10:00")},
			},
		})
		require.Error(t, err, start)
		assert.True(t, appErrors.Is(err, appErrors.ErrTimeFormat), start)
	}
}
