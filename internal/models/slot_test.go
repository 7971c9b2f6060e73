package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/campus-ops/reflow-api/pkg/errors"
)

func TestClockMinutes(t *testing.T) {
	for raw, want := range map[string]int{
		"07:00": 420,
		"00:00": 0,
		"23:59": 1439,
		"09:05": 545,
	} {
		got, err := ClockMinutes(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "9:00", "09:0", "0900", "ab:cd", "24:00", "12:60", "12-30", "12:300", "07:5a", " 7:00", "1a:00", "07 00"} {
		_, err := ClockMinutes(raw)
		require.Error(t, err, raw)
		assert.True(t, appErrors.Is(err, appErrors.ErrTimeFormat), raw)
	}
}

func TestWeeklySlotValidate(t *testing.T) {
	assert.NoError(t, WeeklySlot{Day: Monday, Start: "08:00", End: "10:00"}.Validate())

	assert.Error(t, WeeklySlot{Day: "XX", Start: "08:00", End: "10:00"}.Validate())
	assert.Error(t, WeeklySlot{Day: Monday, Start: "8:00", End: "10:00"}.Validate())
	assert.Error(t, WeeklySlot{Day: Monday, Start: "10:00", End: "08:00"}.Validate())
	assert.Error(t, WeeklySlot{Day: Monday, Start: "10:00", End: "10:00"}.Validate())
}

func TestWeeklySlotOverlapsAndContains(t *testing.T) {
	base := WeeklySlot{Day: Monday, Start: "09:00", End: "11:00"}

	assert.True(t, base.Overlaps(WeeklySlot{Day: Monday, Start: "10:00", End: "12:00"}))
	assert.False(t, base.Overlaps(WeeklySlot{Day: Monday, Start: "11:00", End: "12:00"}), "touching edges do not overlap")
	assert.False(t, base.Overlaps(WeeklySlot{Day: Tuesday, Start: "09:00", End: "11:00"}))

	assert.True(t, base.Contains(WeeklySlot{Day: Monday, Start: "09:00", End: "11:00"}))
	assert.True(t, base.Contains(WeeklySlot{Day: Monday, Start: "09:30", End: "10:30"}))
	assert.False(t, base.Contains(WeeklySlot{Day: Monday, Start: "08:30", End: "10:00"}))
	assert.False(t, base.Contains(WeeklySlot{Day: Tuesday, Start: "09:30", End: "10:30"}))
}

func TestRoomPavilion(t *testing.T) {
	assert.Equal(t, "21", Room{Code: "2101105"}.Pavilion())
	assert.Equal(t, "N/A", Room{Code: "3"}.Pavilion())
	assert.Equal(t, "N/A", Room{}.Pavilion())
}

func TestPriorityTableTier(t *testing.T) {
	table := PriorityTable{"MAT201": 3}
	assert.Equal(t, 3, table.Tier("MAT201"))
	assert.Equal(t, DefaultTier, table.Tier("CS101"))

	var nilTable PriorityTable
	assert.Equal(t, DefaultTier, nilTable.Tier("CS101"))
	assert.Equal(t, 4, WeightForTier(DefaultTier))
}
