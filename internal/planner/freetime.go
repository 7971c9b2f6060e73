package planner

import (
	"sort"

	"github.com/campus-ops/reflow-api/internal/models"
)

// ComputeFreeWindows derives, per room and weekday, the complement of the
// occupied intervals within the operating day. For every room and weekday the
// returned windows and the input intervals exactly partition
// [OperatingDayStart, OperatingDayEnd): no gaps, no overlaps, zero-length
// windows omitted. Rooms come back ordered by display name then code so
// downstream iteration order is stable.
//
// The computation is pure and cheap; results are derived fresh on every call
// rather than cached.
func ComputeFreeWindows(rooms []models.RoomOccupancy) ([]models.RoomAvailability, error) {
	out := make([]models.RoomAvailability, 0, len(rooms))

	for _, ro := range rooms {
		for _, occ := range ro.Occupied {
			if err := occ.Slot.Validate(); err != nil {
				return nil, err
			}
		}

		byDay := make(map[models.Weekday][]models.WeeklySlot, 7)
		for _, occ := range ro.Occupied {
			byDay[occ.Slot.Day] = append(byDay[occ.Slot.Day], occ.Slot)
		}

		avail := models.RoomAvailability{Room: ro.Room}
		for _, day := range models.Weekdays() {
			slots := byDay[day]
			sort.Slice(slots, func(i, j int) bool {
				if slots[i].Start != slots[j].Start {
					return slots[i].Start < slots[j].Start
				}
				return slots[i].End < slots[j].End
			})

			// Sweep forward from the start of the operating day. The cursor
			// only advances, so overlapping or back-to-back intervals
			// collapse naturally.
			cursor := models.OperatingDayStart
			for _, slot := range slots {
				if cursor < slot.Start {
					avail.Windows = append(avail.Windows, models.FreeWindow{
						Slot: models.WeeklySlot{Day: day, Start: cursor, End: slot.Start},
					})
				}
				if slot.End > cursor {
					cursor = slot.End
				}
			}
			if cursor < models.OperatingDayEnd {
				avail.Windows = append(avail.Windows, models.FreeWindow{
					Slot: models.WeeklySlot{Day: day, Start: cursor, End: models.OperatingDayEnd},
				})
			}
		}
		out = append(out, avail)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Room.Name != out[j].Room.Name {
			return out[i].Room.Name < out[j].Room.Name
		}
		return out[i].Room.Code < out[j].Room.Code
	})
	return out, nil
}
