package models

import (
	"fmt"

	appErrors "github.com/campus-ops/reflow-api/pkg/errors"
)

// Weekday is the two-letter day code used across all interfaces.
type Weekday string

const (
	Monday    Weekday = "MO"
	Tuesday   Weekday = "TU"
	Wednesday Weekday = "WE"
	Thursday  Weekday = "TH"
	Friday    Weekday = "FR"
	Saturday  Weekday = "SA"
	Sunday    Weekday = "SU"
)

// Operating day bounds: rooms can only be scheduled inside this daily window.
const (
	OperatingDayStart = "07:00"
	OperatingDayEnd   = "23:00"
)

// Weekdays returns the seven day codes in week order.
func Weekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// ValidWeekday reports whether d is one of the seven known codes.
func ValidWeekday(d Weekday) bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	}
	return false
}

// OriginKind tags where an occupied interval came from.
type OriginKind string

const (
	OriginCourse      OriginKind = "COURSE"
	OriginNonTeaching OriginKind = "NON_TEACHING"
	OriginRoomHold    OriginKind = "ROOM_HOLD"
)

// ClockMinutes converts an "HH:MM" clock string to minutes since midnight.
// Malformed values are a caller contract violation and fail fast. All five
// positions are checked: no spaces, no single-digit hours, no trailing junk.
func ClockMinutes(raw string) (int, error) {
	if len(raw) != 5 || raw[2] != ':' ||
		!isDigit(raw[0]) || !isDigit(raw[1]) || !isDigit(raw[3]) || !isDigit(raw[4]) {
		return 0, appErrors.Clone(appErrors.ErrTimeFormat, fmt.Sprintf("malformed time %q, want HH:MM", raw))
	}
	h := int(raw[0]-'0')*10 + int(raw[1]-'0')
	m := int(raw[3]-'0')*10 + int(raw[4]-'0')
	if h > 23 || m > 59 {
		return 0, appErrors.Clone(appErrors.ErrTimeFormat, fmt.Sprintf("time %q out of range", raw))
	}
	return h*60 + m, nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// WeeklySlot is a recurring weekly time range on one weekday.
// Start and End are zero-padded "HH:MM" strings within the same day.
type WeeklySlot struct {
	Day   Weekday `json:"day"`
	Start string  `json:"start"`
	End   string  `json:"end"`
}

// Validate checks day code, time formats and range orientation.
func (s WeeklySlot) Validate() error {
	if !ValidWeekday(s.Day) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown weekday code %q", s.Day))
	}
	start, err := ClockMinutes(s.Start)
	if err != nil {
		return err
	}
	end, err := ClockMinutes(s.End)
	if err != nil {
		return err
	}
	if start >= end {
		return appErrors.Clone(appErrors.ErrTimeFormat, fmt.Sprintf("inverted range %s-%s", s.Start, s.End))
	}
	return nil
}

// Minutes returns the slot bounds in minutes since midnight.
// Callers are expected to have validated the slot first.
func (s WeeklySlot) Minutes() (start, end int) {
	start, _ = ClockMinutes(s.Start)
	end, _ = ClockMinutes(s.End)
	return start, end
}

// Overlaps reports whether two slots share any time on the same weekday.
func (s WeeklySlot) Overlaps(o WeeklySlot) bool {
	if s.Day != o.Day {
		return false
	}
	aStart, aEnd := s.Minutes()
	bStart, bEnd := o.Minutes()
	return aStart < bEnd && bStart < aEnd
}

// Contains reports whether s fully covers o on the same weekday.
func (s WeeklySlot) Contains(o WeeklySlot) bool {
	if s.Day != o.Day {
		return false
	}
	aStart, aEnd := s.Minutes()
	bStart, bEnd := o.Minutes()
	return aStart <= bStart && aEnd >= bEnd
}

func (s WeeklySlot) String() string {
	return fmt.Sprintf("%s %s-%s", s.Day, s.Start, s.End)
}

// OccupiedInterval is a weekly slot claimed on a room by some origin.
type OccupiedInterval struct {
	Slot   WeeklySlot `json:"slot"`
	Origin OriginKind `json:"origin"`

	CourseCode       string `json:"course_code,omitempty"`
	CourseName       string `json:"course_name,omitempty"`
	Program          string `json:"program,omitempty"`
	Instructor       string `json:"instructor,omitempty"`
	RequiredCapacity int    `json:"required_capacity,omitempty"`
}

// FreeWindow is a weekly slot on a room with no occupied interval.
type FreeWindow struct {
	Slot WeeklySlot `json:"slot"`
}

// RoomOccupancy pairs a room with everything claimed on it for a period.
type RoomOccupancy struct {
	Room     Room               `json:"room"`
	Occupied []OccupiedInterval `json:"occupied"`
}

// RoomAvailability pairs a room with its derived free windows, ordered by
// week order then start time.
type RoomAvailability struct {
	Room    Room         `json:"room"`
	Windows []FreeWindow `json:"windows"`
}
