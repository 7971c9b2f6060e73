package models

// DefaultTier is assigned to sessions with no explicit priority entry.
// Defaulting to the highest priority ensures a course is never silently
// dropped to the back of the queue.
const DefaultTier = 1

// WeightForTier derives the sort weight from a tier: tier 1 = weight 4.
func WeightForTier(tier int) int {
	return 5 - tier
}

// Session is one occupied interval of the room being vacated, the unit the
// engine relocates.
type Session struct {
	Slot   WeeklySlot `json:"slot"`
	Origin OriginKind `json:"origin"`

	CourseCode string `json:"course_code,omitempty"`
	CourseName string `json:"course_name,omitempty"`
	Program    string `json:"program,omitempty"`
	Instructor string `json:"instructor,omitempty"`

	// RequiredCapacity of 0 means the session does not constrain capacity.
	RequiredCapacity int `json:"required_capacity"`

	Tier   int `json:"tier"`
	Weight int `json:"weight"`
}

// PriorityTable maps course codes to tiers. It is supplied by the caller;
// there is no process-wide table.
type PriorityTable map[string]int

// Tier returns the tier for a course code, falling back to DefaultTier.
func (t PriorityTable) Tier(courseCode string) int {
	if t != nil {
		if tier, ok := t[courseCode]; ok {
			return tier
		}
	}
	return DefaultTier
}
