package models

// Room is an immutable catalog entry for a schedulable room.
type Room struct {
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
	Capacity int    `db:"capacity" json:"capacity"`
}

// Pavilion derives the building code from the room identifier prefix.
// Used for filtering and display only.
func (r Room) Pavilion() string {
	if len(r.Code) < 2 {
		return "N/A"
	}
	return r.Code[:2]
}

// RoomFilter scopes catalog queries to one campus, a pavilion set and an
// academic period. Constructed fresh per call; never shared state.
type RoomFilter struct {
	CampusCode    string
	PavilionCodes []string
	Year          string
	Term          string

	// ActiveHoldsOnly limits ad-hoc room holds to present or future dates
	// when counting them as occupancy.
	ActiveHoldsOnly bool

	// ExcludedRoomCodes removes specific rooms from the catalog regardless
	// of the other criteria, e.g. rooms reserved by facilities.
	ExcludedRoomCodes []string
}
