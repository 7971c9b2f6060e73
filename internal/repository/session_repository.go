package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/reflow-api/internal/models"
)

// holdRequiredCapacity is assumed for holds and non-teaching activities,
// which carry no enrolment of their own.
const holdRequiredCapacity = 60

// SessionRepository reads the sessions occupying a single room, the units
// the engine relocates.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

type sessionRow struct {
	DayCode          string         `db:"day_code"`
	StartTime        string         `db:"start_time"`
	EndTime          string         `db:"end_time"`
	Origin           string         `db:"origin"`
	CourseCode       sql.NullString `db:"course_code"`
	CourseName       sql.NullString `db:"course_name"`
	Program          sql.NullString `db:"program"`
	Instructor       sql.NullString `db:"instructor"`
	RequiredCapacity sql.NullInt64  `db:"required_capacity"`
}

// ListByRoom returns every session claimed on the room for the period, from
// all three origins, ordered by day then start time. Course sessions carry
// full catalog metadata; holds and non-teaching activities carry a fixed
// capacity requirement and no course fields.
func (r *SessionRepository) ListByRoom(ctx context.Context, roomCode string, filter models.RoomFilter) ([]models.Session, error) {
	holdDateClause := ""
	if filter.ActiveHoldsOnly {
		holdDateClause = " AND h.hold_date >= CURRENT_DATE"
	}

	query := `
SELECT
    o.day_code, o.start_time, o.end_time,
    'COURSE' AS origin,
    o.course_code,
    e.name AS course_name,
    (
        SELECT sch.name
        FROM events e2
        JOIN event_packages ep ON e2.package_code = ep.code AND ep.year = $2 AND ep.term = $3
        JOIN study_plans pl ON ep.study_plan_code = pl.code
        JOIN schools sch ON pl.school_code = sch.code
        WHERE e2.code = o.course_code AND e2.year = $2 AND e2.term = $3
        LIMIT 1
    ) AS program,
    (
        SELECT p.last_name || ' ' || p.mother_last_name || ', ' || p.first_names
        FROM people p
        WHERE p.sap_code = o.instructor_sap_code
        LIMIT 1
    ) AS instructor,
    e.max_capacity AS required_capacity
FROM course_offerings o
LEFT JOIN events e ON e.code = o.course_code
WHERE o.room_code = $1 AND o.year = $2 AND o.term = $3

UNION ALL

SELECT
    s.day_code, s.start_time, s.end_time,
    'NON_TEACHING' AS origin,
    NULL, NULL, NULL, NULL,
    ` + fmt.Sprint(holdRequiredCapacity) + ` AS required_capacity
FROM non_teaching_slots s
JOIN non_teaching_loads l ON s.load_id = l.id
WHERE l.room_code = $1 AND l.year = $2 AND l.term = $3

UNION ALL

SELECT
    h.day_code, h.start_time, h.end_time,
    'ROOM_HOLD' AS origin,
    NULL, NULL, NULL, NULL,
    ` + fmt.Sprint(holdRequiredCapacity) + ` AS required_capacity
FROM room_holds h
WHERE h.room_code = $1` + holdDateClause + `

ORDER BY day_code, start_time`

	var rows []sessionRow
	if err := r.db.SelectContext(ctx, &rows, query, roomCode, filter.Year, filter.Term); err != nil {
		return nil, fmt.Errorf("list sessions for room %s: %w", roomCode, err)
	}

	sessions := make([]models.Session, 0, len(rows))
	for _, row := range rows {
		slot := models.WeeklySlot{
			Day:   models.Weekday(row.DayCode),
			Start: row.StartTime,
			End:   row.EndTime,
		}
		if err := slot.Validate(); err != nil {
			return nil, fmt.Errorf("room %s session: %w", roomCode, err)
		}
		sessions = append(sessions, models.Session{
			Slot:             slot,
			Origin:           models.OriginKind(row.Origin),
			CourseCode:       row.CourseCode.String,
			CourseName:       row.CourseName.String,
			Program:          row.Program.String,
			Instructor:       row.Instructor.String,
			RequiredCapacity: int(row.RequiredCapacity.Int64),
		})
	}
	return sessions, nil
}
