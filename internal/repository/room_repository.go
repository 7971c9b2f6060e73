package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/reflow-api/internal/models"
)

// RoomRepository reads the room catalog and its weekly occupancy.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

type roomOccupancyRow struct {
	Code           string         `db:"code"`
	Name           string         `db:"name"`
	Capacity       int            `db:"capacity"`
	CourseBlocks   sql.NullString `db:"course_blocks"`
	NonTeaching    sql.NullString `db:"non_teaching_blocks"`
	RoomHoldBlocks sql.NullString `db:"room_hold_blocks"`
}

// ListOccupancies returns every room in the filter scope together with its
// occupied intervals for the academic period. Slot triples are aggregated
// per origin as semicolon-separated "DAY-HH:MM-HH:MM" blocks so the whole
// catalog loads in a single round trip.
func (r *RoomRepository) ListOccupancies(ctx context.Context, filter models.RoomFilter) ([]models.RoomOccupancy, error) {
	if len(filter.PavilionCodes) == 0 {
		return nil, fmt.Errorf("at least one pavilion code is required")
	}

	holdDateClause := ""
	if filter.ActiveHoldsOnly {
		holdDateClause = " AND h.hold_date >= CURRENT_DATE"
	}
	excludeClause := ""
	if len(filter.ExcludedRoomCodes) > 0 {
		excludeClause = " AND r.code NOT IN (:excluded)"
	}

	query := `
SELECT
    r.code,
    r.name,
    r.capacity,
    (
        SELECT string_agg(o.day_code || '-' || o.start_time || '-' || o.end_time, ';')
        FROM course_offerings o
        WHERE o.room_code = r.code AND o.year = :year AND o.term = :term
    ) AS course_blocks,
    (
        SELECT string_agg(s.day_code || '-' || s.start_time || '-' || s.end_time, ';')
        FROM non_teaching_slots s
        JOIN non_teaching_loads l ON s.load_id = l.id
        WHERE l.room_code = r.code AND l.year = :year AND l.term = :term
    ) AS non_teaching_blocks,
    (
        SELECT string_agg(h.day_code || '-' || h.start_time || '-' || h.end_time, ';')
        FROM room_holds h
        WHERE h.room_code = r.code
          AND h.hold_date BETWEEN
              (SELECT start_date FROM terms WHERE year = :year AND term = :term)
              AND (SELECT end_date FROM terms WHERE year = :year AND term = :term)` + holdDateClause + `
    ) AS room_hold_blocks
FROM rooms r
JOIN pavilions p ON r.pavilion_code = p.code
WHERE p.campus_code = :campus
  AND r.pavilion_code IN (:pavilions)
  AND r.capacity >= 0
  AND r.active
  AND r.code ~ '^[0-9]+$'` + excludeClause + `
ORDER BY r.name ASC, r.code ASC`

	args := map[string]interface{}{
		"year":      filter.Year,
		"term":      filter.Term,
		"campus":    filter.CampusCode,
		"pavilions": filter.PavilionCodes,
	}
	if len(filter.ExcludedRoomCodes) > 0 {
		args["excluded"] = filter.ExcludedRoomCodes
	}

	bound, params, err := sqlx.Named(query, args)
	if err != nil {
		return nil, fmt.Errorf("bind room catalog query: %w", err)
	}
	bound, params, err = sqlx.In(bound, params...)
	if err != nil {
		return nil, fmt.Errorf("expand room catalog filters: %w", err)
	}
	bound = r.db.Rebind(bound)

	var rows []roomOccupancyRow
	if err := r.db.SelectContext(ctx, &rows, bound, params...); err != nil {
		return nil, fmt.Errorf("list room occupancies: %w", err)
	}

	occupancies := make([]models.RoomOccupancy, 0, len(rows))
	for _, row := range rows {
		occ := models.RoomOccupancy{
			Room: models.Room{Code: row.Code, Name: row.Name, Capacity: row.Capacity},
		}
		for _, parsed := range []struct {
			blocks sql.NullString
			origin models.OriginKind
		}{
			{row.CourseBlocks, models.OriginCourse},
			{row.NonTeaching, models.OriginNonTeaching},
			{row.RoomHoldBlocks, models.OriginRoomHold},
		} {
			intervals, err := parseSlotBlocks(parsed.blocks.String, parsed.origin)
			if err != nil {
				return nil, fmt.Errorf("room %s: %w", row.Code, err)
			}
			occ.Occupied = append(occ.Occupied, intervals...)
		}
		occupancies = append(occupancies, occ)
	}
	return occupancies, nil
}

// parseSlotBlocks splits a "DAY-HH:MM-HH:MM;DAY-HH:MM-HH:MM" aggregate into
// occupied intervals. Empty and NULL aggregates yield no intervals;
// malformed triples are a data problem and surface as errors.
func parseSlotBlocks(raw string, origin models.OriginKind) ([]models.OccupiedInterval, error) {
	if raw == "" {
		return nil, nil
	}
	var intervals []models.OccupiedInterval
	for _, block := range strings.Split(raw, ";") {
		if block == "" {
			continue
		}
		parts := strings.SplitN(block, "-", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("malformed slot block %q", block)
		}
		slot := models.WeeklySlot{Day: models.Weekday(parts[0]), Start: parts[1], End: parts[2]}
		if err := slot.Validate(); err != nil {
			return nil, fmt.Errorf("slot block %q: %w", block, err)
		}
		intervals = append(intervals, models.OccupiedInterval{Slot: slot, Origin: origin})
	}
	return intervals, nil
}
