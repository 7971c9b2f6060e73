package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/reflow-api/internal/models"
)

func newRoomRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func roomFilter() models.RoomFilter {
	return models.RoomFilter{
		CampusCode:    "14",
		PavilionCodes: []string{"3", "4"},
		Year:          "2025",
		Term:          "2",
	}
}

func TestRoomRepositoryListOccupancies(t *testing.T) {
	db, mock, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	rows := sqlmock.NewRows([]string{"code", "name", "capacity", "course_blocks", "non_teaching_blocks", "room_hold_blocks"}).
		AddRow("2101106", "Aula 106", 40, "MO-08:00-10:00;MO-12:00-13:00", nil, "FR-18:00-20:00").
		AddRow("2101107", "Aula 107", 60, nil, "TU-09:00-11:00", nil)

	mock.ExpectQuery("SELECT(?s:.+)FROM rooms r(?s:.+)JOIN pavilions p ON r.pavilion_code = p.code").
		WithArgs("2025", "2", "2025", "2", "2025", "2", "2025", "2", "14", "3", "4").
		WillReturnRows(rows)

	occupancies, err := repo.ListOccupancies(context.Background(), roomFilter())
	require.NoError(t, err)
	require.Len(t, occupancies, 2)

	first := occupancies[0]
	assert.Equal(t, "2101106", first.Room.Code)
	assert.Equal(t, 40, first.Room.Capacity)
	require.Len(t, first.Occupied, 3)
	assert.Equal(t, models.OriginCourse, first.Occupied[0].Origin)
	assert.Equal(t, models.WeeklySlot{Day: models.Monday, Start: "08:00", End: "10:00"}, first.Occupied[0].Slot)
	assert.Equal(t, models.OriginRoomHold, first.Occupied[2].Origin)

	second := occupancies[1]
	require.Len(t, second.Occupied, 1)
	assert.Equal(t, models.OriginNonTeaching, second.Occupied[0].Origin)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryListOccupanciesRejectsEmptyPavilions(t *testing.T) {
	db, _, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	_, err := repo.ListOccupancies(context.Background(), models.RoomFilter{CampusCode: "14"})
	assert.Error(t, err)
}

func TestRoomRepositoryListOccupanciesMalformedBlock(t *testing.T) {
	db, mock, cleanup := newRoomRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	rows := sqlmock.NewRows([]string{"code", "name", "capacity", "course_blocks", "non_teaching_blocks", "room_hold_blocks"}).
		AddRow("2101106", "Aula 106", 40, "MO-08:00", nil, nil)
	mock.ExpectQuery("SELECT(?s:.+)FROM rooms r").WillReturnRows(rows)

	_, err := repo.ListOccupancies(context.Background(), roomFilter())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed slot block")
}

func TestParseSlotBlocks(t *testing.T) {
	intervals, err := parseSlotBlocks("", models.OriginCourse)
	require.NoError(t, err)
	assert.Empty(t, intervals)

	intervals, err = parseSlotBlocks("WE-14:00-16:00;;SA-08:00-09:00", models.OriginCourse)
	require.NoError(t, err)
	require.Len(t, intervals, 2)
	assert.Equal(t, models.Wednesday, intervals[0].Slot.Day)
	assert.Equal(t, models.Saturday, intervals[1].Slot.Day)

	_, err = parseSlotBlocks("XX-08:00-09:00", models.OriginCourse)
	assert.Error(t, err)
}
