package export

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"roombook/internal/database"
	"roombook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "export.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestExportOccupancy(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	logger := zerolog.Nop()

	date, err := models.ParseDate("2026-09-15")
	require.NoError(t, err)

	room := &models.Room{ID: "room-1", Name: "Blue Room", Capacity: 8, OwnerID: "owner-1", IsActive: true}
	require.NoError(t, db.CreateRoom(ctx, room))

	_, err = db.InsertSlots(ctx, []models.Slot{
		{ID: "slot-1", RoomID: "room-1", Date: date, StartTime: "09:00", EndTime: "10:00"},
		{ID: "slot-2", RoomID: "room-1", Date: date, StartTime: "10:00", EndTime: "11:00"},
	})
	require.NoError(t, err)

	booking := &models.Booking{
		UserID: "user-1", RoomID: "room-1",
		Date: date, StartTime: "09:00", EndTime: "10:00",
	}
	require.NoError(t, db.CreateBookingWithSlot(ctx, booking, "slot-1"))

	exporter := NewExcelExporter(db, t.TempDir(), &logger)
	path, err := exporter.ExportOccupancy(ctx, date, date.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.FileExists(t, path)
	assert.Contains(t, filepath.Base(path), "occupancy_2026-09-15_to_2026-09-16")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Period: 2026-09-15 - 2026-09-16", title)

	roomHeader, err := f.GetCellValue(sheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Blue Room (cap 8)", roomHeader)

	// First date column carries the booking.
	cell, err := f.GetCellValue(sheetName, "B3")
	require.NoError(t, err)
	assert.True(t, strings.Contains(cell, "09:00-10:00"), "expected booking in cell, got %q", cell)
	assert.True(t, strings.Contains(cell, "user-1"), "expected user in cell, got %q", cell)

	// Second date is empty.
	cell, err = f.GetCellValue(sheetName, "C3")
	require.NoError(t, err)
	assert.Empty(t, cell)
}

func TestExportOccupancyInvalidRange(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	logger := zerolog.Nop()
	exporter := NewExcelExporter(db, t.TempDir(), &logger)

	date, err := models.ParseDate("2026-09-15")
	require.NoError(t, err)

	_, err = exporter.ExportOccupancy(ctx, date, date.AddDate(0, 0, -1))
	assert.Error(t, err)
}
