package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roombook/internal/models"

	"github.com/google/uuid"
)

const slotColumns = `id, room_id, date, start_time, end_time, is_booked, booking_id, version, created_at, updated_at`

func scanSlot(row interface{ Scan(...any) error }) (*models.Slot, error) {
	s := &models.Slot{}
	var dateStr string
	var bookingID sql.NullString
	err := row.Scan(
		&s.ID, &s.RoomID, &dateStr, &s.StartTime, &s.EndTime,
		&s.IsBooked, &bookingID, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Date, err = time.Parse(models.DateLayout, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse slot date %s: %w", dateStr, err)
	}
	s.BookingID = bookingID.String
	return s, nil
}

// InsertSlots bulk-inserts slot inventory. Slots that collide with an
// existing (room_id, date, start_time) row are silently skipped, so
// re-generating an overlapping range never duplicates or touches existing
// slots, booked ones included. Returns the number of newly inserted rows.
func (db *DB) InsertSlots(ctx context.Context, slots []models.Slot) (int, error) {
	if len(slots) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", mapTxError(ctx, err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO slots
        (id, room_id, date, start_time, end_time, is_booked, booking_id, version, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, 0, NULL, 1, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare slot insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	created := 0
	for _, s := range slots {
		id := s.ID
		if id == "" {
			id = uuid.NewString()
		}
		result, err := stmt.ExecContext(ctx, id, s.RoomID,
			s.Date.Format(models.DateLayout), s.StartTime, s.EndTime, now, now)
		if err != nil {
			return 0, fmt.Errorf("failed to insert slot: %w", mapTxError(ctx, err))
		}
		rows, _ := result.RowsAffected()
		created += int(rows)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit slot insert: %w", mapTxError(ctx, err))
	}
	return created, nil
}

func (db *DB) GetSlot(ctx context.Context, id string) (*models.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = ?`
	slot, err := scanSlot(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}
	return slot, nil
}

// SlotFilter narrows an availability listing. RoomID, StartTime and EndTime
// are optional; Date is required.
type SlotFilter struct {
	RoomID    string
	Date      time.Time
	StartTime string
	EndTime   string
}

// ListAvailableSlots returns unbooked slots matching the filter, ordered by
// room then start time. Plain read, no transaction.
func (db *DB) ListAvailableSlots(ctx context.Context, filter SlotFilter) ([]models.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE date = ? AND is_booked = 0`
	args := []any{filter.Date.Format(models.DateLayout)}

	if filter.RoomID != "" {
		query += ` AND room_id = ?`
		args = append(args, filter.RoomID)
	}
	if filter.StartTime != "" {
		query += ` AND start_time >= ?`
		args = append(args, filter.StartTime)
	}
	if filter.EndTime != "" {
		query += ` AND end_time <= ?`
		args = append(args, filter.EndTime)
	}
	query += ` ORDER BY room_id, start_time`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list available slots: %w", err)
	}
	defer rows.Close()

	var slots []models.Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, *s)
	}
	return slots, rows.Err()
}

// ListRoomSlots returns all slots of a room on a date, booked or not.
func (db *DB) ListRoomSlots(ctx context.Context, roomID string, date time.Time) ([]models.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE room_id = ? AND date = ? ORDER BY start_time`
	rows, err := db.QueryContext(ctx, query, roomID, date.Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to list room slots: %w", err)
	}
	defer rows.Close()

	var slots []models.Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, *s)
	}
	return slots, rows.Err()
}

// DeleteUnbookedSlots removes free slot inventory for a room in an inclusive
// date range. Booked slots are never deleted; they must be released first.
func (db *DB) DeleteUnbookedSlots(ctx context.Context, roomID string, startDate, endDate time.Time) (int64, error) {
	query := `DELETE FROM slots WHERE room_id = ? AND date >= ? AND date <= ? AND is_booked = 0`
	result, err := db.ExecContext(ctx, query, roomID,
		startDate.Format(models.DateLayout), endDate.Format(models.DateLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to delete slots: %w", err)
	}
	return result.RowsAffected()
}

func (db *DB) slotsByBookingTx(ctx context.Context, tx *sql.Tx, bookingID string) ([]models.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE booking_id = ? ORDER BY date, start_time`
	rows, err := tx.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query booking slots: %w", err)
	}
	defer rows.Close()

	var slots []models.Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, *s)
	}
	return slots, rows.Err()
}

// GetBookingSlots returns the slots back-referencing a booking.
func (db *DB) GetBookingSlots(ctx context.Context, bookingID string) ([]models.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE booking_id = ? ORDER BY date, start_time`
	rows, err := db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to query booking slots: %w", err)
	}
	defer rows.Close()

	var slots []models.Slot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		slots = append(slots, *s)
	}
	return slots, rows.Err()
}
