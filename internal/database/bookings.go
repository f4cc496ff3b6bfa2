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

const bookingColumns = `id, user_id, room_id, date, start_time, end_time, status, created_at, updated_at, version`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	b := &models.Booking{}
	var dateStr string
	err := row.Scan(
		&b.ID, &b.UserID, &b.RoomID, &dateStr, &b.StartTime, &b.EndTime,
		&b.Status, &b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}
	b.Date, err = time.Parse(models.DateLayout, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booking date %s: %w", dateStr, err)
	}
	return b, nil
}

// CreateBookingWithSlot atomically transitions one slot from free to booked
// and creates its confirmed booking. The whole check-then-set runs inside a
// single immediate write transaction: under concurrent invocations for the
// same slot exactly one commits, the rest observe ErrSlotAlreadyBooked or
// ErrConcurrentModification with no partial state.
func (db *DB) CreateBookingWithSlot(ctx context.Context, booking *models.Booking, slotID string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", mapTxError(ctx, err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 1. Read target slot inside the transaction.
	slot, err := scanSlot(tx.QueryRowContext(ctx,
		`SELECT `+slotColumns+` FROM slots WHERE id = ?`, slotID))
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSlotNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read slot in tx: %w", mapTxError(ctx, err))
	}

	// 2. Primary race check. Two concurrent requests for the same slot must
	// not both pass this.
	if slot.IsBooked {
		return ErrSlotAlreadyBooked
	}

	// 3. Insert the booking row.
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now()
	_, err = tx.ExecContext(ctx, `INSERT INTO bookings
        (id, user_id, room_id, date, start_time, end_time, status, created_at, updated_at, version)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		booking.ID, booking.UserID, booking.RoomID,
		booking.Date.Format(models.DateLayout),
		booking.StartTime, booking.EndTime, models.StatusConfirmed, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert booking in tx: %w", mapTxError(ctx, err))
	}

	// 4. Claim the slot. The is_booked guard backstops the check above.
	result, err := tx.ExecContext(ctx, `UPDATE slots
        SET is_booked = 1, booking_id = ?, version = version + 1, updated_at = ?
        WHERE id = ? AND is_booked = 0`,
		booking.ID, now, slotID)
	if err != nil {
		return fmt.Errorf("failed to claim slot in tx: %w", mapTxError(ctx, err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrSlotAlreadyBooked
	}

	slots, err := db.slotsByBookingTx(ctx, tx, booking.ID)
	if err != nil {
		return mapTxError(ctx, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", mapTxError(ctx, err))
	}

	booking.Status = models.StatusConfirmed
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1
	booking.Slots = slots
	return nil
}

// CancelBooking marks a booking cancelled and releases every slot that
// references it, under the same write-transaction primitive as booking so a
// cancel and a re-book of the same slot never interleave. The guarded status
// update makes concurrent cancels idempotent-safe: the loser sees
// ErrAlreadyCancelled.
func (db *DB) CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", mapTxError(ctx, err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	booking, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, bookingID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read booking in tx: %w", mapTxError(ctx, err))
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx, `UPDATE bookings
        SET status = ?, version = version + 1, updated_at = ?
        WHERE id = ? AND status != ?`,
		models.StatusCancelled, now, bookingID, models.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking in tx: %w", mapTxError(ctx, err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, ErrAlreadyCancelled
	}

	_, err = tx.ExecContext(ctx, `UPDATE slots
        SET is_booked = 0, booking_id = NULL, version = version + 1, updated_at = ?
        WHERE booking_id = ?`,
		now, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to release slots in tx: %w", mapTxError(ctx, err))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", mapTxError(ctx, err))
	}

	booking.Status = models.StatusCancelled
	booking.Version++
	booking.UpdatedAt = now
	return booking, nil
}

// GetBooking returns a booking enriched with its slots.
func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := scanBooking(db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	slots, err := db.GetBookingSlots(ctx, id)
	if err != nil {
		return nil, err
	}
	booking.Slots = slots
	return booking, nil
}

// ListUserBookingsOnDate returns a user's bookings with the given status on
// one calendar day. The policy evaluator feeds on this for overlap checks.
func (db *DB) ListUserBookingsOnDate(ctx context.Context, userID string, date time.Time, status string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE user_id = ? AND date = ? AND status = ? ORDER BY start_time`
	rows, err := db.QueryContext(ctx, query, userID, date.Format(models.DateLayout), status)
	if err != nil {
		return nil, fmt.Errorf("failed to list user bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (db *DB) ListUserBookings(ctx context.Context, userID string) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// ListRoomBookings returns confirmed bookings of a room, optionally bounded
// by an inclusive date range.
func (db *DB) ListRoomBookings(ctx context.Context, roomID string, startDate, endDate *time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE room_id = ? AND status = ?`
	args := []any{roomID, models.StatusConfirmed}

	if startDate != nil {
		query += ` AND date >= ?`
		args = append(args, startDate.Format(models.DateLayout))
	}
	if endDate != nil {
		query += ` AND date <= ?`
		args = append(args, endDate.Format(models.DateLayout))
	}
	query += ` ORDER BY date, start_time`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list room bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// GetDailyBookings groups a date range's confirmed bookings by day key
// (YYYY-MM-DD), for schedule exports.
func (db *DB) GetDailyBookings(ctx context.Context, startDate, endDate time.Time) (map[string][]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE date >= ? AND date <= ? AND status = ? ORDER BY date, start_time`
	rows, err := db.QueryContext(ctx, query,
		startDate.Format(models.DateLayout), endDate.Format(models.DateLayout),
		models.StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings by date range: %w", err)
	}
	defer rows.Close()

	daily := make(map[string][]*models.Booking)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		key := b.Date.Format(models.DateLayout)
		daily[key] = append(daily[key], b)
	}
	return daily, rows.Err()
}
