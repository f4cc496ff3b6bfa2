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

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	now := time.Now()
	query := `INSERT INTO users (id, name, email, role, max_booking_duration, can_book_multiple_rooms, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.Role,
		user.MaxBookingDuration, user.CanBookMultipleRooms, now, now)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := `SELECT id, name, email, role, max_booking_duration, can_book_multiple_rooms, created_at, updated_at
              FROM users WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.Role,
		&user.MaxBookingDuration, &user.CanBookMultipleRooms,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdateUserPolicy is written by the external permissions workflow; the
// booking engine itself only ever reads these attributes.
func (db *DB) UpdateUserPolicy(ctx context.Context, id string, maxBookingDuration int64, canBookMultipleRooms bool) error {
	query := `UPDATE users SET max_booking_duration = ?, can_book_multiple_rooms = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, maxBookingDuration, canBookMultipleRooms, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update user policy: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}
