package service

import (
	"context"

	"roombook/internal/database"
	"roombook/internal/domain"
	"roombook/internal/models"

	"github.com/rs/zerolog"
)

var _ domain.RoomService = (*RoomService)(nil)

// RoomService is a thin registry over the room table, enough for the slot
// engine's existence, active-flag and ownership checks.
type RoomService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewRoomService(repo domain.Repository, logger *zerolog.Logger) *RoomService {
	return &RoomService{repo: repo, logger: logger}
}

func (s *RoomService) CreateRoom(ctx context.Context, room *models.Room) error {
	return s.repo.CreateRoom(ctx, room)
}

func (s *RoomService) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	return s.repo.GetRoom(ctx, id)
}

func (s *RoomService) ListActiveRooms(ctx context.Context) ([]*models.Room, error) {
	return s.repo.ListActiveRooms(ctx)
}

// DeactivateRoom takes a room out of service. Existing bookings stay intact;
// new bookings against the room fail with ErrRoomInactive.
func (s *RoomService) DeactivateRoom(ctx context.Context, id, userID, role string) error {
	room, err := s.repo.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	if room.OwnerID != userID && role != models.RoleAdmin {
		return database.ErrForbidden
	}
	return s.repo.DeactivateRoom(ctx, id)
}
