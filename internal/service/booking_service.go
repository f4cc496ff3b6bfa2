package service

import (
	"context"
	"errors"
	"time"

	"roombook/internal/database"
	"roombook/internal/domain"
	"roombook/internal/events"
	"roombook/internal/metrics"
	"roombook/internal/models"

	"github.com/rs/zerolog"
)

var _ domain.BookingService = (*BookingService)(nil)

// BookingService is the transaction and cancellation coordinator. It owns
// the whole booking lifecycle: policy evaluation, the atomic check-and-commit
// against the slot store, cache invalidation, and event emission. Cache and
// event failures after commit are best-effort and never unwind the booking.
type BookingService struct {
	repo           domain.Repository
	cache          domain.AvailabilityCache
	eventBus       domain.EventPublisher
	maxBookingDays int
	txTimeout      time.Duration
	logger         *zerolog.Logger
}

func NewBookingService(repo domain.Repository, cache domain.AvailabilityCache, eventBus domain.EventPublisher, maxBookingDays int, txTimeout time.Duration, logger *zerolog.Logger) *BookingService {
	if maxBookingDays <= 0 {
		maxBookingDays = models.DefaultMaxBookingDays
	}
	if txTimeout <= 0 {
		txTimeout = models.DefaultTxTimeoutSeconds * time.Second
	}
	return &BookingService{
		repo:           repo,
		cache:          cache,
		eventBus:       eventBus,
		maxBookingDays: maxBookingDays,
		txTimeout:      txTimeout,
		logger:         logger,
	}
}

// ValidateBookingDate enforces the forward booking horizon. The past-date
// check lives in the policy evaluator.
func (s *BookingService) ValidateBookingDate(date time.Time) error {
	maxDate := time.Now().AddDate(0, 0, s.maxBookingDays)
	if date.After(maxDate) {
		return database.ErrDateTooFar
	}
	return nil
}

// CreateBooking books exactly one slot for the user. Under arbitrary
// concurrent invocations for the same slot at most one call succeeds; the
// rest fail with ErrSlotAlreadyBooked or ErrConcurrentModification and must
// not leave partial state. Transient failures are retryable by the caller;
// the coordinator never retries internally.
func (s *BookingService) CreateBooking(ctx context.Context, userID, roomID, slotID string, date time.Time, startTime, endTime string) (*models.Booking, error) {
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, database.ErrRoomInactive
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.ValidateBookingDate(date); err != nil {
		return nil, err
	}

	existing, err := s.repo.ListUserBookingsOnDate(ctx, userID, date, models.StatusConfirmed)
	if err != nil {
		return nil, err
	}

	req := BookingRequest{
		UserID:    userID,
		RoomID:    roomID,
		SlotID:    slotID,
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
	}
	if err := EvaluateBooking(req, user, existing, time.Now()); err != nil {
		metrics.IncConflict(conflictReason(err))
		return nil, err
	}

	booking := &models.Booking{
		UserID:    userID,
		RoomID:    roomID,
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
		Status:    models.StatusConfirmed,
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	if err := s.repo.CreateBookingWithSlot(txCtx, booking, slotID); err != nil {
		if !database.IsRetryable(err) {
			metrics.IncConflict(conflictReason(err))
		}
		return nil, err
	}

	metrics.IncBookingCreated()
	s.invalidateAvailability(ctx, roomID, date)
	s.publishEvent(events.EventSlotBooked, booking, slotID)
	s.publishEvent(events.EventBookingCreated, booking, slotID)

	return booking, nil
}

// CancelBooking reverses a booking, releasing every slot it holds. Only the
// booking's owner or an admin may cancel, and only before the booked date
// has elapsed.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID, role string) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status == models.StatusCancelled {
		return nil, database.ErrAlreadyCancelled
	}

	if booking.UserID != userID && role != models.RoleAdmin {
		return nil, database.ErrForbidden
	}

	if booking.Date.Before(models.Midnight(time.Now())) {
		return nil, database.ErrPastCancellation
	}

	slotID := ""
	if len(booking.Slots) > 0 {
		slotID = booking.Slots[0].ID
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	cancelled, err := s.repo.CancelBooking(txCtx, bookingID)
	if err != nil {
		return nil, err
	}

	metrics.IncBookingCancelled()
	s.invalidateAvailability(ctx, booking.RoomID, booking.Date)
	s.publishEvent(events.EventSlotCancelled, cancelled, slotID)
	s.publishEvent(events.EventBookingCancelled, cancelled, slotID)

	return cancelled, nil
}

// GetBooking returns a booking visible to the requester: its owner, an
// admin, or the owner of the booked room.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID, role string) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.UserID == userID || role == models.RoleAdmin {
		return booking, nil
	}

	room, err := s.repo.GetRoom(ctx, booking.RoomID)
	if err != nil {
		return nil, err
	}
	if room.OwnerID != userID {
		return nil, database.ErrForbidden
	}
	return booking, nil
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID string) ([]*models.Booking, error) {
	return s.repo.ListUserBookings(ctx, userID)
}

// ListRoomBookings is restricted to the room owner and admins.
func (s *BookingService) ListRoomBookings(ctx context.Context, roomID, userID, role string, startDate, endDate *time.Time) ([]*models.Booking, error) {
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.OwnerID != userID && role != models.RoleAdmin {
		return nil, database.ErrForbidden
	}
	return s.repo.ListRoomBookings(ctx, roomID, startDate, endDate)
}

// invalidateAvailability drops the cached availability view after a commit.
// Failures are logged and ignored: reads degrade to the store.
func (s *BookingService) invalidateAvailability(ctx context.Context, roomID string, date time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, roomID, date); err != nil {
		s.logger.Error().Err(err).Str("room_id", roomID).Str("date", date.Format(models.DateLayout)).Msg("availability cache invalidation failed")
	}
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, slotID string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		RoomID:    booking.RoomID,
		UserID:    booking.UserID,
		SlotID:    slotID,
		Date:      booking.Date.Format(models.DateLayout),
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
		Status:    booking.Status,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}

func conflictReason(err error) string {
	switch {
	case errors.Is(err, database.ErrInvalidTimeRange):
		return "invalid_time_range"
	case errors.Is(err, database.ErrPastDate):
		return "past_date"
	case errors.Is(err, database.ErrDateTooFar):
		return "date_too_far"
	case errors.Is(err, database.ErrDurationLimit):
		return "duration_limit"
	case errors.Is(err, database.ErrUserTimeConflict):
		return "user_time_conflict"
	case errors.Is(err, database.ErrSlotAlreadyBooked):
		return "slot_already_booked"
	case errors.Is(err, database.ErrSlotNotFound):
		return "slot_not_found"
	default:
		return "other"
	}
}
