package worker

import (
	"context"

	"roombook/internal/events"

	"github.com/rs/zerolog"
)

// LogSender is the default delivery channel: it writes each notification to
// the structured log. Real-time transports plug in behind the same Sender
// interface.
type LogSender struct {
	logger *zerolog.Logger
}

func NewLogSender(logger *zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, event string, payload events.BookingEventPayload) error {
	s.logger.Info().
		Str("event", event).
		Str("booking_id", payload.BookingID).
		Str("room_id", payload.RoomID).
		Str("user_id", payload.UserID).
		Str("date", payload.Date).
		Str("start_time", payload.StartTime).
		Str("end_time", payload.EndTime).
		Str("status", payload.Status).
		Msg("Booking notification")
	return nil
}
