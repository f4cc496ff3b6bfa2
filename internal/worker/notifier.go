package worker

import (
	"context"
	"encoding/json"
	"time"

	"roombook/internal/events"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Notification is a unit of outbound delivery work.
type Notification struct {
	Event     string
	Payload   events.BookingEventPayload
	Attempts  int
	CreatedAt time.Time
}

// Sender delivers a notification to an external channel (WebSocket hub,
// email gateway, chat webhook).
type Sender interface {
	Send(ctx context.Context, event string, payload events.BookingEventPayload) error
}

// NotifierWorker fans booking events out to a Sender. Delivery is
// best-effort: the queue is bounded and overflow is dropped with a log
// line, never blocking the booking path.
type NotifierWorker struct {
	sender      Sender
	queue       chan Notification
	limiter     *rate.Limiter
	retryPolicy RetryPolicy
	logger      *zerolog.Logger
}

func NewNotifierWorker(sender Sender, queueSize int, rps float64, burst int, retry RetryPolicy, logger *zerolog.Logger) *NotifierWorker {
	if queueSize <= 0 {
		queueSize = 1000
	}
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = 1
	}
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 500 * time.Millisecond
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 10 * time.Second
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &NotifierWorker{
		sender:      sender,
		queue:       make(chan Notification, queueSize),
		limiter:     rate.NewLimiter(rate.Limit(rps), burst),
		retryPolicy: retry,
		logger:      logger,
	}
}

// Enqueue schedules a notification without blocking. Returns false when
// the queue is full and the notification was dropped.
func (w *NotifierWorker) Enqueue(n Notification) bool {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	select {
	case w.queue <- n:
		return true
	default:
		w.logger.Warn().
			Str("event", n.Event).
			Str("booking_id", n.Payload.BookingID).
			Msg("Notification queue full, dropping")
		return false
	}
}

// HandleEvent adapts the worker to the event bus handler signature.
func (w *NotifierWorker) HandleEvent(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		w.logger.Error().Err(err).Str("event", event.Type).Msg("Failed to decode event payload")
		return nil
	}
	w.Enqueue(Notification{Event: event.Type, Payload: payload, CreatedAt: event.CreatedAt})
	return nil
}

// Start runs the delivery loop until ctx is cancelled.
func (w *NotifierWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("Notifier worker started")
	defer w.logger.Info().Msg("Notifier worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-w.queue:
			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
			w.deliver(ctx, n)
		}
	}
}

func (w *NotifierWorker) deliver(ctx context.Context, n Notification) {
	for {
		err := w.sender.Send(ctx, n.Event, n.Payload)
		if err == nil {
			return
		}

		n.Attempts++
		if w.retryPolicy.Exhausted(n.Attempts) {
			w.logger.Error().Err(err).
				Str("event", n.Event).
				Str("booking_id", n.Payload.BookingID).
				Int("attempts", n.Attempts).
				Msg("Notification delivery failed, giving up")
			return
		}

		delay := w.retryPolicy.NextDelay(n.Attempts)
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}
