package models

const (
	// StatusPending is declared for compatibility with imported data;
	// the engine itself only ever writes confirmed and cancelled.
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	// DateLayout is the canonical calendar-day format, no time-of-day component.
	DateLayout = "2006-01-02"

	// TimeLayout is the minute-granular slot boundary format. Zero-padded
	// fixed width, so lexicographic comparison matches chronological order.
	TimeLayout = "15:04"
)

const (
	// DefaultMaxBookingDays limits how far into the future a booking may be placed.
	DefaultMaxBookingDays = 365

	// DefaultTxTimeoutSeconds is the ceiling on a single booking transaction.
	DefaultTxTimeoutSeconds = 10

	// DefaultAvailabilityTTL lifetime of a cached per-room availability view, seconds.
	DefaultAvailabilityTTL = 300

	// NotifierQueueSize bounds the best-effort notification queue.
	NotifierQueueSize = 1000
)
