package domain

// Default values applied when a record leaves a field unset
const (
	DefaultQuantity                = 1
	DefaultGuestCount              = 1
	DefaultBufferMinutes           = 0
	DefaultCancellationNoticeHours = 24
	DefaultServiceDurationMinutes  = 60
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Built-in status names used by DefaultStatusMachine
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)
