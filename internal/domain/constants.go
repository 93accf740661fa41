package domain

// Default engine values
const (
	DefaultSlotMinutes              = 60
	DefaultMaxDurationHours         = 24
	DefaultMaxAvailabilityDays      = 31
	DefaultMaxRecurrenceOccurrences = 52
	DefaultAutoApprovalThreshold    = 100.0
)

// Business validation constants
const (
	MaxPurposeLength       = 1000
	MaxNotesLength         = 1000
	MaxReasonLength        = 500
	MaxJustificationLength = 1000
)
