package domain

// Slot дискретный интервал в ответе доступности
type Slot struct {
	Window                    TimeWindow
	Available                 bool
	ConflictingReservationID  *int64
	RequiresSkillVerification bool
	BlockingGates             []string
}
