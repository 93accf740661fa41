package domain

import "time"

// TimeWindow полуоткрытый интервал [Start, End)
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// NewTimeWindow создает интервал, проверяя что End > Start
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if !end.After(start) {
		return TimeWindow{}, ErrInvalidTimeRange
	}
	return TimeWindow{Start: start, End: end}, nil
}

func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Hours длительность интервала в часах
func (w TimeWindow) Hours() float64 {
	return w.Duration().Hours()
}

// Overlaps проверяет пересечение интервалов
// Интервалы, касающиеся границей (A.End == B.Start), не пересекаются
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && w.End.After(other.Start)
}

// Shift сдвигает интервал на d
func (w TimeWindow) Shift(d time.Duration) TimeWindow {
	return TimeWindow{Start: w.Start.Add(d), End: w.End.Add(d)}
}

// CheckStart окно нельзя занять, если оно начинается раньше now
func (w TimeWindow) CheckStart(now time.Time) error {
	if w.Start.Before(now) {
		return ErrStartInPast
	}
	return nil
}
