package domain

import (
	"fmt"
	"time"
)

// RecurrenceFrequency частота повторения бронирования
type RecurrenceFrequency string

const (
	FrequencyDaily  RecurrenceFrequency = "daily"
	FrequencyWeekly RecurrenceFrequency = "weekly"
)

// RecurrencePattern правило повторения
// Должен быть задан Count или Until (или оба, тогда срабатывает первое ограничение)
type RecurrencePattern struct {
	Frequency RecurrenceFrequency `json:"frequency"`
	Interval  int                 `json:"interval"`
	Count     int                 `json:"count,omitempty"`
	Until     *time.Time          `json:"until,omitempty"`
}

func (p *RecurrencePattern) step() time.Duration {
	interval := p.Interval
	if interval <= 0 {
		interval = 1
	}
	switch p.Frequency {
	case FrequencyWeekly:
		return time.Duration(interval) * 7 * 24 * time.Hour
	default:
		return time.Duration(interval) * 24 * time.Hour
	}
}

// Validate проверяет корректность правила
func (p *RecurrencePattern) Validate() error {
	if p.Frequency != FrequencyDaily && p.Frequency != FrequencyWeekly {
		return fmt.Errorf("unsupported recurrence frequency: %q", p.Frequency)
	}
	if p.Interval < 0 {
		return fmt.Errorf("recurrence interval must not be negative")
	}
	if p.Count <= 0 && p.Until == nil {
		return fmt.Errorf("recurrence requires count or until")
	}
	return nil
}

// Expand разворачивает правило в список интервалов, начиная с first
// Первое вхождение всегда first. Если вхождений больше maxOccurrences, возвращается ошибка
func (p *RecurrencePattern) Expand(first TimeWindow, maxOccurrences int) ([]TimeWindow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	step := p.step()
	windows := make([]TimeWindow, 0)

	for i := 0; ; i++ {
		if p.Count > 0 && i >= p.Count {
			break
		}

		w := first.Shift(time.Duration(i) * step)
		if p.Until != nil && w.Start.After(*p.Until) {
			break
		}

		if len(windows) >= maxOccurrences {
			return nil, fmt.Errorf("recurrence expands to more than %d occurrences", maxOccurrences)
		}
		windows = append(windows, w)
	}

	return windows, nil
}
