package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestNewTimeWindow(t *testing.T) {
	_, err := NewTimeWindow(at(10, 0), at(10, 0))
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = NewTimeWindow(at(11, 0), at(10, 0))
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	w, err := NewTimeWindow(at(10, 0), at(12, 30))
	require.NoError(t, err)
	assert.Equal(t, 2.5, w.Hours())
}

func TestTimeWindow_Overlaps(t *testing.T) {
	base := TimeWindow{Start: at(10, 0), End: at(11, 0)}

	tests := []struct {
		name  string
		other TimeWindow
		want  bool
	}{
		{"partial overlap", TimeWindow{Start: at(10, 30), End: at(11, 30)}, true},
		{"contained", TimeWindow{Start: at(10, 15), End: at(10, 45)}, true},
		{"containing", TimeWindow{Start: at(9, 0), End: at(12, 0)}, true},
		{"touching end", TimeWindow{Start: at(11, 0), End: at(12, 0)}, false},
		{"touching start", TimeWindow{Start: at(9, 0), End: at(10, 0)}, false},
		{"disjoint", TimeWindow{Start: at(13, 0), End: at(14, 0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base))
		})
	}
}
