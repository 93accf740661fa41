package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveReservationOutcome(t *testing.T) {
	m := NewWithRegisterer("makerspace", prometheus.NewRegistry())

	m.ObserveReservationOutcome("approved")
	m.ObserveReservationOutcome("approved")
	m.ObserveReservationOutcome("conflict")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReservationOutcomes.WithLabelValues("makerspace", "approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReservationOutcomes.WithLabelValues("makerspace", "conflict")))
	assert.Equal(t, "makerspace", m.ServiceName())
}

func TestObserveReservationOutcome_NilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveReservationOutcome("approved") })
}
