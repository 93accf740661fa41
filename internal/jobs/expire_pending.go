package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/internal/service/reservations"
	"github.com/m04kA/makerspace-reservations/internal/service/reservations/models"
)

const expireBatchSize = 200

var expiredReason = "заявка не рассмотрена до начала бронирования"

// PendingExpirer отменяет pending бронирования, по которым не приняли решение
// до начала окна (плюс grace)
type PendingExpirer struct {
	reservations ReservationLister
	canceller    Canceller
	grace        time.Duration
	timeProvider TimeProvider
	logger       Logger
}

func NewPendingExpirer(reservations ReservationLister, canceller Canceller, grace time.Duration, logger Logger) *PendingExpirer {
	return &PendingExpirer{
		reservations: reservations,
		canceller:    canceller,
		grace:        grace,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Run обрабатывает одну пачку и возвращает число отмененных бронирований
func (e *PendingExpirer) Run(ctx context.Context) (int, error) {
	cutoff := e.timeProvider.Now().Add(-e.grace)
	status := domain.StatusPending

	stale, err := e.reservations.List(ctx, domain.ReservationFilter{
		Status: &status,
		To:     &cutoff,
		Limit:  expireBatchSize,
	})
	if err != nil {
		return 0, fmt.Errorf("PendingExpirer: list pending reservations: %w", err)
	}

	system := models.Actor{UserID: domain.SystemActorID, Role: domain.RoleAdmin}
	expired := 0
	for _, res := range stale {
		if !res.RequestedStart.Before(cutoff) {
			continue
		}

		_, err := e.canceller.Cancel(ctx, res.ID, system, &expiredReason)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, domain.ErrInvalidStateTransition), errors.Is(err, reservations.ErrConcurrentUpdate):
			// решение успели принять между выборкой и отменой
			e.logger.Info("PendingExpirer: reservation id=%d changed concurrently, skipped", res.ID)
		default:
			e.logger.Error("PendingExpirer: failed to cancel reservation id=%d: %v", res.ID, err)
		}
	}

	if expired > 0 {
		e.logger.Info("PendingExpirer: cancelled %d stale pending reservations", expired)
	}
	return expired, nil
}
