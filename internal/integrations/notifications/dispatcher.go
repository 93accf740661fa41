package notifications

import (
	"context"
	"sync"
	"time"
)

// Dispatcher асинхронно рассылает уведомления о событиях бронирований
// Каждое событие обрабатывается в отдельной горутине со своим таймаутом.
// Ошибки доставки только логируются и никогда не влияют на вызывающий код
type Dispatcher struct {
	repo    ReservationRepository
	sender  Sender
	timeout time.Duration
	log     Logger
	wg      sync.WaitGroup
}

// NewDispatcher создает новый диспетчер уведомлений
func NewDispatcher(repo ReservationRepository, sender Sender, timeout time.Duration, log Logger) *Dispatcher {
	return &Dispatcher{
		repo:    repo,
		sender:  sender,
		timeout: timeout,
		log:     log,
	}
}

// Notify ставит уведомление в отправку и сразу возвращает управление
func (d *Dispatcher) Notify(reservationID int64, event EventType) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error("Notify: panic while sending %s for reservation id=%d: %v", event, reservationID, r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.deliver(ctx, reservationID, event); err != nil {
			d.log.Warn("Notify: failed to send %s for reservation id=%d: %v", event, reservationID, err)
			return
		}
		d.log.Info("Notify: %s sent for reservation id=%d", event, reservationID)
	}()
}

// Wait дожидается завершения всех отправок (graceful shutdown)
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, reservationID int64, event EventType) error {
	res, err := d.repo.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}

	msg, err := BuildMessage(res, event)
	if err != nil {
		return err
	}

	return d.sender.Send(ctx, msg)
}
