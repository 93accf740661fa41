package domain

import (
	"fmt"
	"time"
)

// allowedTransitions граф переходов статусов бронирования
var allowedTransitions = map[ReservationStatus]map[ReservationStatus]bool{
	StatusPending:   {StatusApproved: true, StatusRejected: true, StatusCancelled: true},
	StatusApproved:  {StatusActive: true, StatusCancelled: true},
	StatusActive:    {StatusCompleted: true, StatusCancelled: true, StatusNoShow: true},
	StatusRejected:  {},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusNoShow:    {},
}

// HoldingStatuses статусы, при которых бронирование занимает оборудование
var HoldingStatuses = []ReservationStatus{StatusApproved, StatusActive}

// ParseStatus проверяет, что строка является известным статусом
func ParseStatus(s string) (ReservationStatus, error) {
	status := ReservationStatus(s)
	if _, ok := allowedTransitions[status]; !ok {
		return "", fmt.Errorf("unknown reservation status: %s", s)
	}
	return status, nil
}

// CanTransition returns true if from -> to is allowed
func CanTransition(from, to ReservationStatus) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// ValidateTransition возвращает ErrInvalidStateTransition для запрещенного перехода
func ValidateTransition(from, to ReservationStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, from, to)
	}
	return nil
}

// IsTerminalStatus returns true for statuses without outgoing transitions
func IsTerminalStatus(s ReservationStatus) bool {
	next, ok := allowedTransitions[s]
	return ok && len(next) == 0
}

// StatusChange описание перехода статуса для оптимистичного обновления
// Обновление применяется только если текущий статус равен From
type StatusChange struct {
	From          ReservationStatus
	To            ReservationStatus
	At            time.Time
	ActorID       int64
	ByAdmin       bool // заметки администратора пишутся в admin_notes, владельца в user_notes
	Reason        *string
	Notes         *string
	DepositAmount *float64
	SupervisorID  *int64
}
