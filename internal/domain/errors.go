package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound сущность (оборудование, бронирование, правило) не найдена
	ErrNotFound = errors.New("domain: not found")

	// ErrInvalidTimeRange конец интервала не позже начала
	ErrInvalidTimeRange = errors.New("domain: invalid time range")

	// ErrConflict пересечение с существующим бронированием
	ErrConflict = errors.New("domain: reservation conflict")

	// ErrSkillGateDenied пользователь не проходит блокирующие skill gates
	ErrSkillGateDenied = errors.New("domain: skill gate denied")

	// ErrInvalidStateTransition переход статуса не разрешен
	ErrInvalidStateTransition = errors.New("domain: invalid state transition")

	// ErrRuleConfiguration некорректно настроенное правило стоимости или gate
	ErrRuleConfiguration = errors.New("domain: rule configuration error")

	// ErrStartInPast начало бронирования раньше текущего момента
	ErrStartInPast = errors.New("domain: start time is in the past")

	// ErrEquipmentUnavailable оборудование offline или на обслуживании
	ErrEquipmentUnavailable = errors.New("domain: equipment is not bookable")

	// ErrPrerequisiteCycle добавление зависимости создает цикл в графе навыков
	ErrPrerequisiteCycle = errors.New("domain: skill prerequisite cycle")
)

// ConflictError описывает бронирование, с которым пересекается запрос
type ConflictError struct {
	ReservationID int64
	Window        TimeWindow
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicts with reservation id=%d (%s - %s)",
		e.ReservationID, e.Window.Start.Format(time.RFC3339), e.Window.End.Format(time.RFC3339))
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// SkillGateDeniedError содержит названия непройденных блокирующих gates
type SkillGateDeniedError struct {
	Gates []string
}

func (e *SkillGateDeniedError) Error() string {
	return fmt.Sprintf("skill gates not satisfied: %s", strings.Join(e.Gates, ", "))
}

func (e *SkillGateDeniedError) Unwrap() error {
	return ErrSkillGateDenied
}
