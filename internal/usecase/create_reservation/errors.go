package create_reservation

import (
	"errors"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

var (
	// ErrEquipmentNotFound возвращается, когда оборудование не найдено в реестре
	ErrEquipmentNotFound = errors.New("create_reservation: equipment not found")

	// ErrEquipmentUnavailable возвращается, когда оборудование offline или на обслуживании
	ErrEquipmentUnavailable = domain.ErrEquipmentUnavailable

	// ErrUserNotFound возвращается, когда заявитель не найден в UserService
	ErrUserNotFound = errors.New("create_reservation: user not found")

	// ErrDurationTooLong возвращается, когда длительность превышает допустимую
	ErrDurationTooLong = errors.New("create_reservation: reservation is too long")

	// ErrStartInPast возвращается при попытке забронировать время в прошлом
	ErrStartInPast = domain.ErrStartInPast

	// ErrInvalidRecurrence возвращается при некорректном правиле повторения
	ErrInvalidRecurrence = errors.New("create_reservation: invalid recurrence pattern")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_reservation: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_reservation: internal error")
)
