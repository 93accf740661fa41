package reservations

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("reservations: reservation not found")

	// ErrEquipmentNotFound возвращается, когда оборудование не найдено в реестре
	ErrEquipmentNotFound = errors.New("reservations: equipment not found")

	// ErrUserNotFound возвращается, когда заявитель не найден в UserService
	ErrUserNotFound = errors.New("reservations: user not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав на бронирование
	ErrAccessDenied = errors.New("reservations: access denied")

	// ErrConcurrentUpdate возвращается, когда статус изменился между чтением и обновлением
	ErrConcurrentUpdate = errors.New("reservations: reservation was modified concurrently")

	// ErrWindowLocked возвращается при попытке изменить время не pending бронирования
	ErrWindowLocked = errors.New("reservations: time window can only change while pending")

	// ErrSupervisorRequired возвращается при одобрении без назначенного супервизора
	ErrSupervisorRequired = errors.New("reservations: supervisor must be assigned")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reservations: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("reservations: internal error")
)
