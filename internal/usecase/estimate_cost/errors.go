package estimate_cost

import "errors"

var (
	// ErrEquipmentNotFound возвращается, когда оборудование не найдено в реестре
	ErrEquipmentNotFound = errors.New("estimate_cost: equipment not found")

	// ErrUserNotFound возвращается, когда пользователь не найден в UserService
	ErrUserNotFound = errors.New("estimate_cost: user not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("estimate_cost: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("estimate_cost: internal error")
)
