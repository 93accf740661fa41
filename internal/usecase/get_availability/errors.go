package get_availability

import "errors"

var (
	// ErrEquipmentNotFound возвращается, когда оборудование не найдено в реестре
	ErrEquipmentNotFound = errors.New("get_availability: equipment not found")

	// ErrWindowTooLong возвращается, когда окно запроса превышает допустимое
	ErrWindowTooLong = errors.New("get_availability: window is too long")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_availability: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_availability: internal error")
)
