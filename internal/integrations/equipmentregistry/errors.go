package equipmentregistry

import "errors"

var (
	// ErrEquipmentNotFound возвращается, когда оборудование не найдено в реестре
	ErrEquipmentNotFound = errors.New("equipmentregistry client: equipment not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("equipmentregistry client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("equipmentregistry client: invalid response")
)
