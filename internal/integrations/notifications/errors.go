package notifications

import "errors"

var (
	// ErrSendFailed возвращается, когда провайдер не принял сообщение
	ErrSendFailed = errors.New("notifications: failed to send message")

	// ErrNoRecipient возвращается, когда у бронирования нет email заявителя
	ErrNoRecipient = errors.New("notifications: reservation has no recipient email")
)
