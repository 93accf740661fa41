package reservation_status

// StatusRequest необязательное тело запроса перехода
type StatusRequest struct {
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=1000"`
}
