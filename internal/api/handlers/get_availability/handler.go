package get_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/makerspace-reservations/internal/api/handlers"
	"github.com/m04kA/makerspace-reservations/internal/api/middleware"
	"github.com/m04kA/makerspace-reservations/internal/domain"
	getAvailability "github.com/m04kA/makerspace-reservations/internal/usecase/get_availability"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgEquipmentNotFound  = "оборудование не найдено"
	msgInvalidTimeRange   = "время окончания должно быть позже времени начала"
	msgWindowTooLong      = "окно запроса слишком длинное"
	msgInvalidInput       = "некорректные входные данные"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	role, _ := middleware.GetRole(r.Context())

	var req AvailabilityRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /availability - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID, role))
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrEquipmentNotFound):
			handlers.RespondNotFound(w, msgEquipmentNotFound)
		case errors.Is(err, domain.ErrInvalidTimeRange):
			handlers.RespondBadRequest(w, msgInvalidTimeRange)
		case errors.Is(err, getAvailability.ErrWindowTooLong):
			handlers.RespondBadRequest(w, msgWindowTooLong)
		case errors.Is(err, getAvailability.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)
		default:
			h.logger.Error("POST /availability - Failed: equipment_id=%d, error=%v", req.EquipmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}
