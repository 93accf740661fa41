package estimate_cost

import (
	"errors"
	"net/http"

	"github.com/m04kA/makerspace-reservations/internal/api/handlers"
	"github.com/m04kA/makerspace-reservations/internal/api/middleware"
	"github.com/m04kA/makerspace-reservations/internal/domain"
	estimateCost "github.com/m04kA/makerspace-reservations/internal/usecase/estimate_cost"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgEquipmentNotFound  = "оборудование не найдено"
	msgUserNotFound       = "пользователь не найден"
	msgInvalidTimeRange   = "время окончания должно быть позже времени начала"
	msgInvalidInput       = "некорректные входные данные"
)

type Handler struct {
	useCase EstimateCostUseCase
	logger  Logger
}

func NewHandler(useCase EstimateCostUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/cost-estimate
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	role, _ := middleware.GetRole(r.Context())

	var req EstimateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /cost-estimate - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID, role))
	if err != nil {
		switch {
		case errors.Is(err, estimateCost.ErrEquipmentNotFound):
			handlers.RespondNotFound(w, msgEquipmentNotFound)
		case errors.Is(err, estimateCost.ErrUserNotFound):
			handlers.RespondNotFound(w, msgUserNotFound)
		case errors.Is(err, domain.ErrInvalidTimeRange):
			handlers.RespondBadRequest(w, msgInvalidTimeRange)
		case errors.Is(err, estimateCost.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)
		default:
			h.logger.Error("POST /cost-estimate - Failed: user_id=%d, equipment_id=%d, error=%v", userID, req.EquipmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}
