package create_reservation

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/makerspace-reservations/internal/api/handlers"
	"github.com/m04kA/makerspace-reservations/internal/api/middleware"
	"github.com/m04kA/makerspace-reservations/internal/domain"
	createReservation "github.com/m04kA/makerspace-reservations/internal/usecase/create_reservation"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgInvalidTimeRange     = "время окончания должно быть позже времени начала"
	msgDurationTooLong      = "превышена максимальная длительность бронирования"
	msgStartInPast          = "нельзя забронировать время в прошлом"
	msgInvalidRecurrence    = "некорректное правило повторения"
	msgInvalidInput         = "некорректные данные бронирования"
	msgEquipmentNotFound    = "оборудование не найдено"
	msgEquipmentUnavailable = "оборудование недоступно для бронирования"
	msgUserNotFound         = "пользователь не найден"
	msgConflict             = "оборудование уже забронировано на это время"
	msgSkillGateDenied      = "не выполнены требования к квалификации"
)

type Handler struct {
	useCase CreateReservationUseCase
	logger  Logger
}

func NewHandler(useCase CreateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /reservations - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	role, _ := middleware.GetRole(r.Context())

	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID, role))
	if err != nil {
		var (
			conflict *domain.ConflictError
			denied   *domain.SkillGateDeniedError
		)

		switch {
		case errors.As(err, &conflict):
			h.logger.Warn("POST /reservations - Conflict: user_id=%d, equipment_id=%d, reservation_id=%d",
				userID, req.EquipmentID, conflict.ReservationID)
			handlers.RespondErrorWithDetails(w, http.StatusConflict, msgConflict, ConflictDetails{
				ReservationID:  conflict.ReservationID,
				RequestedStart: conflict.Window.Start.Format(time.RFC3339),
				RequestedEnd:   conflict.Window.End.Format(time.RFC3339),
			})

		case errors.As(err, &denied):
			h.logger.Warn("POST /reservations - Skill gates denied: user_id=%d, equipment_id=%d, gates=%v",
				userID, req.EquipmentID, denied.Gates)
			handlers.RespondErrorWithDetails(w, http.StatusForbidden, msgSkillGateDenied, GatesDetails{Gates: denied.Gates})

		case errors.Is(err, createReservation.ErrEquipmentNotFound):
			h.logger.Warn("POST /reservations - Equipment not found: equipment_id=%d", req.EquipmentID)
			handlers.RespondNotFound(w, msgEquipmentNotFound)

		case errors.Is(err, createReservation.ErrUserNotFound):
			h.logger.Warn("POST /reservations - User not found: user_id=%d", userID)
			handlers.RespondNotFound(w, msgUserNotFound)

		case errors.Is(err, createReservation.ErrEquipmentUnavailable):
			h.logger.Warn("POST /reservations - Equipment unavailable: equipment_id=%d", req.EquipmentID)
			handlers.RespondConflict(w, msgEquipmentUnavailable)

		case errors.Is(err, domain.ErrInvalidTimeRange):
			handlers.RespondBadRequest(w, msgInvalidTimeRange)

		case errors.Is(err, createReservation.ErrDurationTooLong):
			handlers.RespondBadRequest(w, msgDurationTooLong)

		case errors.Is(err, createReservation.ErrStartInPast):
			handlers.RespondBadRequest(w, msgStartInPast)

		case errors.Is(err, createReservation.ErrInvalidRecurrence):
			handlers.RespondBadRequest(w, msgInvalidRecurrence)

		case errors.Is(err, createReservation.ErrInvalidInput):
			h.logger.Warn("POST /reservations - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /reservations - Failed to create reservation: user_id=%d, equipment_id=%d, error=%v",
				userID, req.EquipmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	first := result.Reservations[0].Reservation
	h.logger.Info("POST /reservations - Reservation created: reservation_id=%d, status=%s, count=%d, user_id=%d",
		first.ID, first.Status, len(result.Reservations), userID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
