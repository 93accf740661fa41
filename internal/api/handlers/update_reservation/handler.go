package update_reservation

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/makerspace-reservations/internal/api/handlers"
	"github.com/m04kA/makerspace-reservations/internal/api/middleware"
	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/internal/service/reservations"
	"github.com/m04kA/makerspace-reservations/internal/service/reservations/models"
)

const (
	msgInvalidReservationID = "некорректный ID бронирования"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgNotFound             = "бронирование не найдено"
	msgForbidden            = "доступ запрещен"
	msgInvalidTimeRange     = "время окончания должно быть позже времени начала"
	msgInvalidInput         = "некорректные данные бронирования"
	msgWindowLocked         = "время можно изменить только у бронирования в статусе pending"
	msgTerminal             = "бронирование уже завершено"
	msgConcurrentUpdate     = "бронирование было изменено, повторите запрос"
	msgConflict             = "оборудование уже забронировано на это время"
	msgStartInPast          = "нельзя перенести бронирование в прошлое"
	msgEquipmentNotFound    = "оборудование не найдено"
	msgEquipmentUnavailable = "оборудование недоступно для бронирования"
	msgUserNotFound         = "пользователь не найден"
	msgSkillGateDenied      = "не выполнены требования к квалификации"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/reservations/{id}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID, err := handlers.PathInt64(r, "id")
	if err != nil {
		h.logger.Warn("PUT /reservations/{id} - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /reservations/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	role, _ := middleware.GetRole(r.Context())

	var req UpdateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /reservations/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Update(r.Context(), reservationID, models.Actor{UserID: userID, Role: role}, req.ToServiceRequest())
	if err != nil {
		var (
			conflict *domain.ConflictError
			denied   *domain.SkillGateDeniedError
		)

		switch {
		case errors.Is(err, reservations.ErrReservationNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.As(err, &denied):
			h.logger.Warn("PUT /reservations/{id} - Skill gates denied: reservation_id=%d, gates=%v", reservationID, denied.Gates)
			handlers.RespondErrorWithDetails(w, http.StatusForbidden, msgSkillGateDenied, map[string][]string{
				"gates": denied.Gates,
			})

		case errors.Is(err, reservations.ErrEquipmentNotFound):
			handlers.RespondNotFound(w, msgEquipmentNotFound)

		case errors.Is(err, reservations.ErrUserNotFound):
			handlers.RespondNotFound(w, msgUserNotFound)

		case errors.Is(err, domain.ErrEquipmentUnavailable):
			handlers.RespondConflict(w, msgEquipmentUnavailable)

		case errors.Is(err, domain.ErrStartInPast):
			handlers.RespondBadRequest(w, msgStartInPast)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("PUT /reservations/{id} - Access denied: reservation_id=%d, user_id=%d", reservationID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.As(err, &conflict):
			handlers.RespondErrorWithDetails(w, http.StatusConflict, msgConflict, map[string]interface{}{
				"reservationId":  conflict.ReservationID,
				"requestedStart": conflict.Window.Start.Format(time.RFC3339),
				"requestedEnd":   conflict.Window.End.Format(time.RFC3339),
			})

		case errors.Is(err, reservations.ErrWindowLocked):
			handlers.RespondConflict(w, msgWindowLocked)

		case errors.Is(err, domain.ErrInvalidStateTransition):
			handlers.RespondConflict(w, msgTerminal)

		case errors.Is(err, reservations.ErrConcurrentUpdate):
			handlers.RespondConflict(w, msgConcurrentUpdate)

		case errors.Is(err, domain.ErrInvalidTimeRange):
			handlers.RespondBadRequest(w, msgInvalidTimeRange)

		case errors.Is(err, reservations.ErrInvalidInput):
			h.logger.Warn("PUT /reservations/{id} - Invalid input: reservation_id=%d, error=%v", reservationID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PUT /reservations/{id} - Failed to update reservation: reservation_id=%d, error=%v", reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /reservations/{id} - Reservation updated: reservation_id=%d, user_id=%d", reservationID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
