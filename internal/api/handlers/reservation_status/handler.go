package reservation_status

import (
	"errors"
	"net/http"

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
	msgInvalidTransition    = "бронирование нельзя перевести в этот статус"
	msgConcurrentUpdate     = "бронирование было изменено, повторите запрос"
)

// transitionFunc вызывает нужный метод сервиса
type transitionFunc func(r *http.Request, id int64, actor models.Actor, body *StatusRequest) (*models.ReservationResponse, error)

// Handler переходы жизненного цикла бронирования после одобрения
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

// HandleActivate POST /api/v1/reservations/{id}/activate
func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "POST /reservations/{id}/activate", func(r *http.Request, id int64, actor models.Actor, _ *StatusRequest) (*models.ReservationResponse, error) {
		return h.service.Activate(r.Context(), id, actor)
	})
}

// HandleComplete POST /api/v1/reservations/{id}/complete
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "POST /reservations/{id}/complete", func(r *http.Request, id int64, actor models.Actor, body *StatusRequest) (*models.ReservationResponse, error) {
		return h.service.Complete(r.Context(), id, actor, body.Notes)
	})
}

// HandleNoShow POST /api/v1/reservations/{id}/no-show
func (h *Handler) HandleNoShow(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "POST /reservations/{id}/no-show", func(r *http.Request, id int64, actor models.Actor, body *StatusRequest) (*models.ReservationResponse, error) {
		return h.service.MarkNoShow(r.Context(), id, actor, body.Notes)
	})
}

// HandleCancel POST /api/v1/reservations/{id}/cancel
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "POST /reservations/{id}/cancel", func(r *http.Request, id int64, actor models.Actor, body *StatusRequest) (*models.ReservationResponse, error) {
		return h.service.Cancel(r.Context(), id, actor, body.Reason)
	})
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, route string, fn transitionFunc) {
	reservationID, err := handlers.PathInt64(r, "id")
	if err != nil {
		h.logger.Warn("%s - Invalid reservation ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	role, _ := middleware.GetRole(r.Context())

	var body StatusRequest
	if err := handlers.DecodeJSON(r, &body); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := fn(r, reservationID, models.Actor{UserID: userID, Role: role}, &body)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrReservationNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("%s - Access denied: reservation_id=%d, user_id=%d", route, reservationID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, domain.ErrInvalidStateTransition):
			h.logger.Warn("%s - Invalid transition: reservation_id=%d, error=%v", route, reservationID, err)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, reservations.ErrConcurrentUpdate):
			handlers.RespondConflict(w, msgConcurrentUpdate)

		default:
			h.logger.Error("%s - Failed: reservation_id=%d, error=%v", route, reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Reservation id=%d is now %s, actor=%d", route, reservationID, result.Status, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
