package approve_reservation

import (
	"errors"
	"net/http"

	"github.com/m04kA/makerspace-reservations/internal/api/handlers"
	"github.com/m04kA/makerspace-reservations/internal/api/middleware"
	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/internal/service/reservations"
	"github.com/m04kA/makerspace-reservations/internal/service/reservations/models"
	"github.com/m04kA/makerspace-reservations/pkg/ptr"
)

const (
	msgInvalidReservationID = "некорректный ID бронирования"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgNotFound             = "бронирование не найдено"
	msgInvalidTransition    = "бронирование нельзя перевести в этот статус"
	msgConcurrentUpdate     = "бронирование было изменено, повторите запрос"
	msgConflict             = "оборудование уже забронировано на это время"
	msgSupervisorRequired   = "для одобрения нужно назначить супервизора"
	msgInvalidInput         = "некорректные данные решения"
	msgSkillGateDenied      = "заявитель не проходит требования к квалификации"
	msgEquipmentNotFound    = "оборудование не найдено"
	msgUserNotFound         = "пользователь не найден"
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

// Handle POST /api/v1/reservations/{id}/approve
// decision=approve одобряет, decision=reject отклоняет с обязательной причиной
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID, err := handlers.PathInt64(r, "id")
	if err != nil {
		h.logger.Warn("POST /reservations/{id}/approve - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	role, _ := middleware.GetRole(r.Context())
	actor := models.Actor{UserID: userID, Role: role}

	var req DecisionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations/{id}/approve - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	var result *models.ReservationResponse
	if req.Decision == DecisionApprove {
		result, err = h.service.Approve(r.Context(), reservationID, actor, req.ToApproveRequest())
	} else {
		result, err = h.service.Reject(r.Context(), reservationID, actor, ptr.Value(req.RejectionReason), req.AdminNotes)
	}
	if err != nil {
		var (
			conflict *domain.ConflictError
			denied   *domain.SkillGateDeniedError
		)

		switch {
		case errors.Is(err, reservations.ErrReservationNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.As(err, &denied):
			h.logger.Warn("POST /reservations/{id}/approve - Skill gates denied: reservation_id=%d, gates=%v", reservationID, denied.Gates)
			handlers.RespondErrorWithDetails(w, http.StatusForbidden, msgSkillGateDenied, map[string][]string{
				"gates": denied.Gates,
			})

		case errors.Is(err, reservations.ErrEquipmentNotFound):
			handlers.RespondNotFound(w, msgEquipmentNotFound)

		case errors.Is(err, reservations.ErrUserNotFound):
			handlers.RespondNotFound(w, msgUserNotFound)

		case errors.As(err, &conflict):
			h.logger.Warn("POST /reservations/{id}/approve - Conflict: reservation_id=%d, conflicting_id=%d",
				reservationID, conflict.ReservationID)
			handlers.RespondErrorWithDetails(w, http.StatusConflict, msgConflict, map[string]int64{
				"reservationId": conflict.ReservationID,
			})

		case errors.Is(err, domain.ErrInvalidStateTransition):
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, reservations.ErrConcurrentUpdate):
			handlers.RespondConflict(w, msgConcurrentUpdate)

		case errors.Is(err, reservations.ErrSupervisorRequired):
			handlers.RespondBadRequest(w, msgSupervisorRequired)

		case errors.Is(err, reservations.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /reservations/{id}/approve - Failed to %s reservation: reservation_id=%d, error=%v",
				req.Decision, reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations/{id}/approve - Decision %s applied: reservation_id=%d, actor=%d",
		req.Decision, reservationID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
