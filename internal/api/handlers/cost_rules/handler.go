package cost_rules

import (
	"errors"
	"net/http"

	"github.com/m04kA/makerspace-reservations/internal/api/handlers"
	"github.com/m04kA/makerspace-reservations/internal/api/middleware"
	"github.com/m04kA/makerspace-reservations/internal/domain"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidEquipmentID = "некорректный или отсутствующий equipmentId"
	msgInvalidRule        = "некорректная конфигурация правила"
)

type Handler struct {
	service CostRuleService
	logger  Logger
}

func NewHandler(service CostRuleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleCreate POST /api/v1/cost-rules
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CostRuleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /cost-rules - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	rule, err := h.service.Create(r.Context(), req.ToDomain(userID))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRuleConfiguration):
			h.logger.Warn("POST /cost-rules - Invalid rule: equipment_id=%d, error=%v", req.EquipmentID, err)
			handlers.RespondErrorWithDetails(w, http.StatusBadRequest, msgInvalidRule, err.Error())

		default:
			h.logger.Error("POST /cost-rules - Failed to create rule: equipment_id=%d, error=%v", req.EquipmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /cost-rules - Rule created: rule_id=%d, equipment_id=%d, user_id=%d", rule.ID, rule.EquipmentID, userID)
	handlers.RespondJSON(w, http.StatusCreated, FromDomain(rule))
}

// HandleList GET /api/v1/cost-rules?equipmentId=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	equipmentID, err := handlers.QueryInt64(r, "equipmentId")
	if err != nil || equipmentID == nil || *equipmentID <= 0 {
		h.logger.Warn("GET /cost-rules - Invalid equipmentId: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEquipmentID)
		return
	}

	rules, err := h.service.List(r.Context(), *equipmentID)
	if err != nil {
		h.logger.Error("GET /cost-rules - Failed to list rules: equipment_id=%d, error=%v", *equipmentID, err)
		handlers.RespondInternalError(w)
		return
	}

	resp := CostRuleListResponse{Rules: make([]CostRuleResponse, 0, len(rules)), Total: len(rules)}
	for _, rule := range rules {
		resp.Rules = append(resp.Rules, FromDomain(rule))
	}

	h.logger.Info("GET /cost-rules - Rules retrieved: equipment_id=%d, count=%d", *equipmentID, resp.Total)
	handlers.RespondJSON(w, http.StatusOK, resp)
}
