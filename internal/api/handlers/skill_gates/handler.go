package skill_gates

import (
	"errors"
	"net/http"

	"github.com/m04kA/makerspace-reservations/internal/api/handlers"
	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/internal/service/skillgates"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidEquipmentID = "некорректный или отсутствующий equipmentId"
	msgInvalidSkillID     = "некорректный ID навыка"
	msgInvalidGate        = "некорректная конфигурация gate"
	msgCycle              = "зависимость создает цикл в графе навыков"
)

type Handler struct {
	service SkillGateService
	logger  Logger
}

func NewHandler(service SkillGateService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleCreate POST /api/v1/skill-gates
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req SkillGateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /skill-gates - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	gate, err := h.service.Create(r.Context(), req.ToDomain())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRuleConfiguration):
			h.logger.Warn("POST /skill-gates - Invalid gate: equipment_id=%d, error=%v", req.EquipmentID, err)
			handlers.RespondErrorWithDetails(w, http.StatusBadRequest, msgInvalidGate, err.Error())

		default:
			h.logger.Error("POST /skill-gates - Failed to create gate: equipment_id=%d, error=%v", req.EquipmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /skill-gates - Gate created: gate_id=%d, equipment_id=%d", gate.ID, gate.EquipmentID)
	handlers.RespondJSON(w, http.StatusCreated, FromDomain(gate))
}

// HandleList GET /api/v1/skill-gates?equipmentId=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	equipmentID, err := handlers.QueryInt64(r, "equipmentId")
	if err != nil || equipmentID == nil || *equipmentID <= 0 {
		h.logger.Warn("GET /skill-gates - Invalid equipmentId: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEquipmentID)
		return
	}

	gates, err := h.service.List(r.Context(), *equipmentID)
	if err != nil {
		h.logger.Error("GET /skill-gates - Failed to list gates: equipment_id=%d, error=%v", *equipmentID, err)
		handlers.RespondInternalError(w)
		return
	}

	resp := SkillGateListResponse{Gates: make([]SkillGateResponse, 0, len(gates)), Total: len(gates)}
	for _, gate := range gates {
		resp.Gates = append(resp.Gates, FromDomain(gate))
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}

// HandleAddPrerequisite POST /api/v1/skills/{skillId}/prerequisites
func (h *Handler) HandleAddPrerequisite(w http.ResponseWriter, r *http.Request) {
	skillID, err := handlers.PathInt64(r, "skillId")
	if err != nil {
		h.logger.Warn("POST /skills/{id}/prerequisites - Invalid skill ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSkillID)
		return
	}

	var req PrerequisiteRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /skills/{id}/prerequisites - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := h.service.AddPrerequisite(r.Context(), skillID, req.PrerequisiteSkillID); err != nil {
		switch {
		case errors.Is(err, domain.ErrPrerequisiteCycle):
			h.logger.Warn("POST /skills/{id}/prerequisites - Cycle: %d -> %d", skillID, req.PrerequisiteSkillID)
			handlers.RespondConflict(w, msgCycle)

		case errors.Is(err, skillgates.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidSkillID)

		default:
			h.logger.Error("POST /skills/{id}/prerequisites - Failed: skill_id=%d, error=%v", skillID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /skills/{id}/prerequisites - Prerequisite added: %d -> %d", skillID, req.PrerequisiteSkillID)
	handlers.RespondJSON(w, http.StatusCreated, map[string]int64{
		"skillId":             skillID,
		"prerequisiteSkillId": req.PrerequisiteSkillID,
	})
}
