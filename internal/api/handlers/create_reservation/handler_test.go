package create_reservation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/makerspace-reservations/internal/api/middleware"
	"github.com/m04kA/makerspace-reservations/internal/domain"
	createReservation "github.com/m04kA/makerspace-reservations/internal/usecase/create_reservation"
	"github.com/m04kA/makerspace-reservations/pkg/logger"
	"github.com/m04kA/makerspace-reservations/pkg/ptr"
)

type mockUseCase struct{ mock.Mock }

func (m *mockUseCase) Execute(ctx context.Context, req *createReservation.Request) (*createReservation.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*createReservation.Response)
	return resp, args.Error(1)
}

const body = `{"equipmentId":1,"requestedStart":"2024-06-03T10:00:00Z","requestedEnd":"2024-06-03T12:00:00Z","purpose":"prototype"}`

func doRequest(h *Handler, payload string, withIdentity bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(payload))
	if withIdentity {
		req = req.WithContext(middleware.WithIdentity(req.Context(), 7, domain.RoleMember))
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *createReservation.Request) bool {
		return req.UserID == 7 && req.Role == domain.RoleMember && req.EquipmentID == 1 &&
			req.End.Sub(req.Start) == 2*time.Hour && *req.Purpose == "prototype"
	})).Return(&createReservation.Response{Reservations: []*createReservation.Created{{
		Reservation: &domain.Reservation{
			ID:             10,
			EquipmentID:    1,
			RequesterID:    7,
			Status:         domain.StatusApproved,
			TotalCost:      50,
			ApprovedBy:     ptr.Ptr(domain.SystemActorID),
			RequestedStart: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
			RequestedEnd:   time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC),
		},
		CostBreakdown: []*domain.CostBreakdownItem{{CostType: domain.CostBaseRate, CalculatedAmount: 50}},
	}}}, nil)

	rec := doRequest(NewHandler(uc, logger.Nop()), body, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(10), resp["id"])
	assert.Equal(t, "approved", resp["status"])
	assert.Equal(t, float64(0), resp["approvedBy"])
	assert.Len(t, resp["costBreakdown"], 1)
	uc.AssertExpectations(t)
}

func TestHandle_SeriesResponse(t *testing.T) {
	series := "3f1c6a1e-0000-4000-8000-000000000000"
	created := make([]*createReservation.Created, 0, 2)
	for i := int64(1); i <= 2; i++ {
		created = append(created, &createReservation.Created{Reservation: &domain.Reservation{
			ID: i, Status: domain.StatusPending, IsRecurring: true, RecurrenceSeriesID: &series,
		}})
	}

	uc := &mockUseCase{}
	uc.On("Execute", mock.Anything, mock.Anything).Return(&createReservation.Response{Reservations: created}, nil)

	payload := strings.TrimSuffix(body, "}") + `,"recurrencePattern":{"frequency":"weekly","interval":1,"count":2}}`
	rec := doRequest(NewHandler(uc, logger.Nop()), payload, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp SeriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, series, resp.RecurrenceSeriesID)
	assert.Equal(t, 2, resp.Total)
}

func TestHandle_Errors(t *testing.T) {
	window := domain.TimeWindow{
		Start: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{name: "conflict", err: &domain.ConflictError{ReservationID: 4, Window: window}, wantCode: http.StatusConflict, wantBody: `"reservationId":4`},
		{name: "skill gate", err: &domain.SkillGateDeniedError{Gates: []string{"Laser Safety"}}, wantCode: http.StatusForbidden, wantBody: `"Laser Safety"`},
		{name: "equipment not found", err: createReservation.ErrEquipmentNotFound, wantCode: http.StatusNotFound},
		{name: "equipment unavailable", err: fmt.Errorf("%w: maintenance", createReservation.ErrEquipmentUnavailable), wantCode: http.StatusConflict},
		{name: "invalid range", err: domain.ErrInvalidTimeRange, wantCode: http.StatusBadRequest},
		{name: "too long", err: createReservation.ErrDurationTooLong, wantCode: http.StatusBadRequest},
		{name: "in past", err: createReservation.ErrStartInPast, wantCode: http.StatusBadRequest},
		{name: "internal", err: createReservation.ErrInternal, wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}
			uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := doRequest(NewHandler(uc, logger.Nop()), body, true)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHandle_BadRequests(t *testing.T) {
	uc := &mockUseCase{}
	h := NewHandler(uc, logger.Nop())

	assert.Equal(t, http.StatusUnauthorized, doRequest(h, body, false).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(h, `{"equipmentId":0}`, true).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(h, `{"equipmentId":1,"requestedStart":"tomorrow"}`, true).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(h,
		strings.TrimSuffix(body, "}")+`,"recurrencePattern":{"frequency":"monthly","count":2}}`, true).Code)

	uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}
