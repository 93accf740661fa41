package update_reservation

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/makerspace-reservations/internal/api/middleware"
	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/internal/service/reservations"
	"github.com/m04kA/makerspace-reservations/internal/service/reservations/models"
	"github.com/m04kA/makerspace-reservations/pkg/logger"
)

type mockService struct{ mock.Mock }

func (m *mockService) Update(ctx context.Context, id int64, actor models.Actor, req *models.UpdateRequest) (*models.ReservationResponse, error) {
	args := m.Called(ctx, id, actor, req)
	resp, _ := args.Get(0).(*models.ReservationResponse)
	return resp, args.Error(1)
}

func serve(svc *mockService, body string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/reservations/{id}", NewHandler(svc, logger.Nop()).Handle)

	req := httptest.NewRequest(http.MethodPut, "/reservations/10", strings.NewReader(body))
	req = req.WithContext(middleware.WithIdentity(req.Context(), 7, domain.RoleMember))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandle_Success(t *testing.T) {
	svc := &mockService{}
	svc.On("Update", mock.Anything, int64(10), models.Actor{UserID: 7, Role: domain.RoleMember}, mock.MatchedBy(func(r *models.UpdateRequest) bool {
		return r.Purpose != nil && *r.Purpose == "jig" && r.Start == nil
	})).Return(&models.ReservationResponse{ID: 10}, nil)

	rec := serve(svc, `{"purpose":"jig"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not owner", err: reservations.ErrAccessDenied, want: http.StatusForbidden},
		{name: "window locked", err: reservations.ErrWindowLocked, want: http.StatusConflict},
		{name: "invalid range", err: domain.ErrInvalidTimeRange, want: http.StatusBadRequest},
		{name: "not found", err: reservations.ErrReservationNotFound, want: http.StatusNotFound},
		{name: "start in past", err: domain.ErrStartInPast, want: http.StatusBadRequest},
		{name: "equipment in maintenance", err: fmt.Errorf("%w: equipment status is maintenance", domain.ErrEquipmentUnavailable), want: http.StatusConflict},
		{name: "equipment missing", err: reservations.ErrEquipmentNotFound, want: http.StatusNotFound},
		{name: "skill gates", err: &domain.SkillGateDeniedError{Gates: []string{"laser certification"}}, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("Update", mock.Anything, int64(10), mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := serve(svc, `{"requestedStart":"2024-06-03T10:00:00Z","requestedEnd":"2024-06-03T12:00:00Z"}`)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandle_SkillGateDeniedListsGates(t *testing.T) {
	svc := &mockService{}
	svc.On("Update", mock.Anything, int64(10), mock.Anything, mock.Anything).
		Return(nil, &domain.SkillGateDeniedError{Gates: []string{"laser certification"}})

	rec := serve(svc, `{"requestedEnd":"2024-06-03T12:00:00Z"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "laser certification")
}
