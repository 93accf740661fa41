package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/makerspace-reservations/internal/domain"
	"github.com/m04kA/makerspace-reservations/pkg/logger"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims Claims, method jwt.SigningMethod, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() Claims {
	return Claims{
		UserID: 7,
		Role:   domain.RoleStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "makerspace",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func identityHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r.Context())
		require.True(t, ok)
		role, ok := GetRole(r.Context())
		require.True(t, ok)
		assert.Equal(t, int64(7), userID)
		assert.Equal(t, domain.RoleStaff, role)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuth(t *testing.T) {
	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "someone-else"

	noUser := validClaims()
	noUser.UserID = 0

	badRole := validClaims()
	badRole.Role = "superuser"

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid", header: "Bearer " + signToken(t, validClaims(), jwt.SigningMethodHS256, testSecret), want: http.StatusNoContent},
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "no bearer prefix", header: signToken(t, validClaims(), jwt.SigningMethodHS256, testSecret), want: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + signToken(t, validClaims(), jwt.SigningMethodHS256, "other"), want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signToken(t, expired, jwt.SigningMethodHS256, testSecret), want: http.StatusUnauthorized},
		{name: "wrong issuer", header: "Bearer " + signToken(t, wrongIssuer, jwt.SigningMethodHS256, testSecret), want: http.StatusUnauthorized},
		{name: "no user id", header: "Bearer " + signToken(t, noUser, jwt.SigningMethodHS256, testSecret), want: http.StatusUnauthorized},
		{name: "unknown role", header: "Bearer " + signToken(t, badRole, jwt.SigningMethodHS256, testSecret), want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer not-a-jwt", want: http.StatusUnauthorized},
	}

	mw := Auth(testSecret, "makerspace", logger.Nop())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			mw(identityHandler(t)).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
