package certification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

func TestClient_VerifyCertification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/internal/users/42/certifications/7":
			_, _ = w.Write([]byte(`{"valid":true,"level":"advanced","expires_at":"2030-01-01T00:00:00Z"}`))
		case "/internal/users/42/certifications/500":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)

	cert, err := client.VerifyCertification(context.Background(), 42, 7)
	require.NoError(t, err)
	assert.True(t, cert.Valid)
	assert.Equal(t, domain.LevelAdvanced, cert.Level)
	require.NotNil(t, cert.ExpiresAt)
	assert.Equal(t, 2030, cert.ExpiresAt.Year())

	missing, err := client.VerifyCertification(context.Background(), 42, 8)
	require.NoError(t, err)
	assert.False(t, missing.Valid)

	_, err = client.VerifyCertification(context.Background(), 42, 500)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
