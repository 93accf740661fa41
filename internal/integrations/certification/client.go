package certification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

// certificationResponse ответ хранилища сертификатов
type certificationResponse struct {
	Valid     bool       `json:"valid"`
	Level     string     `json:"level"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Client клиент хранилища сертификатов
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создает новый экземпляр клиента
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// VerifyCertification возвращает сертификат пользователя по навыку
// Отсутствие сертификата (404) не является ошибкой: возвращается Valid = false
func (c *Client) VerifyCertification(ctx context.Context, userID, skillID int64) (*domain.Certification, error) {
	url := fmt.Sprintf("%s/internal/users/%d/certifications/%d", c.baseURL, userID, skillID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return &domain.Certification{SkillID: skillID, Valid: false}, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var cert certificationResponse
	if err := json.NewDecoder(resp.Body).Decode(&cert); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return &domain.Certification{
		SkillID:   skillID,
		Valid:     cert.Valid,
		Level:     domain.SkillLevel(cert.Level),
		ExpiresAt: cert.ExpiresAt,
	}, nil
}
