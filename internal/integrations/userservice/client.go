package userservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/makerspace-reservations/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с UserService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента UserService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetUser получает профиль пользователя (роль, уровень членства, уровень супервизора)
func (c *Client) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	url := fmt.Sprintf("%s/internal/users/%d", c.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: invalid user ID format", ErrInvalidResponse)
	case http.StatusNotFound:
		return nil, ErrUserNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return user.ToDomain(), nil
}

// GetUserWithGracefulDegradation получает профиль пользователя с graceful degradation
// При недоступности UserService возвращает базовый профиль (без уровня членства и без
// права супервизора) вместе с ErrServiceDegraded: скидки не применяются, супервизор обязателен
func (c *Client) GetUserWithGracefulDegradation(ctx context.Context, userID int64, role domain.Role) (*domain.User, error) {
	user, err := c.GetUser(ctx, userID)
	if err == nil {
		return user, nil
	}

	if errors.Is(err, ErrUserNotFound) {
		c.log.Info("User id=%d not found in UserService", userID)
		return nil, err
	}

	c.log.Error("UserService unavailable, applying graceful degradation for user_id=%d: %v", userID, err)
	return &domain.User{ID: userID, Role: role}, fmt.Errorf("%w: user_id=%d, error=%v", ErrServiceDegraded, userID, err)
}
