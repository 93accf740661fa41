package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса
type Config struct {
	Server               ServerConfig        `toml:"server"`
	Database             DatabaseConfig      `toml:"database"`
	Logs                 LogsConfig          `toml:"logs"`
	Metrics              MetricsConfig       `toml:"metrics"`
	Auth                 AuthConfig          `toml:"auth"`
	EquipmentRegistry    ClientConfig        `toml:"equipment_registry"`
	UserService          ClientConfig        `toml:"user_service"`
	CertificationService ClientConfig        `toml:"certification_service"`
	Notifications        NotificationsConfig `toml:"notifications"`
	Reservations         ReservationsConfig  `toml:"reservations"`
	Jobs                 JobsConfig          `toml:"jobs"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`

	// Пустой список отключает CORS
	AllowedOrigins []string `toml:"allowed_origins"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	Level  string `toml:"level"`
	File   string `toml:"file"`
	Format string `toml:"format"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	Issuer    string `toml:"issuer"`
}

// ClientConfig настройки HTTP клиента внешнего сервиса
type ClientConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

type NotificationsConfig struct {
	Enabled        bool   `toml:"enabled"`
	SendGridAPIKey string `toml:"sendgrid_api_key"`
	FromEmail      string `toml:"from_email"`
	FromName       string `toml:"from_name"`
	Timeout        int    `toml:"timeout"` // секунды на одно уведомление
}

// ReservationsConfig бизнес-параметры движка бронирований
type ReservationsConfig struct {
	AutoApprovalThreshold    float64 `toml:"auto_approval_threshold"`
	SlotMinutes              int     `toml:"slot_minutes"`
	MaxDurationHours         int     `toml:"max_duration_hours"`
	MaxAvailabilityDays      int     `toml:"max_availability_days"`
	MaxRecurrenceOccurrences int     `toml:"max_recurrence_occurrences"`
	AllowConflictBypass      bool    `toml:"allow_emergency_conflict_bypass"`
	AllowSkillGateBypass     bool    `toml:"allow_emergency_skill_gate_bypass"`
	Timezone                 string  `toml:"timezone"`
}

// Location часовой пояс makerspace для правил стоимости по времени суток и дням недели
func (c ReservationsConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// JobsConfig фоновые задачи по расписанию (cron выражения из 5 полей, UTC)
type JobsConfig struct {
	Enabled                   bool   `toml:"enabled"`
	ExpirePendingSchedule     string `toml:"expire_pending_schedule"`
	ExpirePendingGraceMinutes int    `toml:"expire_pending_grace_minutes"`
}

// Load загружает конфигурацию из toml файла и применяет переменные окружения
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "makerspace-reservations",
		},
		Notifications: NotificationsConfig{
			Timeout: 10,
		},
		Reservations: ReservationsConfig{
			AutoApprovalThreshold:    100,
			SlotMinutes:              60,
			MaxDurationHours:         24,
			MaxAvailabilityDays:      31,
			MaxRecurrenceOccurrences: 52,
			Timezone:                 "UTC",
		},
		Jobs: JobsConfig{
			ExpirePendingSchedule:     "*/5 * * * *",
			ExpirePendingGraceMinutes: 30,
		},
	}
}

// applyEnv переопределяет секреты из переменных окружения
func applyEnv(cfg *Config) {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("SENDGRID_API_KEY"); v != "" {
		cfg.Notifications.SendGridAPIKey = v
	}
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	switch {
	case c.Server.HTTPPort <= 0:
		return fmt.Errorf("%w: server.http_port must be positive", ErrInvalidConfig)
	case c.Database.Host == "":
		return fmt.Errorf("%w: database.host is required", ErrInvalidConfig)
	case c.Database.DBName == "":
		return fmt.Errorf("%w: database.dbname is required", ErrInvalidConfig)
	case c.Auth.JWTSecret == "":
		return fmt.Errorf("%w: auth.jwt_secret is required", ErrInvalidConfig)
	case c.EquipmentRegistry.URL == "":
		return fmt.Errorf("%w: equipment_registry.url is required", ErrInvalidConfig)
	case c.UserService.URL == "":
		return fmt.Errorf("%w: user_service.url is required", ErrInvalidConfig)
	case c.CertificationService.URL == "":
		return fmt.Errorf("%w: certification_service.url is required", ErrInvalidConfig)
	case c.Reservations.SlotMinutes <= 0:
		return fmt.Errorf("%w: reservations.slot_minutes must be positive", ErrInvalidConfig)
	case c.Reservations.MaxDurationHours <= 0:
		return fmt.Errorf("%w: reservations.max_duration_hours must be positive", ErrInvalidConfig)
	case c.Reservations.MaxAvailabilityDays <= 0:
		return fmt.Errorf("%w: reservations.max_availability_days must be positive", ErrInvalidConfig)
	case c.Reservations.MaxRecurrenceOccurrences <= 0:
		return fmt.Errorf("%w: reservations.max_recurrence_occurrences must be positive", ErrInvalidConfig)
	case c.Reservations.AutoApprovalThreshold < 0:
		return fmt.Errorf("%w: reservations.auto_approval_threshold must not be negative", ErrInvalidConfig)
	case c.Reservations.Timezone == "":
		return fmt.Errorf("%w: reservations.timezone is required", ErrInvalidConfig)
	case c.Jobs.Enabled && c.Jobs.ExpirePendingSchedule == "":
		return fmt.Errorf("%w: jobs.expire_pending_schedule is required when jobs are enabled", ErrInvalidConfig)
	case c.Jobs.ExpirePendingGraceMinutes < 0:
		return fmt.Errorf("%w: jobs.expire_pending_grace_minutes must not be negative", ErrInvalidConfig)
	}

	if _, err := c.Reservations.Location(); err != nil {
		return fmt.Errorf("%w: reservations.timezone: %v", ErrInvalidConfig, err)
	}
	return nil
}
