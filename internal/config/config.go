package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config конфигурация сервиса
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Logs        LogsConfig        `toml:"logs"`
	Metrics     MetricsConfig     `toml:"metrics"`
	Events      EventsConfig      `toml:"events"`
	Reservation ReservationConfig `toml:"reservation"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string `toml:"driver"` // postgres | memory
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
	SeedFile        string `toml:"seed_file"` // справочники для driver = memory
}

// DSN возвращает строку подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// EventsConfig публикация доменных событий в NATS
type EventsConfig struct {
	Enabled       bool   `toml:"enabled"`
	URL           string `toml:"url"`
	SubjectPrefix string `toml:"subject_prefix"`
	Timeout       int    `toml:"timeout"` // секунды на подключение
}

type ReservationConfig struct {
	Timezone                string              `toml:"timezone"`
	CancellationNoticeHours float64             `toml:"cancellation_notice_hours"`
	DefaultBufferMinutes    int                 `toml:"default_buffer_minutes"`
	CancelledStatus         string              `toml:"cancelled_status"`
	ConfirmedStatus         string              `toml:"confirmed_status"`
	PrivilegedRoles         []string            `toml:"privileged_roles"`
	StatusMachine           StatusMachineConfig `toml:"status_machine"`
}

// StatusMachineConfig граф статусов бронирования
// Пустая секция - используется встроенный граф
type StatusMachineConfig struct {
	Statuses         []string            `toml:"statuses"`
	DefaultStatus    string              `toml:"default_status"`
	BlockingStatuses []string            `toml:"blocking_statuses"`
	TerminalStatuses []string            `toml:"terminal_statuses"`
	Transitions      map[string][]string `toml:"transitions"`
}

// Machine собирает domain.StatusMachine из конфигурации
func (c StatusMachineConfig) Machine() *domain.StatusMachine {
	if len(c.Statuses) == 0 {
		return domain.DefaultStatusMachine()
	}
	transitions := make(map[string][]string, len(c.Statuses))
	for _, s := range c.Statuses {
		transitions[s] = append([]string{}, c.Transitions[s]...)
	}
	for from, targets := range c.Transitions {
		if _, ok := transitions[from]; !ok {
			transitions[from] = append([]string{}, targets...)
		}
	}
	return &domain.StatusMachine{
		Statuses:         c.Statuses,
		DefaultStatus:    c.DefaultStatus,
		BlockingStatuses: c.BlockingStatuses,
		TerminalStatuses: c.TerminalStatuses,
		Transitions:      transitions,
	}
}

// Location возвращает часовой пояс, в котором считаются даты расписаний
func (r ReservationConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, r.Timezone, err)
	}
	return loc, nil
}

// IsPrivileged возвращает true, если роль входит в список привилегированных
func (r ReservationConfig) IsPrivileged(role string) bool {
	if role == "" {
		return false
	}
	for _, p := range r.PrivilegedRoles {
		if p == role {
			return true
		}
	}
	return false
}

// Load читает конфигурацию из TOML-файла, применяет значения по умолчанию
// и переопределения из переменных окружения
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15
	}

	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "reservation_service"
	}

	if c.Events.SubjectPrefix == "" {
		c.Events.SubjectPrefix = "reservations"
	}
	if c.Events.Timeout == 0 {
		c.Events.Timeout = 5
	}

	if c.Reservation.Timezone == "" {
		c.Reservation.Timezone = "UTC"
	}
	if c.Reservation.CancellationNoticeHours == 0 {
		c.Reservation.CancellationNoticeHours = domain.DefaultCancellationNoticeHours
	}
	if c.Reservation.CancelledStatus == "" {
		c.Reservation.CancelledStatus = domain.StatusCancelled
	}
	if c.Reservation.ConfirmedStatus == "" {
		c.Reservation.ConfirmedStatus = domain.StatusConfirmed
	}
	if len(c.Reservation.PrivilegedRoles) == 0 {
		c.Reservation.PrivilegedRoles = []string{"admin"}
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		c.Events.URL = v
	}
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if c.Database.Driver != DriverPostgres && c.Database.Driver != DriverMemory {
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	if c.Reservation.CancellationNoticeHours < 0 {
		return fmt.Errorf("%w: cancellation_notice_hours must be >= 0", ErrInvalidConfig)
	}
	if c.Reservation.DefaultBufferMinutes < 0 {
		return fmt.Errorf("%w: default_buffer_minutes must be >= 0", ErrInvalidConfig)
	}
	if c.Events.Enabled && c.Events.URL == "" {
		return fmt.Errorf("%w: events enabled without url", ErrInvalidConfig)
	}
	if _, err := c.Reservation.Location(); err != nil {
		return err
	}

	machine := c.Reservation.StatusMachine.Machine()
	if err := machine.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !machine.HasStatus(c.Reservation.CancelledStatus) {
		return fmt.Errorf("%w: cancelled_status %q is not in the status machine", ErrInvalidConfig, c.Reservation.CancelledStatus)
	}
	if !machine.HasStatus(c.Reservation.ConfirmedStatus) {
		return fmt.Errorf("%w: confirmed_status %q is not in the status machine", ErrInvalidConfig, c.Reservation.ConfirmedStatus)
	}
	return nil
}
