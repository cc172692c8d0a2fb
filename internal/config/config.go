package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-ShopScheduler/internal/domain"
)

// Storage drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config конфигурация сервиса
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Storage    StorageConfig    `toml:"storage"`
	Redis      RedisConfig      `toml:"redis"`
	Kafka      KafkaConfig      `toml:"kafka"`
	Logs       LogsConfig       `toml:"logs"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Scheduling SchedulingConfig `toml:"scheduling"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки PostgreSQL
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
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// StorageConfig выбор хранилища
type StorageConfig struct {
	Driver      string           `toml:"driver"`
	Technicians []TechnicianSeed `toml:"technicians"` // только для driver = "memory"
}

// TechnicianSeed техник, загружаемый в память при старте
type TechnicianSeed struct {
	ID          int64    `toml:"id"`
	Name        string   `toml:"name"`
	Categories  []string `toml:"categories"`
	HoursPerDay float64  `toml:"hours_per_day"` // пн-пт, 0 = scheduling.default_daily_capacity
}

// SeedTechnicians переводит сиды в доменные модели
func (c *Config) SeedTechnicians() []*domain.Technician {
	result := make([]*domain.Technician, 0, len(c.Storage.Technicians))
	for _, seed := range c.Storage.Technicians {
		hours := seed.HoursPerDay
		if hours == 0 {
			hours = c.Scheduling.DefaultDailyCapacity
		}
		result = append(result, &domain.Technician{
			ID:         seed.ID,
			Name:       seed.Name,
			Categories: seed.Categories,
			Capacity:   domain.WeekdaysCapacity(hours),
			Active:     true,
		})
	}
	return result
}

// RedisConfig кэш техников
type RedisConfig struct {
	Enabled               bool   `toml:"enabled"`
	Address               string `toml:"address"`
	Password              string `toml:"password"`
	DB                    int    `toml:"db"`
	TechniciansTTLSeconds int    `toml:"technicians_ttl_seconds"`
}

// KafkaConfig публикация событий доски
type KafkaConfig struct {
	Enabled bool   `toml:"enabled"`
	Brokers string `toml:"brokers"` // через запятую
	Topic   string `toml:"topic"`

	// Размер очереди событий перед отправкой в брокер
	BufferSize int `toml:"buffer_size"`
}

// BrokerList список брокеров без пустых элементов
func (c KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// SchedulingConfig параметры движка планирования
type SchedulingConfig struct {
	LookAheadDays        int     `toml:"look_ahead_days"`
	SearchHorizonDays    int     `toml:"search_horizon_days"`
	MaxRangeDays         int     `toml:"max_range_days"`
	DefaultDailyCapacity float64 `toml:"default_daily_capacity"`
}

// Load читает конфигурацию из TOML файла, применяет значения по умолчанию и проверяет её
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Parse разбирает конфигурацию из строки
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10
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
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverPostgres
	}
	if c.Redis.TechniciansTTLSeconds == 0 {
		c.Redis.TechniciansTTLSeconds = 300
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "scheduler.board-events"
	}
	if c.Kafka.BufferSize == 0 {
		c.Kafka.BufferSize = 256
	}
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "shop_scheduler"
	}
	if c.Scheduling.LookAheadDays == 0 {
		c.Scheduling.LookAheadDays = domain.DefaultLookAheadDays
	}
	if c.Scheduling.SearchHorizonDays == 0 {
		c.Scheduling.SearchHorizonDays = domain.DefaultSearchHorizonDays
	}
	if c.Scheduling.MaxRangeDays == 0 {
		c.Scheduling.MaxRangeDays = domain.DefaultMaxRangeDays
	}
	if c.Scheduling.DefaultDailyCapacity == 0 {
		c.Scheduling.DefaultDailyCapacity = domain.DefaultDailyCapacityHours
	}
}

// Validate отклоняет невозможные значения
func (c *Config) Validate() error {
	var errs []error

	if c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("server.http_port %d out of range", c.Server.HTTPPort))
	}
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			errs = append(errs, errors.New("database.host and database.dbname are required for postgres storage"))
		}
	case DriverMemory:
		seen := make(map[int64]bool, len(c.Storage.Technicians))
		for _, seed := range c.Storage.Technicians {
			if seed.ID <= 0 || seen[seed.ID] {
				errs = append(errs, fmt.Errorf("storage.technicians: id %d must be positive and unique", seed.ID))
			}
			if seed.HoursPerDay < 0 || seed.HoursPerDay > domain.MaxRequestedHours {
				errs = append(errs, fmt.Errorf("storage.technicians: hours_per_day %.2f out of range", seed.HoursPerDay))
			}
			seen[seed.ID] = true
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver))
	}
	if c.Redis.Enabled && c.Redis.Address == "" {
		errs = append(errs, errors.New("redis.address is required when redis is enabled"))
	}
	if c.Kafka.Enabled && len(c.Kafka.BrokerList()) == 0 {
		errs = append(errs, errors.New("kafka.brokers is required when kafka is enabled"))
	}
	if c.Kafka.BufferSize < 0 {
		errs = append(errs, errors.New("kafka.buffer_size must not be negative"))
	}
	if c.Scheduling.LookAheadDays < 1 {
		errs = append(errs, errors.New("scheduling.look_ahead_days must be positive"))
	}
	if c.Scheduling.SearchHorizonDays < c.Scheduling.LookAheadDays {
		errs = append(errs, errors.New("scheduling.search_horizon_days must not be shorter than look_ahead_days"))
	}
	if c.Scheduling.MaxRangeDays < 1 {
		errs = append(errs, errors.New("scheduling.max_range_days must be positive"))
	}
	if c.Scheduling.DefaultDailyCapacity <= 0 || c.Scheduling.DefaultDailyCapacity > domain.MaxRequestedHours {
		errs = append(errs, errors.New("scheduling.default_daily_capacity must be in (0, 24]"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
