package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/Domenick1991/spacevoyager/internal/validation"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Booking  BookingConfig  `yaml:"booking"`
	Workflow WorkflowConfig `yaml:"workflow"`
}

type HTTPConfig struct {
	Address string `yaml:"address" validate:"required"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
	File   string `yaml:"file"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" validate:"oneof=memory file postgres redis"`
	Dir    string `yaml:"dir" validate:"required_if=Driver file"`
	Prefix string `yaml:"prefix"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.BookingEventsTopic != ""
}

type CatalogConfig struct {
	Dir                string `yaml:"dir"`
	LoadTimeoutSeconds int    `yaml:"load_timeout_seconds" validate:"gte=0"`
	CacheTTLSeconds    int    `yaml:"cache_ttl_seconds" validate:"gte=0"`
	UseCache           bool   `yaml:"use_cache"`
}

type BookingConfig struct {
	DefaultDurationDays int    `yaml:"default_duration_days" validate:"gte=0"`
	Currency            string `yaml:"currency" validate:"currency"`
	ReferencePrefix     string `yaml:"reference_prefix"`
}

type WorkflowConfig struct {
	AutosaveSeconds  int `yaml:"autosave_seconds" validate:"gte=0"`
	NoticeTTLSeconds int `yaml:"notice_ttl_seconds" validate:"gte=0"`
}

func (w WorkflowConfig) AutosaveInterval() time.Duration {
	return time.Duration(w.AutosaveSeconds) * time.Second
}

func (w WorkflowConfig) NoticeTTL() time.Duration {
	return time.Duration(w.NoticeTTLSeconds) * time.Second
}

func (c CatalogConfig) LoadTimeout() time.Duration {
	return time.Duration(c.LoadTimeoutSeconds) * time.Second
}

// Default returns the configuration used for every value the file leaves out.
func Default() Config {
	return Config{
		HTTP:     HTTPConfig{Address: "127.0.0.1:8080"},
		Log:      LogConfig{Level: "info", Format: "text"},
		Storage:  StorageConfig{Driver: "file", Dir: "data", Prefix: "spacevoyager:"},
		Catalog:  CatalogConfig{LoadTimeoutSeconds: 5, CacheTTLSeconds: 300},
		Booking:  BookingConfig{DefaultDurationDays: 7, Currency: "USD", ReferencePrefix: "SV-"},
		Workflow: WorkflowConfig{AutosaveSeconds: 30, NoticeTTLSeconds: 3},
	}
}

// ConfigPath resolves the config file location from CONFIG_PATH, reading a
// .env file first when one exists.
func ConfigPath() string {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "ignoring .env: %v\n", err)
	}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return validation.IsCurrency(fl.Field().String())
	})
	return v
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := newValidator().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
