// Package config loads the tafel configuration.
//
// Sources, later ones winning: built-in defaults, a YAML file, a .env file and the
// process environment. Values are decoded with mapstructure and checked with validator.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is read when no file is given and it exists.
	DefaultPath = "tafel.yaml"
	// DefaultEnvFile is read when it exists.
	DefaultEnvFile = ".env"
)

// Config is the complete application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Knowledge  KnowledgeConfig  `mapstructure:"knowledge" yaml:"knowledge"`
	Session    SessionConfig    `mapstructure:"session" yaml:"session"`
	Mail       MailConfig       `mapstructure:"mail" yaml:"mail"`
	Restaurant RestaurantConfig `mapstructure:"restaurant" yaml:"restaurant"`
	QueryLog   QueryLogConfig   `mapstructure:"query_log" yaml:"query_log"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Addr       string `mapstructure:"addr" yaml:"addr" validate:"required,hostname_port"`
	TrustProxy bool   `mapstructure:"trust_proxy" yaml:"trust_proxy"`
	// RateLimit is messages per second per client; 0 disables limiting.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit" validate:"gte=0"`
	RateBurst int     `mapstructure:"rate_burst" yaml:"rate_burst" validate:"gte=0"`
}

type KnowledgeConfig struct {
	// Path to a YAML or JSON knowledge base; empty uses the built-in one.
	Path string `mapstructure:"path" yaml:"path"`
}

type SessionConfig struct {
	Backend       string        `mapstructure:"backend" yaml:"backend" validate:"oneof=memory redis"`
	TTL           time.Duration `mapstructure:"ttl" yaml:"ttl" validate:"gte=0"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval" validate:"gte=0"`
	// EncryptionKey is a base64 AES-256 key sealing sessions at rest (Redis only).
	EncryptionKey string      `mapstructure:"encryption_key" yaml:"encryption_key" validate:"omitempty,base64"`
	Redis         RedisConfig `mapstructure:"redis" yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr" validate:"omitempty,hostname_port"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db" validate:"gte=0"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix"`
}

type MailConfig struct {
	Host           string        `mapstructure:"host" yaml:"host" validate:"required"`
	Port           int           `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
	Sender         string        `mapstructure:"sender" yaml:"sender" validate:"omitempty,email"`
	Password       string        `mapstructure:"password" yaml:"password"`
	Receiver       string        `mapstructure:"receiver" yaml:"receiver" validate:"omitempty,email"`
	AttachCalendar bool          `mapstructure:"attach_calendar" yaml:"attach_calendar"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
}

// Enabled reports whether all credentials for sending mail are present.
func (m MailConfig) Enabled() bool {
	return m.Sender != "" && m.Password != "" && m.Receiver != ""
}

type RestaurantConfig struct {
	Name          string        `mapstructure:"name" yaml:"name"`
	Address       string        `mapstructure:"address" yaml:"address"`
	Phone         string        `mapstructure:"phone" yaml:"phone" validate:"required"`
	Timezone      string        `mapstructure:"timezone" yaml:"timezone" validate:"omitempty,timezone"`
	EventDuration time.Duration `mapstructure:"event_duration" yaml:"event_duration" validate:"gt=0"`
}

// Location resolves Timezone, falling back to time.Local.
func (r RestaurantConfig) Location() *time.Location {
	if r.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

type QueryLogConfig struct {
	// Path of the unanswered-query log; empty disables it.
	Path       string `mapstructure:"path" yaml:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days" validate:"gte=0"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
	// MaskPII replaces customer names and e-mail addresses in logs.
	MaskPII bool `mapstructure:"mask_pii" yaml:"mask_pii"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:      ":8080",
			RateLimit: 2,
			RateBurst: 10,
		},
		Session: SessionConfig{
			Backend:       "memory",
			TTL:           30 * time.Minute,
			SweepInterval: time.Minute,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "tafel:session:",
			},
		},
		Mail: MailConfig{
			Host:           "smtp.web.de",
			Port:           465,
			AttachCalendar: true,
			Timeout:        20 * time.Second,
		},
		Restaurant: RestaurantConfig{
			Name:          "Restaurant Muster",
			Address:       "Musterstraße 12, 10115 Berlin",
			Phone:         "030-98765432",
			Timezone:      "Europe/Berlin",
			EventDuration: 2 * time.Hour,
		},
		QueryLog: QueryLogConfig{
			Path:       "unanswered_queries.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 90,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// envBindings maps environment variables to configuration keys.
// SENDER_EMAIL, SENDER_PASSWORD and RECEIVER_EMAIL keep the names used by existing deployments.
var envBindings = map[string]string{
	"TAFEL_SERVER_ADDR":            "server.addr",
	"TAFEL_SERVER_TRUST_PROXY":     "server.trust_proxy",
	"TAFEL_SERVER_RATE_LIMIT":      "server.rate_limit",
	"TAFEL_SERVER_RATE_BURST":      "server.rate_burst",
	"TAFEL_KNOWLEDGE_PATH":         "knowledge.path",
	"TAFEL_SESSION_BACKEND":        "session.backend",
	"TAFEL_SESSION_TTL":            "session.ttl",
	"TAFEL_SESSION_SWEEP_INTERVAL": "session.sweep_interval",
	"TAFEL_SESSION_ENCRYPTION_KEY": "session.encryption_key",
	"TAFEL_REDIS_ADDR":             "session.redis.addr",
	"TAFEL_REDIS_PASSWORD":         "session.redis.password",
	"TAFEL_REDIS_DB":               "session.redis.db",
	"TAFEL_REDIS_PREFIX":           "session.redis.prefix",
	"TAFEL_MAIL_HOST":              "mail.host",
	"TAFEL_MAIL_PORT":              "mail.port",
	"TAFEL_MAIL_ATTACH_CALENDAR":   "mail.attach_calendar",
	"TAFEL_MAIL_TIMEOUT":           "mail.timeout",
	"SENDER_EMAIL":                 "mail.sender",
	"SENDER_PASSWORD":              "mail.password",
	"RECEIVER_EMAIL":               "mail.receiver",
	"TAFEL_RESTAURANT_NAME":        "restaurant.name",
	"TAFEL_RESTAURANT_ADDRESS":     "restaurant.address",
	"TAFEL_RESTAURANT_PHONE":       "restaurant.phone",
	"TAFEL_RESTAURANT_TIMEZONE":    "restaurant.timezone",
	"TAFEL_QUERY_LOG_PATH":         "query_log.path",
	"TAFEL_LOG_LEVEL":              "log.level",
	"TAFEL_LOG_FORMAT":             "log.format",
	"TAFEL_LOG_MASK_PII":           "log.mask_pii",
}

type loadOptions struct {
	envFile  string
	lookup   func(string) (string, bool)
	explicit bool
}

// Option configures Load.
type Option func(*loadOptions)

// WithEnvFile reads variables from path instead of DefaultEnvFile. An empty path disables .env loading.
func WithEnvFile(path string) Option {
	return func(o *loadOptions) {
		o.envFile = path
	}
}

// WithLookupEnv replaces os.LookupEnv (used by tests).
func WithLookupEnv(lookup func(string) (string, bool)) Option {
	return func(o *loadOptions) {
		o.lookup = lookup
	}
}

// Load builds the configuration from path (or DefaultPath when empty and present).
func Load(path string, opts ...Option) (*Config, error) {
	o := loadOptions{envFile: DefaultEnvFile, lookup: os.LookupEnv, explicit: path != ""}
	for _, opt := range opts {
		opt(&o)
	}
	if path == "" {
		path = DefaultPath
	}

	raw := map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !o.explicit:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	fileEnv := map[string]string{}
	if o.envFile != "" {
		fileEnv, err = godotenv.Read(o.envFile)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read %s: %w", o.envFile, err)
			}
			fileEnv = map[string]string{}
		}
	}

	for name, key := range envBindings {
		value, ok := o.lookup(name)
		if !ok {
			value, ok = fileEnv[name]
		}
		if ok {
			setKey(raw, key, value)
		}
	}

	cfg := Default()
	if err := decode(raw, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decode(raw map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Session.Backend == "redis" && c.Session.Redis.Addr == "" {
		return errors.New("invalid configuration: session.redis.addr is required for the redis backend")
	}
	return nil
}

// setKey stores value at a dotted key, creating nested maps as needed.
func setKey(m map[string]any, key, value string) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}
