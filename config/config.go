package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends.
const (
	StoreAuto  = "auto"
	StoreMongo = "mongo"
	StoreLocal = "local"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`

	// Persistence. STORE_BACKEND=auto picks mongo when DATABASE_URL is set.
	StoreBackend string `mapstructure:"STORE_BACKEND"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`
	SeedFile     string `mapstructure:"SEED_FILE"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisLocalDB         int    `mapstructure:"REDIS_LOCAL_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// Reminders.
	ReminderQueue   string `mapstructure:"REMINDER_QUEUE"`
	ReminderOffsets string `mapstructure:"REMINDER_OFFSETS"`

	// Payments.
	StripeKey              string  `mapstructure:"STRIPE_KEY"`
	StripeWebhookSecret    string  `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	PlatformCommissionRate float64 `mapstructure:"PLATFORM_COMMISSION_RATE"`
	Currency               string  `mapstructure:"CURRENCY"`

	// Clinic policy.
	ClinicTimezone     string        `mapstructure:"CLINIC_TIMEZONE"`
	CancellationWindow time.Duration `mapstructure:"CANCELLATION_WINDOW"`

	// Third-party services.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	CloudinaryURL           string `mapstructure:"CLOUDINARY_URL"`
}

var keys = []string{
	"APP_PORT", "ENV", "LOG_LEVEL", "MAX_REQUESTS_PER_MIN", "JWT_SECRET",
	"STORE_BACKEND", "DATABASE_URL", "DATABASE_NAME", "SEED_FILE",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_LOCAL_DB", "REDIS_REMINDER_QUEUE_DB",
	"REMINDER_QUEUE", "REMINDER_OFFSETS",
	"STRIPE_KEY", "STRIPE_WEBHOOK_SECRET", "PLATFORM_COMMISSION_RATE", "CURRENCY",
	"CLINIC_TIMEZONE", "CANCELLATION_WINDOW",
	"FIREBASE_CREDENTIALS_FILE", "CLOUDINARY_URL",
}

// LoadConfig reads config.yaml (current or ./config directory) if present, overlays
// environment variables and defaults, and validates the result.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	// Automatically use environment variables where available.
	v.AutomaticEnv()
	// AutomaticEnv only applies to keys viper already knows about.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: failed to read config file: %w", err)
		}
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("STORE_BACKEND", StoreAuto)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATABASE_NAME", "wuauser")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_LOCAL_DB", 0)
	v.SetDefault("REDIS_REMINDER_QUEUE_DB", 3)
	v.SetDefault("REMINDER_QUEUE", "reminders")
	v.SetDefault("REMINDER_OFFSETS", "24h,1h")
	v.SetDefault("PLATFORM_COMMISSION_RATE", 0.10)
	v.SetDefault("CURRENCY", "mxn")
	v.SetDefault("CLINIC_TIMEZONE", "America/Mexico_City")
	v.SetDefault("CANCELLATION_WINDOW", "2h")
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreAuto, StoreMongo, StoreLocal:
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.StoreBackend == StoreMongo && c.DatabaseURL == "" {
		return errors.New("config: STORE_BACKEND=mongo requires DATABASE_URL")
	}
	if c.PlatformCommissionRate < 0 || c.PlatformCommissionRate >= 1 {
		return fmt.Errorf("config: PLATFORM_COMMISSION_RATE must be in [0,1), got %v", c.PlatformCommissionRate)
	}
	if c.CancellationWindow < 0 {
		return fmt.Errorf("config: CANCELLATION_WINDOW must not be negative, got %s", c.CancellationWindow)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.ReminderOffsetDurations(); err != nil {
		return err
	}
	if c.IsProduction() {
		if c.StripeWebhookSecret == "" {
			return errors.New("config: STRIPE_WEBHOOK_SECRET is required in production")
		}
		if c.JWTSecret == "" {
			return errors.New("config: JWT_SECRET is required in production")
		}
	}
	return nil
}

// UseMongo reports whether the remote store should be used.
func (c *Config) UseMongo() bool {
	switch c.StoreBackend {
	case StoreMongo:
		return true
	case StoreLocal:
		return false
	default:
		return c.DatabaseURL != ""
	}
}

// Location loads the clinic timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.ClinicTimezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.ClinicTimezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid CLINIC_TIMEZONE %q: %w", c.ClinicTimezone, err)
	}
	return loc, nil
}

// ReminderOffsetDurations parses REMINDER_OFFSETS ("24h,1h").
func (c *Config) ReminderOffsetDurations() ([]time.Duration, error) {
	var out []time.Duration
	for _, part := range strings.Split(c.ReminderOffsets, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := time.ParseDuration(part)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("config: invalid REMINDER_OFFSETS entry %q", part)
		}
		out = append(out, d)
	}
	return out, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
