package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env      string
	Timezone string
	SeedFile string

	Log        LogConfig
	Export     ExportConfig
	Attendance AttendanceConfig
	Metrics    MetricsConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// ExportConfig controls where rendered session documents are written.
type ExportConfig struct {
	StorageDir string
	Format     string
	ResultTTL  time.Duration
	Workers    int
	MaxRetries int
}

// AttendanceConfig tunes batch save behaviour.
type AttendanceConfig struct {
	BulkMode string
}

// MetricsConfig toggles in-process instrumentation.
type MetricsConfig struct {
	Enabled bool
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c == nil || c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Timezone = v.GetString("TIMEZONE")
	cfg.SeedFile = v.GetString("SEED_FILE")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Export = ExportConfig{
		StorageDir: v.GetString("EXPORT_STORAGE_DIR"),
		Format:     strings.ToLower(v.GetString("EXPORT_FORMAT")),
		ResultTTL:  parseDuration(v.GetString("EXPORT_RESULT_TTL"), 24*time.Hour),
		Workers:    v.GetInt("EXPORT_WORKERS"),
		MaxRetries: v.GetInt("EXPORT_MAX_RETRIES"),
	}

	cfg.Attendance = AttendanceConfig{
		BulkMode: v.GetString("ATTENDANCE_BULK_MODE"),
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("METRICS_ENABLED"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("SEED_FILE", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("EXPORT_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORT_FORMAT", "pdf")
	v.SetDefault("EXPORT_RESULT_TTL", "24h")
	v.SetDefault("EXPORT_WORKERS", 2)
	v.SetDefault("EXPORT_MAX_RETRIES", 2)

	v.SetDefault("ATTENDANCE_BULK_MODE", "atomic")
	v.SetDefault("METRICS_ENABLED", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
