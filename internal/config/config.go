package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Weather   WeatherConfig
	SMTP      SMTPConfig
	Geocode   GeocodeConfig
	Chart     ChartConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port    int
	GinMode string // debug, release, test
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// WeatherConfig holds the forecast provider endpoint and credential
type WeatherConfig struct {
	Provider     string // openweathermap, openmeteo
	BaseURL      string
	APIKey       string
	OpenMeteoURL string
	Timeout      time.Duration
}

// SMTPConfig holds the mail submission endpoint and sender identity
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // defaults to Username
	Timeout  time.Duration
}

// GeocodeConfig controls the optional reverse lookup of place names
type GeocodeConfig struct {
	Enabled   bool
	BaseURL   string
	UserAgent string
}

// ChartConfig holds the fixed rendering parameters
type ChartConfig struct {
	WidthInches  float64
	HeightInches float64
	DPI          int
}

// RateLimitConfig bounds how often the send endpoints may be triggered
type RateLimitConfig struct {
	SendsPerSecond float64
	Burst          int
}

// Load reads configuration from a .env file, a config file and environment variables
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith loads configuration into the supplied viper instance
func LoadWith(v *viper.Viper) (*Config, error) {
	// Secrets usually live in .env during development; a missing file is fine
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	// Set config file name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.forecast-mailer")

	setDefaults(v)

	// Read from environment variables, e.g. FORECAST_MAILER_SMTP_PASSWORD
	v.SetEnvPrefix("FORECAST_MAILER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.ginmode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("weather.provider", "openweathermap")
	v.SetDefault("weather.baseurl", "https://api.openweathermap.org/data/2.5/forecast")
	v.SetDefault("weather.apikey", "")
	v.SetDefault("weather.openmeteourl", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("weather.timeout", 10*time.Second)

	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.timeout", 15*time.Second)

	v.SetDefault("geocode.enabled", true)
	v.SetDefault("geocode.baseurl", "https://nominatim.openstreetmap.org/reverse")
	v.SetDefault("geocode.useragent", "forecast-mailer/1.0")

	v.SetDefault("chart.widthinches", 12.0)
	v.SetDefault("chart.heightinches", 8.0)
	v.SetDefault("chart.dpi", 96)

	v.SetDefault("ratelimit.sendspersecond", 0.2)
	v.SetDefault("ratelimit.burst", 3)
}

// GetServerAddr returns the server address in the format ":port"
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// NewLogger creates a new slog.Logger writing to stdout based on the configuration
func (c *Config) NewLogger() *slog.Logger {
	return c.NewLoggerTo(os.Stdout)
}

// NewLoggerTo creates a new slog.Logger writing to w
func (c *Config) NewLoggerTo(w io.Writer) *slog.Logger {
	// Parse log level
	var level slog.Level
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Create handler options
	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Choose handler based on format
	var handler slog.Handler
	switch strings.ToLower(c.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default: // "text" or anything else
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
