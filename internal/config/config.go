package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field maps 1:1 to an env var.
type Config struct {
	// Server
	Port     int    `mapstructure:"PORT"`
	Env      string `mapstructure:"APP_ENV"` // development | production
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Database: postgres://... or sqlite://path/to/file.db
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`

	// Redis caches label projections and shares rate limit counters; empty disables both
	RedisURL string `mapstructure:"REDIS_URL"`

	// Requests per minute per client IP; 0 disables the limiter
	RateLimitPorMinuto int `mapstructure:"RATE_LIMIT_POR_MINUTO"`

	// Labels
	EtiquetaCacheTTL       time.Duration `mapstructure:"ETIQUETA_CACHE_TTL"`
	EtiquetaMaxProfundidad int           `mapstructure:"ETIQUETA_MAX_PROFUNDIDAD"`
	EmpresaNombre          string        `mapstructure:"EMPRESA_NOMBRE"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// Sensible defaults for development
	v.SetDefault("PORT", 8000)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "sqlite://trazabilidad.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RATE_LIMIT_POR_MINUTO", 1000)
	v.SetDefault("ETIQUETA_CACHE_TTL", "1h")
	v.SetDefault("ETIQUETA_MAX_PROFUNDIDAD", 16)
	v.SetDefault("EMPRESA_NOMBRE", "Obrador")

	// Optional .env file; a missing file is fine
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
