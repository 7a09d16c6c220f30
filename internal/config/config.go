package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port              string
	DBURL             string
	JWTSecret         string
	JWTExpiry         time.Duration
	BcryptCost        int
	ReadTimeoutSecs   int
	WriteTimeoutSecs  int
	IdleTimeoutSecs   int
	DBMaxConns        int
	DBMinConns        int
	DBMaxIdleSecs     int
	DBMaxLifeSecs     int
	DBConnTimeoutSecs int
	DBAcquireSecs     int
	DBStatementCache  int
	DBAutoMigrate     bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSOrigins       []string
	LogLevel          string
	LogFormat         string
}

// Load reads configuration from environment variables, applying defaults and validation.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "3000")
	v.SetDefault("JWT_EXPIRES_IN", "24h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_IDLE_TIMEOUT", 60)
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_MAX_CONN_IDLE_SECS", 300)
	v.SetDefault("DB_MAX_CONN_LIFETIME_SECS", 3600)
	v.SetDefault("DB_CONN_TIMEOUT_SECS", 10)
	v.SetDefault("DB_ACQUIRE_TIMEOUT_SECS", 5)
	v.SetDefault("DB_STATEMENT_CACHE_CAPACITY", 256)
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "15m")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	cfg := Config{
		Port:              v.GetString("PORT"),
		DBURL:             v.GetString("DB_URL"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		BcryptCost:        v.GetInt("BCRYPT_COST"),
		ReadTimeoutSecs:   v.GetInt("SERVER_READ_TIMEOUT"),
		WriteTimeoutSecs:  v.GetInt("SERVER_WRITE_TIMEOUT"),
		IdleTimeoutSecs:   v.GetInt("SERVER_IDLE_TIMEOUT"),
		DBMaxConns:        v.GetInt("DB_MAX_CONNS"),
		DBMinConns:        v.GetInt("DB_MIN_CONNS"),
		DBMaxIdleSecs:     v.GetInt("DB_MAX_CONN_IDLE_SECS"),
		DBMaxLifeSecs:     v.GetInt("DB_MAX_CONN_LIFETIME_SECS"),
		DBConnTimeoutSecs: v.GetInt("DB_CONN_TIMEOUT_SECS"),
		DBAcquireSecs:     v.GetInt("DB_ACQUIRE_TIMEOUT_SECS"),
		DBStatementCache:  v.GetInt("DB_STATEMENT_CACHE_CAPACITY"),
		DBAutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		RateLimitRequests: v.GetInt("RATE_LIMIT_REQUESTS"),
		CORSOrigins:       splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		LogLevel:          strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:         strings.ToLower(v.GetString("LOG_FORMAT")),
	}

	var err error
	if cfg.JWTExpiry, err = time.ParseDuration(v.GetString("JWT_EXPIRES_IN")); err != nil || cfg.JWTExpiry <= 0 {
		return Config{}, fmt.Errorf("JWT_EXPIRES_IN must be a positive duration")
	}
	if cfg.RateLimitWindow, err = time.ParseDuration(v.GetString("RATE_LIMIT_WINDOW")); err != nil || cfg.RateLimitWindow <= 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_WINDOW must be a positive duration")
	}

	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return Config{}, fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBAcquireSecs < 0 {
		return Config{}, fmt.Errorf("DB_ACQUIRE_TIMEOUT_SECS must be non-negative")
	}
	if cfg.DBStatementCache < 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	if cfg.RateLimitRequests <= 0 {
		return Config{}, fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
	}
	switch cfg.LogFormat {
	case "json", "console":
	default:
		return Config{}, fmt.Errorf("LOG_FORMAT must be json or console")
	}

	return cfg, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
