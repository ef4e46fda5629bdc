package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Token secrets are distinct per purpose: a token
// signed for one purpose can never verify under another purpose's secret.
type Config struct {
	Env         string // application environment (e.g. "dev", "prod")
	Port        string // HTTP port to listen on
	StoreDriver string // credential store driver: "mysql" or "memory"

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	AccessSecret  string // secret used to sign access tokens
	RefreshSecret string // secret used to sign refresh tokens
	ResetSecret   string // secret used to sign password-reset tokens

	AccessTTL  time.Duration // access token time-to-live
	RefreshTTL time.Duration // refresh token time-to-live
	ResetTTL   time.Duration // password-reset token time-to-live

	BcryptCost  int    // bcrypt cost for password hashing
	FrontendURL string // base URL embedded in password-reset links
}

// Load reads configuration from environment variables. Required variables
// are enforced by must() and missing values cause the program to exit with a
// fatal log message; tunables fall back to the documented defaults.
func Load() Config {
	cfg := Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		StoreDriver:   envStr("STORE_DRIVER", "mysql"),
		AccessSecret:  must("JWT_ACCESS_SECRET"),
		RefreshSecret: must("JWT_REFRESH_SECRET"),
		ResetSecret:   must("JWT_RESET_SECRET"),
		AccessTTL:     time.Duration(envInt("ACCESS_TOKEN_TTL_MIN", 15)) * time.Minute,
		RefreshTTL:    time.Duration(envInt("REFRESH_TOKEN_TTL_DAYS", 30)) * 24 * time.Hour,
		ResetTTL:      time.Duration(envInt("RESET_TOKEN_TTL_MIN", 15)) * time.Minute,
		BcryptCost:    envInt("BCRYPT_COST", 12),
		FrontendURL:   envStr("FRONTEND_URL", "http://localhost:3000"),
	}
	if cfg.StoreDriver != "memory" {
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
