package config // package config loads application configuration from environment variables

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DefaultSecret is the development signing secret.  It is rejected when
// APP_ENV is "prod".
const DefaultSecret = "supersecretkey"

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Every value has a local development default so
// the service starts with no environment at all.
type Config struct {
	Env           string        // application environment (dev, test, prod)
	Port          string        // HTTP port to listen on
	DBDriver      string        // "sqlite" or "mysql"
	DatabaseURL   string        // driver specific DSN
	JWTSecret     string        // secret used to sign access tokens
	AccessTTL     time.Duration // access token lifetime
	BcryptCost    int           // bcrypt cost for password hashing
	WSRequireAuth bool          // require a bearer token on live status connections
}

// Load reads configuration values from environment variables and returns a
// Config.  A production environment running with the development secret is
// a fatal misconfiguration.
func Load() Config {
	cfg := Config{
		Env:           envStr("APP_ENV", "dev"),
		Port:          envStr("APP_PORT", "8000"),
		DBDriver:      envStr("DB_DRIVER", "sqlite"),
		JWTSecret:     envStr("SECRET_KEY", DefaultSecret),
		AccessTTL:     time.Duration(envInt("ACCESS_TOKEN_TTL_MIN", 60)) * time.Minute,
		BcryptCost:    envInt("BCRYPT_COST", bcrypt.DefaultCost),
		WSRequireAuth: envBool("WS_REQUIRE_AUTH", false),
	}
	cfg.DatabaseURL = databaseURL(cfg.DBDriver)
	if cfg.Env == "prod" && cfg.JWTSecret == DefaultSecret {
		log.Fatalf("SECRET_KEY must be set when APP_ENV=prod")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	return cfg
}

// databaseURL resolves the DSN.  DATABASE_URL wins; for MySQL the DSN can
// also be composed from the DB_* variables.
func databaseURL(driver string) string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	if driver != "mysql" {
		return "kleanly.db"
	}
	auth := envStr("DB_USER", "root")
	if pass := os.Getenv("DB_PASS"); pass != "" {
		auth = fmt.Sprintf("%s:%s", auth, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, envStr("DB_HOST", "localhost"), envStr("DB_PORT", "3306"), envStr("DB_NAME", "kleanly"))
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
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
