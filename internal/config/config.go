package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"taskhive/internal/token"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Token lifetimes are given as specs of the
// form <integer><unit> (unit s/m/h/d), e.g. "15m" or "7d".
type Config struct {
	Env           string        // application environment (dev/test/prod)
	Port          string        // HTTP port to listen on
	DBUser        string        // database username
	DBPass        string        // database password (optional)
	DBHost        string        // database host address
	DBPort        string        // database port number
	DBName        string        // database name
	DBMaxOpen     int           // max open database connections
	DBMaxIdle     int           // max idle database connections
	DBMaxLifetime time.Duration // max lifetime of a pooled connection
	AccessSecret  string        // secret used to sign access tokens
	RefreshSecret string        // secret used to sign refresh tokens
	AccessTTL     time.Duration // access token lifetime
	RefreshTTL    time.Duration // refresh token lifetime
	BcryptCost    int           // bcrypt cost for password hashing
	SweepInterval time.Duration // expired-session sweep cadence
	AMQPURL       string        // RabbitMQ URL (empty disables events)
	UploadDir     string        // directory for attachment files
}

// Load reads configuration from the environment. An optional .env file
// is applied first. The signing secrets and database coordinates are
// required; a missing value aborts process start rather than serving
// traffic with a broken trust root.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:           getenv("APP_ENV", "dev"),
		Port:          getenv("APP_PORT", "8080"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"),
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		DBMaxOpen:     envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdle:     envInt("DB_MAX_IDLE_CONNS", 25),
		DBMaxLifetime: envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		AccessSecret:  must("JWT_ACCESS_SECRET"),
		RefreshSecret: must("JWT_REFRESH_SECRET"),
		AccessTTL:     mustTTL("ACCESS_TOKEN_TTL", "15m"),
		RefreshTTL:    mustTTL("REFRESH_TOKEN_TTL", "7d"),
		BcryptCost:    envInt("BCRYPT_COST", 10),
		SweepInterval: mustTTL("SESSION_SWEEP_INTERVAL", "1h"),
		AMQPURL:       os.Getenv("RABBITMQ_URL"),
		UploadDir:     getenv("UPLOAD_DIR", "uploads"),
	}
}

// must retrieves a required environment variable. If the variable is
// unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustTTL parses a lifetime spec env var, falling back to def when the
// variable is unset. A malformed value is fatal.
func mustTTL(key, def string) time.Duration {
	s := getenv(key, def)
	d, err := token.ParseTTL(s)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q (want <integer><unit>, unit s/m/h/d)", key, s)
	}
	return d
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
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
