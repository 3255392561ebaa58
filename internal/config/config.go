package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration.  Values come from
// environment variables; required ones are enforced by must() and
// abort startup when missing.
type Config struct {
	Env        string // application environment (dev/test/prod)
	Port       string // HTTP port to listen on
	DBUser     string // database username
	DBPass     string // database password (optional)
	DBHost     string // database host
	DBPort     string // database port
	DBName     string // database name
	JWTSecret  string // secret used to sign session tokens
	BcryptCost int    // bcrypt work factor for password hashing

	FactoryURL string // fulfillment factory endpoint
	AMQPURL    string // rabbitmq broker URL (empty disables publishing)

	ListPageSize int // default page size for list endpoints

	LogLevel string // zap level: debug/info/warn/error
	LogJSON  bool   // JSON log encoding when true

	MenuCacheTTLSec int // redis menu cache TTL in seconds, 0 disables
	LoginRateLimit  int // login attempts per IP per minute, 0 disables
}

// Load reads configuration from the environment.  Required variables
// cause a fatal log when absent; the rest fall back to defaults.
func Load() Config {
	return Config{
		Env:        getenv("APP_ENV", "dev"),
		Port:       must("APP_PORT"),
		DBUser:     must("DB_USER"),
		DBPass:     os.Getenv("DB_PASS"),
		DBHost:     must("DB_HOST"),
		DBPort:     must("DB_PORT"),
		DBName:     must("DB_NAME"),
		JWTSecret:  must("JWT_SECRET"),
		BcryptCost: atoi(getenv("BCRYPT_COST", "10")),

		FactoryURL: getenv("FACTORY_URL", "https://pizza-factory.example.com/api/order"),
		AMQPURL:    os.Getenv("AMQP_URL"),

		ListPageSize: atoi(getenv("LIST_PAGE_SIZE", "10")),

		LogLevel: getenv("LOG_LEVEL", "info"),
		LogJSON:  getenv("LOG_JSON", "true") == "true",

		MenuCacheTTLSec: atoi(getenv("MENU_CACHE_TTL_SEC", "30")),
		LoginRateLimit:  atoi(getenv("LOGIN_RATE_LIMIT", "0")),
	}
}

// must retrieves a required environment variable or aborts startup.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}
