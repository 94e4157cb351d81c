package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendNeo4j    = "neo4j"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Seed     SeedConfig
	Fallback FallbackConfig
	App      AppConfig
}

type ServerConfig struct {
	Port string
}

type StoreConfig struct {
	Backend     string
	Neo4j       Neo4jConfig
	PostgresDSN string
	Redis       RedisConfig
	Timeout     time.Duration
}

type Neo4jConfig struct {
	URI      string
	User     string
	Password string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SeedConfig struct {
	// Path is a CSV or YAML file; empty means the embedded table.
	Path    string
	OnStart bool
}

type FallbackConfig struct {
	URL           string
	APIKey        string
	Timeout       time.Duration
	RatePerSecond float64
}

// Enabled reports whether a fallback endpoint is configured.
func (f FallbackConfig) Enabled() bool {
	return f.URL != ""
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(getEnv("STORE_BACKEND", BackendNeo4j)),
			Neo4j: Neo4jConfig{
				URI:      getEnv("NEO4J_URI", ""),
				User:     getEnv("NEO4J_USER", ""),
				Password: getEnv("NEO4J_PASSWORD", ""),
			},
			PostgresDSN: getEnv("DB_DSN", ""),
			Redis: RedisConfig{
				Addr:     getEnv("REDIS_ADDR", ""),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       getEnvAsInt("REDIS_DB", 0),
			},
			Timeout: getEnvAsDuration("STORE_TIMEOUT", 5*time.Second),
		},
		Seed: SeedConfig{
			Path:    getEnv("SEED_PATH", ""),
			OnStart: getEnvAsBool("SEED_ON_START", true),
		},
		Fallback: FallbackConfig{
			URL:           getEnv("FALLBACK_URL", ""),
			APIKey:        getEnv("FALLBACK_API_KEY", ""),
			Timeout:       getEnvAsDuration("FALLBACK_TIMEOUT", 5*time.Second),
			RatePerSecond: getEnvAsFloat("FALLBACK_RPS", 5),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Store.Backend {
	case BackendNeo4j:
		if c.Store.Neo4j.URI == "" {
			return fmt.Errorf("NEO4J_URI is required for the neo4j backend")
		}
		if c.Store.Neo4j.User == "" {
			return fmt.Errorf("NEO4J_USER is required for the neo4j backend")
		}
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("DB_DSN is required for the postgres backend")
		}
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	if c.Store.Timeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.Fallback.Enabled() && c.Fallback.Timeout <= 0 {
		return fmt.Errorf("FALLBACK_TIMEOUT must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

// getEnvAsDuration accepts Go duration strings ("750ms", "5s") or a bare
// number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
