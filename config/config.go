package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	NATS    NATSConfig
	Cache   CacheConfig
	Redis   RedisConfig
}

type AppConfig struct {
	Env string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type StorageConfig struct {
	// DataDir is the root of the local-file backing medium; collections live
	// in DataDir/collections/<name>.json.
	DataDir string
}

type NATSConfig struct {
	// URL selects the remote object-storage mode when non-empty. The mode is
	// fixed for the lifetime of the process.
	URL       string
	Bucket    string
	OpTimeout time.Duration
}

type CacheConfig struct {
	TTL time.Duration
}

type RedisConfig struct {
	// Addr enables cross-process stock locks when non-empty.
	Addr     string
	Password string
	DB       int
}

func LoadEnv() *Config {
	return &Config{
		App: AppConfig{
			Env: getEnv("APP_ENV", "dev"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Storage: StorageConfig{
			DataDir: getEnv("DATA_DIR", "data"),
		},
		NATS: NATSConfig{
			URL:       getEnv("NATS_URL", ""),
			Bucket:    getEnv("NATS_BUCKET", "shopcore"),
			OpTimeout: getEnvDuration("NATS_OP_TIMEOUT", 10*time.Second),
		},
		Cache: CacheConfig{
			TTL: getEnvDuration("CACHE_TTL", time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
	}
}

// RemoteMode reports whether the remote object-storage backing is active,
// decided once at boot by the presence of NATS credentials.
func (c *Config) RemoteMode() bool {
	return c.NATS.URL != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
