package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Transport selects the backend variant
const (
	TransportDirect  = "direct"
	TransportBridged = "bridged"
)

// Cache backend names
const (
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"
)

// Config is the client-side configuration, loaded from the environment.
type Config struct {
	ServerURL string `env:"ACCOUNTSYNC_SERVER_URL" envDefault:"http://localhost:8480"`
	Transport string `env:"ACCOUNTSYNC_TRANSPORT" envDefault:"direct"`

	CacheBackend string `env:"ACCOUNTSYNC_CACHE" envDefault:"file"`
	CachePath    string `env:"ACCOUNTSYNC_CACHE_PATH" envDefault:"accountsync.json"`
	RedisURL     string `env:"ACCOUNTSYNC_REDIS_URL" envDefault:"redis://localhost:6379"`

	BridgeTimeout   time.Duration `env:"ACCOUNTSYNC_BRIDGE_TIMEOUT" envDefault:"10s"`
	RestoreAttempts int           `env:"ACCOUNTSYNC_RESTORE_ATTEMPTS" envDefault:"10"`
	RestoreInterval time.Duration `env:"ACCOUNTSYNC_RESTORE_INTERVAL" envDefault:"500ms"`

	LogLevel string `env:"ACCOUNTSYNC_LOG_LEVEL" envDefault:"info"`
}

// ServerConfig is the account service's configuration.
type ServerConfig struct {
	ListenAddr string        `env:"ACCOUNTD_ADDR" envDefault:":8480"`
	SigningKey string        `env:"ACCOUNTD_SIGNING_KEY"`
	AccessTTL  time.Duration `env:"ACCOUNTD_ACCESS_TTL" envDefault:"1h"`
	RefreshTTL time.Duration `env:"ACCOUNTD_REFRESH_TTL" envDefault:"720h"`
	LogLevel   string        `env:"ACCOUNTD_LOG_LEVEL" envDefault:"info"`
}

// Load reads the client configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Transport != TransportDirect && cfg.Transport != TransportBridged {
		return Config{}, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
	return cfg, nil
}

// LoadServer reads the account service configuration from the environment.
func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("failed to parse server config: %w", err)
	}
	return cfg, nil
}
