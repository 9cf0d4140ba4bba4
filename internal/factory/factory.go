package factory

import (
	"fmt"
	"log/slog"

	"github.com/hollowpoint-games/accountsync/internal/cache"
	filecache "github.com/hollowpoint-games/accountsync/internal/cache/file"
	memorycache "github.com/hollowpoint-games/accountsync/internal/cache/memory"
	rediscache "github.com/hollowpoint-games/accountsync/internal/cache/redis"
	"github.com/hollowpoint-games/accountsync/internal/config"
	"github.com/hollowpoint-games/accountsync/internal/dependencies/clock"
	"github.com/hollowpoint-games/accountsync/internal/dependencies/random"
	"github.com/hollowpoint-games/accountsync/internal/pending"
	"github.com/hollowpoint-games/accountsync/internal/profile"
	"github.com/hollowpoint-games/accountsync/internal/remote"
	"github.com/hollowpoint-games/accountsync/internal/session"
	"github.com/hollowpoint-games/accountsync/internal/transport"
)

// App is the assembled client: cache, transport, profile store and session
// manager wired together. The composition root; collaborators hold
// references obtained here instead of looking components up at runtime.
type App struct {
	Logger   *slog.Logger
	Cache    cache.Cache
	Client   *remote.Client
	Registry *pending.Registry
	Backend  transport.Backend
	Profiles *profile.Store
	Sessions *session.Manager

	// Bridge is set when the bridged transport is active; its Complete
	// method is the host completion entry point.
	Bridge *transport.Bridged
}

// New assembles an App from configuration.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	return newWithDependencies(cfg, logger, clock.New(), random.New())
}

// newWithDependencies is the shared assembly path; tests inject mocks here.
func newWithDependencies(cfg config.Config, logger *slog.Logger, clk clock.Clock, rnd random.Random) (*App, error) {
	localCache, err := buildCache(cfg)
	if err != nil {
		return nil, err
	}

	client := remote.NewClient(cfg.ServerURL)
	registry := pending.NewRegistry(clk, logger)

	var backend transport.Backend
	var bridge *transport.Bridged
	switch cfg.Transport {
	case config.TransportBridged:
		host := transport.NewLoopbackHost(client, logger)
		bridge = transport.NewBridged(host, registry, logger, transport.BridgedConfig{
			Timeout: cfg.BridgeTimeout,
		})
		host.Bind(bridge)
		backend = bridge
	default:
		backend = transport.NewDirect(client, registry)
	}

	profiles := profile.NewStore(localCache, transport.NewBackendSyncer(backend), clk, logger)
	sessions := session.New(backend, profiles, localCache, clk, rnd, logger, session.Config{
		RestoreAttempts: cfg.RestoreAttempts,
		RestoreInterval: cfg.RestoreInterval,
	})

	return &App{
		Logger:   logger,
		Cache:    localCache,
		Client:   client,
		Registry: registry,
		Backend:  backend,
		Profiles: profiles,
		Sessions: sessions,
		Bridge:   bridge,
	}, nil
}

func buildCache(cfg config.Config) (cache.Cache, error) {
	switch cfg.CacheBackend {
	case config.CacheMemory:
		return memorycache.New(), nil
	case config.CacheFile, "":
		return filecache.Open(cfg.CachePath)
	case config.CacheRedis:
		redisCfg := rediscache.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		return rediscache.New(redisCfg)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
