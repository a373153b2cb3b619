package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PabloGalante/goal-forge/internal/adapters/api"
	"github.com/PabloGalante/goal-forge/internal/adapters/storage/device"
	"github.com/PabloGalante/goal-forge/internal/adapters/storage/file"
	firestorestore "github.com/PabloGalante/goal-forge/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/goal-forge/internal/adapters/storage/memory"
	redisstore "github.com/PabloGalante/goal-forge/internal/adapters/storage/redis"
	sqlitestore "github.com/PabloGalante/goal-forge/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/goal-forge/internal/app/effort"
	"github.com/PabloGalante/goal-forge/internal/app/goals"
	"github.com/PabloGalante/goal-forge/internal/app/session"
	"github.com/PabloGalante/goal-forge/internal/config"
	"github.com/PabloGalante/goal-forge/internal/domain"
	"github.com/PabloGalante/goal-forge/internal/liveness"
	"github.com/PabloGalante/goal-forge/internal/observability"
)

// app holds everything a command needs, built once per invocation.
type app struct {
	cfg *config.Config
	log *slog.Logger

	kv       domain.KeyValueStore
	sessions *session.Store
	device   *device.Store
	client   *api.Client

	goals  *goals.Service
	effort *effort.Service
}

func newApp(ctx context.Context, cfg *config.Config, now func() time.Time) (*app, error) {
	log := observability.WithFields("backend_url", cfg.APIBaseURL, "device_store", cfg.DeviceStore)

	kv, err := openKV(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sessions := session.NewStore(kv)
	local := device.NewStore(kv)
	client := api.New(cfg.APIBaseURL,
		api.WithToken(sessions.Token),
		api.WithRateLimit(cfg.APIRPS, 1),
		api.WithLogger(log),
	)
	resolver := session.NewResolver(sessions, client, local)

	return &app{
		cfg:      cfg,
		log:      log,
		kv:       kv,
		sessions: sessions,
		device:   local,
		client:   client,
		goals:    goals.NewService(resolver, local, client, goals.WithNow(now)),
		effort:   effort.NewService(resolver),
	}, nil
}

// openKV builds the configured on-device store.
func openKV(ctx context.Context, cfg *config.Config) (domain.KeyValueStore, error) {
	switch cfg.DeviceStore {
	case config.DeviceStoreMemory:
		return memstore.NewKVStore(), nil
	case config.DeviceStoreSQLite:
		return sqlitestore.Open(cfg.SQLitePath)
	case config.DeviceStoreRedis:
		return redisstore.NewStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), nil
	case config.DeviceStoreFirestore:
		return firestorestore.NewStore(ctx, cfg.GCPProjectID)
	case config.DeviceStoreFile:
		return file.NewStore(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown device store %q", cfg.DeviceStore)
	}
}

func (a *app) monitor(opts ...liveness.Option) *liveness.Monitor {
	cfg := liveness.Config{
		ProbeInterval:   a.cfg.ProbeInterval,
		MonitorInterval: a.cfg.MonitorInterval,
		RequestTimeout:  a.cfg.RequestTimeout,
	}
	opts = append([]liveness.Option{liveness.WithLogger(a.log)}, opts...)
	return liveness.New(a.client, cfg, opts...)
}

func (a *app) Close() error {
	return a.kv.Close()
}
