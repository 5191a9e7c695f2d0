package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/pulseconnect/hybrid-client/internal/api"
	"github.com/pulseconnect/hybrid-client/internal/api/metrics"
	"github.com/pulseconnect/hybrid-client/internal/core/connectivity"
	"github.com/pulseconnect/hybrid-client/internal/core/localstore"
	"github.com/pulseconnect/hybrid-client/internal/core/ports"
	"github.com/pulseconnect/hybrid-client/internal/core/service"
	"github.com/pulseconnect/hybrid-client/internal/infrastructure/config"
	"github.com/pulseconnect/hybrid-client/internal/infrastructure/db/file"
	"github.com/pulseconnect/hybrid-client/internal/infrastructure/db/memory"
	mongostore "github.com/pulseconnect/hybrid-client/internal/infrastructure/db/mongo"
	redisstore "github.com/pulseconnect/hybrid-client/internal/infrastructure/db/redis"
	"github.com/pulseconnect/hybrid-client/internal/infrastructure/netwatch"
	"github.com/pulseconnect/hybrid-client/internal/infrastructure/supabase"
	"github.com/pulseconnect/hybrid-client/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title          PulseConnect Hybrid Client API
// @version        1.0
// @description    Local companion API over the hybrid auth and data services.
// @host           localhost:8080
// @BasePath       /
// @schemes        http
func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "pulseconnect-hybrid",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	kv, closeKV, err := openKV(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeKV()
	log.Info().Str("backend", cfg.LocalStore.Backend).Msg("local store backend ready")

	store, err := localstore.Open(kv,
		localstore.WithPrefix(cfg.LocalStore.Prefix),
		localstore.WithLogger(logger.Component("localstore")),
	)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}

	remote, err := supabase.New(supabase.Config{
		URL:        cfg.Supabase.URL,
		AnonKey:    cfg.Supabase.AnonKey,
		Timeout:    cfg.Supabase.Timeout,
		Sessions:   kv,
		SessionKey: cfg.LocalStore.Prefix + "remote_session",
	}, logger.Component("supabase"))
	if err != nil {
		return fmt.Errorf("supabase client: %w", err)
	}
	defer remote.Close()

	var link ports.NetworkSignal
	if cfg.Connectivity.LinkWatch {
		watcher := netwatch.New(cfg.Connectivity.LinkPollInterval, logger.Component("netwatch"))
		watcher.Start(ctx)
		defer watcher.Stop()
		link = watcher
	}

	recorder := metrics.Recorder{}
	monitor := connectivity.NewMonitor(remote, link, connectivity.Config{
		ProbeTimeout:     cfg.Connectivity.ProbeTimeout,
		ProbeInterval:    cfg.Connectivity.ProbeInterval,
		RecoveryInterval: cfg.Connectivity.RecoveryInterval,
	}, recorder, logger.Component("connectivity"))
	if err := monitor.Start(ctx); err != nil {
		return err
	}
	defer monitor.Stop()

	latency := service.Latency{}
	if cfg.LocalStore.MockLatency {
		latency = service.DefaultLatency()
	}
	mock, err := service.NewMockSessionService(store, latency, logger.Component("mock-session"))
	if err != nil {
		return fmt.Errorf("mock session: %w", err)
	}

	policy := service.NewPolicy(monitor, store)
	auth := service.NewHybridAuthService(remote, mock, policy, monitor, recorder, service.AuthConfig{
		OAuthRedirectURL:         cfg.Supabase.OAuthRedirectURL,
		PasswordResetRedirectURL: cfg.Supabase.ResetRedirectURL,
	}, logger.Component("auth"))
	defer auth.Close()
	data := service.NewHybridDataService(remote, store, policy, monitor, recorder, logger.Component("data"))

	e := api.NewRouter(api.Deps{
		Auth:       auth,
		Data:       data,
		Monitor:    monitor,
		Preference: store,
		Store:      store,
		Log:        logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	return nil
}

// openKV builds the configured KeyValueStore and its release function.
func openKV(ctx context.Context, cfg *config.Config) (ports.KeyValueStore, func(), error) {
	noop := func() {}
	switch cfg.LocalStore.Backend {
	case config.BackendMemory:
		return memory.NewKVStore(), noop, nil

	case config.BackendRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.LocalStore.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		kv := redisstore.NewKVStore(client, cfg.LocalStore.Timeout)
		return kv, func() { _ = kv.Close() }, nil

	case config.BackendMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  cfg.LocalStore.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		kv := mongostore.NewKVStore(db, cfg.Mongo.Collection, cfg.LocalStore.Timeout)
		return kv, func() {
			dctx, cancel := context.WithTimeout(context.Background(), cfg.LocalStore.Timeout)
			defer cancel()
			_ = client.Disconnect(dctx)
		}, nil

	default:
		kv, err := file.NewKVStore(cfg.LocalStore.Dir)
		if err != nil {
			return nil, nil, err
		}
		return kv, noop, nil
	}
}
