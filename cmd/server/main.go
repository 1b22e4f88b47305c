package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/fr0stylo/webhookd/internal/adapters/memory"
	"github.com/fr0stylo/webhookd/internal/adapters/sqlite"
	"github.com/fr0stylo/webhookd/internal/app/ports"
	"github.com/fr0stylo/webhookd/internal/app/services"
	"github.com/fr0stylo/webhookd/internal/config"
	"github.com/fr0stylo/webhookd/internal/db"
	"github.com/fr0stylo/webhookd/internal/notify"
	"github.com/fr0stylo/webhookd/internal/observability"
	"github.com/fr0stylo/webhookd/internal/server"
	"github.com/fr0stylo/webhookd/internal/server/routes"
	"github.com/fr0stylo/webhookd/internal/webhooks/replay"
	"github.com/fr0stylo/webhookd/internal/webhooks/signature"
)

const shutdownTimeout = 10 * time.Second

func Run(ctx context.Context) error {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := observability.NewLogger(os.Stdout, cfg.Logging.Format, observability.ParseLevel(cfg.Logging.Level))
	slog.SetDefault(log)

	if missing := cfg.MissingSecrets(); len(missing) > 0 {
		log.Warn("Webhook secrets not configured, deliveries will be rejected", "providers", missing)
	}

	shutdownTelemetry, err := observability.SetupOpenTelemetry(ctx, log, observability.OpenTelemetryConfig{
		Enabled:           cfg.Observability.Enabled,
		OTLPEndpoint:      cfg.Observability.OTLPEndpoint,
		OTLPTraceHeaders:  cfg.Observability.OTLPTraceHeaders,
		OTLPMetricHeaders: cfg.Observability.OTLPMetricHeaders,
		ServiceName:       cfg.Observability.ServiceName,
		ServiceVer:        cfg.Observability.ServiceVer,
		Environment:       cfg.Environment,
		SamplingRatio:     cfg.Observability.SamplingRatio,
		MetricsConsole:    cfg.Observability.MetricsConsole,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			log.Error("Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	g, ctx := errgroup.WithContext(ctx)

	var (
		webhookStore ports.WebhookStore
		syncStore    ports.SyncStore
	)
	switch cfg.Database.Store {
	case config.StoreMemory:
		webhookStore = memory.NewWebhookStore()
		syncStore = memory.NewSyncStore()
		log.Warn("Using in-memory stores, state is lost on restart")
	default:
		dbOpts := make([]db.Option, 0, len(cfg.Database.Pragmas))
		for _, pragma := range cfg.Database.Pragmas {
			dbOpts = append(dbOpts, db.WithPragma(pragma))
		}
		database, err := db.New(cfg.Database.Path, dbOpts...)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() {
			if err := database.Close(); err != nil {
				log.Error("Failed to close database", "error", err)
			}
		}()
		if cfg.Database.LogTiming {
			g.Go(func() error {
				database.LogLatencyStats(ctx, log, time.Minute)
				return nil
			})
		}
		webhookStore = sqlite.NewWebhookStore(database)
		syncStore = sqlite.NewSyncStore(database)
	}

	replayStore, closeReplay, err := newReplayStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeReplay()

	var notifier ports.DeadLetterNotifier
	if cfg.DeadLetter.SinkURL != "" {
		ce, err := notify.New(notify.Options{SinkURL: cfg.DeadLetter.SinkURL, Source: cfg.Observability.ServiceName})
		if err != nil {
			return fmt.Errorf("failed to create dead letter notifier: %w", err)
		}
		notifier = ce
	}

	ingest := services.NewWebhookIngestService(
		webhookStore,
		signature.NewVerifier(cfg.Webhooks.Secrets),
		replay.NewGuard(replayStore, cfg.ReplayWindow()),
		notifier,
		log,
		services.IngestConfig{ReplayWindow: cfg.ReplayWindow()},
	)
	engine := services.NewSyncEngine(syncStore, services.SimulatedPuller{}, notifier, log, services.SyncEngineConfig{
		DefaultMaxRetries:  cfg.Sync.MaxRetries,
		DefaultBaseBackoff: cfg.SyncBaseBackoff(),
		PullTimeout:        cfg.SyncTimeout(),
	})

	srv := server.New(log, server.Options{
		ServiceName:  cfg.Observability.ServiceName,
		RateLimitRPS: cfg.Server.RateLimitRPS,
	})
	srv.RegisterRouter(routes.HealthRoutes{})
	srv.RegisterRouter(routes.NewWebhookRoutes(ingest, cfg.Server.MaxPayloadBytes))
	srv.RegisterRouter(routes.NewSyncRoutes(engine))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	g.Go(func() error {
		log.Info("Starting server", "port", cfg.Server.Port, "store", cfg.Database.Store, "replay_backend", cfg.Replay.Backend)
		return srv.Start(addr)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newReplayStore(ctx context.Context, cfg config.Config) (replay.Store, func(), error) {
	if cfg.Replay.Backend != config.ReplayBackendRedis {
		return replay.NewMemoryStore(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Replay.RedisAddr,
		Password: cfg.Replay.RedisPassword,
		DB:       cfg.Replay.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis replay backend: %w", err)
	}
	return replay.NewRedisStore(client), func() {
		if err := client.Close(); err != nil {
			slog.Error("Failed to close redis client", "error", err)
		}
	}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
