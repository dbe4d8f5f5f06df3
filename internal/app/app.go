// Package app wires the marketplace together: snapshot storage, the listing
// store and service, optional Redis fan-out, notifications and the HTTP
// server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/scoins/internal/config"
	"github.com/alanyoungcy/scoins/internal/marketplace"
	"github.com/alanyoungcy/scoins/internal/server"
	"github.com/alanyoungcy/scoins/internal/server/handler"
	"github.com/alanyoungcy/scoins/internal/server/ws"
	"github.com/alanyoungcy/scoins/internal/service"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

// App is the root application object. It owns the configuration, logger and
// the cleanup functions run on Close.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates an App from cfg.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires dependencies, loads the listings and serves HTTP until ctx is
// cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("storage_backend", a.cfg.Storage.Backend),
		slog.Bool("redis_enabled", a.cfg.Redis.Enabled),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	// The store reports persist failures to the service, which is built
	// after the store.
	var svc *service.ListingService
	store := marketplace.NewStore(deps.Snapshots, a.logger,
		marketplace.WithPersistFailureHook(func(ctx context.Context, err error) {
			if svc != nil {
				svc.StorageFailed(ctx, err)
			}
		}),
	)
	svc = service.NewListingService(store, deps.SignalBus, deps.Notifier, a.logger)

	listings := store.Load(ctx)
	a.logger.InfoContext(ctx, "marketplace ready", slog.Int("listings", len(listings)))

	g, ctx := errgroup.WithContext(ctx)

	var hub *ws.Hub
	if deps.SignalBus != nil {
		hub = ws.NewHub(deps.SignalBus, a.logger, ws.Config{
			Channels:  []string{service.ListingChannel},
			StartedAt: time.Now().UTC(),
		})
		g.Go(func() error {
			return hub.Run(ctx)
		})
	}

	srv := server.NewServer(server.Config{
		Port:              a.cfg.Server.Port,
		CORSOrigins:       a.cfg.Server.CORSOrigins,
		StaticDir:         a.cfg.Server.StaticDir,
		RateLimitRequests: a.cfg.Server.RateLimitRequests,
		RateLimitWindow:   a.cfg.Server.RateLimitWindow.Duration,
	}, server.Handlers{
		Health:      handler.NewHealthHandler(),
		Status:      handler.NewStatusHandler(svc),
		Marketplace: handler.NewMarketplaceHandler(svc, a.logger),
	}, hub, deps.RateLimiter, a.logger)

	g.Go(func() error {
		a.logger.InfoContext(ctx, "HTTP server listening",
			slog.String("addr", srv.Addr()),
			slog.String("url", fmt.Sprintf("http://localhost:%d", a.cfg.Server.Port)),
		)
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	return g.Wait()
}

// Close tears down all resources in reverse registration order. Repeated
// calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
