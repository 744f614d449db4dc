package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/colormuse/colormuse-books/internal/config"
	"github.com/colormuse/colormuse-books/internal/domain/confirmation"
	"github.com/colormuse/colormuse-books/internal/infrastructure/logger"
	"github.com/colormuse/colormuse-books/internal/infrastructure/storage"
	"github.com/colormuse/colormuse-books/internal/interfaces/httpserver"
	"github.com/colormuse/colormuse-books/pkg/observability"
)

// Application runs the storefront HTTP server next to the confirmation workers.
type Application struct {
	cfg        *config.Config
	httpServer *httpserver.HttpServer
	dispatcher *confirmation.Dispatcher
	telemetry  *observability.Provider
	log        zerolog.Logger
}

func NewApplication(cfg *config.Config, httpServer *httpserver.HttpServer, dispatcher *confirmation.Dispatcher, telemetry *observability.Provider, log zerolog.Logger) *Application {
	return &Application{
		cfg:        cfg,
		httpServer: httpServer,
		dispatcher: dispatcher,
		telemetry:  telemetry,
		log:        log,
	}
}

// Start blocks until ctx is cancelled or the HTTP server fails, then stops the
// HTTP server, drains the workers and flushes telemetry in that order.
func (a *Application) Start(ctx context.Context) error {
	a.dispatcher.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.httpServer.Run(gctx)
	})
	runErr := g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.dispatcher.Stop(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("stop confirmation workers")
	}
	if err := a.telemetry.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("shutdown telemetry")
	}
	return runErr
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := buildApplication(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize application")
	}
	defer cleanup()

	if err := app.Start(ctx); err != nil {
		log.Error().Err(err).Msg("application stopped with error")
		return
	}

	log.Info().Msg("application exited cleanly")
}

// buildApplication is the hand written equivalent of BuildApplication in wire.go.
func buildApplication(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, func(), error) {
	telemetry, telemetryCleanup, err := provideTelemetry(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize observability: %w", err)
	}

	store, storeCleanup, err := provideSessionStore(ctx, cfg, log)
	if err != nil {
		telemetryCleanup()
		return nil, nil, err
	}
	cleanup := func() {
		storeCleanup()
		telemetryCleanup()
	}

	archive, err := storage.New(ctx, cfg, log)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("initialize storage: %w", err)
	}

	offer, err := provideOffer(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	generator, err := provideGenerator(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	sdk := providePaymentSDK(cfg, log)
	widget := provideWidget(sdk, offer, log)
	proofs := provideBookBuilder()

	processor := provideProcessor(sdk, proofs, archive, provideMailer(cfg, log), telemetry, log)
	dispatcher, err := provideDispatcher(cfg, processor, telemetry, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	page := providePage(store, generator, widget, dispatcher, log)
	provider := provideHandlers(page, proofs, provideReadinessChecks(store, archive), log)

	httpServer, err := httpserver.New(cfg, log, telemetry, provider)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return NewApplication(cfg, httpServer, dispatcher, telemetry, log), cleanup, nil
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
