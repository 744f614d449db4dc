package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colormuse/colormuse-books/internal/config"
	"github.com/colormuse/colormuse-books/internal/domain/book"
	"github.com/colormuse/colormuse-books/internal/domain/checkout"
	"github.com/colormuse/colormuse-books/internal/domain/confirmation"
	"github.com/colormuse/colormuse-books/internal/domain/preview"
	"github.com/colormuse/colormuse-books/internal/domain/retry"
	"github.com/colormuse/colormuse-books/internal/domain/session"
	"github.com/colormuse/colormuse-books/internal/infrastructure/mailer"
	"github.com/colormuse/colormuse-books/internal/infrastructure/metrics"
	"github.com/colormuse/colormuse-books/internal/infrastructure/paypal"
	"github.com/colormuse/colormuse-books/internal/infrastructure/sessionstore"
	"github.com/colormuse/colormuse-books/internal/infrastructure/storage"
	"github.com/colormuse/colormuse-books/internal/interfaces/httpserver/handlers"
	v1 "github.com/colormuse/colormuse-books/internal/interfaces/httpserver/routes/v1"
	"github.com/colormuse/colormuse-books/internal/interfaces/web"
	"github.com/colormuse/colormuse-books/pkg/observability"
	"github.com/colormuse/colormuse-books/pkg/observability/worker"
)

const pageTitle = "ColorMuse Books"

// provideTelemetry starts the OTLP exporters. The cleanup flushes and stops them;
// it is a no-op once Application.Start has already shut telemetry down.
func provideTelemetry(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*observability.Provider, func(), error) {
	provider, err := observability.Init(ctx, observability.FromServiceConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	return provider, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}, nil
}

// provideSessionStore returns the configured store and a cleanup for its connections.
func provideSessionStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (session.Store, func(), error) {
	if cfg.IsRedisSessions() {
		client, err := sessionstore.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis sessions: %w", err)
		}
		store := sessionstore.NewRedisStore(client, cfg.SessionTTL, log)
		return store, func() {
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("close redis session store")
			}
		}, nil
	}

	store, err := sessionstore.NewMemoryStore(cfg.SessionCapacity, cfg.SessionTTL)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}

// providePaymentSDK returns a nil SDK when PayPal credentials are missing, the
// widget then stays unrendered.
func providePaymentSDK(cfg *config.Config, log zerolog.Logger) checkout.PaymentSDK {
	if !cfg.PayPalConfigured() {
		log.Warn().Msg("PAYPAL_CLIENT_ID / PAYPAL_CLIENT_SECRET not set, payment button disabled")
		return nil
	}
	client := paypal.NewClient(paypal.ClientConfig{
		BaseURL:      cfg.PayPalBaseURL(),
		ClientID:     cfg.PayPalClientID,
		ClientSecret: cfg.PayPalClientSecret,
		Timeout:      cfg.PayPalTimeout,
	}, log)
	return paypal.NewSDK(client, cfg.PayPalClientID)
}

func provideOffer(cfg *config.Config) (checkout.Offer, error) {
	price, err := cfg.Storefront.PriceDecimal()
	if err != nil {
		return checkout.Offer{}, err
	}
	return checkout.Offer{
		Price:    price,
		Currency: cfg.Storefront.Currency,
		Label:    cfg.Storefront.Label,
	}, nil
}

func provideGenerator(cfg *config.Config) (*preview.Generator, error) {
	return preview.NewGenerator(cfg.Storefront.SamplePool, cfg.Storefront.PageCount)
}

func provideWidget(sdk checkout.PaymentSDK, offer checkout.Offer, log zerolog.Logger) *checkout.PaymentWidget {
	return checkout.NewPaymentWidget(sdk, offer, v1.Callbacks(""), log)
}

func provideBookBuilder() *book.Builder {
	return book.NewBuilder(web.Root(), pageTitle)
}

// provideMailer returns nil when SMTP is not configured, confirmation emails are then skipped.
func provideMailer(cfg *config.Config, log zerolog.Logger) confirmation.Mailer {
	if !cfg.SMTPConfigured() {
		log.Warn().Msg("SMTP not configured, confirmation emails disabled")
		return nil
	}
	return mailer.NewSMTPMailer(cfg, log)
}

func provideProcessor(sdk checkout.PaymentSDK, proofs *book.Builder, store storage.Storage, mail confirmation.Mailer, telemetry *observability.Provider, log zerolog.Logger) *confirmation.Processor {
	deps := confirmation.Deps{
		Proofs:   proofs,
		Storage:  store,
		Mailer:   mail,
		Redactor: telemetry.Sanitizer,
		Retry:    retry.DeliveryPolicy(),
	}
	if sdk != nil {
		deps.Orders = sdk.Orders()
	}
	return confirmation.NewProcessor(deps, log)
}

func provideDispatcher(cfg *config.Config, processor *confirmation.Processor, telemetry *observability.Provider, log zerolog.Logger) (*confirmation.Dispatcher, error) {
	instrumenter, err := worker.NewInstrumenter(telemetry.Tracer, telemetry.Meter, "web")
	if err != nil {
		return nil, fmt.Errorf("create worker instrumenter: %w", err)
	}

	dispatcher := confirmation.NewDispatcher(processor, instrumenter, confirmation.Config{
		WorkerCount: cfg.ConfirmationWorkers,
		QueueSize:   cfg.ConfirmationQueueSize,
		JobTimeout:  cfg.ConfirmationTimeout,
	}, log)
	if err := instrumenter.ObserveQueue(dispatcher.QueueDepth); err != nil {
		return nil, fmt.Errorf("observe confirmation queue: %w", err)
	}
	dispatcher.OnResult(func(_ confirmation.Job, _ *confirmation.Result, err error) {
		metrics.RecordConfirmation(err)
	})
	return dispatcher, nil
}

func providePage(store session.Store, generator *preview.Generator, widget *checkout.PaymentWidget, queue session.ConfirmationQueue, log zerolog.Logger) *session.Page {
	modal := checkout.NewOrderModal(widget, log)
	return session.NewPage(store, generator, modal, widget, queue, log)
}

func provideReadinessChecks(store session.Store, archive storage.Storage) []handlers.ReadinessCheck {
	return []handlers.ReadinessCheck{
		{Name: "sessions", Check: store.Ping},
		{Name: "storage", Check: archive.Health},
	}
}

func provideHandlers(page *session.Page, proofs *book.Builder, checks []handlers.ReadinessCheck, log zerolog.Logger) *handlers.Provider {
	return handlers.NewProvider(pageTitle, page, proofs, checks, log)
}
