//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/colormuse/colormuse-books/internal/config"
	"github.com/colormuse/colormuse-books/internal/domain/confirmation"
	"github.com/colormuse/colormuse-books/internal/domain/session"
	"github.com/colormuse/colormuse-books/internal/infrastructure/storage"
	"github.com/colormuse/colormuse-books/internal/interfaces/httpserver"
)

var checkoutSet = wire.NewSet(
	providePaymentSDK,
	provideOffer,
	provideWidget,
	provideGenerator,
	providePage,
	wire.Bind(new(session.ConfirmationQueue), new(*confirmation.Dispatcher)),
)

var confirmationSet = wire.NewSet(
	provideBookBuilder,
	provideMailer,
	provideProcessor,
	provideDispatcher,
)

// BuildApplication assembles the storefront with Wire.
func BuildApplication(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, func(), error) {
	wire.Build(
		provideTelemetry,
		provideSessionStore,
		storage.New,
		checkoutSet,
		confirmationSet,
		provideReadinessChecks,
		provideHandlers,
		httpserver.New,
		NewApplication,
	)
	return nil, nil, nil
}
