package handlers

import (
	"github.com/rs/zerolog"

	"github.com/colormuse/colormuse-books/internal/domain/session"
)

// Provider wires HTTP handlers.
type Provider struct {
	Page     *PageHandler
	Preview  *PreviewHandler
	Checkout *CheckoutHandler
	Health   *HealthHandler
}

// NewProvider builds every handler on top of the page controller.
func NewProvider(title string, page *session.Page, proofs ProofBuilder, checks []ReadinessCheck, log zerolog.Logger) *Provider {
	return &Provider{
		Page:     NewPageHandler(title, page, proofs, log),
		Preview:  NewPreviewHandler(page, log),
		Checkout: NewCheckoutHandler(page, log),
		Health:   NewHealthHandler(checks, log),
	}
}
