package paypal

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/colormuse/colormuse-books/internal/domain/checkout"
)

const scriptBaseURL = "https://www.paypal.com/sdk/js"

// SDK adapts the REST client to checkout.PaymentSDK. Rendering produces the
// parameters the browser needs to mount the PayPal JS button.
type SDK struct {
	client   *Client
	clientID string
}

var _ checkout.PaymentSDK = (*SDK)(nil)

// NewSDK creates the payment SDK for clientID.
func NewSDK(client *Client, clientID string) *SDK {
	return &SDK{client: client, clientID: clientID}
}

// Buttons prepares a button for cfg.
func (s *SDK) Buttons(cfg checkout.ButtonConfig) checkout.Buttons {
	return &buttons{sdk: s, cfg: cfg}
}

// Orders exposes the order operations used by button callbacks.
func (s *SDK) Orders() checkout.OrderActions {
	return orderActions{client: s.client}
}

// ScriptURL returns the JS SDK URL for currency.
func (s *SDK) ScriptURL(currency string) string {
	q := url.Values{}
	q.Set("client-id", s.clientID)
	q.Set("currency", strings.ToUpper(currency))
	q.Set("intent", "capture")
	q.Set("components", "buttons")
	return scriptBaseURL + "?" + q.Encode()
}

type buttons struct {
	sdk *SDK
	cfg checkout.ButtonConfig
}

func (b *buttons) Render(selector string) (*checkout.RenderedButton, error) {
	if !strings.HasPrefix(selector, "#") || len(selector) < 2 {
		return nil, fmt.Errorf("invalid container selector %q", selector)
	}
	if b.cfg.Callbacks.CreateOrderURL == "" || b.cfg.Callbacks.ApproveURL == "" {
		return nil, fmt.Errorf("button callbacks are not configured")
	}
	return &checkout.RenderedButton{
		Selector:  selector,
		ScriptURL: b.sdk.ScriptURL(b.cfg.Currency),
		Style:     b.cfg.Style,
		Callbacks: b.cfg.Callbacks,
	}, nil
}

type orderActions struct {
	client *Client
}

func (o orderActions) Create(ctx context.Context, req checkout.OrderRequest) (*checkout.ProviderOrder, error) {
	return o.client.CreateOrder(ctx, req)
}

func (o orderActions) Capture(ctx context.Context, orderID string) (*checkout.CaptureDetails, error) {
	return o.client.CaptureOrder(ctx, orderID)
}

func (o orderActions) Get(ctx context.Context, orderID string) (*checkout.ProviderOrder, error) {
	return o.client.GetOrder(ctx, orderID)
}
