package checkout

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ContainerSelector is where the payment button is rendered on the page.
const ContainerSelector = "#paypal-container"

const (
	IntentCapture        = "CAPTURE"
	OrderStatusCompleted = "COMPLETED"
)

// ButtonStyle mirrors the style options the payment button accepts.
type ButtonStyle struct {
	Color   string `json:"color"`
	Shape   string `json:"shape"`
	Label   string `json:"label"`
	Tagline bool   `json:"tagline"`
}

// DefaultButtonStyle is a gold rectangular "Pay" button without tagline.
func DefaultButtonStyle() ButtonStyle {
	return ButtonStyle{
		Color:   "gold",
		Shape:   "rect",
		Label:   "pay",
		Tagline: false,
	}
}

// ButtonCallbacks are the endpoints the rendered button calls for its
// createOrder, onApprove and onError lifecycle events.
type ButtonCallbacks struct {
	CreateOrderURL string `json:"create_order_url"`
	ApproveURL     string `json:"approve_url"`
	ErrorURL       string `json:"error_url"`
}

// ButtonConfig is handed to PaymentSDK.Buttons.
type ButtonConfig struct {
	Style     ButtonStyle
	Callbacks ButtonCallbacks
	Currency  string
}

// RenderedButton is what the page needs to mount the button client side.
type RenderedButton struct {
	Selector  string          `json:"selector"`
	ScriptURL string          `json:"script_url"`
	Style     ButtonStyle     `json:"style"`
	Callbacks ButtonCallbacks `json:"callbacks"`
}

// Buttons renders a configured payment button.
type Buttons interface {
	Render(selector string) (*RenderedButton, error)
}

// PaymentSDK is the externally supplied payment button factory.
type PaymentSDK interface {
	Buttons(cfg ButtonConfig) Buttons
	Orders() OrderActions
}

// OrderActions are the provider order operations available to button callbacks.
type OrderActions interface {
	Create(ctx context.Context, req OrderRequest) (*ProviderOrder, error)
	Capture(ctx context.Context, orderID string) (*CaptureDetails, error)
	Get(ctx context.Context, orderID string) (*ProviderOrder, error)
}

// PurchaseUnit is one line of a provider order.
type PurchaseUnit struct {
	Amount      decimal.Decimal
	Currency    string
	Description string
}

// OrderRequest asks the provider to create an order.
type OrderRequest struct {
	Intent        string
	RequestID     string
	PurchaseUnits []PurchaseUnit
}

// ProviderOrder is the opaque order handle returned by the provider.
type ProviderOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Payer identifies who paid.
type Payer struct {
	GivenName string `json:"given_name"`
	Surname   string `json:"surname"`
	Email     string `json:"email"`
}

// CaptureDetails is the result of capturing an approved order.
type CaptureDetails struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Payer   Payer  `json:"payer"`
}

// PaymentRecord links a captured payment to the shipping details collected afterwards.
type PaymentRecord struct {
	OrderID        string    `json:"order_id"`
	Status         string    `json:"status"`
	PayerGivenName string    `json:"payer_given_name"`
	CapturedAt     time.Time `json:"captured_at"`
}
