// Package checkouttest provides an in-memory payment SDK for tests.
package checkouttest

import (
	"context"
	"fmt"
	"sync"

	"github.com/colormuse/colormuse-books/internal/domain/checkout"
)

// SDK is a scriptable checkout.PaymentSDK.
type SDK struct {
	mu sync.Mutex

	RenderErr  error
	CreateErr  error
	CaptureErr error
	GetErr     error

	// CaptureStatus defaults to COMPLETED.
	CaptureStatus string
	// OrderStatus is what Get reports, defaults to COMPLETED.
	OrderStatus string
	GivenName   string

	Renders  []checkout.ButtonConfig
	Created  []checkout.OrderRequest
	Captured []string
	Fetched  []string
}

// New returns an SDK whose payer is called Ada.
func New() *SDK {
	return &SDK{GivenName: "Ada"}
}

func (s *SDK) Buttons(cfg checkout.ButtonConfig) checkout.Buttons {
	return &buttons{sdk: s, cfg: cfg}
}

func (s *SDK) Orders() checkout.OrderActions {
	return orders{sdk: s}
}

// RenderCount returns how many times a button was rendered.
func (s *SDK) RenderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Renders)
}

type buttons struct {
	sdk *SDK
	cfg checkout.ButtonConfig
}

func (b *buttons) Render(selector string) (*checkout.RenderedButton, error) {
	b.sdk.mu.Lock()
	defer b.sdk.mu.Unlock()
	if b.sdk.RenderErr != nil {
		return nil, b.sdk.RenderErr
	}
	b.sdk.Renders = append(b.sdk.Renders, b.cfg)
	return &checkout.RenderedButton{
		Selector:  selector,
		ScriptURL: "https://www.paypal.com/sdk/js?client-id=test&currency=" + b.cfg.Currency,
		Style:     b.cfg.Style,
		Callbacks: b.cfg.Callbacks,
	}, nil
}

type orders struct {
	sdk *SDK
}

func (o orders) Create(_ context.Context, req checkout.OrderRequest) (*checkout.ProviderOrder, error) {
	o.sdk.mu.Lock()
	defer o.sdk.mu.Unlock()
	if o.sdk.CreateErr != nil {
		return nil, o.sdk.CreateErr
	}
	o.sdk.Created = append(o.sdk.Created, req)
	return &checkout.ProviderOrder{ID: fmt.Sprintf("ORDER-%d", len(o.sdk.Created)), Status: "CREATED"}, nil
}

func (o orders) Capture(_ context.Context, orderID string) (*checkout.CaptureDetails, error) {
	o.sdk.mu.Lock()
	defer o.sdk.mu.Unlock()
	if o.sdk.CaptureErr != nil {
		return nil, o.sdk.CaptureErr
	}
	o.sdk.Captured = append(o.sdk.Captured, orderID)
	status := o.sdk.CaptureStatus
	if status == "" {
		status = checkout.OrderStatusCompleted
	}
	return &checkout.CaptureDetails{
		OrderID: orderID,
		Status:  status,
		Payer:   checkout.Payer{GivenName: o.sdk.GivenName},
	}, nil
}

func (o orders) Get(_ context.Context, orderID string) (*checkout.ProviderOrder, error) {
	o.sdk.mu.Lock()
	defer o.sdk.mu.Unlock()
	if o.sdk.GetErr != nil {
		return nil, o.sdk.GetErr
	}
	o.sdk.Fetched = append(o.sdk.Fetched, orderID)
	status := o.sdk.OrderStatus
	if status == "" {
		status = checkout.OrderStatusCompleted
	}
	return &checkout.ProviderOrder{ID: orderID, Status: status}, nil
}

// Notices records notifications.
type Notices struct {
	List []checkout.Notice
}

func (n *Notices) Notify(level checkout.NoticeLevel, message string) {
	n.List = append(n.List, checkout.Notice{Level: level, Message: message})
}

// Last returns the most recent notice, or a zero notice.
func (n *Notices) Last() checkout.Notice {
	if len(n.List) == 0 {
		return checkout.Notice{}
	}
	return n.List[len(n.List)-1]
}
