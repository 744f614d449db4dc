package responses

import (
	"github.com/colormuse/colormuse-books/internal/domain/checkout"
)

// PreviewResponse is returned by POST /v1/previews.
type PreviewResponse struct {
	Prompt  string            `json:"prompt"`
	Pages   []string          `json:"pages"`
	Notices []checkout.Notice `json:"notices,omitempty"`
}

// OrderResponse is returned by the createOrder callback.
type OrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`
}

// CaptureResponse is returned by the onApprove callback.
type CaptureResponse struct {
	OrderID          string            `json:"order_id"`
	Status           string            `json:"status"`
	PayerGivenName   string            `json:"payer_given_name,omitempty"`
	ShowShippingForm bool              `json:"show_shipping_form"`
	Notices          []checkout.Notice `json:"notices,omitempty"`
}

// NoticesResponse carries the notices a transition raised.
type NoticesResponse struct {
	Notices []checkout.Notice `json:"notices"`
}
