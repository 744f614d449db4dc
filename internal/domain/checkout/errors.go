package checkout

import (
	"context"

	"github.com/colormuse/colormuse-books/internal/utils/platformerrors"
)

// User facing notices.
const (
	MsgMissingFields   = "Please fill out all fields before submitting your order."
	MsgPaymentRetry    = "There was an error processing your payment. Please try again."
	MsgPaymentComplete = "Payment completed by %s. Please provide your shipping details."
	MsgOrderReceived   = "Thank you, %s! Your custom coloring book will be processed. We will contact you at %s with shipping updates."
)

var (
	// ErrMissingField is returned when name, email or address is empty after trimming.
	ErrMissingField = platformerrors.NewError(context.Background(), platformerrors.LayerDomain,
		platformerrors.ErrorTypeValidation, "missing required field", nil, "checkout-missing-field")

	// ErrModalClosed is returned when the shipping form is submitted while the order modal is closed.
	ErrModalClosed = platformerrors.NewError(context.Background(), platformerrors.LayerDomain,
		platformerrors.ErrorTypeConflict, "order modal is not open", nil, "checkout-modal-closed")

	// ErrIntegrationUnavailable is returned when the payment SDK was never loaded.
	ErrIntegrationUnavailable = platformerrors.NewError(context.Background(), platformerrors.LayerDomain,
		platformerrors.ErrorTypeIntegrationUnavailable, "payment integration is not available", nil, "checkout-payment-unavailable")

	// ErrMissingOrderID is returned when a payment callback arrives without an order handle.
	ErrMissingOrderID = platformerrors.NewError(context.Background(), platformerrors.LayerDomain,
		platformerrors.ErrorTypeValidation, "order id is required", nil, "checkout-missing-order-id")
)

// NewPaymentError wraps an error reported by the payment button.
func NewPaymentError(ctx context.Context, cause string) *platformerrors.PlatformError {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypePayment,
		"payment button reported an error", nil, "checkout-payment-error", map[string]any{"cause": cause})
}

// NewProviderError wraps a failed call to the payment provider.
func NewProviderError(ctx context.Context, operation string, err error) *platformerrors.PlatformError {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal,
		"payment provider call failed", err, "checkout-provider-failed", map[string]any{"operation": operation})
}
