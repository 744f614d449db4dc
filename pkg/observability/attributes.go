package observability

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Standard attribute keys
const (
	AttrSessionID       = "session.id"
	AttrRequestID       = "request_id"
	AttrPaymentCallback = "checkout.callback"
	AttrProviderOrderID = "checkout.provider_order_id"
	AttrOrderReference  = "order.reference"
	AttrPreviewPages    = "preview.pages"
)

// WithSessionAttrs returns the correlation attributes of a page request.
func WithSessionAttrs(sessionID, requestID string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrSessionID, sessionID),
	}
	if requestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, requestID))
	}
	return attrs
}

// WithCheckoutAttrs returns attributes for a payment button callback.
func WithCheckoutAttrs(callback, providerOrderID string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrPaymentCallback, callback),
	}
	if providerOrderID != "" {
		attrs = append(attrs, attribute.String(AttrProviderOrderID, providerOrderID))
	}
	return attrs
}

// WithOrderAttrs returns attributes for an accepted order.
func WithOrderAttrs(reference string, pages int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrOrderReference, reference),
	}
	if pages > 0 {
		attrs = append(attrs, attribute.Int(AttrPreviewPages, pages))
	}
	return attrs
}

// AddAttrsToSpan adds attrs to span when it is recording.
func AddAttrsToSpan(span trace.Span, attrs ...attribute.KeyValue) {
	if span == nil || !span.IsRecording() || len(attrs) == 0 {
		return
	}
	span.SetAttributes(attrs...)
}
