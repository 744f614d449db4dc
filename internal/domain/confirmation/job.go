// Package confirmation finishes accepted orders in the background: it re-checks
// the payment, archives a proof of the book and emails the customer.
package confirmation

import (
	"context"
	"time"

	"github.com/colormuse/colormuse-books/internal/domain/checkout"
	"github.com/colormuse/colormuse-books/internal/domain/preview"
	"github.com/colormuse/colormuse-books/internal/utils/platformerrors"
)

const jobType = "order_confirmation"

var (
	// ErrPaymentNotCompleted stops a job whose provider order is not paid.
	ErrPaymentNotCompleted = platformerrors.NewError(context.Background(), platformerrors.LayerDomain,
		platformerrors.ErrorTypePayment, "payment not completed, order has not been processed", nil, "confirmation-payment-incomplete")

	// ErrQueueFull is returned by Enqueue when no buffer slot is free.
	ErrQueueFull = platformerrors.NewError(context.Background(), platformerrors.LayerDomain,
		platformerrors.ErrorTypeInternal, "confirmation queue is full", nil, "confirmation-queue-full")

	// ErrStopped is returned by Enqueue once the dispatcher is shutting down.
	ErrStopped = platformerrors.NewError(context.Background(), platformerrors.LayerDomain,
		platformerrors.ErrorTypeInternal, "confirmation dispatcher stopped", nil, "confirmation-stopped")
)

// Job is one accepted order waiting to be confirmed.
type Job struct {
	SessionID    string                `json:"session_id"`
	Confirmation checkout.Confirmation `json:"confirmation"`
	Preview      *preview.PreviewSet   `json:"preview,omitempty"`
	EnqueuedAt   time.Time             `json:"enqueued_at"`
}

// Reference is the order reference shown to the customer.
func (j Job) Reference() string {
	return j.Confirmation.Reference
}

// Result summarizes what a processed job did.
type Result struct {
	Reference string
	Verified  bool
	ProofURL  string
	Emailed   bool
}

// Message is a plain text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers confirmation emails.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ArtifactStorage archives generated files and returns a link to them.
type ArtifactStorage interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// ProofRenderer turns a preview into a printable document.
type ProofRenderer interface {
	Build(ctx context.Context, set *preview.PreviewSet) ([]byte, error)
}

// OrderVerifier looks up a provider order.
type OrderVerifier interface {
	Get(ctx context.Context, orderID string) (*checkout.ProviderOrder, error)
}

// Redactor masks personal data before it reaches the logs.
type Redactor interface {
	Sanitize(input string) string
}

// Instrumenter wraps job execution with tracing and metrics.
type Instrumenter interface {
	InstrumentJob(ctx context.Context, jobType string, jobID string, fn func(context.Context) error) error
}

type passthrough struct{}

func (passthrough) InstrumentJob(ctx context.Context, _ string, _ string, fn func(context.Context) error) error {
	return fn(ctx)
}
