package confirmation

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/colormuse/colormuse-books/internal/domain/checkout"
	"github.com/colormuse/colormuse-books/internal/domain/retry"
	"github.com/colormuse/colormuse-books/internal/utils/platformerrors"
)

const (
	proofContentType = "application/pdf"
	emailSubject     = "Your ColorMuse Books Order"
)

// Deps are the collaborators of a Processor. Orders, Storage and Mailer may be
// nil, the matching step is then skipped.
type Deps struct {
	Orders   OrderVerifier
	Proofs   ProofRenderer
	Storage  ArtifactStorage
	Mailer   Mailer
	Redactor Redactor
	Retry    retry.Policy
}

// Processor runs the confirmation steps for one job.
type Processor struct {
	deps Deps
	log  zerolog.Logger
}

// NewProcessor creates a processor.
func NewProcessor(deps Deps, log zerolog.Logger) *Processor {
	return &Processor{
		deps: deps,
		log:  log.With().Str("component", "confirmation_processor").Logger(),
	}
}

// Process verifies the payment, archives the proof and emails the customer.
// Email failures are logged and returned after the retry policy is exhausted;
// they never undo the earlier steps.
func (p *Processor) Process(ctx context.Context, job Job) (*Result, error) {
	res := &Result{Reference: job.Reference()}
	log := p.log.With().
		Str("reference", res.Reference).
		Str("customer", p.redact(job.Confirmation.Form.Email)).
		Logger()

	if payment := job.Confirmation.Payment; payment != nil && p.deps.Orders != nil {
		order, err := p.deps.Orders.Get(ctx, payment.OrderID)
		if err != nil {
			return res, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "verify payment order")
		}
		if order.Status != checkout.OrderStatusCompleted {
			log.Warn().Str("order_id", payment.OrderID).Str("status", order.Status).Msg("payment not completed, skipping confirmation")
			return res, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypePayment,
				ErrPaymentNotCompleted.Message, nil, ErrPaymentNotCompleted.UUID,
				map[string]any{"order_id": payment.OrderID, "status": order.Status})
		}
		res.Verified = true
	}

	if job.Preview.Len() > 0 && p.deps.Proofs != nil && p.deps.Storage != nil {
		url, err := p.archiveProof(ctx, job)
		if err != nil {
			log.Error().Err(err).Msg("failed to archive proof")
		} else {
			res.ProofURL = url
		}
	}

	if p.deps.Mailer == nil {
		log.Debug().Msg("mailer not configured, skipping confirmation email")
		return res, nil
	}

	msg := Message{
		To:      job.Confirmation.Form.Email,
		Subject: emailSubject,
		Body:    composeBody(job, res.ProofURL),
	}
	err := retry.Do(ctx, p.deps.Retry, func(ctx context.Context, attempt int) error {
		if attempt > 0 {
			log.Debug().Int("attempt", attempt).Msg("retrying confirmation email")
		}
		return p.deps.Mailer.Send(ctx, msg)
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to send confirmation email")
		return res, fmt.Errorf("send confirmation email: %w", err)
	}

	res.Emailed = true
	log.Info().Bool("verified", res.Verified).Bool("proof", res.ProofURL != "").Msg("order confirmed")
	return res, nil
}

func (p *Processor) archiveProof(ctx context.Context, job Job) (string, error) {
	pdf, err := p.deps.Proofs.Build(ctx, job.Preview)
	if err != nil {
		return "", fmt.Errorf("build proof: %w", err)
	}
	key := fmt.Sprintf("proofs/%s.pdf", job.Reference())
	return retry.DoWithResult(ctx, p.deps.Retry, func(ctx context.Context, _ int) (string, error) {
		return p.deps.Storage.Put(ctx, key, proofContentType, pdf)
	})
}

func (p *Processor) redact(value string) string {
	if p.deps.Redactor == nil {
		return value
	}
	return p.deps.Redactor.Sanitize(value)
}

func composeBody(job Job, proofURL string) string {
	form := job.Confirmation.Form
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", form.Name)
	b.WriteString("Thank you for your purchase! Your custom coloring book is being prepared and ")
	b.WriteString("will be shipped to the address you provided. We'll notify you when your order ships.\n\n")
	fmt.Fprintf(&b, "Order reference: %s\n", job.Reference())
	if job.Confirmation.Payment != nil {
		fmt.Fprintf(&b, "Order ID (PayPal): %s\n", job.Confirmation.Payment.OrderID)
	}
	if job.Preview != nil && job.Preview.Prompt != "" {
		fmt.Fprintf(&b, "Theme: %s\n", job.Preview.Prompt)
	}
	if proofURL != "" {
		fmt.Fprintf(&b, "Proof: %s\n", proofURL)
	}
	fmt.Fprintf(&b, "Shipping to:\n%s\n\n", form.Address)
	b.WriteString("Thank you for choosing ColorMuse Books!\n")
	return b.String()
}
