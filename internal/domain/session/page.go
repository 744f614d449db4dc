package session

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/colormuse/colormuse-books/internal/domain/checkout"
	"github.com/colormuse/colormuse-books/internal/domain/confirmation"
	"github.com/colormuse/colormuse-books/internal/domain/preview"
	"github.com/colormuse/colormuse-books/internal/utils/platformerrors"
)

// MsgMissingTheme asks for a theme when generation is attempted without one.
const MsgMissingTheme = "Please enter a description of your desired coloring book theme."

// ConfirmationQueue accepts submitted orders for background processing.
type ConfirmationQueue interface {
	Enqueue(ctx context.Context, job confirmation.Job) error
}

// Outcome describes what one page transition did.
type Outcome struct {
	Notices        []checkout.Notice
	Preview        *preview.PreviewSet
	WidgetRendered bool
	Order          *checkout.ProviderOrder
	Capture        *checkout.CaptureDetails
	Confirmation   *checkout.Confirmation
	Queued         bool
}

// Page composes the preview generator, the order modal and the payment widget
// over the state of one browser session.
type Page struct {
	store     Store
	generator *preview.Generator
	modal     *checkout.OrderModal
	widget    *checkout.PaymentWidget
	queue     ConfirmationQueue
	log       zerolog.Logger
	now       func() time.Time
}

// NewPage wires the page controller. queue may be nil.
func NewPage(store Store, generator *preview.Generator, modal *checkout.OrderModal, widget *checkout.PaymentWidget, queue ConfirmationQueue, log zerolog.Logger) *Page {
	return &Page{
		store:     store,
		generator: generator,
		modal:     modal,
		widget:    widget,
		queue:     queue,
		log:       log.With().Str("component", "page").Logger(),
		now:       time.Now,
	}
}

// View renders the read model for id and consumes its pending notices.
func (p *Page) View(ctx context.Context, id string) (*View, error) {
	var view *View
	_, err := p.update(ctx, id, nil, func(st *State) error {
		view = p.buildView(st, st.DrainNotices())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Preview returns the current preview set of id, or nil when none was generated.
func (p *Page) Preview(ctx context.Context, id string) (*preview.PreviewSet, error) {
	st, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return st.Preview, nil
}

// Generate replaces the preview grid and reveals the order section. An empty
// prompt leaves both untouched and notifies the user.
func (p *Page) Generate(ctx context.Context, id, prompt string) (*Outcome, error) {
	out := &Outcome{}
	_, err := p.update(ctx, id, out, func(st *State) error {
		set, err := p.generator.Generate(prompt)
		if err != nil {
			st.Notify(checkout.NoticeError, MsgMissingTheme)
			return err
		}
		st.Preview = set
		st.OrderSectionVisible = true
		out.Preview = set
		return nil
	})
	return out, err
}

// OpenOrder opens the order modal and lazily renders the payment button.
func (p *Page) OpenOrder(ctx context.Context, id string) (*Outcome, error) {
	out := &Outcome{}
	_, err := p.update(ctx, id, out, func(st *State) error {
		out.WidgetRendered = p.modal.Open(ctx, &st.Checkout)
		return nil
	})
	return out, err
}

// CloseOrder closes the order modal and discards the draft.
func (p *Page) CloseOrder(ctx context.Context, id string) (*Outcome, error) {
	out := &Outcome{}
	_, err := p.update(ctx, id, out, func(st *State) error {
		p.modal.Close(&st.Checkout)
		return nil
	})
	return out, err
}

// SubmitOrder validates the shipping form and, once accepted, queues the
// confirmation. A queueing failure is logged and does not fail the submission.
func (p *Page) SubmitOrder(ctx context.Context, id string, form checkout.OrderForm) (*Outcome, error) {
	out := &Outcome{}
	var job *confirmation.Job
	_, err := p.update(ctx, id, out, func(st *State) error {
		conf, err := p.modal.Submit(ctx, &st.Checkout, st, form)
		if err != nil {
			return err
		}
		out.Confirmation = conf
		job = &confirmation.Job{
			SessionID:    st.ID,
			Confirmation: *conf,
			Preview:      st.Clone().Preview,
		}
		out.Preview = job.Preview
		return nil
	})
	if err != nil || job == nil {
		return out, err
	}

	if p.queue != nil {
		if qerr := p.queue.Enqueue(ctx, *job); qerr != nil {
			p.log.Error().Err(qerr).Str("reference", job.Reference()).Msg("failed to queue order confirmation")
		} else {
			out.Queued = true
		}
	}
	return out, nil
}

// CreatePayment is the payment button's createOrder callback.
func (p *Page) CreatePayment(ctx context.Context, id string) (*Outcome, error) {
	order, err := p.widget.CreateOrder(ctx)
	if err != nil {
		return nil, err
	}
	return &Outcome{Order: order}, nil
}

// ApprovePayment is the payment button's onApprove callback.
func (p *Page) ApprovePayment(ctx context.Context, id, orderID string) (*Outcome, error) {
	out := &Outcome{}
	_, err := p.update(ctx, id, out, func(st *State) error {
		details, err := p.widget.OnApprove(ctx, &st.Checkout, st, orderID)
		if err != nil {
			return err
		}
		out.Capture = details
		return nil
	})
	return out, err
}

// PaymentError is the payment button's onError callback.
func (p *Page) PaymentError(ctx context.Context, id, cause string) (*Outcome, error) {
	out := &Outcome{}
	_, err := p.update(ctx, id, out, func(st *State) error {
		p.widget.OnError(ctx, st, cause)
		return nil
	})
	return out, err
}

// update runs fn under the session lock and reports the notices fn raised.
func (p *Page) update(ctx context.Context, id string, out *Outcome, fn func(*State) error) (*State, error) {
	var before int
	st, err := p.store.Update(ctx, id, func(st *State) error {
		before = len(st.Notices)
		ferr := fn(st)
		st.UpdatedAt = p.now().UTC()
		return ferr
	})
	if st != nil && out != nil && len(st.Notices) > before {
		out.Notices = append([]checkout.Notice(nil), st.Notices[before:]...)
	}
	if err != nil && !isDomainError(err) {
		p.log.Error().Err(err).Str("session_id", id).Msg("session transition failed")
	}
	return st, err
}

func isDomainError(err error) bool {
	var perr *platformerrors.PlatformError
	return errors.As(err, &perr) && perr.Layer == platformerrors.LayerDomain
}
