package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/colormuse/colormuse-books/internal/utils/platformerrors"
)

// OrderModal is the open/closed state machine around the shipping form.
type OrderModal struct {
	widget *PaymentWidget
	log    zerolog.Logger
	now    func() time.Time
}

// NewOrderModal creates a modal controller driving widget.
func NewOrderModal(widget *PaymentWidget, log zerolog.Logger) *OrderModal {
	return &OrderModal{
		widget: widget,
		log:    log.With().Str("component", "order_modal").Logger(),
		now:    time.Now,
	}
}

// Open shows the modal and lazily initializes the payment button.
// Opening an open modal only re-runs the idempotent widget init.
func (m *OrderModal) Open(ctx context.Context, st *State) bool {
	st.Modal = ModalOpen
	return m.widget.Init(ctx, st)
}

// Close hides the modal and discards the draft form.
func (m *OrderModal) Close(st *State) {
	st.Modal = ModalClosed
	st.Draft = OrderForm{}
}

// Submit validates the shipping form. On failure the modal stays open with the
// draft kept as entered. On success the draft is cleared, the modal closes and
// the accepted confirmation is returned.
func (m *OrderModal) Submit(ctx context.Context, st *State, n Notifier, form OrderForm) (*Confirmation, error) {
	if st.Modal != ModalOpen {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
			ErrModalClosed.Message, nil, ErrModalClosed.UUID)
	}

	normalized, err := ValidateForm(ctx, form)
	if err != nil {
		st.Draft = form
		n.Notify(NoticeError, MsgMissingFields)
		return nil, err
	}

	conf := &Confirmation{
		Reference:   ulid.Make().String(),
		Form:        normalized,
		Payment:     st.Payment,
		SubmittedAt: m.now().UTC(),
	}

	n.Notify(NoticeSuccess, fmt.Sprintf(MsgOrderReceived, normalized.Name, normalized.Email))
	m.Close(st)
	st.Payment = nil
	st.FormVisible = false
	st.Widget.ContainerHidden = false

	paid := conf.Payment != nil
	m.log.Info().
		Str("reference", conf.Reference).
		Bool("paid", paid).
		Msg("order submitted")
	return conf, nil
}
