package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colormuse/colormuse-books/internal/utils/platformerrors"
)

// PaymentWidget bridges the payment SDK to the order modal, once per page session.
type PaymentWidget struct {
	sdk       PaymentSDK
	offer     Offer
	style     ButtonStyle
	callbacks ButtonCallbacks
	log       zerolog.Logger
	now       func() time.Time
}

// NewPaymentWidget creates the adapter. sdk may be nil when the payment
// integration is not configured; the widget then never renders.
func NewPaymentWidget(sdk PaymentSDK, offer Offer, callbacks ButtonCallbacks, log zerolog.Logger) *PaymentWidget {
	return &PaymentWidget{
		sdk:       sdk,
		offer:     offer,
		style:     DefaultButtonStyle(),
		callbacks: callbacks,
		log:       log.With().Str("component", "payment_widget").Logger(),
		now:       time.Now,
	}
}

// Available reports whether a payment SDK is loaded.
func (w *PaymentWidget) Available() bool {
	return w.sdk != nil
}

// Offer returns what the widget charges for.
func (w *PaymentWidget) Offer() Offer {
	return w.offer
}

// Init renders the payment button into the container unless it already was.
// A missing SDK or a failed render is logged and otherwise ignored.
// It reports whether a button was rendered by this call.
func (w *PaymentWidget) Init(ctx context.Context, st *State) bool {
	if st.Widget.Rendered {
		return false
	}
	if w.sdk == nil {
		w.log.Error().
			Str("request_id", platformerrors.RequestIDFromContext(ctx)).
			Msg("payment SDK not loaded, check the PayPal client credentials")
		return false
	}

	button, err := w.sdk.Buttons(ButtonConfig{
		Style:     w.style,
		Callbacks: w.callbacks,
		Currency:  w.offer.Currency,
	}).Render(ContainerSelector)
	if err != nil {
		w.log.Error().Err(err).
			Str("request_id", platformerrors.RequestIDFromContext(ctx)).
			Msg("failed to render payment button")
		return false
	}

	st.Widget.Rendered = true
	st.Widget.Button = button
	return true
}

// CreateOrder asks the provider for an order carrying the fixed price and label.
func (w *PaymentWidget) CreateOrder(ctx context.Context) (*ProviderOrder, error) {
	if w.sdk == nil {
		return nil, w.unavailable(ctx, "create_order")
	}

	order, err := w.sdk.Orders().Create(ctx, w.offer.OrderRequest(uuid.NewString()))
	if err != nil {
		w.log.Error().Err(err).Msg("failed to create payment order")
		return nil, NewProviderError(ctx, "create_order", err)
	}
	w.log.Info().Str("order_id", order.ID).Str("amount", w.offer.AmountValue()).Msg("payment order created")
	return order, nil
}

// OnApprove captures an approved order, hides the button and reveals the shipping form.
func (w *PaymentWidget) OnApprove(ctx context.Context, st *State, n Notifier, orderID string) (*CaptureDetails, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			ErrMissingOrderID.Message, nil, ErrMissingOrderID.UUID)
	}
	if w.sdk == nil {
		return nil, w.unavailable(ctx, "capture_order")
	}

	details, err := w.sdk.Orders().Capture(ctx, orderID)
	if err != nil {
		w.log.Error().Err(err).Str("order_id", orderID).Msg("failed to capture payment order")
		n.Notify(NoticeError, MsgPaymentRetry)
		return nil, NewProviderError(ctx, "capture_order", err)
	}
	if details.Status != "" && details.Status != OrderStatusCompleted {
		w.log.Warn().Str("order_id", orderID).Str("status", details.Status).Msg("payment capture not completed")
		n.Notify(NoticeError, MsgPaymentRetry)
		return nil, NewPaymentError(ctx, "capture status "+details.Status)
	}
	if details.OrderID == "" {
		details.OrderID = orderID
	}

	n.Notify(NoticeSuccess, fmt.Sprintf(MsgPaymentComplete, payerName(details.Payer)))
	st.Widget.ContainerHidden = true
	st.FormVisible = true
	st.Payment = &PaymentRecord{
		OrderID:        details.OrderID,
		Status:         OrderStatusCompleted,
		PayerGivenName: details.Payer.GivenName,
		CapturedAt:     w.now().UTC(),
	}
	return details, nil
}

// OnError records an error reported by the payment button. Modal and form are left as they are.
func (w *PaymentWidget) OnError(ctx context.Context, n Notifier, cause string) {
	w.log.Error().
		Str("request_id", platformerrors.RequestIDFromContext(ctx)).
		Str("cause", cause).
		Msg("payment button error")
	n.Notify(NoticeError, MsgPaymentRetry)
}

func (w *PaymentWidget) unavailable(ctx context.Context, operation string) error {
	err := platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
		platformerrors.ErrorTypeIntegrationUnavailable, ErrIntegrationUnavailable.Message, nil,
		ErrIntegrationUnavailable.UUID, map[string]any{"operation": operation})
	platformerrors.LogError(w.log, err)
	return err
}

func payerName(p Payer) string {
	if name := strings.TrimSpace(p.GivenName); name != "" {
		return name
	}
	return "customer"
}
