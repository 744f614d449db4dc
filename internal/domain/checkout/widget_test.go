package checkout_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colormuse/colormuse-books/internal/domain/checkout"
	"github.com/colormuse/colormuse-books/internal/domain/checkout/checkouttest"
	"github.com/colormuse/colormuse-books/internal/utils/platformerrors"
)

func newWidget(sdk checkout.PaymentSDK, logs *bytes.Buffer) *checkout.PaymentWidget {
	return checkout.NewPaymentWidget(sdk, checkout.DefaultOffer(), testCallbacks, zerolog.New(logs))
}

func TestPaymentWidget_CreateOrderUsesFixedPrice(t *testing.T) {
	sdk := checkouttest.New()
	w := newWidget(sdk, &bytes.Buffer{})

	order, err := w.CreateOrder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ORDER-1", order.ID)

	require.Len(t, sdk.Created, 1)
	req := sdk.Created[0]
	assert.Equal(t, checkout.IntentCapture, req.Intent)
	assert.NotEmpty(t, req.RequestID)
	require.Len(t, req.PurchaseUnits, 1)
	assert.True(t, decimal.RequireFromString("29.99").Equal(req.PurchaseUnits[0].Amount))
	assert.Equal(t, "Custom AI Coloring Book", req.PurchaseUnits[0].Description)
	assert.Equal(t, "USD", req.PurchaseUnits[0].Currency)
}

func TestPaymentWidget_CreateOrderProviderFailure(t *testing.T) {
	sdk := checkouttest.New()
	sdk.CreateErr = errors.New("503 from provider")
	w := newWidget(sdk, &bytes.Buffer{})

	_, err := w.CreateOrder(context.Background())
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))
}

func TestPaymentWidget_UnavailableWithoutSDK(t *testing.T) {
	var logs bytes.Buffer
	w := newWidget(nil, &logs)
	assert.False(t, w.Available())

	_, err := w.CreateOrder(context.Background())
	assert.ErrorIs(t, err, checkout.ErrIntegrationUnavailable)
	assert.Equal(t, 503, platformerrors.ErrorTypeToHTTPStatus(platformerrors.ErrorTypeIntegrationUnavailable))

	var st checkout.State
	_, err = w.OnApprove(context.Background(), &st, &checkouttest.Notices{}, "ORDER-1")
	assert.ErrorIs(t, err, checkout.ErrIntegrationUnavailable)
	assert.Contains(t, logs.String(), "INTEGRATION_UNAVAILABLE")
}

func TestPaymentWidget_OnApprove(t *testing.T) {
	sdk := checkouttest.New()
	w := newWidget(sdk, &bytes.Buffer{})
	st := checkout.State{Modal: checkout.ModalOpen, Widget: checkout.WidgetState{Rendered: true}}
	notices := &checkouttest.Notices{}

	details, err := w.OnApprove(context.Background(), &st, notices, " ORDER-7 ")
	require.NoError(t, err)
	assert.Equal(t, "ORDER-7", details.OrderID)
	assert.Equal(t, []string{"ORDER-7"}, sdk.Captured)

	assert.True(t, st.Widget.ContainerHidden)
	assert.True(t, st.FormVisible)
	assert.True(t, st.ShowShippingForm())
	require.NotNil(t, st.Payment)
	assert.Equal(t, "ORDER-7", st.Payment.OrderID)
	assert.Equal(t, "Ada", st.Payment.PayerGivenName)
	assert.False(t, st.Payment.CapturedAt.IsZero())

	assert.Equal(t, checkout.Notice{
		Level:   checkout.NoticeSuccess,
		Message: "Payment completed by Ada. Please provide your shipping details.",
	}, notices.Last())
}

func TestPaymentWidget_OnApproveFailures(t *testing.T) {
	t.Run("missing order id", func(t *testing.T) {
		w := newWidget(checkouttest.New(), &bytes.Buffer{})
		var st checkout.State
		_, err := w.OnApprove(context.Background(), &st, &checkouttest.Notices{}, "  ")
		assert.ErrorIs(t, err, checkout.ErrMissingOrderID)
	})

	t.Run("capture error", func(t *testing.T) {
		sdk := checkouttest.New()
		sdk.CaptureErr = errors.New("INSTRUMENT_DECLINED")
		w := newWidget(sdk, &bytes.Buffer{})
		var st checkout.State
		notices := &checkouttest.Notices{}

		_, err := w.OnApprove(context.Background(), &st, notices, "ORDER-1")
		require.Error(t, err)
		assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))
		assert.False(t, st.FormVisible)
		assert.Nil(t, st.Payment)
		assert.Equal(t, checkout.MsgPaymentRetry, notices.Last().Message)
	})

	t.Run("capture not completed", func(t *testing.T) {
		sdk := checkouttest.New()
		sdk.CaptureStatus = "PENDING"
		w := newWidget(sdk, &bytes.Buffer{})
		var st checkout.State

		_, err := w.OnApprove(context.Background(), &st, &checkouttest.Notices{}, "ORDER-1")
		assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypePayment))
		assert.Nil(t, st.Payment)
	})
}

func TestPaymentWidget_OnErrorLeavesStateUntouched(t *testing.T) {
	var logs bytes.Buffer
	w := newWidget(checkouttest.New(), &logs)
	st := checkout.State{Modal: checkout.ModalOpen, Draft: checkout.OrderForm{Name: "Ada"}, Widget: checkout.WidgetState{Rendered: true}}
	before := st
	notices := &checkouttest.Notices{}

	w.OnError(context.Background(), notices, "window closed")

	assert.Equal(t, before, st)
	assert.Equal(t, checkout.Notice{Level: checkout.NoticeError, Message: checkout.MsgPaymentRetry}, notices.Last())
	assert.Contains(t, logs.String(), "window closed")
}

func TestOffer(t *testing.T) {
	offer := checkout.DefaultOffer()
	assert.Equal(t, "29.99", offer.AmountValue())
	assert.Equal(t, "29.99 USD", offer.DisplayPrice())

	offer.Price = decimal.RequireFromString("30")
	assert.Equal(t, "30.00", offer.AmountValue())
}
