package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/colormuse/colormuse-books/internal/domain/session"
	"github.com/colormuse/colormuse-books/internal/infrastructure/metrics"
	"github.com/colormuse/colormuse-books/internal/interfaces/httpserver/middlewares"
	"github.com/colormuse/colormuse-books/internal/interfaces/httpserver/responses"
	"github.com/colormuse/colormuse-books/internal/utils/platformerrors"
	"github.com/colormuse/colormuse-books/pkg/observability"
)

// CheckoutHandler receives the payment button callbacks.
type CheckoutHandler struct {
	page *session.Page
	log  zerolog.Logger
}

func NewCheckoutHandler(page *session.Page, log zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		page: page,
		log:  log.With().Str("component", "checkout-handler").Logger(),
	}
}

type paymentErrorRequest struct {
	Message string `json:"message"`
}

// CreateOrder is the createOrder callback.
func (h *CheckoutHandler) CreateOrder(c *gin.Context) {
	out, err := h.page.CreatePayment(c.Request.Context(), middlewares.SessionID(c))
	metrics.RecordPaymentCallback("create_order", err)
	if err != nil {
		responses.HandleError(c, err, "failed to create order")
		return
	}
	observability.AddAttrsToSpan(trace.SpanFromContext(c.Request.Context()),
		observability.WithCheckoutAttrs("create_order", out.Order.ID)...)
	c.JSON(http.StatusCreated, responses.OrderResponse{ID: out.Order.ID, Status: out.Order.Status})
}

// Capture is the onApprove callback.
func (h *CheckoutHandler) Capture(c *gin.Context) {
	orderID := c.Param("id")
	observability.AddAttrsToSpan(trace.SpanFromContext(c.Request.Context()),
		observability.WithCheckoutAttrs("approve", orderID)...)

	out, err := h.page.ApprovePayment(c.Request.Context(), middlewares.SessionID(c), orderID)
	metrics.RecordPaymentCallback("approve", err)
	if err != nil {
		responses.HandleError(c, err, "failed to capture order", out.Notices...)
		return
	}
	c.JSON(http.StatusOK, responses.CaptureResponse{
		OrderID:          out.Capture.OrderID,
		Status:           out.Capture.Status,
		PayerGivenName:   out.Capture.Payer.GivenName,
		ShowShippingForm: true,
		Notices:          out.Notices,
	})
}

// Error is the onError callback.
func (h *CheckoutHandler) Error(c *gin.Context) {
	var req paymentErrorRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "request body must be JSON", "checkout-bad-error-report")
		return
	}

	out, err := h.page.PaymentError(c.Request.Context(), middlewares.SessionID(c), req.Message)
	metrics.RecordPaymentCallback("error", err)
	if err != nil {
		responses.HandleError(c, err, "failed to record payment error")
		return
	}
	c.JSON(http.StatusOK, responses.NoticesResponse{Notices: out.Notices})
}
