package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colormuse/colormuse-books/internal/config"
	"github.com/colormuse/colormuse-books/internal/domain/book"
	"github.com/colormuse/colormuse-books/internal/domain/checkout"
	"github.com/colormuse/colormuse-books/internal/domain/checkout/checkouttest"
	"github.com/colormuse/colormuse-books/internal/domain/confirmation"
	"github.com/colormuse/colormuse-books/internal/domain/preview"
	"github.com/colormuse/colormuse-books/internal/domain/session"
	"github.com/colormuse/colormuse-books/internal/infrastructure/sessionstore"
	"github.com/colormuse/colormuse-books/internal/interfaces/httpserver"
	"github.com/colormuse/colormuse-books/internal/interfaces/httpserver/handlers"
	"github.com/colormuse/colormuse-books/internal/interfaces/httpserver/responses"
	v1 "github.com/colormuse/colormuse-books/internal/interfaces/httpserver/routes/v1"
	"github.com/colormuse/colormuse-books/internal/interfaces/web"
	"github.com/colormuse/colormuse-books/pkg/observability"
)

const cookieName = "colormuse_session"

type recordingQueue struct {
	mu   sync.Mutex
	jobs []confirmation.Job
}

func (q *recordingQueue) Enqueue(_ context.Context, job confirmation.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

type harness struct {
	handler http.Handler
	sdk     *checkouttest.SDK
	queue   *recordingQueue
	cookie  *http.Cookie
}

func newHarness(t *testing.T, withSDK bool, checks ...handlers.ReadinessCheck) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		ServiceName:     "colormuse-web",
		Environment:     "test",
		SessionCookie:   cookieName,
		SessionTTL:      time.Hour,
		ShutdownTimeout: time.Second,
	}
	log := zerolog.Nop()

	store, err := sessionstore.NewMemoryStore(32, time.Hour)
	require.NoError(t, err)
	gen, err := preview.NewGenerator(nil, 0)
	require.NoError(t, err)

	h := &harness{queue: &recordingQueue{}}
	var sdk checkout.PaymentSDK
	if withSDK {
		h.sdk = checkouttest.New()
		sdk = h.sdk
	}
	widget := checkout.NewPaymentWidget(sdk, checkout.DefaultOffer(), v1.Callbacks(""), log)
	modal := checkout.NewOrderModal(widget, log)
	page := session.NewPage(store, gen, modal, widget, h.queue, log)

	telemetry, err := observability.Init(context.Background(), observability.DefaultConfig("colormuse-test"))
	require.NoError(t, err)

	provider := handlers.NewProvider("ColorMuse Books", page, book.NewBuilder(web.Root(), ""), checks, log)
	srv, err := httpserver.New(cfg, log, telemetry, provider)
	require.NoError(t, err)
	h.handler = srv.Handler()
	return h
}

func (h *harness) do(t *testing.T, method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			h.cookie = c
		}
	}
	return w
}

func (h *harness) form(t *testing.T, target string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return h.do(t, http.MethodPost, target, []byte(values.Encode()), "application/x-www-form-urlencoded")
}

func (h *harness) json(t *testing.T, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return h.do(t, http.MethodPost, target, data, "application/json")
}

func (h *harness) page(t *testing.T) string {
	t.Helper()
	w := h.do(t, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func (h *harness) generate(t *testing.T, prompt string) {
	t.Helper()
	w := h.form(t, "/preview", url.Values{"prompt": {prompt}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestIndex_FreshSession(t *testing.T) {
	h := newHarness(t, true)

	body := h.page(t)
	require.NotNil(t, h.cookie)
	assert.Contains(t, body, `action="/preview"`)
	assert.NotContains(t, body, `id="order-section"`)
	assert.NotContains(t, body, `id="order-modal"`)
	assert.NotContains(t, body, "<figure")
}

func TestPreview_FillsGridAndRevealsOrderSection(t *testing.T) {
	h := newHarness(t, true)

	h.generate(t, "sea animals")
	body := h.page(t)

	assert.Equal(t, 25, strings.Count(body, "<figure"))
	assert.Contains(t, body, `src="/assets/page1.png" alt="Preview page 1"`)
	assert.Contains(t, body, `src="/assets/page1.png" alt="Preview page 25"`)
	assert.Contains(t, body, `id="order-section"`)
	assert.Contains(t, body, "29.99 USD")
}

func TestPreview_EmptyPromptNotifies(t *testing.T) {
	h := newHarness(t, true)

	h.generate(t, "   ")
	body := h.page(t)

	assert.Contains(t, body, session.MsgMissingTheme)
	assert.NotContains(t, body, `id="order-section"`)
	assert.NotContains(t, body, "<figure")

	// notices are shown once
	assert.NotContains(t, h.page(t), session.MsgMissingTheme)
}

func TestOrderOpen_RendersButtonOnce(t *testing.T) {
	h := newHarness(t, true)
	h.generate(t, "dinosaurs")

	require.Equal(t, http.StatusSeeOther, h.form(t, "/order/open", nil).Code)
	require.Equal(t, http.StatusSeeOther, h.form(t, "/order/open", nil).Code)

	body := h.page(t)
	assert.Contains(t, body, `id="order-modal"`)
	assert.Contains(t, body, `id="paypal-container"`)
	assert.Contains(t, body, `data-create-url="/v1/checkout/orders"`)
	assert.Equal(t, 1, h.sdk.RenderCount())

	require.Equal(t, http.StatusSeeOther, h.form(t, "/order/close", nil).Code)
	require.Equal(t, http.StatusSeeOther, h.form(t, "/order/open", nil).Code)
	assert.Equal(t, 1, h.sdk.RenderCount())
}

func TestOrderOpen_WithoutSDKShowsFormOnly(t *testing.T) {
	h := newHarness(t, false)
	h.generate(t, "dinosaurs")

	require.Equal(t, http.StatusSeeOther, h.form(t, "/order/open", nil).Code)
	body := h.page(t)
	assert.Contains(t, body, `id="order-modal"`)
	assert.NotContains(t, body, `id="paypal-container"`)
	assert.Contains(t, body, `id="shipping-form"`)
}

func TestSubmit_MissingFieldKeepsModalAndDraft(t *testing.T) {
	h := newHarness(t, false)
	h.generate(t, "robots")
	h.form(t, "/order/open", nil)

	w := h.form(t, "/order/submit", url.Values{"name": {"Ada"}, "email": {"  "}, "address": {"1 Analytical Way"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	body := h.page(t)
	assert.Contains(t, body, checkout.MsgMissingFields)
	assert.Contains(t, body, `id="order-modal"`)
	assert.Contains(t, body, `value="Ada"`)
	assert.Contains(t, body, "1 Analytical Way")
	assert.Equal(t, 0, h.queue.count())
}

func TestCheckoutFlow_CreateCaptureSubmit(t *testing.T) {
	h := newHarness(t, true)
	h.generate(t, "sea animals")
	h.form(t, "/order/open", nil)

	w := h.json(t, "/v1/checkout/orders", struct{}{})
	require.Equal(t, http.StatusCreated, w.Code)
	var order responses.OrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, "ORDER-1", order.ID)
	require.Len(t, h.sdk.Created, 1)
	assert.Equal(t, "29.99", h.sdk.Created[0].PurchaseUnits[0].Amount.StringFixed(2))

	w = h.json(t, "/v1/checkout/orders/"+order.ID+"/capture", struct{}{})
	require.Equal(t, http.StatusOK, w.Code)
	var capture responses.CaptureResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &capture))
	assert.True(t, capture.ShowShippingForm)
	assert.Equal(t, "Ada", capture.PayerGivenName)
	require.Len(t, capture.Notices, 1)
	assert.Equal(t, fmt.Sprintf(checkout.MsgPaymentComplete, "Ada"), capture.Notices[0].Message)

	body := h.page(t)
	assert.NotContains(t, body, `id="paypal-container"`)
	assert.Contains(t, body, `id="shipping-form"`)

	w = h.form(t, "/order/submit", url.Values{"name": {"Ada Lovelace"}, "email": {"ada@example.com"}, "address": {"1 Analytical Way"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	body = h.page(t)
	assert.Contains(t, body, "Thank you, Ada Lovelace!")
	assert.Contains(t, body, "ada@example.com")
	assert.NotContains(t, body, `id="order-modal"`)

	require.Equal(t, 1, h.queue.count())
	job := h.queue.jobs[0]
	require.NotNil(t, job.Confirmation.Payment)
	assert.Equal(t, "ORDER-1", job.Confirmation.Payment.OrderID)
	assert.Equal(t, 25, job.Preview.Len())
}

func TestCheckout_SDKAbsentIsUnavailable(t *testing.T) {
	h := newHarness(t, false)

	w := h.json(t, "/v1/checkout/orders", struct{}{})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body responses.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INTEGRATION_UNAVAILABLE", body.Type)
}

func TestCheckout_CaptureFailureNotifiesRetry(t *testing.T) {
	h := newHarness(t, true)
	h.form(t, "/order/open", nil)
	h.sdk.CaptureErr = errors.New("connection reset")

	w := h.json(t, "/v1/checkout/orders/ORDER-9/capture", struct{}{})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var body responses.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Notices, 1)
	assert.Equal(t, checkout.MsgPaymentRetry, body.Notices[0].Message)
}

func TestCheckout_ErrorCallback(t *testing.T) {
	h := newHarness(t, true)
	h.form(t, "/order/open", nil)

	w := h.json(t, "/v1/checkout/errors", map[string]string{"message": "popup closed"})
	require.Equal(t, http.StatusOK, w.Code)

	var body responses.NoticesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Notices, 1)
	assert.Equal(t, checkout.MsgPaymentRetry, body.Notices[0].Message)

	page := h.page(t)
	assert.Contains(t, page, `id="order-modal"`)
	assert.Contains(t, page, `id="paypal-container"`)

	w = h.do(t, http.MethodPost, "/v1/checkout/errors", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestV1Previews(t *testing.T) {
	h := newHarness(t, true)

	w := h.json(t, "/v1/previews", map[string]string{"prompt": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errBody responses.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errBody))
	require.Len(t, errBody.Notices, 1)
	assert.Equal(t, session.MsgMissingTheme, errBody.Notices[0].Message)

	w = h.json(t, "/v1/previews", map[string]string{"prompt": "sea animals"})
	require.Equal(t, http.StatusOK, w.Code)
	var body responses.PreviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Pages, 25)
	assert.Equal(t, "assets/page1.png", body.Pages[24])

	w = h.do(t, http.MethodPost, "/v1/previews", []byte("not json"), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShippingFormSchemaEndpoint(t *testing.T) {
	h := newHarness(t, true)

	w := h.do(t, http.MethodGet, "/v1/schemas/shipping-form", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"required"`)
	assert.Contains(t, w.Body.String(), `"address"`)
}

func TestBookPDF(t *testing.T) {
	h := newHarness(t, true)

	w := h.do(t, http.MethodGet, "/book.pdf", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	h.generate(t, "sea animals")
	w = h.do(t, http.MethodGet, "/book.pdf", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestStaticAndAssets(t *testing.T) {
	h := newHarness(t, true)

	for _, target := range []string{"/static/app.js", "/static/app.css", "/assets/page3.png"} {
		w := h.do(t, http.MethodGet, target, nil, "")
		assert.Equal(t, http.StatusOK, w.Code, target)
	}
}

func TestHealthProbes(t *testing.T) {
	h := newHarness(t, true,
		handlers.ReadinessCheck{Name: "sessions", Check: func(context.Context) error { return nil }},
		handlers.ReadinessCheck{Name: "storage", Check: func(context.Context) error { return errors.New("bucket missing") }},
	)

	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/healthz", nil, "").Code)

	w := h.do(t, http.MethodGet, "/readyz", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "bucket missing")

	w = h.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "colormuse_web_")
}

func TestRequestIDHeader(t *testing.T) {
	h := newHarness(t, true)
	w := h.do(t, http.MethodGet, "/healthz", nil, "")
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}
