package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/colormuse/colormuse-books/internal/domain/checkout"
	"github.com/colormuse/colormuse-books/internal/domain/preview"
	"github.com/colormuse/colormuse-books/internal/domain/session"
	"github.com/colormuse/colormuse-books/internal/infrastructure/metrics"
	"github.com/colormuse/colormuse-books/internal/interfaces/httpserver/middlewares"
	"github.com/colormuse/colormuse-books/internal/interfaces/httpserver/responses"
	"github.com/colormuse/colormuse-books/internal/interfaces/web"
	"github.com/colormuse/colormuse-books/internal/utils/platformerrors"
	"github.com/colormuse/colormuse-books/pkg/observability"
)

const proofFilename = "colormuse-proof.pdf"

// ProofBuilder renders the printable proof of a preview.
type ProofBuilder interface {
	Build(ctx context.Context, set *preview.PreviewSet) ([]byte, error)
}

// PageHandler serves the server rendered storefront. Every form post applies
// one page transition and redirects back to the page (post/redirect/get), so
// notices raised by the transition show up on the next render.
type PageHandler struct {
	title  string
	page   *session.Page
	proofs ProofBuilder
	log    zerolog.Logger
}

func NewPageHandler(title string, page *session.Page, proofs ProofBuilder, log zerolog.Logger) *PageHandler {
	return &PageHandler{
		title:  title,
		page:   page,
		proofs: proofs,
		log:    log.With().Str("component", "page-handler").Logger(),
	}
}

// Index renders the page for the current session.
func (h *PageHandler) Index(c *gin.Context) {
	view, err := h.page.View(c.Request.Context(), middlewares.SessionID(c))
	if err != nil {
		h.fail(c, err, "failed to load page")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, web.PageTemplate, gin.H{
		"Title": h.title,
		"View":  view,
	})
}

// Generate handles the prompt form.
func (h *PageHandler) Generate(c *gin.Context) {
	_, err := h.page.Generate(c.Request.Context(), middlewares.SessionID(c), c.PostForm("prompt"))
	metrics.RecordPreview(err)
	h.redirect(c, err, "failed to generate preview")
}

// Open opens the order modal.
func (h *PageHandler) Open(c *gin.Context) {
	out, err := h.page.OpenOrder(c.Request.Context(), middlewares.SessionID(c))
	if err == nil {
		metrics.RecordWidgetRender(out.WidgetRendered)
	}
	h.redirect(c, err, "failed to open order")
}

// Close closes the order modal.
func (h *PageHandler) Close(c *gin.Context) {
	_, err := h.page.CloseOrder(c.Request.Context(), middlewares.SessionID(c))
	h.redirect(c, err, "failed to close order")
}

// Submit handles the shipping form.
func (h *PageHandler) Submit(c *gin.Context) {
	var form checkout.OrderForm
	if err := c.ShouldBind(&form); err != nil {
		h.log.Warn().Err(err).Msg("could not bind shipping form")
	}
	out, err := h.page.SubmitOrder(c.Request.Context(), middlewares.SessionID(c), form)
	metrics.RecordSubmission(err)
	if err == nil && out.Confirmation != nil {
		observability.AddAttrsToSpan(trace.SpanFromContext(c.Request.Context()),
			observability.WithOrderAttrs(out.Confirmation.Reference, out.Preview.Len())...)
	}
	h.redirect(c, err, "failed to submit order")
}

// Book streams the PDF proof of the current preview.
func (h *PageHandler) Book(c *gin.Context) {
	ctx := c.Request.Context()
	set, err := h.page.Preview(ctx, middlewares.SessionID(c))
	if err != nil {
		responses.HandleError(c, err, "failed to load preview")
		return
	}

	data, err := h.proofs.Build(ctx, set)
	metrics.RecordProof(err)
	if err != nil {
		responses.HandleError(c, err, "failed to build proof")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+proofFilename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// redirect sends the browser back to the page. Domain errors have already
// been turned into notices; anything else is a server failure.
func (h *PageHandler) redirect(c *gin.Context, err error, message string) {
	if err != nil && !isDomainError(err) {
		h.fail(c, err, message)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *PageHandler) fail(c *gin.Context, err error, message string) {
	_ = c.Error(err)
	h.log.Error().Err(err).Str("session_id", middlewares.SessionID(c)).Msg(message)
	c.String(http.StatusInternalServerError, "Something went wrong. Please reload the page and try again.")
}

func isDomainError(err error) bool {
	var perr *platformerrors.PlatformError
	return errors.As(err, &perr) && perr.Layer == platformerrors.LayerDomain
}
