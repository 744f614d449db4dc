package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/colormuse/colormuse-books/internal/domain/checkout"
	"github.com/colormuse/colormuse-books/internal/domain/session"
	"github.com/colormuse/colormuse-books/internal/infrastructure/metrics"
	"github.com/colormuse/colormuse-books/internal/interfaces/httpserver/middlewares"
	"github.com/colormuse/colormuse-books/internal/interfaces/httpserver/responses"
	"github.com/colormuse/colormuse-books/internal/utils/platformerrors"
)

// PreviewHandler exposes preview generation as JSON.
type PreviewHandler struct {
	page *session.Page
	log  zerolog.Logger
}

func NewPreviewHandler(page *session.Page, log zerolog.Logger) *PreviewHandler {
	return &PreviewHandler{
		page: page,
		log:  log.With().Str("component", "preview-handler").Logger(),
	}
}

type previewRequest struct {
	Prompt string `json:"prompt"`
}

// Generate replaces the session preview with a new set for the prompt.
func (h *PreviewHandler) Generate(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "request body must be JSON", "preview-bad-request")
		return
	}

	out, err := h.page.Generate(c.Request.Context(), middlewares.SessionID(c), req.Prompt)
	metrics.RecordPreview(err)
	if err != nil {
		responses.HandleError(c, err, "failed to generate preview", out.Notices...)
		return
	}

	c.JSON(http.StatusOK, responses.PreviewResponse{
		Prompt:  out.Preview.Prompt,
		Pages:   out.Preview.Pages,
		Notices: out.Notices,
	})
}

// Schema returns the JSON Schema of the shipping form.
func (h *PreviewHandler) Schema(c *gin.Context) {
	c.JSON(http.StatusOK, checkout.ShippingFormSchema())
}
