package v1

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/colormuse/colormuse-books/internal/domain/checkout"
	"github.com/colormuse/colormuse-books/internal/interfaces/httpserver/handlers"
)

const (
	createOrderPath = "/v1/checkout/orders"
	approvePath     = "/v1/checkout/orders/{id}/capture"
	paymentErrPath  = "/v1/checkout/errors"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under /v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")
	group.POST("/previews", r.handlers.Preview.Generate)
	group.GET("/schemas/shipping-form", r.handlers.Preview.Schema)

	checkoutGroup := group.Group("/checkout")
	checkoutGroup.POST("/orders", r.handlers.Checkout.CreateOrder)
	checkoutGroup.POST("/orders/:id/capture", r.handlers.Checkout.Capture)
	checkoutGroup.POST("/errors", r.handlers.Checkout.Error)
}

// Callbacks returns the endpoints the payment button calls, rooted at
// publicURL. An empty publicURL keeps them relative to the page.
func Callbacks(publicURL string) checkout.ButtonCallbacks {
	base := strings.TrimRight(strings.TrimSpace(publicURL), "/")
	return checkout.ButtonCallbacks{
		CreateOrderURL: base + createOrderPath,
		ApproveURL:     base + approvePath,
		ErrorURL:       base + paymentErrPath,
	}
}
