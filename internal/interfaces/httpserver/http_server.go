package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/colormuse/colormuse-books/internal/config"
	"github.com/colormuse/colormuse-books/internal/interfaces/httpserver/handlers"
	"github.com/colormuse/colormuse-books/internal/interfaces/httpserver/middlewares"
	v1 "github.com/colormuse/colormuse-books/internal/interfaces/httpserver/routes/v1"
	"github.com/colormuse/colormuse-books/internal/interfaces/web"
	"github.com/colormuse/colormuse-books/pkg/observability"
	obsmiddleware "github.com/colormuse/colormuse-books/pkg/observability/middleware"
)

// HttpServer wraps the gin engine with graceful shutdown helpers.
type HttpServer struct {
	cfg    *config.Config
	engine *gin.Engine
	log    zerolog.Logger
}

// New constructs the HTTP server with default middleware and routes.
func New(cfg *config.Config, log zerolog.Logger, telemetry *observability.Provider, provider *handlers.Provider) (*HttpServer, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.SetHTMLTemplate(tmpl)
	engine.Use(
		gin.Recovery(),
		middlewares.RequestID(),
		obsmiddleware.Tracing(telemetry.Tracer, telemetry.Meter, "web"),
		middlewares.LoggingMiddleware(log),
		middlewares.MetricsMiddleware(),
	)

	registerCoreRoutes(engine, provider)

	pages := engine.Group("/", middlewares.Session(middlewares.SessionCookie{
		Name:   cfg.SessionCookie,
		TTL:    cfg.SessionTTL,
		Secure: cfg.IsProduction(),
	}))
	registerPageRoutes(pages, provider)
	v1.NewRoutes(provider).Register(pages)

	return &HttpServer{
		cfg:    cfg,
		engine: engine,
		log:    log,
	}, nil
}

// Handler exposes the engine for tests and embedding.
func (s *HttpServer) Handler() http.Handler {
	return s.engine
}

// Run starts the HTTP listener and handles graceful shutdown via context cancellation.
func (s *HttpServer) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr()).Msg("storefront HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info().Msg("context cancelled, shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func registerCoreRoutes(engine *gin.Engine, provider *handlers.Provider) {
	engine.GET("/healthz", provider.Health.Healthz)
	engine.GET("/readyz", provider.Health.Readyz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.StaticFS("/static", http.FS(web.Static()))
	engine.StaticFS("/assets", http.FS(web.Assets()))
}

func registerPageRoutes(router gin.IRouter, provider *handlers.Provider) {
	router.GET("/", provider.Page.Index)
	router.POST("/preview", provider.Page.Generate)
	router.POST("/order/open", provider.Page.Open)
	router.POST("/order/close", provider.Page.Close)
	router.POST("/order/submit", provider.Page.Submit)
	router.GET("/book.pdf", provider.Page.Book)
}
