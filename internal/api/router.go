package api

import (
	"isp-billing/internal/api/handler"
	mw "isp-billing/internal/api/middleware"
	"isp-billing/internal/config"
	"log/slog"
	"net/http"
	"time"

	_ "isp-billing/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const requestTimeout = 60 * time.Second

// Services groups what the HTTP layer drives.
type Services struct {
	Ledger   handler.Ledger
	Invoices handler.InvoiceService
	Feed     handler.ChangeFeed
}

func SetupRouter(rateLimiter *mw.RateLimiterMiddleware, svc Services, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	setupMiddleware(router, rateLimiter, logger, "/health", metricsPath)
	setupMetricsEndpoint(router, metricsPath, logger)
	setupPeriodRoutes(router, svc, cfg, logger)
	setupCustomerRoutes(router, svc, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	setupSwaggerEndpoint(router, logger)

	return router
}

// setupMiddleware leaves the request timeout to the route groups so event streams can stay open.
func setupMiddleware(router *chi.Mux, rateLimiter *mw.RateLimiterMiddleware, logger *slog.Logger, quietPaths ...string) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger, quietPaths...))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5, "application/json"))
	if rateLimiter != nil {
		router.Use(rateLimiter.Middleware)
	}
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, metricsPath string, logger *slog.Logger) {
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupPeriodRoutes(router *chi.Mux, svc Services, cfg *config.Config, logger *slog.Logger) {
	h := handler.NewPeriodHandler(svc.Ledger, svc.Feed, cfg.Invoice.CurrencyPrefix, logger)

	router.Route("/periods/{year}/{month}", func(r chi.Router) {
		r.Get("/events", h.StreamEvents)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))
			r.Get("/view", h.GetView)
			r.Get("/history", h.GetHistory)
			r.Post("/customers/{customerID}/toggle", h.TogglePayment)
		})
	})
}

func setupCustomerRoutes(router *chi.Mux, svc Services, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc.Ledger, logger)
	inv := handler.NewInvoiceHandler(svc.Invoices, logger)

	router.Route("/customers", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Post("/", h.CreateCustomer)
		r.Route("/{customerID}", func(r chi.Router) {
			r.Get("/", h.GetCustomer)
			r.Put("/", h.UpdateCustomer)
			r.Delete("/", h.DeleteCustomer)
			r.Get("/invoice", inv.DownloadInvoice)
			r.Get("/invoice/share", inv.ShareInvoice)
		})
	})
}
