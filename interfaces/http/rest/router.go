package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"knowflow-backend/infrastructure/config"
	"knowflow-backend/interfaces/http/rest/handlers"
	"knowflow-backend/interfaces/http/rest/middleware"
	"knowflow-backend/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg            *config.Config
	processHandler *handlers.ProcessHandler
	graphHandler   *handlers.GraphHandler
	riskHandler    *handlers.RiskHandler
	metrics        *observability.Collector
	logger         *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	processHandler *handlers.ProcessHandler,
	graphHandler *handlers.GraphHandler,
	riskHandler *handlers.RiskHandler,
	metrics *observability.Collector,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:            cfg,
		processHandler: processHandler,
		graphHandler:   graphHandler,
		riskHandler:    riskHandler,
		metrics:        metrics,
		logger:         logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.cfg.EnableMetrics {
		router.Use(middleware.Metrics(rt.metrics))
	}
	if rt.cfg.RateLimitPerMinute > 0 {
		router.Use(middleware.NewRateLimiter(rt.cfg.RateLimitPerMinute).Handler)
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health and operational endpoints
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.cfg.EnableMetrics {
		router.Handle("/metrics", promhttp.HandlerFor(
			rt.metrics.Registry(), promhttp.HandlerOpts{}))
	}

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/processes", func(r chi.Router) {
			r.Post("/", rt.processHandler.Create)
			r.Get("/", rt.processHandler.List)

			r.Route("/{processID}", func(r chi.Router) {
				r.Get("/", rt.processHandler.Get)
				r.Put("/", rt.processHandler.Update)
				r.Delete("/", rt.processHandler.Delete)
				r.Post("/archive", rt.processHandler.Archive)

				// Graph mutation and traversal
				r.Route("/graph", func(r chi.Router) {
					r.Get("/", rt.graphHandler.GetGraph)
					r.Post("/merge", rt.graphHandler.Merge)
					r.Get("/analysis", rt.graphHandler.Analysis)
					r.Get("/path", rt.graphHandler.Path)
					r.Route("/nodes/{nodeID}", func(r chi.Router) {
						r.Delete("/", rt.graphHandler.RemoveNode)
						r.Get("/downstream", rt.graphHandler.Downstream)
						r.Get("/upstream", rt.graphHandler.Upstream)
					})
					r.Delete("/edges/{edgeID}", rt.graphHandler.RemoveEdge)
				})

				// Versioning
				r.Route("/versions", func(r chi.Router) {
					r.Post("/", rt.graphHandler.Snapshot)
					r.Get("/", rt.graphHandler.ListVersions)
					r.Get("/diff", rt.graphHandler.Diff)
					r.Get("/{versionNumber}", rt.graphHandler.GetVersion)
				})

				// Risk analysis and finding lifecycle
				r.Route("/risks", func(r chi.Router) {
					r.Post("/analyze", rt.riskHandler.Analyze)
					r.Get("/", rt.riskHandler.List)
					r.Route("/{findingID}", func(r chi.Router) {
						r.Get("/", rt.riskHandler.Get)
						r.Post("/acknowledge", rt.riskHandler.Acknowledge)
						r.Post("/resolve", rt.riskHandler.Resolve)
					})
				})
			})
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests. State is in-memory, so
// the process being up means it is ready.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
