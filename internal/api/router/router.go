package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/wolfman30/landing-intake/internal/http/middleware"
	"github.com/wolfman30/landing-intake/internal/intake"
	"github.com/wolfman30/landing-intake/internal/submissions"
	"github.com/wolfman30/landing-intake/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Submissions        *submissions.Handler
	Uploads            *intake.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.Recover(logger))
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.RequestLogger(logger))

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if h := cfg.Submissions; h != nil {
			api.Post("/contact", h.Contact)

			// Liveness, preflight and submission share one path.
			api.Get("/lead-form", h.LeadStatus)
			api.Post("/lead-form", h.LeadSubmit)
			api.Options("/lead-form", h.LeadPreflight)

			api.Route("/paypal", func(pp chi.Router) {
				pp.Post("/create-order", h.CreateOrder)
				pp.Get("/orders/{orderID}", h.GetOrder)
			})
		}
		if cfg.Uploads != nil {
			api.Post("/upload", cfg.Uploads.Upload)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
