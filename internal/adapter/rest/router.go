package rest

import (
	"net/http"
	"time"

	"stock-advisor/internal/application/port/input"
	"stock-advisor/internal/application/port/output"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog"
)

type RouterConfig struct {
	Advisor input.Advisor
	Logger  output.LoggerPort
	// Metrics serves GET /metrics when set.
	Metrics http.Handler
	// AllowedOrigins defaults to any origin.
	AllowedOrigins []string
	// AccessLog enables JSON request logging at LogLevel.
	AccessLog bool
	LogLevel  string
	// RequestTimeout bounds one analysis, LLM calls included.
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := NewHandler(cfg.Advisor, cfg.Logger, cfg.RequestTimeout)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if cfg.AccessLog {
		level := cfg.LogLevel
		if level == "" {
			level = "info"
		}
		r.Use(httplog.RequestLogger(httplog.NewLogger("stock-advisor", httplog.Options{
			JSON:     true,
			LogLevel: level,
		})))
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	r.Post("/analyze", h.Analyze)

	return r
}
