package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wadjakorntonsri/shortly/pkg/config"
	"github.com/wadjakorntonsri/shortly/pkg/ports"
)

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, registry ports.LinkRegistry, accounts ports.AccountService, tokens ports.TokenVerifier, log *slog.Logger) http.Handler {
	h := NewHTTPHandler(registry, log)
	authHandler := NewAuthHandler(cfg, accounts, log)
	mw := NewMiddleware(tokens, log)

	mux := http.NewServeMux()

	// Public Routes. Everything besides the page and /{code} lives under /api
	// so single-segment paths stay free for short codes.
	mux.HandleFunc("GET /api/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})
	mux.Handle("GET /api/metrics", promhttp.Handler())
	mux.HandleFunc("GET /{$}", Home)
	mux.HandleFunc("GET /{code}", h.Redirect)
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	if authHandler.GoogleEnabled() {
		mux.HandleFunc("GET /api/auth/google/login", authHandler.GoogleLogin)
		mux.HandleFunc("GET /api/auth/google/callback", authHandler.GoogleCallback)
	}

	// Protected Routes
	mux.Handle("POST /api/shorten", mw.AuthMiddleware(http.HandlerFunc(h.Shorten)))
	mux.Handle("GET /api/shorts", mw.AuthMiddleware(http.HandlerFunc(h.List)))

	return mw.Recover(CORS(Metrics(mw.Logging(mux))))
}
