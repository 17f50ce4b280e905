package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/wadjakorntonsri/shortly/pkg/core/domain"
	"github.com/wadjakorntonsri/shortly/pkg/ports"
)

type HTTPHandler struct {
	registry ports.LinkRegistry
	log      *slog.Logger
}

func NewHTTPHandler(registry ports.LinkRegistry, log *slog.Logger) *HTTPHandler {
	return &HTTPHandler{registry: registry, log: log}
}

// ShortenRequest payload. TTLSeconds is loosely typed: numbers and numeric
// strings are honored, anything else selects the default TTL.
type ShortenRequest struct {
	URL        string `json:"url"`
	CustomCode string `json:"customCode,omitempty"`
	TTLSeconds any    `json:"ttlSeconds,omitempty"`
}

type ShortenResponse struct {
	Short     string `json:"short"`
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expiresAt"`
}

type ListResponse struct {
	List []domain.LinkRecord `json:"list"`
}

// Shorten creates a link owned by the caller
func (h *HTTPHandler) Shorten(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Missing Authorization header"})
		return
	}

	var req ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	link, err := h.registry.CreateLink(r.Context(), id.ID, req.URL, req.CustomCode, parseTTL(req.TTLSeconds))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	linksCreated.Inc()

	writeJSON(w, http.StatusCreated, ShortenResponse{
		Short:     h.registry.ShortURL(link.Code),
		Code:      link.Code,
		ExpiresAt: link.ExpiresAt,
	})
}

// List returns every link the caller owns, expired ones included
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Missing Authorization header"})
		return
	}

	list, err := h.registry.ListLinksByOwner(r.Context(), id.ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{List: list})
}

// Redirect to original URL
func (h *HTTPHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	target, err := h.registry.ResolveAndHit(r.Context(), code)
	switch {
	case err == nil:
		redirectsTotal.WithLabelValues("ok").Inc()
		http.Redirect(w, r, target, http.StatusFound)
	case errors.Is(err, domain.ErrNotFound):
		redirectsTotal.WithLabelValues("not_found").Inc()
		writeHTML(w, http.StatusNotFound, "<h1>Not found</h1>")
	case errors.Is(err, domain.ErrExpired):
		redirectsTotal.WithLabelValues("expired").Inc()
		writeHTML(w, http.StatusGone, "<h1>Link expired</h1>")
	default:
		redirectsTotal.WithLabelValues("error").Inc()
		h.log.ErrorContext(r.Context(), "resolve failed", "code", code, "error", err)
		writeHTML(w, http.StatusInternalServerError, "<h1>Internal server error</h1>")
	}
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// parseTTL accepts a JSON number or a numeric string. Fractions are
// truncated; zero means "use the default".
func parseTTL(v any) int64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	switch {
	case f < 1 || math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	default:
		return int64(f)
	}
}
