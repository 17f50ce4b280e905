package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wadjakorntonsri/shortly/pkg/core/domain"
	"github.com/wadjakorntonsri/shortly/pkg/core/services"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthMiddleware(t *testing.T) {
	tokens := services.NewTokenService("testservlet", 5*time.Minute)
	mw := NewMiddleware(tokens, discardLogger())

	valid, err := tokens.Issue(domain.User{ID: "u1", Username: "alice"})
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	tests := []struct {
		name           string
		header         string
		cookieValue    string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "No Header",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Missing Authorization header",
		},
		{
			name:           "Invalid Token",
			header:         "Bearer invalid",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid or expired token",
		},
		{
			name:           "Malformed Header",
			header:         valid,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Missing Authorization header",
		},
		{
			name:           "Valid Bearer",
			header:         "Bearer " + valid,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Valid Cookie",
			cookieValue:    valid,
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/shorts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookieValue != "" {
				req.AddCookie(&http.Cookie{Name: authCookie, Value: tt.cookieValue})
			}

			var seen *domain.Identity
			rr := httptest.NewRecorder()
			handler := mw.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = IdentityFrom(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			handler.ServeHTTP(rr, req)

			if status := rr.Code; status != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v",
					status, tt.expectedStatus)
			}
			if tt.expectedStatus == http.StatusOK {
				if seen == nil || seen.ID != "u1" || seen.Username != "alice" {
					t.Errorf("identity not propagated: %+v", seen)
				}
				return
			}
			var body ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body.Error != tt.expectedError {
				t.Errorf("error = %q, want %q", body.Error, tt.expectedError)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/shorten", nil))
	if rr.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusTeapot)
	}
}

func TestRecover(t *testing.T) {
	var logs bytes.Buffer
	mw := NewMiddleware(nil, slog.New(slog.NewTextHandler(&logs, nil)))
	handler := mw.Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
	}
	if !bytes.Contains(logs.Bytes(), []byte("boom")) {
		t.Errorf("panic not logged: %s", logs.String())
	}
}

func TestLogging(t *testing.T) {
	var logs bytes.Buffer
	mw := NewMiddleware(nil, slog.New(slog.NewTextHandler(&logs, nil)))
	handler := mw.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/abc", nil))

	for _, want := range []string{"method=GET", "path=/abc", "status=410"} {
		if !bytes.Contains(logs.Bytes(), []byte(want)) {
			t.Errorf("log line missing %q: %s", want, logs.String())
		}
	}
}
