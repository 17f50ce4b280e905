package handler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/wadjakorntonsri/shortly/pkg/config"
	"github.com/wadjakorntonsri/shortly/pkg/ports"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type AuthHandler struct {
	accounts     ports.AccountService
	log          *slog.Logger
	oauthConfig  *oauth2.Config // nil when Google sign-in is not configured
	userInfoURL  string
	tokenTTL     time.Duration
	isProduction bool
}

type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

func NewAuthHandler(cfg *config.Config, accounts ports.AccountService, log *slog.Logger) *AuthHandler {
	h := &AuthHandler{
		accounts:     accounts,
		log:          log,
		userInfoURL:  googleUserInfoURL,
		tokenTTL:     cfg.TokenTTL,
		isProduction: cfg.AppEnv == "production",
	}
	if cfg.GoogleEnabled() {
		h.oauthConfig = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
	}
	return h
}

// GoogleEnabled reports whether the Google routes should be mounted.
func (h *AuthHandler) GoogleEnabled() bool {
	return h.oauthConfig != nil
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	token, err := h.accounts.Signup(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	token, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := h.generateStateOauthCookie(w)
	url := h.oauthConfig.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	oauthState, err := r.Cookie("oauthstate")
	if err != nil {
		h.log.Warn("google callback: missing oauthstate cookie", "error", err)
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	if r.FormValue("state") != oauthState.Value {
		h.log.Warn("google callback: invalid oauth state")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid oauth state"})
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		h.log.Error("google callback: code exchange failed", "error", err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "Code exchange failed"})
		return
	}

	response, err := h.oauthConfig.Client(r.Context(), token).Get(h.userInfoURL)
	if err != nil {
		h.log.Error("google callback: failed getting user info", "error", err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "Failed getting user info"})
		return
	}
	defer response.Body.Close()

	var googleUser GoogleUser
	if err := json.NewDecoder(response.Body).Decode(&googleUser); err != nil {
		h.log.Error("google callback: failed decoding user info", "error", err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "Failed decoding user info"})
		return
	}
	if !googleUser.VerifiedEmail || googleUser.Email == "" {
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "Google account email is not verified"})
		return
	}

	jwtToken, err := h.accounts.ExternalLogin(r.Context(), googleUser.Email)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    jwtToken,
		Expires:  time.Now().Add(h.tokenTTL),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})

	h.log.Info("google login successful", "email", googleUser.Email)
	// the page picks the token up from the fragment for its bearer header
	http.Redirect(w, r, "/#token="+jwtToken, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) generateStateOauthCookie(w http.ResponseWriter) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     "oauthstate",
		Value:    state,
		Expires:  time.Now().Add(20 * time.Minute),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	return state
}
