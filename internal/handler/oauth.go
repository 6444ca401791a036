package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/xid"

	"github.com/sakif/storefront/internal/auth"
	"github.com/sakif/storefront/internal/service"
)

const stateCookie = "oauth_state"

// OAuthHandler drives the federated login flow for the registered
// providers (Google, Facebook).
//
// The flow is browser-facing, so callback errors never render a JSON
// body: every failure — bad state, denied consent, exchange error,
// account resolution error — redirects to the configured failure URL with
// the same error marker. The frontend shows one generic message and the
// details stay in the server log.
type OAuthHandler struct {
	providers  map[string]*auth.Provider
	auth       *service.AuthService
	successURL string
	failureURL string
	logger     *slog.Logger
}

func NewOAuthHandler(
	providers []*auth.Provider,
	authSvc *service.AuthService,
	successURL, failureURL string,
	logger *slog.Logger,
) *OAuthHandler {
	byName := make(map[string]*auth.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &OAuthHandler{
		providers:  byName,
		auth:       authSvc,
		successURL: successURL,
		failureURL: failureURL,
		logger:     logger,
	}
}

// HandleLogin starts the flow: set a single-use state cookie and send the
// browser to the provider's consent page.
//
// HTTP: GET /oauth/{provider}
func (h *OAuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[chi.URLParam(r, "provider")]
	if !ok {
		http.NotFound(w, r)
		return
	}

	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, provider.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleCallback completes the flow: verify state, exchange the code for
// a profile, resolve the account, and bounce back to the frontend with
// the token in the query string.
//
// HTTP: GET /oauth/{provider}/callback?code=xxx&state=yyy
func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	provider, ok := h.providers[name]
	if !ok {
		http.NotFound(w, r)
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || r.URL.Query().Get("state") != cookie.Value {
		h.logger.Warn("oauth callback: state check failed", slog.String("provider", name))
		h.redirectFailure(w, r)
		return
	}

	// Single-use: drop the cookie whether or not the rest succeeds.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("oauth callback: provider returned error",
			slog.String("provider", name),
			slog.String("error", errParam),
		)
		h.redirectFailure(w, r)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectFailure(w, r)
		return
	}

	profile, err := provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: exchange failed",
			slog.String("provider", name),
			slog.String("error", err.Error()),
		)
		h.redirectFailure(w, r)
		return
	}

	result, err := h.auth.LoginFederated(r.Context(), name, profile)
	if err != nil {
		h.logger.Error("oauth callback: account resolution failed",
			slog.String("provider", name),
			slog.String("error", err.Error()),
		)
		h.redirectFailure(w, r)
		return
	}

	q := url.Values{}
	q.Set("token", result.Token)
	q.Set("userId", result.UserID)
	http.Redirect(w, r, h.successURL+"?"+q.Encode(), http.StatusSeeOther)
}

func (h *OAuthHandler) redirectFailure(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.failureURL+"?error=OAuthLoginFailed", http.StatusSeeOther)
}
