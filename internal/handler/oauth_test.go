package handler_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/sakif/storefront/internal/auth"
	"github.com/sakif/storefront/internal/handler"
)

const (
	testSuccessURL = "http://frontend.example/oauth-success"
	testFailureURL = "http://frontend.example/login"
)

// stubProviderServer plays the external identity provider: it answers the
// token exchange and the profile fetch so the full callback path runs
// without the network.
func stubProviderServer(t *testing.T, profile map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "stub-access-token",
			"token_type":   "Bearer",
		})
	})
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newOAuthTestRouter(t *testing.T, env *testEnv, provider *auth.Provider) chi.Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewOAuthHandler([]*auth.Provider{provider}, env.authSvc,
		testSuccessURL, testFailureURL, logger)

	r := chi.NewRouter()
	r.Get("/oauth/{provider}", h.HandleLogin)
	r.Get("/oauth/{provider}/callback", h.HandleCallback)
	return r
}

func stubGoogleProvider(srv *httptest.Server) *auth.Provider {
	return auth.NewProvider("google",
		&oauth2.Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "http://localhost:8080/oauth/google/callback",
			Endpoint: oauth2.Endpoint{
				AuthURL:  srv.URL + "/auth",
				TokenURL: srv.URL + "/token",
			},
		},
		srv.URL+"/profile",
		func(body []byte) (*auth.Profile, error) {
			var g struct {
				ID      string `json:"id"`
				Name    string `json:"name"`
				Email   string `json:"email"`
				Picture string `json:"picture"`
			}
			if err := json.Unmarshal(body, &g); err != nil {
				return nil, err
			}
			return &auth.Profile{SubjectID: g.ID, Name: g.Name, Email: g.Email, AvatarURL: g.Picture}, nil
		},
	)
}

func TestOAuthLoginRedirect(t *testing.T) {
	env := newTestEnv(t)
	srv := stubProviderServer(t, nil)
	router := newOAuthTestRouter(t, env, stubGoogleProvider(srv))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/oauth/google", nil))

	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)

	// The consent redirect carries the state that was set in the cookie.
	var state string
	for _, c := range rr.Result().Cookies() {
		if c.Name == "oauth_state" {
			state = c.Value
			assert.True(t, c.HttpOnly)
		}
	}
	require.NotEmpty(t, state, "state cookie must be set")

	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, state, loc.Query().Get("state"))
	assert.Equal(t, "client-id", loc.Query().Get("client_id"))
}

func TestOAuthLoginUnknownProvider(t *testing.T) {
	env := newTestEnv(t)
	srv := stubProviderServer(t, nil)
	router := newOAuthTestRouter(t, env, stubGoogleProvider(srv))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/oauth/github", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestOAuthCallbackSuccess(t *testing.T) {
	env := newTestEnv(t)
	srv := stubProviderServer(t, map[string]string{
		"id":      "google-sub-1",
		"name":    "Alice",
		"email":   "alice@example.com",
		"picture": "https://img.example/a.png",
	})
	router := newOAuthTestRouter(t, env, stubGoogleProvider(srv))

	req := httptest.NewRequest(http.MethodGet, "/oauth/google/callback?code=good-code&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "s1"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusSeeOther, rr.Code, rr.Body.String())

	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, testSuccessURL, loc.Scheme+"://"+loc.Host+loc.Path)
	assert.NotEmpty(t, loc.Query().Get("token"))
	userID := loc.Query().Get("userId")
	require.NotEmpty(t, userID)

	// The redirect's token really belongs to the created user.
	claims, err := env.tokens.Verify(loc.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, userID, claims.Subject)
	assert.False(t, claims.IsAdmin)

	// Second login through the same subject reuses the account.
	req = httptest.NewRequest(http.MethodGet, "/oauth/google/callback?code=good-code&state=s2", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "s2"})
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	loc, err = url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, userID, loc.Query().Get("userId"))
}

func TestOAuthCallbackFailuresRedirect(t *testing.T) {
	// Every callback failure surfaces the same way: a redirect to the
	// failure URL with error=OAuthLoginFailed, never an error body.
	env := newTestEnv(t)
	srv := stubProviderServer(t, map[string]string{"id": "google-sub-1", "name": "Alice"})
	router := newOAuthTestRouter(t, env, stubGoogleProvider(srv))

	tests := []struct {
		name   string
		target string
		cookie string
	}{
		{"missing state cookie", "/oauth/google/callback?code=good-code&state=s1", ""},
		{"state mismatch", "/oauth/google/callback?code=good-code&state=attacker", "s1"},
		{"provider denied", "/oauth/google/callback?error=access_denied&state=s1", "s1"},
		{"missing code", "/oauth/google/callback?state=s1", "s1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "oauth_state", Value: tt.cookie})
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusSeeOther, rr.Code)
			assert.Equal(t, testFailureURL+"?error=OAuthLoginFailed", rr.Header().Get("Location"))
		})
	}
}

func TestOAuthCallbackExchangeFailureRedirects(t *testing.T) {
	env := newTestEnv(t)

	// A token endpoint that always refuses.
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	router := newOAuthTestRouter(t, env, stubGoogleProvider(srv))

	req := httptest.NewRequest(http.MethodGet, "/oauth/google/callback?code=bad-code&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "s1"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, testFailureURL+"?error=OAuthLoginFailed", rr.Header().Get("Location"))
}
