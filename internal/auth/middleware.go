package auth

import (
	"context"
	"net/http"
	"strings"
)

// Principal is the identity resolved from a verified bearer token. It is
// all downstream handlers ever see of the token.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// contextKey is unexported so only this package can place or read the
// principal in a request context — other packages can't collide with or
// shadow the key.
type contextKey string

const principalKey contextKey = "principal"

// PrincipalFromContext retrieves the authenticated principal.
// Returns (zero, false) when the request is anonymous.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok && p.UserID != ""
}

// WithPrincipal returns a context carrying the given principal.
// Exported for handler tests that bypass the middleware.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// RequireAuth enforces authentication on protected routes.
//
// The token comes from the Authorization header, either raw or with the
// conventional "Bearer " prefix — clients have historically sent both and
// both must keep working. Missing and invalid tokens are each rejected
// with 401; the response messages match the contract clients parse today.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromHeader(r)
			if raw == "" {
				writeGateError(w, http.StatusUnauthorized, "Access Denied, No Token Provided")
				return
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				writeGateError(w, http.StatusUnauthorized, "Invalid Token")
				return
			}

			ctx := WithPrincipal(r.Context(), Principal{UserID: claims.Subject, IsAdmin: claims.IsAdmin})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin enforces the admin policy: the token must verify AND carry
// the admin flag.
//
// STATUS CODES:
// A missing token is 401, an invalid token is 400, and a valid token
// belonging to a non-admin is 403. The 400-for-invalid differs from
// RequireAuth's 401 — that asymmetry is a wire contract existing clients
// branch on, so it stays.
func RequireAdmin(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromHeader(r)
			if raw == "" {
				writeGateError(w, http.StatusUnauthorized, "Access denied, no token provided")
				return
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				writeGateError(w, http.StatusBadRequest, "Invalid token")
				return
			}

			if !claims.IsAdmin {
				writeGateError(w, http.StatusForbidden, "Access denied, admin only")
				return
			}

			ctx := WithPrincipal(r.Context(), Principal{UserID: claims.Subject, IsAdmin: true})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves the principal when a valid token is present but
// never blocks the request. Used on routes like /register where an
// anonymous caller is fine but an admin caller unlocks more (minting
// another admin).
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := tokenFromHeader(r); raw != "" {
				if claims, err := tokens.Verify(raw); err == nil {
					ctx := WithPrincipal(r.Context(), Principal{UserID: claims.Subject, IsAdmin: claims.IsAdmin})
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// tokenFromHeader extracts the bearer token from the Authorization header,
// tolerating the "Bearer " prefix.
func tokenFromHeader(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return header
}

// writeGateError emits the gate's fixed JSON rejection shape. The gates
// never touch stored state — rejecting a request has no side effects.
func writeGateError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"message":"` + message + `"}`))
}
