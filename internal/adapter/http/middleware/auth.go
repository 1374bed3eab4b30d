package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/infrastructure/auth"
	"github.com/iho/coinledger/internal/infrastructure/metrics"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware creates an authentication middleware. The verified user is
// stored with domain.ContextWithUser so use cases can enforce ownership.
func AuthMiddleware(verifier TokenVerifier, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				authFailed(w, m, "missing_token", "missing or malformed authorization header")
				return
			}

			claims, err := verifier.Verify(tokenString)
			if err != nil {
				reason := "invalid_token"
				if errors.Is(err, domain.ErrExpiredToken) {
					reason = "expired_token"
				}
				authFailed(w, m, reason, "invalid or expired token")
				return
			}

			if m != nil {
				m.AuthAttempts.WithLabelValues("success").Inc()
			}

			ctx := domain.ContextWithUser(r.Context(), claims.User())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole creates a middleware that checks for a specific role
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := domain.UserFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if role == domain.RoleAdmin && !user.Role.IsAdmin() {
				writeJSONError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// QueryTokenAuth lets WebSocket clients pass the token as ?token= because
// browsers cannot set headers on the upgrade request. A missing token passes
// through anonymously; a bad one is rejected.
func QueryTokenAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				tokenString = r.URL.Query().Get("token")
			}
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.Verify(tokenString)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.ContextWithUser(r.Context(), claims.User())))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

func authFailed(w http.ResponseWriter, m *metrics.Metrics, reason, message string) {
	if m != nil {
		m.AuthAttempts.WithLabelValues("failure").Inc()
		m.AuthFailures.WithLabelValues(reason).Inc()
	}
	writeJSONError(w, http.StatusUnauthorized, message)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
