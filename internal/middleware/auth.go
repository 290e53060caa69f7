package middleware

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"barrierfree-backend/internal/apperrors"
	"barrierfree-backend/internal/services"

	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	userIDKey  contextKey = "user_id"
	sessionKey contextKey = "session"

	// GatewaySecretHeader carries the shared secret of the sign-in gateway
	GatewaySecretHeader = "X-Gateway-Secret"
)

// SessionResolver turns a bearer token into a fresh session
type SessionResolver interface {
	ValidateJWT(token string) (string, error)
	Session(ctx context.Context, userID string) (*services.Session, error)
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// re-read session in the request context
func AuthMiddleware(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(authHeader)
			if !ok {
				respondError(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			ctx, err := authenticate(r.Context(), resolver, token)
			if err != nil {
				switch code := apperrors.CodeOf(err); code {
				case apperrors.CodeUnauthenticated, apperrors.CodeNotFound:
					respondError(w, "Invalid token", http.StatusUnauthorized)
				default:
					respondError(w, "Failed to load session", apperrors.HTTPStatus(code))
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches a session when a valid bearer token is present and
// lets anonymous requests through
func OptionalAuth(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if ok {
				if ctx, err := authenticate(r.Context(), resolver, token); err == nil {
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GatewayMiddleware only admits requests carrying the configured gateway secret
func GatewayMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				log.Error().Msg("Gateway secret is not configured, rejecting sign-in")
				respondError(w, "Sign-in is not configured", http.StatusServiceUnavailable)
				return
			}

			got := r.Header.Get(GatewaySecretHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				respondError(w, "Invalid gateway credentials", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func authenticate(ctx context.Context, resolver SessionResolver, token string) (context.Context, error) {
	userID, err := resolver.ValidateJWT(token)
	if err != nil {
		return ctx, apperrors.Unauthenticated("invalid token")
	}

	session, err := resolver.Session(ctx, userID)
	if err != nil {
		if !apperrors.Is(err, apperrors.CodeNotFound) {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to load session")
		}
		return ctx, err
	}

	ctx = context.WithValue(ctx, userIDKey, session.UserID)
	ctx = context.WithValue(ctx, sessionKey, session)
	return ctx, nil
}

// WithSession returns a context carrying session, used by tests and internal callers
func WithSession(ctx context.Context, session *services.Session) context.Context {
	ctx = context.WithValue(ctx, userIDKey, session.UserID)
	return context.WithValue(ctx, sessionKey, session)
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// GetSession extracts the session from context
func GetSession(ctx context.Context) *services.Session {
	session, _ := ctx.Value(sessionKey).(*services.Session)
	return session
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
