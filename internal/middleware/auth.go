package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/model"
	"github.com/taskhive/taskhive/internal/repository"
)

// IdentityStore loads user records for authenticated subjects.
type IdentityStore interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// IdentityCache is an optional read-through cache in front of IdentityStore.
type IdentityCache interface {
	GetIdentity(ctx context.Context, userID string) (*model.Identity, error)
	SetIdentity(ctx context.Context, id *model.Identity) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Store  IdentityStore
	Cache  IdentityCache // may be nil
	Secret []byte
}

// Auth returns a middleware that authenticates API requests.
// It verifies the bearer token from the Authorization header, resolves
// the subject to a stored user, and injects the identity into the
// request context. A token whose subject no longer exists in the store
// is treated exactly like an invalid token.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			userID, err := auth.ParseToken(token, cfg.Secret)
			if err != nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			// Check cache first
			if cfg.Cache != nil {
				if identity, _ := cfg.Cache.GetIdentity(r.Context(), userID); identity != nil {
					ctx := auth.ContextWithIdentity(r.Context(), identity)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			user, err := cfg.Store.GetUserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					// User deleted after the token was issued
					cfg.Logger.Warn("authentication failed",
						slog.String("reason", "unknown_subject"),
						slog.String("user_id", userID),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeAuthError(w)
					return
				}
				cfg.Logger.Error("database error during auth",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			identity := &model.Identity{
				UserID:   user.ID,
				Username: user.Username,
				Tier:     user.Tier,
			}

			if cfg.Cache != nil {
				_ = cfg.Cache.SetIdentity(r.Context(), identity)
			}

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthenticated","message":"Invalid or missing access token"}`))
}
