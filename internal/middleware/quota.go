package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/metrics"
	"github.com/taskhive/taskhive/internal/quota"
	"github.com/taskhive/taskhive/internal/repository"
)

// QuotaConsumer atomically checks and increments a user's request counter.
// The check and the increment must happen as one operation: two concurrent
// calls for the same user must never both succeed on the last remaining slot.
type QuotaConsumer interface {
	ConsumeQuota(ctx context.Context, userID string, freeLimit int64) (int64, error)
}

// QuotaGateConfig holds configuration for the quota gate middleware.
type QuotaGateConfig struct {
	Logger  *slog.Logger
	Store   QuotaConsumer
	Metrics metrics.Recorder
}

// QuotaGate returns a middleware that enforces the per-tier request quota
// around every protected operation. Must be applied after Auth middleware.
//
// On allow, the incremented counter is committed before the wrapped handler
// runs, so a crash mid-request reads as "quota consumed, operation status
// unknown" rather than a free retry. Consumed quota is never rolled back
// when the wrapped operation fails.
func QuotaGate(cfg QuotaGateConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := auth.IdentityFromContext(r.Context())
			if identity == nil {
				// Auth middleware did not run; refuse rather than skip the gate
				writeAuthError(w)
				return
			}

			count, err := cfg.Store.ConsumeQuota(r.Context(), identity.UserID, quota.MaxFreeRequests)
			if err != nil {
				switch {
				case errors.Is(err, repository.ErrQuotaExceeded):
					recorder.IncQuotaDenied()
					cfg.Logger.Warn("quota exceeded",
						slog.String("user_id", identity.UserID),
						slog.String("tier", identity.Tier),
						slog.String("endpoint", r.Method+" "+r.URL.Path),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					setQuotaHeaders(w, 0)
					writeQuotaError(w)
				case errors.Is(err, repository.ErrUserNotFound):
					// Identity vanished between authentication and gating;
					// equivalent to an authentication failure
					cfg.Logger.Warn("gated call for unknown user",
						slog.String("user_id", identity.UserID),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeAuthError(w)
				default:
					cfg.Logger.Error("quota check failed",
						slog.String("error", err.Error()),
						slog.String("user_id", identity.UserID),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeServerError(w)
				}
				return
			}

			recorder.IncQuotaAllowed()

			if remaining, limited := quota.Remaining(identity.Tier, count); limited {
				setQuotaHeaders(w, remaining)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setQuotaHeaders sets quota response headers for limited tiers.
func setQuotaHeaders(w http.ResponseWriter, remaining int64) {
	w.Header().Set("X-Quota-Limit", strconv.FormatInt(quota.MaxFreeRequests, 10))
	w.Header().Set("X-Quota-Remaining", strconv.FormatInt(remaining, 10))
}

// writeQuotaError writes a 403 Forbidden response with an upgrade prompt.
func writeQuotaError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"Free tier limit exceeded","message":"Upgrade to a paid plan."}`))
}

// writeServerError writes a generic 500 response.
func writeServerError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"error":"internal server error"}`))
}
