package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/expentra/expentra/internal/auth"
	"github.com/expentra/expentra/internal/cache"
	"github.com/expentra/expentra/internal/metrics"
	"github.com/expentra/expentra/internal/model"
	"github.com/expentra/expentra/internal/repository"
)

// Detail messages for authentication failures.
const (
	detailNoCredentials = "Authentication credentials were not provided."
	detailInvalidToken  = "Invalid token."
	detailInactiveUser  = "User inactive or deleted."
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger     *slog.Logger
	Repository *repository.Repository
	Cache      *cache.Cache
	Metrics    metrics.Recorder
}

// Auth returns a middleware that authenticates API requests.
// It extracts the bearer token from the Authorization header,
// verifies it, and injects the auth context into the request.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			defer func() {
				recorder.ObserveAuthDuration(time.Since(startTime))
			}()

			token := extractBearerToken(r)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_credentials"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, detailNoCredentials)
				return
			}

			// Validate token format before touching storage
			parsed, err := auth.ParseToken(token)
			if err != nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_format"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, detailInvalidToken)
				return
			}

			// Check cache first
			cacheKey := auth.QuickHash(token)
			authCtx, _ := cfg.Cache.GetAuthContext(r.Context(), cacheKey)

			if authCtx != nil {
				recorder.IncAuthCacheHit()
				cfg.Logger.Info("authentication successful",
					slog.String("token_id", authCtx.TokenID),
					slog.String("user_id", authCtx.UserID),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Bool("cache_hit", true),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				ctx := auth.ContextWithAuth(r.Context(), authCtx)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			recorder.IncAuthCacheMiss()

			// Skip argon2 for tokens we recently rejected
			if negative, _ := cfg.Cache.IsTokenNegativelyCached(r.Context(), cacheKey); negative {
				writeAuthError(w, detailInvalidToken)
				return
			}

			// Cache miss - lookup by prefix
			tokens, err := cfg.Repository.GetTokensByPrefix(r.Context(), parsed.Prefix)
			if err != nil {
				cfg.Logger.Error("database error during auth",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, detailInvalidToken)
				return
			}

			// Verify against each candidate (handles prefix collisions)
			var matched *model.AccessToken
			for _, t := range tokens {
				match, err := auth.VerifyPassword(token, t.TokenHash)
				if err != nil {
					continue
				}
				if match {
					matched = t
					break
				}
			}

			if matched == nil {
				_ = cfg.Cache.SetTokenNegativeCache(r.Context(), cacheKey)
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, detailInvalidToken)
				return
			}

			user, err := cfg.Repository.GetUserByID(r.Context(), matched.UserID)
			if err != nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "unknown_user"),
					slog.String("token_id", matched.ID),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, detailInvalidToken)
				return
			}
			if !user.IsActive {
				writeAuthError(w, detailInactiveUser)
				return
			}

			authCtx = &model.AuthContext{
				TokenID:     matched.ID,
				UserID:      user.ID,
				Email:       user.Email,
				Username:    user.Username,
				FirstName:   user.FirstName,
				LastName:    user.LastName,
				IsStaff:     user.IsStaff,
				IsSuperuser: user.IsSuperuser,
			}

			// Cache the result
			_ = cfg.Cache.SetAuthContext(r.Context(), cacheKey, authCtx)

			// Update last_used_at asynchronously
			go func() {
				_ = cfg.Repository.UpdateTokenLastUsed(r.Context(), matched.ID)
			}()

			cfg.Logger.Info("authentication successful",
				slog.String("token_id", authCtx.TokenID),
				slog.String("user_id", authCtx.UserID),
				slog.String("ip", r.RemoteAddr),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.Bool("cache_hit", false),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts the access token from the
// Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// writeAuthError writes a 403 response with the given detail message.
func writeAuthError(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"detail":"` + detail + `"}`))
}
