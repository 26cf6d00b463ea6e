package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nexora-hq/nexora/internal/api/response"
	"github.com/nexora-hq/nexora/internal/domain"
	"github.com/nexora-hq/nexora/internal/repository/redis"
	"github.com/nexora-hq/nexora/internal/security"
)

type contextKey string

const actorKey contextKey = "actor"

// AuthMiddleware handles JWT authentication and actor resolution
type AuthMiddleware struct {
	tokens *security.TokenManager
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(tokens *security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate validates the JWT token and stores the resolved actor.
// Every protected route downstream reads its identity, role and workspace
// from the actor; nothing trusts client-supplied workspace values.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.FromError(w, domain.Unauthorized("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.FromError(w, domain.Unauthorized("invalid authorization header format"))
			return
		}

		userID, role, workspaceID, err := m.tokens.Validate(parts[1])
		if err != nil {
			response.FromError(w, domain.Unauthorized("invalid or expired token"))
			return
		}

		actor := domain.Actor{UserID: userID, Role: role, WorkspaceID: workspaceID}
		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetActor gets the authenticated actor from context
func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}

// RateLimitMiddleware handles rate limiting
type RateLimitMiddleware struct {
	rateLimiter *redis.RateLimiter
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(rateLimiter *redis.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{rateLimiter: rateLimiter}
}

// Limit applies per-user rate limiting
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := GetActor(r.Context())
		if !ok {
			response.FromError(w, domain.Unauthorized("unauthorized"))
			return
		}

		allowed, remaining, resetTime, err := m.rateLimiter.Allow(r.Context(), actor.UserID.Hex())
		if err != nil {
			// A broken limiter must not take the API down
			log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", resetTime.Format(time.RFC3339))

		if !allowed {
			response.FromError(w, domain.RateLimited("rate limit exceeded"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
