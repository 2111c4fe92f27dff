package middleware

import (
	"strconv"
	"time"

	redisStore "nps-merchant-gateway/internal/adapter/storage/redis"
	"nps-merchant-gateway/pkg/apperror"
	"nps-merchant-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimitRule defines a rate limit for an endpoint group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// Rate limit groups.
const (
	GroupProxy    = "proxy"
	GroupCallback = "callback"
	GroupLogin    = "admin_login"
	GroupAdmin    = "admin"
)

// DefaultRateLimitRules returns the per-client limits for each group.
func DefaultRateLimitRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		GroupProxy:    {Limit: 120, Window: time.Minute},
		GroupCallback: {Limit: 300, Window: time.Minute},
		GroupLogin:    {Limit: 10, Window: time.Minute},
		GroupAdmin:    {Limit: 60, Window: time.Minute},
	}
}

// RateLimiter limits each client IP within group. A Redis failure lets the
// request through.
func RateLimiter(store *redisStore.RateLimitStore, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := group + ":" + c.ClientIP()

		result, err := store.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit check failed, allowing request")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if !result.Allowed {
			retryAfter := result.ResetAt - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.Error(c, apperror.ErrRateLimitExceeded())
			c.Abort()
			return
		}

		c.Next()
	}
}
