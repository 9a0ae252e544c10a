package middlewares

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

var (
	limiters = make(map[string]*rate.Limiter)
	mu       sync.Mutex
)

func getLimiter(key string, r rate.Limit, b int) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	limiter, exists := limiters[key]
	if !exists {
		limiter = rate.NewLimiter(r, b)
		limiters[key] = limiter
	}
	return limiter
}

// ClientKey buckets requests per route in debug mode and per client IP
// otherwise.
func ClientKey(c *gin.Context) string {
	if gin.Mode() == gin.DebugMode {
		return c.FullPath()
	}
	return c.ClientIP()
}

// RateLimitMiddleware allows r requests per second with bursts of b for each
// key. name separates the buckets of middlewares sharing a key function.
func RateLimitMiddleware(name string, r rate.Limit, b int, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := name + "|" + keyFunc(c)
		limiter := getLimiter(key, r, b)

		if !limiter.Allow() {
			log.Warn().Str("limiter", name).Str("path", c.FullPath()).Msg("Rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please slow down :("})
			return
		}

		c.Next()
	}
}
