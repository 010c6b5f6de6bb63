package middleware

import (
	"net/http"
	"sync"
	"time"

	"wuauser/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter holds one token bucket per client IP.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	perMin   int
}

// NewRateLimiter allows perMin requests a minute per IP with a burst of the same size.
func NewRateLimiter(perMin int) *RateLimiter {
	return &RateLimiter{limiters: make(map[string]*rate.Limiter), perMin: perMin}
}

// getLimiter returns the rate limiter for a given IP, creating one if it doesn't exist.
func (s *RateLimiter) getLimiter(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMin)), s.perMin)
		s.limiters[ip] = limiter
	}
	return limiter
}

// Middleware limits requests per IP address. A non-positive limit disables it.
func (s *RateLimiter) Middleware(metrics *utils.Metrics, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.perMin <= 0 {
			c.Next()
			return
		}
		ip := getClientIP(c)
		if !s.getLimiter(ip).Allow() {
			logger.Warn("Rate limit exceeded", zap.String("ip", ip))
			if metrics != nil {
				metrics.RateLimitDeniedTotal.Inc()
			}
			utils.JSONError(c, http.StatusTooManyRequests, "Rate limit exceeded. Try again later.", "")
			return
		}
		c.Next()
	}
}
