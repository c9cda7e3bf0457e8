package middleware

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter stores rate limiters for each IP
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    b,
	}

	// Clean up old entries every minute
	go rl.cleanupVisitors()

	return rl
}

// GetLimiter returns the rate limiter for the given IP
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// cleanupVisitors removes old entries from the visitors map
func (rl *RateLimiter) cleanupVisitors() {
	for {
		time.Sleep(time.Minute)

		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimitMiddleware creates a rate limiting middleware
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		l := limiter.GetLimiter(ip)

		if !l.Allow() {
			log.Printf("Rate limit exceeded for %s", ip)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Too many requests",
				"message": "Please slow down your requests",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ScrapeCooldownMiddleware throttles the scrape trigger endpoint. Each run
// hammers the target dealer sites with a real browser, so back-to-back runs
// are refused regardless of which client asks.
func ScrapeCooldownMiddleware(cooldown time.Duration) gin.HandlerFunc {
	var (
		lastRun time.Time
		mu      sync.Mutex
	)

	return func(c *gin.Context) {
		mu.Lock()
		defer mu.Unlock()

		if time.Since(lastRun) < cooldown {
			remaining := cooldown - time.Since(lastRun)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Scrape too frequent",
				"message": fmt.Sprintf("Please wait %d minutes before starting another scrape", int(remaining.Minutes())+1),
			})
			c.Abort()
			return
		}

		lastRun = time.Now()
		c.Next()
	}
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevent clickjacking
		c.Header("X-Frame-Options", "DENY")

		// Prevent MIME type sniffing
		c.Header("X-Content-Type-Options", "nosniff")

		// Referrer policy
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// JSON API only, nothing should ever render as a document
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		// Hide server information
		c.Header("Server", "")

		c.Next()
	}
}
