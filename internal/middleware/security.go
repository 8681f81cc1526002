package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/churnguard/internal/errors"
	"github.com/ajharbinger/churnguard/pkg/config"
)

// SecurityHeadersMiddleware adds security headers to all responses
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevent clickjacking attacks
		c.Header("X-Frame-Options", "DENY")

		// Prevent MIME-type confusion attacks
		c.Header("X-Content-Type-Options", "nosniff")

		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// The dashboard ships one inline stylesheet and posts back to itself; no scripts
		csp := "default-src 'none'; " +
			"script-src 'none'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"img-src 'self' data:; " +
			"connect-src 'self'; " +
			"font-src 'none'; " +
			"object-src 'none'; " +
			"media-src 'none'; " +
			"frame-src 'none'; " +
			"frame-ancestors 'none'; " +
			"base-uri 'none'; " +
			"form-action 'self'"
		c.Header("Content-Security-Policy", csp)

		// Assessments are per-request; never cache them
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")

		c.Header("Server", "")

		c.Next()
	}
}

var developmentOrigins = []string{
	"http://localhost:3000",
	"http://localhost:3001",
	"http://localhost:8080",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:3001",
	"http://127.0.0.1:8080",
}

// CORSMiddleware handles Cross-Origin Resource Sharing with environment-based configuration
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	allowedOrigins := cfg.GetAllowedOrigins()
	if cfg.IsDevelopment() {
		allowedOrigins = append(append([]string{}, developmentOrigins...), allowedOrigins...)
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		for _, allowedOrigin := range allowedOrigins {
			if origin != "" && origin == allowedOrigin {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				break
			}
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-CSRF-Token, X-Request-ID")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400") // 24 hours

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

var allowedContentTypes = []string{
	"application/json",
	"application/x-www-form-urlencoded",
	"multipart/form-data",
}

var suspiciousUserAgents = []string{
	"sqlmap",
	"nikto",
	"nmap",
	"masscan",
	"<script",
	"javascript:",
}

// InputValidationMiddleware caps the body size, checks POST content types and blocks scanner user agents
func InputValidationMiddleware(maxRequestSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestSize)

		if c.Request.Method == http.MethodPost || c.Request.Method == http.MethodPut {
			contentType := c.GetHeader("Content-Type")
			if contentType == "" {
				abortWithError(c, errors.InvalidInput("Content-Type header is required", nil))
				return
			}

			isValidType := false
			for _, allowedType := range allowedContentTypes {
				if strings.HasPrefix(contentType, allowedType) {
					isValidType = true
					break
				}
			}

			if !isValidType {
				c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
					"error":         errors.InvalidInput("Unsupported content type", nil),
					"allowed_types": allowedContentTypes,
				})
				return
			}
		}

		userAgentLower := strings.ToLower(c.GetHeader("User-Agent"))
		for _, pattern := range suspiciousUserAgents {
			if strings.Contains(userAgentLower, pattern) {
				abortWithError(c, errors.Forbidden("Request blocked for security reasons", nil))
				return
			}
		}

		c.Next()
	}
}

// RateLimiter is a per-client sliding window limiter. Clients idle for a
// whole window are dropped on the next sweep.
type RateLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	clients   map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter allows limit requests per client within window
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Allow records a request from key and reports whether it is within the limit
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastSweep) > r.window {
		r.sweep(now)
	}

	timestamps := r.clients[key]
	valid := timestamps[:0]
	for _, ts := range timestamps {
		if now.Sub(ts) <= r.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= r.limit {
		r.clients[key] = valid
		return false
	}
	r.clients[key] = append(valid, now)
	return true
}

// sweep drops clients whose newest request is older than the window. Caller holds mu.
func (r *RateLimiter) sweep(now time.Time) {
	for key, timestamps := range r.clients {
		if len(timestamps) == 0 || now.Sub(timestamps[len(timestamps)-1]) > r.window {
			delete(r.clients, key)
		}
	}
	r.lastSweep = now
}

// Middleware rejects clients over the limit with 429
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(r.window.Seconds()))
	return func(c *gin.Context) {
		if !r.Allow(c.ClientIP()) {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       errors.RateLimited("Rate limit exceeded", nil),
				"retry_after": retryAfter,
			})
			return
		}
		c.Next()
	}
}

// RateLimitingMiddleware limits each client IP to perMinute requests per minute
func RateLimitingMiddleware(perMinute int) gin.HandlerFunc {
	return NewRateLimiter(perMinute, time.Minute).Middleware()
}

func abortWithError(c *gin.Context, appErr *errors.AppError) {
	c.AbortWithStatusJSON(appErr.StatusCode(), gin.H{"error": appErr})
}
