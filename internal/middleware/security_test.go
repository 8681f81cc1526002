package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajharbinger/churnguard/internal/logger"
	"github.com/ajharbinger/churnguard/internal/metrics"
	"github.com/ajharbinger/churnguard/pkg/config"
)

func TestSecurityHeadersMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	expectedHeaders := map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"X-XSS-Protection":       "1; mode=block",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
		"Cache-Control":          "no-store, no-cache, must-revalidate, proxy-revalidate",
		"Pragma":                 "no-cache",
		"Expires":                "0",
	}

	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	for header, expectedValue := range expectedHeaders {
		assert.Equal(t, expectedValue, w.Header().Get(header), "Header %s should be %s", header, expectedValue)
	}

	csp := w.Header().Get("Content-Security-Policy")
	for _, directive := range []string{"default-src 'none'", "script-src 'none'", "style-src 'self' 'unsafe-inline'", "form-action 'self'"} {
		assert.Contains(t, csp, directive, "CSP should contain %s", directive)
	}
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		environment    string
		allowedOrigins string
		origin         string
		shouldAllow    bool
	}{
		{
			name:        "Development - localhost allowed",
			environment: "development",
			origin:      "http://localhost:3000",
			shouldAllow: true,
		},
		{
			name:        "Development - localhost 8080 allowed",
			environment: "development",
			origin:      "http://localhost:8080",
			shouldAllow: true,
		},
		{
			name:        "Development - unknown origin blocked",
			environment: "development",
			origin:      "https://malicious-site.com",
			shouldAllow: false,
		},
		{
			name:           "Production - configured origin allowed",
			environment:    "production",
			allowedOrigins: "https://crm.example.com, https://ops.example.com",
			origin:         "https://ops.example.com",
			shouldAllow:    true,
		},
		{
			name:        "Production - localhost blocked",
			environment: "production",
			origin:      "http://localhost:3000",
			shouldAllow: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Environment:    tt.environment,
				AllowedOrigins: tt.allowedOrigins,
			}

			router := gin.New()
			router.Use(CORSMiddleware(cfg))
			router.GET("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "test"})
			})

			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if tt.shouldAllow {
				assert.Equal(t, tt.origin, w.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}

			assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
			assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-CSRF-Token")
			assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestCORSMiddleware_PreflightRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Environment: "development",
	}

	router := gin.New()
	router.Use(CORSMiddleware(cfg))
	router.POST("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	req := httptest.NewRequest("OPTIONS", "/test", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestInputValidationMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		method         string
		contentType    string
		userAgent      string
		body           string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Valid JSON POST",
			method:         "POST",
			contentType:    "application/json",
			userAgent:      "Mozilla/5.0",
			body:           `{}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Valid form POST",
			method:         "POST",
			contentType:    "application/x-www-form-urlencoded",
			body:           "age=40",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "POST without Content-Type",
			method:         "POST",
			userAgent:      "Mozilla/5.0",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Content-Type header is required",
		},
		{
			name:           "POST with invalid Content-Type",
			method:         "POST",
			contentType:    "text/html",
			userAgent:      "Mozilla/5.0",
			expectedStatus: http.StatusUnsupportedMediaType,
			expectedError:  "Unsupported content type",
		},
		{
			name:           "GET without User-Agent",
			method:         "GET",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Suspicious User-Agent (sqlmap)",
			method:         "GET",
			userAgent:      "sqlmap/1.4.9",
			expectedStatus: http.StatusForbidden,
			expectedError:  "Request blocked for security reasons",
		},
		{
			name:           "Suspicious User-Agent (script tag)",
			method:         "GET",
			userAgent:      "Mozilla <script>alert('xss')</script>",
			expectedStatus: http.StatusForbidden,
			expectedError:  "Request blocked for security reasons",
		},
		{
			name:           "Body over limit",
			method:         "POST",
			contentType:    "application/json",
			body:           `{"padding":"` + strings.Repeat("x", 128) + `"}`,
			expectedStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(InputValidationMiddleware(64))
			router.Any("/test", func(c *gin.Context) {
				var payload map[string]interface{}
				if c.Request.Method == http.MethodPost && strings.HasPrefix(c.ContentType(), "application/json") {
					if err := c.ShouldBindJSON(&payload); err != nil {
						c.Status(http.StatusRequestEntityTooLarge)
						return
					}
				}
				c.JSON(http.StatusOK, gin.H{"message": "test"})
			})

			req := httptest.NewRequest(tt.method, "/test", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			if tt.userAgent != "" {
				req.Header.Set("User-Agent", tt.userAgent)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, w.Body.String(), tt.expectedError)
			}
		})
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(3, time.Minute)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("10.0.0.1"), "request %d", i)
	}
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"), "limits are per client")

	now = now.Add(61 * time.Second)
	assert.True(t, limiter.Allow("10.0.0.1"), "window slides")
}

func TestRateLimiter_DropsIdleClients(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(3, time.Minute)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		assert.True(t, limiter.Allow(fmt.Sprintf("10.0.0.%d", i)))
	}
	assert.Len(t, limiter.clients, 100)

	now = now.Add(30 * time.Second)
	assert.True(t, limiter.Allow("10.0.1.1"))
	assert.Len(t, limiter.clients, 101, "clients inside the window are kept")

	now = now.Add(45 * time.Second)
	assert.True(t, limiter.Allow("10.0.1.2"))
	assert.Len(t, limiter.clients, 2, "only the two recent clients survive the sweep")
	assert.Contains(t, limiter.clients, "10.0.1.1")
	assert.Contains(t, limiter.clients, "10.0.1.2")
}

func TestRateLimiter_Concurrent(t *testing.T) {
	limiter := NewRateLimiter(50, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("10.0.0.1") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestRateLimitingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RateLimitingMiddleware(5))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	for i := 0; i < 6; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if i < 5 {
			assert.Equal(t, http.StatusOK, w.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, w.Code)
			assert.Equal(t, "60", w.Header().Get("Retry-After"))
			assert.Contains(t, w.Body.String(), "RATE_LIMITED")
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
	generated := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	assert.Equal(t, generated, w.Body.String())

	inbound := uuid.NewString()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(RequestIDHeader, inbound)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, inbound, w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Header().Get(RequestIDHeader))
}

func TestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, logger.Config{Level: "info", Format: "json"})

	router := gin.New()
	router.Use(RequestIDMiddleware(), LoggingMiddleware(log))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "missing"})
	})

	req := httptest.NewRequest("GET", "/test?variant=mobile", nil)
	req.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "/test?variant=mobile", record["path"])
	assert.Equal(t, float64(http.StatusNotFound), record["status"])
	assert.Equal(t, "test-agent", record["user_agent"])
	assert.Equal(t, w.Header().Get(RequestIDHeader), record["request_id"])
}

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.New()

	router := gin.New()
	router.Use(MetricsMiddleware(m))
	router.GET("/rulesets/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, path := range []string{"/rulesets/standard", "/rulesets/mobile", "/nowhere"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	}

	series, err := testutil.GatherAndCount(m.Registry(), "churnguard_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series)
}
