package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ajharbinger/churnguard/internal/errors"
)

// Double-submit names for the dashboard form
const (
	CSRFCookieName = "csrf_token"
	CSRFFieldName  = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"
)

const csrfCookieMaxAge = 12 * 60 * 60

// EnsureCSRFToken returns the request's CSRF cookie, issuing a fresh one when absent
func EnsureCSRFToken(c *gin.Context, secure bool) string {
	if token, err := c.Cookie(CSRFCookieName); err == nil && token != "" {
		return token
	}
	token := uuid.NewString()
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CSRFCookieName, token, csrfCookieMaxAge, "/", "", secure, true)
	return token
}

// CSRFMiddleware validates the double-submitted token on state-changing requests.
// The token may arrive in the form field or the X-CSRF-Token header.
func CSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		csrfCookie, err := c.Cookie(CSRFCookieName)
		if err != nil || csrfCookie == "" {
			abortWithError(c, errors.Forbidden("CSRF token required in cookie", err))
			return
		}

		submitted := c.GetHeader(CSRFHeaderName)
		if submitted == "" {
			submitted = c.PostForm(CSRFFieldName)
		}
		if submitted == "" {
			abortWithError(c, errors.Forbidden("CSRF token required in form or X-CSRF-Token header", nil))
			return
		}

		if subtle.ConstantTimeCompare([]byte(csrfCookie), []byte(submitted)) != 1 {
			abortWithError(c, errors.Forbidden("CSRF token mismatch", nil))
			return
		}

		c.Next()
	}
}
