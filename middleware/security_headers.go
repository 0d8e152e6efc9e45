// middleware/security_headers.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/scoutlinkhq/scoutlink_backend/security"
)

// SecurityConfig controls the Content-Security-Policy header
type SecurityConfig struct {
	AllowedDomains []string
	AllowInlineJS  bool
	AllowEval      bool
}

// SecurityHeadersWithConfig sets the standard hardening headers on every response
func SecurityHeadersWithConfig(config SecurityConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scriptSrc := []string{"'self'"}
			if config.AllowInlineJS {
				scriptSrc = append(scriptSrc, "'unsafe-inline'")
			}
			if config.AllowEval {
				scriptSrc = append(scriptSrc, "'unsafe-eval'")
			}
			scriptSrc = append(scriptSrc, config.AllowedDomains...)

			csp := "default-src 'self' " + strings.Join(config.AllowedDomains, " ") +
				"; script-src " + strings.Join(scriptSrc, " ") +
				"; img-src 'self' data: blob: " + strings.Join(config.AllowedDomains, " ") +
				"; media-src 'self' blob: " + strings.Join(config.AllowedDomains, " ")

			h := c.Response().Header()
			h.Set("Content-Security-Policy", csp)
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "geolocation=(), microphone=()")

			return next(c)
		}
	}
}

// ValidateRequestContentType rejects mutating requests that carry an
// unexpected Content-Type.
func ValidateRequestContentType() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			method := c.Request().Method
			if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch {
				return next(c)
			}

			contentType := c.Request().Header.Get("Content-Type")
			if contentType == "" {
				return next(c)
			}
			// Strip parameters like the multipart boundary or charset
			if idx := strings.Index(contentType, ";"); idx > 0 {
				contentType = contentType[:idx]
			}
			contentType = strings.TrimSpace(contentType)

			if !security.ValidateContentType(contentType) {
				return echo.NewHTTPError(http.StatusUnsupportedMediaType, "Unsupported content type")
			}
			return next(c)
		}
	}
}
