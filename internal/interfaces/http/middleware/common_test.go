package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// serveCORS runs one request through a router wrapped in the given CORS
// middleware and returns the recorder.
func serveCORS(handler gin.HandlerFunc, method, origin string) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(handler)
	router.GET("/invoices", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(method, "/invoices", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS_DefaultRejectsCrossOrigin(t *testing.T) {
	t.Run("cross-origin request gets no CORS headers", func(t *testing.T) {
		w := serveCORS(CORS(), "GET", "https://rogue.example")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("same-origin request passes through", func(t *testing.T) {
		w := serveCORS(CORS(), "GET", "")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("preflight still answered with 204", func(t *testing.T) {
		w := serveCORS(CORS(), "OPTIONS", "https://rogue.example")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSWithConfig(t *testing.T) {
	whitelist := CORSConfig{
		AllowOrigins:     []string{"http://localhost:5173", "https://portal.franchise.example"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
	}

	t.Run("whitelisted origins are echoed back", func(t *testing.T) {
		for _, origin := range whitelist.AllowOrigins {
			w := serveCORS(CORSWithConfig(whitelist), "GET", origin)

			assert.Equal(t, origin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		}
	})

	t.Run("unknown origin gets no CORS headers", func(t *testing.T) {
		w := serveCORS(CORSWithConfig(whitelist), "GET", "https://rogue.example")

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("wildcard allows any origin without credentials", func(t *testing.T) {
		cfg := CORSConfig{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{"GET"},
			AllowHeaders:     []string{"Content-Type"},
			AllowCredentials: true,
		}
		w := serveCORS(CORSWithConfig(cfg), "GET", "https://portal.franchise.example")

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		// Browsers reject credentials combined with a wildcard origin.
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("max age is seconds as a decimal string", func(t *testing.T) {
		cfg := CORSConfig{
			AllowOrigins: []string{"http://localhost:5173"},
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Content-Type"},
			MaxAge:       12 * time.Hour,
		}
		w := serveCORS(CORSWithConfig(cfg), "GET", "http://localhost:5173")

		assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("expose headers are joined", func(t *testing.T) {
		cfg := CORSConfig{
			AllowOrigins:  []string{"http://localhost:5173"},
			AllowMethods:  []string{"GET"},
			AllowHeaders:  []string{"Content-Type"},
			ExposeHeaders: []string{"X-Request-ID", "X-Custom-Header"},
		}
		w := serveCORS(CORSWithConfig(cfg), "GET", "http://localhost:5173")

		assert.Equal(t, "X-Request-ID, X-Custom-Header", w.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("preflight from allowed origin carries methods and headers", func(t *testing.T) {
		cfg := CORSConfig{
			AllowOrigins: []string{"http://localhost:5173"},
			AllowMethods: []string{"GET", "POST", "PUT"},
			AllowHeaders: []string{"Content-Type", "Authorization"},
		}
		w := serveCORS(CORSWithConfig(cfg), "OPTIONS", "http://localhost:5173")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, PUT", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("preflight from unknown origin gets bare 204", func(t *testing.T) {
		w := serveCORS(CORSWithConfig(whitelist), "OPTIONS", "https://rogue.example")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()

	assert.Empty(t, cfg.AllowOrigins)
	assert.Contains(t, cfg.AllowMethods, "GET")
	assert.Contains(t, cfg.AllowMethods, "POST")
	assert.Contains(t, cfg.AllowHeaders, "Content-Type")
	assert.Contains(t, cfg.AllowHeaders, "X-Actor-ID")
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, 12*time.Hour, cfg.MaxAge)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/invoices", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("X-Request-ID"))
	})

	t.Run("generates an ID when the caller sends none", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/invoices", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())
	})

	t.Run("honors a caller-supplied ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/invoices", nil)
		req.Header.Set("X-Request-ID", "test-request-id")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "test-request-id", w.Header().Get("X-Request-ID"))
		assert.Equal(t, "test-request-id", w.Body.String())
	})
}

func TestGenerateRequestID(t *testing.T) {
	id1 := generateRequestID()
	id2 := generateRequestID()

	assert.NotEqual(t, id1, id2)
	assert.Len(t, id1, 32) // 16 random bytes, hex encoded
}

func serveSecure(cfg SecurityConfig) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(SecureWithConfig(cfg))
	router.GET("/invoices", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/invoices", nil))
	return w
}

func TestSecure_Defaults(t *testing.T) {
	w := serveSecure(DefaultSecurityConfig())

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))

	csp := w.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "default-src 'self'")
	assert.Contains(t, csp, "frame-ancestors 'none'")

	// HSTS stays off until the deployment terminates TLS.
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	permPolicy := w.Header().Get("Permissions-Policy")
	assert.Contains(t, permPolicy, "camera=()")
	assert.Contains(t, permPolicy, "microphone=()")
}

func TestSecureWithConfig(t *testing.T) {
	t.Run("HSTS with all options", func(t *testing.T) {
		w := serveSecure(SecurityConfig{
			HSTSEnabled:           true,
			HSTSMaxAge:            63072000,
			HSTSIncludeSubdomains: true,
			HSTSPreload:           true,
		})

		assert.Equal(t, "max-age=63072000; includeSubDomains; preload",
			w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("HSTS without optional flags", func(t *testing.T) {
		w := serveSecure(SecurityConfig{
			HSTSEnabled: true,
			HSTSMaxAge:  31536000,
		})

		assert.Equal(t, "max-age=31536000", w.Header().Get("Strict-Transport-Security"))
	})

	t.Run("custom CSP and Permissions-Policy directives", func(t *testing.T) {
		w := serveSecure(SecurityConfig{
			CSPEnabled:                 true,
			CSPDirective:               "default-src 'none'; script-src 'self'",
			PermissionsPolicyEnabled:   true,
			PermissionsPolicyDirective: "geolocation=(self), microphone=()",
		})

		assert.Equal(t, "default-src 'none'; script-src 'self'", w.Header().Get("Content-Security-Policy"))
		assert.Equal(t, "geolocation=(self), microphone=()", w.Header().Get("Permissions-Policy"))
	})

	t.Run("optional headers disabled leaves the basics", func(t *testing.T) {
		w := serveSecure(SecurityConfig{})

		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Empty(t, w.Header().Get("Content-Security-Policy"))
		assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
		assert.Empty(t, w.Header().Get("Permissions-Policy"))
	})
}

func TestDefaultSecurityConfig(t *testing.T) {
	cfg := DefaultSecurityConfig()

	assert.False(t, cfg.HSTSEnabled)
	assert.Equal(t, 31536000, cfg.HSTSMaxAge)
	assert.True(t, cfg.HSTSIncludeSubdomains)
	assert.False(t, cfg.HSTSPreload)

	assert.True(t, cfg.CSPEnabled)
	assert.Contains(t, cfg.CSPDirective, "default-src 'self'")

	assert.True(t, cfg.PermissionsPolicyEnabled)
	assert.Contains(t, cfg.PermissionsPolicyDirective, "camera=()")
}
