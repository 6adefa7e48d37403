package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/visadesk/internal/logger"
	"github.com/yoockh/visadesk/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAdminEngine() *gin.Engine {
	r := gin.New()
	r.Use(CORS())
	admin := r.Group("/api/admin", BasicAuth(utils.Credential{Username: "admin", Password: "pw"}))
	admin.GET("/records", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(AdminUserKey))
	})
	return r
}

func TestBasicAuth(t *testing.T) {
	r := newAdminEngine()

	cases := []struct {
		name       string
		user, pass string
		setAuth    bool
		want       int
	}{
		{"no header", "", "", false, http.StatusUnauthorized},
		{"wrong password", "admin", "nope", true, http.StatusUnauthorized},
		{"wrong user", "root", "pw", true, http.StatusUnauthorized},
		{"ok", "admin", "pw", true, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/records", nil)
			if tc.setAuth {
				req.SetBasicAuth(tc.user, tc.pass)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusUnauthorized {
				assert.Equal(t, `Basic realm="Secure Area"`, w.Header().Get("WWW-Authenticate"))
				assert.Contains(t, w.Body.String(), `"success":false`)
			} else {
				assert.Equal(t, "admin", w.Body.String())
			}
		})
	}
}

func TestCORS_PreflightBypassesAuth(t *testing.T) {
	r := newAdminEngine()

	req := httptest.NewRequest(http.MethodOptions, "/api/admin/records", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCORS_HeaderOnRegularResponses(t *testing.T) {
	r := newAdminEngine()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/records", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogger_PropagatesRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithLevel("info")
	l.SetOutput(&buf)

	r := gin.New()
	r.Use(RequestLogger(l))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, logger.RequestID(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Contains(t, buf.String(), `"request_id":"abc-123"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())
}
