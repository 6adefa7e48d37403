package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/visadesk/internal/utils"
)

const (
	AdminUserKey = "admin_user"

	basicRealm = `Basic realm="Secure Area"`
)

type apiError struct {
	Success bool       `json:"success"`
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

// BasicAuth gates admin routes behind a single credential. Preflight
// requests pass through so CORS can answer them.
func BasicAuth(cred utils.Credential) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		user, pass, ok := c.Request.BasicAuth()
		if !ok || cred.Verify(user, pass) != nil {
			c.Header("WWW-Authenticate", basicRealm)
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Success: false,
				Code:    utils.CodeUnauthorized,
				Message: "Authentication required",
			})
			return
		}

		c.Set(AdminUserKey, user)
		c.Next()
	}
}
