package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/visadesk/internal/utils"
)

// Envelope is the JSON shape of every API response.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Code    utils.Code      `json:"code,omitempty"`
	Details map[string]bool `json:"details,omitempty"`
	Data    any             `json:"data,omitempty"`
}

func writeOK(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: msg, Data: data})
}

func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)
	_ = c.Error(err)

	var ae *utils.AppError
	if errors.As(err, &ae) {
		msg := ae.Message
		if msg == "" {
			msg = http.StatusText(status)
		}
		c.JSON(status, Envelope{
			Success: false,
			Message: msg,
			Code:    ae.Code,
			Details: ae.Details,
		})
		return
	}

	c.JSON(status, Envelope{
		Success: false,
		Code:    utils.CodeInternal,
		Message: http.StatusText(status),
	})
}

// requestOrigin is scheme://host as the client saw it, honoring the usual
// reverse proxy headers.
func requestOrigin(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if p := c.GetHeader("X-Forwarded-Proto"); p != "" {
		scheme = strings.TrimSpace(strings.Split(p, ",")[0])
	}

	host := c.Request.Host
	if h := c.GetHeader("X-Forwarded-Host"); h != "" {
		host = strings.TrimSpace(strings.Split(h, ",")[0])
	}
	return scheme + "://" + host
}
