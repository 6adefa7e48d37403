package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yoockh/visadesk/internal/api/handlers"
	"github.com/yoockh/visadesk/internal/api/middleware"
	"github.com/yoockh/visadesk/internal/utils"
)

type Deps struct {
	Visa  *handlers.VisaHandler
	Image *handlers.ImageHandler
	Admin *handlers.AdminHandler

	AdminCredential utils.Credential
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.GET("/api/evisa", d.Visa.Lookup)
	r.POST("/api/evisa", d.Visa.Intake)
	r.GET("/images/*key", d.Image.Get)

	// Admin (basic auth)
	auth := middleware.BasicAuth(d.AdminCredential)

	admin := r.Group("/api/admin", auth)
	admin.GET("/records", d.Admin.Records)
	admin.POST("/records", d.Admin.Create)
	admin.GET("/records/:id/audit", d.Admin.Audit)
	admin.POST("/upload", d.Admin.Upload)

	r.GET("/admin", auth, d.Admin.Page)
}
