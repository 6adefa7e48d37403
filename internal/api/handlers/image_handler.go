package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/visadesk/internal/services"
)

const imageCacheControl = "public, max-age=31536000"

type ImageHandler struct {
	svc services.ImageService
}

func NewImageHandler(svc services.ImageService) *ImageHandler {
	return &ImageHandler{svc: svc}
}

// Get serves /images/*key straight from the object store.
func (h *ImageHandler) Get(c *gin.Context) {
	key := c.Param("key")
	if dec, err := url.PathUnescape(key); err == nil {
		key = dec
	}

	obj, err := h.svc.Fetch(c.Request.Context(), key)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Cache-Control", imageCacheControl)
	c.Data(http.StatusOK, obj.ContentType, obj.Data)
}
