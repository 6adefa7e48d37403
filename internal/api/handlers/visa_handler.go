package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yoockh/visadesk/internal/services"
	"github.com/yoockh/visadesk/internal/utils"
)

type VisaHandler struct {
	svc            services.VisaService
	maxUploadBytes int64
}

func NewVisaHandler(svc services.VisaService, maxUploadBytes int64) *VisaHandler {
	return &VisaHandler{svc: svc, maxUploadBytes: maxUploadBytes}
}

func (h *VisaHandler) Intake(c *gin.Context) {
	p, err := parseIntakeForm(c.Writer, c.Request, h.maxUploadBytes)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "VisaHandler.Intake", "invalid form data", err))
		return
	}

	rec, err := h.svc.Intake(c.Request.Context(), p, requestOrigin(c))
	if err != nil {
		writeError(c, err)
		return
	}

	writeOK(c, "Visa information saved successfully", rec)
}

func (h *VisaHandler) Lookup(c *gin.Context) {
	q := holderFieldsFrom(c.Request.URL.Query())

	rec, err := h.svc.Lookup(c.Request.Context(), q, requestOrigin(c))
	if err != nil {
		writeError(c, err)
		return
	}

	writeOK(c, "Visa information found", rec)
}
