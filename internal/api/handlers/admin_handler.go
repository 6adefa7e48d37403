package handlers

import (
	"embed"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/yoockh/visadesk/internal/adminlist"
	"github.com/yoockh/visadesk/internal/services"
	"github.com/yoockh/visadesk/internal/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

var adminTemplate = template.Must(template.ParseFS(templateFS, "templates/admin.html"))

type AdminHandler struct {
	visa           services.VisaService
	images         services.ImageService
	audit          services.AuditService
	maxUploadBytes int64
}

func NewAdminHandler(visa services.VisaService, images services.ImageService, audit services.AuditService, maxUploadBytes int64) *AdminHandler {
	return &AdminHandler{visa: visa, images: images, audit: audit, maxUploadBytes: maxUploadBytes}
}

type listQuery struct {
	Search   string `form:"search"`
	Field    string `form:"field"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// Records returns every record, or a filtered page when any of search, page
// or page_size is given.
func (h *AdminHandler) Records(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AdminHandler.Records", "invalid query", err))
		return
	}

	recs, err := h.visa.ListAll(c.Request.Context(), requestOrigin(c))
	if err != nil {
		writeError(c, err)
		return
	}

	if q.Search == "" && q.Page == 0 && q.PageSize == 0 {
		writeOK(c, "", recs)
		return
	}
	writeOK(c, "", adminlist.View(recs, adminlist.ParseField(q.Field), q.Search, q.Page, q.PageSize))
}

func (h *AdminHandler) Create(c *gin.Context) {
	p, err := parseIntakeForm(c.Writer, c.Request, h.maxUploadBytes)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AdminHandler.Create", "invalid form data", err))
		return
	}

	rec, err := h.visa.Intake(c.Request.Context(), p, requestOrigin(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, "Visa information saved successfully", rec)
}

type UploadResponse struct {
	Key     string `json:"key"`
	FileURL string `json:"file_url"`
}

func (h *AdminHandler) Upload(c *gin.Context) {
	const op = "AdminHandler.Upload"

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.Invalid(op, "No file uploaded", map[string]bool{"file": true}))
		return
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "file too large", nil))
		return
	}

	src, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "cannot read file", err))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "cannot read file", err))
		return
	}

	key, fileURL, err := h.images.Upload(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), data, requestOrigin(c))
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, "File uploaded", UploadResponse{Key: key, FileURL: fileURL})
}

func (h *AdminHandler) Audit(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, utils.Invalid("AdminHandler.Audit", "Invalid record id", map[string]bool{"id": true}))
		return
	}

	rows, err := h.audit.History(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, "", rows)
}

type fieldOption struct {
	Value    string
	Label    string
	Selected bool
}

type adminPageData struct {
	Search  string
	Fields  []fieldOption
	Page    adminlist.Page
	PrevURL string
	NextURL string
}

// Page renders the server-side admin list.
func (h *AdminHandler) Page(c *gin.Context) {
	var q listQuery
	_ = c.ShouldBindQuery(&q)

	recs, err := h.visa.ListAll(c.Request.Context(), requestOrigin(c))
	if err != nil {
		c.String(utils.HTTPStatus(err), "failed to load records")
		return
	}

	field := adminlist.ParseField(q.Field)
	page := adminlist.View(recs, field, q.Search, q.Page, q.PageSize)

	data := adminPageData{
		Search: q.Search,
		Page:   page,
		Fields: []fieldOption{
			{Value: string(adminlist.FieldFullName), Label: "Full name"},
			{Value: string(adminlist.FieldNationality), Label: "Nationality"},
			{Value: string(adminlist.FieldPassportNumber), Label: "Passport number"},
		},
		PrevURL: pageURL(q.Search, field, page.Page-1),
		NextURL: pageURL(q.Search, field, page.Page+1),
	}
	for i := range data.Fields {
		data.Fields[i].Selected = data.Fields[i].Value == string(field)
	}

	c.Render(http.StatusOK, render.HTML{Template: adminTemplate, Name: "admin", Data: data})
}

func pageURL(search string, field adminlist.SearchField, page int) string {
	v := url.Values{}
	if search != "" {
		v.Set("search", search)
		v.Set("field", string(field))
	}
	v.Set("page", strconv.Itoa(page))
	return "?" + v.Encode()
}
