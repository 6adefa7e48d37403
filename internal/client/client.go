// Package client talks to the visadesk HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/yoockh/visadesk/internal/adminlist"
	"github.com/yoockh/visadesk/internal/models"
)

const DefaultTimeout = 60 * time.Second

// APIError is a non-2xx envelope returned by the server.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details map[string]bool
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Details map[string]bool `json:"details"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	adminUser  string
	adminPass  string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithAdminCredentials(user, password string) Option {
	return func(c *Client) {
		c.adminUser = user
		c.adminPass = password
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Submit posts an intake as multipart form data.
func (c *Client) Submit(ctx context.Context, p models.IntakePayload) (*models.VisaRecord, error) {
	body, contentType, err := encodeIntake(p)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/evisa", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var rec models.VisaRecord
	if err := c.do(req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) Lookup(ctx context.Context, q models.LookupQuery) (*models.VisaRecord, error) {
	v := url.Values{}
	v.Set("nationality", q.Nationality)
	v.Set("fullName", q.FullName)
	v.Set("passportNumber", q.PassportNumber)
	v.Set("dateOfBirth", q.DateOfBirth)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/evisa?"+v.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var rec models.VisaRecord
	if err := c.do(req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRecords fetches every record through the admin API.
func (c *Client) ListRecords(ctx context.Context) ([]models.VisaRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/admin/records", nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.adminUser, c.adminPass)

	var recs []models.VisaRecord
	if err := c.do(req, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// ListPage asks the server to filter and paginate.
func (c *Client) ListPage(ctx context.Context, field adminlist.SearchField, search string, page, size int) (*adminlist.Page, error) {
	v := url.Values{}
	v.Set("field", string(field))
	v.Set("search", search)
	v.Set("page", fmt.Sprint(page))
	v.Set("page_size", fmt.Sprint(size))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/admin/records?"+v.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.adminUser, c.adminPass)

	var p adminlist.Page
	if err := c.do(req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 300 || !env.Success {
		return &APIError{
			Status:  resp.StatusCode,
			Code:    env.Code,
			Message: env.Message,
			Details: env.Details,
		}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func encodeIntake(p models.IntakePayload) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"nationality", p.Nationality},
		{"fullName", p.FullName},
		{"passportNumber", p.PassportNumber},
		{"dateOfBirth", p.DateOfBirth},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	for _, f := range p.Files {
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="visaImages"; filename=%q`, f.Name))
		h.Set("Content-Type", ct)
		w, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := w.Write(f.Data); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
