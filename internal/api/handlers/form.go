package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/yoockh/visadesk/internal/models"
)

// Clients send either camelCase or snake_case names.
var (
	nationalityKeys    = []string{"nationality"}
	fullNameKeys       = []string{"fullName", "full_name"}
	passportNumberKeys = []string{"passportNumber", "passport_number"}
	dateOfBirthKeys    = []string{"dateOfBirth", "date_of_birth"}

	imageFileKeys = []string{"visaImage", "visaImages"}
)

const defaultMaxUploadBytes int64 = 32 << 20

// cleanValue trims whitespace and stray double quotes left by form proxies.
func cleanValue(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}

func firstValue(v url.Values, keys []string) string {
	for _, k := range keys {
		if s := cleanValue(v.Get(k)); s != "" {
			return s
		}
	}
	return ""
}

func holderFieldsFrom(v url.Values) models.HolderFields {
	return models.HolderFields{
		Nationality:    firstValue(v, nationalityKeys),
		FullName:       firstValue(v, fullNameKeys),
		PassportNumber: firstValue(v, passportNumberKeys),
		DateOfBirth:    firstValue(v, dateOfBirthKeys),
	}
}

// parseIntakeForm normalizes a multipart (or plain urlencoded) submission.
// A non-multipart body simply yields no files, which validation reports.
func parseIntakeForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (models.IntakePayload, error) {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	err := r.ParseMultipartForm(maxBytes)
	switch {
	case errors.Is(err, http.ErrNotMultipart):
		if err := r.ParseForm(); err != nil {
			return models.IntakePayload{}, err
		}
		return models.IntakePayload{HolderFields: holderFieldsFrom(r.Form)}, nil
	case err != nil:
		return models.IntakePayload{}, err
	}
	defer r.MultipartForm.RemoveAll()

	p := models.IntakePayload{HolderFields: holderFieldsFrom(r.Form)}
	for _, k := range imageFileKeys {
		for _, fh := range r.MultipartForm.File[k] {
			f, err := readFormFile(fh)
			if err != nil {
				return models.IntakePayload{}, err
			}
			p.Files = append(p.Files, f)
		}
	}
	return p, nil
}

func readFormFile(fh *multipart.FileHeader) (models.IntakeFile, error) {
	src, err := fh.Open()
	if err != nil {
		return models.IntakeFile{}, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return models.IntakeFile{}, err
	}
	return models.IntakeFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
