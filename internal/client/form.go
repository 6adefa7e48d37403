package client

import (
	"context"
	"errors"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/yoockh/visadesk/internal/models"
)

type FormState int

const (
	FormEditing FormState = iota
	FormInvalid
	FormSubmitting
	FormSucceeded
	FormFailed
)

func (s FormState) String() string {
	switch s {
	case FormEditing:
		return "editing"
	case FormInvalid:
		return "invalid"
	case FormSubmitting:
		return "submitting"
	case FormSucceeded:
		return "succeeded"
	case FormFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type FormMode int

const (
	ModeIntake FormMode = iota
	ModeLookup
)

var ErrFormBusy = errors.New("form is already submitting")

// Submitter is the slice of Client a Form needs.
type Submitter interface {
	Submit(ctx context.Context, p models.IntakePayload) (*models.VisaRecord, error)
	Lookup(ctx context.Context, q models.LookupQuery) (*models.VisaRecord, error)
}

// Form holds the entry state of one intake or lookup form. Editing a field
// after a submit returns the form to FormEditing.
type Form struct {
	Mode   FormMode
	State  FormState
	Fields models.HolderFields
	Files  []models.IntakeFile

	Missing map[string]bool
	Result  *models.VisaRecord
	Err     error
}

func NewForm(mode FormMode) *Form {
	return &Form{Mode: mode, State: FormEditing}
}

// Set assigns a field by its form name; unknown names are ignored.
func (f *Form) Set(name, value string) {
	value = strings.TrimSpace(value)
	switch name {
	case "nationality":
		f.Fields.Nationality = value
	case "fullName", "full_name":
		f.Fields.FullName = value
	case "passportNumber", "passport_number":
		f.Fields.PassportNumber = value
	case "dateOfBirth", "date_of_birth":
		f.Fields.DateOfBirth = value
	default:
		return
	}
	f.touch()
}

func (f *Form) Attach(file models.IntakeFile) {
	f.Files = append(f.Files, file)
	f.touch()
}

// AttachPath reads a file from disk, guessing its content type from the
// extension.
func (f *Form) AttachPath(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	f.Attach(models.IntakeFile{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		Data:        data,
	})
	return nil
}

func (f *Form) Remove(i int) {
	if i < 0 || i >= len(f.Files) {
		return
	}
	f.Files = append(f.Files[:i], f.Files[i+1:]...)
	f.touch()
}

func (f *Form) touch() {
	if f.State != FormSubmitting {
		f.State = FormEditing
		f.Err = nil
	}
}

// Validate reports missing entries with the same keys the server uses.
func (f *Form) Validate() bool {
	missing := f.Fields.Missing()
	if f.Mode == ModeIntake {
		missing["visaImages"] = len(f.Files) == 0
	}

	f.Missing = missing
	for _, m := range missing {
		if m {
			f.State = FormInvalid
			return false
		}
	}
	return true
}

// Submit validates locally, then sends the form. The returned error is also
// kept in f.Err.
func (f *Form) Submit(ctx context.Context, s Submitter) error {
	if f.State == FormSubmitting {
		return ErrFormBusy
	}
	if !f.Validate() {
		f.Err = errors.New("missing required fields")
		return f.Err
	}

	f.State = FormSubmitting
	var (
		rec *models.VisaRecord
		err error
	)
	if f.Mode == ModeIntake {
		rec, err = s.Submit(ctx, models.IntakePayload{HolderFields: f.Fields, Files: f.Files})
	} else {
		rec, err = s.Lookup(ctx, f.Fields)
	}

	if err != nil {
		f.State = FormFailed
		f.Err = err
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Details != nil {
			f.Missing = apiErr.Details
		}
		return err
	}

	f.State = FormSucceeded
	f.Result = rec
	f.Err = nil
	return nil
}
