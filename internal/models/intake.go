package models

import "time"

// HolderFields is the four-field natural key of a holder.
type HolderFields struct {
	Nationality    string `json:"nationality"`
	FullName       string `json:"full_name"`
	PassportNumber string `json:"passport_number"`
	DateOfBirth    string `json:"date_of_birth"`
}

// Missing reports which of the four fields are empty, keyed by the camelCase
// form field names clients submit.
func (f HolderFields) Missing() map[string]bool {
	return map[string]bool{
		"nationality":    f.Nationality == "",
		"fullName":       f.FullName == "",
		"passportNumber": f.PassportNumber == "",
		"dateOfBirth":    f.DateOfBirth == "",
	}
}

type LookupQuery = HolderFields

type IntakeFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// IntakePayload is the canonical intake shape, whatever field names the
// client used.
type IntakePayload struct {
	HolderFields
	Files []IntakeFile
}

type IntakeOutcome string

const (
	IntakeRejected  IntakeOutcome = "rejected"
	IntakeSucceeded IntakeOutcome = "succeeded"
	IntakePartial   IntakeOutcome = "partial"
	IntakeFailed    IntakeOutcome = "failed"
)

type IntakeAudit struct {
	RequestID    string        `bson:"request_id,omitempty" json:"request_id,omitempty"`
	HolderID     int64         `bson:"holder_id,omitempty" json:"holder_id,omitempty"`
	Outcome      IntakeOutcome `bson:"outcome" json:"outcome"`
	FileCount    int           `bson:"file_count" json:"file_count"`
	Uploaded     int           `bson:"uploaded" json:"uploaded"`
	SkippedFiles []string      `bson:"skipped_files,omitempty" json:"skipped_files,omitempty"`
	Error        string        `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
}
