// Package adminlist derives filtered, paginated views over a snapshot of
// visa records. Views never mutate the snapshot they were derived from.
package adminlist

import (
	"strings"

	"github.com/yoockh/visadesk/internal/models"
)

const DefaultPageSize = 10

type SearchField string

const (
	FieldFullName       SearchField = "full_name"
	FieldNationality    SearchField = "nationality"
	FieldPassportNumber SearchField = "passport_number"
)

// ParseField maps a query value to a SearchField, defaulting to full_name.
func ParseField(s string) SearchField {
	switch SearchField(strings.ToLower(strings.TrimSpace(s))) {
	case FieldNationality:
		return FieldNationality
	case FieldPassportNumber:
		return FieldPassportNumber
	default:
		return FieldFullName
	}
}

func (f SearchField) value(r models.VisaRecord) string {
	switch f {
	case FieldNationality:
		return r.Nationality
	case FieldPassportNumber:
		return r.PassportNumber
	default:
		return r.FullName
	}
}

// Snapshot is an immutable copy of the records fetched for one admin view.
type Snapshot struct {
	records []models.VisaRecord
}

func NewSnapshot(records []models.VisaRecord) Snapshot {
	cp := make([]models.VisaRecord, len(records))
	for i, r := range records {
		r.ImageURLs = append([]string{}, r.ImageURLs...)
		cp[i] = r
	}
	return Snapshot{records: cp}
}

func (s Snapshot) Len() int { return len(s.records) }

// Records returns a copy of the snapshot contents.
func (s Snapshot) Records() []models.VisaRecord {
	return append([]models.VisaRecord{}, s.records...)
}

// Filter keeps records whose field contains term, case-insensitively. The
// term is matched as entered; only an empty term matches everything.
func (s Snapshot) Filter(field SearchField, term string) Snapshot {
	term = strings.ToLower(term)
	if term == "" {
		return s
	}

	out := make([]models.VisaRecord, 0, len(s.records))
	for _, r := range s.records {
		if strings.Contains(strings.ToLower(field.value(r)), term) {
			out = append(out, r)
		}
	}
	return Snapshot{records: out}
}

type Page struct {
	Items      []models.VisaRecord `json:"items"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	Total      int                 `json:"total"`
	TotalPages int                 `json:"total_pages"`
}

func (p Page) HasPrev() bool { return p.Page > 1 }
func (p Page) HasNext() bool { return p.Page < p.TotalPages }

// Paginate returns 1-based page of the given size. size <= 0 uses
// DefaultPageSize; page < 1 is treated as 1. A page past the end is empty.
func (s Snapshot) Paginate(page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(s.records)
	pages := total / size
	if total%size != 0 {
		pages++
	}
	p := Page{
		Items:      []models.VisaRecord{},
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: pages,
	}

	// page <= pages keeps (page-1)*size below total.
	if page > pages {
		return p
	}
	start := (page - 1) * size
	end := total
	if total-start > size {
		end = start + size
	}
	p.Items = append(p.Items, s.records[start:end]...)
	return p
}

// View is Filter followed by Paginate.
func View(records []models.VisaRecord, field SearchField, term string, page, size int) Page {
	return NewSnapshot(records).Filter(field, term).Paginate(page, size)
}
