package models

// VisaRecord is a holder joined with the public URLs of its images.
type VisaRecord struct {
	ID             int64    `json:"id"`
	Nationality    string   `json:"nationality"`
	FullName       string   `json:"full_name"`
	PassportNumber string   `json:"passport_number"`
	DateOfBirth    string   `json:"date_of_birth"`
	ImageURLs      []string `json:"image_urls"`
}

// HolderWithKeys is the store-level join result before URL resolution.
type HolderWithKeys struct {
	VisaHolder
	ImageKeys []string `json:"image_keys"`
}

func (h HolderWithKeys) Record(urls []string) VisaRecord {
	if urls == nil {
		urls = []string{}
	}
	return VisaRecord{
		ID:             h.ID,
		Nationality:    h.Nationality,
		FullName:       h.FullName,
		PassportNumber: h.PassportNumber,
		DateOfBirth:    h.DateOfBirth,
		ImageURLs:      urls,
	}
}
