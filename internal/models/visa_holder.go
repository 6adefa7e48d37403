package models

import "time"

type VisaHolder struct {
	ID             int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Nationality    string `gorm:"column:nationality;type:text;not null;index:idx_visa_holders_lookup,priority:1" json:"nationality"`
	FullName       string `gorm:"column:full_name;type:text;not null;index:idx_visa_holders_lookup,priority:2" json:"full_name"`
	PassportNumber string `gorm:"column:passport_number;type:text;not null;index:idx_visa_holders_lookup,priority:3" json:"passport_number"`
	DateOfBirth    string `gorm:"column:date_of_birth;type:text;not null;index:idx_visa_holders_lookup,priority:4" json:"date_of_birth"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;autoCreateTime" json:"created_at"`
}

func (VisaHolder) TableName() string { return "visa_holders" }

// VisaImage links one stored blob to its holder. ImageKey is the object store
// key, not a URL; the column keeps its historical name.
type VisaImage struct {
	ID           int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	VisaHolderID int64  `gorm:"column:visa_holder_id;not null;index" json:"visa_holder_id"`
	ImageKey     string `gorm:"column:image_url;type:text;not null" json:"image_key"`
	ContentType  string `gorm:"column:content_type;type:text" json:"content_type"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;autoCreateTime" json:"created_at"`
}

func (VisaImage) TableName() string { return "visa_images" }
