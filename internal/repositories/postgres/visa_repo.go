package postgres

import (
	"context"
	"strings"

	"github.com/lib/pq"
	"github.com/yoockh/visadesk/internal/models"
	"github.com/yoockh/visadesk/internal/utils"
	"gorm.io/gorm"
)

type VisaRepository interface {
	CreateHolder(ctx context.Context, h *models.VisaHolder) error
	// AddImage inside WithTx is guarded by a savepoint: a failed insert
	// leaves the surrounding transaction usable.
	AddImage(ctx context.Context, img *models.VisaImage) error
	FindByFields(ctx context.Context, f models.HolderFields) (*models.HolderWithKeys, error)
	ListAll(ctx context.Context) ([]models.HolderWithKeys, error)
	// WithTx runs fn in one transaction. fn returning an error rolls back.
	WithTx(ctx context.Context, fn func(tx VisaRepository) error) error
}

const imageSavepoint = "visa_image"

type visaRepo struct {
	db   *gorm.DB
	inTx bool
}

func NewVisaRepo(db *gorm.DB) VisaRepository {
	return &visaRepo{db: db}
}

func (r *visaRepo) WithTx(ctx context.Context, fn func(tx VisaRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&visaRepo{db: tx, inTx: true})
	})
}

func (r *visaRepo) CreateHolder(ctx context.Context, h *models.VisaHolder) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *visaRepo) AddImage(ctx context.Context, img *models.VisaImage) error {
	db := r.db.WithContext(ctx)
	if !r.inTx {
		return db.Create(img).Error
	}

	if err := db.SavePoint(imageSavepoint).Error; err != nil {
		return err
	}
	if err := db.Create(img).Error; err != nil {
		_ = db.RollbackTo(imageSavepoint).Error
		return err
	}
	return nil
}

const findByFieldsSQL = `
SELECT
	vh.id,
	vh.nationality,
	vh.full_name,
	vh.passport_number,
	vh.date_of_birth,
	COALESCE(string_agg(vi.image_url, ',' ORDER BY vi.id), '') AS image_urls
FROM visa_holders vh
LEFT JOIN visa_images vi ON vh.id = vi.visa_holder_id
WHERE
	vh.nationality = ?
	AND vh.full_name = ?
	AND vh.passport_number = ?
	AND vh.date_of_birth = ?
GROUP BY vh.id
ORDER BY vh.id
LIMIT 1`

type holderAggRow struct {
	ID             int64  `gorm:"column:id"`
	Nationality    string `gorm:"column:nationality"`
	FullName       string `gorm:"column:full_name"`
	PassportNumber string `gorm:"column:passport_number"`
	DateOfBirth    string `gorm:"column:date_of_birth"`
	ImageURLs      string `gorm:"column:image_urls"`
}

// FindByFields returns the first holder matching the four-field tuple. The
// store does not enforce uniqueness; the lowest id wins.
func (r *visaRepo) FindByFields(ctx context.Context, f models.HolderFields) (*models.HolderWithKeys, error) {
	var rows []holderAggRow
	err := r.db.WithContext(ctx).
		Raw(findByFieldsSQL, f.Nationality, f.FullName, f.PassportNumber, f.DateOfBirth).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, utils.ErrNotFound
	}

	row := rows[0]
	return &models.HolderWithKeys{
		VisaHolder: models.VisaHolder{
			ID:             row.ID,
			Nationality:    row.Nationality,
			FullName:       row.FullName,
			PassportNumber: row.PassportNumber,
			DateOfBirth:    row.DateOfBirth,
		},
		ImageKeys: SplitImageKeys(row.ImageURLs),
	}, nil
}

const listAllSQL = `
SELECT
	vh.id,
	vh.nationality,
	vh.full_name,
	vh.passport_number,
	vh.date_of_birth,
	COALESCE(array_agg(vi.image_url ORDER BY vi.id) FILTER (WHERE vi.id IS NOT NULL), '{}') AS image_keys
FROM visa_holders vh
LEFT JOIN visa_images vi ON vh.id = vi.visa_holder_id
GROUP BY vh.id
ORDER BY vh.id DESC`

type holderListRow struct {
	ID             int64          `gorm:"column:id"`
	Nationality    string         `gorm:"column:nationality"`
	FullName       string         `gorm:"column:full_name"`
	PassportNumber string         `gorm:"column:passport_number"`
	DateOfBirth    string         `gorm:"column:date_of_birth"`
	ImageKeys      pq.StringArray `gorm:"column:image_keys"`
}

func (r *visaRepo) ListAll(ctx context.Context) ([]models.HolderWithKeys, error) {
	var rows []holderListRow
	if err := r.db.WithContext(ctx).Raw(listAllSQL).Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]models.HolderWithKeys, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.HolderWithKeys{
			VisaHolder: models.VisaHolder{
				ID:             row.ID,
				Nationality:    row.Nationality,
				FullName:       row.FullName,
				PassportNumber: row.PassportNumber,
				DateOfBirth:    row.DateOfBirth,
			},
			ImageKeys: []string(row.ImageKeys),
		})
	}
	return out, nil
}

// SplitImageKeys splits a comma-aggregated key list, trimming whitespace and
// dropping empty entries.
func SplitImageKeys(agg string) []string {
	keys := []string{}
	for _, k := range strings.Split(agg, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
