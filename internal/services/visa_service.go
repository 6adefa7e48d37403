package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/visadesk/internal/cache"
	"github.com/yoockh/visadesk/internal/logger"
	"github.com/yoockh/visadesk/internal/metrics"
	"github.com/yoockh/visadesk/internal/models"
	mongorepo "github.com/yoockh/visadesk/internal/repositories/mongo"
	pgrepo "github.com/yoockh/visadesk/internal/repositories/postgres"
	"github.com/yoockh/visadesk/internal/publicurl"
	"github.com/yoockh/visadesk/internal/storage"
	"github.com/yoockh/visadesk/internal/utils"
)

type VisaService interface {
	Intake(ctx context.Context, p models.IntakePayload, origin string) (*models.VisaRecord, error)
	Lookup(ctx context.Context, q models.LookupQuery, origin string) (*models.VisaRecord, error)
	ListAll(ctx context.Context, origin string) ([]models.VisaRecord, error)
}

// VisaDeps wires VisaService. Cache and Audit are optional.
type VisaDeps struct {
	Repo     pgrepo.VisaRepository
	Store    storage.ObjectStore
	Resolver publicurl.Resolver
	Cache    cache.LookupCache
	Audit    mongorepo.IntakeAuditRepository
	Logger   *logrus.Logger
}

type visaService struct {
	repo     pgrepo.VisaRepository
	store    storage.ObjectStore
	resolver publicurl.Resolver
	cache    cache.LookupCache
	audit    mongorepo.IntakeAuditRepository
	log      *logrus.Logger
}

func NewVisaService(d VisaDeps) VisaService {
	if d.Logger == nil {
		d.Logger = logrus.New()
	}
	if d.Resolver == nil {
		d.Resolver = publicurl.Passthrough{}
	}
	return &visaService{
		repo:     d.Repo,
		store:    d.Store,
		resolver: d.Resolver,
		cache:    d.Cache,
		audit:    d.Audit,
		log:      d.Logger,
	}
}

var errNoImagesStored = errors.New("no image could be stored")

func (s *visaService) Intake(ctx context.Context, p models.IntakePayload, origin string) (*models.VisaRecord, error) {
	const op = "VisaService.Intake"

	missing := p.Missing()
	missing["visaImages"] = len(p.Files) == 0
	if anyMissing(missing) {
		metrics.IntakeTotal.WithLabelValues(string(models.IntakeRejected)).Inc()
		return nil, utils.Invalid(op, "Missing required fields", missing)
	}

	log := logger.Entry(ctx, s.log)
	holder := &models.VisaHolder{
		Nationality:    p.Nationality,
		FullName:       p.FullName,
		PassportNumber: p.PassportNumber,
		DateOfBirth:    p.DateOfBirth,
	}

	var (
		urls    []string
		stored  []string
		skipped []string
	)

	err := s.repo.WithTx(ctx, func(tx pgrepo.VisaRepository) error {
		if err := tx.CreateHolder(ctx, holder); err != nil {
			return utils.E(utils.CodeStorage, op, "failed to insert visa holder", err)
		}

		for _, f := range p.Files {
			key, err := s.storeImage(ctx, tx, holder.ID, f)
			if err != nil {
				log.WithError(err).WithFields(logrus.Fields{
					"holder_id": holder.ID,
					"file":      f.Name,
				}).Warn("skipping image")
				metrics.ImageUploadsTotal.WithLabelValues("failed").Inc()
				skipped = append(skipped, f.Name)
				continue
			}
			metrics.ImageUploadsTotal.WithLabelValues("stored").Inc()
			stored = append(stored, key)
			urls = append(urls, s.resolver.Resolve(origin, key))
		}

		if len(stored) == 0 {
			return errNoImagesStored
		}
		return nil
	})

	if err != nil {
		// The holder row is gone with the rollback; blobs whose rows were
		// committed with it are now orphans.
		s.deleteBlobs(ctx, stored)

		audit := &models.IntakeAudit{
			Outcome:      models.IntakeFailed,
			FileCount:    len(p.Files),
			SkippedFiles: skipped,
			Error:        err.Error(),
		}
		s.recordAudit(ctx, audit)
		metrics.IntakeTotal.WithLabelValues(string(models.IntakeFailed)).Inc()

		if errors.Is(err, errNoImagesStored) {
			log.WithField("file_count", len(p.Files)).Error("intake failed: no image stored")
			return nil, utils.E(utils.CodeStorage, op, "Failed to process any images", err)
		}
		var ae *utils.AppError
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, utils.E(utils.CodeStorage, op, "Failed to save data", err)
	}

	outcome := models.IntakeSucceeded
	if len(skipped) > 0 {
		outcome = models.IntakePartial
	}
	s.recordAudit(ctx, &models.IntakeAudit{
		HolderID:     holder.ID,
		Outcome:      outcome,
		FileCount:    len(p.Files),
		Uploaded:     len(stored),
		SkippedFiles: skipped,
	})
	metrics.IntakeTotal.WithLabelValues(string(outcome)).Inc()

	rec := (models.HolderWithKeys{VisaHolder: *holder}).Record(urls)
	return &rec, nil
}

// storeImage uploads one file and links it to the holder. A blob whose upload
// or row insert fails is removed again.
func (s *visaService) storeImage(ctx context.Context, tx pgrepo.VisaRepository, holderID int64, f models.IntakeFile) (string, error) {
	key := storage.NewKey(storage.ImagePrefix, f.Name)
	ct := f.ContentType
	if ct == "" {
		ct = storage.DefaultContentType
	}

	if err := s.store.Put(ctx, key, f.Data, ct); err != nil {
		// a failed Put may still have written the object
		s.deleteBlobs(ctx, []string{key})
		return "", err
	}

	img := &models.VisaImage{VisaHolderID: holderID, ImageKey: key, ContentType: ct}
	if err := tx.AddImage(ctx, img); err != nil {
		s.deleteBlobs(ctx, []string{key})
		return "", err
	}
	return key, nil
}

func (s *visaService) deleteBlobs(ctx context.Context, keys []string) {
	for _, k := range keys {
		if err := s.store.Delete(ctx, k); err != nil {
			logger.Entry(ctx, s.log).WithError(err).WithField("key", k).Warn("orphaned blob left behind")
		}
	}
}

func (s *visaService) recordAudit(ctx context.Context, a *models.IntakeAudit) {
	if s.audit == nil {
		return
	}
	a.RequestID = logger.RequestID(ctx)
	if err := s.audit.Insert(ctx, a); err != nil {
		logger.Entry(ctx, s.log).WithError(err).Warn("intake audit write failed")
	}
}

func (s *visaService) Lookup(ctx context.Context, q models.LookupQuery, origin string) (*models.VisaRecord, error) {
	const op = "VisaService.Lookup"

	if missing := q.Missing(); anyMissing(missing) {
		metrics.LookupTotal.WithLabelValues("rejected").Inc()
		return nil, utils.Invalid(op, "Missing required fields", missing)
	}

	h, err := s.findHolder(ctx, q)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			metrics.LookupTotal.WithLabelValues("not_found").Inc()
			return nil, utils.E(utils.CodeNotFound, op, "No visa information found", err)
		}
		metrics.LookupTotal.WithLabelValues("error").Inc()
		return nil, utils.E(utils.CodeInternal, op, "Internal server error", err)
	}

	metrics.LookupTotal.WithLabelValues("found").Inc()
	rec := h.Record(s.resolveAll(origin, h.ImageKeys))
	return &rec, nil
}

func (s *visaService) findHolder(ctx context.Context, q models.LookupQuery) (*models.HolderWithKeys, error) {
	if s.cache != nil {
		h, hit, err := s.cache.Get(ctx, q)
		if err != nil {
			logger.Entry(ctx, s.log).WithError(err).Warn("lookup cache read failed")
		}
		if hit {
			return h, nil
		}
	}

	h, err := s.repo.FindByFields(ctx, q)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, q, h); err != nil {
			logger.Entry(ctx, s.log).WithError(err).Warn("lookup cache write failed")
		}
	}
	return h, nil
}

func (s *visaService) ListAll(ctx context.Context, origin string) ([]models.VisaRecord, error) {
	const op = "VisaService.ListAll"

	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "Failed to fetch records", err)
	}

	out := make([]models.VisaRecord, 0, len(rows))
	for _, h := range rows {
		out = append(out, h.Record(s.resolveAll(origin, h.ImageKeys)))
	}
	return out, nil
}

func (s *visaService) resolveAll(origin string, keys []string) []string {
	urls := make([]string, 0, len(keys))
	for _, k := range keys {
		urls = append(urls, s.resolver.Resolve(origin, k))
	}
	return urls
}

func anyMissing(m map[string]bool) bool {
	for _, v := range m {
		if v {
			return true
		}
	}
	return false
}
