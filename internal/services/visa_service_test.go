package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/visadesk/internal/logger"
	"github.com/yoockh/visadesk/internal/models"
	"github.com/yoockh/visadesk/internal/publicurl"
	"github.com/yoockh/visadesk/internal/repositories/memory"
	pgrepo "github.com/yoockh/visadesk/internal/repositories/postgres"
	"github.com/yoockh/visadesk/internal/storage"
	"github.com/yoockh/visadesk/internal/utils"
)

const testOrigin = "https://visa.example.com"

// flakyStore fails Put for any key containing one of failOn.
type flakyStore struct {
	*storage.MemoryStore
	failOn []string
}

func (s *flakyStore) Put(ctx context.Context, key string, data []byte, ct string) error {
	for _, f := range s.failOn {
		if strings.Contains(key, f) {
			return errors.New("bucket unavailable")
		}
	}
	return s.MemoryStore.Put(ctx, key, data, ct)
}

// aclFailStore writes the object and then reports an error for keys
// containing failOn, the way a post-write permission call can fail.
type aclFailStore struct {
	*storage.MemoryStore
	failOn string
}

func (s *aclFailStore) Put(ctx context.Context, key string, data []byte, ct string) error {
	if err := s.MemoryStore.Put(ctx, key, data, ct); err != nil {
		return err
	}
	if strings.Contains(key, s.failOn) {
		return errors.New("set acl: permission denied")
	}
	return nil
}

// imageFailRepo fails AddImage for keys containing failOn.
type imageFailRepo struct {
	pgrepo.VisaRepository
	failOn string
}

func (r imageFailRepo) AddImage(ctx context.Context, img *models.VisaImage) error {
	if strings.Contains(img.ImageKey, r.failOn) {
		return errors.New("insert failed")
	}
	return r.VisaRepository.AddImage(ctx, img)
}

func (r imageFailRepo) WithTx(ctx context.Context, fn func(tx pgrepo.VisaRepository) error) error {
	return r.VisaRepository.WithTx(ctx, func(tx pgrepo.VisaRepository) error {
		return fn(imageFailRepo{VisaRepository: tx, failOn: r.failOn})
	})
}

type fakeAudit struct {
	mu   sync.Mutex
	rows []models.IntakeAudit
}

func (f *fakeAudit) Insert(_ context.Context, a *models.IntakeAudit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *a)
	return nil
}

func (f *fakeAudit) ListByHolder(_ context.Context, holderID int64, _ int64) ([]models.IntakeAudit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.IntakeAudit
	for _, r := range f.rows {
		if r.HolderID == holderID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fixture struct {
	svc   VisaService
	repo  *memory.VisaRepo
	store *flakyStore
	audit *fakeAudit
}

func newFixture(t *testing.T, failOn ...string) *fixture {
	t.Helper()
	f := &fixture{
		repo:  memory.NewVisaRepo(),
		store: &flakyStore{MemoryStore: storage.NewMemoryStore(), failOn: failOn},
		audit: &fakeAudit{},
	}
	f.svc = NewVisaService(VisaDeps{
		Repo:     f.repo,
		Store:    f.store,
		Resolver: publicurl.Passthrough{},
		Audit:    f.audit,
		Logger:   logger.Discard(),
	})
	return f
}

func samplePayload(names ...string) models.IntakePayload {
	p := models.IntakePayload{HolderFields: models.HolderFields{
		Nationality:    "Vietnam",
		FullName:       "Nguyen Van A",
		PassportNumber: "B1234567",
		DateOfBirth:    "1990-05-17",
	}}
	for _, n := range names {
		p.Files = append(p.Files, models.IntakeFile{Name: n, ContentType: "image/jpeg", Data: []byte("img:" + n)})
	}
	return p
}

func TestIntake_ThenLookupRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.svc.Intake(ctx, samplePayload("front.jpg", "back.jpg"), testOrigin)
	require.NoError(t, err)
	require.Len(t, rec.ImageURLs, 2)
	assert.Contains(t, rec.ImageURLs[0], "front.jpg")
	assert.Contains(t, rec.ImageURLs[1], "back.jpg")
	assert.True(t, strings.HasPrefix(rec.ImageURLs[0], testOrigin+"/images/visa-images/"))

	got, err := f.svc.Lookup(ctx, samplePayload().HolderFields, testOrigin)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "Nguyen Van A", got.FullName)
	assert.Equal(t, rec.ImageURLs, got.ImageURLs)

	require.Len(t, f.audit.rows, 1)
	assert.Equal(t, models.IntakeSucceeded, f.audit.rows[0].Outcome)
	assert.Equal(t, 2, f.audit.rows[0].Uploaded)
}

func TestIntake_MissingFields(t *testing.T) {
	f := newFixture(t)

	p := samplePayload()
	p.FullName = ""
	_, err := f.svc.Intake(context.Background(), p, testOrigin)
	require.Error(t, err)

	var ae *utils.AppError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, utils.CodeInvalidArgument, ae.Code)
	assert.True(t, ae.Details["fullName"])
	assert.True(t, ae.Details["visaImages"])
	assert.False(t, ae.Details["nationality"])

	holders, _ := f.repo.Counts()
	assert.Zero(t, holders)
	assert.Zero(t, f.store.Len())
}

func TestIntake_PartialFailureKeepsSuccessfulImages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "bad")

	rec, err := f.svc.Intake(ctx, samplePayload("good-1.jpg", "bad.jpg", "good-2.jpg"), testOrigin)
	require.NoError(t, err)
	require.Len(t, rec.ImageURLs, 2)
	assert.Contains(t, rec.ImageURLs[0], "good-1.jpg")
	assert.Contains(t, rec.ImageURLs[1], "good-2.jpg")

	_, images := f.repo.Counts()
	assert.Equal(t, 2, images)

	require.Len(t, f.audit.rows, 1)
	assert.Equal(t, models.IntakePartial, f.audit.rows[0].Outcome)
	assert.Equal(t, []string{"bad.jpg"}, f.audit.rows[0].SkippedFiles)
}

func TestIntake_AllUploadsFailLeavesNoHolder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "bad")

	_, err := f.svc.Intake(ctx, samplePayload("bad-1.jpg", "bad-2.jpg"), testOrigin)
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeStorage))

	holders, images := f.repo.Counts()
	assert.Zero(t, holders)
	assert.Zero(t, images)

	_, err = f.svc.Lookup(ctx, samplePayload().HolderFields, testOrigin)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	require.Len(t, f.audit.rows, 1)
	assert.Equal(t, models.IntakeFailed, f.audit.rows[0].Outcome)
}

func TestIntake_RowFailureRemovesBlob(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{MemoryStore: storage.NewMemoryStore()}
	repo := memory.NewVisaRepo()
	svc := NewVisaService(VisaDeps{
		Repo:   imageFailRepo{VisaRepository: repo, failOn: "orphan"},
		Store:  store,
		Logger: logger.Discard(),
	})

	rec, err := svc.Intake(ctx, samplePayload("kept.jpg", "orphan.jpg"), testOrigin)
	require.NoError(t, err)
	assert.Len(t, rec.ImageURLs, 1)
	assert.Equal(t, 1, store.Len())

	_, err = svc.Intake(ctx, samplePayload("orphan.jpg"), testOrigin)
	require.Error(t, err)
	assert.Equal(t, 1, store.Len())
	holders, _ := repo.Counts()
	assert.Equal(t, 1, holders)
}

func TestIntake_FailedPutRemovesWrittenBlob(t *testing.T) {
	ctx := context.Background()
	store := &aclFailStore{MemoryStore: storage.NewMemoryStore(), failOn: "denied"}
	repo := memory.NewVisaRepo()
	svc := NewVisaService(VisaDeps{
		Repo:   repo,
		Store:  store,
		Logger: logger.Discard(),
	})

	rec, err := svc.Intake(ctx, samplePayload("kept.jpg", "denied.jpg"), testOrigin)
	require.NoError(t, err)
	assert.Len(t, rec.ImageURLs, 1)
	assert.Equal(t, 1, store.Len())

	_, images := repo.Counts()
	assert.Equal(t, 1, images)
}

func TestLookup_MissingAndNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Lookup(ctx, models.LookupQuery{Nationality: "Vietnam"}, testOrigin)
	var ae *utils.AppError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, utils.CodeInvalidArgument, ae.Code)
	assert.Equal(t, map[string]bool{
		"nationality":    false,
		"fullName":       true,
		"passportNumber": true,
		"dateOfBirth":    true,
	}, ae.Details)

	_, err = f.svc.Lookup(ctx, samplePayload().HolderFields, testOrigin)
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, utils.CodeNotFound, ae.Code)
	assert.Equal(t, "No visa information found", ae.Message)
}

func TestLookup_ExactMatchOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.Intake(ctx, samplePayload("a.jpg"), testOrigin)
	require.NoError(t, err)

	q := samplePayload().HolderFields
	q.FullName = "nguyen van a"
	_, err = f.svc.Lookup(ctx, q, testOrigin)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

type mapCache struct {
	entries map[models.HolderFields]models.HolderWithKeys
	sets    int
}

func (c *mapCache) Get(_ context.Context, f models.HolderFields) (*models.HolderWithKeys, bool, error) {
	h, ok := c.entries[f]
	if !ok {
		return nil, false, nil
	}
	return &h, true, nil
}

func (c *mapCache) Set(_ context.Context, f models.HolderFields, h *models.HolderWithKeys) error {
	c.sets++
	c.entries[f] = *h
	return nil
}

func TestLookup_UsesCacheAndResolvesPerOrigin(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewVisaRepo()
	c := &mapCache{entries: map[models.HolderFields]models.HolderWithKeys{}}
	svc := NewVisaService(VisaDeps{
		Repo:   repo,
		Store:  storage.NewMemoryStore(),
		Cache:  c,
		Logger: logger.Discard(),
	})

	_, err := svc.Intake(ctx, samplePayload("a.jpg"), testOrigin)
	require.NoError(t, err)

	q := samplePayload().HolderFields
	first, err := svc.Lookup(ctx, q, testOrigin)
	require.NoError(t, err)
	second, err := svc.Lookup(ctx, q, "http://localhost:8080")
	require.NoError(t, err)

	assert.Equal(t, 1, c.sets)
	assert.True(t, strings.HasPrefix(first.ImageURLs[0], testOrigin))
	assert.True(t, strings.HasPrefix(second.ImageURLs[0], "http://localhost:8080/images/"))

	_, err = svc.Lookup(ctx, models.HolderFields{Nationality: "x", FullName: "y", PassportNumber: "z", DateOfBirth: "w"}, testOrigin)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
	assert.Equal(t, 1, c.sets)
}

func TestListAll_ResolvesURLs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.Intake(ctx, samplePayload("a.jpg"), testOrigin)
	require.NoError(t, err)
	p := samplePayload("b.jpg")
	p.FullName = "Tran Thi B"
	_, err = f.svc.Intake(ctx, p, testOrigin)
	require.NoError(t, err)

	recs, err := f.svc.ListAll(ctx, testOrigin)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Tran Thi B", recs[0].FullName)
	require.Len(t, recs[1].ImageURLs, 1)
	assert.True(t, strings.HasPrefix(recs[1].ImageURLs[0], testOrigin+"/images/"))
}
