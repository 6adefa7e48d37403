// Package memory is an in-process VisaRepository for local runs without a
// database and for tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yoockh/visadesk/internal/models"
	pgrepo "github.com/yoockh/visadesk/internal/repositories/postgres"
	"github.com/yoockh/visadesk/internal/utils"
)

type state struct {
	holders []models.VisaHolder
	images  []models.VisaImage
	nextID  int64
}

func (s state) clone() state {
	return state{
		holders: append([]models.VisaHolder(nil), s.holders...),
		images:  append([]models.VisaImage(nil), s.images...),
		nextID:  s.nextID,
	}
}

type VisaRepo struct {
	// txMu serializes writers so a committing transaction never races a
	// plain insert.
	txMu *sync.Mutex
	mu   *sync.Mutex
	st   *state
}

var _ pgrepo.VisaRepository = (*VisaRepo)(nil)

func NewVisaRepo() *VisaRepo {
	return &VisaRepo{txMu: &sync.Mutex{}, mu: &sync.Mutex{}, st: &state{}}
}

func (r *VisaRepo) CreateHolder(_ context.Context, h *models.VisaHolder) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	r.st.nextID++
	h.ID = r.st.nextID
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	r.st.holders = append(r.st.holders, *h)
	return nil
}

func (r *VisaRepo) AddImage(_ context.Context, img *models.VisaImage) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	r.st.nextID++
	img.ID = r.st.nextID
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now().UTC()
	}
	r.st.images = append(r.st.images, *img)
	return nil
}

func (r *VisaRepo) FindByFields(_ context.Context, f models.HolderFields) (*models.HolderWithKeys, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range r.st.holders {
		if h.Nationality == f.Nationality && h.FullName == f.FullName &&
			h.PassportNumber == f.PassportNumber && h.DateOfBirth == f.DateOfBirth {
			return &models.HolderWithKeys{VisaHolder: h, ImageKeys: r.keysOf(h.ID)}, nil
		}
	}
	return nil, utils.ErrNotFound
}

// ListAll returns holders newest first.
func (r *VisaRepo) ListAll(_ context.Context) ([]models.HolderWithKeys, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.HolderWithKeys, 0, len(r.st.holders))
	for _, h := range r.st.holders {
		out = append(out, models.HolderWithKeys{VisaHolder: h, ImageKeys: r.keysOf(h.ID)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// WithTx runs fn against a private copy of the state and publishes it only
// when fn succeeds.
func (r *VisaRepo) WithTx(_ context.Context, fn func(tx pgrepo.VisaRepository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	r.mu.Lock()
	work := r.st.clone()
	r.mu.Unlock()

	tx := &VisaRepo{txMu: &sync.Mutex{}, mu: &sync.Mutex{}, st: &work}
	if err := fn(tx); err != nil {
		return err
	}

	r.mu.Lock()
	*r.st = work
	r.mu.Unlock()
	return nil
}

func (r *VisaRepo) Counts() (holders, images int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.st.holders), len(r.st.images)
}

func (r *VisaRepo) keysOf(holderID int64) []string {
	keys := []string{}
	for _, img := range r.st.images {
		if img.VisaHolderID == holderID {
			keys = append(keys, img.ImageKey)
		}
	}
	return keys
}
