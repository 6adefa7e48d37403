package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/visadesk/internal/logger"
	"github.com/yoockh/visadesk/internal/publicurl"
	"github.com/yoockh/visadesk/internal/storage"
	"github.com/yoockh/visadesk/internal/utils"
)

type ImageService interface {
	// Fetch returns the stored object for key, CodeNotFound when absent.
	Fetch(ctx context.Context, key string) (*storage.Object, error)
	// Upload stores a single standalone object and returns its key and URL.
	Upload(ctx context.Context, name, contentType string, data []byte, origin string) (key, url string, err error)
}

type imageService struct {
	store    storage.ObjectStore
	resolver publicurl.Resolver
	log      *logrus.Logger
}

func NewImageService(store storage.ObjectStore, resolver publicurl.Resolver, log *logrus.Logger) ImageService {
	if log == nil {
		log = logrus.New()
	}
	if resolver == nil {
		resolver = publicurl.Passthrough{}
	}
	return &imageService{store: store, resolver: resolver, log: log}
}

func (s *imageService) Fetch(ctx context.Context, key string) (*storage.Object, error) {
	const op = "ImageService.Fetch"

	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return nil, utils.E(utils.CodeNotFound, op, "Image not found", nil)
	}

	obj, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Image not found", err)
		}
		return nil, utils.E(utils.CodeStorage, op, "Failed to fetch image", err)
	}
	if obj.ContentType == "" {
		obj.ContentType = storage.DefaultContentType
	}
	return obj, nil
}

func (s *imageService) Upload(ctx context.Context, name, contentType string, data []byte, origin string) (string, string, error) {
	const op = "ImageService.Upload"

	if len(data) == 0 {
		return "", "", utils.Invalid(op, "No file uploaded", map[string]bool{"file": true})
	}
	if contentType == "" {
		contentType = storage.DefaultContentType
	}

	key := storage.NewKey(storage.ImagePrefix, name)
	if err := s.store.Put(ctx, key, data, contentType); err != nil {
		logger.Entry(ctx, s.log).WithError(err).WithField("key", key).Error("upload failed")
		if derr := s.store.Delete(ctx, key); derr != nil {
			logger.Entry(ctx, s.log).WithError(derr).WithField("key", key).Warn("orphaned blob left behind")
		}
		return "", "", utils.E(utils.CodeStorage, op, "Upload failed", err)
	}
	return key, s.resolver.Resolve(origin, key), nil
}
