package config

import (
	"context"
	"fmt"

	"github.com/yoockh/visadesk/internal/storage"
	"google.golang.org/api/option"
)

// InitStorage builds the object store selected by STORAGE_DRIVER, wrapped in
// an in-process read cache when IMAGE_CACHE_SIZE > 0.
func InitStorage(ctx context.Context, cfg *AppConfig) (storage.ObjectStore, error) {
	var (
		store storage.ObjectStore
		err   error
	)

	switch cfg.StorageDriver {
	case StorageGCS:
		var opts []option.ClientOption
		if cfg.GCSEndpoint != "" {
			opts = append(opts, option.WithEndpoint(cfg.GCSEndpoint), option.WithoutAuthentication())
		}
		var gcs *storage.GCSStore
		gcs, err = storage.NewGCSStore(ctx, cfg.StorageBucket, opts...)
		if gcs != nil {
			gcs.PublicRead = cfg.GCSPublicRead
			store = gcs
		}
	case StorageS3:
		store, err = storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.StorageBucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case StorageMemory:
		store = storage.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.ImageCacheSize > 0 {
		return storage.NewCachedStore(store, cfg.ImageCacheSize)
	}
	return store, nil
}
