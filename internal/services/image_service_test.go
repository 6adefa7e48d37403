package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/visadesk/internal/logger"
	"github.com/yoockh/visadesk/internal/publicurl"
	"github.com/yoockh/visadesk/internal/storage"
	"github.com/yoockh/visadesk/internal/utils"
)

func TestImageService_UploadThenFetch(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := NewImageService(store, publicurl.Bucket{BaseURL: "https://cdn.example.com/"}, logger.Discard())

	key, url, err := svc.Upload(ctx, "scan 1.png", "image/png", []byte("png"), testOrigin)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, storage.ImagePrefix+"/"))
	assert.Equal(t, "https://cdn.example.com/"+key, url)

	obj, err := svc.Fetch(ctx, "/"+key)
	require.NoError(t, err)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, []byte("png"), obj.Data)
}

func TestImageService_FailedUploadLeavesNoBlob(t *testing.T) {
	store := &aclFailStore{MemoryStore: storage.NewMemoryStore(), failOn: "denied"}
	svc := NewImageService(store, publicurl.Passthrough{}, logger.Discard())

	_, _, err := svc.Upload(context.Background(), "denied.png", "image/png", []byte("png"), testOrigin)
	assert.True(t, utils.IsCode(err, utils.CodeStorage))
	assert.Zero(t, store.Len())
}

func TestImageService_FetchMissing(t *testing.T) {
	svc := NewImageService(storage.NewMemoryStore(), nil, logger.Discard())

	_, err := svc.Fetch(context.Background(), "visa-images/nope.jpg")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	_, err = svc.Fetch(context.Background(), "")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestImageService_DefaultsContentType(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := NewImageService(store, nil, logger.Discard())

	key, _, err := svc.Upload(ctx, "blob", "", []byte{1}, testOrigin)
	require.NoError(t, err)
	obj, err := svc.Fetch(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, storage.DefaultContentType, obj.ContentType)

	_, _, err = svc.Upload(ctx, "empty", "", nil, testOrigin)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestAuditService_History(t *testing.T) {
	ctx := context.Background()

	empty, err := NewAuditService(nil).History(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = NewAuditService(nil).History(ctx, 0)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	f := newFixture(t)
	rec, err := f.svc.Intake(ctx, samplePayload("a.jpg"), testOrigin)
	require.NoError(t, err)

	rows, err := NewAuditService(f.audit).History(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Uploaded)
}
