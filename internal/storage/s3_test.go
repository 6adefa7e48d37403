package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string]Object
	putErr  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = Object{Data: data, ContentType: aws.ToString(in.ContentType)}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(obj.Data)),
		ContentType: aws.String(obj.ContentType),
	}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string]Object{}}
	s := &S3Store{client: fake, bucket: "visa"}

	require.NoError(t, s.Put(ctx, "visa-images/1-a-x.png", []byte("png"), "image/png"))

	obj, err := s.Get(ctx, "visa-images/1-a-x.png")
	require.NoError(t, err)
	assert.Equal(t, "png", string(obj.Data))
	assert.Equal(t, "image/png", obj.ContentType)

	require.NoError(t, s.Delete(ctx, "visa-images/1-a-x.png"))
	_, err = s.Get(ctx, "visa-images/1-a-x.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3Store_PutError(t *testing.T) {
	fake := &fakeS3{objects: map[string]Object{}, putErr: errors.New("503")}
	s := &S3Store{client: fake, bucket: "visa"}
	assert.Error(t, s.Put(context.Background(), "k", []byte("x"), "image/png"))
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{})
	assert.Error(t, err)
}
