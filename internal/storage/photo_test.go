package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"ecommerce_backend/internal/config"
	"ecommerce_backend/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&domain.ProductPhoto{}))
	return db
}

func exercise(t *testing.T, store PhotoStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrPhotoNotFound)

	require.NoError(t, store.Put(ctx, 1, Photo{Data: []byte("png-1"), ContentType: "image/png"}))
	require.NoError(t, store.Put(ctx, 1, Photo{Data: []byte("jpeg-2"), ContentType: "image/jpeg"}))

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-2"), got.Data)
	assert.Equal(t, "image/jpeg", got.ContentType)

	require.NoError(t, store.Delete(ctx, 1))
	_, err = store.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrPhotoNotFound)
}

func TestDBStore(t *testing.T) {
	exercise(t, NewDBStore(newDB(t)))
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]Photo
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, _ := io.ReadAll(in.Body)
	f.objects[aws.ToString(in.Key)] = Photo{Data: data, ContentType: aws.ToString(in.ContentType)}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(p.Data)), ContentType: aws.String(p.ContentType)}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{objects: map[string]Photo{}}
	exercise(t, &S3Store{client: fake, bucket: "photos"})
	assert.Equal(t, "products/42", objectKey(42))
}

func TestNew(t *testing.T) {
	db := newDB(t)
	store, err := New(context.Background(), &config.Config{PhotoDisk: "database"}, db)
	require.NoError(t, err)
	assert.IsType(t, &DBStore{}, store)

	_, err = New(context.Background(), &config.Config{PhotoDisk: "s3"}, db)
	assert.ErrorContains(t, err, "S3_BUCKET")

	_, err = New(context.Background(), &config.Config{PhotoDisk: "ftp"}, db)
	assert.Error(t, err)
}
