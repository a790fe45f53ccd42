package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/internal/engine/repo"
	"github.com/go-arcade/oneupdate/pkg/cache"
	"github.com/go-arcade/oneupdate/pkg/database"
	"github.com/go-arcade/oneupdate/pkg/storage"
)

type memStorage struct {
	mu      sync.Mutex
	objects map[string]storage.ObjectInfo
	failDel map[string]bool
	now     func() time.Time
}

func (m *memStorage) PutObject(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	b, _ := io.ReadAll(body)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = storage.ObjectInfo{Key: key, Size: int64(len(b)), LastModified: m.now()}
	return key, nil
}

func (m *memStorage) PresignGet(_ context.Context, key string, expire time.Duration) (string, error) {
	return fmt.Sprintf("https://bucket.s3/%s?X-Amz-Expires=%d", key, int(expire.Seconds())), nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	if m.failDel[key] {
		return errors.New("access denied")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStorage) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []storage.ObjectInfo
	for k, o := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memStorage) Health(context.Context) error { return nil }

type gatewayFixture struct {
	g       *Gateway
	mem     *memStorage
	history repo.IUploadHistoryRepository
	clock   time.Time
}

func newGatewayFixture(t *testing.T, configured bool) *gatewayFixture {
	t.Helper()
	db, err := database.NewDatabase(database.Database{Driver: database.DriverSQLite, SQLitePath: "file::memory:"})
	require.NoError(t, err)
	gdb := database.NewGormDB(db)
	require.NoError(t, repo.AutoMigrate(gdb))
	history := repo.NewUploadHistoryRepo(gdb)

	settings := repo.NewSettingsRepo(cache.NewMemoryCache(0))
	if configured {
		require.NoError(t, settings.SetS3Credentials(context.Background(), model.S3Credentials{
			AccessKey: "ak", SecretKey: "sk", BucketName: "plugins", Endpoint: "https://s3.example.com", Region: "us-east-1",
		}))
	}

	f := &gatewayFixture{history: history, clock: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	f.mem = &memStorage{objects: map[string]storage.ObjectInfo{}, failDel: map[string]bool{}, now: func() time.Time { return f.clock }}
	factory := func(s *storage.Storage) (storage.StorageProvider, error) {
		assert.Equal(t, "plugins", s.Bucket)
		return f.mem, nil
	}
	f.g = NewGateway(settings, history, storage.Storage{}, factory, time.Hour)
	f.g.now = func() time.Time { return f.clock }
	return f
}

func TestUpload(t *testing.T) {
	f := newGatewayFixture(t, true)
	ctx := context.Background()

	_, err := f.g.Upload(ctx, "plugin.tar.gz", bytes.NewReader(nil), 0)
	assert.ErrorIs(t, err, consts.ErrNotZip)

	res, err := f.g.Upload(ctx, "../my-plugin.zip", strings.NewReader("PK"), 2)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.S3Key, "Uploads/"))
	assert.True(t, strings.HasSuffix(res.S3Key, "_my-plugin.zip"))
	assert.Contains(t, res.PresignedURL, "X-Amz-Expires=3600")
	assert.Equal(t, f.clock.Add(time.Hour), res.ExpiresAt)

	rows, err := f.g.History(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "my-plugin.zip", rows[0].FileName)
	assert.Equal(t, model.UploadActionUploaded, rows[0].Action)
}

func TestUpload_NotConfigured(t *testing.T) {
	f := newGatewayFixture(t, false)
	_, err := f.g.Upload(context.Background(), "a.zip", strings.NewReader("PK"), 2)
	assert.ErrorIs(t, err, consts.ErrStorageNotConfigured)
	assert.ErrorIs(t, f.g.Health(context.Background()), consts.ErrStorageNotConfigured)
	// cleanup is a no-op without storage
	assert.NoError(t, f.g.PurgeExpiredObjects(context.Background()))
}

func TestValidateURL(t *testing.T) {
	f := newGatewayFixture(t, true)
	ctx := context.Background()
	res, err := f.g.Upload(ctx, "a.zip", strings.NewReader("PK"), 2)
	require.NoError(t, err)

	assert.NoError(t, f.g.ValidateURL(ctx, res.PresignedURL))
	assert.ErrorIs(t, f.g.ValidateURL(ctx, "https://elsewhere/a.zip"), consts.ErrUploadNotFound)

	f.clock = f.clock.Add(time.Hour)
	assert.ErrorIs(t, f.g.ValidateURL(ctx, res.PresignedURL), consts.ErrUploadExpired)
}

func TestPurgeExpiredObjects(t *testing.T) {
	f := newGatewayFixture(t, true)
	ctx := context.Background()
	old, err := f.g.Upload(ctx, "old.zip", strings.NewReader("PK"), 2)
	require.NoError(t, err)
	stuck, err := f.g.Upload(ctx, "stuck.zip", strings.NewReader("PK"), 2)
	require.NoError(t, err)
	f.mem.failDel[stuck.S3Key] = true

	f.clock = f.clock.Add(90 * time.Minute)
	fresh, err := f.g.Upload(ctx, "fresh.zip", strings.NewReader("PK"), 2)
	require.NoError(t, err)

	require.NoError(t, f.g.PurgeExpiredObjects(ctx))
	_, ok := f.mem.objects[old.S3Key]
	assert.False(t, ok)
	_, ok = f.mem.objects[fresh.S3Key]
	assert.True(t, ok)

	rows, err := f.g.History(ctx)
	require.NoError(t, err)
	var keys []string
	for _, r := range rows {
		keys = append(keys, r.S3Key)
	}
	assert.ElementsMatch(t, []string{stuck.S3Key, fresh.S3Key}, keys)
}

func TestPurgeHistory(t *testing.T) {
	f := newGatewayFixture(t, true)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, f.history.Create(ctx, &model.UploadHistory{
			FileName: "x.zip", S3Key: fmt.Sprintf("Uploads/%d", i), PresignedURL: "u",
			UploadTime: f.clock.Add(-8 * 24 * time.Hour), Action: model.UploadActionUploaded,
		}))
	}
	require.NoError(t, f.history.Create(ctx, &model.UploadHistory{
		FileName: "y.zip", S3Key: "Uploads/recent", PresignedURL: "u", UploadTime: f.clock, Action: model.UploadActionUploaded,
	}))

	require.NoError(t, f.g.PurgeHistory(ctx, 7*24*time.Hour, 2, time.Millisecond))
	rows, err := f.g.History(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Uploads/recent", rows[0].S3Key)
}
