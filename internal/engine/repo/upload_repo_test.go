package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/pkg/database"
)

func newUploadRepo(t *testing.T) IUploadHistoryRepository {
	t.Helper()
	db, err := database.NewDatabase(database.Database{Driver: database.DriverSQLite, SQLitePath: "file::memory:"})
	require.NoError(t, err)
	gdb := database.NewGormDB(db)
	require.NoError(t, AutoMigrate(gdb))
	return NewUploadHistoryRepo(gdb)
}

func seed(t *testing.T, r IUploadHistoryRepository, key string, at time.Time) {
	t.Helper()
	require.NoError(t, r.Create(context.Background(), &model.UploadHistory{
		FileName:     key + ".zip",
		S3Key:        "Uploads/" + key,
		PresignedURL: "https://bucket/" + key,
		UploadTime:   at,
		Action:       model.UploadActionUploaded,
	}))
}

func TestUploadHistoryRepo_ListNewestFirst(t *testing.T) {
	r := newUploadRepo(t)
	now := time.Now().UTC()
	seed(t, r, "old", now.Add(-2*time.Hour))
	seed(t, r, "new", now)

	rows, err := r.ListNewestFirst(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Uploads/new", rows[0].S3Key)

	found, err := r.FindByPresignedURL(context.Background(), "https://bucket/old")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "old.zip", found.FileName)

	missing, err := r.FindByPresignedURL(context.Background(), "https://bucket/none")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUploadHistoryRepo_DeleteBatchBefore(t *testing.T) {
	ctx := context.Background()
	r := newUploadRepo(t)
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		seed(t, r, fmt.Sprintf("k%d", i), now.Add(-10*24*time.Hour))
	}
	seed(t, r, "fresh", now)

	cutoff := now.Add(-7 * 24 * time.Hour)
	n, err := r.CountBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	deleted, err := r.DeleteBatchBefore(ctx, cutoff, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	n, _ = r.CountBefore(ctx, cutoff)
	assert.EqualValues(t, 3, n)

	expired, err := r.UploadedBefore(ctx, cutoff)
	require.NoError(t, err)
	keys := make([]string, 0, len(expired))
	for _, e := range expired {
		keys = append(keys, e.S3Key)
	}
	deleted, err = r.DeleteByKeys(ctx, keys)
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)

	rows, _ := r.ListNewestFirst(ctx)
	require.Len(t, rows, 1)
	assert.Equal(t, "Uploads/fresh", rows[0].S3Key)
}
