package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFullPath(t *testing.T) {
	assert.Equal(t, "Uploads/a.zip", getFullPath("", "/Uploads/a.zip"))
	assert.Equal(t, "base/Uploads/a.zip", getFullPath("/base/", "Uploads/a.zip"))
}

func TestNewStorage_Unsupported(t *testing.T) {
	_, err := NewStorage(&Storage{Provider: "ftp"})
	assert.Error(t, err)
}

func TestS3PresignGet_OneHour(t *testing.T) {
	p, err := NewStorage(&Storage{
		Provider:  StorageS3,
		AccessKey: "AKIAEXAMPLE",
		SecretKey: "secret",
		Region:    "us-east-1",
		Bucket:    "plugins",
	})
	require.NoError(t, err)

	raw, err := p.PresignGet(context.Background(), "Uploads/x_plugin.zip", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
	assert.Contains(t, u.Path, "Uploads/x_plugin.zip")
}

func TestMinioPresignGet(t *testing.T) {
	p, err := NewStorage(&Storage{
		Provider:  StorageMinio,
		AccessKey: "minio",
		SecretKey: "minio123",
		Endpoint:  "localhost:9000",
		Region:    "us-east-1",
		Bucket:    "plugins",
	})
	require.NoError(t, err)

	raw, err := p.PresignGet(context.Background(), "Uploads/y.zip", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, raw, "X-Amz-Expires=3600")
}
