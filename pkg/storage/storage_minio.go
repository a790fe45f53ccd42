package storage

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

type MinioStorage struct {
	Client *minio.Client
	s      *Storage
}

func newMinio(s *Storage) (*MinioStorage, error) {
	client, err := minio.New(s.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s.AccessKey, s.SecretKey, ""),
		Secure: s.UseTLS,
		Region: s.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create minio client")
	}
	return &MinioStorage{Client: client, s: s}, nil
}

func (m *MinioStorage) PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	fullPath := getFullPath(m.s.BasePath, key)
	_, err := m.Client.PutObject(ctx, m.s.Bucket, fullPath, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", errors.Wrapf(err, "put object %s", fullPath)
	}
	return fullPath, nil
}

func (m *MinioStorage) PresignGet(ctx context.Context, key string, expire time.Duration) (string, error) {
	u, err := m.Client.PresignedGetObject(ctx, m.s.Bucket, key, expire, url.Values{})
	if err != nil {
		return "", errors.Wrapf(err, "presign %s", key)
	}
	return u.String(), nil
}

func (m *MinioStorage) Delete(ctx context.Context, key string) error {
	err := m.Client.RemoveObject(ctx, m.s.Bucket, key, minio.RemoveObjectOptions{})
	return errors.Wrapf(err, "delete object %s", key)
}

func (m *MinioStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for obj := range m.Client.ListObjects(ctx, m.s.Bucket, minio.ListObjectsOptions{
		Prefix:    getFullPath(m.s.BasePath, prefix),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return out, errors.Wrap(obj.Err, "list objects")
		}
		out = append(out, ObjectInfo{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	return out, nil
}

func (m *MinioStorage) Health(ctx context.Context) error {
	_, err := m.Client.ListBuckets(ctx)
	return errors.Wrap(err, "list buckets")
}
