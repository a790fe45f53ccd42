package upload

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/internal/engine/repo"
	"github.com/go-arcade/oneupdate/pkg/id"
	"github.com/go-arcade/oneupdate/pkg/log"
	"github.com/go-arcade/oneupdate/pkg/storage"
)

/**
 * @file: gateway.go
 * @description: private plugin archives in object storage and their
 *               upload history
 */

const (
	KeyPrefix  = "Uploads/"
	DefaultTTL = time.Hour

	zipContentType = "application/zip"
)

// ProviderFactory opens a storage provider, storage.NewStorage in
// production.
type ProviderFactory func(*storage.Storage) (storage.StorageProvider, error)

type Gateway struct {
	settings repo.ISettingsRepository
	history  repo.IUploadHistoryRepository
	base     storage.Storage
	factory  ProviderFactory
	ttl      time.Duration
	now      func() time.Time
}

func NewGateway(settings repo.ISettingsRepository, history repo.IUploadHistoryRepository, base storage.Storage, factory ProviderFactory, ttl time.Duration) *Gateway {
	if factory == nil {
		factory = storage.NewStorage
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Gateway{settings: settings, history: history, base: base, factory: factory, ttl: ttl, now: time.Now}
}

// provider builds the storage client from the stored credentials, falling
// back to the configured bucket.
func (g *Gateway) provider(ctx context.Context) (storage.StorageProvider, error) {
	cfg := g.base
	creds, err := g.settings.S3Credentials(ctx)
	if err != nil {
		return nil, err
	}
	if creds != nil {
		cfg.AccessKey = creds.AccessKey
		cfg.SecretKey = creds.SecretKey
		cfg.Bucket = creds.BucketName
		cfg.Endpoint = creds.Endpoint
		cfg.Region = creds.Region
	}
	if cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, consts.ErrStorageNotConfigured
	}
	return g.factory(&cfg)
}

// Upload stores a zip archive under a unique key, presigns it and records
// the upload.
func (g *Gateway) Upload(ctx context.Context, fileName string, body io.Reader, size int64) (*model.UploadResult, error) {
	base := filepath.Base(fileName)
	if !strings.EqualFold(path.Ext(base), ".zip") {
		return nil, consts.ErrNotZip
	}
	p, err := g.provider(ctx)
	if err != nil {
		return nil, err
	}

	key, err := p.PutObject(ctx, KeyPrefix+id.GetUlid()+"_"+base, body, size, zipContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", consts.ErrRemoteUnreachable, err)
	}
	url, err := p.PresignGet(ctx, key, g.ttl)
	if err != nil {
		return nil, err
	}

	now := g.now()
	row := &model.UploadHistory{
		FileName:     base,
		S3Key:        key,
		PresignedURL: url,
		UploadTime:   now,
		Action:       model.UploadActionUploaded,
		Meta:         datatypes.JSONMap{"size": size, "content_type": zipContentType},
	}
	if err := g.history.Create(ctx, row); err != nil {
		return nil, err
	}
	log.Infow("plugin archive uploaded", "key", key, "size", size)
	return &model.UploadResult{
		Message:      "File uploaded successfully",
		PresignedURL: url,
		S3Key:        key,
		ExpiresAt:    row.ExpiresAt(g.ttl),
	}, nil
}

func (g *Gateway) History(ctx context.Context) ([]model.UploadHistory, error) {
	return g.history.ListNewestFirst(ctx)
}

// ValidateURL accepts only presigned urls this site issued that have not
// expired yet.
func (g *Gateway) ValidateURL(ctx context.Context, url string) error {
	row, err := g.history.FindByPresignedURL(ctx, url)
	if err != nil {
		return err
	}
	if row == nil {
		return consts.ErrUploadNotFound
	}
	if !g.now().Before(row.ExpiresAt(g.ttl)) {
		return consts.ErrUploadExpired
	}
	return nil
}

// Health lists buckets with the current credentials.
func (g *Gateway) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	p, err := g.provider(ctx)
	if err != nil {
		return err
	}
	return p.Health(ctx)
}
