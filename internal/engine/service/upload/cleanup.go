package upload

import (
	"context"
	"errors"
	"time"

	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/pkg/log"
)

// PurgeExpiredObjects deletes uploaded archives older than the presign
// lifetime and then their history rows. One failing object does not stop
// the rest.
func (g *Gateway) PurgeExpiredObjects(ctx context.Context) error {
	p, err := g.provider(ctx)
	if errors.Is(err, consts.ErrStorageNotConfigured) {
		log.Debugw("skip object cleanup, storage is not configured")
		return nil
	}
	if err != nil {
		return err
	}

	objects, err := p.List(ctx, KeyPrefix)
	if err != nil {
		return err
	}
	cutoff := g.now().Add(-g.ttl)
	var deleted []string
	for _, obj := range objects {
		if !obj.LastModified.Before(cutoff) {
			continue
		}
		if err := p.Delete(ctx, obj.Key); err != nil {
			log.Warnw("delete expired archive failed", "key", obj.Key, "error", err)
			continue
		}
		deleted = append(deleted, obj.Key)
	}
	rows, err := g.history.DeleteByKeys(ctx, deleted)
	if err != nil {
		return err
	}
	log.Infow("expired archives purged", "objects", len(deleted), "rows", rows)
	return nil
}

// PurgeHistory deletes history rows older than retention in batches,
// pausing between batches to keep the database responsive.
func (g *Gateway) PurgeHistory(ctx context.Context, retention time.Duration, batch int, pause time.Duration) error {
	if batch <= 0 {
		batch = 1000
	}
	cutoff := g.now().Add(-retention)
	total, err := g.history.CountBefore(ctx, cutoff)
	if err != nil || total == 0 {
		return err
	}

	var purged int64
	for {
		n, err := g.history.DeleteBatchBefore(ctx, cutoff, batch)
		if err != nil {
			return err
		}
		purged += n
		if n < int64(batch) {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pause):
		}
	}
	log.Infow("upload history purged", "rows", purged, "cutoff", cutoff)
	return nil
}
