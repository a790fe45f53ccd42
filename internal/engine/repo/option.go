package repo

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"

	"github.com/go-arcade/oneupdate/pkg/cache"
)

// getJSON decodes the option stored at key into out. It reports false when
// the key is absent.
func getJSON(ctx context.Context, store cache.ICache, key string, out any) (bool, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func setJSON(ctx context.Context, store cache.ICache, key string, v any, ttl time.Duration) error {
	raw, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, raw, ttl)
}

// updateJSON runs a typed read-modify-write against key. fn returning
// cache.ErrSkipWrite leaves the stored value untouched.
func updateJSON[T any](ctx context.Context, store cache.ICache, key string, fn func(cur T, exists bool) (T, error)) error {
	return store.Update(ctx, key, func(raw []byte, exists bool) ([]byte, error) {
		var cur T
		if exists && len(raw) > 0 {
			if err := sonic.Unmarshal(raw, &cur); err != nil {
				return nil, err
			}
		}
		next, err := fn(cur, exists)
		if err != nil {
			return nil, err
		}
		return sonic.Marshal(next)
	})
}
