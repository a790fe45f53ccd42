package repo

import (
	"context"
	"errors"
	"time"

	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/pkg/cache"
)

// TokenRepo keeps the blacklist of revoked admin tokens.
type TokenRepo struct {
	cache.ICache
}

func NewTokenRepo(store cache.ICache) *TokenRepo {
	return &TokenRepo{ICache: store}
}

// Revoke blacklists a token id until it would have expired anyway.
func (tr *TokenRepo) Revoke(ctx context.Context, tokenId string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return tr.Set(ctx, consts.RevokedKeyPrefix+tokenId, []byte("1"), ttl)
}

func (tr *TokenRepo) IsRevoked(ctx context.Context, tokenId string) (bool, error) {
	_, err := tr.Get(ctx, consts.RevokedKeyPrefix+tokenId)
	if errors.Is(err, cache.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
