package cache

import (
	"fmt"

	"github.com/go-arcade/oneupdate/pkg/log"
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(ProvideICache)

// Store selects the option store backend.
type Store struct {
	Driver string // memory | redis
}

// ProvideICache builds the configured backend and a cleanup closing it.
func ProvideICache(store Store, conf Redis) (ICache, func(), error) {
	switch store.Driver {
	case "redis":
		client, err := NewRedis(conf)
		if err != nil {
			return nil, nil, err
		}
		rc := NewRedisCache(client, conf.KeyPrefix)
		return rc, func() {
			if err := rc.Close(); err != nil {
				log.Warnw("close redis failed", "error", err)
			}
		}, nil
	case "memory", "":
		log.Warnw("using in-process option store, state is lost on restart")
		return NewMemoryCache(0), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", store.Driver)
	}
}
