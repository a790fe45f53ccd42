package service

import (
	"github.com/google/wire"

	"github.com/go-arcade/oneupdate/internal/engine/conf"
	"github.com/go-arcade/oneupdate/internal/engine/repo"
	"github.com/go-arcade/oneupdate/internal/engine/service/job"
	"github.com/go-arcade/oneupdate/internal/engine/service/plugincache"
	"github.com/go-arcade/oneupdate/pkg/cache"
	"github.com/go-arcade/oneupdate/pkg/log"
)

// ProviderSet 提供服务层相关的依赖
var ProviderSet = wire.NewSet(
	ProvideServices,
	ProvideCleaner,
	ProvideWatcher,
)

// ProvideServices 提供统一的 Services 实例
func ProvideServices(cfg conf.AppConfig, store cache.ICache, repos *repo.Repositories) *Services {
	return NewServices(cfg, store, repos)
}

// ProvideCleaner exposes the upload gateway to the cleanup jobs.
func ProvideCleaner(s *Services) job.Cleaner {
	return s.Upload
}

// ProvideWatcher watches the brand plugin directory when enabled. A missing
// directory only disables the watcher.
func ProvideWatcher(cfg conf.AppConfig, s *Services) *plugincache.Watcher {
	if !cfg.Brand.Watch {
		return nil
	}
	w, err := plugincache.NewWatcher(s.Plugins, cfg.Brand.PluginsDir)
	if err != nil {
		log.Warnw("plugin directory watcher disabled", "dir", cfg.Brand.PluginsDir, "error", err)
		return nil
	}
	return w
}
