package service

import (
	"github.com/go-arcade/oneupdate/internal/engine/conf"
	"github.com/go-arcade/oneupdate/internal/engine/repo"
	"github.com/go-arcade/oneupdate/internal/engine/service/action"
	"github.com/go-arcade/oneupdate/internal/engine/service/dispatch"
	"github.com/go-arcade/oneupdate/internal/engine/service/fleet"
	"github.com/go-arcade/oneupdate/internal/engine/service/github"
	"github.com/go-arcade/oneupdate/internal/engine/service/plugincache"
	"github.com/go-arcade/oneupdate/internal/engine/service/settings"
	"github.com/go-arcade/oneupdate/internal/engine/service/upload"
	"github.com/go-arcade/oneupdate/pkg/cache"
	"github.com/go-arcade/oneupdate/pkg/storage"
)

// Services 统一管理所有 service
type Services struct {
	Plugins  *plugincache.Cache
	Fleet    *fleet.Service
	Dispatch *dispatch.Dispatcher
	Action   *action.Service
	Upload   *upload.Gateway
	Settings *settings.Service
	GitHub   *github.Client
}

// NewServices 初始化所有 service
func NewServices(cfg conf.AppConfig, store cache.ICache, repos *repo.Repositories) *Services {
	registry := plugincache.NewWPOrgRegistry(cfg.Registry.BaseURL, cfg.Registry.Timeout)

	// brand site
	source := plugincache.NewDirSource(cfg.Brand.PluginsDir, repos.Settings)
	plugins := plugincache.NewCache(store, source, registry, repos.Settings, plugincache.WithTTL(cfg.Brand.CacheTTL))

	// governing site
	gh := github.NewClient(cfg.GitHub, settings.TokenSource(repos.Settings, cfg.GitHub.Token))
	uploads := upload.NewGateway(repos.Settings, repos.Uploads, cfg.Storage, storage.NewStorage, cfg.Jobs.UploadTTL)
	brands := fleet.NewRemoteClient(cfg.Fleet, repos.Settings)
	fleetService := fleet.NewService(repos.Sites, repos.Settings, fleet.NewAggregator(brands, cfg.Fleet.Concurrency))
	dispatcher := dispatch.NewDispatcher(dispatch.Config{
		GitHub:   cfg.GitHub,
		Registry: cfg.Registry,
		Fleet:    cfg.Fleet,
	}, gh, brands, store, repos.Settings, registry, uploads)

	return &Services{
		Plugins:  plugins,
		Fleet:    fleetService,
		Dispatch: dispatcher,
		Action:   action.NewService(fleetService, dispatcher, registry),
		Upload:   uploads,
		Settings: settings.NewService(repos.Settings, repos.Sites, gh, uploads),
		GitHub:   gh,
	}
}
