//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/go-arcade/oneupdate/internal/engine/bootstrap"
	"github.com/go-arcade/oneupdate/internal/engine/conf"
	"github.com/go-arcade/oneupdate/internal/engine/repo"
	"github.com/go-arcade/oneupdate/internal/engine/router"
	"github.com/go-arcade/oneupdate/internal/engine/service"
	"github.com/go-arcade/oneupdate/internal/engine/service/job"
	"github.com/go-arcade/oneupdate/pkg/cache"
	"github.com/go-arcade/oneupdate/pkg/database"
	"github.com/go-arcade/oneupdate/pkg/log"
	"github.com/go-arcade/oneupdate/pkg/metrics"
	"github.com/go-arcade/oneupdate/pkg/shutdown"
)

func initApp(configPath string) (*bootstrap.App, func(), error) {
	panic(wire.Build(
		// 配置层
		conf.ProviderSet,
		log.ProviderSet,
		// 存储层
		cache.ProviderSet,
		database.ProviderSet,
		// 仓储层
		repo.ProviderSet,
		// 服务层
		service.ProviderSet,
		job.ProviderSet,
		// 路由层
		router.ProviderSet,
		metrics.ProviderSet,
		shutdown.ProviderSet,
		// 应用层
		bootstrap.NewApp,
	))
}
