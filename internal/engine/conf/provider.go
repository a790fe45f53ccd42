package conf

import (
	"github.com/google/wire"

	"github.com/go-arcade/oneupdate/pkg/cache"
	"github.com/go-arcade/oneupdate/pkg/database"
	"github.com/go-arcade/oneupdate/pkg/http"
	"github.com/go-arcade/oneupdate/pkg/log"
	"github.com/go-arcade/oneupdate/pkg/metrics"
	"github.com/go-arcade/oneupdate/pkg/trace"
)

// ProviderSet 提供配置相关的依赖
var ProviderSet = wire.NewSet(
	ProvideConf,
	ProvideHttpConf,
	ProvideLogConf,
	ProvideDatabaseConf,
	ProvideRedisConf,
	ProvideStoreConf,
	ProvideMetricsConf,
	ProvideTraceConf,
)

func ProvideConf(configFile string) AppConfig {
	return NewConf(configFile)
}

func ProvideHttpConf(c AppConfig) *http.Http { return &c.Http }

func ProvideLogConf(c AppConfig) *log.Conf { return &c.Log }

func ProvideDatabaseConf(c AppConfig) database.Database { return c.Database }

func ProvideRedisConf(c AppConfig) cache.Redis { return c.Redis }

func ProvideStoreConf(c AppConfig) cache.Store { return c.Store }

func ProvideMetricsConf(c AppConfig) metrics.MetricsConfig { return c.Metrics }

func ProvideTraceConf(c AppConfig) trace.Conf { return c.Trace }
