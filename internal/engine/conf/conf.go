package conf

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/go-arcade/oneupdate/pkg/cache"
	"github.com/go-arcade/oneupdate/pkg/database"
	"github.com/go-arcade/oneupdate/pkg/duration"
	"github.com/go-arcade/oneupdate/pkg/http"
	"github.com/go-arcade/oneupdate/pkg/log"
	"github.com/go-arcade/oneupdate/pkg/metrics"
	"github.com/go-arcade/oneupdate/pkg/storage"
	"github.com/go-arcade/oneupdate/pkg/trace"
)

/**
 * @file: conf.go
 * @description: application configuration, loaded from toml and ONEUPDATE_* env
 */

const envPrefix = "ONEUPDATE"

type GitHubConf struct {
	BaseURL         string
	Token           string // bootstrap token, the settings value takes precedence
	Branch          string
	Workflow        string
	PrivateWorkflow string
	Timeout         time.Duration
	RateLimit       float64 // requests per second
	RateBurst       int
	// run id resolution after a workflow dispatch
	ResolveAttempts     int
	ResolveInitialDelay time.Duration
	ResolveMaxDelay     time.Duration
	// TicketInput names a workflow_dispatch input that receives the ticket
	// id. Workflows echo it in run-name so the exact run can be found.
	TicketInput string
}

type RegistryConf struct {
	BaseURL         string
	DownloadBaseURL string
	Timeout         time.Duration
}

type FleetConf struct {
	Concurrency       int
	InventoryTimeout  time.Duration
	OptionsTimeout    time.Duration
	InventoryPath     string
	OptionsPath       string
	IdempotencyWindow time.Duration
	IdempotencySize   int
	TicketTTL         time.Duration
}

type BrandConf struct {
	PluginsDir string
	CacheTTL   time.Duration
	Watch      bool
}

type JobsConf struct {
	Enabled            bool
	S3CleanupSpec      string
	HistoryCleanupSpec string
	UploadTTL          time.Duration
	HistoryRetention   time.Duration
	BatchSize          int
	BatchPause         time.Duration
	JobTimeout         time.Duration
}

type AppConfig struct {
	Log      log.Conf
	Http     http.Http
	Database database.Database
	Redis    cache.Redis
	Store    cache.Store
	Storage  storage.Storage
	GitHub   GitHubConf
	Registry RegistryConf
	Fleet    FleetConf
	Brand    BrandConf
	Jobs     JobsConf
	Metrics  metrics.MetricsConfig
	Trace    trace.Conf
}

var (
	cfg  AppConfig
	mu   sync.RWMutex
	once sync.Once
)

func NewConf(confDir string) AppConfig {
	once.Do(func() {
		c, err := LoadConfigFile(confDir)
		if err != nil {
			panic(fmt.Sprintf("load config file error: %s", err))
		}
		mu.Lock()
		cfg = c
		mu.Unlock()
	})
	return Current()
}

// Current returns the most recently loaded configuration.
func Current() AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// LoadConfigFile load config file
func LoadConfigFile(confDir string) (AppConfig, error) {
	var c AppConfig

	config := viper.New()
	config.SetConfigFile(confDir) //文件名
	config.SetConfigType("toml")
	config.SetEnvPrefix(envPrefix)
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()
	setDefaults(config)

	if err := config.ReadInConfig(); err != nil {
		return c, fmt.Errorf("failed to read configuration file: %w", err)
	}
	if err := config.Unmarshal(&c, decodeHook()); err != nil {
		return c, fmt.Errorf("failed to unmarshal configuration file: %w", err)
	}

	config.WatchConfig()
	config.OnConfigChange(func(e fsnotify.Event) {
		var next AppConfig
		if err := config.Unmarshal(&next, decodeHook()); err != nil {
			log.Errorw("failed to reload configuration", "path", e.Name, "error", err)
			return
		}
		mu.Lock()
		cfg = next
		mu.Unlock()
		log.Infow("configuration reloaded", "path", e.Name, "op", e.Op.String())
	})

	log.Infow("config file loaded",
		"path", confDir,
	)
	return c, nil
}

// decodeHook lets duration fields take day/week units ("7d", "2w") on top of time.ParseDuration.
func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		durationHook,
		mapstructure.StringToSliceHookFunc(","),
	))
}

func durationHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	return duration.Parse(reflect.ValueOf(data).String())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.accessLog", true)
	v.SetDefault("http.bodyLimit", 64<<20)
	v.SetDefault("http.readTimeout", 60)
	v.SetDefault("http.writeTimeout", 120)
	v.SetDefault("http.idleTimeout", 120)
	v.SetDefault("http.shutdownTimeout", 30)
	v.SetDefault("http.auth.issuer", "oneupdate")
	v.SetDefault("http.auth.accessExpire", "12h")

	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.level", "info")

	v.SetDefault("database.driver", database.DriverSQLite)
	v.SetDefault("database.sqlitePath", "oneupdate.db")

	v.SetDefault("store.driver", "memory")
	v.SetDefault("redis.mode", "single")
	v.SetDefault("redis.address", "127.0.0.1:6379")
	v.SetDefault("redis.keyPrefix", "oneupdate:")

	v.SetDefault("storage.provider", storage.StorageS3)

	v.SetDefault("github.baseURL", "https://api.github.com")
	v.SetDefault("github.branch", "production")
	v.SetDefault("github.workflow", "oneupdate-pr-creation.yml")
	v.SetDefault("github.privateWorkflow", "oneupdate-pr-creation-private.yml")
	v.SetDefault("github.timeout", "15s")
	v.SetDefault("github.rateLimit", 5.0)
	v.SetDefault("github.rateBurst", 5)
	v.SetDefault("github.resolveAttempts", 4)
	v.SetDefault("github.resolveInitialDelay", "2s")
	v.SetDefault("github.ticketInput", "")
	v.SetDefault("github.resolveMaxDelay", "10s")

	v.SetDefault("registry.baseURL", "https://api.wordpress.org/plugins/info/1.0")
	v.SetDefault("registry.downloadBaseURL", "https://downloads.wordpress.org/plugin")
	v.SetDefault("registry.timeout", "5s")

	v.SetDefault("fleet.concurrency", 8)
	v.SetDefault("fleet.inventoryTimeout", "30s")
	v.SetDefault("fleet.optionsTimeout", "30s")
	v.SetDefault("fleet.inventoryPath", "/api/v1/plugins")
	v.SetDefault("fleet.optionsPath", "/api/v1/oneupdate-plugins-options")
	v.SetDefault("fleet.idempotencyWindow", "5m")
	v.SetDefault("fleet.idempotencySize", 4096)
	v.SetDefault("fleet.ticketTTL", "24h")

	v.SetDefault("brand.pluginsDir", "wp-content/plugins")
	v.SetDefault("brand.cacheTTL", "1h")

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.s3CleanupSpec", "@hourly")
	v.SetDefault("jobs.historyCleanupSpec", "@daily")
	v.SetDefault("jobs.uploadTTL", "1h")
	v.SetDefault("jobs.historyRetention", "7d")
	v.SetDefault("jobs.batchSize", 1000)
	v.SetDefault("jobs.batchPause", "2s")
	v.SetDefault("jobs.jobTimeout", "10m")

	v.SetDefault("metrics.host", "0.0.0.0")
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("trace.protocol", "grpc")
	v.SetDefault("trace.serviceName", "oneupdate")
}
