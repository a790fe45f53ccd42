package bootstrap

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/go-arcade/oneupdate/internal/engine/conf"
	"github.com/go-arcade/oneupdate/internal/engine/router"
	"github.com/go-arcade/oneupdate/internal/engine/service/plugincache"
	"github.com/go-arcade/oneupdate/pkg/cron"
	"github.com/go-arcade/oneupdate/pkg/log"
	"github.com/go-arcade/oneupdate/pkg/metrics"
	"github.com/go-arcade/oneupdate/pkg/safe"
	"github.com/go-arcade/oneupdate/pkg/shutdown"
	"github.com/go-arcade/oneupdate/pkg/trace"
)

type App struct {
	HttpApp   *fiber.App
	Metrics   *metrics.Server
	Scheduler *cron.Scheduler
	Watcher   *plugincache.Watcher
	Logger    *log.Logger
	Shutdown  *shutdown.Manager
	AppConf   conf.AppConfig
}

// InitAppFunc init app function type
type InitAppFunc func(configPath string) (*App, func(), error)

func NewApp(
	rt *router.Router,
	logger *log.Logger,
	metricsServer *metrics.Server,
	scheduler *cron.Scheduler,
	watcher *plugincache.Watcher,
	shutdownManager *shutdown.Manager,
	appConf conf.AppConfig,
) (*App, func(), error) {
	stopTrace, err := trace.InitTracerProvider(context.Background(), appConf.Trace)
	if err != nil {
		return nil, nil, err
	}

	app := &App{
		HttpApp:   rt.Router(),
		Metrics:   metricsServer,
		Scheduler: scheduler,
		Watcher:   watcher,
		Logger:    logger,
		Shutdown:  shutdownManager,
		AppConf:   appConf,
	}

	cleanup := func() {
		if watcher != nil {
			_ = watcher.Close()
		}
		stopTrace()
		log.Sync()
	}
	return app, cleanup, nil
}

// Bootstrap init app, return App instance and cleanup function
func Bootstrap(configFile string, initApp InitAppFunc) (*App, func(), error) {
	// Wire build App (所有依赖都由 wire 自动注入)
	return initApp(configFile)
}

// Run starts the listeners and background jobs, then blocks until SIGINT
// or SIGTERM and shuts everything down in reverse order.
func Run(app *App, cleanup func()) {
	appConf := app.AppConf
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Metrics.Start(); err != nil {
		log.Errorw("metrics server failed to start", "error", err)
	}

	app.Scheduler.Start()
	log.Infow("background jobs started", "jobs", app.Scheduler.Jobs())

	if app.Watcher != nil {
		safe.Go("plugin-watcher", func() { app.Watcher.Run(ctx) })
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// start HTTP server (async)
	safe.Go("http-listener", func() {
		addr := appConf.Http.Addr()
		log.Infow("HTTP listener started", "address", addr, "tls", appConf.Http.UseTLS())
		var err error
		if appConf.Http.UseTLS() {
			err = app.HttpApp.ListenTLS(addr, appConf.Http.TLS.CertFile, appConf.Http.TLS.KeyFile)
		} else {
			err = app.HttpApp.Listen(addr)
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Errorw("HTTP listener failed", "address", addr, "error", err)
			app.Shutdown.Shutdown("http listener failed")
		}
	})

	// wait for exit signal
	select {
	case sig := <-quit:
		log.Infow("received signal, shutting down gracefully", "signal", sig.String())
		app.Shutdown.Shutdown(sig.String())
	case <-app.Shutdown.Wait():
		log.Infow("shutdown requested", "reason", app.Shutdown.Reason())
	}

	timeout := time.Duration(appConf.Http.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := app.HttpApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	} else {
		log.Info("HTTP server shut down gracefully")
	}

	cancel()
	app.Scheduler.Stop()
	if err := app.Metrics.Stop(shutdownCtx); err != nil {
		log.Warnw("metrics server shutdown error", "error", err)
	}

	cleanup()
	log.Info("server shutdown complete")
}
