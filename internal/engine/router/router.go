package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/go-arcade/oneupdate/internal/engine/repo"
	"github.com/go-arcade/oneupdate/internal/engine/service"
	"github.com/go-arcade/oneupdate/pkg/http"
	"github.com/go-arcade/oneupdate/pkg/http/middleware"
	"github.com/go-arcade/oneupdate/pkg/shutdown"
	"github.com/go-arcade/oneupdate/pkg/version"
)

/**
 * @file: router.go
 * @description: setup router
 *  		     governing site api and brand site plugin endpoints
 */

const apiPrefix = "/api/v1"

type Router struct {
	Http     *http.Http
	Services *service.Services
	Tokens   *repo.TokenRepo
	Shutdown *shutdown.Manager
}

func NewRouter(httpConf *http.Http, services *service.Services, tokens *repo.TokenRepo, sm *shutdown.Manager) *Router {
	return &Router{
		Http:     httpConf,
		Services: services,
		Tokens:   tokens,
		Shutdown: sm,
	}
}

func (rt *Router) draining() bool {
	return rt.Shutdown != nil && rt.Shutdown.IsShuttingDown()
}

func (rt *Router) Router() *fiber.App {
	bodyLimit := rt.Http.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = 64 << 20
	}

	app := fiber.New(fiber.Config{
		AppName:               "OneUpdate",
		DisableStartupMessage: true,
		ReadTimeout:           time.Duration(rt.Http.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(rt.Http.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(rt.Http.IdleTimeout) * time.Second,
		BodyLimit:             bodyLimit, // 私有插件 zip 上传
	})

	// 中间件
	app.Use(
		middleware.ExceptionMiddleware,
		cors.New(),
		middleware.RequestMiddleware(),
		middleware.TraceMiddleware("oneupdate"),
		middleware.AccessLogMiddleware(rt.Http.AccessLog),
		middleware.UnifiedResponseMiddleware(),
	)

	// 健康检查
	app.Get("/health", func(c *fiber.Ctx) error {
		if rt.draining() {
			return c.Status(fiber.StatusServiceUnavailable).SendString("draining")
		}
		return c.SendString("ok")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.GetVersion())
	})

	if rt.Http.PProf {
		rt.debugRouter(app.Group("/debug"), middleware.AuthorizationMiddleware(rt.Http.Auth.SecretKey, rt.Tokens))
	}

	rt.routerGroup(app.Group(apiPrefix))

	// 找不到路径时的处理 - 必须在所有路由注册之后
	app.Use(func(c *fiber.Ctx) error {
		return http.WithRepErrMsg(c, http.NotFound.Code, "request path not found", c.Path())
	})

	return app
}

func (rt *Router) routerGroup(r fiber.Router) {
	auth := middleware.AuthorizationMiddleware(rt.Http.Auth.SecretKey, rt.Tokens)
	pluginToken := middleware.PluginTokenMiddleware(rt.Services.Settings.PublicKey, false)
	webhookToken := middleware.PluginTokenMiddleware(rt.Services.Settings.PublicKey, true)

	r.Get("/health", func(c *fiber.Ctx) error {
		if rt.draining() {
			return http.WithRepErrMsg(c, http.ServiceUnavailable.Code, "draining", c.Path())
		}
		c.Locals(middleware.DETAIL, fiber.Map{"status": "ok"})
		return nil
	})

	// governing site
	rt.authRouter(r, auth)
	rt.fleetRouter(r, auth)
	rt.settingsRouter(r, auth)
	rt.uploadRouter(r, auth)

	// brand site
	rt.brandRouter(r, auth, pluginToken, webhookToken)
}
