package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/internal/engine/service/plugincache"
	"github.com/go-arcade/oneupdate/pkg/http"
	"github.com/go-arcade/oneupdate/pkg/http/middleware"
)

/**
 * @file: router_brand.go
 * @description: brand site endpoints called by the governing site
 */

func (rt *Router) brandRouter(r fiber.Router, auth, pluginToken, webhookToken fiber.Handler) {
	r.Get("/plugins", pluginToken, rt.localPlugins)
	r.Get("/oneupdate-plugins-options", pluginToken, rt.getPluginOptions)
	r.Post("/oneupdate-plugins-options", pluginToken, rt.setPluginOptions)
	r.Post("/hooks/:event", pluginToken, rt.pluginEvent)

	// 支持 ?secret= 参数, 供部署流水线回调
	r.Get("/webhook/rebuild-transient", webhookToken, rt.rebuildTransient)
	r.Post("/webhook/rebuild-transient", webhookToken, rt.rebuildTransient)

	r.Get("/secret-key", auth, rt.getSecretKey)
	r.Post("/secret-key/regenerate", auth, rt.regenerateSecretKey)
}

func (rt *Router) localPlugins(c *fiber.Ctx) error {
	plugins, err := rt.Services.Plugins.Snapshot(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, plugins)
	return nil
}

func (rt *Router) getPluginOptions(c *fiber.Ctx) error {
	options, err := rt.Services.Plugins.Options(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, options)
	return nil
}

func (rt *Router) setPluginOptions(c *fiber.Ctx) error {
	var req model.OptionsRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	res, err := rt.Services.Plugins.ApplyOptions(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, res)
	return nil
}

type pluginEventRequest struct {
	Plugin string `json:"plugin"`
}

func (rt *Router) pluginEvent(c *fiber.Ctx) error {
	event := c.Params("event")
	switch event {
	case plugincache.EventActivated, plugincache.EventDeactivated, plugincache.EventDeleted, plugincache.EventUpgraded:
	default:
		return http.WithRepErrMsg(c, http.UnknownEvent.Code, http.UnknownEvent.Msg+": "+event, c.Path())
	}

	req := pluginEventRequest{Plugin: c.Query("plugin")}
	if len(c.Body()) > 0 {
		if err := bind(c, &req); err != nil {
			return fail(c, err)
		}
	}
	if err := rt.Services.Plugins.HandleEvent(c.UserContext(), event, req.Plugin); err != nil {
		return http.WithRepErrMsg(c, http.BadRequest.Code, err.Error(), c.Path())
	}
	c.Locals(middleware.OPERATION, "plugin "+event)
	return nil
}

func (rt *Router) rebuildTransient(c *fiber.Ctx) error {
	plugins, err := rt.Services.Plugins.Refresh(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, fiber.Map{"success": true, "count": len(plugins)})
	c.Locals(middleware.OPERATION, "rebuild plugin cache")
	return nil
}

func (rt *Router) getSecretKey(c *fiber.Ctx) error {
	key, err := rt.Services.Settings.PublicKey(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, fiber.Map{"secret_key": key})
	return nil
}

func (rt *Router) regenerateSecretKey(c *fiber.Ctx) error {
	key, err := rt.Services.Settings.RegeneratePublicKey(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, fiber.Map{"secret_key": key})
	c.Locals(middleware.OPERATION, "regenerate secret key")
	return nil
}
