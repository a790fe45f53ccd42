package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/pkg/http/middleware"
)

// fleetRouter registers the governing site plugin management routes
func (rt *Router) fleetRouter(r fiber.Router, auth fiber.Handler) {
	fleetGroup := r.Group("/fleet", auth)
	{
		fleetGroup.Get("/plugins", rt.fleetPlugins)                       // GET /fleet/plugins - merged plugin map of every brand site
		fleetGroup.Post("/actions", rt.executeAction)                     // POST /fleet/actions - run one operation on selected sites
		fleetGroup.Post("/actions/resolve", rt.resolveAction)             // POST /fleet/actions/resolve - eligible targets and versions
		fleetGroup.Post("/bulk-update", rt.bulkUpdate)                    // POST /fleet/bulk-update
		fleetGroup.Post("/apply-plugins", rt.applyPlugins)                // POST /fleet/apply-plugins
		fleetGroup.Post("/apply-private-plugins", rt.applyPrivatePlugins) // POST /fleet/apply-private-plugins
		fleetGroup.Get("/runs/:ticket", rt.getRun)                        // GET /fleet/runs/:ticket - resolve the workflow run of a dispatch
	}
}

func (rt *Router) fleetPlugins(c *fiber.Ctx) error {
	plugins, err := rt.Services.Fleet.Fleet(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, plugins)
	return nil
}

func (rt *Router) executeAction(c *fiber.Ctx) error {
	var req model.ActionRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	report, err := rt.Services.Action.Execute(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, report)
	c.Locals(middleware.OPERATION, "execute plugin action")
	return nil
}

type resolveRequest struct {
	Action model.Operation `json:"action" validate:"required"`
	Slug   string          `json:"slug" validate:"required"`
}

func (rt *Router) resolveAction(c *fiber.Ctx) error {
	var req resolveRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	res, err := rt.Services.Action.Preview(c.UserContext(), req.Action, req.Slug)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, res)
	return nil
}

type bulkRequest struct {
	Plugins []model.BulkItem `json:"plugins" validate:"required,min=1,dive"`
}

func (rt *Router) bulkUpdate(c *fiber.Ctx) error {
	var req bulkRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	report, err := rt.Services.Action.BulkUpdate(c.UserContext(), req.Plugins)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, report)
	c.Locals(middleware.OPERATION, "bulk update plugins")
	return nil
}

func (rt *Router) applyPlugins(c *fiber.Ctx) error {
	var req model.ApplyRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	report, err := rt.Services.Action.Apply(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, report)
	c.Locals(middleware.OPERATION, "apply plugins")
	return nil
}

func (rt *Router) applyPrivatePlugins(c *fiber.Ctx) error {
	var req model.ApplyPrivateRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	report, err := rt.Services.Action.ApplyPrivate(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, report)
	c.Locals(middleware.OPERATION, "apply private plugins")
	return nil
}

func (rt *Router) getRun(c *fiber.Ctx) error {
	ticket, err := rt.Services.Action.Run(c.UserContext(), c.Params("ticket"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, ticket)
	return nil
}
