package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/go-arcade/oneupdate/pkg/http"
	"github.com/go-arcade/oneupdate/pkg/http/middleware"
)

// uploadRouter registers private plugin upload routes
func (rt *Router) uploadRouter(r fiber.Router, auth fiber.Handler) {
	uploadGroup := r.Group("/uploads", auth)
	{
		uploadGroup.Post("/", rt.uploadPlugin)        // POST /uploads - upload a private plugin zip
		uploadGroup.Get("/history", rt.uploadHistory) // GET /uploads/history - newest first
	}
}

// uploadPlugin stores the multipart file field and returns its presigned url
func (rt *Router) uploadPlugin(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return http.WithRepErrMsg(c, http.BadRequest.Code, "file is required", c.Path())
	}

	f, err := file.Open()
	if err != nil {
		return fail(c, err)
	}
	defer f.Close()

	result, err := rt.Services.Upload.Upload(c.UserContext(), file.Filename, f, file.Size)
	if err != nil {
		return fail(c, err)
	}

	c.Locals(middleware.DETAIL, result)
	c.Locals(middleware.OPERATION, "upload plugin")
	return nil
}

func (rt *Router) uploadHistory(c *fiber.Ctx) error {
	rows, err := rt.Services.Upload.History(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, fiber.Map{"history": rows})
	return nil
}
