package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/internal/engine/tool"
	"github.com/go-arcade/oneupdate/pkg/http/middleware"
)

// settingsRouter registers the governing site settings routes
func (rt *Router) settingsRouter(r fiber.Router, auth fiber.Handler) {
	settingsGroup := r.Group("/settings", auth)
	{
		settingsGroup.Get("/site-type", rt.getSiteType)
		settingsGroup.Post("/site-type", rt.setSiteType)
		settingsGroup.Get("/shared-sites", rt.getSharedSites)
		settingsGroup.Post("/shared-sites", rt.setSharedSites)
		settingsGroup.Get("/github-token", rt.getGitHubToken)
		settingsGroup.Post("/github-token", rt.setGitHubToken)
		settingsGroup.Get("/github-repos", rt.getGitHubRepos)
		settingsGroup.Get("/s3-credentials", rt.getS3Credentials)
		settingsGroup.Post("/s3-credentials", rt.setS3Credentials)
		settingsGroup.Get("/s3-health", rt.s3Health)
	}

	r.Get("/pull-requests/:owner/:repo", auth, rt.pullRequests)
}

func (rt *Router) getSiteType(c *fiber.Ctx) error {
	siteType, err := rt.Services.Settings.SiteType(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, fiber.Map{"site_type": siteType})
	return nil
}

type siteTypeRequest struct {
	SiteType string `json:"site_type" validate:"required"`
}

func (rt *Router) setSiteType(c *fiber.Ctx) error {
	var req siteTypeRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	if err := rt.Services.Settings.SetSiteType(c.UserContext(), req.SiteType); err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, fiber.Map{"site_type": req.SiteType})
	c.Locals(middleware.OPERATION, "set site type")
	return nil
}

func (rt *Router) getSharedSites(c *fiber.Ctx) error {
	sites, err := rt.Services.Settings.SharedSites(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, fiber.Map{"shared_sites": sites})
	return nil
}

type sharedSitesRequest struct {
	Sites []model.Site `json:"sites_data" validate:"required"`
}

func (rt *Router) setSharedSites(c *fiber.Ctx) error {
	var req sharedSitesRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	sites, err := rt.Services.Settings.SetSharedSites(c.UserContext(), req.Sites)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, fiber.Map{"shared_sites": sites})
	c.Locals(middleware.OPERATION, "set shared sites")
	return nil
}

func (rt *Router) getGitHubToken(c *fiber.Ctx) error {
	token, err := rt.Services.Settings.GitHubToken(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, fiber.Map{"token": token})
	return nil
}

type githubTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

func (rt *Router) setGitHubToken(c *fiber.Ctx) error {
	var req githubTokenRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	user, err := rt.Services.Settings.SetGitHubToken(c.UserContext(), req.Token)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, fiber.Map{"success": true, "user": user})
	c.Locals(middleware.OPERATION, "set github token")
	return nil
}

func (rt *Router) getGitHubRepos(c *fiber.Ctx) error {
	repos, err := rt.Services.Settings.GitHubRepos(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, fiber.Map{"repos": repos})
	return nil
}

func (rt *Router) getS3Credentials(c *fiber.Ctx) error {
	creds, err := rt.Services.Settings.S3Credentials(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, fiber.Map{"credentials": creds})
	return nil
}

type s3CredentialsRequest struct {
	Credentials model.S3Credentials `json:"credentials"`
}

func (rt *Router) setS3Credentials(c *fiber.Ctx) error {
	var req s3CredentialsRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	if err := rt.Services.Settings.SetS3Credentials(c.UserContext(), req.Credentials); err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, fiber.Map{"success": true})
	c.Locals(middleware.OPERATION, "set s3 credentials")
	return nil
}

func (rt *Router) s3Health(c *fiber.Ctx) error {
	if err := rt.Services.Settings.S3Health(c.UserContext()); err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, fiber.Map{"success": true})
	return nil
}

func (rt *Router) pullRequests(c *fiber.Ctx) error {
	page, err := rt.Services.Settings.PullRequests(c.UserContext(), model.PullRequestQuery{
		Owner:    c.Params("owner"),
		Repo:     c.Params("repo"),
		State:    c.Query("state"),
		PerPage:  tool.QueryInt(c, "per_page", 0),
		Page:     tool.QueryInt(c, "page", 0),
		Search:   c.Query("search_query"),
		PRNumber: tool.QueryInt(c, "pr_number", 0),
	})
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, page)
	return nil
}
