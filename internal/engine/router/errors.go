package router

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/service/github"
	"github.com/go-arcade/oneupdate/internal/engine/tool"
	"github.com/go-arcade/oneupdate/pkg/http"
	"github.com/go-arcade/oneupdate/pkg/log"
)

var errBadBody = errors.New("request body could not be parsed")

var errorCodes = []struct {
	err  error
	resp *http.Response
}{
	{consts.ErrGitHubTokenMissing, http.GitHubTokenMissing},
	{consts.ErrStorageNotConfigured, http.StorageNotConfigured},
	{consts.ErrSiteTypeUnset, http.SiteTypeUnset},
	{consts.ErrUnknownAction, http.UnknownAction},
	{consts.ErrNoSites, http.NoSitesSpecified},
	{consts.ErrVersionRequired, http.VersionRequired},
	{consts.ErrVersionNotOffered, http.VersionNotOffered},
	{consts.ErrInvalidSlug, http.InvalidPluginSlug},
	{consts.ErrDuplicateSiteURL, http.DuplicateSiteURL},
	{consts.ErrDuplicateGitHubRepo, http.DuplicateGitHubRepo},
	{consts.ErrNotZip, http.NotZipFile},
	{consts.ErrInvalidSiteType, http.InvalidSiteType},
	{consts.ErrInvalidCredentials, http.InvalidCredentials},
	{consts.ErrInvalidGitHubToken, http.InvalidGitHubToken},
	{consts.ErrNoPlugins, http.NoPluginsFound},
	{consts.ErrSiteNotFound, http.SiteNotFound},
	{consts.ErrTicketNotFound, http.TicketNotFound},
	{consts.ErrUploadNotFound, http.UploadNotExists},
	{consts.ErrUploadExpired, http.UploadExpired},
	{consts.ErrRemoteUnreachable, http.RemoteUnreachable},
	{errBadBody, http.RequestParameterParsingFailed},
}

// responseOf maps a service error onto its business code. Unknown errors
// are internal.
func responseOf(err error) (*http.Response, bool) {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.resp, true
		}
	}
	var ve *tool.ValidationError
	if errors.As(err, &ve) {
		return http.ValidationFailed, true
	}
	var api *github.APIError
	if errors.As(err, &api) {
		return http.RemoteUnreachable, true
	}
	return http.InternalError, false
}

// fail writes err as an error envelope. Messages of known errors are passed
// through, anything else is logged and hidden.
func fail(c *fiber.Ctx, err error) error {
	resp, known := responseOf(err)
	if !known {
		log.WithContext(c.UserContext()).Errorw("request failed", "path", c.Path(), "error", err)
		return http.WithRepErrMsg(c, resp.Code, resp.Msg, c.Path())
	}
	return http.WithRepErrMsg(c, resp.Code, err.Error(), c.Path())
}

// bind parses the json body into v and validates it.
func bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return tool.ValidateStruct(v)
}
