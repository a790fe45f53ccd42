package consts

import "errors"

// configuration
var (
	ErrGitHubTokenMissing   = errors.New("github token is not set")
	ErrStorageNotConfigured = errors.New("s3 credentials are not set")
	ErrSiteTypeUnset        = errors.New("site type is not set")
)

// remote
var ErrRemoteUnreachable = errors.New("remote site unreachable")

// validation
var (
	ErrUnknownAction       = errors.New("invalid action specified")
	ErrNoSites             = errors.New("no sites specified")
	ErrVersionRequired     = errors.New("plugin version is required")
	ErrVersionNotOffered   = errors.New("version is not one of the selectable releases")
	ErrInvalidSlug         = errors.New("invalid plugin slug")
	ErrDuplicateSiteURL    = errors.New("brand site already exists")
	ErrDuplicateGitHubRepo = errors.New("github repository already exists in one of brand sites")
	ErrNotZip              = errors.New("only zip files are allowed")
	ErrInvalidSiteType     = errors.New("invalid site type")
	ErrInvalidCredentials  = errors.New("invalid s3 credentials provided")
	ErrInvalidGitHubToken  = errors.New("invalid github token")
	ErrNoPlugins           = errors.New("no plugins found")
	ErrSiteNotFound        = errors.New("site not found")
	ErrTicketNotFound      = errors.New("dispatch ticket not found")
	ErrUploadNotFound      = errors.New("upload does not exist")
	ErrUploadExpired       = errors.New("upload reference has expired")
)
