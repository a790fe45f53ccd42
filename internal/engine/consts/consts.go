package consts

// site types
const (
	SiteTypeGoverning = "governing-site"
	SiteTypeBrand     = "brand-site"
)

// option store keys
const (
	OptionSiteType      = "oneupdate_site_type"
	OptionSharedSites   = "oneupdate_shared_sites"
	OptionSharedPlugins = "oneupdate_shared_plugins"
	OptionGitHubToken   = "oneupdate_gh_token"
	OptionS3Credentials = "oneupdate_s3_credentials"
	OptionPublicKey     = "oneupdate_child_site_public_key"
	OptionActivePlugins = "active_plugins"
	OptionPluginOptions = "oneupdate_plugins_options"
	TransientPlugins    = "oneupdate_get_plugins"

	TicketKeyPrefix   = "oneupdate_ticket:"
	RunClaimKeyPrefix = "oneupdate_run_claim:"
	RevokedKeyPrefix  = "oneupdate_revoked:"
)

// PublicKeyLength is the length of a brand site public key.
const PublicKeyLength = 128

// plugin_type values sent to the PR workflow and options endpoint
const (
	PluginTypeAddUpdate = "add_update"
	PluginTypeRemove    = "remove"

	PluginPublic  = "public"
	PluginPrivate = "private"
)

// HelloDollyPath is the install path of the bundled Hello Dolly plugin.
const (
	HelloDollyPath = "hello.php"
	HelloDollySlug = "hello-dolly"
)
