package model

import "time"

// SiteStatus is a plugin's state on one site inside a fleet record.
type SiteStatus struct {
	PluginPath        string        `json:"plugin_path"`
	Version           string        `json:"version"`
	IsActive          bool          `json:"is_active"`
	IsUpdateAvailable bool          `json:"is_update_available"`
	UpdateInfo        *UpdateInfo   `json:"update_info"`
	SiteName          string        `json:"site_name"`
	SiteURL           string        `json:"site_url"`
	PluginData        *PluginRecord `json:"plugin_data"`
}

// Inferred reports whether the entry comes from a shared plugin record
// rather than a live inventory.
func (s SiteStatus) Inferred() bool {
	return s.PluginData == nil
}

// FleetPluginInfo is the display metadata of a fleet record.
type FleetPluginInfo struct {
	Name              string      `json:"name"`
	Description       string      `json:"description"`
	Author            string      `json:"author"`
	Version           string      `json:"version"`
	PluginURI         string      `json:"plugin_uri"`
	IsPublic          bool        `json:"is_public"`
	PluginSlug        string      `json:"plugin_slug"`
	IsActive          bool        `json:"is_active"`
	IsUpdateAvailable bool        `json:"is_update_available"`
	UpdateInfo        *UpdateInfo `json:"update_info"`
	Rating            float64     `json:"rating"`
	NumRatings        int         `json:"num_ratings"`
	Downloaded        int64       `json:"downloaded"`
	LastUpdated       string      `json:"last_updated,omitempty"`
	Icon              string      `json:"icon,omitempty"`
	Requires          string      `json:"requires,omitempty"`
	Tested            string      `json:"tested,omitempty"`
	RequiresPHP       string      `json:"requires_php,omitempty"`
	Homepage          string      `json:"homepage,omitempty"`
	ShortDescription  string      `json:"short_description,omitempty"`
	AvailableVersions StringMap   `json:"available_versions"`
	PluginPathInfo    string      `json:"plugin_path_info"`
}

// FleetPlugin is the derived, fleet wide view of one plugin. It is never
// persisted.
type FleetPlugin struct {
	Slug              string                `json:"plugin_slug"`
	Name              string                `json:"name"`
	Icon              string                `json:"icon,omitempty"`
	IsPublic          bool                  `json:"is_public"`
	PluginInfo        FleetPluginInfo       `json:"plugin_info"`
	AvailableVersions StringMap             `json:"available_versions"`
	PluginPathInfo    string                `json:"plugin_path_info"`
	Sites             map[string]SiteStatus `json:"sites"`
	TotalSites        int                   `json:"total_sites"`
	ActiveSites       int                   `json:"active_sites"`
	UpdateSites       int                   `json:"update_available_sites"`
}

type FleetPluginMap map[string]FleetPlugin

// SharedPlugin records that the governing site pushed a plugin to sites,
// so it can be listed before a site reports it.
type SharedPlugin struct {
	Slug           string          `json:"slug"`
	Version        string          `json:"version"`
	IsPublic       bool            `json:"is_public"`
	PluginInfo     *RegistryInfo   `json:"plugin_info,omitempty"`
	PluginPathInfo string          `json:"plugin_path_info,omitempty"`
	Sites          map[string]bool `json:"sites"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type SharedPluginMap map[string]SharedPlugin
