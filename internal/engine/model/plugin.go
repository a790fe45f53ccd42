package model

import (
	"bytes"
	"encoding/json"
)

/**
 * @file: plugin.go
 * @description: brand site plugin records and public registry payloads
 */

// StringMap decodes a JSON object of strings and treats an empty array as
// an empty map, which is how the plugin registry encodes empty objects.
type StringMap map[string]string

func (m *StringMap) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte("[]")) || bytes.Equal(b, []byte("false")) {
		*m = StringMap{}
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(StringMap, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	*m = out
	return nil
}

// RegistryInfo is the subset of the public plugin registry response we keep.
type RegistryInfo struct {
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	Version          string    `json:"version"`
	Author           string    `json:"author,omitempty"`
	Homepage         string    `json:"homepage,omitempty"`
	DownloadLink     string    `json:"download_link,omitempty"`
	Requires         string    `json:"requires,omitempty"`
	Tested           string    `json:"tested,omitempty"`
	RequiresPHP      string    `json:"requires_php,omitempty"`
	Rating           float64   `json:"rating,omitempty"`
	NumRatings       int       `json:"num_ratings,omitempty"`
	Downloaded       int64     `json:"downloaded,omitempty"`
	LastUpdated      string    `json:"last_updated,omitempty"`
	Added            string    `json:"added,omitempty"`
	ShortDescription string    `json:"short_description,omitempty"`
	Sections         StringMap `json:"sections,omitempty"`
	Icons            StringMap `json:"icons,omitempty"`
	Versions         StringMap `json:"versions,omitempty"`
}

// UpdateInfo describes an available update for an installed plugin.
type UpdateInfo struct {
	Slug       string    `json:"slug"`
	NewVersion string    `json:"new_version"`
	Package    string    `json:"package,omitempty"`
	URL        string    `json:"url,omitempty"`
	Icons      StringMap `json:"icons,omitempty"`
}

// PluginHeader holds the header fields of a plugin main file.
type PluginHeader struct {
	Name            string `json:"Name"`
	PluginURI       string `json:"PluginURI"`
	Version         string `json:"Version"`
	Description     string `json:"Description"`
	Author          string `json:"Author"`
	AuthorURI       string `json:"AuthorURI"`
	TextDomain      string `json:"TextDomain"`
	RequiresWP      string `json:"RequiresWP"`
	RequiresPHP     string `json:"RequiresPHP"`
	RequiresPlugins string `json:"RequiresPlugins"`
}

// PluginRecord is the local record of one installed plugin on a brand site.
type PluginRecord struct {
	PluginHeader
	PluginSlug        string        `json:"plugin_slug"`
	PluginPathInfo    string        `json:"plugin_path_info"`
	IsActive          bool          `json:"is_active"`
	IsPublic          bool          `json:"is_public"`
	IsUpdateAvailable bool          `json:"is_update_available"`
	PluginInfo        *RegistryInfo `json:"plugin_info,omitempty"`
	Update            *UpdateInfo   `json:"update,omitempty"`
}

// PluginMap is keyed by plugin slug.
type PluginMap map[string]PluginRecord

// Clone returns a shallow copy of the map; records are values.
func (m PluginMap) Clone() PluginMap {
	out := make(PluginMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// PluginsResponse is the body served by a brand site inventory endpoint.
type PluginsResponse struct {
	Success bool      `json:"success"`
	Plugins PluginMap `json:"plugins"`
}
