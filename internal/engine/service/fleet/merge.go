package fleet

import (
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/go-arcade/oneupdate/internal/engine/model"
)

/**
 * @file: merge.go
 * @description: builds the fleet plugin map from per-site inventories.
 *               Sites are visited in canonical order (lowercased url), and for
 *               every display field the first site supplying a non-empty
 *               value wins, so the result does not depend on input order.
 */

const defaultVersion = "0.0.0"

var iconPriority = []string{"2x", "1x", "svg", "default"}

// canonical returns sites sorted by normalized url, then name.
func canonical(sites []model.Site) []model.Site {
	out := make([]model.Site, len(sites))
	copy(out, sites)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].BaseURL()), strings.ToLower(out[j].BaseURL())
		if a != b {
			return a < b
		}
		return out[i].SiteName < out[j].SiteName
	})
	return out
}

func lookup(inv Inventory, site model.Site) model.PluginMap {
	if p, ok := inv[site.SiteURL]; ok {
		return p
	}
	for u, p := range inv {
		if model.SameURL(u, site.SiteURL) {
			return p
		}
	}
	return nil
}

func sharedOn(sp model.SharedPlugin, site model.Site) bool {
	for u, ok := range sp.Sites {
		if ok && model.SameURL(u, site.SiteURL) {
			return true
		}
	}
	return false
}

// Merge combines inventories of the registered sites with the shared
// plugin records. A plugin is listed iff at least one registered site
// reports it or is recorded as having received it.
func Merge(inv Inventory, sites []model.Site, shared model.SharedPluginMap) model.FleetPluginMap {
	sites = canonical(sites)
	perSite := make([]model.PluginMap, len(sites))
	slugs := mapset.NewThreadUnsafeSet[string]()
	for i, site := range sites {
		perSite[i] = lookup(inv, site)
		for slug := range perSite[i] {
			slugs.Add(slug)
		}
	}
	for slug := range shared {
		slugs.Add(slug)
	}

	out := make(model.FleetPluginMap, slugs.Cardinality())
	for _, slug := range slugs.ToSlice() {
		sp, hasShared := shared[slug]
		statuses := make(map[string]model.SiteStatus)
		var records []model.PluginRecord

		for i, site := range sites {
			if rec, ok := perSite[i][slug]; ok {
				rec := rec
				records = append(records, rec)
				statuses[site.SiteURL] = liveStatus(slug, site, &rec)
				continue
			}
			if hasShared && sharedOn(sp, site) {
				statuses[site.SiteURL] = inferredStatus(slug, site, sp)
			}
		}
		if len(statuses) == 0 {
			continue
		}

		info := buildInfo(slug, records, sp, hasShared)
		fp := model.FleetPlugin{
			Slug:              slug,
			Name:              info.Name,
			Icon:              info.Icon,
			IsPublic:          info.IsPublic,
			PluginInfo:        info,
			AvailableVersions: info.AvailableVersions,
			PluginPathInfo:    info.PluginPathInfo,
			Sites:             statuses,
			TotalSites:        len(statuses),
		}
		for _, st := range statuses {
			if st.IsActive {
				fp.ActiveSites++
			}
			if st.IsUpdateAvailable {
				fp.UpdateSites++
			}
		}
		out[slug] = fp
	}
	return out
}

func defaultPath(slug string) string {
	return slug + "/" + slug + ".php"
}

func liveStatus(slug string, site model.Site, rec *model.PluginRecord) model.SiteStatus {
	path := rec.PluginPathInfo
	if path == "" {
		path = defaultPath(slug)
	}
	version := rec.Version
	if version == "" {
		version = defaultVersion
	}
	return model.SiteStatus{
		PluginPath:        path,
		Version:           version,
		IsActive:          rec.IsActive,
		IsUpdateAvailable: rec.IsUpdateAvailable,
		UpdateInfo:        rec.Update,
		SiteName:          site.SiteName,
		SiteURL:           site.SiteURL,
		PluginData:        rec,
	}
}

// inferredStatus stands for a site that received the plugin but did not
// report it, e.g. because it was unreachable.
func inferredStatus(slug string, site model.Site, sp model.SharedPlugin) model.SiteStatus {
	path := sp.PluginPathInfo
	if path == "" {
		path = defaultPath(slug)
	}
	version := sp.Version
	if version == "" {
		version = defaultVersion
	}
	return model.SiteStatus{
		PluginPath: path,
		Version:    version,
		SiteName:   site.SiteName,
		SiteURL:    site.SiteURL,
	}
}

func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// registryInfo picks the registry data used for display: the shared record
// when it is public and carries a version history, else the first site
// record that has any.
func registryInfo(records []model.PluginRecord, sp model.SharedPlugin, hasShared bool) *model.RegistryInfo {
	if hasShared && sp.IsPublic && sp.PluginInfo != nil && len(sp.PluginInfo.Versions) > 0 {
		return sp.PluginInfo
	}
	for _, r := range records {
		if r.PluginInfo != nil && r.PluginInfo.Name != "" {
			return r.PluginInfo
		}
	}
	return nil
}

func buildInfo(slug string, records []model.PluginRecord, sp model.SharedPlugin, hasShared bool) model.FleetPluginInfo {
	reg := registryInfo(records, sp, hasShared)
	if reg == nil {
		reg = &model.RegistryInfo{}
	}

	info := model.FleetPluginInfo{
		PluginSlug:        slug,
		IsPublic:          hasShared && sp.IsPublic,
		AvailableVersions: model.StringMap{},
	}
	var (
		names, descs, authors, versions, uris, paths []string
		icons                                        []model.StringMap
	)
	names = append(names, reg.Name)
	versions = append(versions, reg.Version)
	icons = append(icons, reg.Icons)
	for _, r := range records {
		names = append(names, r.Name)
		descs = append(descs, r.Description)
		authors = append(authors, r.Author)
		versions = append(versions, r.Version)
		uris = append(uris, r.PluginURI)
		paths = append(paths, r.PluginPathInfo)
		info.IsPublic = info.IsPublic || r.IsPublic
		info.IsActive = info.IsActive || r.IsActive
		info.IsUpdateAvailable = info.IsUpdateAvailable || r.IsUpdateAvailable
		if info.UpdateInfo == nil && r.Update != nil {
			info.UpdateInfo = r.Update
		}
		if r.PluginInfo != nil {
			icons = append(icons, r.PluginInfo.Icons)
		}
	}
	if info.UpdateInfo != nil {
		icons = append(icons, info.UpdateInfo.Icons)
	}

	info.Name = first(append(names, slug)...)
	info.Description = first(append(descs, reg.ShortDescription)...)
	info.Author = first(append(authors, reg.Author)...)
	info.Version = first(versions...)
	info.PluginURI = first(append(uris, reg.Homepage)...)
	info.PluginPathInfo = first(append(paths, sp.PluginPathInfo, defaultPath(slug))...)
	info.Icon = pickIcon(icons...)

	info.Rating = reg.Rating
	info.NumRatings = reg.NumRatings
	info.Downloaded = reg.Downloaded
	info.LastUpdated = reg.LastUpdated
	info.Requires = reg.Requires
	info.Tested = reg.Tested
	info.RequiresPHP = reg.RequiresPHP
	info.Homepage = reg.Homepage
	info.ShortDescription = reg.ShortDescription
	if info.IsPublic {
		for k, v := range reg.Versions {
			info.AvailableVersions[k] = v
		}
	}
	return info
}

// pickIcon walks the icon sets in order and returns the first icon found
// by size priority.
func pickIcon(sets ...model.StringMap) string {
	for _, set := range sets {
		for _, k := range iconPriority {
			if v := set[k]; v != "" {
				return v
			}
		}
	}
	return ""
}
