// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package action

import (
	"fmt"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
)

// per-site plugin states
const (
	StateNotPresent        = "not-present"
	StatePresentInactive   = "present-inactive"
	StatePresentActive     = "present-active"
	StatePresentWithUpdate = "present-with-update"
)

// StateOf classifies a plugin on one site.
func StateOf(st model.SiteStatus, present bool) string {
	switch {
	case !present:
		return StateNotPresent
	case st.IsUpdateAvailable:
		return StatePresentWithUpdate
	case st.IsActive:
		return StatePresentActive
	default:
		return StatePresentInactive
	}
}

func eligible(op model.Operation, st model.SiteStatus, present bool) bool {
	switch op {
	case model.OpActivate:
		return present && !st.IsActive
	case model.OpDeactivate:
		return present && st.IsActive
	case model.OpUpdate:
		return present && st.IsUpdateAvailable
	case model.OpInstall:
		return !present
	case model.OpChangeVersion, model.OpRemove:
		return present
	}
	return false
}

func key(u string) string {
	return strings.ToLower(strings.TrimRight(u, "/"))
}

// Resolve computes the sites an operation applies to and the versions the
// user may choose from. plugin is nil when no site knows the slug. A
// resolution with no targets carries a notice instead of an error.
func Resolve(op model.Operation, slug string, plugin *model.FleetPlugin, sites []model.Site) (model.Resolution, error) {
	if !op.Valid() {
		return model.Resolution{}, consts.ErrUnknownAction
	}
	res := model.Resolution{Operation: op, Slug: slug, Targets: []model.Target{}, Versions: []model.VersionOption{}}

	statuses := map[string]model.SiteStatus{}
	reporting := mapset.NewThreadUnsafeSet[string]()
	if plugin != nil {
		for u, st := range plugin.Sites {
			statuses[key(u)] = st
			reporting.Add(key(u))
		}
	}

	// a slug neither the fleet nor the registry knows has no public archive
	if op == model.OpInstall && (plugin == nil || !plugin.IsPublic) {
		res.Notice = "install is only available for public plugins"
		return res, nil
	}

	ordered := make([]model.Site, len(sites))
	copy(ordered, sites)
	sort.SliceStable(ordered, func(i, j int) bool { return key(ordered[i].SiteURL) < key(ordered[j].SiteURL) })

	for _, site := range ordered {
		k := key(site.SiteURL)
		st, present := statuses[k], reporting.Contains(k)
		if !eligible(op, st, present) {
			continue
		}
		res.Targets = append(res.Targets, model.Target{
			SiteURL:  site.SiteURL,
			SiteName: site.SiteName,
			State:    StateOf(st, present),
			Version:  st.Version,
		})
	}

	if plugin != nil && !op.Local() {
		res.Versions = VersionOptions(plugin.AvailableVersions)
		if len(res.Versions) > 0 {
			res.DefaultVersion = res.Versions[0].Value
		} else if plugin.PluginInfo.UpdateInfo != nil {
			res.DefaultVersion = plugin.PluginInfo.UpdateInfo.NewVersion
		}
	}

	if len(res.Targets) == 0 {
		res.Notice = fmt.Sprintf("no site is eligible for %s of %s", op, slug)
	}
	return res, nil
}
