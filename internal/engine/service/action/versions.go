package action

import (
	"slices"
	"strings"

	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/internal/engine/tool"
)

const (
	versionLimit = 5
	latestSuffix = " (Latest)"
)

var unstableMarkers = []string{"alpha", "beta", "rc", "dev"}

func stable(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	if lv == "" || lv == "trunk" {
		return false
	}
	for _, m := range unstableMarkers {
		if strings.Contains(lv, m) {
			return false
		}
	}
	return true
}

// StableVersions drops pre-release tags and trunk and returns the rest,
// newest first, without duplicates.
func StableVersions(versions []string) []string {
	out := make([]string, 0, len(versions))
	for _, v := range versions {
		if stable(v) && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b string) int { return tool.CompareVersions(b, a) })
	return out
}

// VersionOptions returns the newest stable versions, at most five, the
// first one labelled as latest.
func VersionOptions(available model.StringMap) []model.VersionOption {
	keys := make([]string, 0, len(available))
	for k := range available {
		keys = append(keys, k)
	}
	vs := StableVersions(keys)
	if len(vs) > versionLimit {
		vs = vs[:versionLimit]
	}
	opts := make([]model.VersionOption, 0, len(vs))
	for i, v := range vs {
		label := v
		if i == 0 {
			label += latestSuffix
		}
		opts = append(opts, model.VersionOption{Label: label, Value: v})
	}
	return opts
}
