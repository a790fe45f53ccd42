package tool

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CompareVersions orders plugin version strings by their dot separated
// numeric components, missing trailing components counting as zero.
// Non numeric components compare as zero. Numerically equal but distinct
// strings fall back to string comparison so the order is total.
func CompareVersions(a, b string) int {
	ap := strings.Split(a, ".")
	bp := strings.Split(b, ".")
	n := max(len(ap), len(bp))
	for i := 0; i < n; i++ {
		x, y := part(ap, i), part(bp, i)
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return strings.Compare(a, b)
}

func part(parts []string, i int) int64 {
	if i >= len(parts) {
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(parts[i]), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// IsNewer reports whether latest is a newer release than installed. Both
// are parsed as semantic versions when possible so pre-release tags order
// correctly; otherwise the numeric comparison applies.
func IsNewer(installed, latest string) bool {
	if latest == "" {
		return false
	}
	if installed == "" {
		return true
	}
	iv, err1 := semver.NewVersion(installed)
	lv, err2 := semver.NewVersion(latest)
	if err1 == nil && err2 == nil {
		return lv.GreaterThan(iv)
	}
	return CompareVersions(installed, latest) < 0
}
