package tool

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareVersions_Order(t *testing.T) {
	in := []string{"1.9", "1.0.0", "2.0", "1.9.9"}
	sort.Slice(in, func(i, j int) bool { return CompareVersions(in[i], in[j]) > 0 })
	assert.Equal(t, []string{"2.0", "1.9.9", "1.9", "1.0.0"}, in)
}

func TestCompareVersions_TotalOrder(t *testing.T) {
	assert.Equal(t, 0, CompareVersions("1.0", "1.0"))
	assert.NotEqual(t, 0, CompareVersions("1.0", "1.0.0"))
	assert.Equal(t, -CompareVersions("1.0", "1.0.0"), CompareVersions("1.0.0", "1.0"))
	assert.Equal(t, 1, CompareVersions("1.10", "1.9"))
}

func TestIsNewer(t *testing.T) {
	assert.True(t, IsNewer("1.0.0", "1.0.1"))
	assert.True(t, IsNewer("5.3", "5.3.1"))
	assert.False(t, IsNewer("2.0", "2.0.0"))
	assert.False(t, IsNewer("2.1", "2.0.9"))
	assert.False(t, IsNewer("1.0", ""))
	assert.True(t, IsNewer("", "1.0"))
	assert.True(t, IsNewer("1.0-custom.x", "1.1"))
}
