package fleet

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arcade/oneupdate/internal/engine/model"
)

func mergeFixture() (Inventory, []model.Site, model.SharedPluginMap) {
	sites := []model.Site{
		{SiteName: "Alpha", SiteURL: "https://alpha.example.com"},
		{SiteName: "Beta", SiteURL: "https://beta.example.com"},
		{SiteName: "Gamma", SiteURL: "https://gamma.example.com"},
		{SiteName: "Delta", SiteURL: "https://delta.example.com"},
	}
	akismetInfo := &model.RegistryInfo{
		Name:     "Akismet Anti-spam",
		Version:  "5.3",
		Icons:    model.StringMap{"1x": "https://icons/1x.png", "2x": "https://icons/2x.png"},
		Versions: model.StringMap{"5.2": "https://dl/5.2.zip", "5.3": "https://dl/5.3.zip"},
	}
	inv := Inventory{
		"https://alpha.example.com": {
			"akismet": {
				PluginHeader:      model.PluginHeader{Name: "Akismet", Version: "5.0", Description: "alpha desc"},
				PluginSlug:        "akismet",
				PluginPathInfo:    "akismet/akismet.php",
				IsActive:          true,
				IsPublic:          true,
				IsUpdateAvailable: true,
				PluginInfo:        akismetInfo,
				Update:            &model.UpdateInfo{Slug: "akismet", NewVersion: "5.3"},
			},
		},
		"https://beta.example.com": {
			"akismet": {
				PluginHeader:   model.PluginHeader{Name: "Akismet", Version: "5.3", Description: "beta desc"},
				PluginSlug:     "akismet",
				PluginPathInfo: "akismet/akismet.php",
				IsPublic:       true,
				PluginInfo:     akismetInfo,
			},
			"custom": {
				PluginHeader:   model.PluginHeader{Author: "Acme"},
				PluginSlug:     "custom",
				PluginPathInfo: "custom/custom.php",
				IsActive:       true,
			},
		},
		"https://gamma.example.com": {},
	}
	shared := model.SharedPluginMap{
		"seo": {Slug: "seo", Version: "2.0", Sites: map[string]bool{"https://delta.example.com/": true}},
		"orphan": {Slug: "orphan", Sites: map[string]bool{"https://gone.example.com": true}},
	}
	return inv, sites, shared
}

func TestMerge_Counts(t *testing.T) {
	inv, sites, shared := mergeFixture()
	out := Merge(inv, sites, shared)

	require.Len(t, out, 3)
	ak := out["akismet"]
	assert.Equal(t, 2, ak.TotalSites)
	assert.Equal(t, 1, ak.ActiveSites)
	assert.Equal(t, 1, ak.UpdateSites)
	assert.Equal(t, "Akismet Anti-spam", ak.Name)
	assert.Equal(t, "https://icons/2x.png", ak.Icon)
	assert.True(t, ak.IsPublic)
	assert.Len(t, ak.AvailableVersions, 2)
	// first site in url order supplies the description
	assert.Equal(t, "alpha desc", ak.PluginInfo.Description)
	assert.Equal(t, "5.0", ak.Sites["https://alpha.example.com"].Version)

	custom := out["custom"]
	assert.Equal(t, "custom", custom.Name)
	assert.Equal(t, "Acme", custom.PluginInfo.Author)
	assert.False(t, custom.IsPublic)
	assert.Empty(t, custom.AvailableVersions)

	seo := out["seo"]
	require.Len(t, seo.Sites, 1)
	st := seo.Sites["https://delta.example.com"]
	assert.True(t, st.Inferred())
	assert.Equal(t, "seo/seo.php", st.PluginPath)
	assert.Equal(t, "2.0", st.Version)

	_, ok := out["orphan"]
	assert.False(t, ok)
}

func TestMerge_PermutationInvariant(t *testing.T) {
	inv, sites, shared := mergeFixture()
	want := Merge(inv, sites, shared)

	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 20; i++ {
		shuffled := append([]model.Site(nil), sites...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Merge(inv, shuffled, shared))
	}
}

func TestMerge_PresentIffReferenced(t *testing.T) {
	inv, sites, _ := mergeFixture()
	out := Merge(inv, sites, nil)
	_, ok := out["custom"]
	require.True(t, ok)

	// beta is the only site reporting custom
	delete(inv["https://beta.example.com"], "custom")
	out = Merge(inv, sites, nil)
	_, ok = out["custom"]
	assert.False(t, ok)

	// unregistered sites are ignored
	out = Merge(inv, sites[2:], nil)
	assert.Empty(t, out)
}

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, Merge(nil, nil, nil))
}
