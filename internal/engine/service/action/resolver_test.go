package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
)

func TestStableVersions(t *testing.T) {
	got := StableVersions([]string{"1.2.0", "2.0.0-beta", "trunk", "2.0.0", "1.3.0-RC1", "1.1.0-dev"})
	assert.Equal(t, []string{"2.0.0", "1.2.0"}, got)

	opts := VersionOptions(model.StringMap{"2.0.0": "", "1.2.0": "", "2.0.0-beta": ""})
	require.Len(t, opts, 2)
	assert.Equal(t, model.VersionOption{Label: "2.0.0 (Latest)", Value: "2.0.0"}, opts[0])
	assert.Equal(t, "1.2.0", opts[1].Label)
}

func TestStableVersions_Ordering(t *testing.T) {
	assert.Equal(t, []string{"2.0", "1.9.9", "1.9", "1.0.0"}, StableVersions([]string{"1.9", "1.0.0", "2.0", "1.9.9"}))

	many := model.StringMap{}
	for _, v := range []string{"1.0", "1.1", "1.2", "1.3", "1.4", "1.5", "1.6"} {
		many[v] = ""
	}
	opts := VersionOptions(many)
	require.Len(t, opts, 5)
	assert.Equal(t, "1.6", opts[0].Value)
	assert.Equal(t, "1.2", opts[4].Value)
}

func resolverFixture() (*model.FleetPlugin, []model.Site) {
	sites := []model.Site{
		{SiteName: "A", SiteURL: "https://a.example.com"},
		{SiteName: "B", SiteURL: "https://b.example.com"},
		{SiteName: "C", SiteURL: "https://c.example.com"},
		{SiteName: "D", SiteURL: "https://d.example.com"},
	}
	plugin := &model.FleetPlugin{
		Slug:              "akismet",
		IsPublic:          true,
		AvailableVersions: model.StringMap{"5.3": "", "5.2": "", "5.4-beta": ""},
		Sites: map[string]model.SiteStatus{
			"https://a.example.com": {Version: "5.2", IsActive: true, IsUpdateAvailable: true},
			"https://b.example.com": {Version: "5.3", IsActive: true},
			"https://c.example.com": {Version: "5.3"},
		},
	}
	return plugin, sites
}

func targets(res model.Resolution) []string {
	out := []string{}
	for _, t := range res.Targets {
		out = append(out, t.SiteName)
	}
	return out
}

func TestResolve_Eligibility(t *testing.T) {
	plugin, sites := resolverFixture()
	cases := map[model.Operation][]string{
		model.OpActivate:      {"C"},
		model.OpDeactivate:    {"A", "B"},
		model.OpUpdate:        {"A"},
		model.OpInstall:       {"D"},
		model.OpChangeVersion: {"A", "B", "C"},
		model.OpRemove:        {"A", "B", "C"},
	}
	for op, want := range cases {
		res, err := Resolve(op, "akismet", plugin, sites)
		require.NoError(t, err, op)
		assert.Equal(t, want, targets(res), op)
	}

	res, _ := Resolve(model.OpUpdate, "akismet", plugin, sites)
	assert.Equal(t, StatePresentWithUpdate, res.Targets[0].State)
	assert.Equal(t, "5.3", res.DefaultVersion)
	assert.Len(t, res.Versions, 2)
}

func TestResolve_InstallPrivateRejected(t *testing.T) {
	plugin, sites := resolverFixture()
	plugin.IsPublic = false
	res, err := Resolve(model.OpInstall, "akismet", plugin, sites)
	require.NoError(t, err)
	assert.Empty(t, res.Targets)
	assert.NotEmpty(t, res.Notice)
}

func TestResolve_InstallUnknownPlugin(t *testing.T) {
	_, sites := resolverFixture()
	res, err := Resolve(model.OpInstall, "not-on-registry", nil, sites)
	require.NoError(t, err)
	assert.Empty(t, res.Targets)
	assert.NotEmpty(t, res.Notice)
}

func TestResolve_NoTargetsIsNotice(t *testing.T) {
	plugin, sites := resolverFixture()
	res, err := Resolve(model.OpUpdate, "akismet", plugin, sites[1:])
	require.NoError(t, err)
	assert.Empty(t, res.Targets)
	assert.Contains(t, res.Notice, "no site is eligible")
}

func TestResolve_UnknownOperation(t *testing.T) {
	_, err := Resolve("explode", "akismet", nil, nil)
	assert.ErrorIs(t, err, consts.ErrUnknownAction)
}
