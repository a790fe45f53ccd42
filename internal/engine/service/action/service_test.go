package action

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arcade/oneupdate/internal/engine/conf"
	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/internal/engine/repo"
	"github.com/go-arcade/oneupdate/internal/engine/service/dispatch"
	"github.com/go-arcade/oneupdate/internal/engine/service/fleet"
	"github.com/go-arcade/oneupdate/internal/engine/service/github"
	"github.com/go-arcade/oneupdate/pkg/cache"
)

type brandStub struct {
	fetches   atomic.Int32
	mu        sync.Mutex
	inventory map[string]model.PluginMap
	posts     []string
}

func (b *brandStub) FetchInventory(_ context.Context, site model.Site) (model.PluginMap, error) {
	b.fetches.Add(1)
	return b.inventory[site.SiteURL], nil
}

func (b *brandStub) PostOptions(_ context.Context, site model.Site, req model.OptionsRequest) (*model.OptionsResult, error) {
	b.mu.Lock()
	b.posts = append(b.posts, site.SiteURL+" "+req.Options.PluginType)
	b.mu.Unlock()
	return &model.OptionsResult{Success: true}, nil
}

type workflowStub struct {
	mu    sync.Mutex
	repos []string
}

func (w *workflowStub) DispatchWorkflow(_ context.Context, repo, _, _ string, _ map[string]string) error {
	w.mu.Lock()
	w.repos = append(w.repos, repo)
	w.mu.Unlock()
	return nil
}

func (w *workflowStub) RecentRuns(context.Context, string, string, int) ([]github.WorkflowRun, error) {
	return nil, nil
}

type registryStub struct{}

func (registryStub) Lookup(_ context.Context, slug string) (*model.RegistryInfo, error) {
	if slug == "newplugin" {
		return &model.RegistryInfo{Name: "New Plugin", Version: "1.0", Versions: model.StringMap{"1.0": ""}}, nil
	}
	return &model.RegistryInfo{}, nil
}

type serviceHarness struct {
	svc    *Service
	brands *brandStub
	gh     *workflowStub
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()
	store := cache.NewMemoryCache(0)
	sites := repo.NewSiteRepo(store)
	settings := repo.NewSettingsRepo(store)
	require.NoError(t, sites.Replace(context.Background(), []model.Site{
		{SiteName: "A", SiteURL: "https://a.example.com", GitHubRepo: "acme/a", PublicKey: "k"},
		{SiteName: "B", SiteURL: "https://b.example.com", GitHubRepo: "acme/b", PublicKey: "k"},
		{SiteName: "C", SiteURL: "https://c.example.com", GitHubRepo: "acme/c", PublicKey: "k"},
	}))
	akismet := func(version string, active, update bool) model.PluginRecord {
		return model.PluginRecord{
			PluginHeader:      model.PluginHeader{Name: "Akismet", Version: version},
			PluginSlug:        "akismet",
			PluginPathInfo:    "akismet/akismet.php",
			IsActive:          active,
			IsPublic:          true,
			IsUpdateAvailable: update,
			PluginInfo:        &model.RegistryInfo{Name: "Akismet", Version: "5.3", Versions: model.StringMap{"5.3": "", "5.2": ""}},
		}
	}
	brands := &brandStub{inventory: map[string]model.PluginMap{
		"https://a.example.com": {"akismet": akismet("5.2", true, true)},
		"https://b.example.com": {"akismet": akismet("5.3", false, false)},
		"https://c.example.com": {},
	}}
	gh := &workflowStub{}
	cfg := dispatch.Config{
		GitHub: conf.GitHubConf{Branch: "production", Workflow: "oneupdate-pr-creation.yml", ResolveAttempts: 1},
		Fleet:  conf.FleetConf{Concurrency: 2, IdempotencyWindow: time.Minute},
	}
	d := dispatch.NewDispatcher(cfg, gh, brands, store, settings, registryStub{}, nil)
	fs := fleet.NewService(sites, settings, fleet.NewAggregator(brands, 2))
	return &serviceHarness{svc: NewService(fs, d, registryStub{}), brands: brands, gh: gh}
}

func TestExecute_RejectsUnknownActionBeforeContact(t *testing.T) {
	h := newServiceHarness(t)
	_, err := h.svc.Execute(context.Background(), model.ActionRequest{Action: "explode", Slug: "akismet", Sites: []string{"https://a.example.com"}})
	assert.ErrorIs(t, err, consts.ErrUnknownAction)
	assert.Zero(t, h.brands.fetches.Load())

	_, err = h.svc.Execute(context.Background(), model.ActionRequest{Action: model.OpUpdate, Slug: "../etc", Sites: []string{"https://a.example.com"}})
	assert.ErrorIs(t, err, consts.ErrInvalidSlug)

	_, err = h.svc.Execute(context.Background(), model.ActionRequest{Action: model.OpUpdate, Slug: "akismet", Sites: []string{"https://nowhere.example.com"}})
	assert.ErrorIs(t, err, consts.ErrSiteNotFound)
}

func TestExecute_SkipsIneligibleSites(t *testing.T) {
	h := newServiceHarness(t)
	report, err := h.svc.Execute(context.Background(), model.ActionRequest{
		Action: model.OpUpdate,
		Slug:   "akismet",
		Sites:  []string{"https://a.example.com", "https://b.example.com"},
	})
	require.NoError(t, err)
	assert.True(t, report.Success)
	require.Len(t, report.Output, 2)
	assert.Equal(t, model.OutcomeSuccess, report.Output[0].Outcome)
	assert.Equal(t, "https://a.example.com", report.Output[0].Site)
	assert.Equal(t, model.OutcomeSkipped, report.Output[1].Outcome)
	assert.Equal(t, []string{"acme/a"}, h.gh.repos)
}

func TestExecute_Activate(t *testing.T) {
	h := newServiceHarness(t)
	report, err := h.svc.Execute(context.Background(), model.ActionRequest{
		Action: model.OpActivate,
		Slug:   "akismet",
		Sites:  []string{"https://b.example.com"},
	})
	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.Equal(t, []string{"https://b.example.com activate"}, h.brands.posts)
	assert.Empty(t, h.gh.repos)
}

func TestPreview_InstallUnknownPublicPlugin(t *testing.T) {
	h := newServiceHarness(t)
	res, err := h.svc.Preview(context.Background(), model.OpInstall, "newplugin")
	require.NoError(t, err)
	assert.Len(t, res.Targets, 3)
	assert.Equal(t, "1.0", res.DefaultVersion)

	res, err = h.svc.Preview(context.Background(), model.OpInstall, "akismet")
	require.NoError(t, err)
	require.Len(t, res.Targets, 1)
	assert.Equal(t, "C", res.Targets[0].SiteName)
}

func TestBulkUpdate(t *testing.T) {
	h := newServiceHarness(t)
	report, err := h.svc.BulkUpdate(context.Background(), []model.BulkItem{
		{Slug: "akismet"},
		{Slug: "missing"},
	})
	require.NoError(t, err)
	assert.False(t, report.Success)
	require.Len(t, report.Response["A"], 1)
	assert.Equal(t, model.OutcomeSuccess, report.Response["A"][0].Outcome)
	assert.Equal(t, []string{"acme/a"}, h.gh.repos)
	assert.Len(t, report.Errors, 1)
	assert.Equal(t, "missing", report.Errors[0].Slug)
}

func TestExecute_InstallUnknownPluginDispatchesNothing(t *testing.T) {
	h := newServiceHarness(t)
	report, err := h.svc.Execute(context.Background(), model.ActionRequest{
		Action:  model.OpInstall,
		Slug:    "not-on-registry",
		Version: "1.0",
		Sites:   []string{"https://a.example.com", "https://b.example.com"},
	})
	require.NoError(t, err)
	assert.Empty(t, h.gh.repos)
	assert.NotEmpty(t, report.Message)
	for _, r := range report.Output {
		assert.Equal(t, model.OutcomeSkipped, r.Outcome)
	}
}

func TestExecute_VersionRules(t *testing.T) {
	sites := []string{"https://a.example.com", "https://b.example.com"}

	t.Run("change-version needs a version", func(t *testing.T) {
		h := newServiceHarness(t)
		_, err := h.svc.Execute(context.Background(), model.ActionRequest{Action: model.OpChangeVersion, Slug: "akismet", Sites: sites})
		assert.ErrorIs(t, err, consts.ErrVersionRequired)
		assert.Empty(t, h.gh.repos)
	})

	t.Run("install needs a version", func(t *testing.T) {
		h := newServiceHarness(t)
		_, err := h.svc.Execute(context.Background(), model.ActionRequest{Action: model.OpInstall, Slug: "newplugin", Sites: []string{"https://c.example.com"}})
		assert.ErrorIs(t, err, consts.ErrVersionRequired)
		assert.Empty(t, h.gh.repos)
	})

	t.Run("version must be offered", func(t *testing.T) {
		h := newServiceHarness(t)
		_, err := h.svc.Execute(context.Background(), model.ActionRequest{Action: model.OpChangeVersion, Slug: "akismet", Version: "9.9", Sites: sites})
		assert.ErrorIs(t, err, consts.ErrVersionNotOffered)
		assert.Empty(t, h.gh.repos)
	})

	t.Run("offered version dispatches", func(t *testing.T) {
		h := newServiceHarness(t)
		report, err := h.svc.Execute(context.Background(), model.ActionRequest{Action: model.OpChangeVersion, Slug: "akismet", Version: "5.2", Sites: sites})
		require.NoError(t, err)
		assert.True(t, report.Success)
		assert.ElementsMatch(t, []string{"acme/a", "acme/b"}, h.gh.repos)
	})

	t.Run("update defaults to newest", func(t *testing.T) {
		h := newServiceHarness(t)
		report, err := h.svc.Execute(context.Background(), model.ActionRequest{Action: model.OpUpdate, Slug: "akismet", Sites: sites[:1]})
		require.NoError(t, err)
		require.NotEmpty(t, report.Output)
		assert.Equal(t, []string{"acme/a"}, h.gh.repos)
	})
}
