package fleet

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arcade/oneupdate/internal/engine/conf"
	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/internal/engine/repo"
	"github.com/go-arcade/oneupdate/pkg/cache"
)

type stubClient struct {
	plugins map[string]model.PluginMap
}

func (s stubClient) FetchInventory(_ context.Context, site model.Site) (model.PluginMap, error) {
	p, ok := s.plugins[site.SiteURL]
	if !ok {
		return nil, errors.New("unreachable")
	}
	return p, nil
}

func (s stubClient) PostOptions(context.Context, model.Site, model.OptionsRequest) (*model.OptionsResult, error) {
	return &model.OptionsResult{Success: true}, nil
}

func TestCollect_FailingSiteIsEmpty(t *testing.T) {
	client := stubClient{plugins: map[string]model.PluginMap{
		"https://a.example.com": {"akismet": {PluginSlug: "akismet"}},
	}}
	agg := NewAggregator(client, 2)
	inv := agg.Collect(context.Background(), []model.Site{
		{SiteURL: "https://a.example.com"},
		{SiteURL: "https://b.example.com"},
	})
	require.Len(t, inv, 2)
	assert.Len(t, inv["https://a.example.com"], 1)
	assert.Empty(t, inv["https://b.example.com"])
}

func TestRemoteClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("X-OneUpdate-Plugins-Token") != "k1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":4410,"errMsg":"Invalid plugins token"}`))
			return
		}
		switch r.URL.Path {
		case "/api/v1/plugins":
			_, _ = w.Write([]byte(`{"code":200,"msg":"Request Success","detail":{"success":true,"plugins":{"akismet":{"Name":"Akismet","plugin_slug":"akismet","is_active":true}}}}`))
		case "/api/v1/oneupdate-plugins-options":
			_, _ = w.Write([]byte(`{"code":200,"msg":"Request Success","detail":{"success":true,"plugin_type":"activate","plugins":["akismet/akismet.php"]}}`))
		}
	}))
	defer srv.Close()

	settings := repo.NewSettingsRepo(cache.NewMemoryCache(0))
	c := NewRemoteClient(conf.FleetConf{
		InventoryPath:    "/api/v1/plugins",
		OptionsPath:      "/api/v1/oneupdate-plugins-options",
		InventoryTimeout: time.Second,
	}, settings)
	ctx := context.Background()

	site := model.Site{SiteURL: srv.URL + "/", PublicKey: "k1"}
	plugins, err := c.FetchInventory(ctx, site)
	require.NoError(t, err)
	assert.True(t, plugins["akismet"].IsActive)
	assert.Equal(t, "Akismet", plugins["akismet"].Name)

	var req model.OptionsRequest
	req.Options.PluginType = "activate"
	req.Options.Plugins = []string{"akismet/akismet.php"}
	res, err := c.PostOptions(ctx, site, req)
	require.NoError(t, err)
	assert.Equal(t, "activate", res.PluginType)

	// falls back to the local key, which is unset
	_, err = c.FetchInventory(ctx, model.Site{SiteURL: srv.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid plugins token")
}
