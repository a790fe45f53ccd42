package fleet

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"github.com/go-arcade/oneupdate/internal/engine/conf"
	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/internal/engine/repo"
	"github.com/go-arcade/oneupdate/pkg/http/middleware"
)

// BrandClient talks to the plugin endpoints of one brand site.
type BrandClient interface {
	FetchInventory(ctx context.Context, site model.Site) (model.PluginMap, error)
	PostOptions(ctx context.Context, site model.Site, req model.OptionsRequest) (*model.OptionsResult, error)
}

// envelope is the response wrapper every site endpoint writes.
type envelope[T any] struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	ErrMsg string `json:"errMsg"`
	Detail T      `json:"detail"`
}

type RemoteClient struct {
	client        *resty.Client
	settings      repo.ISettingsRepository
	inventoryPath string
	optionsPath   string
	fetchTimeout  time.Duration
	optionTimeout time.Duration
}

func NewRemoteClient(cfg conf.FleetConf, settings repo.ISettingsRepository) *RemoteClient {
	fetch := cfg.InventoryTimeout
	if fetch <= 0 {
		fetch = 30 * time.Second
	}
	opts := cfg.OptionsTimeout
	if opts <= 0 {
		opts = 30 * time.Second
	}
	return &RemoteClient{
		client: resty.New().
			SetHeader("Accept", "application/json").
			SetJSONMarshaler(sonic.Marshal).
			SetJSONUnmarshaler(sonic.Unmarshal),
		settings:      settings,
		inventoryPath: cfg.InventoryPath,
		optionsPath:   cfg.OptionsPath,
		fetchTimeout:  fetch,
		optionTimeout: opts,
	}
}

// key is the site's public key, or this site's own key when the registry
// entry carries none.
func (r *RemoteClient) key(ctx context.Context, site model.Site) (string, error) {
	if site.PublicKey != "" {
		return site.PublicKey, nil
	}
	return r.settings.PublicKey(ctx)
}

func (r *RemoteClient) FetchInventory(ctx context.Context, site model.Site) (model.PluginMap, error) {
	key, err := r.key(ctx, site)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	var out envelope[model.PluginsResponse]
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader(middleware.HeaderPluginsToken, key).
		SetResult(&out).
		SetError(&out).
		Get(site.BaseURL() + r.inventoryPath)
	if err := checkEnvelope(site, resp, err, out.ErrMsg); err != nil {
		return nil, err
	}
	if out.Detail.Plugins == nil {
		return model.PluginMap{}, nil
	}
	return out.Detail.Plugins, nil
}

func (r *RemoteClient) PostOptions(ctx context.Context, site model.Site, req model.OptionsRequest) (*model.OptionsResult, error) {
	key, err := r.key(ctx, site)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, r.optionTimeout)
	defer cancel()

	var out envelope[model.OptionsResult]
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader(middleware.HeaderPluginsToken, key).
		SetBody(req).
		SetResult(&out).
		SetError(&out).
		Post(site.BaseURL() + r.optionsPath)
	if err := checkEnvelope(site, resp, err, out.ErrMsg); err != nil {
		return nil, err
	}
	if !out.Detail.Success {
		return nil, fmt.Errorf("site %s rejected plugin options", site.SiteURL)
	}
	return &out.Detail, nil
}

func checkEnvelope(site model.Site, resp *resty.Response, err error, errMsg string) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %v", consts.ErrRemoteUnreachable, site.SiteURL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		if errMsg == "" {
			errMsg = http.StatusText(resp.StatusCode())
		}
		return fmt.Errorf("site %s: status %d: %s", site.SiteURL, resp.StatusCode(), errMsg)
	}
	return nil
}
