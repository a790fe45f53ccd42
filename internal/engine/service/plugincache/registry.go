package plugincache

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"

	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/pkg/metrics"
)

// RegistryClient looks plugins up in the public plugin registry.
type RegistryClient interface {
	Lookup(ctx context.Context, slug string) (*model.RegistryInfo, error)
}

// WPOrgRegistry talks to the wordpress.org plugin info API. Calls are
// never retried; a failure only degrades the plugin being looked up.
type WPOrgRegistry struct {
	client *resty.Client
}

func NewWPOrgRegistry(baseURL string, timeout time.Duration) *WPOrgRegistry {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	return &WPOrgRegistry{client: client}
}

func (w *WPOrgRegistry) Lookup(ctx context.Context, slug string) (*model.RegistryInfo, error) {
	start := time.Now()
	info := &model.RegistryInfo{}
	resp, err := w.client.R().
		SetContext(ctx).
		SetQueryParam("fields", "icons").
		SetResult(info).
		Get("/" + url.PathEscape(slug) + ".json")

	outcome := "ok"
	defer func() {
		metrics.RegistryLookupSeconds.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	if err != nil {
		outcome = "error"
		return nil, fmt.Errorf("%w: registry lookup %s: %v", consts.ErrRemoteUnreachable, slug, err)
	}
	if resp.StatusCode() != 200 {
		outcome = "not_found"
		return nil, fmt.Errorf("registry lookup %s: status %d", slug, resp.StatusCode())
	}
	return info, nil
}
