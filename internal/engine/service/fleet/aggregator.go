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

package fleet

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/pkg/log"
	"github.com/go-arcade/oneupdate/pkg/metrics"
	"github.com/go-arcade/oneupdate/pkg/trace"
)

// Inventory holds the plugin map each site reported, keyed by site url.
type Inventory map[string]model.PluginMap

const defaultConcurrency = 8

type Aggregator struct {
	client      BrandClient
	concurrency int
}

func NewAggregator(client BrandClient, concurrency int) *Aggregator {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Aggregator{client: client, concurrency: concurrency}
}

// Collect fetches every site's inventory concurrently. A site that cannot
// be reached contributes an empty inventory; Collect itself never fails.
func (a *Aggregator) Collect(ctx context.Context, sites []model.Site) Inventory {
	ctx, span := trace.Start(ctx, "fleet.collect", attribute.Int("sites", len(sites)))
	defer span.End()
	start := time.Now()
	defer func() { metrics.FleetCollectSeconds.Observe(time.Since(start).Seconds()) }()

	var (
		mu  sync.Mutex
		inv = make(Inventory, len(sites))
	)
	g := new(errgroup.Group)
	g.SetLimit(a.concurrency)
	for _, site := range sites {
		g.Go(func() error {
			plugins := a.fetch(ctx, site)
			mu.Lock()
			inv[site.SiteURL] = plugins
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return inv
}

func (a *Aggregator) fetch(ctx context.Context, site model.Site) model.PluginMap {
	ctx, span := trace.Start(ctx, "fleet.fetch_site", attribute.String("site", site.SiteURL))
	defer span.End()

	plugins, err := a.client.FetchInventory(ctx, site)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.FleetFetchTotal.WithLabelValues("error").Inc()
		log.Warnw("fetch site inventory failed", "site", site.SiteURL, "error", err)
		return model.PluginMap{}
	}
	metrics.FleetFetchTotal.WithLabelValues("ok").Inc()
	return plugins
}
