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

package plugincache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/errgroup"

	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/internal/engine/repo"
	"github.com/go-arcade/oneupdate/internal/engine/tool"
	"github.com/go-arcade/oneupdate/pkg/cache"
	"github.com/go-arcade/oneupdate/pkg/log"
	"github.com/go-arcade/oneupdate/pkg/metrics"
)

/**
 * @file: cache.go
 * @description: brand site plugin state cache. The map is only serialized
 *               when it crosses the option store.
 */

const (
	DefaultTTL = time.Hour

	lookupConcurrency = 8
)

// entry is the stored form of the cache.
type entry struct {
	Plugins   model.PluginMap `json:"plugins"`
	BuiltAt   time.Time       `json:"built_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

type Cache struct {
	mu       sync.Mutex
	store    cache.ICache
	source   LocalSource
	registry RegistryClient
	settings repo.ISettingsRepository
	ttl      time.Duration
	now      func() time.Time
}

type Option func(*Cache)

// WithClock replaces time.Now, used to test expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func NewCache(store cache.ICache, source LocalSource, registry RegistryClient, settings repo.ISettingsRepository, opts ...Option) *Cache {
	c := &Cache{
		store:    store,
		source:   source,
		registry: registry,
		settings: settings,
		ttl:      DefaultTTL,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Snapshot returns the cached plugin map, rebuilding it when absent or
// expired.
func (c *Cache) Snapshot(ctx context.Context) (model.PluginMap, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		metrics.PluginCacheHitTotal.WithLabelValues("hit").Inc()
		return e.Plugins.Clone(), nil
	}
	metrics.PluginCacheHitTotal.WithLabelValues("miss").Inc()
	plugins, err := c.rebuildLocked(ctx)
	if err != nil {
		return nil, err
	}
	return plugins.Clone(), nil
}

// Cached returns the stored map without rebuilding.
func (c *Cache) Cached(ctx context.Context) (model.PluginMap, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok, err := c.load(ctx)
	if err != nil || !ok {
		return nil, false, err
	}
	return e.Plugins.Clone(), true, nil
}

// RebuildFull enumerates installed plugins, classifies each against the
// public registry and stores the result.
func (c *Cache) RebuildFull(ctx context.Context) (model.PluginMap, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	plugins, err := c.rebuildLocked(ctx)
	if err != nil {
		return nil, err
	}
	return plugins.Clone(), nil
}

// PatchSingle updates the active flag of one plugin and leaves every other
// entry untouched. With neither flag set the state is re-read from the
// local active set.
func (c *Cache) PatchSingle(ctx context.Context, path string, isActivation, isDeactivation bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.patchLocked(ctx, path, isActivation, isDeactivation)
}

// Invalidate drops the cache unconditionally.
func (c *Cache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	log.Infow("plugin cache invalidated")
	return c.store.Del(ctx, consts.TransientPlugins)
}

// Refresh drops the cache and rebuilds it in one step.
func (c *Cache) Refresh(ctx context.Context) (model.PluginMap, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Del(ctx, consts.TransientPlugins); err != nil {
		return nil, err
	}
	plugins, err := c.rebuildLocked(ctx)
	if err != nil {
		return nil, err
	}
	return plugins.Clone(), nil
}

func (c *Cache) patchLocked(ctx context.Context, path string, isActivation, isDeactivation bool) error {
	e, ok, err := c.load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		if _, err := c.rebuildLocked(ctx); err != nil {
			return err
		}
		if e, ok, err = c.load(ctx); err != nil || !ok {
			return err
		}
	}

	slug := SlugFromPath(path)
	rec, found := e.Plugins[slug]
	if !found {
		installed, err := c.source.Installed(ctx)
		if err != nil {
			return err
		}
		header, isInstalled := installed[path]
		if !isInstalled {
			log.Debugw("patch skipped, plugin not installed", "path", path)
			return nil
		}
		active, err := c.source.ActiveSet(ctx)
		if err != nil {
			return err
		}
		rec = c.buildRecord(ctx, path, header, active)
	}

	switch {
	case isActivation:
		rec.IsActive = true
	case isDeactivation:
		rec.IsActive = false
	default:
		active, err := c.source.ActiveSet(ctx)
		if err != nil {
			return err
		}
		rec.IsActive = active[path]
	}
	e.Plugins[slug] = rec
	return c.save(ctx, e)
}

func (c *Cache) rebuildLocked(ctx context.Context) (model.PluginMap, error) {
	plugins, err := c.build(ctx)
	if err != nil {
		metrics.PluginCacheRebuildTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	now := c.now()
	if err := c.save(ctx, entry{Plugins: plugins, BuiltAt: now, ExpiresAt: now.Add(c.ttl)}); err != nil {
		metrics.PluginCacheRebuildTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.PluginCacheRebuildTotal.WithLabelValues("ok").Inc()
	log.Infow("plugin cache rebuilt", "plugins", len(plugins))
	return plugins, nil
}

func (c *Cache) build(ctx context.Context) (model.PluginMap, error) {
	installed, err := c.source.Installed(ctx)
	if err != nil {
		return nil, err
	}
	if len(installed) == 0 {
		return nil, consts.ErrNoPlugins
	}
	active, err := c.source.ActiveSet(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		plugins = make(model.PluginMap, len(installed))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for path, header := range installed {
		g.Go(func() error {
			rec := c.buildRecord(gctx, path, header, active)
			mu.Lock()
			defer mu.Unlock()
			// two paths can still share a slug (hello.php and hello-dolly/), keep the first path
			if prev, ok := plugins[rec.PluginSlug]; ok && prev.PluginPathInfo < rec.PluginPathInfo {
				return nil
			}
			plugins[rec.PluginSlug] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return plugins, nil
}

// buildRecord never fails: a registry error degrades the plugin to private
// with no update information.
func (c *Cache) buildRecord(ctx context.Context, path string, header model.PluginHeader, active map[string]bool) model.PluginRecord {
	slug := SlugFromPath(path)
	rec := model.PluginRecord{
		PluginHeader:   header,
		PluginSlug:     slug,
		PluginPathInfo: path,
		IsActive:       active[path],
	}

	info, err := c.registry.Lookup(ctx, slug)
	if err != nil {
		log.Debugw("registry lookup failed, treating plugin as private", "slug", slug, "error", err)
		return rec
	}
	if info == nil || info.Name == "" {
		return rec
	}
	rec.IsPublic = true
	rec.PluginInfo = info
	rec.IsUpdateAvailable = tool.IsNewer(header.Version, info.Version)
	if rec.IsUpdateAvailable {
		rec.Update = &model.UpdateInfo{
			Slug:       slug,
			NewVersion: info.Version,
			Package:    info.DownloadLink,
			URL:        info.Homepage,
			Icons:      info.Icons,
		}
	}
	return rec
}

func (c *Cache) load(ctx context.Context) (entry, bool, error) {
	raw, err := c.store.Get(ctx, consts.TransientPlugins)
	if errors.Is(err, cache.ErrNotFound) {
		return entry{}, false, nil
	}
	if err != nil {
		return entry{}, false, err
	}
	var e entry
	if err := sonic.Unmarshal(raw, &e); err != nil {
		log.Warnw("discarding unreadable plugin cache", "error", err)
		return entry{}, false, nil
	}
	if !c.now().Before(e.ExpiresAt) {
		metrics.PluginCacheHitTotal.WithLabelValues("expired").Inc()
		return entry{}, false, nil
	}
	if e.Plugins == nil {
		e.Plugins = model.PluginMap{}
	}
	return e, true, nil
}

// save keeps the original expiry; patching does not extend the lifetime of
// registry data.
func (c *Cache) save(ctx context.Context, e entry) error {
	raw, err := sonic.Marshal(e)
	if err != nil {
		return err
	}
	ttl := e.ExpiresAt.Sub(c.now())
	if ttl <= 0 {
		return nil
	}
	return c.store.Set(ctx, consts.TransientPlugins, raw, ttl)
}
