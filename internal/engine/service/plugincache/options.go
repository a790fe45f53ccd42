package plugincache

import (
	"context"
	"fmt"
	"slices"

	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/pkg/log"
)

// Options returns the site-local plugin options record.
func (c *Cache) Options(ctx context.Context) (map[string]string, error) {
	return c.settings.PluginOptions(ctx)
}

// ApplyOptions mutates the local activation state and patches the cache
// for the first plugin under the same lock, so readers never observe one
// without the other.
func (c *Cache) ApplyOptions(ctx context.Context, req model.OptionsRequest) (model.OptionsResult, error) {
	plugins := req.Options.Plugins
	if plugins == nil {
		plugins = []string{}
	}
	pluginType := req.Options.PluginType
	if pluginType == "" {
		pluginType = consts.PluginTypeAddUpdate
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.setActive(ctx, pluginType, plugins); err != nil {
		return model.OptionsResult{}, err
	}
	if len(plugins) > 0 {
		if err := c.patchLocked(ctx, plugins[0],
			pluginType == string(model.OpActivate),
			pluginType == string(model.OpDeactivate),
		); err != nil {
			return model.OptionsResult{}, fmt.Errorf("patch plugin cache: %w", err)
		}
	}

	log.Infow("plugin options updated", "plugin_type", pluginType, "plugins", plugins)
	return model.OptionsResult{Success: true, PluginType: pluginType, Plugins: plugins}, nil
}

func (c *Cache) setActive(ctx context.Context, pluginType string, plugins []string) error {
	switch pluginType {
	case string(model.OpDeactivate), string(model.OpRemove):
		return c.settings.UpdateActivation(ctx, func(active []string, options map[string]string) ([]string, map[string]string) {
			active = slices.DeleteFunc(active, func(p string) bool { return slices.Contains(plugins, p) })
			for _, p := range plugins {
				delete(options, p)
			}
			return active, options
		})
	case string(model.OpActivate):
		return c.settings.UpdateActivation(ctx, func(active []string, options map[string]string) ([]string, map[string]string) {
			for _, p := range plugins {
				if !slices.Contains(active, p) {
					active = append(active, p)
				}
				if _, ok := options[p]; !ok {
					options[p] = p
				}
			}
			return active, options
		})
	}
	return nil
}
