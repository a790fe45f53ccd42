package plugincache

import (
	"context"
	"fmt"

	"github.com/go-arcade/oneupdate/internal/engine/model"
)

// lifecycle events reported by the local site
const (
	EventActivated   = "activated"
	EventDeactivated = "deactivated"
	EventDeleted     = "deleted"
	EventUpgraded    = "upgraded"
)

// HandleEvent keeps the cache consistent with a local plugin lifecycle
// event. Activation changes are patched in place; deletions and upgrades
// drop the cache.
func (c *Cache) HandleEvent(ctx context.Context, event, path string) error {
	switch event {
	case EventActivated, EventDeactivated:
		if path == "" {
			return fmt.Errorf("event %s requires a plugin path", event)
		}
		op := model.OpActivate
		if event == EventDeactivated {
			op = model.OpDeactivate
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if err := c.setActive(ctx, string(op), []string{path}); err != nil {
			return err
		}
		return c.patchLocked(ctx, path, event == EventActivated, event == EventDeactivated)
	case EventDeleted:
		if path != "" {
			c.mu.Lock()
			err := c.setActive(ctx, string(model.OpRemove), []string{path})
			c.mu.Unlock()
			if err != nil {
				return err
			}
		}
		return c.Invalidate(ctx)
	case EventUpgraded:
		return c.Invalidate(ctx)
	default:
		return fmt.Errorf("unknown plugin event %q", event)
	}
}
