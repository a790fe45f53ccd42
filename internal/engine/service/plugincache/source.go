package plugincache

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-arcade/oneupdate/internal/engine/consts"
	"github.com/go-arcade/oneupdate/internal/engine/model"
	"github.com/go-arcade/oneupdate/internal/engine/repo"
)

// LocalSource enumerates the plugins installed on this brand site and
// their activation state.
type LocalSource interface {
	// Installed is keyed by install path, e.g. "akismet/akismet.php".
	Installed(ctx context.Context) (map[string]model.PluginHeader, error)
	ActiveSet(ctx context.Context) (map[string]bool, error)
}

// SlugFromPath derives the plugin identifier from its install path: the
// first path segment, except the bundled Hello Dolly.
func SlugFromPath(path string) string {
	if path == consts.HelloDollyPath {
		return consts.HelloDollySlug
	}
	slug, _, _ := strings.Cut(path, "/")
	return slug
}

// headerScanLimit matches how much of a plugin file is read for headers.
const headerScanLimit = 8 << 10

var headerFields = map[string]func(h *model.PluginHeader, v string){
	"plugin name":       func(h *model.PluginHeader, v string) { h.Name = v },
	"plugin uri":        func(h *model.PluginHeader, v string) { h.PluginURI = v },
	"version":           func(h *model.PluginHeader, v string) { h.Version = v },
	"description":       func(h *model.PluginHeader, v string) { h.Description = v },
	"author":            func(h *model.PluginHeader, v string) { h.Author = v },
	"author uri":        func(h *model.PluginHeader, v string) { h.AuthorURI = v },
	"text domain":       func(h *model.PluginHeader, v string) { h.TextDomain = v },
	"requires at least": func(h *model.PluginHeader, v string) { h.RequiresWP = v },
	"requires php":      func(h *model.PluginHeader, v string) { h.RequiresPHP = v },
	"requires plugins":  func(h *model.PluginHeader, v string) { h.RequiresPlugins = v },
}

// DirSource reads plugin headers from a plugins directory and the active
// set from the option store.
type DirSource struct {
	dir      string
	settings repo.ISettingsRepository
}

func NewDirSource(dir string, settings repo.ISettingsRepository) *DirSource {
	return &DirSource{dir: dir, settings: settings}
}

func (d *DirSource) Dir() string { return d.dir }

func (d *DirSource) Installed(ctx context.Context) (map[string]model.PluginHeader, error) {
	top, err := filepath.Glob(filepath.Join(d.dir, "*.php"))
	if err != nil {
		return nil, err
	}
	nested, err := filepath.Glob(filepath.Join(d.dir, "*", "*.php"))
	if err != nil {
		return nil, err
	}
	files := append(top, nested...)
	sort.Strings(files)

	out := make(map[string]model.PluginHeader)
	mains := make(map[string]string) // plugin directory -> chosen main file
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h, ok, err := readHeader(f)
		if err != nil || !ok {
			continue
		}
		rel, err := filepath.Rel(d.dir, f)
		if err != nil {
			continue
		}
		path := filepath.ToSlash(rel)
		// one main file per plugin directory, slug/slug.php wins over the
		// first header-bearing file in name order
		if pluginDir, file, nested := strings.Cut(path, "/"); nested {
			if prev, dup := mains[pluginDir]; dup {
				if file != pluginDir+".php" {
					continue
				}
				delete(out, prev)
			}
			mains[pluginDir] = path
		}
		out[path] = h
	}
	return out, nil
}

func (d *DirSource) ActiveSet(ctx context.Context) (map[string]bool, error) {
	active, err := d.settings.ActivePlugins(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(active))
	for _, p := range active {
		set[p] = true
	}
	return set, nil
}

func readHeader(file string) (model.PluginHeader, bool, error) {
	f, err := os.Open(file)
	if err != nil {
		return model.PluginHeader{}, false, err
	}
	defer f.Close()
	return parseHeader(io.LimitReader(f, headerScanLimit))
}

func parseHeader(r io.Reader) (model.PluginHeader, bool, error) {
	var h model.PluginHeader
	seen := make(map[string]bool, len(headerFields))
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimLeft(sc.Text(), " \t/*#@")
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(name))
		set, known := headerFields[key]
		if !known || seen[key] {
			continue
		}
		seen[key] = true
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "*/"))
		set(&h, value)
	}
	if err := sc.Err(); err != nil && err != bufio.ErrTooLong {
		return h, false, err
	}
	return h, h.Name != "", nil
}
