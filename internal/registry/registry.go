package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/onetapdev/plughub/internal/manifest"
	slogctx "github.com/veqryn/slog-context"
)

// InstalledPlugin is one committed installation under the plugins root.
type InstalledPlugin struct {
	PluginID string `json:"plugin_id"`
	Name     string `json:"name"`
	Version  string `json:"version"`
	Path     string `json:"path"`
}

// Registry maps plugin identity to installation metadata. It is rebuilt
// by Rescan and queried read-only by List and Get.
type Registry struct {
	pluginsDir string
	loader     *manifest.Loader

	// scanMu serializes whole rescans (read phase + swap). Without it,
	// a rescan that read the plugins root before a concurrent commit
	// could swap its stale snapshot in last, dropping a just-committed
	// install until some future rescan.
	scanMu sync.Mutex

	mu      sync.RWMutex
	plugins map[string]InstalledPlugin
}

// New returns an empty registry over pluginsDir. Call Rescan to
// populate it.
func New(pluginsDir string, loader *manifest.Loader) *Registry {
	return &Registry{
		pluginsDir: pluginsDir,
		loader:     loader,
		plugins:    make(map[string]InstalledPlugin),
	}
}

// Rescan rebuilds the registry from the immediate subdirectories of the
// plugins root and swaps the result in as a single snapshot. A
// subdirectory whose manifest is missing or broken is logged and
// skipped; one corrupt plugin never hides the rest. When two
// directories resolve to the same identity the last-processed one wins
// (os.ReadDir enumerates lexicographically). Rescans are serialized
// with each other, so the snapshot swapped in last is always the one
// that read the disk last.
func (r *Registry) Rescan(ctx context.Context) error {
	r.scanMu.Lock()
	defer r.scanMu.Unlock()

	logger := slogctx.FromCtx(ctx)

	entries, err := os.ReadDir(r.pluginsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Nothing installed yet.
			r.swap(make(map[string]InstalledPlugin))
			return nil
		}
		return fmt.Errorf("reading plugins directory %s: %w", r.pluginsDir, err)
	}

	next := make(map[string]InstalledPlugin, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		dir := filepath.Join(r.pluginsDir, entry.Name())
		m, err := r.loader.Load(dir)
		if err != nil {
			logger.Warn("skipping plugin directory", "dir", dir, "error", err)
			continue
		}

		abs, err := filepath.Abs(dir)
		if err != nil {
			abs = dir
		}

		id := m.Identity(dir)
		next[id] = InstalledPlugin{
			PluginID: id,
			Name:     m.DisplayName(dir),
			Version:  m.EffectiveVersion(),
			Path:     abs,
		}
	}

	r.swap(next)
	return nil
}

// List returns the current snapshot sorted by plugin id. It never
// triggers a rescan.
func (r *Registry) List() []InstalledPlugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]InstalledPlugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PluginID < out[j].PluginID })
	return out
}

// Get returns the entry for id from the current snapshot.
func (r *Registry) Get(id string) (InstalledPlugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[id]
	return p, ok
}

// swap replaces the whole snapshot; readers see either the old map or
// the new one, never a mix.
func (r *Registry) swap(next map[string]InstalledPlugin) {
	r.mu.Lock()
	r.plugins = next
	r.mu.Unlock()
}
