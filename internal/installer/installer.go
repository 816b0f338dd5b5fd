package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/onetapdev/plughub/internal/fetch"
	"github.com/onetapdev/plughub/internal/manifest"
	"github.com/onetapdev/plughub/internal/registry"
	slogctx "github.com/veqryn/slog-context"
)

// ErrInconsistent indicates a just-committed plugin did not survive the
// registry rescan: the copied tree failed to re-parse even though the
// staged manifest had already been validated.
var ErrInconsistent = errors.New("installed plugin missing from registry after rescan")

// ErrInvalidIdentity indicates a manifest declares an id that cannot be
// used as a directory name under the plugins root.
var ErrInvalidIdentity = errors.New("plugin id is not usable as a directory name")

// Request describes one install-from-git operation.
type Request struct {
	GitURL string
	Ref    string
	Subdir string
}

// Fetcher stages a plugin source for installation.
type Fetcher interface {
	Fetch(ctx context.Context, spec fetch.Spec) (*fetch.StagedSource, error)
}

// Installer commits fetched plugin sources into the plugins root and
// keeps the registry in sync.
type Installer struct {
	pluginsDir string
	fetcher    Fetcher
	loader     *manifest.Loader
	registry   *registry.Registry
	locks      keyedMutex
}

// New returns an installer writing to pluginsDir.
func New(pluginsDir string, fetcher Fetcher, loader *manifest.Loader, reg *registry.Registry) *Installer {
	return &Installer{
		pluginsDir: pluginsDir,
		fetcher:    fetcher,
		loader:     loader,
		registry:   reg,
	}
}

// InstallFromGit fetches req.GitURL, loads the manifest from the
// effective plugin root, replaces any prior installation with the same
// identity, rescans the registry, and returns the committed entry. The
// staged source is removed on every path.
func (i *Installer) InstallFromGit(ctx context.Context, req Request) (registry.InstalledPlugin, error) {
	var zero registry.InstalledPlugin

	staged, err := i.fetcher.Fetch(ctx, fetch.Spec{URL: req.GitURL, Ref: req.Ref, Subdir: req.Subdir})
	if err != nil {
		return zero, fmt.Errorf("fetching plugin source: %w", err)
	}
	defer staged.Close()

	m, err := i.loader.Load(staged.Root)
	if err != nil {
		return zero, fmt.Errorf("loading manifest: %w", err)
	}

	id := m.Identity(staged.Root)
	if !validIdentity(id) {
		return zero, fmt.Errorf("plugin id %q: %w", id, ErrInvalidIdentity)
	}

	// Installs racing on the same identity contend on destination
	// replace and rescan; serialize them per identity.
	unlock := i.locks.lock(id)
	defer unlock()

	if err := i.commit(staged.Root, id); err != nil {
		return zero, err
	}

	if err := i.registry.Rescan(ctx); err != nil {
		return zero, fmt.Errorf("rescanning plugins: %w", err)
	}

	committed, ok := i.registry.Get(id)
	if !ok {
		return zero, fmt.Errorf("plugin %s: %w", id, ErrInconsistent)
	}

	slogctx.FromCtx(ctx).Info("installed plugin",
		"plugin_id", committed.PluginID,
		"version", committed.Version,
		"path", committed.Path,
	)
	return committed, nil
}

// commit materializes src under the plugins root as id. The tree is
// copied into a hidden stage directory next to the destination first,
// then swapped in with a rename, so a copy failing partway never leaves
// a half-written installation behind.
func (i *Installer) commit(src, id string) error {
	if err := os.MkdirAll(i.pluginsDir, 0755); err != nil {
		return fmt.Errorf("creating plugins directory %s: %w", i.pluginsDir, err)
	}

	stage, err := os.MkdirTemp(i.pluginsDir, ".stage-"+id+"-")
	if err != nil {
		return fmt.Errorf("creating stage directory: %w", err)
	}

	if err := copyDir(src, stage); err != nil {
		_ = os.RemoveAll(stage)
		return fmt.Errorf("copying plugin contents: %w", err)
	}

	dest := filepath.Join(i.pluginsDir, id)
	if err := os.RemoveAll(dest); err != nil {
		_ = os.RemoveAll(stage)
		return fmt.Errorf("removing existing installation at %s: %w", dest, err)
	}
	if err := os.Rename(stage, dest); err != nil {
		_ = os.RemoveAll(stage)
		return fmt.Errorf("finalizing installation at %s: %w", dest, err)
	}

	return nil
}

// validIdentity reports whether id is a single plain path element.
// Dot-prefixed names are reserved for stage directories.
func validIdentity(id string) bool {
	return id != "" && !strings.HasPrefix(id, ".") && filepath.Base(id) == id
}
