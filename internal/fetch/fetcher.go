package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const tmpPrefix = "plughub-git-"

// Spec describes what to fetch.
type Spec struct {
	URL    string
	Ref    string // branch, tag, or commit; empty means the default branch
	Subdir string // plugin root inside the repository; empty means the repo root
}

// Fetcher clones Git repositories into staging directories using an
// external git binary.
type Fetcher struct {
	// GitBin is the git executable to invoke. Empty means "git".
	GitBin string
	// Timeout bounds each individual git command. Zero means no bound.
	Timeout time.Duration
}

// Fetch clones spec.URL into a fresh temporary directory, checks out
// spec.Ref when given, and resolves spec.Subdir when given. On success
// the returned StagedSource owns the temporary tree; on failure the
// tree is already removed.
func (f *Fetcher) Fetch(ctx context.Context, spec Spec) (*StagedSource, error) {
	if spec.URL == "" {
		return nil, errors.New("git url must not be empty")
	}

	tmpDir, err := os.MkdirTemp("", tmpPrefix)
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	if stderr, err := f.git(ctx, "", "clone", spec.URL, tmpDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, &Error{Op: OpClone, URL: spec.URL, Stderr: stderr, Err: err}
	}

	if spec.Ref != "" {
		// Best-effort: some providers already have the ref locally
		// after the clone, so a failed fetch is tolerated.
		_, _ = f.git(ctx, tmpDir, "fetch", "--all")

		if stderr, err := f.git(ctx, tmpDir, "checkout", spec.Ref); err != nil {
			_ = os.RemoveAll(tmpDir)
			return nil, &Error{Op: OpCheckout, URL: spec.URL, Ref: spec.Ref, Stderr: stderr, Err: err}
		}
	}

	root := tmpDir
	if spec.Subdir != "" {
		root, err = resolveSubdir(tmpDir, spec.Subdir)
		if err != nil {
			_ = os.RemoveAll(tmpDir)
			return nil, &Error{Op: OpSubdir, URL: spec.URL, Subdir: spec.Subdir, Err: err}
		}
	}

	return NewStagedSource(tmpDir, root), nil
}

// resolveSubdir joins subdir onto the clone root, rejecting paths that
// would escape it, and requires the result to be an existing directory.
func resolveSubdir(cloneRoot, subdir string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(subdir))
	if filepath.IsAbs(cleaned) || !filepath.IsLocal(cleaned) {
		return "", fmt.Errorf("subdir %q points outside the repository", subdir)
	}

	root := filepath.Join(cloneRoot, cleaned)
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("subdir %q does not exist in the repository", subdir)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("subdir %q is not a directory", subdir)
	}
	return root, nil
}

// git runs a single git command with captured stderr. dir is the
// working directory; empty means the process default.
func (f *Fetcher) git(ctx context.Context, dir string, args ...string) (string, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	bin := f.GitBin
	if bin == "" {
		bin = "git"
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	err := cmd.Run()
	return strings.TrimSpace(stderr.String()), err
}
