package fetch

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// gitOrSkip skips the test when no git binary is available.
func gitOrSkip(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found in PATH")
	}
}

// run executes a git command in dir, failing the test on error.
func run(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}

// initRepo creates a local git repository containing files and returns
// its path.
func initRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	run(t, dir, "init", "-q")
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	run(t, dir, "add", "-A")
	commit(t, dir, "initial")

	return dir
}

func commit(t *testing.T, dir, msg string) {
	t.Helper()
	run(t, dir,
		"-c", "user.email=test@example.com",
		"-c", "user.name=test",
		"-c", "commit.gpgsign=false",
		"commit", "-q", "-m", msg)
}

func TestFetchClonesRepo(t *testing.T) {
	gitOrSkip(t)

	repo := initRepo(t, map[string]string{"manifest.json": `{"id":"hello"}`})

	var f Fetcher
	staged, err := f.Fetch(context.Background(), Spec{URL: repo})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	defer staged.Close()

	if _, err := os.Stat(filepath.Join(staged.Root, "manifest.json")); err != nil {
		t.Errorf("manifest missing from staged root: %v", err)
	}
}

func TestFetchCloneFailure(t *testing.T) {
	gitOrSkip(t)

	var f Fetcher
	_, err := f.Fetch(context.Background(), Spec{URL: filepath.Join(t.TempDir(), "no-such-repo")})

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Fetch = %v, want *Error", err)
	}
	if fetchErr.Op != OpClone {
		t.Errorf("Op = %q, want %q", fetchErr.Op, OpClone)
	}
	if fetchErr.Stderr == "" {
		t.Error("clone failure carries no captured stderr")
	}
}

func TestFetchEmptyURL(t *testing.T) {
	var f Fetcher
	if _, err := f.Fetch(context.Background(), Spec{}); err == nil {
		t.Fatal("Fetch succeeded with empty URL")
	}
}

func TestFetchChecksOutRef(t *testing.T) {
	gitOrSkip(t)

	repo := initRepo(t, map[string]string{"manifest.json": `{"id":"hello"}`})
	run(t, repo, "checkout", "-q", "-b", "feature")
	if err := os.WriteFile(filepath.Join(repo, "extra.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	run(t, repo, "add", "-A")
	commit(t, repo, "feature work")
	// Leave the repo on its original branch so the clone's HEAD does
	// not already point at feature.
	run(t, repo, "checkout", "-q", "-")

	var f Fetcher
	staged, err := f.Fetch(context.Background(), Spec{URL: repo, Ref: "feature"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	defer staged.Close()

	if _, err := os.Stat(filepath.Join(staged.Root, "extra.txt")); err != nil {
		t.Errorf("feature branch file missing: %v", err)
	}
}

func TestFetchBadRef(t *testing.T) {
	gitOrSkip(t)

	repo := initRepo(t, map[string]string{"manifest.json": `{"id":"hello"}`})

	var f Fetcher
	_, err := f.Fetch(context.Background(), Spec{URL: repo, Ref: "no-such-ref"})

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Fetch = %v, want *Error", err)
	}
	if fetchErr.Op != OpCheckout {
		t.Errorf("Op = %q, want %q", fetchErr.Op, OpCheckout)
	}
}

func TestFetchSubdir(t *testing.T) {
	gitOrSkip(t)

	repo := initRepo(t, map[string]string{
		"README.md":                   "top",
		"plugins/wave/manifest.json":  `{"id":"wave"}`,
		"plugins/other/manifest.json": `{"id":"other"}`,
	})

	var f Fetcher
	staged, err := f.Fetch(context.Background(), Spec{URL: repo, Subdir: "plugins/wave"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	defer staged.Close()

	if _, err := os.Stat(filepath.Join(staged.Root, "manifest.json")); err != nil {
		t.Errorf("manifest missing from subdir root: %v", err)
	}
	if filepath.Base(staged.Root) != "wave" {
		t.Errorf("Root = %q, want the wave subdirectory", staged.Root)
	}
}

func TestFetchSubdirMissing(t *testing.T) {
	gitOrSkip(t)

	repo := initRepo(t, map[string]string{"manifest.json": `{"id":"hello"}`})

	var f Fetcher
	_, err := f.Fetch(context.Background(), Spec{URL: repo, Subdir: "nope"})

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Fetch = %v, want *Error", err)
	}
	if fetchErr.Op != OpSubdir {
		t.Errorf("Op = %q, want %q", fetchErr.Op, OpSubdir)
	}
}

func TestResolveSubdir(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "a", "b"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "file.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		subdir string
		ok     bool
	}{
		{"a", true},
		{"a/b", true},
		{"a/../a/b", true},
		{"missing", false},
		{"file.txt", false},
		{"..", false},
		{"../outside", false},
		{"a/../..", false},
		{"/etc", false},
	}

	for _, tt := range tests {
		t.Run(tt.subdir, func(t *testing.T) {
			_, err := resolveSubdir(root, tt.subdir)
			if tt.ok && err != nil {
				t.Errorf("resolveSubdir(%q) = %v, want nil", tt.subdir, err)
			}
			if !tt.ok && err == nil {
				t.Errorf("resolveSubdir(%q) succeeded, want error", tt.subdir)
			}
		})
	}
}

func TestStagedSourceClose(t *testing.T) {
	tmp := t.TempDir()
	staged := NewStagedSource(tmp, tmp)

	if err := staged.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Errorf("staged tree still exists after Close")
	}
	if err := staged.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
