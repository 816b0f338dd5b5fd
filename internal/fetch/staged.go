package fetch

import "os"

// StagedSource is an ephemeral checkout owned by a single install
// operation. Root points at the effective plugin root (the clone or a
// subdirectory of it); Close removes the whole temporary tree and must
// be called on every exit path.
type StagedSource struct {
	// Root is the directory the manifest and plugin contents live in.
	Root string

	dir string
}

// NewStagedSource wraps an already-materialized tree. tmpDir is the
// top-level directory removed by Close; root must be tmpDir or a
// directory beneath it.
func NewStagedSource(tmpDir, root string) *StagedSource {
	return &StagedSource{Root: root, dir: tmpDir}
}

// Close removes the staged tree. Calling it more than once is safe.
func (s *StagedSource) Close() error {
	if s.dir == "" {
		return nil
	}
	dir := s.dir
	s.dir = ""
	return os.RemoveAll(dir)
}
