// Package fetch stages plugin sources from remote Git repositories.
// Each fetch clones into an exclusively-owned temporary directory,
// optionally checks out a ref and descends into a subdirectory, and
// hands the caller a StagedSource that owns the tree until Close.
package fetch
