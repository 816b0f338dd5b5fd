// Package registry maintains the in-memory view of installed plugins.
// The plugins directory on disk is the source of truth; the registry is
// rebuilt from it by a full rescan and swapped in atomically, so readers
// always observe a complete snapshot.
package registry
