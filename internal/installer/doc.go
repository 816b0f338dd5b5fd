// Package installer drives the end-to-end plugin install sequence:
// fetch the source into staging, load its manifest, derive its
// identity, commit the tree under the plugins root, and rescan the
// registry. Installs racing on the same identity are serialized by a
// per-identity lock; installs to different identities run independently.
package installer
