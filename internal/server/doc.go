// Package server exposes the install and listing operations over HTTP.
// The transport is deliberately thin: handlers decode the request, call
// into the installer or registry, and map typed failures to status
// codes. Error responses carry the captured diagnostic output so
// callers can debug failed installs without server-side log access.
package server
