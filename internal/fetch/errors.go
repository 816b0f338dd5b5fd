package fetch

import (
	"fmt"
	"strings"
)

// Op names the fetch step that failed.
type Op string

const (
	OpClone    Op = "clone"
	OpCheckout Op = "checkout"
	OpSubdir   Op = "subdir"
)

// Error is a failed fetch step. Stderr carries the captured git output
// for clone and checkout failures so callers can diagnose without
// server-side log access.
type Error struct {
	Op     Op
	URL    string
	Ref    string
	Subdir string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	switch e.Op {
	case OpClone:
		fmt.Fprintf(&b, "cloning %s", e.URL)
	case OpCheckout:
		fmt.Fprintf(&b, "checking out %s in %s", e.Ref, e.URL)
	case OpSubdir:
		fmt.Fprintf(&b, "resolving subdir %q in %s", e.Subdir, e.URL)
	default:
		fmt.Fprintf(&b, "fetching %s", e.URL)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	if e.Stderr != "" {
		fmt.Fprintf(&b, "\n%s", e.Stderr)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }
