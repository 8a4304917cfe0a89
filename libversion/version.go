// Package libversion records, per named library, the version of that
// library's code that wrote (or is reading) an archive stream. Every
// archive session transfers this table at construction time so that
// user Serialize methods can branch on "what version of library L wrote
// this stream" when reading a stream produced by an older release.
package libversion

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Version is a three-part library version tuple.
type Version struct {
	Major int
	Minor int
	Patch int
}

// String renders v in its decimal tuple form, e.g. "1.2.3".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Parse parses a "major.minor.patch" string as produced by String.
// Missing trailing components default to zero, matching how the original
// archive header tolerates short version strings from older writers.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) == 0 || len(parts) > 3 {
		return Version{}, fmt.Errorf("libversion: malformed version %q", s)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("libversion: malformed version %q: %w", s, err)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

var (
	mu    sync.RWMutex
	table = map[string]Version{}
)

// Set records the version of library under which the calling process was
// built. Meant to be called from an init() or from main before any
// archive is opened; the table is expected to be stable by the time the
// first archive session starts (spec invariant: append-only during
// process startup, read-only thereafter).
func Set(library string, v Version) {
	mu.Lock()
	defer mu.Unlock()
	table[library] = v
}

// Get returns the process-wide recorded version of library, and whether
// one was recorded at all.
func Get(library string) (Version, bool) {
	mu.RLock()
	defer mu.RUnlock()
	v, ok := table[library]
	return v, ok
}

// Snapshot returns a copy of the full process-wide table, in no
// particular order. Writers call this once at archive construction to
// emit the current table; it is never back-dated.
func Snapshot() map[string]Version {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string]Version, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out
}
