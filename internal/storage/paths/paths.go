// Package paths normalizes stored remote-storage paths to the canonical
// rooted form the storage provider expects. Stored paths come from several
// generations of the intake UI and may be relative, unrooted, or missing the
// case-root prefix.
package paths

import (
	"path"
	"strings"
)

// DefaultRoot is the top-level folder all case files live under.
const DefaultRoot = "/CASES"

// Normalize returns the canonical rooted form of a stored path under root.
// A path already under the root is returned cleaned but otherwise unchanged;
// anything else is rooted. Normalize never guesses alternate locations.
func Normalize(root, stored string) string {
	if root == "" {
		root = DefaultRoot
	}
	root = "/" + strings.Trim(root, "/")

	p := strings.TrimSpace(stored)
	if p == "" {
		return root
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = path.Clean(p)

	if p == root || strings.HasPrefix(p, root+"/") {
		return p
	}
	return root + p
}

// JoinCase builds the storage path for a named file inside a case folder.
func JoinCase(root, folder, name string) string {
	return Normalize(root, path.Join(folder, name))
}
