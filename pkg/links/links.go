// Package links builds clickable source links for diagram nodes.
//
// A link is the configured base followed by the layout root holding the
// class and the class's underscored path:
//
//	r := links.Resolver{Base: "https://github.com/acme/shop/blob/main", Roots: links.ModelRoots}
//	r.URL("Admin::User") // ".../blob/main/app/models/admin/user.rb"
//
// When FS is set, each root is probed in order and the first one that holds
// the file wins; otherwise, or when no root holds it, the first root is used.
package links

import (
	"io/fs"
	"path"
	"strings"

	cgerrors "github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/naming"
)

// DefaultExt is the source file extension used when Resolver.Ext is empty.
const DefaultExt = "rb"

// Conventional layout roots.
var (
	ModelRoots      = []string{"app/models", "lib"}
	ControllerRoots = []string{"app/controllers", "lib"}
)

// Resolver maps class names to source URLs.
type Resolver struct {
	Base  string
	Roots []string
	Ext   string
	// FS is the project tree used to probe roots. Optional.
	FS fs.FS
}

// Validate checks the base and every root.
func (r *Resolver) Validate() error {
	if err := cgerrors.ValidateLinkBase(r.Base); err != nil {
		return err
	}
	for _, root := range r.Roots {
		if err := cgerrors.ValidatePath(root); err != nil {
			return cgerrors.Wrap(cgerrors.ErrCodeInvalidPath, err, "link root %q", root)
		}
	}
	return nil
}

// URL returns the source link for className, or "" when the resolver is nil
// or has no base.
func (r *Resolver) URL(className string) string {
	if r == nil || r.Base == "" {
		return ""
	}
	rel := r.file(className)
	if root := r.root(rel); root != "" {
		rel = path.Join(root, rel)
	}
	return strings.TrimSuffix(r.Base, "/") + "/" + rel
}

func (r *Resolver) file(className string) string {
	ext := r.Ext
	if ext == "" {
		ext = DefaultExt
	}
	return naming.Underscore(className) + "." + strings.TrimPrefix(ext, ".")
}

func (r *Resolver) root(rel string) string {
	if len(r.Roots) == 0 {
		return ""
	}
	if r.FS != nil {
		for _, root := range r.Roots {
			if _, err := fs.Stat(r.FS, path.Join(root, rel)); err == nil {
				return root
			}
		}
	}
	return r.Roots[0]
}
