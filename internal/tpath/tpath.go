// Package tpath parses absolute path strings into component sequences and
// walks them against an inode store (spec.md §4.5).
package tpath

import (
	"strings"

	"github.com/tupofs/tupofs/internal/inode"
	"github.com/tupofs/tupofs/internal/inodestore"
	"github.com/tupofs/tupofs/internal/tfserr"
	"github.com/tupofs/tupofs/internal/tupofsconst"
)

// Path is an ordered sequence of non-empty name components.
type Path struct {
	Components []string
}

// Parse splits s on '/', discarding empty components, and rejects s when it
// is not absolute or has more than tupofsconst.PathMaxComponents components.
// Parse("/") returns the zero-component Path, denoting the root.
func Parse(s string) (Path, error) {
	if len(s) == 0 || s[0] != '/' {
		return Path{}, tfserr.ErrInvalidPath
	}
	var comps []string
	for _, part := range strings.Split(s, "/") {
		if part == "" {
			continue
		}
		comps = append(comps, part)
	}
	if len(comps) > tupofsconst.PathMaxComponents {
		return Path{}, tfserr.ErrInvalidPath
	}
	return Path{Components: comps}, nil
}

// Len is the number of components in p.
func (p Path) Len() int {
	return len(p.Components)
}

// Traverse walks p's components in [begin, end), starting at inode index
// start, which must be a Directory. At each step the current inode must be
// a Directory or the walk fails with tfserr.ErrNotFound; a missing child
// name also fails with tfserr.ErrNotFound. It returns the terminal inode's
// index.
func Traverse(store *inodestore.Store, p Path, start, begin, end int) (int, error) {
	cur := start
	for i := begin; i < end; i++ {
		rec, err := store.Get(cur)
		if err != nil {
			return 0, err
		}
		if rec.Type != inode.Directory || rec.Dir == nil {
			return 0, tfserr.ErrNotFound
		}
		child := rec.Dir.FindChild(p.Components[i])
		if child == nil {
			return 0, tfserr.ErrNotFound
		}
		cur = child.InodeIdx
	}
	return cur, nil
}

// Resolve walks the whole of p from start (typically the root inode) and
// returns the terminal inode's index — the get_inode_by_path primitive.
func Resolve(store *inodestore.Store, p Path, start int) (int, error) {
	return Traverse(store, p, start, 0, p.Len())
}
