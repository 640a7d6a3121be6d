package query

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/asset-index/aidx/indexing"

	"github.com/armon/go-radix"
)

// PathIndex maps directory paths to materialized directories using a
// patricia tree, so exact lookups are O(k) in the path length and prefix
// scans visit only the matching subtree.
type PathIndex struct {
	mu   sync.RWMutex
	tree *radix.Tree
}

// NewPathIndex indexes every directory of idx.
func NewPathIndex(idx *indexing.Index) *PathIndex {
	p := &PathIndex{tree: radix.New()}
	if idx != nil {
		idx.Walk(func(d *indexing.Directory) bool {
			p.Insert(d)
			return true
		})
	}
	return p
}

// Insert adds or replaces the entry for d.Path.
func (p *PathIndex) Insert(d *indexing.Directory) {
	if d == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tree.Insert(normalizePath(d.Path), d)
}

// Lookup finds a directory by its exact path.
func (p *PathIndex) Lookup(path string) (*indexing.Directory, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.tree.Get(normalizePath(path))
	if !ok {
		return nil, false
	}
	return v.(*indexing.Directory), true
}

// PrefixLookup returns every directory at or below prefix in path order.
// The prefix is matched on whole path segments: "/a/b" does not match "/a/bc".
func (p *PathIndex) PrefixLookup(prefix string) []*indexing.Directory {
	prefix = normalizePath(prefix)
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []*indexing.Directory
	p.tree.WalkPrefix(prefix, func(key string, v interface{}) bool {
		if key == prefix || strings.HasPrefix(key[len(prefix):], "/") || strings.HasSuffix(prefix, "/") {
			out = append(out, v.(*indexing.Directory))
		}
		return false
	})
	return out
}

// Children returns the direct subdirectories of parent in path order.
func (p *PathIndex) Children(parent string) []*indexing.Directory {
	parent = normalizePath(parent)
	if !strings.HasSuffix(parent, "/") {
		parent += "/"
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []*indexing.Directory
	p.tree.WalkPrefix(parent, func(key string, v interface{}) bool {
		rest := key[len(parent):]
		if rest != "" && !strings.Contains(rest, "/") {
			out = append(out, v.(*indexing.Directory))
		}
		return false
	})
	return out
}

// Size returns the number of indexed directories.
func (p *PathIndex) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tree.Len()
}

// normalizePath ensures consistent path formatting for the index
func normalizePath(path string) string {
	normalized := filepath.ToSlash(filepath.Clean(path))
	if len(normalized) > 1 {
		normalized = strings.TrimSuffix(normalized, "/")
	}
	return normalized
}
