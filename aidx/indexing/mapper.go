package indexing

import (
	"path/filepath"
	"strings"
)

// PathIDMapper maps canonicalized file paths back to their PathIDs.
type PathIDMapper struct {
	pathToID map[string]PathID
}

// NewPathIDMapper indexes paths, where paths[i] is the file with PathID i.
// When a canonical path repeats, the lowest id wins and Size reports fewer
// entries than len(paths).
func NewPathIDMapper(paths []string) *PathIDMapper {
	m := &PathIDMapper{pathToID: make(map[string]PathID, len(paths))}
	for i, p := range paths {
		cp := canonicalize(p)
		if _, ok := m.pathToID[cp]; !ok {
			m.pathToID[cp] = PathID(i)
		}
	}
	return m
}

// Lookup returns the PathID of path.
func (m *PathIDMapper) Lookup(path string) (PathID, bool) {
	id, ok := m.pathToID[canonicalize(path)]
	return id, ok
}

// Size returns the number of distinct canonical paths.
func (m *PathIDMapper) Size() int { return len(m.pathToID) }

// canonicalize cleans p and uses forward slashes.
func canonicalize(p string) string {
	p = filepath.ToSlash(filepath.Clean(p))
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}
