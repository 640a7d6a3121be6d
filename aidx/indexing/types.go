package indexing

import (
	"github.com/ZanzyTHEbar/asset-index/aidx/tokenizer"

	"github.com/google/uuid"
)

// PathID is the global identifier of a file within one build.
// Identifiers are dense (0..N-1) so they fit compact arrays and roaring
// bitmaps; they carry no meaning across builds.
type PathID = uint32

// PostingList is a strictly increasing list of PathIDs.
type PostingList []PathID

// Directory is the materialized form of one directory of the index tree.
// Every list covers the whole subtree rooted at the directory.
type Directory struct {
	Name      string
	Path      string
	Files     PostingList
	Stem      map[tokenizer.Token]PostingList
	Ext       map[tokenizer.Token]PostingList
	DirTokens []tokenizer.Token
	Children  []*Directory
}

// Walk visits the subtree pre-order. Returning false from fn skips the
// children of that node.
func (d *Directory) Walk(fn func(*Directory) bool) {
	if !fn(d) {
		return
	}
	for _, c := range d.Children {
		c.Walk(fn)
	}
}

// IndexMeta captures summary information for a built index.
type IndexMeta struct {
	BuildID      uuid.UUID
	BuildUnixSec int64
	NumFiles     int
	NumDirs      int
}

// Index is the durable artifact of a build: the file table ordered by
// PathID and one materialized tree per input root.
type Index struct {
	Meta  IndexMeta
	Paths []string
	Roots []*Directory
}

// Walk visits every directory of every root, pre-order.
func (idx *Index) Walk(fn func(*Directory) bool) {
	for _, r := range idx.Roots {
		r.Walk(fn)
	}
}

// Path returns the file path for id.
func (idx *Index) Path(id PathID) (string, bool) {
	if int(id) >= len(idx.Paths) {
		return "", false
	}
	return idx.Paths[id], true
}

// Resolve maps a list of ids to file paths. Unknown ids are dropped.
func (idx *Index) Resolve(ids []PathID) []string {
	paths := make([]string, 0, len(ids))
	for _, id := range ids {
		if p, ok := idx.Path(id); ok {
			paths = append(paths, p)
		}
	}
	return paths
}
