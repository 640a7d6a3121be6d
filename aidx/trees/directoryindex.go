package trees

import (
	"path/filepath"

	"github.com/ZanzyTHEbar/asset-index/aidx/tokenizer"
)

// PathSet is a set of file paths.
type PathSet map[string]struct{}

// TokenMap maps a token to the paths of the files carrying it.
type TokenMap map[tokenizer.Token]PathSet

// File is one discovered regular file. Its token sets are filled during the
// walk of its parent directory and never change afterwards.
type File struct {
	Path      string
	Name      string
	Stem      map[tokenizer.Token]struct{}
	Ext       map[tokenizer.Token]struct{}
	DirTokens []tokenizer.Token // metadata only, never part of a posting list
	Siblings  int               // regular files in the parent directory, this one included
}

// NewFile creates a File from its tokenized name.
func NewFile(path string, tokens tokenizer.FileTokens, dirTokens []tokenizer.Token, siblings int) *File {
	f := &File{
		Path:      path,
		Name:      filepath.Base(path),
		Stem:      make(map[tokenizer.Token]struct{}, len(tokens.Stem)),
		Ext:       make(map[tokenizer.Token]struct{}, len(tokens.Ext)),
		DirTokens: dirTokens,
		Siblings:  siblings,
	}
	for _, t := range tokens.Stem {
		f.Stem[t] = struct{}{}
	}
	for _, t := range tokens.Ext {
		f.Ext[t] = struct{}{}
	}
	return f
}

// DirectoryIndex is the per-directory node of the build-time index.
// Its token maps and file list cover the whole subtree rooted at it.
// Each node owns its maps; Merge copies child sets instead of sharing them.
type DirectoryIndex struct {
	Name      string
	Path      string
	Files     []*File
	Stem      TokenMap
	Ext       TokenMap
	Children  []*DirectoryIndex
	DirTokens []tokenizer.Token
}

// NewDirectoryIndex creates an empty node for the directory at path.
func NewDirectoryIndex(path string, dirTokens []tokenizer.Token) *DirectoryIndex {
	return &DirectoryIndex{
		Name:      filepath.Base(path),
		Path:      path,
		Stem:      make(TokenMap),
		Ext:       make(TokenMap),
		DirTokens: dirTokens,
	}
}

// AddFile records a file that lives directly in this directory.
func (d *DirectoryIndex) AddFile(f *File) {
	d.Files = append(d.Files, f)
	for t := range f.Stem {
		d.Stem.add(t, f.Path)
	}
	for t := range f.Ext {
		d.Ext.add(t, f.Path)
	}
}

// Merge attaches a fully built child and folds its subtree into this node.
func (d *DirectoryIndex) Merge(child *DirectoryIndex) {
	d.Children = append(d.Children, child)
	d.Files = append(d.Files, child.Files...)
	d.Stem.union(child.Stem)
	d.Ext.union(child.Ext)
}

// Walk visits the subtree pre-order. Returning false from fn skips the
// children of that node.
func (d *DirectoryIndex) Walk(fn func(*DirectoryIndex) bool) {
	if !fn(d) {
		return
	}
	for _, c := range d.Children {
		c.Walk(fn)
	}
}

func (m TokenMap) add(t tokenizer.Token, path string) {
	set, ok := m[t]
	if !ok {
		set = make(PathSet)
		m[t] = set
	}
	set[path] = struct{}{}
}

func (m TokenMap) union(other TokenMap) {
	for t, paths := range other {
		set, ok := m[t]
		if !ok {
			set = make(PathSet, len(paths))
			m[t] = set
		}
		for p := range paths {
			set[p] = struct{}{}
		}
	}
}

// Forest is the set of root directory indexes produced by one build.
type Forest []*DirectoryIndex

// Files returns every file of every root, in walk order.
func (f Forest) Files() []*File {
	var n int
	for _, root := range f {
		n += len(root.Files)
	}
	files := make([]*File, 0, n)
	for _, root := range f {
		files = append(files, root.Files...)
	}
	return files
}

// TokenCounts returns, for stem and extension tokens separately, the number
// of files carrying each token across all roots.
func (f Forest) TokenCounts() (stem, ext map[tokenizer.Token]int) {
	stem = make(map[tokenizer.Token]int)
	ext = make(map[tokenizer.Token]int)
	for _, root := range f {
		for t, paths := range root.Stem {
			stem[t] += len(paths)
		}
		for t, paths := range root.Ext {
			ext[t] += len(paths)
		}
	}
	return stem, ext
}
