package indexing

import (
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest is a human-readable view of an Index, suitable for YAML output.
// Posting lists are keyed by display name (see Directory.Names).
type Manifest struct {
	BuildID   string              `yaml:"buildId"`
	BuiltAt   string              `yaml:"builtAt"`
	Files     []string            `yaml:"files"`
	Roots     []DirectoryManifest `yaml:"roots"`
	NumDirs   int                 `yaml:"numDirs"`
	NumFiles  int                 `yaml:"numFiles"`
	Separator string              `yaml:"occurrenceSeparator"`
}

// DirectoryManifest is one directory of a Manifest.
type DirectoryManifest struct {
	Name     string                 `yaml:"name"`
	Path     string                 `yaml:"path"`
	Files    PostingList            `yaml:"files,flow"`
	Stem     map[string]PostingList `yaml:"stem,omitempty"`
	Ext      map[string]PostingList `yaml:"ext,omitempty"`
	Children []DirectoryManifest    `yaml:"children,omitempty"`
}

// NewManifest builds the manifest for the whole index.
func NewManifest(idx *Index) *Manifest {
	m := &Manifest{
		BuildID:   idx.Meta.BuildID.String(),
		BuiltAt:   time.Unix(idx.Meta.BuildUnixSec, 0).UTC().Format(time.RFC3339),
		Files:     idx.Paths,
		NumDirs:   idx.Meta.NumDirs,
		NumFiles:  idx.Meta.NumFiles,
		Separator: OccurrenceSeparator,
	}
	for _, r := range idx.Roots {
		m.Roots = append(m.Roots, NewDirectoryManifest(r, -1))
	}
	return m
}

// NewDirectoryManifest describes d and its descendants down to depth levels
// below it; a negative depth means unlimited.
func NewDirectoryManifest(d *Directory, depth int) DirectoryManifest {
	dm := DirectoryManifest{
		Name:  d.Name,
		Path:  d.Path,
		Files: d.Files,
		Stem:  d.Names(KindStem),
		Ext:   d.Names(KindExt),
	}
	if depth != 0 {
		for _, c := range d.Children {
			dm.Children = append(dm.Children, NewDirectoryManifest(c, depth-1))
		}
	}
	return dm
}

// WriteYAML encodes v as YAML to w.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
