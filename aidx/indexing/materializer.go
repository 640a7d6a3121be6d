package indexing

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ZanzyTHEbar/asset-index/aidx/tokenizer"
	"github.com/ZanzyTHEbar/asset-index/aidx/trees"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrDuplicateFile is returned when two roots yield the same file path.
var ErrDuplicateFile = errors.New("file indexed more than once")

// Materializer turns a walked forest into an Index: it ranks the files,
// assigns PathIDs in rank order and rewrites every path set as a sorted
// PostingList.
type Materializer struct {
	logger zerolog.Logger
}

// NewMaterializer creates a Materializer logging to logger.
func NewMaterializer(logger zerolog.Logger) *Materializer {
	return &Materializer{logger: logger.With().Str("component", "materializer").Logger()}
}

// Materialize builds the Index for forest. The forest is only read.
func (m *Materializer) Materialize(forest trees.Forest) (*Index, error) {
	start := time.Now()

	ranked := Rank(forest)
	paths := make([]string, len(ranked))
	for i, r := range ranked {
		paths[i] = r.File.Path
	}
	ids := NewPathIDMapper(paths)
	if ids.Size() != len(paths) {
		for i, p := range paths {
			if id, _ := ids.Lookup(p); int(id) != i {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateFile, p)
			}
		}
	}

	idx := &Index{
		Meta: IndexMeta{
			BuildID:      uuid.New(),
			BuildUnixSec: time.Now().Unix(),
			NumFiles:     len(paths),
		},
		Paths: paths,
		Roots: make([]*Directory, len(forest)),
	}
	for i, root := range forest {
		idx.Roots[i] = materializeDir(root, ids, &idx.Meta.NumDirs)
	}

	rs := ComputeRankStats(ranked)
	m.logger.Info().
		Str("build_id", idx.Meta.BuildID.String()).
		Int("files", idx.Meta.NumFiles).
		Int("dirs", idx.Meta.NumDirs).
		Float64("surprisal_mean", rs.Mean).
		Float64("surprisal_stddev", rs.StdDev).
		Float64("surprisal_min", rs.Min).
		Float64("surprisal_max", rs.Max).
		Dur("elapsed", time.Since(start)).
		Msg("index materialized")
	return idx, nil
}

func materializeDir(d *trees.DirectoryIndex, ids *PathIDMapper, numDirs *int) *Directory {
	*numDirs++
	out := &Directory{
		Name:      d.Name,
		Path:      d.Path,
		Files:     make(PostingList, 0, len(d.Files)),
		Stem:      make(map[tokenizer.Token]PostingList, len(d.Stem)),
		Ext:       make(map[tokenizer.Token]PostingList, len(d.Ext)),
		DirTokens: slices.Clone(d.DirTokens),
		Children:  make([]*Directory, 0, len(d.Children)),
	}
	for _, f := range d.Files {
		id, _ := ids.Lookup(f.Path)
		out.Files = append(out.Files, id)
	}
	slices.Sort(out.Files)

	for t, set := range d.Stem {
		out.Stem[t] = postings(set, ids)
	}
	for t, set := range d.Ext {
		out.Ext[t] = postings(set, ids)
	}
	for _, c := range d.Children {
		out.Children = append(out.Children, materializeDir(c, ids, numDirs))
	}
	return out
}

func postings(set trees.PathSet, ids *PathIDMapper) PostingList {
	pl := make(PostingList, 0, len(set))
	for p := range set {
		id, _ := ids.Lookup(p)
		pl = append(pl, id)
	}
	slices.Sort(pl)
	return pl
}
