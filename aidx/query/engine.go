// Package query answers token queries against a materialized index: it
// resolves a directory and a list of stem or extension names to posting
// lists and hands them to the solver.
package query

import (
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/asset-index/aidx/indexing"
	"github.com/ZanzyTHEbar/asset-index/aidx/solver"

	"github.com/rs/zerolog"
)

var (
	ErrUnknownDirectory = errors.New("unknown directory")
	ErrInvalidTerm      = errors.New("invalid query term")
)

const (
	stemPrefix = "stem:"
	extPrefix  = "ext:"
)

// Term is one constraint of a query: a posting list name of the given kind.
type Term struct {
	Kind indexing.Kind
	Name string
}

func (t Term) String() string {
	return t.Kind.String() + ":" + t.Name
}

// ParseTerm reads "stem:NAME", "ext:NAME" or a bare NAME, which is a stem
// name.
func ParseTerm(s string) (Term, error) {
	t := Term{Kind: indexing.KindStem, Name: s}
	switch {
	case strings.HasPrefix(s, stemPrefix):
		t.Name = s[len(stemPrefix):]
	case strings.HasPrefix(s, extPrefix):
		t.Kind, t.Name = indexing.KindExt, s[len(extPrefix):]
	}
	if t.Name == "" {
		return Term{}, fmt.Errorf("%w: %q", ErrInvalidTerm, s)
	}
	return t, nil
}

// ParseTerms parses every element of args.
func ParseTerms(args []string) ([]Term, error) {
	terms := make([]Term, 0, len(args))
	for _, a := range args {
		t, err := ParseTerm(a)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}

// Match is the answer to a query. With no terms the query is unconstrained
// and matches every file of the directory.
type Match struct {
	IDs           []indexing.PathID
	Paths         []string
	Unconstrained bool
}

// Engine answers queries against one index. It is safe for concurrent use.
type Engine struct {
	index  *indexing.Index
	paths  *PathIndex
	logger zerolog.Logger
}

// NewEngine creates an Engine over idx. The index is shared, not copied,
// and must not change while the engine is in use.
func NewEngine(idx *indexing.Index, logger zerolog.Logger) *Engine {
	return &Engine{
		index:  idx,
		paths:  NewPathIndex(idx),
		logger: logger.With().Str("component", "query").Logger(),
	}
}

// Open loads a snapshot and returns an engine over it.
func Open(path string, logger zerolog.Logger) (*Engine, error) {
	idx, err := indexing.LoadSnapshot(path)
	if err != nil {
		return nil, err
	}
	return NewEngine(idx, logger), nil
}

// Index returns the index the engine answers from.
func (e *Engine) Index() *indexing.Index { return e.index }

// Directory resolves dir to an indexed directory. dir may be the directory's
// path as indexed, a path relative to the working directory, or a path
// starting with a root's name ("art/tiles" for root /data/art). An empty
// dir selects the root when the index has exactly one.
func (e *Engine) Directory(dir string) (*indexing.Directory, error) {
	if dir == "" {
		if len(e.index.Roots) == 1 {
			return e.index.Roots[0], nil
		}
		return nil, fmt.Errorf("%w: a directory is required with %d roots", ErrUnknownDirectory, len(e.index.Roots))
	}
	if d, ok := e.paths.Lookup(dir); ok {
		return d, nil
	}
	if abs, err := filepath.Abs(dir); err == nil {
		if d, ok := e.paths.Lookup(abs); ok {
			return d, nil
		}
	}
	first, rest, _ := strings.Cut(filepath.ToSlash(filepath.Clean(dir)), "/")
	for _, r := range e.index.Roots {
		if r.Name != first {
			continue
		}
		if d, ok := e.paths.Lookup(filepath.Join(r.Path, filepath.FromSlash(rest))); ok {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDirectory, dir)
}

// Directories lists dir followed by the directories below it in path order:
// every descendant when recursive is set, otherwise only the direct
// children. An empty dir lists every root that way.
func (e *Engine) Directories(dir string, recursive bool) ([]*indexing.Directory, error) {
	tops := e.index.Roots
	if dir != "" {
		d, err := e.Directory(dir)
		if err != nil {
			return nil, err
		}
		tops = []*indexing.Directory{d}
	}

	var out []*indexing.Directory
	for _, d := range tops {
		if recursive {
			out = append(out, e.paths.PrefixLookup(d.Path)...)
			continue
		}
		out = append(out, d)
		out = append(out, e.paths.Children(d.Path)...)
	}

	e.logger.Debug().
		Str("dir", dir).
		Bool("recursive", recursive).
		Int("listed", len(out)).
		Int("indexed", e.paths.Size()).
		Msg("directories listed")
	return out, nil
}

// Find returns every file under dir satisfying terms under policy.
// Unknown names resolve to empty posting lists.
func (e *Engine) Find(dir string, terms []Term, policy solver.Policy) (Match, error) {
	d, err := e.Directory(dir)
	if err != nil {
		return Match{}, err
	}

	r := solver.AllSeq(constraints(d, terms), policy)
	m := Match{IDs: r.IDs, Unconstrained: r.Unconstrained}
	if r.Unconstrained {
		m.IDs = d.Files
	}
	m.Paths = e.index.Resolve(m.IDs)

	e.logger.Debug().
		Str("dir", d.Path).
		Stringer("policy", policy).
		Int("terms", len(terms)).
		Int("matches", len(m.IDs)).
		Msg("query resolved")
	return m, nil
}

// FindFirst returns the lowest-ranked file under dir satisfying terms.
// With no terms that is the directory's most generic file.
func (e *Engine) FindFirst(dir string, terms []Term, policy solver.Policy) (string, bool, error) {
	d, err := e.Directory(dir)
	if err != nil {
		return "", false, err
	}

	var (
		id indexing.PathID
		ok bool
	)
	if len(terms) == 0 {
		ok = len(d.Files) > 0
		if ok {
			id = d.Files[0]
		}
	} else {
		id, ok = solver.FirstSeq(constraints(d, terms), policy)
	}
	if !ok {
		return "", false, nil
	}
	path, ok := e.index.Path(id)
	return path, ok, nil
}

func constraints(d *indexing.Directory, terms []Term) iter.Seq[indexing.PostingList] {
	return func(yield func(indexing.PostingList) bool) {
		for _, t := range terms {
			if !yield(d.Lookup(t.Kind, t.Name)) {
				return
			}
		}
	}
}
