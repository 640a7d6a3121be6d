package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ZanzyTHEbar/asset-index/aidx/tokenizer"
	"github.com/ZanzyTHEbar/asset-index/aidx/trees"

	"github.com/rs/zerolog"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/sourcegraph/conc/pool"
)

// Walk errors. Every error aborts the whole build.
var (
	ErrNoRoots          = errors.New("no root directories given")
	ErrRootNotDirectory = errors.New("root is not a directory")
	ErrDuplicateRoot    = errors.New("root overlaps another root")
)

// WalkerOptions configures a Walker.
type WalkerOptions struct {
	Delimiters    []string
	CaseSensitive bool
	IgnoreFile    string // gitignore-style file looked up at each root; empty disables
	MaxWorkers    int    // roots walked in parallel; <= 0 picks a default
	Logger        zerolog.Logger
}

// WalkStats tracks what a walk saw.
type WalkStats struct {
	DirsProcessed  int64
	FilesProcessed int64
	EntriesSkipped int64
	Elapsed        time.Duration
}

// Walker builds one DirectoryIndex tree per root directory.
type Walker struct {
	tokenizer  *tokenizer.Tokenizer
	ignoreFile string
	maxWorkers int
	logger     zerolog.Logger
	stats      WalkStats
}

// NewWalker creates a Walker from opts.
func NewWalker(opts WalkerOptions) *Walker {
	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = min(max(runtime.NumCPU(), 2), 16)
	}
	return &Walker{
		tokenizer:  tokenizer.New(opts.Delimiters, tokenizer.WithCaseSensitive(opts.CaseSensitive)),
		ignoreFile: opts.IgnoreFile,
		maxWorkers: maxWorkers,
		logger:     opts.Logger.With().Str("component", "walker").Logger(),
	}
}

// Stats returns the counters of the last Walk.
func (w *Walker) Stats() WalkStats {
	return WalkStats{
		DirsProcessed:  atomic.LoadInt64(&w.stats.DirsProcessed),
		FilesProcessed: atomic.LoadInt64(&w.stats.FilesProcessed),
		EntriesSkipped: atomic.LoadInt64(&w.stats.EntriesSkipped),
		Elapsed:        w.stats.Elapsed,
	}
}

// Walk indexes every root and returns the trees in the order the roots were
// given. Roots are independent and walked concurrently; inside a root the
// walk is a sequential post-order traversal. Any failure cancels the
// remaining roots and no partial forest is returned.
func (w *Walker) Walk(ctx context.Context, roots ...string) (trees.Forest, error) {
	if len(roots) == 0 {
		return nil, ErrNoRoots
	}
	absRoots, err := checkRoots(roots)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	w.stats = WalkStats{}
	w.logger.Debug().
		Strs("roots", absRoots).
		Strs("delimiters", w.tokenizer.Delimiters()).
		Int("workers", w.maxWorkers).
		Msg("walk started")

	forest := make(trees.Forest, len(absRoots))
	p := pool.New().WithMaxGoroutines(w.maxWorkers).WithContext(ctx).WithCancelOnError().WithFirstError()
	for i, root := range absRoots {
		p.Go(func(ctx context.Context) error {
			idx, err := w.walkRoot(ctx, root)
			if err != nil {
				return err
			}
			forest[i] = idx
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		w.logger.Error().Err(err).Strs("roots", absRoots).Msg("walk aborted")
		return nil, err
	}

	w.stats.Elapsed = time.Since(start)
	w.logger.Info().
		Int("roots", len(forest)).
		Int64("dirs", w.stats.DirsProcessed).
		Int64("files", w.stats.FilesProcessed).
		Int64("skipped", w.stats.EntriesSkipped).
		Dur("elapsed", w.stats.Elapsed).
		Msg("walk completed")
	return forest, nil
}

type rootWalk struct {
	root    string
	matcher *ignore.GitIgnore
}

// walkRoot indexes one root. root is absolute, so every recorded path is too.
func (w *Walker) walkRoot(ctx context.Context, root string) (*trees.DirectoryIndex, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDirectory, root)
	}

	rw := &rootWalk{root: root}
	if w.ignoreFile != "" {
		ignorePath := filepath.Join(root, w.ignoreFile)
		if _, err := os.Stat(ignorePath); err == nil {
			rw.matcher, err = ignore.CompileIgnoreFile(ignorePath)
			if err != nil {
				return nil, fmt.Errorf("failed to compile ignore file %s: %w", ignorePath, err)
			}
			w.logger.Debug().Str("path", ignorePath).Msg("using ignore file")
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat ignore file %s: %w", ignorePath, err)
		}
	}

	idx, err := w.walkDir(ctx, rw, root, []string{filepath.Base(root)})
	if err != nil {
		return nil, err
	}
	w.logger.Debug().Str("root", root).Int("files", len(idx.Files)).Msg("root indexed")
	return idx, nil
}

// walkDir builds the node for dir: subdirectories first, then the
// directory's own files, then the children's maps are merged upward.
func (w *Walker) walkDir(ctx context.Context, rw *rootWalk, dir string, segments []string) (*trees.DirectoryIndex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirTokens, err := w.tokenizer.DirectoryTokens(segments)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize directory %s: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var subdirs, files []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		mode := entry.Type()
		switch {
		case mode.IsDir():
			if rw.ignored(path, true) {
				w.skip(path, "ignored")
				continue
			}
			subdirs = append(subdirs, entry.Name())
		case mode.IsRegular():
			if rw.ignored(path, false) || (dir == rw.root && entry.Name() == w.ignoreFile) {
				w.skip(path, "ignored")
				continue
			}
			files = append(files, entry.Name())
		default:
			w.skip(path, "not a regular file")
		}
	}

	node := trees.NewDirectoryIndex(dir, dirTokens)

	children := make([]*trees.DirectoryIndex, 0, len(subdirs))
	for _, name := range subdirs {
		child, err := w.walkDir(ctx, rw, filepath.Join(dir, name), append(segments[:len(segments):len(segments)], name))
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	for _, name := range files {
		path := filepath.Join(dir, name)
		tokens, err := w.tokenizer.Tokenize(name)
		if err != nil {
			return nil, fmt.Errorf("failed to tokenize file %s: %w", path, err)
		}
		node.AddFile(trees.NewFile(path, tokens, dirTokens, len(files)))
	}

	for _, child := range children {
		node.Merge(child)
	}

	atomic.AddInt64(&w.stats.DirsProcessed, 1)
	atomic.AddInt64(&w.stats.FilesProcessed, int64(len(files)))
	w.logger.Debug().
		Str("path", dir).
		Int("files", len(files)).
		Int("subdirs", len(children)).
		Msg("directory indexed")
	return node, nil
}

func (w *Walker) skip(path, reason string) {
	atomic.AddInt64(&w.stats.EntriesSkipped, 1)
	w.logger.Debug().Str("path", path).Str("reason", reason).Msg("entry skipped")
}

func (rw *rootWalk) ignored(path string, isDir bool) bool {
	if rw.matcher == nil {
		return false
	}
	rel, err := filepath.Rel(rw.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		return rw.matcher.MatchesPath(rel) || rw.matcher.MatchesPath(rel+"/")
	}
	return rw.matcher.MatchesPath(rel)
}

// checkRoots makes the roots absolute and rejects any root equal to or
// nested in another one, since their files would be indexed twice.
func checkRoots(roots []string) ([]string, error) {
	abs := make([]string, len(roots))
	for i, r := range roots {
		a, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root %s: %w", r, err)
		}
		abs[i] = a
	}
	for i := range abs {
		for j := range abs {
			if i == j {
				continue
			}
			if abs[i] == abs[j] || strings.HasPrefix(abs[j], strings.TrimSuffix(abs[i], string(filepath.Separator))+string(filepath.Separator)) {
				return nil, fmt.Errorf("%w: %s and %s", ErrDuplicateRoot, roots[i], roots[j])
			}
		}
	}
	return abs, nil
}
