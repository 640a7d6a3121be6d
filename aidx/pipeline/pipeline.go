// Package pipeline runs an index build end to end: walk the configured
// roots, rank and materialize the files, check the result and persist it.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/asset-index/aidx/config"
	"github.com/ZanzyTHEbar/asset-index/aidx/filesystem"
	"github.com/ZanzyTHEbar/asset-index/aidx/indexing"

	"github.com/rs/zerolog"
)

// Result describes a finished build.
type Result struct {
	Index  *indexing.Index
	Walk   filesystem.WalkStats
	Output string // snapshot path; empty when nothing was persisted
}

// Build walks cfg.Roots and returns the validated index. Nothing is written.
func Build(ctx context.Context, cfg config.IndexConfig, logger zerolog.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = logger.With().Str("component", "pipeline").Logger()
	start := time.Now()

	walker := filesystem.NewWalker(filesystem.WalkerOptions{
		Delimiters:    cfg.Delimiters,
		CaseSensitive: cfg.CaseSensitive,
		IgnoreFile:    cfg.IgnoreFile,
		Logger:        logger,
	})
	forest, err := walker.Walk(ctx, cfg.Roots...)
	if err != nil {
		return nil, fmt.Errorf("walk failed: %w", err)
	}

	idx, err := indexing.NewMaterializer(logger).Materialize(forest)
	if err != nil {
		return nil, fmt.Errorf("materialize failed: %w", err)
	}
	if err := idx.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("build_id", idx.Meta.BuildID.String()).
		Dur("elapsed", time.Since(start)).
		Msg("build completed")
	return &Result{Index: idx, Walk: walker.Stats()}, nil
}

// Run builds the index and persists the snapshot to cfg.Output.
func Run(ctx context.Context, cfg config.IndexConfig, logger zerolog.Logger) (*Result, error) {
	res, err := Build(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := indexing.PersistSnapshot(cfg.Output, res.Index); err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}
	res.Output = cfg.Output

	logger.Info().
		Str("component", "pipeline").
		Str("output", cfg.Output).
		Int("files", res.Index.Meta.NumFiles).
		Int("dirs", res.Index.Meta.NumDirs).
		Msg("snapshot written")
	return res, nil
}
