package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/asset-index/aidx/config"
	"github.com/ZanzyTHEbar/asset-index/aidx/filesystem"
	"github.com/ZanzyTHEbar/asset-index/aidx/indexing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(f), 0o644))
	}
}

func testConfig(t *testing.T, roots ...string) config.IndexConfig {
	return config.IndexConfig{
		Roots:      roots,
		Delimiters: []string{"_", "-"},
		IgnoreFile: ".assetignore",
		Output:     filepath.Join(t.TempDir(), "assets.aidx"),
	}
}

func TestRun(t *testing.T) {
	base := t.TempDir()
	art := filepath.Join(base, "art")
	sfx := filepath.Join(base, "sfx")
	writeFiles(t, art, "tiles/grass-tile.png", "tiles/stone_tile.png", "draft.tmp", ".assetignore")
	writeFiles(t, sfx, "hero_jump.ogg")
	require.NoError(t, os.WriteFile(filepath.Join(art, ".assetignore"), []byte("*.tmp\n"), 0o644))

	cfg := testConfig(t, art, sfx)
	res, err := Run(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, cfg.Output, res.Output)
	assert.Equal(t, 3, res.Index.Meta.NumFiles)
	assert.Equal(t, int64(3), res.Walk.FilesProcessed)
	require.Len(t, res.Index.Roots, 2)
	assert.Equal(t, "art", res.Index.Roots[0].Name)
	assert.Equal(t, "sfx", res.Index.Roots[1].Name)

	loaded, err := indexing.LoadSnapshot(cfg.Output)
	require.NoError(t, err)
	assert.Equal(t, res.Index.Meta, loaded.Meta)
	assert.Equal(t, res.Index.Paths, loaded.Paths)

	tile := loaded.Roots[0].Lookup(indexing.KindStem, "tile")
	assert.Len(t, tile, 2, "both delimiters split the stem")
}

func TestBuildWritesNothing(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.png")

	cfg := testConfig(t, root)
	res, err := Build(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, res.Output)
	assert.Equal(t, 1, res.Index.Meta.NumFiles)

	_, err = os.Stat(cfg.Output)
	assert.True(t, os.IsNotExist(err))
}

func TestBuildErrors(t *testing.T) {
	t.Run("NoRoots", func(t *testing.T) {
		_, err := Build(context.Background(), testConfig(t), zerolog.Nop())
		assert.ErrorIs(t, err, config.ErrNoRoots)
	})

	t.Run("MissingRoot", func(t *testing.T) {
		cfg := testConfig(t, filepath.Join(t.TempDir(), "missing"))
		_, err := Build(context.Background(), cfg, zerolog.Nop())
		assert.Error(t, err)
	})

	t.Run("OverlappingRoots", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, "sub/a.png")
		cfg := testConfig(t, root, filepath.Join(root, "sub"))
		_, err := Build(context.Background(), cfg, zerolog.Nop())
		assert.ErrorIs(t, err, filesystem.ErrDuplicateRoot)
	})

	t.Run("UnwritableOutput", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, "a.png")
		cfg := testConfig(t, root)
		cfg.Output = filepath.Join(root, "no", "such", "dir", "assets.aidx")
		_, err := Run(context.Background(), cfg, zerolog.Nop())
		assert.Error(t, err)
	})

	t.Run("Cancelled", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, "a.png")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Build(ctx, testConfig(t, root), zerolog.Nop())
		assert.ErrorIs(t, err, context.Canceled)
	})
}
