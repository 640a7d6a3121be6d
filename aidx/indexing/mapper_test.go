package indexing

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathIDMapper(t *testing.T) {
	m := NewPathIDMapper([]string{"/art/a.png", "/art/sub/b.png", "/art/./a.png"})
	assert.Equal(t, 2, m.Size(), "a repeated canonical path is counted once")

	id, ok := m.Lookup("/art/sub/../a.png")
	require.True(t, ok)
	assert.Equal(t, PathID(0), id, "the lowest id wins")

	id, ok = m.Lookup("/art/sub/b.png")
	require.True(t, ok)
	assert.Equal(t, PathID(1), id)

	_, ok = m.Lookup("/art/c.png")
	assert.False(t, ok)
}

func TestPathIDMapperKeepsBackslashNames(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("backslash is a separator on windows")
	}
	m := NewPathIDMapper([]string{`/art/a\b.png`, "/art/a/b.png"})
	assert.Equal(t, 2, m.Size())

	id, ok := m.Lookup(`/art/a\b.png`)
	require.True(t, ok)
	assert.Equal(t, PathID(0), id)
}
