package glyphcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetGlyphFallsBackToTilde(t *testing.T) {
	tilde := &Glyph{Width: 5, Advance: 6, Ascent: 4, Descent: 1, Bitmap: bitmap(5, 5)}
	f := NewFont(map[rune]*Glyph{'~': tilde}, 4, 1, LayerFace, newTestCache(2, 2), nil)

	g, ok := f.GetGlyph('Z')
	require.True(t, ok)
	assert.Same(t, tilde, g)
}

func TestGetGlyphMissingBothLogsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := NewFont(map[rune]*Glyph{}, 4, 1, LayerFace, newTestCache(2, 2), zap.New(core))

	_, ok := f.GetGlyph('Z')
	assert.False(t, ok)
	assert.Equal(t, 1, logs.Len())
}

func TestEnsureSkipsCacheReloadWithinSameFrame(t *testing.T) {
	c := newTestCache(1, 1)
	g := &Glyph{Width: 10, Ascent: 8, Descent: 2, Bitmap: bitmap(10, 10)}
	f := NewFont(map[rune]*Glyph{'a': g}, 8, 2, LayerFace, c, nil)

	require.NoError(t, f.Ensure(1, g))
	x, y := g.cellX, g.cellY
	require.NoError(t, f.Ensure(1, g))
	assert.Equal(t, x, g.cellX)
	assert.Equal(t, y, g.cellY)
}
