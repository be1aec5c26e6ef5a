package glyphcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func glyphTable() map[rune]*Glyph {
	return map[rune]*Glyph{
		'a': {Width: 8, Advance: 10, Ascent: 8, Descent: 2, Bitmap: bitmap(8, 10)},
		'b': {Width: 8, Advance: 10, Ascent: 8, Descent: 2, Bitmap: bitmap(8, 10)},
	}
}

func TestBuildVerticesRequiresFaceLayer(t *testing.T) {
	f := NewFont(glyphTable(), 8, 2, LayerOutline, newTestCache(4, 4), nil)
	_, err := f.BuildVertices("ab", 1, 0, 0)
	assert.Error(t, err)
}

func TestBuildVerticesOrdersLayersShadowOutlineFace(t *testing.T) {
	f := NewFont(glyphTable(), 8, 2, LayerFace|LayerOutline|LayerShadow, newTestCache(4, 4), nil)
	verts, err := f.BuildVertices("ab", 1, 0, 0)
	require.NoError(t, err)

	glyphsInRun := 2
	perLayer := glyphsInRun * verticesPerQuad
	require.Len(t, verts, perLayer*3)

	assertLayer := func(from, to int, want [3]float32) {
		for i := from; i < to; i++ {
			assert.Equal(t, want, verts[i].LayerMasks)
		}
	}
	assertLayer(0, perLayer, [3]float32{0, 0, 1})          // shadow first
	assertLayer(perLayer, perLayer*2, [3]float32{0, 1, 0}) // then outline
	assertLayer(perLayer*2, perLayer*3, [3]float32{1, 0, 0}) // then face
}

func TestBuildVerticesSkipsGlyphsTheCacheCannotHold(t *testing.T) {
	table := map[rune]*Glyph{
		'a': {Width: 8, Advance: 10, Ascent: 8, Descent: 2, Bitmap: bitmap(8, 10)},
		'b': {Width: 500, Advance: 10, Ascent: 8, Descent: 2, Bitmap: bitmap(500, 10)}, // too large for the cell
	}
	f := NewFont(table, 8, 2, LayerFace, newTestCache(4, 4), nil)

	verts, err := f.BuildVertices("ab", 1, 0, 0)
	require.NoError(t, err)
	assert.Len(t, verts, verticesPerQuad, "the oversized glyph must be skipped, not fail the whole call")
}
