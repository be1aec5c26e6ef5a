package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackRenderKeyOrdersByLayerFirst(t *testing.T) {
	low := packRenderKey(0, 5, 0, 0, 0)
	high := packRenderKey(1, 0, 0, 0, 0)
	assert.Less(t, low, high, "a higher layer must sort after every index in a lower layer")
}

func TestRenderStreamSortedByKey(t *testing.T) {
	s := newTestScene(t)
	a, err := s.NewNode("a", NodeTypeBox)
	require.NoError(t, err)
	require.NoError(t, s.SetLayer(a, 1))
	b, err := s.NewNode("b", NodeTypeBox)
	require.NoError(t, err)
	require.NoError(t, s.SetLayer(b, 0))

	entries := s.RenderStream()
	require.Len(t, entries, 2)
	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, entries[i-1].Key, entries[i].Key)
	}
	assert.Equal(t, b, entries[0].Node, "layer 0 node must render before layer 1")
}

func TestRenderStreamClipperEmitsClipWriteBeforeDescendants(t *testing.T) {
	s := newTestScene(t)
	clipper, err := s.NewNode("clipper", NodeTypeBox)
	require.NoError(t, err)
	require.NoError(t, s.SetClippingMode(clipper, ClippingModeStencil, false, true))

	child, err := s.NewNode("child", NodeTypeBox)
	require.NoError(t, err)
	require.NoError(t, s.SetParent(child, clipper))

	entries := s.RenderStream()
	require.GreaterOrEqual(t, len(entries), 2)
	assert.Equal(t, clipper, entries[0].Node, "the clip-write entry must precede the clipper's descendants")
}
