package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Voskan/enginert/pkg/hashreg"
)

func newTestScene(t *testing.T) *Scene {
	t.Helper()
	return New(Config{
		Capacity: 8, Width: 1280, Height: 720,
		PhysicalWidth: 1280, PhysicalHeight: 720,
		Hash: hashreg.NewRegistry(),
	})
}

func TestNewNodeAndLookupByName(t *testing.T) {
	s := newTestScene(t)
	h, err := s.NewNode("root", NodeTypeBox)
	require.NoError(t, err)

	got, ok := s.GetNodeByName("root")
	require.True(t, ok)
	assert.Equal(t, h, got)
	assert.Equal(t, 1, s.Len())
}

func TestOutOfResourcesWhenCapacityExhausted(t *testing.T) {
	s := New(Config{Capacity: 2, Hash: hashreg.NewRegistry()})
	_, err := s.NewNode("a", NodeTypeBox)
	require.NoError(t, err)
	_, err = s.NewNode("b", NodeTypeBox)
	require.NoError(t, err)
	_, err = s.NewNode("c", NodeTypeBox)
	assert.ErrorIs(t, err, ErrOutOfResources)
}

func TestDeleteNodeFreesSlotForReuse(t *testing.T) {
	s := newTestScene(t)
	h1, err := s.NewNode("a", NodeTypeBox)
	require.NoError(t, err)
	require.NoError(t, s.DeleteNode(h1))

	_, ok := s.nodes.get(h1)
	assert.False(t, ok, "stale handle must fail after delete")

	h2, err := s.NewNode("b", NodeTypeBox)
	require.NoError(t, err)
	assert.Equal(t, h1.index(), h2.index(), "freed slot must be reused")
	assert.NotEqual(t, h1.version(), h2.version(), "reused slot must bump its generation")
}

func TestSetParentReparentsAndUpdatesDirty(t *testing.T) {
	s := newTestScene(t)
	parent, err := s.NewNode("parent", NodeTypeBox)
	require.NoError(t, err)
	child, err := s.NewNode("child", NodeTypeBox)
	require.NoError(t, err)

	require.NoError(t, s.SetParent(child, parent))

	cn, _ := s.nodes.get(child)
	assert.Equal(t, int32(parent.index()), cn.parent)
}

func TestResetNodesRestoresSnapshotAndClearsAnimations(t *testing.T) {
	s := newTestScene(t)
	h, err := s.NewNode("n", NodeTypeBox)
	require.NoError(t, err)
	require.NoError(t, s.SetPosition(h, Vec3{X: 1, Y: 2, Z: 3}))
	require.NoError(t, s.SetNodeResetPoint(h))

	require.NoError(t, s.SetPosition(h, Vec3{X: 99, Y: 99, Z: 99}))
	require.NoError(t, s.Animate(h, PropertyPositionX, 50, PlaybackOnceForward, EasingLinear, 1, 0, nil, nil))
	assert.Equal(t, 1, s.LiveAnimationCount())

	s.ResetNodes()

	p, err := s.Position(h)
	require.NoError(t, err)
	assert.Equal(t, Vec3{X: 1, Y: 2, Z: 3}, p)
	assert.Equal(t, 0, s.LiveAnimationCount())
}

func TestResetNodesIsIdempotent(t *testing.T) {
	s := newTestScene(t)
	h, err := s.NewNode("n", NodeTypeBox)
	require.NoError(t, err)
	require.NoError(t, s.SetPosition(h, Vec3{X: 5, Y: 0, Z: 0}))
	require.NoError(t, s.SetNodeResetPoint(h))

	s.ResetNodes()
	s.ResetNodes()

	p, err := s.Position(h)
	require.NoError(t, err)
	assert.Equal(t, Vec3{X: 5, Y: 0, Z: 0}, p)
}
