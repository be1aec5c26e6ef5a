package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Voskan/enginert/pkg/hashreg"
)

func TestCalcPivotDeltaCompassPositions(t *testing.T) {
	d := calcPivotDelta(PivotCenter, 100, 50)
	assert.Equal(t, Vec3{X: -50, Y: -25}, d)

	d = calcPivotDelta(PivotNW, 100, 50)
	assert.Equal(t, Vec3{X: 0, Y: -50}, d)

	d = calcPivotDelta(PivotSE, 100, 50)
	assert.Equal(t, Vec3{X: -100, Y: 0}, d)
}

func TestAdjustModeFitPicksMinimumScale(t *testing.T) {
	s := New(Config{
		Capacity: 4, Width: 1000, Height: 500,
		PhysicalWidth: 2000, PhysicalHeight: 600, // scale_x=2, scale_y=1.2
		Hash: hashreg.NewRegistry(),
	})
	h, err := s.NewNode("n", NodeTypeBox)
	require.NoError(t, err)
	require.NoError(t, s.SetAdjustMode(h, AdjustModeFit))

	n, _ := s.nodes.get(h)
	s.updateLocalTransform(int32(h.index()))
	assert.InDelta(t, 1.2, n.localAdjustScale.X, 1e-4)
	assert.InDelta(t, 1.2, n.localAdjustScale.Y, 1e-4)
}

func TestAdjustModeZoomPicksMaximumScale(t *testing.T) {
	s := New(Config{
		Capacity: 4, Width: 1000, Height: 500,
		PhysicalWidth: 2000, PhysicalHeight: 600,
		Hash: hashreg.NewRegistry(),
	})
	h, err := s.NewNode("n", NodeTypeBox)
	require.NoError(t, err)
	require.NoError(t, s.SetAdjustMode(h, AdjustModeZoom))

	n, _ := s.nodes.get(h)
	s.updateLocalTransform(int32(h.index()))
	assert.InDelta(t, 2.0, n.localAdjustScale.X, 1e-4)
	assert.InDelta(t, 2.0, n.localAdjustScale.Y, 1e-4)
}

func TestWorldTransformMatchesLocalForRootNode(t *testing.T) {
	s := newTestScene(t)
	h, err := s.NewNode("root", NodeTypeBox)
	require.NoError(t, err)
	require.NoError(t, s.SetPosition(h, Vec3{X: 10, Y: 20, Z: 0}))

	m, opacity, err := s.WorldTransform(h)
	require.NoError(t, err)
	assert.Equal(t, float32(1), opacity)
	assert.Equal(t, Vec3{X: 10, Y: 20, Z: 0}, m.Translation())
}

func TestWorldTransformAccumulatesThroughParent(t *testing.T) {
	s := newTestScene(t)
	parent, err := s.NewNode("parent", NodeTypeBox)
	require.NoError(t, err)
	require.NoError(t, s.SetPosition(parent, Vec3{X: 100, Y: 0, Z: 0}))

	child, err := s.NewNode("child", NodeTypeBox)
	require.NoError(t, err)
	require.NoError(t, s.SetParent(child, parent))
	require.NoError(t, s.SetPosition(child, Vec3{X: 5, Y: 0, Z: 0}))

	m, _, err := s.WorldTransform(child)
	require.NoError(t, err)
	assert.InDelta(t, 105, m.Translation().X, 1e-3)
}

func TestWorldTransformCacheReusedUntilCacheVersionBumped(t *testing.T) {
	s := newTestScene(t)
	h, err := s.NewNode("n", NodeTypeBox)
	require.NoError(t, err)
	require.NoError(t, s.SetPosition(h, Vec3{X: 1, Y: 0, Z: 0}))

	_, _, err = s.WorldTransform(h)
	require.NoError(t, err)

	// Mutating the underlying slot directly (bypassing dirtyLocal) proves
	// the cached value is reused: WorldTransform must not recompute
	// until BumpCacheVersion is called.
	n, _ := s.nodes.get(h)
	n.worldTransform = Identity().WithTranslation(Vec3{X: 999})

	m2, _, err := s.WorldTransform(h)
	require.NoError(t, err)
	assert.Equal(t, Vec3{X: 999}, m2.Translation())

	s.BumpCacheVersion()
	require.NoError(t, s.SetPosition(h, Vec3{X: 1, Y: 0, Z: 0}))
	m3, _, err := s.WorldTransform(h)
	require.NoError(t, err)
	assert.Equal(t, Vec3{X: 1, Y: 0, Z: 0}, m3.Translation())
}
