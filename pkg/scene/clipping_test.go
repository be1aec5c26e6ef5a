package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Voskan/enginert/pkg/hashreg"
)

func newObservedScene(t *testing.T) (*Scene, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	s := New(Config{
		Capacity: 16, Width: 100, Height: 100, PhysicalWidth: 100, PhysicalHeight: 100,
		Hash: hashreg.NewRegistry(),
		Log:  zap.New(core),
	})
	return s, logs
}

func TestSingleClipperGetsRootScope(t *testing.T) {
	s, _ := newObservedScene(t)
	h, err := s.NewNode("clip", NodeTypeBox)
	require.NoError(t, err)
	require.NoError(t, s.SetClippingMode(h, ClippingModeStencil, false, true))

	clippers := s.CollectClippingScopes()
	require.Len(t, clippers, 1)
	assert.Equal(t, uint8(1), clippers[0].scope.RefVal)
	assert.Equal(t, uint8(0xff), clippers[0].scope.WriteMask)
}

func TestNestedClipperChildTestMaskIncludesParentRange(t *testing.T) {
	s, _ := newObservedScene(t)
	parent, err := s.NewNode("outer", NodeTypeBox)
	require.NoError(t, err)
	require.NoError(t, s.SetClippingMode(parent, ClippingModeStencil, false, true))

	child, err := s.NewNode("inner", NodeTypeBox)
	require.NoError(t, err)
	require.NoError(t, s.SetParent(child, parent))
	require.NoError(t, s.SetClippingMode(child, ClippingModeStencil, false, true))

	clippers := s.CollectClippingScopes()
	require.Len(t, clippers, 2)
	// The child's test mask must carry the parent's ref_val forward so a
	// descendant is only drawn where both ancestors' stencil bits match.
	assert.NotZero(t, clippers[1].scope.TestMask&clippers[0].scope.RefVal)
}

func TestExceedingBitBudgetLogsWarning(t *testing.T) {
	s, logs := newObservedScene(t)
	root, err := s.NewNode("root", NodeTypeBox)
	require.NoError(t, err)

	// Nine inverted clippers nested one inside another each consume one
	// dedicated top bit (spec.md §4.D), overflowing the 8-bit stencil
	// budget and triggering the degraded-correctness warning path.
	parent := root
	for i := 0; i < 9; i++ {
		child, err := s.NewNode("", NodeTypeBox)
		require.NoError(t, err)
		require.NoError(t, s.SetParent(child, parent))
		require.NoError(t, s.SetClippingMode(child, ClippingModeStencil, true, true))
		parent = child
	}

	s.CollectClippingScopes()
	assert.Positive(t, logs.Len(), "stencil budget overflow must log a warning")
}
