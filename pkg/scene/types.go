package scene

// AdjustMode controls how a node's size/position reacts when the physical
// resolution diverges from the scene's authoring resolution. Grounded on
// gui.cpp's AdjustPosScale (ADJUST_MODE_FIT picks the smaller of the two
// reference-scale axes, ADJUST_MODE_ZOOM the larger, ADJUST_MODE_STRETCH
// applies each axis independently — the "legacy" behavior spec.md §4.D
// names).
type AdjustMode int

const (
	AdjustModeFit AdjustMode = iota
	AdjustModeZoom
	AdjustModeStretch
)

// Pivot is one of nine compass positions; CalcPivotDelta (gui.cpp) derives
// the origin offset subtracted from a node's quad before its local
// transform is applied.
type Pivot int

const (
	PivotCenter Pivot = iota
	PivotN
	PivotNE
	PivotE
	PivotSE
	PivotS
	PivotSW
	PivotW
	PivotNW
)

// XAnchor/YAnchor override the scaled position on their axis to hold a
// fixed edge distance, per AdjustPosScale's XANCHOR_LEFT/RIGHT and
// YANCHOR_TOP/BOTTOM branches.
type XAnchor int

const (
	XAnchorNone XAnchor = iota
	XAnchorLeft
	XAnchorRight
)

type YAnchor int

const (
	YAnchorNone YAnchor = iota
	YAnchorTop
	YAnchorBottom
)

// AdjustReference chooses whether a node's adjust math is relative to the
// scene (legacy) or to its immediate parent's size — gui.cpp's
// ADJUST_REFERENCE_LEGACY vs ADJUST_REFERENCE_PARENT.
type AdjustReference int

const (
	AdjustReferenceLegacy AdjustReference = iota
	AdjustReferenceParent
)

// ClippingMode selects whether a node acts as a stencil clipper.
type ClippingMode int

const (
	ClippingModeNone ClippingMode = iota
	ClippingModeStencil
)

// Playback enumerates the five animation playback modes spec.md §4.D
// names, plus "none" for texture-set animations that are not playing.
type Playback int

const (
	PlaybackNone Playback = iota
	PlaybackOnceForward
	PlaybackOnceBackward
	PlaybackLoopForward
	PlaybackLoopBackward
	PlaybackPingPong
)

func (p Playback) looping() bool {
	return p == PlaybackLoopForward || p == PlaybackLoopBackward || p == PlaybackPingPong
}

func (p Playback) backward() bool {
	return p == PlaybackOnceBackward || p == PlaybackLoopBackward
}

func (p Playback) pingPong() bool {
	return p == PlaybackPingPong
}

// EasingType enumerates the curve families applied to an animation's
// normalized time. Implemented directly rather than via an ecosystem
// easing package: no dependency in the example corpus ships this
// engine's specific curve set, and the formulas are a handful of lines
// each — see DESIGN.md.
type EasingType int

const (
	EasingLinear EasingType = iota
	EasingInQuad
	EasingOutQuad
	EasingInOutQuad
	EasingInCubic
	EasingOutCubic
	EasingInOutCubic
)

// Easing applies a curve to a normalized time value t in [0,1] and
// returns x in [0,1], per gui.cpp's dmEasing::GetValue call site in
// UpdateAnimations.
func (e EasingType) Apply(t float32) float32 {
	switch e {
	case EasingInQuad:
		return t * t
	case EasingOutQuad:
		return t * (2 - t)
	case EasingInOutQuad:
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t
	case EasingInCubic:
		return t * t * t
	case EasingOutCubic:
		u := t - 1
		return u*u*u + 1
	case EasingInOutCubic:
		if t < 0.5 {
			return 4 * t * t * t
		}
		u := 2*t - 2
		return 1 + u*u*u/2
	default:
		return t
	}
}
