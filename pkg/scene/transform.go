package scene

// calcPivotDelta returns the origin offset subtracted from a node's quad
// before its local transform is applied, so rendering can assume a
// lower-left origin regardless of the authored pivot. Ported directly
// from gui.cpp's CalcPivotDelta.
func calcPivotDelta(pivot Pivot, width, height float32) Vec3 {
	var d Vec3
	switch pivot {
	case PivotCenter, PivotS, PivotN:
		d.X = -width * 0.5
	case PivotNE, PivotE, PivotSE:
		d.X = -width
	case PivotSW, PivotW, PivotNW:
		// no offset
	}
	switch pivot {
	case PivotCenter, PivotE, PivotW:
		d.Y = -height * 0.5
	case PivotN, PivotNE, PivotNW:
		d.Y = -height
	case PivotS, PivotSW, PivotSE:
		// no offset
	}
	return d
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// referenceScale returns how much the node's reference frame (the scene
// for a root, the parent's already-resolved adjust scale otherwise) has
// been scaled relative to the physical output, matching gui.cpp's
// CalculateReferenceScale. For a non-root node under
// AdjustReferenceParent this depends on the parent's localAdjustScale,
// so the caller must ensure the parent's local transform is resolved
// first (updateLocalTransform does this before reading it).
func (s *Scene) referenceScale(n *node) Vec3 {
	if s.adjustReference == AdjustReferenceLegacy || n.parent == invalidSlot {
		if s.width == 0 || s.height == 0 {
			return Vec3{1, 1, 1}
		}
		return Vec3{
			X: s.physicalWidth / s.width,
			Y: s.physicalHeight / s.height,
			Z: 1,
		}
	}
	parent := &s.nodes.slots[n.parent]
	return Vec3{X: parent.localAdjustScale.X, Y: parent.localAdjustScale.Y, Z: 1}
}

// adjustPosScale applies adjust-mode scaling and anchor overrides to a
// node's authored position/scale, porting gui.cpp's AdjustPosScale. The
// legacy adjust reference skips non-root nodes entirely (parent transform
// already carries the adjustment).
func (s *Scene) adjustPosScale(n *node, refScale Vec3, position, scale Vec3) (Vec3, Vec3) {
	if s.adjustReference == AdjustReferenceLegacy && n.parent != invalidSlot {
		return position, scale
	}

	adjustScale := refScale
	switch n.adjustMode {
	case AdjustModeFit:
		u := minf(refScale.X, refScale.Y)
		adjustScale.X, adjustScale.Y = u, u
	case AdjustModeZoom:
		u := maxf(refScale.X, refScale.Y)
		adjustScale.X, adjustScale.Y = u, u
	case AdjustModeStretch:
		// legacy: each axis independent, refScale unchanged
	}

	var parentDims Vec3
	if s.adjustReference == AdjustReferenceLegacy || n.parent == invalidSlot {
		parentDims = Vec3{X: s.width, Y: s.height}
	} else {
		parentDims = s.nodes.slots[n.parent].size
	}

	var offset Vec3
	adjustedDims := parentDims.Mul(adjustScale)
	var refSize Vec3
	if s.adjustReference == AdjustReferenceLegacy || n.parent == invalidSlot {
		refSize = Vec3{X: s.physicalWidth, Y: s.physicalHeight}
		offset = (refSize.Add(adjustedDims.Scale(-1))).Scale(0.5)
	} else {
		parentSize := s.nodes.slots[n.parent].size
		refSize = Vec3{X: parentSize.X * refScale.X, Y: parentSize.Y * refScale.Y}
	}

	scaledPosition := position.Mul(adjustScale)
	switch n.xAnchor {
	case XAnchorLeft:
		offset.X = 0
		scaledPosition.X = position.X * refScale.X
	case XAnchorRight:
		offset.X = 0
		distance := (parentDims.X - position.X) * refScale.X
		scaledPosition.X = refSize.X - distance
	}
	switch n.yAnchor {
	case YAnchorTop:
		offset.Y = 0
		distance := (parentDims.Y - position.Y) * refScale.Y
		scaledPosition.Y = refSize.Y - distance
	case YAnchorBottom:
		offset.Y = 0
		scaledPosition.Y = position.Y * refScale.Y
	}

	return scaledPosition.Add(offset), adjustScale.Mul(scale)
}

// updateLocalTransform recomputes a dirty node's local_transform and
// localAdjustScale, per gui.cpp's UpdateLocalTransform.
func (s *Scene) updateLocalTransform(idx int32) {
	n := &s.nodes.slots[idx]
	if s.adjustReference == AdjustReferenceParent && n.parent != invalidSlot && s.nodes.slots[n.parent].dirtyLocal {
		s.updateLocalTransform(n.parent)
	}
	position := n.position
	n.localAdjustScale = Vec3{1, 1, 1}
	refScale := s.referenceScale(n)
	position, n.localAdjustScale = s.adjustPosScale(n, refScale, position, Vec3{1, 1, 1})

	q := normalizeQuat(EulerToQuat(n.rotation))
	effScale := n.localAdjustScale.Mul(n.scale)
	m := rotationMat(q).Mul(scaleMat(effScale))
	m = m.WithTranslation(position)

	if s.adjustReference == AdjustReferenceParent && n.parent != invalidSlot {
		inv := Vec3{X: 1 / refScale.X, Y: 1 / refScale.Y, Z: 1}
		if refScale.X == 0 {
			inv.X = 1
		}
		if refScale.Y == 0 {
			inv.Y = 1
		}
		m = scaleMat(inv).Mul(m)
	}

	n.localTransform = m
	n.dirtyLocal = false
}

// WorldTransform returns a node's accumulated world transform and opacity,
// recomputing lazily via the traversal cache: a node whose cacheVersion
// matches the scene's current cacheVersion reuses its cached value
// instead of re-walking to the root, per spec.md §4.D's "traversal cache
// indexed by a monotonically-increasing cache version."
func (s *Scene) WorldTransform(h Handle) (Mat4, float32, error) {
	n, ok := s.nodes.get(h)
	if !ok {
		return Mat4{}, 0, ErrNotFound
	}
	m, op := s.worldTransformCached(int32(h.index()), n)
	return m, op, nil
}

func (s *Scene) worldTransformCached(idx int32, n *node) (Mat4, float32) {
	if n.cacheVersion == s.cacheVersion && !n.dirtyLocal {
		return n.worldTransform, n.worldOpacity
	}
	if n.dirtyLocal {
		s.updateLocalTransform(idx)
	}

	var world Mat4
	opacity := n.color[3]
	if n.parent == invalidSlot {
		world = n.localTransform
	} else {
		parent := &s.nodes.slots[n.parent]
		pm, popacity := s.worldTransformCached(n.parent, parent)
		world = pm.Mul(n.localTransform)
		opacity *= popacity
	}

	n.worldTransform = world
	n.worldOpacity = opacity
	n.cacheVersion = s.cacheVersion
	return world, opacity
}

// BumpCacheVersion invalidates every node's traversal cache, to be called
// once per render/update pass before re-resolving world transforms.
func (s *Scene) BumpCacheVersion() {
	s.cacheVersion++
}

// PivotDelta exposes calcPivotDelta for a node's current pivot and size,
// for renderer-side quad construction.
func (s *Scene) PivotDelta(h Handle) (Vec3, error) {
	n, ok := s.nodes.get(h)
	if !ok {
		return Vec3{}, ErrNotFound
	}
	return calcPivotDelta(n.pivot, n.size.X, n.size.Y), nil
}
