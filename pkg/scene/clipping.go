package scene

import "go.uber.org/zap"

// StencilScope is the {ref_val, write_mask, test_mask, color_mask} state a
// clipping node's descendants must apply when drawing, per spec.md §4.D
// "Stencil clipping". Field names and bit math follow gui.cpp's
// StencilScope/UpdateScope directly.
type StencilScope struct {
	RefVal    uint8
	WriteMask uint8
	TestMask  uint8
	ColorMask uint8
}

type clippingNode struct {
	nodeIndex       int32
	parentIndex     int32 // index into the clippers slice, or invalidSlot
	nextNonInvIndex int32
	scope           StencilScope
	childScope      StencilScope
	visibleRenderKey uint64
}

func calcBitRange(val uint16) uint16 {
	var n uint16
	for val != 0 {
		n++
		val >>= 1
	}
	return n
}

func calcMask(bits uint16) uint8 {
	if bits >= 8 {
		return 0xff
	}
	return uint8((1 << bits) - 1)
}

// updateScope computes a clipper's own scope and the scope its
// non-clipping children inherit, per gui.cpp's UpdateScope. nonInvCount
// is the number of sibling non-inverted clippers sharing this bit range;
// invCount is only used for the overflow check on the inverted path's
// sibling index (mirroring gui.cpp's "inverted_count" local).
func updateScope(inverted, visible bool, parent *StencilScope, index, nonInvCount, invCount, bitFieldOffset uint16, log *zap.Logger) (scope, childScope StencilScope) {
	bitRange := calcBitRange(nonInvCount)

	scope.WriteMask = 0xff
	if parent != nil {
		scope.TestMask = parent.TestMask
	}

	if !inverted {
		scope.RefVal = uint8((index + 1) << bitFieldOffset)
		if parent != nil {
			scope.RefVal |= parent.RefVal
		}
	} else {
		scope.RefVal = 1 << (7 - index)
		if parent != nil {
			scope.RefVal |= calcMask(bitFieldOffset) & parent.RefVal
		}
	}

	if inverted && visible {
		scope.ColorMask = 0xf
	}

	childScope.WriteMask = 0
	if !inverted {
		childScope.RefVal = scope.RefVal
		childScope.TestMask = (calcMask(bitRange) << bitFieldOffset) | scope.TestMask
	} else {
		childScope.TestMask = scope.RefVal
		if parent != nil {
			childScope.RefVal |= parent.RefVal
			childScope.TestMask |= parent.TestMask
		}
	}
	childScope.ColorMask = 0xf

	invertedCount := invCount
	if inverted {
		invertedCount = index + 1
	}
	bitCount := invertedCount + bitFieldOffset + bitRange
	if bitCount > 8 && log != nil {
		log.Warn("scene: stencil buffer budget exceeded, clipping will not work as expected",
			zap.Uint16("bit_field_offset", bitFieldOffset),
			zap.Uint16("bits_needed", bitRange),
			zap.Uint16("inverted_count", invertedCount))
	}
	return scope, childScope
}

// scopeCollector is the mutable state threaded through the recursive
// clipper-collection walk, one per sibling group, mirroring gui.cpp's
// ScopeContext.
type scopeCollector struct {
	nonInvHead, nonInvTail int32
	clipperCount           uint16
	invClipperCount        uint16
}

// collectInvClippers walks a sibling chain starting at startIdx,
// registering every enabled stencil-clipping descendant into clippers.
// Inverted clippers get their scope assigned immediately (their bit
// comes from the shared inverted-clipper counter, not sibling index);
// non-inverted clippers are queued into the collector's linked list for
// collectClippers to size and assign afterward. Ports
// CollectInvClippers.
func (s *Scene) collectInvClippers(startIdx int32, bitFieldOffset uint16, clippers *[]clippingNode, collector *scopeCollector, parentClipperIdx int32) {
	var parent *clippingNode
	if parentClipperIdx != invalidSlot {
		parent = &(*clippers)[parentClipperIdx]
	}

	idx := startIdx
	for idx != invalidSlot {
		n := &s.nodes.slots[idx]
		if n.enabled {
			switch n.clippingMode {
			case ClippingModeStencil:
				clipperIdx := int32(len(*clippers))
				*clippers = append(*clippers, clippingNode{
					nodeIndex:       idx,
					parentIndex:     parentClipperIdx,
					nextNonInvIndex: invalidSlot,
				})
				n.clipperIndex = clipperIdx
				c := &(*clippers)[clipperIdx]

				if n.clippingInverted {
					var parentScope *StencilScope
					if parent != nil {
						parentScope = &parent.childScope
					}
					c.scope, c.childScope = updateScope(true, n.clippingVisible, parentScope, collector.invClipperCount, 0, 0, bitFieldOffset, s.log)
					collector.invClipperCount++
					s.collectInvClippers(n.childHead, bitFieldOffset, clippers, collector, clipperIdx)
				} else {
					if collector.nonInvHead == invalidSlot {
						collector.nonInvHead = clipperIdx
					} else {
						(*clippers)[collector.nonInvTail].nextNonInvIndex = clipperIdx
					}
					collector.nonInvTail = clipperIdx
					collector.clipperCount++
				}
			case ClippingModeNone:
				n.clipperIndex = parentClipperIdx
				s.collectInvClippers(n.childHead, bitFieldOffset, clippers, collector, parentClipperIdx)
			}
		}
		idx = n.nextSibling
	}
}

// collectClippers assigns scopes to the non-inverted clippers gathered by
// collectInvClippers, then recurses into each one's children with the
// bit-field offset advanced past the range just consumed. Ports
// CollectClippers.
func (s *Scene) collectClippers(startIdx int32, bitFieldOffset uint16, invClipperCount uint16, clippers *[]clippingNode, parentClipperIdx int32) {
	collector := scopeCollector{nonInvHead: invalidSlot, nonInvTail: invalidSlot, invClipperCount: invClipperCount}
	s.collectInvClippers(startIdx, bitFieldOffset, clippers, &collector, parentClipperIdx)

	idx := collector.nonInvHead
	var i uint16
	for idx != invalidSlot {
		c := &(*clippers)[idx]
		var parentScope *StencilScope
		if c.parentIndex != invalidSlot {
			parentScope = &(*clippers)[c.parentIndex].childScope
		}
		n := &s.nodes.slots[c.nodeIndex]
		c.scope, c.childScope = updateScope(false, n.clippingVisible, parentScope, i, collector.clipperCount, collector.invClipperCount, bitFieldOffset, s.log)
		bitRange := calcBitRange(collector.clipperCount)
		s.collectClippers(n.childHead, bitFieldOffset+bitRange, collector.invClipperCount, clippers, idx)
		idx = c.nextNonInvIndex
		i++
	}
}

// CollectClippingScopes recomputes every clipping node's stencil scope
// for the current frame. Scope assignment carries no state between
// frames (spec.md §4.D's clipper state machine is "recursive
// depth-first; no persistent state between frames").
func (s *Scene) CollectClippingScopes() []clippingNode {
	for i := range s.nodes.slots {
		if s.nodes.inUse[i] {
			s.nodes.slots[i].clipperIndex = invalidSlot
		}
	}
	var clippers []clippingNode
	s.collectClippers(s.nodes.rootHead, 0, 0, &clippers, invalidSlot)
	return clippers
}
