package scene

import "sort"

// Render-key field widths, ported from gui.cpp's LAYER_RANGE/INDEX_RANGE/
// CLIPPER_RANGE constants (3/9/8 bits respectively; the sub-layer and
// sub-index fields reuse the layer and index widths). spec.md §4.D
// documents the same 64-bit packing with fields
// {layer:3, index:9, clipper_id:8, sub_layer:3, sub_index:9} MSB→LSB;
// the 512-node scene capacity is exactly 2^9, the width of the index and
// sub-index fields.
const (
	layerBits    = 3
	indexBits    = 9
	clipperBits  = 8
	subLayerBits = layerBits
	subIndexBits = indexBits

	subIndexShift = 0
	subLayerShift = subIndexShift + subIndexBits
	clipperShift  = subLayerShift + subLayerBits
	indexShift    = clipperShift + clipperBits
	layerShift    = indexShift + indexBits
)

// packRenderKey assembles a 64-bit sortable render key. Ports gui.cpp's
// two overloaded CalcRenderKey free functions.
func packRenderKey(layer uint16, index uint16, clipperID uint8, subLayer uint16, subIndex uint16) uint64 {
	return uint64(layer)<<layerShift |
		uint64(index)<<indexShift |
		uint64(clipperID)<<clipperShift |
		uint64(subLayer)<<subLayerShift |
		uint64(subIndex)<<subIndexShift
}

// renderScope tracks the nested render-order counter while walking a
// clipper's subtree, mirroring gui.cpp's Scope struct (m_Index starts at
// 1 and saturates at 255, the width of the clipper-id field).
type renderScope struct {
	index     uint16
	rootLayer uint16
	rootIndex uint16
}

func (sc *renderScope) increment() {
	if sc.index < 255 {
		sc.index++
	}
}

func calcScopedRenderKey(sc *renderScope, layer, index uint16) uint64 {
	if sc == nil {
		return packRenderKey(layer, index, 0, 0, 0)
	}
	return packRenderKey(sc.rootLayer, sc.rootIndex, uint8(sc.index), layer, index)
}

// RenderEntry pairs a node handle with its sortable render key, per
// spec.md §4.D: "within a clipper's subtree, a clip-write entry precedes
// all drawn descendants, and inverted clippers emit an extra
// visible-drawing entry after their subtree."
type RenderEntry struct {
	Node Handle
	Key  uint64
}

// collectRenderEntries walks the sibling chain starting at idx in
// render order (root list or a node's childHead), emitting one
// RenderEntry per visible node plus the clip-write/visible-draw entries
// a stencil clipper requires. Ports gui.cpp's CollectRenderEntries.
func (s *Scene) collectRenderEntries(idx int32, order uint16, sc *renderScope, clippers []clippingNode, out *[]RenderEntry) uint16 {
	for idx != invalidSlot {
		n := &s.nodes.slots[idx]
		if !n.enabled {
			idx = n.nextSibling
			continue
		}
		h := makeHandle(uint16(idx), n.version)
		layer := n.layer

		if n.clipperIndex != invalidSlot && clippers[n.clipperIndex].nodeIndex == idx {
			clipper := &clippers[n.clipperIndex]
			rootClipper := sc == nil

			var tmp renderScope
			current := sc
			if current == nil {
				tmp = renderScope{index: 1, rootLayer: 0, rootIndex: order}
				current = &tmp
				order++
			} else {
				current.increment()
			}

			clippingKey := calcScopedRenderKey(current, 0, 0)
			renderKey := calcScopedRenderKey(current, layer, 1)
			s.collectRenderEntries(n.childHead, 2, current, clippers, out)
			if layer > 0 {
				renderKey = calcScopedRenderKey(current, layer, 1)
			}
			clipper.visibleRenderKey = renderKey

			*out = append(*out, RenderEntry{Node: h, Key: clippingKey})
			if n.clippingVisible {
				*out = append(*out, RenderEntry{Node: h, Key: renderKey})
			}
			if !rootClipper {
				current.increment()
			}
			idx = n.nextSibling
			continue
		}

		*out = append(*out, RenderEntry{Node: h, Key: calcScopedRenderKey(sc, layer, order)})
		order++
		s.collectRenderEntries(n.childHead, 0, sc, clippers, out)
		idx = n.nextSibling
	}
	return order
}

// RenderStream computes this frame's clipping scopes and returns the
// sorted list of RenderEntry values a renderer should draw in order.
func (s *Scene) RenderStream() []RenderEntry {
	clippers := s.CollectClippingScopes()
	var entries []RenderEntry
	s.collectRenderEntries(s.nodes.rootHead, 0, nil, clippers, &entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}
