// Package scene implements component (D) of the engine core: a scene
// graph with lazily-recomputed local/world transforms, an easing/
// playback animation system, stencil-clipping bit-partitioning, and
// render-key packing, grounded on the original engine's
// engine/gui/src/gui.cpp.
package scene

import (
	"go.uber.org/zap"

	"github.com/Voskan/enginert/pkg/hashreg"
)

// Config bundles a Scene's construction-time dependencies, following the
// teacher's functional-option-over-fields convention adapted to this
// package's smaller surface.
type Config struct {
	Capacity int // node table size, capped at 512 by the render-key field widths
	Width    float32
	Height   float32
	PhysicalWidth  float32
	PhysicalHeight float32
	AdjustReference AdjustReference
	Hash *hashreg.Registry
	Log  *zap.Logger
}

const maxNodeCapacity = 512

// Scene owns the node slot table, the live-animation list, and the
// per-scene scaling/reference state used by the adjust-mode math.
type Scene struct {
	nodes *slotTable
	anims []animation

	width, height                 float32
	physicalWidth, physicalHeight float32
	adjustReference                AdjustReference

	hash *hashreg.Registry
	log  *zap.Logger

	cacheVersion uint64
	textures     map[uint64]any
	fonts        map[uint64]any
	layers       map[uint64]uint16
	layouts      map[uint64]any
}

// New constructs a Scene. Capacity is clamped to maxNodeCapacity; spec.md
// §4.D documents this as a hard cap imposed by the render-key field
// widths (9 bits for a node's render index).
func New(cfg Config) *Scene {
	cap := cfg.Capacity
	if cap <= 0 || cap > maxNodeCapacity {
		cap = maxNodeCapacity
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Scene{
		nodes:          newSlotTable(cap),
		width:          cfg.Width,
		height:         cfg.Height,
		physicalWidth:  cfg.PhysicalWidth,
		physicalHeight: cfg.PhysicalHeight,
		adjustReference: cfg.AdjustReference,
		hash:           cfg.Hash,
		log:            log,
		textures:       make(map[uint64]any),
		fonts:          make(map[uint64]any),
		layers:         make(map[uint64]uint16),
		layouts:        make(map[uint64]any),
	}
}

// NewNode creates a node, appending it to the root-level render list. Use
// SetParent to reparent it under another node.
func (s *Scene) NewNode(name string, nodeType NodeType) (Handle, error) {
	h, n, err := s.nodes.alloc()
	if err != nil {
		return 0, err
	}
	n.nodeType = nodeType
	if name != "" {
		n.nameHash = hashreg.String64(s.hash, name)
		s.nodes.byName[n.nameHash] = h
	}
	s.appendRoot(h)
	return h, nil
}

func (s *Scene) appendRoot(h Handle) {
	idx := int32(h.index())
	if s.nodes.rootHead == invalidSlot {
		s.nodes.rootHead = idx
	} else {
		s.nodes.slots[s.nodes.rootTail].nextSibling = idx
		s.nodes.slots[idx].prevSibling = s.nodes.rootTail
	}
	s.nodes.rootTail = idx
}

func (s *Scene) removeRoot(idx int32) {
	n := &s.nodes.slots[idx]
	if n.prevSibling != invalidSlot {
		s.nodes.slots[n.prevSibling].nextSibling = n.nextSibling
	} else {
		s.nodes.rootHead = n.nextSibling
	}
	if n.nextSibling != invalidSlot {
		s.nodes.slots[n.nextSibling].prevSibling = n.prevSibling
	} else {
		s.nodes.rootTail = n.prevSibling
	}
	n.nextSibling, n.prevSibling = invalidSlot, invalidSlot
}

func (s *Scene) appendChild(parentIdx, idx int32) {
	parent := &s.nodes.slots[parentIdx]
	if parent.childHead == invalidSlot {
		parent.childHead = idx
		s.nodes.slots[idx].prevSibling = invalidSlot
	} else {
		tail := parent.childHead
		for s.nodes.slots[tail].nextSibling != invalidSlot {
			tail = s.nodes.slots[tail].nextSibling
		}
		s.nodes.slots[tail].nextSibling = idx
		s.nodes.slots[idx].prevSibling = tail
	}
	s.nodes.slots[idx].nextSibling = invalidSlot
}

func (s *Scene) removeChild(parentIdx, idx int32) {
	n := &s.nodes.slots[idx]
	if n.prevSibling != invalidSlot {
		s.nodes.slots[n.prevSibling].nextSibling = n.nextSibling
	} else {
		s.nodes.slots[parentIdx].childHead = n.nextSibling
	}
	if n.nextSibling != invalidSlot {
		s.nodes.slots[n.nextSibling].prevSibling = n.prevSibling
	}
	n.nextSibling, n.prevSibling = invalidSlot, invalidSlot
}

// SetParent reparents a node. Passing an invalid parent handle (0) moves
// the node back to the root-level list.
func (s *Scene) SetParent(h Handle, parent Handle) error {
	n, ok := s.nodes.get(h)
	if !ok {
		return ErrNotFound
	}
	if parent != 0 {
		if _, ok := s.nodes.get(parent); !ok {
			return ErrNotFound
		}
	}
	idx := int32(h.index())

	if n.parent != invalidSlot {
		s.removeChild(n.parent, idx)
	} else {
		s.removeRoot(idx)
	}

	if parent == 0 {
		n.parent = invalidSlot
		s.appendRoot(h)
		return nil
	}
	n.parent = int32(parent.index())
	s.appendChild(int32(parent.index()), idx)
	n.dirtyLocal = true
	return nil
}

// DeleteNode releases a node's slot. It does not recursively delete
// children; callers are expected to walk the tree themselves, matching
// gui.cpp's DeleteNode contract (which also operates on a single node).
func (s *Scene) DeleteNode(h Handle) error {
	n, ok := s.nodes.get(h)
	if !ok {
		return ErrNotFound
	}
	idx := int32(h.index())
	if n.parent != invalidSlot {
		s.removeChild(n.parent, idx)
	} else {
		s.removeRoot(idx)
	}
	if n.nameHash != 0 {
		delete(s.nodes.byName, n.nameHash)
	}
	s.nodes.free_(h)
	return nil
}

// GetNodeByName resolves a node previously created with a non-empty name.
func (s *Scene) GetNodeByName(name string) (Handle, bool) {
	h, ok := s.nodes.byName[hashreg.String64(s.hash, name)]
	return h, ok
}

// Len reports the number of live nodes, used by tests and metrics.
func (s *Scene) Len() int {
	n := 0
	for _, used := range s.nodes.inUse {
		if used {
			n++
		}
	}
	return n
}

// ResetNodes restores every node with a reset point to its snapshotted
// properties and clears all live animations, matching gui.cpp's
// ResetNodes (used when re-entering a GUI scene/screen).
func (s *Scene) ResetNodes() {
	for i := range s.nodes.slots {
		if !s.nodes.inUse[i] {
			continue
		}
		n := &s.nodes.slots[i]
		if n.hasResetPoint {
			n.restore(n.resetSnapshot)
			n.dirtyLocal = true
		}
	}
	s.anims = s.anims[:0]
}

// SetNodeResetPoint snapshots a node's current property state so a later
// ResetNodes call can restore it.
func (s *Scene) SetNodeResetPoint(h Handle) error {
	n, ok := s.nodes.get(h)
	if !ok {
		return ErrNotFound
	}
	n.resetSnapshot = n.snapshot()
	n.hasResetPoint = true
	return nil
}
