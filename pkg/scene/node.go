package scene

// Handle identifies a node across its lifetime: the low 16 bits are the
// slot index, the high 16 bits are the slot's generation. Re-creating a
// node in a freed slot bumps the generation so stale handles fail lookups
// instead of silently aliasing a different node — the same "reuse a slot,
// bump a version" discipline as the teacher's internal/genring.Ring
// (gens []*generation, monotonic idCtr), generalized here from a 4-slot
// ring to a per-scene node arena.
type Handle uint32

const invalidSlot = int32(-1)

func makeHandle(index uint16, version uint16) Handle {
	return Handle(uint32(version)<<16 | uint32(index))
}

func (h Handle) index() uint16   { return uint16(h & 0xffff) }
func (h Handle) version() uint16 { return uint16(h >> 16) }

// NodeType distinguishes the handful of drawable kinds a node can be.
type NodeType int

const (
	NodeTypeBox NodeType = iota
	NodeTypeText
	NodeTypePie
	NodeTypeParticlefx
	NodeTypeCustom
)

// TextureSetAnim is the per-node flipbook animation state bound by
// PlayFlipbookAnim — a named animation within a texture set, advancing a
// normalized frame position over frame_count/fps seconds (spec.md §4.D
// "Texture-set flipbook").
type TextureSetAnim struct {
	AnimHash   uint64
	FrameCount int
	FPS        float32
	Playback   Playback
	Elapsed    float32
	Backwards  bool
}

// node is the internal, slot-table-resident node record. Field names stay
// close to gui.cpp's InternalNode/Node split so a reader who knows the
// original can map fields directly; Go does not need the two-struct
// separation since there is no separate "public handle" ABI to preserve.
type node struct {
	version uint16
	nameHash uint64

	parent      int32
	childHead   int32
	nextSibling int32
	prevSibling int32

	position Vec3
	rotation Vec3 // Euler degrees
	scale    Vec3
	size     Vec3
	color    [4]float32

	adjustMode      AdjustMode
	pivot           Pivot
	xAnchor         XAnchor
	yAnchor         YAnchor
	layer           uint16
	enabled         bool

	clippingMode    ClippingMode
	clippingInverted bool
	clippingVisible bool

	nodeType NodeType
	textureSetAnim *TextureSetAnim

	localAdjustScale Vec3
	localTransform   Mat4
	worldTransform   Mat4
	worldOpacity     float32
	dirtyLocal       bool

	cacheVersion uint64 // traversal cache tag this node's world transform was computed for

	hasResetPoint bool
	resetSnapshot nodeProps

	clipperIndex int32 // index into the per-frame clipping-node slice, or invalidSlot
}

// nodeProps is the subset of node fields a reset point restores —
// everything a script or animation could have mutated, but none of the
// tree-structural or slot-table bookkeeping fields. Mirrors gui.cpp's
// separate m_ResetPointProperties/m_ResetPointState arrays, which likewise
// snapshot only the animatable property block, not parent/child links.
type nodeProps struct {
	position Vec3
	rotation Vec3
	scale    Vec3
	size     Vec3
	color    [4]float32

	adjustMode AdjustMode
	pivot      Pivot
	xAnchor    XAnchor
	yAnchor    YAnchor
	layer      uint16
	enabled    bool

	clippingMode     ClippingMode
	clippingInverted bool
	clippingVisible  bool

	textureSetAnim *TextureSetAnim
}

func (n *node) snapshot() nodeProps {
	return nodeProps{
		position: n.position, rotation: n.rotation, scale: n.scale, size: n.size, color: n.color,
		adjustMode: n.adjustMode, pivot: n.pivot, xAnchor: n.xAnchor, yAnchor: n.yAnchor,
		layer: n.layer, enabled: n.enabled,
		clippingMode: n.clippingMode, clippingInverted: n.clippingInverted, clippingVisible: n.clippingVisible,
		textureSetAnim: n.textureSetAnim,
	}
}

func (n *node) restore(p nodeProps) {
	n.position, n.rotation, n.scale, n.size, n.color = p.position, p.rotation, p.scale, p.size, p.color
	n.adjustMode, n.pivot, n.xAnchor, n.yAnchor = p.adjustMode, p.pivot, p.xAnchor, p.yAnchor
	n.layer, n.enabled = p.layer, p.enabled
	n.clippingMode, n.clippingInverted, n.clippingVisible = p.clippingMode, p.clippingInverted, p.clippingVisible
	n.textureSetAnim = p.textureSetAnim
}

func newNode() node {
	return node{
		scale:            Vec3{1, 1, 1},
		color:            [4]float32{1, 1, 1, 1},
		localAdjustScale: Vec3{1, 1, 1},
		enabled:          true,
		clippingVisible:  true,
		parent:           invalidSlot,
		childHead:        invalidSlot,
		nextSibling:      invalidSlot,
		prevSibling:      invalidSlot,
		clipperIndex:     invalidSlot,
		dirtyLocal:       true,
	}
}

// slotTable is the fixed-capacity (≤512, per spec.md §4.D's render-key
// field-width cap) node arena with a free-list and a name_hash → handle
// index, mirroring pkg/resource's descriptor slotTable shape.
type slotTable struct {
	slots    []node
	inUse    []bool
	free     []int32
	byName   map[uint64]Handle
	rootHead int32
	rootTail int32
}

func newSlotTable(capacity int) *slotTable {
	free := make([]int32, capacity)
	for i := range free {
		free[i] = int32(capacity - 1 - i)
	}
	return &slotTable{
		slots:  make([]node, capacity),
		inUse:  make([]bool, capacity),
		free:   free,
		byName:   make(map[uint64]Handle, capacity),
		rootHead: invalidSlot,
		rootTail: invalidSlot,
	}
}

func (t *slotTable) alloc() (Handle, *node, error) {
	if len(t.free) == 0 {
		return 0, nil, ErrOutOfResources
	}
	idx := t.free[len(t.free)-1]
	t.free = t.free[:len(t.free)-1]
	t.inUse[idx] = true
	n := newNode()
	n.version = t.slots[idx].version + 1
	t.slots[idx] = n
	return makeHandle(uint16(idx), n.version), &t.slots[idx], nil
}

func (t *slotTable) get(h Handle) (*node, bool) {
	idx := h.index()
	if int(idx) >= len(t.slots) || !t.inUse[idx] {
		return nil, false
	}
	if t.slots[idx].version != h.version() {
		return nil, false
	}
	return &t.slots[idx], true
}

func (t *slotTable) free_(h Handle) bool {
	idx := h.index()
	if int(idx) >= len(t.slots) || !t.inUse[idx] || t.slots[idx].version != h.version() {
		return false
	}
	t.inUse[idx] = false
	t.free = append(t.free, int32(idx))
	return true
}
