// Package glyphcache implements the GUI runtime's glyph atlas: a fixed
// grid of fixed-size cells holding the CPU-side pixel data for whichever
// glyphs were drawn most recently, evicted round-robin, plus the
// multi-layer (shadow/outline/face) vertex layout that reads UVs back out
// of it. Nothing here issues a graphics-API call; it only prepares the
// CPU-side image.RGBA atlas and vertex slices a renderer would upload.
package glyphcache

import "image"

// Layer is a bitmask selecting which of a font's rendered layers are
// active, mirroring font_renderer.cpp's FACE/OUTLINE/SHADOW bits.
type Layer uint8

const (
	LayerFace    Layer = 0x1
	LayerOutline Layer = 0x2
	LayerShadow  Layer = 0x4
)

// Has reports whether mask includes every bit in l.
func (mask Layer) Has(l Layer) bool { return mask&l == l }

// Glyph is a single character's cached metrics and source bitmap. Width,
// Ascent and Descent are in pixels; Advance is the horizontal distance to
// the next glyph's origin. Bitmap holds the glyph's own coverage pixels
// (no cell padding baked in) and is nil for glyphs with no visible ink
// (e.g. space), which still occupy layout width but never enter the
// cache.
type Glyph struct {
	Width   float32
	Advance float32
	Ascent  float32
	Descent float32
	Bitmap  *image.Alpha

	inCache bool
	frame   uint64
	cellX   uint32
	cellY   uint32
}

// InCache reports whether the glyph currently occupies a cell in some
// Cache's atlas.
func (g *Glyph) InCache() bool { return g.inCache }
