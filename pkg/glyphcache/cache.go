package glyphcache

import (
	"image"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

// Config describes a fixed glyph cache grid. CellWidth and CellHeight
// must each be large enough to hold the font's largest glyph plus two
// times Padding, per font_renderer.cpp's m_CacheCellWidth/Height sizing.
type Config struct {
	Columns uint32
	Rows    uint32
	CellWidth  uint32
	CellHeight uint32
	Padding    uint32
	Log        *zap.Logger
}

// Cache is a fixed grid of glyph cells backed by a single CPU-side atlas
// image, evicted round-robin across frames. It is grounded on
// font_renderer.cpp's m_Cache/m_CacheCursor cache-cell array; the pixel
// compositing step uses golang.org/x/image/draw in place of the
// original's direct GPU sub-texture upload, since this package stops at
// the CPU-side atlas (graphics-API calls are out of scope).
type Cache struct {
	cfg    Config
	atlas  *image.RGBA
	cells  []*Glyph
	cursor uint32
	log    *zap.Logger
}

// New allocates an empty cache grid and its backing atlas image.
func New(cfg Config) *Cache {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	w := int(cfg.Columns * cfg.CellWidth)
	h := int(cfg.Rows * cfg.CellHeight)
	return &Cache{
		cfg:   cfg,
		atlas: image.NewRGBA(image.Rect(0, 0, w, h)),
		cells: make([]*Glyph, cfg.Columns*cfg.Rows),
		log:   log,
	}
}

// Atlas returns the CPU-side atlas image backing this cache. Callers
// treat it as read-only between Put calls.
func (c *Cache) Atlas() *image.RGBA { return c.atlas }

// CellWidth and CellHeight report the fixed cell dimensions, including
// padding, that every cached glyph occupies.
func (c *Cache) CellWidth() uint32  { return c.cfg.CellWidth }
func (c *Cache) CellHeight() uint32 { return c.cfg.CellHeight }
func (c *Cache) Padding() uint32    { return c.cfg.Padding }

// Put inserts g into the cache for the given frame, evicting the oldest
// cell not already touched by this frame. It scans the ring at most once;
// if every cell was already stamped with frame (the whole grid is pinned
// by glyphs drawn earlier in the same frame), it returns ErrCacheFull
// and logs a warning, matching AddGlyphToCache's
// "Out of available cache cells" path.
func (c *Cache) Put(frame uint64, g *Glyph) error {
	if g.Width > float32(c.cfg.CellWidth-2*c.cfg.Padding) ||
		g.Ascent+g.Descent > float32(c.cfg.CellHeight-2*c.cfg.Padding) {
		return ErrGlyphTooLarge
	}

	n := uint32(len(c.cells))
	start := c.cursor
	for {
		cur := c.cursor
		c.cursor = (c.cursor + 1) % n
		candidate := c.cells[cur]

		if candidate == nil || candidate.frame != frame {
			if candidate != nil {
				candidate.inCache = false
			}
			c.cells[cur] = g

			col := cur % c.cfg.Columns
			row := cur / c.cfg.Columns
			g.cellX = col * c.cfg.CellWidth
			g.cellY = row * c.cfg.CellHeight
			g.frame = frame
			g.inCache = true

			c.compositeGlyph(g)
			return nil
		}

		if c.cursor == start {
			break
		}
	}

	c.log.Warn("glyph cache is full for this frame",
		zap.Uint32("columns", c.cfg.Columns), zap.Uint32("rows", c.cfg.Rows))
	return ErrCacheFull
}

// compositeGlyph copies g's coverage bitmap into its assigned cell's
// sub-rectangle of the atlas, offset by the cache's cell padding.
func (c *Cache) compositeGlyph(g *Glyph) {
	if g.Bitmap == nil {
		return
	}
	dstX := int(g.cellX + c.cfg.Padding)
	dstY := int(g.cellY + c.cfg.Padding)
	dstRect := image.Rect(dstX, dstY, dstX+g.Bitmap.Rect.Dx(), dstY+g.Bitmap.Rect.Dy())
	draw.Draw(c.atlas, dstRect, g.Bitmap, g.Bitmap.Rect.Min, draw.Src)
}

// UV returns the normalized texture-coordinate rectangle for g within
// this cache's atlas, including the cell padding offset, per
// font_renderer.cpp's per-glyph ascent/descent UV computation.
func (c *Cache) UV(g *Glyph) (u0, v0, u1, v1 float32) {
	w := float32(c.atlas.Rect.Dx())
	h := float32(c.atlas.Rect.Dy())
	x0 := float32(g.cellX+c.cfg.Padding) / w
	y0 := float32(g.cellY+c.cfg.Padding) / h
	x1 := x0 + g.Width/w
	y1 := y0 + (g.Ascent+g.Descent)/h
	return x0, y0, x1, y1
}
