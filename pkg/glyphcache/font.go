package glyphcache

import "go.uber.org/zap"

// Font is a fixed glyph table plus the layout metrics render-time vertex
// generation needs, backed by a single Cache.
type Font struct {
	Glyphs     map[rune]*Glyph
	MaxAscent  float32
	MaxDescent float32
	LayerMask  Layer
	Cache      *Cache

	log *zap.Logger
}

// NewFont wraps a glyph table and cache into a Font. log may be nil.
func NewFont(glyphs map[rune]*Glyph, maxAscent, maxDescent float32, layerMask Layer, cache *Cache, log *zap.Logger) *Font {
	if log == nil {
		log = zap.NewNop()
	}
	return &Font{Glyphs: glyphs, MaxAscent: maxAscent, MaxDescent: maxDescent, LayerMask: layerMask, Cache: cache, log: log}
}

// fallbackRune is substituted for any character missing from the glyph
// table, matching GetGlyph's fallback to '~'.
const fallbackRune = '~'

// GetGlyph resolves r to a Glyph, falling back to '~'. If neither is
// present it logs a warning and returns ok=false; the warning is logged on
// every such call, repeated misses of the same character included.
func (f *Font) GetGlyph(r rune) (*Glyph, bool) {
	if g, ok := f.Glyphs[r]; ok {
		return g, true
	}
	if g, ok := f.Glyphs[fallbackRune]; ok {
		return g, true
	}
	f.log.Warn("character not supported by font, nor is fallback '~'", zap.Int32("rune", r))
	return nil, false
}

// Ensure loads g into the font's cache for frame if it is not already
// resident there for that frame.
func (f *Font) Ensure(frame uint64, g *Glyph) error {
	if g.inCache && g.frame == frame {
		return nil
	}
	return f.Cache.Put(frame, g)
}
