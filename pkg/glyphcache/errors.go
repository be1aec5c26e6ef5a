package glyphcache

import "errors"

// ErrCacheFull is returned when every cell in the grid was touched by the
// current frame, so the round-robin cursor cannot find an evictable
// candidate. Matches font_renderer.cpp's AddGlyphToCache loop: it scans
// exactly once around the ring before giving up.
var ErrCacheFull = errors.New("glyphcache: no evictable cell this frame")

// ErrGlyphTooLarge is returned when a glyph (plus cell padding) does not
// fit inside a single cache cell.
var ErrGlyphTooLarge = errors.New("glyphcache: glyph exceeds cell dimensions")
