package scene

// UVLookup resolves the UV rectangle for a named texture-set animation's
// frame index, supplied by the caller (the texture-set asset format is
// out of this package's scope — spec.md §4.D: "per-frame UV coordinates
// are looked up from a callback-supplied table").
type UVLookup func(animHash uint64, frame int) (u0, v0, u1, v1 float32)

// PlayFlipbookAnim binds node h to a named texture-set animation,
// advancing a normalized frame position 0→1 over frameCount/fps seconds,
// per spec.md §4.D "Texture-set flipbook".
func (s *Scene) PlayFlipbookAnim(h Handle, animHash uint64, frameCount int, fps float32, playback Playback) error {
	n, ok := s.nodes.get(h)
	if !ok {
		return ErrNotFound
	}
	if frameCount <= 0 || fps <= 0 {
		return ErrInvalid
	}
	n.textureSetAnim = &TextureSetAnim{
		AnimHash:   animHash,
		FrameCount: frameCount,
		FPS:        fps,
		Playback:   playback,
	}
	return nil
}

// UpdateFlipbookAnims advances every node's bound texture-set animation
// by dt seconds, matching gui.cpp's UpdateTextureSetAnimData in spirit:
// a normalized time position is derived the same way a duration-based
// Animation record would be, just without a persistent animation-table
// slot (the flipbook position lives directly on the node).
func (s *Scene) UpdateFlipbookAnims(dt float32) {
	for i := range s.nodes.slots {
		if !s.nodes.inUse[i] {
			continue
		}
		n := &s.nodes.slots[i]
		anim := n.textureSetAnim
		if anim == nil || anim.Playback == PlaybackNone {
			continue
		}
		duration := float32(anim.FrameCount) / anim.FPS
		anim.Elapsed += dt
		if anim.Elapsed >= duration {
			if anim.Playback.looping() {
				anim.Elapsed -= duration
				if anim.Playback.pingPong() {
					anim.Backwards = !anim.Backwards
				}
			} else {
				anim.Elapsed = duration
				anim.Playback = PlaybackNone
			}
		}
	}
}

// FlipbookFrame returns node h's current frame index into its bound
// texture-set animation, or ok=false if none is bound.
func (s *Scene) FlipbookFrame(h Handle) (int, bool) {
	n, ok := s.nodes.get(h)
	if !ok || n.textureSetAnim == nil {
		return 0, false
	}
	anim := n.textureSetAnim
	duration := float32(anim.FrameCount) / anim.FPS
	if duration <= 0 {
		return 0, false
	}
	t := anim.Elapsed / duration
	if anim.Playback.backward() || anim.Backwards {
		t = 1 - t
	}
	if anim.Playback.pingPong() {
		t *= 2
		if t > 1 {
			t = 2 - t
		}
	}
	frame := int(t * float32(anim.FrameCount))
	if frame >= anim.FrameCount {
		frame = anim.FrameCount - 1
	}
	if frame < 0 {
		frame = 0
	}
	return frame, true
}
