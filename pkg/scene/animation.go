package scene

// AnimationComplete is invoked exactly once when a non-looping animation
// reaches its duration, per spec.md §4.D step 7. A panicking or erroring
// callback is the caller's responsibility to guard; this package does
// not recover, matching gui.cpp's direct function-pointer invocation.
type AnimationComplete func(node Handle, userdata any)

// animation is a single live animation record, ported from gui.cpp's
// Animation struct (m_Node, m_Value/m_From/m_To, m_Delay/m_Elapsed/
// m_Duration, m_Playback, m_Easing, m_AnimationComplete/m_Userdata).
type animation struct {
	node  Handle
	value *float32

	from, to float32
	delay    float32
	elapsed  float32
	duration float32

	playback  Playback
	easing    EasingType
	backwards bool

	firstUpdate            bool
	cancelled              bool
	complete               AnimationComplete
	completeCalled         bool
	userdata               any
}

// Animate starts (or replaces) an animation driving the float value at
// property p on node h from its current value to to, over duration
// seconds with an initial delay, playback mode and easing curve. Per
// spec.md §4.D: "Starting an animation for a value that already has a
// live animation replaces the existing record (same slot, no release of
// old callback's userdata)" — this port models "same slot" as
// overwriting the first matching-(node,value-pointer) record if found,
// else appending.
func (s *Scene) Animate(h Handle, p PropertyName, to float32, playback Playback, easing EasingType, duration, delay float32, complete AnimationComplete, userdata any) error {
	n, ok := s.nodes.get(h)
	if !ok {
		return ErrNotFound
	}
	val, err := s.valuePtr(n, p)
	if err != nil {
		return err
	}

	rec := animation{
		node:        h,
		value:       val,
		to:          to,
		delay:       delay,
		duration:    duration,
		playback:    playback,
		easing:      easing,
		firstUpdate: true,
		complete:    complete,
		userdata:    userdata,
	}

	for i := range s.anims {
		if s.anims[i].node == h && s.anims[i].value == val {
			s.anims[i] = rec
			return nil
		}
	}
	s.anims = append(s.anims, rec)
	return nil
}

// CancelAnimation marks every live animation targeting node h's value at
// property p as cancelled; the next UpdateAnimations sweep erases it.
func (s *Scene) CancelAnimation(h Handle, p PropertyName) error {
	n, ok := s.nodes.get(h)
	if !ok {
		return ErrNotFound
	}
	val, err := s.valuePtr(n, p)
	if err != nil {
		return err
	}
	for i := range s.anims {
		if s.anims[i].node == h && s.anims[i].value == val {
			s.anims[i].cancelled = true
		}
	}
	return nil
}

// isAncestorDisabled walks up from idx, returning true if idx or any
// ancestor has been disabled, per gui.cpp's IsNodeEnabledRecursive.
func (s *Scene) isAncestorDisabled(idx int32) bool {
	for idx != invalidSlot {
		n := &s.nodes.slots[idx]
		if !n.enabled {
			return true
		}
		idx = n.parent
	}
	return false
}

// UpdateAnimations advances every live animation by dt seconds, applying
// the playback-mode time remap and the easing curve, invoking completion
// callbacks exactly once, and swap-erasing cancelled or expired records
// after the pass — porting gui.cpp's UpdateAnimations.
func (s *Scene) UpdateAnimations(dt float32) {
	for i := range s.anims {
		a := &s.anims[i]
		if a.elapsed >= a.duration || a.cancelled {
			continue
		}
		if s.isAncestorDisabled(int32(a.node.index())) {
			continue
		}

		if a.delay >= dt {
			a.delay -= dt
			continue
		}

		if a.firstUpdate {
			a.from = *a.value
			a.firstUpdate = false
			a.elapsed = -a.delay
		}

		a.elapsed += dt
		if a.elapsed+dt*0.5 >= a.duration {
			a.elapsed = a.duration
		}

		var t float32 = 1
		if a.duration-a.elapsed > 0 {
			t = a.elapsed / a.duration
		}
		t2 := t
		if a.playback.backward() || a.backwards {
			t2 = 1 - t
		}
		if a.playback.pingPong() {
			t2 *= 2
			if t2 > 1 {
				t2 = 2 - t2
			}
		}

		x := a.easing.Apply(t2)
		*a.value = a.from*(1-x) + a.to*x

		if n, ok := s.nodes.get(a.node); ok {
			n.dirtyLocal = true
		}

		if t >= 1 {
			if a.playback.looping() {
				a.elapsed -= a.duration
				if a.playback.pingPong() {
					a.backwards = !a.backwards
				}
			} else if !a.completeCalled && a.complete != nil {
				a.completeCalled = true
				a.complete(a.node, a.userdata)
			}
		}
	}

	kept := s.anims[:0]
	for _, a := range s.anims {
		if a.elapsed >= a.duration || a.cancelled {
			continue
		}
		kept = append(kept, a)
	}
	s.anims = kept
}

// LiveAnimationCount reports the number of animations not yet swept,
// used by tests and metrics.
func (s *Scene) LiveAnimationCount() int { return len(s.anims) }
