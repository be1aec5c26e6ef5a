package bus

import "github.com/Voskan/enginert/internal/pagepool"

// Post allocates payload into the receiver socket's current page, copies
// the bytes in, and appends a freshly heap-allocated *Message (header
// only — no payload bytes) to the tail of the socket's queue, then
// signals any blocked dispatcher (spec.md §4.B "Post").
//
// Unlike the original engine, which places the whole Message struct
// inline in the bump-allocated page, only Payload's bytes live in the
// page here: a Go *Message carries pointers and an `any` Descriptor, and
// the runtime's precise garbage collector only scans pointer words it
// knows about from a value's static type. Reinterpreting a page's raw
// byte array as a pointer-containing struct via unsafe.Pointer would
// make those pointers invisible to the collector. Page-allocating the
// payload bytes — which are genuinely pointer-free — keeps the "whole
// pages recycled on dispatch, zero steady-state allocation for payload
// data" property spec.md's glossary describes, without putting GC-
// visible pointers in GC-invisible memory.
func (b *Bus) Post(sender, receiver URL, id uint64, userData uintptr, descriptor any, payload []byte) error {
	s := b.lookup(receiver.Socket)
	if s == nil {
		return ErrSocketNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := &Message{
		Sender:     sender,
		Receiver:   receiver,
		ID:         id,
		UserData:   userData,
		Descriptor: descriptor,
	}
	if len(payload) > 0 {
		buf := s.alloc.Alloc(uint32(len(payload)))
		copy(buf, payload)
		msg.Payload = buf
	}

	if s.tail == nil {
		s.head = msg
	} else {
		s.tail.next = msg
	}
	s.tail = msg

	b.metrics.incPosted(s.name)
	s.cond.Signal()
	return nil
}

// detach pulls the entire queue off the socket under lock, together with
// a snapshot of the allocator's full-page list, leaving the socket's
// queue (and live full list) empty. Caller must hold s.mu. Capturing
// both under the same lock acquisition mirrors message.cpp's
// InternalDispatch, which snapshots "messages" and "full_pages" in one
// critical section before running any callback — any page that becomes
// full later (a reentrant Post from within a callback, or a concurrent
// Post from another goroutine) lands in a fresh full list that this
// snapshot does not include, so it is never handed back to the
// allocator's free-list while it still holds a live, next-cycle payload.
func (s *socket) detach() (*Message, pagepool.PageList) {
	head := s.head
	s.head, s.tail = nil, nil
	return head, s.alloc.DetachFull()
}

func (b *Bus) runDispatch(h Handle, cb DispatchCallback, blocking bool) (int, error) {
	s := b.lookup(h)
	if s == nil {
		return 0, ErrSocketNotFound
	}

	s.mu.Lock()
	for s.head == nil {
		if !blocking {
			s.mu.Unlock()
			return 0, nil
		}
		s.cond.Wait()
	}
	head, pages := s.detach()
	s.mu.Unlock()

	count := 0
	for m := head; m != nil; {
		next := m.next
		cb(m)
		count++
		m = next
	}

	// Only the pages captured at detach time are reclaimed here — pages
	// that filled up during the callback loop above (from a reentrant or
	// concurrent Post) are left on the allocator's live full list for a
	// later dispatch cycle to capture and reclaim in turn.
	s.mu.Lock()
	s.alloc.Reclaim(pages)
	s.mu.Unlock()

	b.metrics.incDispatched(s.name, count)
	return count, nil
}

// Dispatch runs cb over every message queued on h in FIFO order and
// returns immediately with 0 if the queue is empty (spec.md §4.B
// "Non-blocking"). A callback may Post further messages; those join the
// queue for the next dispatch cycle, never the current one, since the
// queue was already detached before cb runs.
func (b *Bus) Dispatch(h Handle, cb DispatchCallback) (int, error) {
	return b.runDispatch(h, cb, false)
}

// DispatchBlocking is identical to Dispatch except that it waits on the
// socket's condition variable when the queue is empty (spec.md §4.B
// "Blocking").
func (b *Bus) DispatchBlocking(h Handle, cb DispatchCallback) (int, error) {
	return b.runDispatch(h, cb, true)
}
