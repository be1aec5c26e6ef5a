// Package pagepool implements the page-bumping allocator described in
// spec.md's glossary: fixed-size pages with a bump cursor, recycled whole
// (never per-allocation) onto a free-list. It backs pkg/bus's message
// payloads (spec.md §4.B).
//
// Grounded on message.cpp's MemoryPage/MemoryAllocator (see DESIGN.md) —
// not on the teacher's internal/arena, which wraps Go's
// goexperiment.arenas package and frees an entire arena at once rather
// than recycling individual pages.
package pagepool

// PageSize matches message.cpp's DM_MESSAGE_PAGE_SIZE.
const PageSize = 4096

// Alignment matches message.cpp's DM_MESSAGE_ALIGNMENT.
const Alignment = 16

type page struct {
	mem     [PageSize]byte
	cursor  uint32
	next    *page
}

// Allocator is a single socket's bump allocator. It is not safe for
// concurrent use; callers (pkg/bus) serialize access with the socket's
// own mutex, matching spec.md §5's locking discipline.
type Allocator struct {
	current *page
	free    *page
	full    *page
}

// alignUp rounds size up to the allocator's alignment.
func alignUp(size uint32) uint32 {
	return (size + Alignment - 1) &^ (Alignment - 1)
}

func (a *Allocator) allocatePage() {
	if a.current != nil {
		a.current.next = a.full
		a.full = a.current
	}

	var p *page
	if a.free != nil {
		p = a.free
		a.free = p.next
	} else {
		p = &page{}
	}
	p.cursor = 0
	p.next = nil
	a.current = p
}

// Alloc returns a size-byte slice backed by the current page, pulling a
// fresh page (from the free-list, else the heap) when the current one
// does not have room. size must not exceed PageSize.
func (a *Allocator) Alloc(size uint32) []byte {
	size = alignUp(size)
	if size > PageSize {
		panic("pagepool: allocation larger than PageSize")
	}

	if a.current == nil || PageSize-a.current.cursor < size {
		a.allocatePage()
	}

	p := a.current
	b := p.mem[p.cursor : p.cursor+size]
	p.cursor += size
	return b
}

// PageList is an opaque snapshot of pages pulled off an Allocator's full
// list by DetachFull, to be recycled later via Reclaim once the caller
// is done with whatever referenced them. Keeping the snapshot separate
// from the live a.full list is what lets a caller detach-then-reclaim
// around a window (like running dispatch callbacks) during which more
// pages may fill, without those new pages being mistaken for ones that
// were already fully drained of live messages.
type PageList struct {
	head *page
}

// DetachFull snapshots and clears the allocator's current full-page
// list in one step, mirroring message.cpp's InternalDispatch: "MemoryPage
// *full_pages = allocator->m_FullPages; allocator->m_FullPages = 0" —
// taken under the socket's lock, together with the message queue itself,
// before any callback runs. Pages that fill up later (a reentrant Post
// from within a callback, or a concurrent loader-thread Post) land in a
// fresh a.full list and are NOT part of this snapshot; they still hold
// live, next-cycle payloads and must only be reclaimed by a later
// DetachFull/Reclaim pair.
func (a *Allocator) DetachFull() PageList {
	list := PageList{head: a.full}
	a.full = nil
	return list
}

// Reclaim returns every page captured by an earlier DetachFull to the
// free-list in one shot — "whole pages recycled on dispatch, never
// individual allocations" per spec.md's glossary. Safe to call only once
// the caller is certain no live reference into list's pages remains
// (i.e. after the dispatch callbacks that consumed those pages' messages
// have returned).
func (a *Allocator) Reclaim(list PageList) {
	p := list.head
	for p != nil {
		next := p.next
		p.next = a.free
		a.free = p
		p = next
	}
}

// Close releases every page the allocator has ever touched, for socket
// teardown (spec.md: "DeleteSocket ... frees all pages").
func (a *Allocator) Close() {
	a.Reclaim(a.DetachFull())
	if a.current != nil {
		a.current.next = a.free
		a.free = a.current
		a.current = nil
	}
	a.free = nil
}
