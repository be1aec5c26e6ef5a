package bus

// Message is the unit of communication posted to and dispatched from a
// socket queue (spec.md §3). Payload is a view into a pagepool-backed
// page; it is only valid for the duration of the Dispatch callback that
// receives it — pages are recycled once every message in the drained
// batch has been processed.
type Message struct {
	Sender     URL
	Receiver   URL
	ID         uint64 // message_id_hash
	UserData   uintptr
	Descriptor any // opaque, nil unless the poster attached one
	Payload    []byte

	next *Message
}

// URL identifies a message endpoint: a socket plus an optional path and
// fragment hash (spec.md §3). Both Path and Fragment are pre-hashed by
// the caller via pkg/hashreg — URL itself carries no hashing logic.
type URL struct {
	Socket   Handle
	Path     uint64
	Fragment uint64
}

// IsEmpty reports whether u names no socket at all — the zero URL,
// typically used as Message.Sender for posts with no reply address.
func (u URL) IsEmpty() bool { return u.Socket == 0 && u.Path == 0 && u.Fragment == 0 }
