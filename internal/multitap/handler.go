package multitap

// Handler receives the events produced by a Machine. Calls are synchronous
// and made from whichever goroutine drives the machine.
type Handler interface {
	// Preview reports the character currently cycled to.
	Preview(r rune)
	// Commit reports a finalized character.
	Commit(r rune)
	// Delete reports a finalized delete.
	Delete()
}

// HandlerFuncs adapts plain functions to the Handler interface.
// Nil fields are skipped.
type HandlerFuncs struct {
	OnPreview func(r rune)
	OnCommit  func(r rune)
	OnDelete  func()
}

func (h HandlerFuncs) Preview(r rune) {
	if h.OnPreview != nil {
		h.OnPreview(r)
	}
}

func (h HandlerFuncs) Commit(r rune) {
	if h.OnCommit != nil {
		h.OnCommit(r)
	}
}

func (h HandlerFuncs) Delete() {
	if h.OnDelete != nil {
		h.OnDelete()
	}
}

// Fanout forwards every event to each handler in order.
type Fanout []Handler

func (f Fanout) Preview(r rune) {
	for _, h := range f {
		h.Preview(r)
	}
}

func (f Fanout) Commit(r rune) {
	for _, h := range f {
		h.Commit(r)
	}
}

func (f Fanout) Delete() {
	for _, h := range f {
		h.Delete()
	}
}
