package multitap

import "sync"

// Buffer is a Handler that accumulates committed text and tracks the
// current preview. It may be read concurrently with the frame loop.
type Buffer struct {
	mu      sync.RWMutex
	text    []rune
	preview rune
	pending bool
}

// NewBuffer creates an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Preview(r rune) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.preview = r
	b.pending = true
}

func (b *Buffer) Commit(r rune) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = append(b.text, r)
	b.pending = false
}

func (b *Buffer) Delete() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.text) > 0 {
		b.text = b.text[:len(b.text)-1]
	}
	b.pending = false
}

// Text returns the committed text.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.text)
}

// PreviewChar returns the pending preview character, if any.
func (b *Buffer) PreviewChar() (rune, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.preview, b.pending
}

// Clear drops the committed text and the preview.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = nil
	b.preview = 0
	b.pending = false
}
