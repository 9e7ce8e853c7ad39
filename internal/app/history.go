package app

import (
	"log"

	"github.com/ayusman/hovertype/internal/store"
)

// historyRecorder persists every commit and delete.
type historyRecorder struct {
	entries *store.EntryRepository
}

func newHistoryRecorder(entries *store.EntryRepository) *historyRecorder {
	return &historyRecorder{entries: entries}
}

func (h *historyRecorder) Preview(rune) {}

func (h *historyRecorder) Commit(r rune) {
	h.append(&store.Entry{Kind: store.EntryCommit, Char: string(r)})
}

func (h *historyRecorder) Delete() {
	h.append(&store.Entry{Kind: store.EntryDelete})
}

func (h *historyRecorder) append(e *store.Entry) {
	if err := h.entries.Append(e); err != nil {
		log.Printf("Failed to record %s: %v", e.Kind, err)
	}
}
