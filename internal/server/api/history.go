package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/hovertype/internal/store"
)

// DefaultHistoryLimit is the number of entries returned when no limit is given.
const DefaultHistoryLimit = 100

// HistoryHandler serves the persisted commit and delete history.
type HistoryHandler struct {
	store *store.Store
}

// NewHistoryHandler creates a new HistoryHandler with the given store.
func NewHistoryHandler(s *store.Store) *HistoryHandler {
	return &HistoryHandler{store: s}
}

type entryResponse struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	Char      string `json:"char,omitempty"`
	CreatedAt string `json:"created_at"`
}

type historyResponse struct {
	Entries []entryResponse `json:"entries"`
	Text    string          `json:"text"`
}

// ServeHTTP handles GET and DELETE on /api/history.
// GET accepts an optional limit query parameter; limit=0 returns everything.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodDelete:
		if err := h.store.Entries().Clear(); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to clear history")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *HistoryHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := h.store.Entries().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list history")
		return
	}

	text, err := h.store.Entries().Text()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to replay history")
		return
	}

	response := historyResponse{
		Entries: make([]entryResponse, 0, len(entries)),
		Text:    text,
	}
	for _, e := range entries {
		response.Entries = append(response.Entries, entryResponse{
			ID:        e.ID,
			Kind:      string(e.Kind),
			Char:      e.Char,
			CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeJSON(w, http.StatusOK, response)
}
