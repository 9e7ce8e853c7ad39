package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/hovertype/internal/app"
)

// TextHandler serves the text typed in the current session.
type TextHandler struct {
	app *app.App
}

// NewTextHandler creates a new TextHandler for the given app.
func NewTextHandler(a *app.App) *TextHandler {
	return &TextHandler{app: a}
}

type textResponse struct {
	Text    string `json:"text"`
	Preview string `json:"preview,omitempty"`
}

// ServeHTTP handles GET and DELETE on /api/text.
func (h *TextHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		buf := h.app.Buffer()
		resp := textResponse{Text: buf.Text()}
		if c, ok := buf.PreviewChar(); ok {
			resp.Preview = string(c)
		}
		writeJSON(w, http.StatusOK, resp)
	case http.MethodDelete:
		h.app.Buffer().Clear()
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// StatusHandler reports the input machine state and toggles detection.
type StatusHandler struct {
	app *app.App
}

// NewStatusHandler creates a new StatusHandler for the given app.
func NewStatusHandler(a *app.App) *StatusHandler {
	return &StatusHandler{app: a}
}

type putStatusRequest struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP handles GET and PUT on /api/status.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.app.Status())
	case http.MethodPut:
		var req putStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.app.SetEnabled(*req.Enabled)
		writeJSON(w, http.StatusOK, h.app.Status())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
