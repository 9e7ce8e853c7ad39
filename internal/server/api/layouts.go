// Package api provides HTTP API handlers for the hovertype input system.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/hovertype/internal/app"
	"github.com/ayusman/hovertype/internal/store"
	"github.com/ayusman/hovertype/internal/zone"
)

// LayoutHandler handles HTTP requests for layout resources.
type LayoutHandler struct {
	store *store.Store
	app   *app.App
}

// NewLayoutHandler creates a new LayoutHandler. The app may be nil, in
// which case layouts can be edited but not activated.
func NewLayoutHandler(s *store.Store, a *app.App) *LayoutHandler {
	return &LayoutHandler{store: s, app: a}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *LayoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/layouts, /api/layouts/{name} or /api/layouts/{name}/activate
	path := strings.TrimPrefix(r.URL.Path, "/api/layouts")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	if name, ok := strings.CutSuffix(path, "/activate"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.activate(w, r, name)
		return
	}

	if strings.Contains(path, "/") {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	name := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, name)
	case http.MethodPut:
		h.put(w, r, name)
	case http.MethodDelete:
		h.delete(w, r, name)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type putLayoutRequest struct {
	Zones []zone.Config `json:"zones"`
}

type layoutResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Zones     []zone.Config `json:"zones,omitempty"`
	Active    bool          `json:"active"`
	CreatedAt string        `json:"created_at"`
}

type listLayoutsResponse struct {
	Layouts []layoutResponse `json:"layouts"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Layout to a layoutResponse.
func (h *LayoutHandler) toResponse(l *store.Layout) layoutResponse {
	resp := layoutResponse{
		ID:        l.ID,
		Name:      l.Name,
		Active:    h.isActive(l.Name),
		CreatedAt: l.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if len(l.Zones) > 0 {
		resp.Zones = l.Configs()
	}
	return resp
}

func (h *LayoutHandler) isActive(name string) bool {
	return h.app != nil && h.app.LayoutName() == name
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/layouts and returns all layouts without their zones.
func (h *LayoutHandler) list(w http.ResponseWriter, r *http.Request) {
	layouts, err := h.store.Layouts().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list layouts")
		return
	}

	response := listLayoutsResponse{
		Layouts: make([]layoutResponse, 0, len(layouts)),
	}
	for _, l := range layouts {
		response.Layouts = append(response.Layouts, h.toResponse(l))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/layouts/{name} and returns a layout with its zones.
func (h *LayoutHandler) get(w http.ResponseWriter, r *http.Request, name string) {
	layout, err := h.store.Layouts().GetByName(name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Layout not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get layout")
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(layout))
}

// put handles PUT /api/layouts/{name}. It creates the layout or replaces
// its zones. Replacing the active layout reloads it immediately.
func (h *LayoutHandler) put(w http.ResponseWriter, r *http.Request, name string) {
	var req putLayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.Zones) == 0 {
		writeError(w, http.StatusBadRequest, "At least one zone is required")
		return
	}
	if _, err := zone.NewLayout(req.Zones...); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, err := h.store.Layouts().GetByName(name)
	created := errors.Is(err, store.ErrNotFound)
	if err != nil && !created {
		writeError(w, http.StatusInternalServerError, "Failed to get layout")
		return
	}

	layout := &store.Layout{Name: name, Zones: store.ZonesFromConfigs(req.Zones)}
	if err := h.store.Layouts().Save(layout); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save layout")
		return
	}

	if h.isActive(name) {
		if err := h.app.ActivateLayout(name); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to reload layout")
			return
		}
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, h.toResponse(layout))
}

// delete handles DELETE /api/layouts/{name}. The active layout cannot be deleted.
func (h *LayoutHandler) delete(w http.ResponseWriter, r *http.Request, name string) {
	if h.isActive(name) {
		writeError(w, http.StatusConflict, "Cannot delete the active layout")
		return
	}

	if err := h.store.Layouts().Delete(name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Layout not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete layout")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// activate handles POST /api/layouts/{name}/activate.
func (h *LayoutHandler) activate(w http.ResponseWriter, r *http.Request, name string) {
	if h.app == nil {
		writeError(w, http.StatusServiceUnavailable, "Input is not running")
		return
	}

	if err := h.app.ActivateLayout(name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Layout not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to activate layout")
		return
	}

	layout, err := h.store.Layouts().GetByName(name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get layout")
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(layout))
}
