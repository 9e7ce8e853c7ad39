package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/hovertype/internal/app"
	"github.com/ayusman/hovertype/internal/store"
	"github.com/ayusman/hovertype/internal/zone"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "hovertype-api-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func pairZones() []zone.Config {
	return []zone.Config{
		{Chars: "AB", Center: zone.Point{X: 100, Y: 100}, OuterRadius: 30, InnerRadius: 40},
		{Chars: "", Center: zone.Point{X: 300, Y: 100}, OuterRadius: 30, InnerRadius: 40},
	}
}

// newTestApp creates an App over s whose "pair" layout is seeded and active.
func newTestApp(t *testing.T, s *store.Store) *app.App {
	t.Helper()

	a, err := app.New(app.Config{Store: s, Zones: pairZones(), LayoutName: "pair"})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	if err := a.LoadLayout(); err != nil {
		t.Fatalf("failed to load layout: %v", err)
	}
	return a
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLayoutHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewLayoutHandler(s, newTestApp(t, s))

	if err := s.Layouts().Save(&store.Layout{Name: "alt", Zones: store.ZonesFromConfigs(pairZones())}); err != nil {
		t.Fatalf("failed to save layout: %v", err)
	}

	rec := doRequest(t, handler, http.MethodGet, "/api/layouts", nil)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	var response listLayoutsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Layouts) != 2 {
		t.Fatalf("expected 2 layouts, got %d", len(response.Layouts))
	}

	// Ordered by name.
	if response.Layouts[0].Name != "alt" || response.Layouts[0].Active {
		t.Errorf("unexpected first layout: %+v", response.Layouts[0])
	}
	if response.Layouts[1].Name != "pair" || !response.Layouts[1].Active {
		t.Errorf("unexpected second layout: %+v", response.Layouts[1])
	}
}

func TestLayoutHandler_Get(t *testing.T) {
	s := newTestStore(t)
	handler := NewLayoutHandler(s, newTestApp(t, s))

	t.Run("existing layout", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/layouts/pair", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var response layoutResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if len(response.Zones) != 2 {
			t.Fatalf("expected 2 zones, got %d", len(response.Zones))
		}
		if response.Zones[0].Chars != "AB" || response.Zones[1].Chars != "" {
			t.Errorf("unexpected zones: %+v", response.Zones)
		}
		if response.Zones[0].Center.X != 100 || response.Zones[0].InnerRadius != 40 {
			t.Errorf("unexpected zone geometry: %+v", response.Zones[0])
		}
	})

	t.Run("missing layout", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/api/layouts/missing", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}

		var response errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.Error != "Layout not found" {
			t.Errorf("unexpected error message: %q", response.Error)
		}
	})
}

func TestLayoutHandler_Put(t *testing.T) {
	s := newTestStore(t)
	a := newTestApp(t, s)
	handler := NewLayoutHandler(s, a)

	t.Run("creates layout", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPut, "/api/layouts/numbers", putLayoutRequest{
			Zones: []zone.Config{
				{Chars: "123", Center: zone.Point{X: 50, Y: 50}, OuterRadius: 20, InnerRadius: 25},
			},
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
		}

		stored, err := s.Layouts().GetByName("numbers")
		if err != nil {
			t.Fatalf("layout not stored: %v", err)
		}
		if len(stored.Zones) != 1 || stored.Zones[0].Chars != "123" {
			t.Errorf("unexpected stored zones: %+v", stored.Zones)
		}
	})

	t.Run("replacing the active layout reloads it", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodPut, "/api/layouts/pair", putLayoutRequest{
			Zones: []zone.Config{
				{Chars: "XYZ", Center: zone.Point{X: 100, Y: 100}, OuterRadius: 30, InnerRadius: 40},
			},
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}

		zones := a.Zones()
		if len(zones) != 1 || zones[0].Chars != "XYZ" {
			t.Errorf("app zones not reloaded: %+v", zones)
		}
	})

	t.Run("rejects invalid layouts", func(t *testing.T) {
		tests := []struct {
			name string
			body interface{}
		}{
			{"no zones", putLayoutRequest{}},
			{"hysteresis", putLayoutRequest{Zones: []zone.Config{
				{Chars: "A", OuterRadius: 40, InnerRadius: 30},
			}}},
			{"duplicate chars", putLayoutRequest{Zones: []zone.Config{
				{Chars: "A", OuterRadius: 10, InnerRadius: 10},
				{Chars: "A", OuterRadius: 10, InnerRadius: 10},
			}}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := doRequest(t, handler, http.MethodPut, "/api/layouts/bad", tt.body)
				if rec.Code != http.StatusBadRequest {
					t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
				}
			})
		}

		if _, err := s.Layouts().GetByName("bad"); err != store.ErrNotFound {
			t.Errorf("invalid layout was stored: %v", err)
		}
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/layouts/x", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})
}

func TestLayoutHandler_Delete(t *testing.T) {
	s := newTestStore(t)
	handler := NewLayoutHandler(s, newTestApp(t, s))

	if err := s.Layouts().Save(&store.Layout{Name: "old", Zones: store.ZonesFromConfigs(pairZones())}); err != nil {
		t.Fatalf("failed to save layout: %v", err)
	}

	rec := doRequest(t, handler, http.MethodDelete, "/api/layouts/old", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	rec = doRequest(t, handler, http.MethodDelete, "/api/layouts/old", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}

	rec = doRequest(t, handler, http.MethodDelete, "/api/layouts/pair", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("deleting active layout: expected status %d, got %d", http.StatusConflict, rec.Code)
	}
}

func TestLayoutHandler_Activate(t *testing.T) {
	s := newTestStore(t)
	a := newTestApp(t, s)
	handler := NewLayoutHandler(s, a)

	if err := s.Layouts().Save(&store.Layout{
		Name: "digits",
		Zones: store.ZonesFromConfigs([]zone.Config{
			{Chars: "12", Center: zone.Point{X: 10, Y: 10}, OuterRadius: 5, InnerRadius: 6},
		}),
	}); err != nil {
		t.Fatalf("failed to save layout: %v", err)
	}

	rec := doRequest(t, handler, http.MethodPost, "/api/layouts/digits/activate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var response layoutResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.Active {
		t.Error("activated layout should be reported active")
	}
	if a.LayoutName() != "digits" {
		t.Errorf("app layout = %q, want digits", a.LayoutName())
	}

	rec = doRequest(t, handler, http.MethodPost, "/api/layouts/missing/activate", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}

	rec = doRequest(t, handler, http.MethodGet, "/api/layouts/digits/activate", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestLayoutHandler_ActivateWithoutApp(t *testing.T) {
	s := newTestStore(t)
	handler := NewLayoutHandler(s, nil)

	rec := doRequest(t, handler, http.MethodPost, "/api/layouts/any/activate", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestLayoutHandler_MethodNotAllowed(t *testing.T) {
	s := newTestStore(t)
	handler := NewLayoutHandler(s, nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/layouts"},
		{http.MethodDelete, "/api/layouts"},
		{http.MethodPost, "/api/layouts/pair"},
		{http.MethodPatch, "/api/layouts/pair"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := doRequest(t, handler, tt.method, tt.path, nil)
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
			}
		})
	}
}
