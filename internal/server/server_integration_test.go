package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/hovertype/internal/app"
	"github.com/ayusman/hovertype/internal/detector"
	"github.com/ayusman/hovertype/internal/multitap"
	"github.com/ayusman/hovertype/internal/store"
	"github.com/ayusman/hovertype/internal/zone"
)

func testZones() []zone.Config {
	return []zone.Config{
		{Chars: "AB", Center: zone.Point{X: 100, Y: 100}, OuterRadius: 30, InnerRadius: 40},
		{Chars: "", Center: zone.Point{X: 300, Y: 100}, OuterRadius: 30, InnerRadius: 40},
	}
}

func wsURL(ts *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + path
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestAPI_LayoutWorkflow(t *testing.T) {
	// Setup
	tmpDir := t.TempDir()
	s, _ := store.New(filepath.Join(tmpDir, "test.db"))
	defer s.Close()

	a, err := app.New(app.Config{Store: s, Zones: testZones(), LayoutName: "pair"})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	if err := a.LoadLayout(); err != nil {
		t.Fatalf("LoadLayout() error = %v", err)
	}

	srv := New(Config{Store: s, App: a})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. Create a layout
	putBody := `{"zones": [{"chars": "XY", "center": {"x": 50, "y": 50}, "outer_radius": 10, "inner_radius": 12}]}`
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/layouts/small", bytes.NewBufferString(putBody))
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("PUT /api/layouts/small error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("PUT status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	resp.Body.Close()

	// 2. List layouts
	resp, _ = client.Get(ts.URL + "/api/layouts")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/layouts status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var listed struct {
		Layouts []struct {
			Name   string `json:"name"`
			Active bool   `json:"active"`
		} `json:"layouts"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Layouts) != 2 {
		t.Fatalf("len(layouts) = %d, want 2", len(listed.Layouts))
	}

	// 3. Activate it
	resp, _ = client.Post(ts.URL+"/api/layouts/small/activate", "application/json", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST activate status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	var status app.Status
	resp, _ = client.Get(ts.URL + "/api/status")
	json.NewDecoder(resp.Body).Decode(&status)
	resp.Body.Close()
	if status.Layout != "small" {
		t.Errorf("status layout = %q, want small", status.Layout)
	}

	// 4. Delete the inactive one
	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/layouts/pair", nil)
	resp, _ = client.Do(req)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	resp.Body.Close()

	// 5. Verify deleted
	resp, _ = client.Get(ts.URL + "/api/layouts/pair")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET after delete status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	resp.Body.Close()
}

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}

func TestEvents_Broadcast(t *testing.T) {
	hub := NewEventHub()
	a, err := app.New(app.Config{Zones: testZones(), Handlers: []multitap.Handler{hub}})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}

	ts := httptest.NewServer(New(Config{App: a, Events: hub}))
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/api/events"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	waitFor(t, "client registration", func() bool { return hub.Clients() == 1 })

	a.Step(0, []zone.Point{{X: 100, Y: 100}})
	a.Step(0, []zone.Point{{X: 300, Y: 100}})
	a.Step(2001*time.Millisecond, nil)

	want := []Event{
		{Type: "preview", Char: "A"},
		{Type: "commit", Char: "A"},
		{Type: "preview", Char: "\b"},
		{Type: "delete"},
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i, w := range want {
		var got Event
		if err := conn.ReadJSON(&got); err != nil {
			t.Fatalf("event %d: ReadJSON() error = %v", i, err)
		}
		if got.Type != w.Type || got.Char != w.Char {
			t.Errorf("event %d = %+v, want %+v", i, got, w)
		}
		if got.Timestamp == 0 {
			t.Errorf("event %d has no timestamp", i)
		}
	}

	conn.Close()
	waitFor(t, "client removal", func() bool { return hub.Clients() == 0 })
}

func TestEventHub_NeverBlocks(t *testing.T) {
	hub := NewEventHub()
	ts := httptest.NewServer(hub)
	defer ts.Close()

	// A client that never reads still must not stall the input machine.
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, ""), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	waitFor(t, "client registration", func() bool { return hub.Clients() == 1 })

	done := make(chan struct{})
	go func() {
		for i := 0; i < clientBuffer*100; i++ {
			hub.Commit('x')
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
}

func TestFrames_PushesToSource(t *testing.T) {
	source := detector.NewPushSource(time.Minute)
	ts := httptest.NewServer(New(Config{Source: source}))
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/api/frames"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	// Malformed frames are skipped without closing the connection.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}

	frame := Frame{Hands: []detector.HandLandmarks{detector.PointingLandmarks(0.25, 0.5)}}
	if err := conn.WriteJSON(frame); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var hands []detector.HandLandmarks
	waitFor(t, "pushed frame", func() bool {
		hands, _ = source.Snapshot()
		return len(hands) == 1
	})

	if tip := hands[0].Points[detector.IndexTip]; tip.X != 0.25 || tip.Y != 0.5 {
		t.Errorf("index tip = %+v, want (0.25, 0.5)", tip)
	}
}

func TestFrames_ClosedSource(t *testing.T) {
	source := detector.NewPushSource(time.Minute)
	source.Close()

	ts := httptest.NewServer(New(Config{Source: source}))
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/api/frames"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(Frame{}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("ReadMessage() error = %v, want going away close", err)
	}
}
