package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ayusman/hovertype/internal/detector"
)

// Frame is one tracker result pushed by an external hand tracker.
type Frame struct {
	Hands []detector.HandLandmarks `json:"hands"`
}

// FramesHandler accepts tracker frames over a WebSocket and feeds them to
// the frame loop's point source.
type FramesHandler struct {
	source *detector.PushSource
}

// NewFramesHandler creates a new FramesHandler that pushes into source.
func NewFramesHandler(source *detector.PushSource) *FramesHandler {
	return &FramesHandler{source: source}
}

// ServeHTTP handles WebSocket upgrade requests and reads frames until the
// client disconnects. Malformed frames are logged and skipped.
func (h *FramesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("tracker connection closed: %v", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Printf("invalid tracker frame: %v", err)
			continue
		}

		if err := h.source.Push(frame.Hands); err != nil {
			if errors.Is(err, detector.ErrSourceClosed) {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			}
			log.Printf("failed to push frame: %v", err)
		}
	}
}
