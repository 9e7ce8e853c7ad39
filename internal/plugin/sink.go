package plugin

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/ayusman/hovertype/internal/multitap"
)

// Actions a keystroke plugin must support.
const (
	ActionType      = "type"
	ActionBackspace = "backspace"
)

// DefaultQueueSize is the number of keystrokes buffered ahead of the plugin.
const DefaultQueueSize = 256

// TypeParams are the params of a type request.
type TypeParams struct {
	Char string `json:"char"`
}

// Sink forwards committed characters and deletes to a keystroke plugin.
// Requests run one at a time on a background worker so keystrokes reach
// the plugin in the order they were typed and the input machine never
// waits on a plugin process. Previews are not forwarded.
type Sink struct {
	plugin   *Plugin
	executor *Executor
	config   json.RawMessage

	mu     sync.RWMutex
	closed bool
	queue  chan *Request
	done   chan struct{}
}

var _ multitap.Handler = (*Sink)(nil)

// NewSink starts a Sink for plugin. The plugin must support both keystroke
// actions. config is passed verbatim in every request.
func NewSink(plugin *Plugin, executor *Executor, config json.RawMessage, queueSize int) (*Sink, error) {
	for _, action := range []string{ActionType, ActionBackspace} {
		if !plugin.Supports(action) {
			return nil, fmt.Errorf("plugin %s does not support action %q", plugin.Manifest.Name, action)
		}
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	s := &Sink{
		plugin:   plugin,
		executor: executor,
		config:   config,
		queue:    make(chan *Request, queueSize),
		done:     make(chan struct{}),
	}
	go s.run()
	return s, nil
}

func (s *Sink) Preview(rune) {}

func (s *Sink) Commit(r rune) {
	params, _ := json.Marshal(TypeParams{Char: string(r)})
	s.enqueue(&Request{Action: ActionType, Event: "commit", Config: s.config, Params: params})
}

func (s *Sink) Delete() {
	s.enqueue(&Request{Action: ActionBackspace, Event: "delete", Config: s.config})
}

func (s *Sink) enqueue(req *Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return
	}
	select {
	case s.queue <- req:
	default:
		log.Printf("Plugin %s is falling behind, dropping %s", s.plugin.Manifest.Name, req.Action)
	}
}

func (s *Sink) run() {
	defer close(s.done)

	for req := range s.queue {
		resp, err := s.executor.Execute(s.plugin, req)
		if err != nil {
			log.Printf("Plugin %s %s failed: %v", s.plugin.Manifest.Name, req.Action, err)
			continue
		}
		if !resp.Success {
			log.Printf("Plugin %s %s rejected: %s", s.plugin.Manifest.Name, req.Action, resp.Error)
		}
	}
}

// Close stops accepting keystrokes and waits until every queued one has
// been delivered. It is safe to call more than once.
func (s *Sink) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	<-s.done
	return nil
}
