// Package app provides the main application logic for the hovertype input system.
package app

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ayusman/hovertype/internal/detector"
	"github.com/ayusman/hovertype/internal/multitap"
	"github.com/ayusman/hovertype/internal/store"
	"github.com/ayusman/hovertype/internal/zone"
)

// Frame loop defaults.
const (
	// DefaultFPS is the frame rate when none is configured.
	DefaultFPS = 30
	// DefaultLayoutName is the stored layout used when none is configured.
	DefaultLayoutName = "keypad"
)

var (
	// ErrNoSource is returned by Start when no point source is configured.
	ErrNoSource = errors.New("no point source configured")
	// ErrNoStore is returned by operations that need persistence.
	ErrNoStore = errors.New("no store configured")
)

// Config holds configuration options for the application.
type Config struct {
	// Store persists the layout and the typed history. Optional.
	Store *store.Store

	// Zones is the layout used until LoadLayout reads one from the store,
	// and the layout seeded into an empty store.
	Zones []zone.Config

	// LayoutName is the stored layout to load.
	LayoutName string

	// Timeout is the multi-tap commit timeout.
	Timeout time.Duration

	// FPS is the frame loop rate.
	FPS int

	// Source supplies tracked hands to the frame loop.
	Source detector.Source

	// Projector maps tracked hands to zone points.
	Projector *detector.Projector

	// Handlers receive every typing event after the built-in buffer and history.
	Handlers []multitap.Handler
}

// Status is a snapshot of the input machine.
type Status struct {
	Enabled     bool   `json:"enabled"`
	Mode        string `json:"mode"`
	ActiveChars string `json:"active_chars"`
	ActiveIndex int    `json:"active_index"`
	Pending     string `json:"pending,omitempty"`
	ElapsedMs   int64  `json:"elapsed_ms"`
	Layout      string `json:"layout"`
}

// App owns the zone layout and the multi-tap machine and drives them one
// frame at a time. Frames are serialized by a single lock so the layout and
// the machine only ever see one driver.
type App struct {
	config    Config
	buffer    *multitap.Buffer
	machine   *multitap.Machine
	projector *detector.Projector

	mu         sync.Mutex
	layout     *zone.Layout
	layoutName string
	enabled    bool
	stopCh     chan struct{}
	doneCh     chan struct{}
}

// New creates a new App instance with the given configuration.
// The configured zones must form a valid layout.
func New(config Config) (*App, error) {
	if config.FPS <= 0 {
		config.FPS = DefaultFPS
	}
	if config.LayoutName == "" {
		config.LayoutName = DefaultLayoutName
	}
	if config.Projector == nil {
		config.Projector = detector.NewProjector(detector.DefaultConfig())
	}

	layout, err := zone.NewLayout(config.Zones...)
	if err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}

	a := &App{
		config:     config,
		buffer:     multitap.NewBuffer(),
		projector:  config.Projector,
		layout:     layout,
		layoutName: config.LayoutName,
		enabled:    true,
	}

	handlers := multitap.Fanout{a.buffer}
	if config.Store != nil {
		handlers = append(handlers, newHistoryRecorder(config.Store.Entries()))
	}
	handlers = append(handlers, config.Handlers...)

	var opts []multitap.Option
	if config.Timeout > 0 {
		opts = append(opts, multitap.WithTimeout(config.Timeout))
	}
	a.machine = multitap.New(handlers, opts...)

	return a, nil
}

// LoadLayout replaces the active layout with the stored one named by the
// active layout setting, falling back to the configured name. A missing
// layout is seeded with the configured zones.
func (a *App) LoadLayout() error {
	if a.config.Store == nil {
		return nil
	}

	name, err := a.config.Store.Settings().Get(store.SettingActiveLayout)
	if errors.Is(err, store.ErrNotFound) {
		name = a.config.LayoutName
	} else if err != nil {
		return fmt.Errorf("read active layout: %w", err)
	}

	layouts := a.config.Store.Layouts()
	stored, err := layouts.GetByName(name)
	if errors.Is(err, store.ErrNotFound) && name == a.config.LayoutName {
		stored = &store.Layout{Name: name, Zones: store.ZonesFromConfigs(a.config.Zones)}
		if err := layouts.Save(stored); err != nil {
			return fmt.Errorf("seed layout: %w", err)
		}
		log.Printf("Seeded layout %q with %d zones", stored.Name, len(stored.Zones))
	} else if err != nil {
		return fmt.Errorf("load layout %q: %w", name, err)
	}

	return a.applyLayout(stored)
}

// ActivateLayout makes the stored layout with the given name active and
// remembers the choice across restarts.
func (a *App) ActivateLayout(name string) error {
	if a.config.Store == nil {
		return ErrNoStore
	}

	stored, err := a.config.Store.Layouts().GetByName(name)
	if err != nil {
		return err
	}
	if err := a.applyLayout(stored); err != nil {
		return err
	}
	return a.config.Store.Settings().Set(store.SettingActiveLayout, name)
}

// applyLayout swaps in a stored layout. The pending character is committed
// first so it is not lost with the old zones.
func (a *App) applyLayout(stored *store.Layout) error {
	layout, err := zone.NewLayout(stored.Configs()...)
	if err != nil {
		return fmt.Errorf("stored layout %q: %w", stored.Name, err)
	}

	a.mu.Lock()
	a.machine.Flush()
	a.layout = layout
	a.layoutName = stored.Name
	a.mu.Unlock()

	log.Printf("Loaded layout %q with %d zones", stored.Name, layout.Len())
	return nil
}

// LayoutName returns the name of the active layout.
func (a *App) LayoutName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.layoutName
}

// Step runs one logical frame: the commit timer advances first, then every
// zone is evaluated against the same point snapshot, then each zone that
// reported enter activates the machine in layout registration order.
// Returns nil when detection is disabled.
func (a *App) Step(delta time.Duration, points []zone.Point) []zone.Event {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.enabled {
		return nil
	}

	a.machine.Tick(delta)

	events := a.layout.Evaluate(points)
	for _, z := range zone.Entered(events) {
		a.machine.Activate(z.Chars())
	}

	return events
}

// StepHands projects tracked hands and runs one frame.
func (a *App) StepHands(delta time.Duration, hands []detector.HandLandmarks) []zone.Event {
	return a.Step(delta, a.projector.Project(hands))
}

// SetEnabled enables or disables detection. Disabling commits the pending
// character and moves every zone outside, so re-enabling starts clean.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.enabled && !enabled {
		a.machine.Flush()
		a.layout.Reset()
	}
	a.enabled = enabled
}

// IsEnabled returns whether detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// Buffer returns the text buffer fed by the machine.
func (a *App) Buffer() *multitap.Buffer {
	return a.buffer
}

// Zones returns the active layout's zone configurations.
func (a *App) Zones() []zone.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.layout.Configs()
}

// Status returns a snapshot of the input machine.
func (a *App) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := Status{
		Enabled:     a.enabled,
		Mode:        a.machine.Mode().String(),
		ActiveChars: a.machine.ActiveChars(),
		ActiveIndex: a.machine.ActiveIndex(),
		ElapsedMs:   a.machine.Elapsed().Milliseconds(),
		Layout:      a.layoutName,
	}
	if r, ok := a.machine.Pending(); ok {
		st.Pending = string(r)
	}
	return st
}

// Start begins the frame loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}
	if a.config.Source == nil {
		return ErrNoSource
	}

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Printf("Frame loop started at %d FPS", a.config.FPS)
	return nil
}

// Stop halts the frame loop, commits any pending character and releases
// the point source.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	a.mu.Lock()
	a.machine.Flush()
	a.mu.Unlock()

	if a.config.Source != nil {
		if err := a.config.Source.Close(); err != nil {
			log.Printf("Error closing point source: %v", err)
		}
	}

	log.Println("Frame loop stopped")
}
