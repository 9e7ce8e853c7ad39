package zone

import "fmt"

// Event pairs a zone with the transition it reported on one tick.
type Event struct {
	Zone       *Zone
	Transition Transition
}

// Layout is the ordered set of zones checked every tick.
// Registration order is the order zones are evaluated and reported in.
type Layout struct {
	zones []*Zone
}

// NewLayout validates every configuration and builds a layout.
// Two zones may not share a character set; this includes two delete zones.
func NewLayout(cfgs ...Config) (*Layout, error) {
	seen := make(map[string]int, len(cfgs))
	zones := make([]*Zone, 0, len(cfgs))

	for i, cfg := range cfgs {
		if j, ok := seen[cfg.Chars]; ok {
			return nil, fmt.Errorf("zone %d duplicates zone %d (%q): %w", i, j, cfg.Chars, ErrDuplicateChars)
		}
		seen[cfg.Chars] = i

		z, err := New(cfg)
		if err != nil {
			return nil, fmt.Errorf("zone %d (%q): %w", i, cfg.Chars, err)
		}
		zones = append(zones, z)
	}

	return &Layout{zones: zones}, nil
}

// Evaluate checks every zone against the same point snapshot and returns
// one event per zone in registration order.
func (l *Layout) Evaluate(points []Point) []Event {
	events := make([]Event, len(l.zones))
	for i, z := range l.zones {
		events[i] = Event{Zone: z, Transition: z.Evaluate(points)}
	}
	return events
}

// Reset puts every zone back in the outside state.
func (l *Layout) Reset() {
	for _, z := range l.zones {
		z.Reset()
	}
}

// Zones returns the zones in registration order.
func (l *Layout) Zones() []*Zone {
	out := make([]*Zone, len(l.zones))
	copy(out, l.zones)
	return out
}

// Configs returns the configuration of every zone in registration order.
func (l *Layout) Configs() []Config {
	out := make([]Config, len(l.zones))
	for i, z := range l.zones {
		out[i] = z.cfg
	}
	return out
}

// Len returns the number of zones.
func (l *Layout) Len() int {
	return len(l.zones)
}

// Entered filters events down to enter transitions, preserving order.
func Entered(events []Event) []*Zone {
	var entered []*Zone
	for _, e := range events {
		if e.Transition == TransitionEnter {
			entered = append(entered, e.Zone)
		}
	}
	return entered
}
