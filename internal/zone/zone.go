// Package zone provides hover zones with hysteresis for the hovertype input system.
package zone

import (
	"errors"
	"math"
	"unicode/utf8"
)

// Errors returned when a zone configuration is rejected.
var (
	ErrInvalidRadius  = errors.New("zone radius must be positive and finite")
	ErrHysteresis     = errors.New("zone inner radius must not be smaller than outer radius")
	ErrInvalidChars   = errors.New("zone characters must be valid UTF-8")
	ErrDuplicateChars = errors.New("duplicate zone characters")
)

// Point is a 2-D position in layout coordinates.
type Point struct {
	X float64 `json:"x" toml:"x" yaml:"x"`
	Y float64 `json:"y" toml:"y" yaml:"y"`
}

// State is the stored collision state of a zone between ticks.
type State int

const (
	// Outside means no point collided on the previous tick.
	Outside State = iota
	// Inside means at least one point collided on the previous tick.
	Inside
)

func (s State) String() string {
	if s == Inside {
		return "inside"
	}
	return "outside"
}

// Transition is the per-tick result of evaluating a zone.
type Transition int

const (
	TransitionOutside Transition = iota
	TransitionEnter
	TransitionInside
	TransitionExit
)

func (t Transition) String() string {
	switch t {
	case TransitionEnter:
		return "enter"
	case TransitionInside:
		return "inside"
	case TransitionExit:
		return "exit"
	default:
		return "outside"
	}
}

// Config describes a zone's character set and hitbox.
type Config struct {
	// Chars is the character cluster bound to the zone. Empty marks the delete zone.
	Chars string `json:"chars" toml:"chars" yaml:"chars"`

	// Center is the hitbox center in layout coordinates.
	Center Point `json:"center" toml:"center" yaml:"center"`

	// OuterRadius is the radius a point must get within to enter the zone.
	OuterRadius float64 `json:"outer_radius" toml:"outer_radius" yaml:"outer_radius"`

	// InnerRadius is the radius a point must leave to exit the zone once inside.
	InnerRadius float64 `json:"inner_radius" toml:"inner_radius" yaml:"inner_radius"`
}

// Validate checks the geometry and character set.
func (c Config) Validate() error {
	if !validRadius(c.OuterRadius) || !validRadius(c.InnerRadius) {
		return ErrInvalidRadius
	}
	if c.InnerRadius < c.OuterRadius {
		return ErrHysteresis
	}
	if !utf8.ValidString(c.Chars) {
		return ErrInvalidChars
	}
	return nil
}

func validRadius(r float64) bool {
	return r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}

// Zone is a circular hover target. Its geometry is fixed at construction;
// only the stored state changes, once per call to Evaluate.
type Zone struct {
	cfg   Config
	state State
}

// New creates a zone from the given configuration.
func New(cfg Config) (*Zone, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Zone{cfg: cfg, state: Outside}, nil
}

// Evaluate decides whether any of the points collides with the zone and
// returns the resulting transition. The threshold radius depends on the
// state left by the previous call: OuterRadius when outside, InnerRadius
// when inside. An empty point slice means no hands this tick.
func (z *Zone) Evaluate(points []Point) Transition {
	r := z.cfg.OuterRadius
	if z.state == Inside {
		r = z.cfg.InnerRadius
	}

	hit := false
	for _, p := range points {
		if distance(z.cfg.Center, p) < r {
			hit = true
			break
		}
	}

	prev := z.state
	if hit {
		z.state = Inside
		if prev == Outside {
			return TransitionEnter
		}
		return TransitionInside
	}

	z.state = Outside
	if prev == Inside {
		return TransitionExit
	}
	return TransitionOutside
}

// Reset forces the zone back to the outside state.
func (z *Zone) Reset() {
	z.state = Outside
}

// State returns the state stored by the last evaluation.
func (z *Zone) State() State {
	return z.state
}

// Chars returns the zone's character set.
func (z *Zone) Chars() string {
	return z.cfg.Chars
}

// IsDelete reports whether this is the delete zone.
func (z *Zone) IsDelete() bool {
	return z.cfg.Chars == ""
}

// Config returns the zone's configuration.
func (z *Zone) Config() Config {
	return z.cfg
}

// distance calculates the Euclidean distance between two points.
func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
