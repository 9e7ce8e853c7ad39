package detector

import (
	"errors"

	"github.com/ayusman/hovertype/internal/zone"
)

// ErrSourceClosed is returned by a Source after Close.
var ErrSourceClosed = errors.New("source is closed")

// Source supplies the hands tracked at the moment of the call.
type Source interface {
	// Snapshot returns the currently tracked hands.
	// Returns an empty slice if no hands are tracked.
	Snapshot() ([]HandLandmarks, error)

	// Close releases any resources held by the source.
	Close() error
}

// Config holds configuration options for projecting hands into layout space.
type Config struct {
	// Landmark is the landmark index used as the hand's pointer (default: IndexTip).
	Landmark int

	// Width and Height scale normalized coordinates into layout coordinates.
	Width  float64
	Height float64

	// Mirror flips X, for trackers fed by a front-facing camera.
	Mirror bool

	// MinScore drops hands tracked with lower confidence (0.0-1.0).
	MinScore float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Landmark: IndexTip,
		Width:    640,
		Height:   480,
		Mirror:   true,
		MinScore: 0.5,
	}
}

// Projector maps tracked hands to zone points.
type Projector struct {
	config Config
}

// NewProjector creates a Projector. An out-of-range landmark falls back to IndexTip.
func NewProjector(config Config) *Projector {
	if config.Landmark < 0 || config.Landmark >= NumLandmarks {
		config.Landmark = IndexTip
	}
	return &Projector{config: config}
}

// Project returns one point per hand that passes the score threshold,
// in the order the hands were reported.
func (p *Projector) Project(hands []HandLandmarks) []zone.Point {
	points := make([]zone.Point, 0, len(hands))
	for i := range hands {
		if hands[i].Score < p.config.MinScore {
			continue
		}
		lm := hands[i].Points[p.config.Landmark]
		x := lm.X
		if p.config.Mirror {
			x = 1 - x
		}
		points = append(points, zone.Point{
			X: x * p.config.Width,
			Y: lm.Y * p.config.Height,
		})
	}
	return points
}

// Config returns the projector configuration.
func (p *Projector) Config() Config {
	return p.config
}
