package config

import (
	"fmt"
	"strings"

	"github.com/ayusman/hovertype/internal/detector"
	"github.com/ayusman/hovertype/internal/zone"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs ValidationErrors

	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Server.Addr == "" {
		add("server.addr", "must not be empty")
	}
	if c.Storage.Path == "" {
		add("storage.path", "must not be empty")
	}

	if c.Input.TimeoutMs <= 0 {
		add("input.timeout_ms", "must be positive, got %d", c.Input.TimeoutMs)
	}
	if c.Input.FPS <= 0 || c.Input.FPS > 240 {
		add("input.fps", "must be between 1 and 240, got %d", c.Input.FPS)
	}
	if c.Input.Layout == "" {
		add("input.layout", "must not be empty")
	}

	if c.Tracker.Landmark < 0 || c.Tracker.Landmark >= detector.NumLandmarks {
		add("tracker.landmark", "must be between 0 and %d, got %d", detector.NumLandmarks-1, c.Tracker.Landmark)
	}
	if c.Tracker.Width <= 0 || c.Tracker.Height <= 0 {
		add("tracker", "width and height must be positive")
	}
	if c.Tracker.MinScore < 0 || c.Tracker.MinScore > 1 {
		add("tracker.min_score", "must be between 0 and 1, got %g", c.Tracker.MinScore)
	}

	if c.Plugin.Enabled {
		if c.Plugin.Name == "" {
			add("plugin.name", "must not be empty when plugins are enabled")
		}
		if c.Plugin.TimeoutMs <= 0 {
			add("plugin.timeout_ms", "must be positive, got %d", c.Plugin.TimeoutMs)
		}
	}

	if len(c.Zones) == 0 {
		add("zones", "at least one zone is required")
	} else if _, err := zone.NewLayout(c.Zones...); err != nil {
		add("zones", "%v", err)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
