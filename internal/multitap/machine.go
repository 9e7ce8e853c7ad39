// Package multitap implements phone-keypad style multi-tap text entry driven
// by zone activations and elapsed time.
package multitap

import (
	"time"
	"unicode/utf8"
)

// DefaultTimeout is how long the machine waits without a new activation
// before committing the pending character.
const DefaultTimeout = 2000 * time.Millisecond

// Backspace is the preview character reported for the delete zone.
const Backspace rune = '\b'

// Mode is the machine's state.
type Mode int

const (
	// Idle means no character is pending.
	Idle Mode = iota
	// Input means a character set is being cycled.
	Input
)

func (m Mode) String() string {
	if m == Input {
		return "input"
	}
	return "idle"
}

// Option configures a Machine.
type Option func(*Machine)

// WithTimeout overrides the commit timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// Machine is the multi-tap input state machine. It is not safe for
// concurrent use; a single frame loop owns it.
type Machine struct {
	handler Handler
	timeout time.Duration

	mode    Mode
	chars   string
	set     []rune
	index   int
	elapsed time.Duration
}

// New creates a Machine in idle mode that reports to h.
func New(h Handler, opts ...Option) *Machine {
	if h == nil {
		h = HandlerFuncs{}
	}
	m := &Machine{
		handler: h,
		timeout: DefaultTimeout,
		mode:    Idle,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Activate registers an enter event on the zone bound to chars.
//
// In idle mode it starts cycling chars at index 0. Re-activating the active
// set advances to the next character. Activating a different set commits the
// pending character first. The empty set is the delete zone: a single entry
// whose commit is a delete.
func (m *Machine) Activate(chars string) {
	if !utf8.ValidString(chars) {
		return
	}

	if m.mode == Input {
		if chars == m.chars {
			m.index = (m.index + 1) % len(m.set)
			m.elapsed = 0
			m.handler.Preview(m.current())
			return
		}
		m.commit()
	}

	m.mode = Input
	m.chars = chars
	m.set = entries(chars)
	m.index = 0
	m.elapsed = 0
	m.handler.Preview(m.current())
}

// Tick advances the commit timer by delta. Once the timer exceeds the
// timeout the pending character is committed and the machine goes idle.
// Negative deltas are ignored.
func (m *Machine) Tick(delta time.Duration) {
	if delta < 0 || m.mode != Input {
		return
	}

	m.elapsed += delta
	if m.elapsed > m.timeout {
		m.Flush()
	}
}

// Flush commits the pending character immediately and returns to idle.
func (m *Machine) Flush() {
	if m.mode != Input {
		return
	}
	m.commit()
	m.mode = Idle
	m.chars = ""
	m.set = nil
	m.index = 0
	m.elapsed = 0
}

// commit emits the pending entry without changing state.
func (m *Machine) commit() {
	if m.chars == "" {
		m.handler.Delete()
		return
	}
	m.handler.Commit(m.current())
}

func (m *Machine) current() rune {
	return m.set[m.index]
}

// entries returns the selectable entries for a character set.
// The delete zone has one virtual entry.
func entries(chars string) []rune {
	if chars == "" {
		return []rune{Backspace}
	}
	return []rune(chars)
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode {
	return m.mode
}

// ActiveChars returns the character set being cycled, or "" when idle.
// Use Mode to tell idle apart from the delete zone.
func (m *Machine) ActiveChars() string {
	return m.chars
}

// ActiveIndex returns the index into the active character set.
func (m *Machine) ActiveIndex() int {
	return m.index
}

// Elapsed returns the time since the last activation.
func (m *Machine) Elapsed() time.Duration {
	return m.elapsed
}

// Timeout returns the commit timeout.
func (m *Machine) Timeout() time.Duration {
	return m.timeout
}

// Pending returns the character that would be committed now.
func (m *Machine) Pending() (rune, bool) {
	if m.mode != Input {
		return 0, false
	}
	return m.current(), true
}
