package detector

import "sync"

// MockSource is a test implementation of the Source interface.
// It allows tests to control the tracked hands.
type MockSource struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
}

// NewMockSource creates a new MockSource instance.
func NewMockSource() *MockSource {
	return &MockSource{}
}

// SetHands sets the hands that will be returned by Snapshot.
func (m *MockSource) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Snapshot.
func (m *MockSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Snapshot returns the pre-configured hands or error.
func (m *MockSource) Snapshot() ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock source.
func (m *MockSource) Close() error {
	return nil
}
