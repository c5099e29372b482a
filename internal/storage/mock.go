package storage

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/novelterm/aetheria/pkg/state"
)

// MockStorage is an in-memory Storage for testing. It round-trips the
// session through JSON so tests exercise the same serialization path as the
// real store.
type MockStorage struct {
	mu        sync.RWMutex
	blob      []byte
	pingError error
	saveError error

	SaveCalls int
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail on save with the given error
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveSession(ctx context.Context, s *state.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.saveError != nil {
		return m.saveError
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.blob = data
	return nil
}

func (m *MockStorage) LoadSession(ctx context.Context) (*state.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.blob == nil {
		return nil, nil
	}
	var s state.Session
	if err := json.Unmarshal(m.blob, &s); err != nil {
		return nil, nil
	}
	return &s, nil
}

func (m *MockStorage) DeleteSession(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob = nil
	return nil
}
