package services

import (
	"context"
	"sync"

	"github.com/novelterm/aetheria/pkg/chat"
)

// MockModelService is a scripted ModelService for testing.
type MockModelService struct {
	StartSessionFunc  func(ctx context.Context) (ModelSession, error)
	ResumeSessionFunc func(ctx context.Context, history []chat.ChatMessage) (ModelSession, error)

	// Track calls for testing
	StartSessionCalls  int
	ResumeSessionCalls [][]chat.ChatMessage

	// Session returned by default when no func is injected.
	Session *MockModelSession

	mu sync.Mutex
}

// NewMockModelService creates a mock service wrapping the given session.
func NewMockModelService(session *MockModelSession) *MockModelService {
	return &MockModelService{Session: session}
}

func (m *MockModelService) StartSession(ctx context.Context) (ModelSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartSessionCalls++
	if m.StartSessionFunc != nil {
		return m.StartSessionFunc(ctx)
	}
	return m.Session, nil
}

func (m *MockModelService) ResumeSession(ctx context.Context, history []chat.ChatMessage) (ModelSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResumeSessionCalls = append(m.ResumeSessionCalls, history)
	if m.ResumeSessionFunc != nil {
		return m.ResumeSessionFunc(ctx, history)
	}
	return m.Session, nil
}

func (m *MockModelService) Close() error { return nil }

// MockModelSession replays a scripted sequence of responses. Each Send or
// SendToolResults consumes the next response (or error) in order.
type MockModelSession struct {
	Responses []*ModelResponse
	Errors    []error // parallel to Responses; nil entries mean success

	// Track calls for testing
	SendCalls        []string
	ToolResultsCalls [][]ToolResult

	next int
	mu   sync.Mutex
}

// Script sets up a session that replays the given responses in order.
func Script(responses ...*ModelResponse) *MockModelSession {
	return &MockModelSession{Responses: responses}
}

func (m *MockModelSession) Send(ctx context.Context, text string) (*ModelResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendCalls = append(m.SendCalls, text)
	return m.advance()
}

func (m *MockModelSession) SendToolResults(ctx context.Context, results []ToolResult) (*ModelResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ToolResultsCalls = append(m.ToolResultsCalls, results)
	return m.advance()
}

func (m *MockModelSession) advance() (*ModelResponse, error) {
	i := m.next
	m.next++
	if i < len(m.Errors) && m.Errors[i] != nil {
		return nil, m.Errors[i]
	}
	if i >= len(m.Responses) {
		return &ModelResponse{Text: "Mock response"}, nil
	}
	return m.Responses[i], nil
}
