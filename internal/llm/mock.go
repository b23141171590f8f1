package llm

import (
	"context"
	"sync"
)

// MockClient is a deterministic Client implementation for testing.
// It replays a fixed response, a scripted sequence of responses, or an error.
type MockClient struct {
	// Response is the fixed text returned by Complete when Responses is empty.
	Response string

	// Responses, if non-empty, is consumed one element per call.
	// After the script runs out, Response (or the last element) is returned.
	Responses []string

	// Error, if set, is returned by Complete instead of a response.
	Error error

	mu       sync.Mutex
	calls    int
	requests []Request
}

// NewMockClient creates a mock client with the given fixed response.
func NewMockClient(response string) *MockClient {
	return &MockClient{Response: response}
}

// NewMockClientWithError creates a mock client that always returns an error.
func NewMockClientWithError(err error) *MockClient {
	return &MockClient{Error: err}
}

// Complete returns the next scripted response, or the configured fixed one.
func (m *MockClient) Complete(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	call := m.calls
	m.calls++

	if m.Error != nil {
		return "", m.Error
	}

	if len(m.Responses) > 0 {
		if call < len(m.Responses) {
			return m.Responses[call], nil
		}
		return m.Responses[len(m.Responses)-1], nil
	}

	return m.Response, nil
}

// Calls reports how many times Complete was invoked.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent request, or a zero Request if none.
func (m *MockClient) LastRequest() Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return Request{}
	}
	return m.requests[len(m.requests)-1]
}

// Requests returns a copy of all recorded requests in call order.
func (m *MockClient) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}
