package synth

import (
	"context"
	"sync"
)

// ConvertOutcome scripts one ConvertResponseToList result for MockSource.
type ConvertOutcome struct {
	Topics []string
	Err    error
}

// MockSource is a scripted TopicSource for testing the retry helpers without
// touching a model. Generation returns a fixed response collection; conversion
// replays a script of outcomes, repeating the last entry once exhausted.
type MockSource struct {
	// GenerateResponses is the response collection returned by both
	// generation operations.
	GenerateResponses []string

	// GenerateErr, if set, is returned by the generation operations.
	GenerateErr error

	// ConvertScript is consumed one entry per conversion call.
	ConvertScript []ConvertOutcome

	mu             sync.Mutex
	generateCalls  int
	convertCalls   int
	lastMacroReq   MacroTopicsRequest
	lastSubReq     SubtopicsRequest
	lastConvertReq ConversionRequest
}

func (m *MockSource) GenerateMacroTopics(ctx context.Context, req MacroTopicsRequest) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateCalls++
	m.lastMacroReq = req
	if m.GenerateErr != nil {
		return nil, m.GenerateErr
	}
	return m.GenerateResponses, nil
}

func (m *MockSource) GenerateSubtopics(ctx context.Context, req SubtopicsRequest) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generateCalls++
	m.lastSubReq = req
	if m.GenerateErr != nil {
		return nil, m.GenerateErr
	}
	return m.GenerateResponses, nil
}

func (m *MockSource) ConvertResponseToList(ctx context.Context, req ConversionRequest) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastConvertReq = req

	call := m.convertCalls
	m.convertCalls++

	if len(m.ConvertScript) == 0 {
		return nil, conversionErrorf("mock conversion script is empty")
	}
	if call >= len(m.ConvertScript) {
		call = len(m.ConvertScript) - 1
	}
	outcome := m.ConvertScript[call]
	return outcome.Topics, outcome.Err
}

// GenerateCalls reports how many generation calls were made.
func (m *MockSource) GenerateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateCalls
}

// ConvertCalls reports how many conversion calls were made.
func (m *MockSource) ConvertCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.convertCalls
}

// LastMacroRequest returns the most recent macro-topic generation request.
func (m *MockSource) LastMacroRequest() MacroTopicsRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastMacroReq
}

// LastSubtopicsRequest returns the most recent subtopic generation request.
func (m *MockSource) LastSubtopicsRequest() SubtopicsRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSubReq
}

// LastConversionRequest returns the most recent conversion request.
func (m *MockSource) LastConversionRequest() ConversionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastConvertReq
}
