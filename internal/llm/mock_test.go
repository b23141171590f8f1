package llm

import (
	"context"
	"errors"
	"testing"
)

func TestMockClient_FixedResponse(t *testing.T) {
	mock := NewMockClient("hello")

	got, err := mock.Complete(context.Background(), Request{Model: "m", Prompt: "p"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello" {
		t.Errorf("response = %q, want hello", got)
	}

	if mock.Calls() != 1 {
		t.Errorf("calls = %d, want 1", mock.Calls())
	}
	if mock.LastRequest().Prompt != "p" {
		t.Errorf("last prompt = %q, want p", mock.LastRequest().Prompt)
	}
}

func TestMockClient_ScriptedResponses(t *testing.T) {
	mock := &MockClient{Responses: []string{"one", "two"}}

	ctx := context.Background()
	for i, want := range []string{"one", "two", "two", "two"} {
		got, err := mock.Complete(ctx, Request{Model: "m", Prompt: "p"})
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if got != want {
			t.Errorf("call %d: response = %q, want %q", i, got, want)
		}
	}

	if mock.Calls() != 4 {
		t.Errorf("calls = %d, want 4", mock.Calls())
	}
}

func TestMockClient_Error(t *testing.T) {
	wantErr := errors.New("scripted failure")
	mock := NewMockClientWithError(wantErr)

	_, err := mock.Complete(context.Background(), Request{Model: "m", Prompt: "p"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected scripted error, got %v", err)
	}

	// Errors still count as calls and record the request.
	if mock.Calls() != 1 {
		t.Errorf("calls = %d, want 1", mock.Calls())
	}
}

func TestMockClient_RecordsRequestsInOrder(t *testing.T) {
	mock := NewMockClient("x")

	ctx := context.Background()
	_, _ = mock.Complete(ctx, Request{Model: "a", Prompt: "first"})
	_, _ = mock.Complete(ctx, Request{Model: "b", Prompt: "second"})

	reqs := mock.Requests()
	if len(reqs) != 2 {
		t.Fatalf("recorded requests = %d, want 2", len(reqs))
	}
	if reqs[0].Prompt != "first" || reqs[1].Prompt != "second" {
		t.Errorf("requests out of order: %+v", reqs)
	}
}
