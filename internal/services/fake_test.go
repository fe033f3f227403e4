package services

import (
	"context"
	"sync"
)

// fakeCompleter replays canned replies in order and records every request.
type fakeCompleter struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests []CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req CompletionRequest) (*Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.replies) == 0 {
		return &Completion{Text: ""}, nil
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return &Completion{Text: reply, Model: "fake-model", TotalTokens: 10}, nil
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}
