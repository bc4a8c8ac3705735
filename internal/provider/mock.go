package provider

import (
	"context"
	"sync"
)

// MockProvider is a test provider that returns predefined responses.
// Scripted responses are consumed in order; once exhausted the default
// response is returned.
type MockProvider struct {
	name     string
	response string
	chatErr  error

	mu       sync.Mutex
	script   []string
	calls    [][]Message
	jsonUsed []bool
}

// NewMock creates a new mock provider.
func NewMock(name, response string) *MockProvider {
	return &MockProvider{
		name:     name,
		response: response,
	}
}

// WithChatError sets an error to return from Chat.
func (p *MockProvider) WithChatError(err error) *MockProvider {
	p.chatErr = err
	return p
}

// WithScript queues responses returned by successive Chat calls.
func (p *MockProvider) WithScript(responses ...string) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.script = append(p.script, responses...)
	return p
}

// Name returns the provider identifier.
func (p *MockProvider) Name() string {
	return p.name
}

// Chat returns the next scripted response, the default response, or the configured error.
func (p *MockProvider) Chat(ctx context.Context, messages []Message, opts ...CallOption) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, append([]Message{}, messages...))
	p.jsonUsed = append(p.jsonUsed, applyCallOptions(opts).JSON)

	if p.chatErr != nil {
		return "", p.chatErr
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(p.script) > 0 {
		next := p.script[0]
		p.script = p.script[1:]
		return next, nil
	}
	return p.response, nil
}

// Calls returns the messages of every Chat call so far.
func (p *MockProvider) Calls() [][]Message {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([][]Message{}, p.calls...)
}

// JSONRequested reports whether call i asked for a JSON response.
func (p *MockProvider) JSONRequested(i int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i < 0 || i >= len(p.jsonUsed) {
		return false
	}
	return p.jsonUsed[i]
}
