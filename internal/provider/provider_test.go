package provider

import (
	"context"
	"errors"
	"testing"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	// Register mock providers
	mock1 := NewMock("provider1", "response1")
	mock2 := NewMock("provider2", "response2")

	reg.Register(mock1)
	reg.Register(mock2)

	// Get existing provider
	p, err := reg.Get("provider1")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if p.Name() != "provider1" {
		t.Errorf("expected name=provider1, got %s", p.Name())
	}

	// Get non-existent provider
	_, err = reg.Get("nonexistent")
	if !errors.Is(err, ErrProviderNotFound) {
		t.Errorf("expected ErrProviderNotFound, got %v", err)
	}

	names := reg.List()
	if len(names) != 2 || names[0] != "provider1" || names[1] != "provider2" {
		t.Errorf("expected sorted [provider1 provider2], got %v", names)
	}
}

func TestMockProviderChat(t *testing.T) {
	mock := NewMock("test", "Hello, World!")

	ctx := context.Background()
	messages := []Message{{Role: "user", Content: "Hi"}}

	response, err := mock.Chat(ctx, messages)
	if err != nil {
		t.Fatalf("Chat() error: %v", err)
	}
	if response != "Hello, World!" {
		t.Errorf("expected 'Hello, World!', got %s", response)
	}
	if len(mock.Calls()) != 1 || mock.Calls()[0][0].Content != "Hi" {
		t.Errorf("expected recorded call, got %v", mock.Calls())
	}
}

func TestMockProviderChatError(t *testing.T) {
	expectedErr := errors.New("chat error")
	mock := NewMock("test", "").WithChatError(expectedErr)

	_, err := mock.Chat(context.Background(), []Message{{Role: "user", Content: "Hi"}})
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected %v, got %v", expectedErr, err)
	}
}

func TestMockProviderScript(t *testing.T) {
	mock := NewMock("test", "default").WithScript("first", "second")
	ctx := context.Background()

	for i, want := range []string{"first", "second", "default"} {
		got, err := mock.Chat(ctx, nil, WithJSONResponse())
		if err != nil {
			t.Fatalf("Chat() error: %v", err)
		}
		if got != want {
			t.Errorf("call %d: expected %s, got %s", i, want, got)
		}
	}
	if !mock.JSONRequested(0) {
		t.Error("expected JSON option to be recorded")
	}
	if mock.JSONRequested(10) {
		t.Error("out of range call should report false")
	}
}

func TestMockProviderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewMock("test", "x").Chat(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
