package unlock

import (
	"sync"
	"testing"
)

func TestDescribeFallback(t *testing.T) {
	r := NewRegistry()

	if got := r.Describe("map:clocktower"); got == "map:clocktower" {
		t.Error("expected a built-in description for map:clocktower")
	}
	if got := r.Describe("clue:unknown"); got != "clue:unknown" {
		t.Errorf("expected fallback to token, got %q", got)
	}
}

func TestRegisterNoOverwrite(t *testing.T) {
	r := NewRegistry()

	if !r.Register("map:sunken_chapel", "Sunken Chapel") {
		t.Fatal("expected first Register to store")
	}
	if r.Register("map:sunken_chapel", "Something Else") {
		t.Error("expected second Register to be a no-op")
	}
	if got := r.Describe("map:sunken_chapel"); got != "Sunken Chapel" {
		t.Errorf("description overwritten: %q", got)
	}

	before := r.Describe("map:clocktower")
	r.Register("map:clocktower", "replaced")
	if r.Describe("map:clocktower") != before {
		t.Error("built-in description overwritten")
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	a.Register("map:only_a", "A")

	if b.Has("map:only_a") {
		t.Error("registries share storage")
	}
}

func TestRegisterConcurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	stored := make(chan bool, 32)

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stored <- r.Register("map:race", "race")
			_ = r.Describe("map:race")
		}()
	}
	wg.Wait()
	close(stored)

	count := 0
	for ok := range stored {
		if ok {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one stored registration, got %d", count)
	}
}

func TestSummarize(t *testing.T) {
	r := NewRegistry()
	lines := r.Summarize([]string{"npc:echo_watcher", "clue:nope"})
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[1] != "clue:nope: clue:nope" {
		t.Errorf("unexpected fallback line: %q", lines[1])
	}
}

func TestLabelAndCategory(t *testing.T) {
	tests := []struct {
		in       string
		label    string
		category string
	}{
		{"map:lantern_shrine", "Lantern Shrine", "map"},
		{"sunken_chapel", "Sunken Chapel", ""},
		{"clue:x", "X", "clue"},
		{"npc:", "", "npc"},
	}

	for _, tt := range tests {
		if got := Label(tt.in); got != tt.label {
			t.Errorf("Label(%q) = %q, want %q", tt.in, got, tt.label)
		}
		if got := Category(tt.in); got != tt.category {
			t.Errorf("Category(%q) = %q, want %q", tt.in, got, tt.category)
		}
	}
}
