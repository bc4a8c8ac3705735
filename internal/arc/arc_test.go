package arc

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestEvaluate(t *testing.T) {
	required := NewTokenSet([]string{"a", "b"})

	tests := []struct {
		name     string
		memory   []string
		required TokenSet
		want     State
	}{
		{"empty memory", nil, required, StateLocked},
		{"unrelated memory", []string{"x", "y"}, required, StateLocked},
		{"partial", []string{"a"}, required, StateActive},
		{"partial with noise", []string{"b", "z"}, required, StateActive},
		{"all required", []string{"a", "b"}, required, StateComplete},
		{"superset", []string{"a", "b", "c"}, required, StateComplete},
		{"empty required", []string{"a", "b"}, NewTokenSet(), StateLocked},
		{"empty required empty memory", nil, NewTokenSet(), StateLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(NewTokenSet(tt.memory), tt.required, NewTokenSet())
			if got != tt.want {
				t.Errorf("Evaluate(%v) = %s, want %s", tt.memory, got, tt.want)
			}
		})
	}
}

func TestEvaluateIgnoresOptional(t *testing.T) {
	required := NewTokenSet([]string{"a", "b"})
	optional := NewTokenSet([]string{"o"})

	if got := Evaluate(NewTokenSet([]string{"o"}), required, optional); got != StateLocked {
		t.Errorf("optional-only memory: got %s, want locked", got)
	}
	if got := Evaluate(NewTokenSet([]string{"a", "o"}), required, optional); got != StateActive {
		t.Errorf("partial plus optional: got %s, want active", got)
	}
}

func TestEvaluateNeverDiscovered(t *testing.T) {
	tokens := []string{"a", "b", "c"}
	// Every subset of {a,b,c} as memory against every non-empty subset as required.
	for mem := 0; mem < 8; mem++ {
		for req := 0; req < 8; req++ {
			memory := NewTokenSet()
			required := NewTokenSet()
			for i, tok := range tokens {
				if mem&(1<<i) != 0 {
					memory.Add(tok)
				}
				if req&(1<<i) != 0 {
					required.Add(tok)
				}
			}
			got := Evaluate(memory, required, nil)
			if got == StateDiscovered {
				t.Fatalf("Evaluate(%v, %v) produced discovered", memory, required)
			}
			if got != Evaluate(memory, required, nil) {
				t.Fatalf("Evaluate is not deterministic for %v, %v", memory, required)
			}
		}
	}
}

func TestBootstrap(t *testing.T) {
	c := Bootstrap()

	want := []string{"lantern_shrine", "whispering_well", "clocktower", "elira_thread"}
	keys := c.Keys()
	if len(keys) != len(want) {
		t.Fatalf("expected %d arcs, got %d", len(want), len(keys))
	}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("keys[%d] = %s, want %s", i, keys[i], k)
		}
		def, _ := c.Get(k)
		if len(def.Required) != 2 {
			t.Errorf("%s: expected 2 required tokens, got %d", k, len(def.Required))
		}
		if len(def.Optional) > 1 {
			t.Errorf("%s: expected at most 1 optional token, got %d", k, len(def.Optional))
		}
		if !IsBuiltin(k) {
			t.Errorf("IsBuiltin(%s) = false", k)
		}
	}
}

func TestBootstrapIsolation(t *testing.T) {
	a := Bootstrap()
	b := Bootstrap()

	if err := a.Add("extra", Definition{Required: []string{"map:extra"}}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	a.defs["lantern_shrine"].Required[0] = "mutated"

	if b.Len() != 4 {
		t.Errorf("second catalog changed size: %d", b.Len())
	}
	if def, _ := b.Get("lantern_shrine"); def.Required[0] != "map:lantern_shrine" {
		t.Errorf("second catalog shares storage: %v", def.Required)
	}
	if def, _ := Bootstrap().Get("lantern_shrine"); def.Required[0] != "map:lantern_shrine" {
		t.Errorf("template was mutated: %v", def.Required)
	}
}

func TestCatalogAddDuplicate(t *testing.T) {
	c := Bootstrap()
	err := c.Add("clocktower", Definition{Required: []string{"map:x"}})
	if !errors.Is(err, ErrDuplicateArc) {
		t.Fatalf("expected ErrDuplicateArc, got %v", err)
	}
	if c.Len() != 4 {
		t.Errorf("expected 4 arcs, got %d", c.Len())
	}
}

func TestCatalogGetReturnsCopy(t *testing.T) {
	c := Bootstrap()
	def, _ := c.Get("clocktower")
	def.Required[0] = "changed"

	again, _ := c.Get("clocktower")
	if again.Required[0] != "map:clocktower" {
		t.Errorf("Get leaked internal slice: %v", again.Required)
	}
}

func TestComputeStatesOrder(t *testing.T) {
	c := Bootstrap()
	if err := c.Add("sunken_chapel", Definition{Required: []string{"map:sunken_chapel"}}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	states := ComputeStates(NewTokenSet([]string{"map:clocktower", "map:sunken_chapel"}), c)
	data, err := json.Marshal(states)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	want := `{"lantern_shrine":"locked","whispering_well":"locked","clocktower":"active","elira_thread":"locked","sunken_chapel":"complete"}`
	if string(data) != want {
		t.Errorf("got %s\nwant %s", data, want)
	}
}

func TestComputeStatesFreshCatalogAllLocked(t *testing.T) {
	states := ComputeStates(NewTokenSet(), Bootstrap())
	if len(states) != 4 {
		t.Fatalf("expected 4 states, got %d", len(states))
	}
	for _, as := range states {
		if as.State != StateLocked {
			t.Errorf("%s: expected locked, got %s", as.Key, as.State)
		}
	}
}

func TestCatalogMarshalJSON(t *testing.T) {
	c := NewCatalog()
	_ = c.Add("b", Definition{Required: []string{"map:b"}, Optional: []string{}})
	_ = c.Add("a", Definition{Required: []string{"clue:a"}, Optional: []string{"npc:a"}})

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"b":{"required":["map:b"],"optional":[]},"a":{"required":["clue:a"],"optional":["npc:a"]}}`
	if string(data) != want {
		t.Errorf("got %s\nwant %s", data, want)
	}
}

func TestObjective(t *testing.T) {
	c := Bootstrap()
	memory := NewTokenSet([]string{"clue:childs_voice"})
	states := ComputeStates(memory, c)

	key, tok, ok := Objective(memory, c, states)
	if !ok {
		t.Fatal("expected an objective")
	}
	if key != "whispering_well" || tok != "map:whispering_well" {
		t.Errorf("got %s/%s, want whispering_well/map:whispering_well", key, tok)
	}

	if _, _, ok := Objective(NewTokenSet(), c, ComputeStates(NewTokenSet(), c)); ok {
		t.Error("expected no objective when everything is locked")
	}
}
