package core

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/xonecas/hollow/internal/arc"
	"github.com/xonecas/hollow/internal/session"
	"github.com/xonecas/hollow/internal/unlock"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, <-chan Event) {
	t.Helper()
	bus := NewEventBus(1000)
	ch := bus.Subscribe()
	t.Cleanup(bus.Close)
	return NewEngine(session.NewStore(), unlock.NewRegistry(), bus, opts...), ch
}

// drain returns every event currently buffered on ch.
func drain(ch <-chan Event) []Event {
	var events []Event
	for {
		select {
		case e := <-ch:
			events = append(events, e)
		default:
			return events
		}
	}
}

func findEvent(events []Event, typ EventType) (Event, bool) {
	for _, e := range events {
		if e.Type == typ {
			return e, true
		}
	}
	return Event{}, false
}

func TestAdvanceMissingSession(t *testing.T) {
	e, _ := newTestEngine(t)

	for _, id := range []string{"", "   "} {
		_, err := e.Advance(Request{SessionID: id, Output: `{"unlocks":["clue:burned_names"]}`})
		if !errors.Is(err, ErrMissingSession) {
			t.Errorf("id %q: expected ErrMissingSession, got %v", id, err)
		}
	}
	if e.Store().Len() != 0 {
		t.Errorf("expected no sessions, got %d", e.Store().Len())
	}
}

func TestAdvanceFreshSessionAllLocked(t *testing.T) {
	e, ch := newTestEngine(t)

	res, err := e.Inspect("fresh", nil)
	if err != nil {
		t.Fatalf("Inspect() error: %v", err)
	}
	if len(res.ArcStates) != 4 {
		t.Fatalf("expected 4 arc states, got %d", len(res.ArcStates))
	}
	for _, as := range res.ArcStates {
		if as.State != arc.StateLocked {
			t.Errorf("%s: expected locked, got %s", as.Key, as.State)
		}
	}
	if len(res.Unlocks) != 0 {
		t.Errorf("expected no unlocks, got %v", res.Unlocks)
	}
	if res.Objective != "" {
		t.Errorf("expected no objective, got %s", res.Objective)
	}

	if _, ok := findEvent(drain(ch), EventSessionCreated); !ok {
		t.Error("expected session_created event")
	}
}

func TestAdvanceUnlocksJoinMemory(t *testing.T) {
	e, _ := newTestEngine(t)

	res, err := e.Advance(Request{
		SessionID: "s1",
		Memory:    []string{"map:lantern_shrine", "I asked about the shrine"},
		Output:    `The ghost decides: {"unlocks": ["clue:burned_names", "map:clocktower"]}`,
	})
	if err != nil {
		t.Fatalf("Advance() error: %v", err)
	}

	if len(res.Unlocks) != 2 || res.Unlocks[0] != "clue:burned_names" {
		t.Errorf("unexpected unlocks: %v", res.Unlocks)
	}
	states := res.ArcStates.Map()
	if states["lantern_shrine"] != arc.StateComplete {
		t.Errorf("lantern_shrine: expected complete, got %s", states["lantern_shrine"])
	}
	if states["clocktower"] != arc.StateActive {
		t.Errorf("clocktower: expected active, got %s", states["clocktower"])
	}
	if res.Objective != "journal:elira_last_entry" {
		t.Errorf("expected objective journal:elira_last_entry, got %q", res.Objective)
	}

	// Unlocks are not remembered between requests.
	res, _ = e.Inspect("s1", nil)
	if s, _ := res.ArcStates.Get("lantern_shrine"); s != arc.StateLocked {
		t.Errorf("expected state to depend only on memory, got %s", s)
	}
}

func TestAdvanceMalformedOutput(t *testing.T) {
	e, ch := newTestEngine(t)
	drain(ch)

	res, err := e.Advance(Request{SessionID: "s", Memory: []string{"clue:childs_voice"}, Output: "The ghost sighs."})
	if err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	if len(res.Unlocks) != 0 || res.Proposal != nil {
		t.Errorf("expected empty defaults, got unlocks=%v proposal=%v", res.Unlocks, res.Proposal)
	}
	if s, _ := res.ArcStates.Get("whispering_well"); s != arc.StateActive {
		t.Errorf("expected memory to still count, got %s", s)
	}
	if _, ok := findEvent(drain(ch), EventOutputMalformed); !ok {
		t.Error("expected output_malformed event")
	}
}

func TestAdvanceUnlocksNotAList(t *testing.T) {
	e, _ := newTestEngine(t)

	res, err := e.Advance(Request{SessionID: "s", Output: `{"unlocks": "clue:burned_names"}`})
	if err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	if res.Unlocks == nil || len(res.Unlocks) != 0 {
		t.Errorf("expected empty non-nil unlocks, got %#v", res.Unlocks)
	}
}

func TestAdvanceNewArc(t *testing.T) {
	e, ch := newTestEngine(t)

	res, err := e.Advance(Request{
		SessionID: "s",
		Output:    `{"unlocks": ["map:sunken_chapel"], "new_arc": {"key": "sunken_chapel", "label": "Sunken Chapel", "required": ["map:sunken_chapel"]}}`,
	})
	if err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	if res.Proposal == nil || !res.Proposal.Accepted {
		t.Fatalf("expected accepted proposal, got %+v", res.Proposal)
	}
	if len(res.ArcStates) != 5 {
		t.Fatalf("expected 5 arc states, got %d", len(res.ArcStates))
	}
	last := res.ArcStates[4]
	if last.Key != "sunken_chapel" || last.State != arc.StateComplete {
		t.Errorf("expected sunken_chapel complete last, got %+v", last)
	}
	if !res.Arcs.Has("sunken_chapel") {
		t.Error("result catalog missing new arc")
	}
	if got := e.Registry().Describe("map:sunken_chapel"); got != "Sunken Chapel" {
		t.Errorf("expected registered description, got %q", got)
	}
	if _, ok := findEvent(drain(ch), EventProposalAccepted); !ok {
		t.Error("expected proposal_accepted event")
	}

	// The new arc persists for the session.
	snap, _ := e.Snapshot("s")
	if !snap.Arcs.Has("sunken_chapel") || !snap.KnownUnlocks.Contains("map:sunken_chapel") {
		t.Error("session did not keep the new arc")
	}
}

func TestAdvanceDuplicateProposalRejected(t *testing.T) {
	// Raise the cap so the duplicate check is reached after the first insert.
	e, ch := newTestEngine(t, WithMaxArcs(10))
	out := `{"new_arc": {"key": "old_mill", "required": ["map:old_mill"]}}`

	if res, _ := e.Advance(Request{SessionID: "s", Output: out}); !res.Proposal.Accepted {
		t.Fatalf("first proposal rejected: %s", res.Proposal.Reason)
	}
	drain(ch)

	res, _ := e.Advance(Request{SessionID: "s", Output: `{"new_arc": {"key": "old_mill", "required": ["map:other"]}}`})
	if res.Proposal.Accepted || res.Proposal.Reason != RejectDuplicateKey {
		t.Errorf("expected duplicate_key, got %+v", res.Proposal)
	}
	def, _ := res.Arcs.Get("old_mill")
	if def.Required[0] != "map:old_mill" {
		t.Errorf("first arc was replaced: %v", def.Required)
	}

	ev, ok := findEvent(drain(ch), EventProposalRejected)
	if !ok {
		t.Fatal("expected proposal_rejected event")
	}
	if data := ev.Data.(ProposalData); data.Decision.Reason != RejectDuplicateKey {
		t.Errorf("event carried reason %s", data.Decision.Reason)
	}
}

func TestAdvanceDuplicateAtCap(t *testing.T) {
	e, _ := newTestEngine(t)
	out := `{"new_arc": {"key": "old_mill", "required": ["map:old_mill"]}}`

	_, _ = e.Advance(Request{SessionID: "s", Output: out})
	res, _ := e.Advance(Request{SessionID: "s", Output: out})
	if res.Proposal.Accepted {
		t.Fatal("expected second proposal to be rejected")
	}
	if res.Arcs.Len() != 5 {
		t.Errorf("expected 5 arcs, got %d", res.Arcs.Len())
	}
}

func TestAdvanceCapAcrossRequests(t *testing.T) {
	e, _ := newTestEngine(t)

	for i, key := range []string{"fifth", "sixth", "seventh"} {
		out := fmt.Sprintf(`{"new_arc": {"key": %q, "required": ["map:%s"]}}`, key, key)
		res, err := e.Advance(Request{SessionID: "s", Output: out})
		if err != nil {
			t.Fatalf("Advance() error: %v", err)
		}
		if want := i == 0; res.Proposal.Accepted != want {
			t.Errorf("%s: accepted=%v, want %v", key, res.Proposal.Accepted, want)
		}
		if res.Arcs.Len() != 5 {
			t.Errorf("%s: expected 5 arcs, got %d", key, res.Arcs.Len())
		}
	}
}

func TestAdvanceSessionIsolation(t *testing.T) {
	e, _ := newTestEngine(t)

	_, _ = e.Advance(Request{SessionID: "a", Output: `{"new_arc": {"key": "only_a", "required": ["map:only_a"]}}`})

	res, _ := e.Inspect("b", nil)
	if res.Arcs.Has("only_a") || len(res.ArcStates) != 4 {
		t.Error("arc leaked into another session")
	}
	if arc.Bootstrap().Has("only_a") {
		t.Error("arc leaked into the starter catalog")
	}
}

func TestAdvanceConcurrentProposals(t *testing.T) {
	e, _ := newTestEngine(t)

	var wg sync.WaitGroup
	accepted := make(chan string, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("arc_%d", i)
			out := fmt.Sprintf(`{"new_arc": {"key": %q, "required": ["map:%s"]}}`, key, key)
			res, err := e.Advance(Request{SessionID: "shared", Output: out})
			if err != nil {
				t.Errorf("Advance() error: %v", err)
				return
			}
			if res.Proposal.Accepted {
				accepted <- key
			}
		}(i)
	}
	wg.Wait()
	close(accepted)

	var keys []string
	for k := range accepted {
		keys = append(keys, k)
	}
	if len(keys) != 1 {
		t.Fatalf("expected exactly one accepted proposal, got %v", keys)
	}

	snap, _ := e.Snapshot("shared")
	if snap.Arcs.Len() != 5 {
		t.Errorf("expected 5 arcs, got %d", snap.Arcs.Len())
	}
	if !snap.Arcs.Has(keys[0]) {
		t.Errorf("accepted arc %s missing from catalog", keys[0])
	}
}

func TestAdvanceConcurrentSameKey(t *testing.T) {
	e, _ := newTestEngine(t, WithMaxArcs(10))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.Advance(Request{SessionID: "shared", Output: `{"new_arc": {"key": "same", "required": ["map:same"]}}`})
		}()
	}
	wg.Wait()

	snap, _ := e.Snapshot("shared")
	if snap.Arcs.Len() != 5 {
		t.Errorf("expected 5 arcs, got %d", snap.Arcs.Len())
	}
}

func TestAdvanceStrictUnlocks(t *testing.T) {
	e, _ := newTestEngine(t, WithStrictUnlocks(true))

	res, err := e.Advance(Request{
		SessionID: "s",
		Output:    `{"unlocks": ["clue:burned_names", "clue:invented", "map:new_place"], "new_arc": {"key": "new_place", "required": ["map:new_place"]}}`,
	})
	if err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	want := []string{"clue:burned_names", "map:new_place"}
	if len(res.Unlocks) != len(want) {
		t.Fatalf("expected %v, got %v", want, res.Unlocks)
	}
	for i := range want {
		if res.Unlocks[i] != want[i] {
			t.Errorf("unlocks[%d] = %s, want %s", i, res.Unlocks[i], want[i])
		}
	}
}

func TestAdvanceDedupesUnlocks(t *testing.T) {
	e, _ := newTestEngine(t)

	res, _ := e.Advance(Request{SessionID: "s", Output: `{"unlocks": ["clue:a", " clue:a ", "", "clue:b"]}`})
	if len(res.Unlocks) != 2 || res.Unlocks[0] != "clue:a" || res.Unlocks[1] != "clue:b" {
		t.Errorf("unexpected unlocks: %v", res.Unlocks)
	}
}
