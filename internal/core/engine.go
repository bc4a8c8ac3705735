package core

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/hollow/internal/arc"
	"github.com/xonecas/hollow/internal/constants"
	"github.com/xonecas/hollow/internal/sanitize"
	"github.com/xonecas/hollow/internal/session"
	"github.com/xonecas/hollow/internal/unlock"
)

// ErrMissingSession is returned when a request carries no session id.
var ErrMissingSession = errors.New("missing session id")

// Request is one progression step for a session.
type Request struct {
	SessionID string
	// Memory is everything the player currently holds. Clients resend it in full.
	Memory []string
	// Output is the director's raw, untrusted text.
	Output string
}

// Result is the outcome of a progression step.
type Result struct {
	Unlocks   []string
	ArcStates arc.States
	// Arcs is a copy of the session catalog after this step.
	Arcs *arc.Catalog
	// Proposal is set when the output carried a new_arc.
	Proposal *Decision
	// Objective is the next required token to look for, if any arc is in progress.
	Objective string
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxArcs overrides the per-session arc cap.
func WithMaxArcs(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxArcs = n
		}
	}
}

// WithStrictUnlocks drops unlocks the session does not already know about.
func WithStrictUnlocks(strict bool) Option {
	return func(e *Engine) {
		e.strictUnlocks = strict
	}
}

// Engine applies director output to sessions.
type Engine struct {
	store    *session.Store
	registry *unlock.Registry
	bus      *EventBus

	maxArcs       int
	strictUnlocks bool
}

// NewEngine creates an engine over store and registry. bus may be nil.
func NewEngine(store *session.Store, registry *unlock.Registry, bus *EventBus, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		registry: registry,
		bus:      bus,
		maxArcs:  constants.MaxArcsPerSession,
	}
	for _, opt := range opts {
		opt(e)
	}

	store.OnCreate(func(id string) {
		e.publish(Event{Type: EventSessionCreated, SessionID: id})
	})
	return e
}

// Registry returns the unlock registry the engine writes to.
func (e *Engine) Registry() *unlock.Registry {
	return e.registry
}

// Store returns the session store.
func (e *Engine) Store() *session.Store {
	return e.store
}

// Advance parses the director output, applies any new arc proposal to the
// session, and evaluates every arc against memory plus this turn's unlocks.
// The only error is ErrMissingSession; malformed output and rejected
// proposals degrade to an empty result for that part.
func (e *Engine) Advance(req Request) (*Result, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, ErrMissingSession
	}

	sess := e.store.Get(req.SessionID)

	var (
		obj       map[string]any
		malformed bool
	)
	if strings.TrimSpace(req.Output) == "" {
		obj = map[string]any{}
	} else {
		var ok bool
		obj, ok = sanitize.ParseObject(req.Output)
		malformed = !ok
	}

	unlocks := dedupe(sanitize.StringSlice(obj["unlocks"]))
	rawArc, hasArc := obj["new_arc"]
	hasArc = hasArc && rawArc != nil

	result := &Result{}
	var dropped []string

	sess.Do(func(st *session.State) {
		if hasArc {
			d := extend(st, e.registry, rawArc, e.maxArcs)
			result.Proposal = &d
		}

		if e.strictUnlocks {
			unlocks, dropped = partition(unlocks, st.KnownUnlocks)
		}

		memory := arc.NewTokenSet(req.Memory, unlocks)
		result.ArcStates = arc.ComputeStates(memory, st.Arcs)
		result.Arcs = st.Arcs.Clone()
		if _, tok, ok := arc.Objective(memory, st.Arcs, result.ArcStates); ok {
			result.Objective = tok
		}
	})
	result.Unlocks = unlocks

	e.report(req, result, malformed, dropped)
	return result, nil
}

// Snapshot returns a copy of the session state, creating the session if needed.
func (e *Engine) Snapshot(sessionID string) (*session.State, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrMissingSession
	}
	return e.store.Get(sessionID).Snapshot(), nil
}

// Inspect evaluates a session's arcs without any director output.
func (e *Engine) Inspect(sessionID string, memory []string) (*Result, error) {
	return e.Advance(Request{SessionID: sessionID, Memory: memory})
}

func (e *Engine) report(req Request, result *Result, malformed bool, dropped []string) {
	now := time.Now()

	if malformed {
		log.Warn().Str("session", req.SessionID).Int("length", len(req.Output)).Msg("Director output had no JSON object")
		e.publish(Event{Type: EventOutputMalformed, SessionID: req.SessionID, Data: MalformedData{Raw: req.Output}, Timestamp: now})
	}

	if len(dropped) > 0 {
		log.Debug().Str("session", req.SessionID).Strs("dropped", dropped).Msg("Dropped unknown unlocks")
	}

	if len(result.Unlocks) > 0 {
		log.Debug().Str("session", req.SessionID).Strs("unlocks", result.Unlocks).Msg("Unlocks accepted")
		e.publish(Event{Type: EventUnlocksAccepted, SessionID: req.SessionID, Data: UnlocksData{Unlocks: result.Unlocks}, Timestamp: now})
	}

	if d := result.Proposal; d != nil {
		if d.Accepted {
			log.Info().Str("session", req.SessionID).Str("arc", d.Key).Strs("required", d.Required).Msg("Arc added")
			e.publish(Event{Type: EventProposalAccepted, SessionID: req.SessionID, Data: ProposalData{Decision: *d}, Timestamp: now})
		} else {
			log.Info().Str("session", req.SessionID).Str("arc", d.Key).Str("reason", string(d.Reason)).Msg("Arc proposal rejected")
			e.publish(Event{Type: EventProposalRejected, SessionID: req.SessionID, Data: ProposalData{Decision: *d}, Timestamp: now})
		}
	}
}

func (e *Engine) publish(event Event) {
	if e.bus == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	e.bus.Publish(event)
}

// dedupe drops empty and repeated tokens, keeping first occurrences in order.
func dedupe(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

func partition(tokens []string, known arc.TokenSet) (kept, dropped []string) {
	kept = make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if known.Contains(tok) {
			kept = append(kept, tok)
		} else {
			dropped = append(dropped, tok)
		}
	}
	return kept, dropped
}
