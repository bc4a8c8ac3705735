package arc

import (
	"bytes"
	"encoding/json"
)

// State is the lifecycle label of an arc.
type State string

const (
	StateLocked State = "locked"
	// StateDiscovered is part of the external contract but Evaluate never yields it.
	StateDiscovered State = "discovered"
	StateActive     State = "active"
	StateComplete   State = "complete"
)

// TokenSet is a set of unlock tokens.
type TokenSet map[string]struct{}

// NewTokenSet builds a set from any number of token lists.
func NewTokenSet(lists ...[]string) TokenSet {
	s := make(TokenSet)
	for _, list := range lists {
		for _, tok := range list {
			s[tok] = struct{}{}
		}
	}
	return s
}

// Add inserts tokens into the set.
func (s TokenSet) Add(tokens ...string) {
	for _, tok := range tokens {
		s[tok] = struct{}{}
	}
}

// Contains reports whether tok is in the set.
func (s TokenSet) Contains(tok string) bool {
	_, ok := s[tok]
	return ok
}

// Union returns a new set with the members of s and other.
func (s TokenSet) Union(other TokenSet) TokenSet {
	out := make(TokenSet, len(s)+len(other))
	for tok := range s {
		out[tok] = struct{}{}
	}
	for tok := range other {
		out[tok] = struct{}{}
	}
	return out
}

// Evaluate derives the state of an arc from what the player holds.
// An empty required set is always locked. Optional tokens never affect the result.
func Evaluate(memory, required, optional TokenSet) State {
	held := 0
	for tok := range required {
		if memory.Contains(tok) {
			held++
		}
	}

	switch {
	case held == 0:
		return StateLocked
	case held == len(required):
		return StateComplete
	case held > 0:
		return StateActive
	}
	return StateDiscovered
}

// ArcState pairs an arc key with its state.
type ArcState struct {
	Key   string
	State State
}

// States is an ordered list of arc states. It encodes as a JSON object
// keyed by arc in catalog order.
type States []ArcState

// Get returns the state for key.
func (s States) Get(key string) (State, bool) {
	for _, as := range s {
		if as.Key == key {
			return as.State, true
		}
	}
	return "", false
}

// Map returns the states as a plain map.
func (s States) Map() map[string]State {
	out := make(map[string]State, len(s))
	for _, as := range s {
		out[as.Key] = as.State
	}
	return out
}

// MarshalJSON encodes the states as an ordered JSON object.
func (s States) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, as := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(as.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(string(as.State))
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ComputeStates evaluates every arc in c independently, in catalog order.
func ComputeStates(memory TokenSet, c *Catalog) States {
	out := make(States, 0, c.Len())
	for _, key := range c.keys {
		def := c.defs[key]
		out = append(out, ArcState{
			Key:   key,
			State: Evaluate(memory, NewTokenSet(def.Required), NewTokenSet(def.Optional)),
		})
	}
	return out
}

// Objective returns the first required token the player is still missing
// from the first arc that is in progress. ok is false when nothing is in progress.
func Objective(memory TokenSet, c *Catalog, states States) (arcKey, token string, ok bool) {
	for _, as := range states {
		if as.State != StateActive && as.State != StateDiscovered {
			continue
		}
		def, found := c.defs[as.Key]
		if !found {
			continue
		}
		for _, tok := range def.Required {
			if !memory.Contains(tok) {
				return as.Key, tok, true
			}
		}
	}
	return "", "", false
}
