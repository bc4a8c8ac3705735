// Package unlock maps unlock tokens to the descriptions shown to the
// storyteller. A single Registry is shared by every session in the process.
package unlock

import (
	"sort"
	"strings"
	"sync"
)

// Token categories seen in the story.
const (
	CategoryMap     = "map"
	CategoryClue    = "clue"
	CategoryJournal = "journal"
	CategoryNPC     = "npc"
)

var builtinDescriptions = map[string]string{
	"map:lantern_shrine":       "The Lantern Shrine, where the village lit candles for the lost",
	"clue:burned_names":        "A list of names scorched into the shrine's wooden beams",
	"journal:elira_regret":     "A torn journal page in which Elira confesses a regret",
	"map:whispering_well":      "The Whispering Well at the edge of the Hollow",
	"clue:childs_voice":        "A child's voice echoing up from the well",
	"npc:echo_watcher":         "The Echo Watcher, a figure who listens at the well",
	"map:clocktower":           "The Clocktower whose hands no longer move",
	"journal:elira_last_entry": "Elira's final journal entry",
	"clue:stopped_at_midnight": "Every clock in the Hollow stopped at midnight",
	"npc:elira_fragment":       "A fragment of Elira that still lingers",
	"journal:coat_markings":    "Notes describing strange markings on Elira's coat",
	"clue:memory_token":        "A small keepsake that holds a memory",
}

// Registry maps unlock tokens to descriptions. It is safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	descriptions map[string]string
}

// NewRegistry creates a registry seeded with the built-in descriptions.
func NewRegistry() *Registry {
	r := &Registry{descriptions: make(map[string]string, len(builtinDescriptions))}
	for tok, desc := range builtinDescriptions {
		r.descriptions[tok] = desc
	}
	return r
}

// Describe returns the description for token, or the token itself when none is known.
func (r *Registry) Describe(token string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if desc, ok := r.descriptions[token]; ok {
		return desc
	}
	return token
}

// Has reports whether token has a description.
func (r *Registry) Has(token string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.descriptions[token]
	return ok
}

// Register stores a description for token unless one already exists.
// It reports whether the description was stored.
func (r *Registry) Register(token, description string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.descriptions[token]; ok {
		return false
	}
	r.descriptions[token] = description
	return true
}

// Tokens returns every described token, sorted.
func (r *Registry) Tokens() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.descriptions))
	for tok := range r.descriptions {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// Summarize renders "token: description" lines for prompt context.
func (r *Registry) Summarize(tokens []string) []string {
	lines := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		lines = append(lines, tok+": "+r.Describe(tok))
	}
	return lines
}

// Category returns the part of a token before the first colon.
func Category(token string) string {
	cat, _, ok := strings.Cut(token, ":")
	if !ok {
		return ""
	}
	return cat
}

// Label turns a token or key into display text:
// "map:lantern_shrine" and "lantern_shrine" both become "Lantern Shrine".
func Label(token string) string {
	if _, rest, ok := strings.Cut(token, ":"); ok {
		token = rest
	}
	words := strings.Fields(strings.ReplaceAll(token, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
