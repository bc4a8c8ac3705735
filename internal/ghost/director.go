// Package ghost runs one conversational turn with a ghost: it asks the model
// for the ghost's reply and mood, asks the game director what the turn
// reveals, and feeds that untrusted answer to the progression engine.
package ghost

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/hollow/internal/arc"
	"github.com/xonecas/hollow/internal/constants"
	"github.com/xonecas/hollow/internal/core"
	"github.com/xonecas/hollow/internal/provider"
	"github.com/xonecas/hollow/internal/sanitize"
	"github.com/xonecas/hollow/internal/unlock"
)

// DefaultGhost is used when a request does not name a ghost.
const DefaultGhost = "Lantern Girl"

// TalkRequest is one thing the player says to a ghost.
type TalkRequest struct {
	SessionID       string   `json:"session_id"`
	Ghost           string   `json:"ghost"`
	UserInput       string   `json:"user_input"`
	Memory          []string `json:"memory"`
	DialogueHistory []string `json:"dialogue_history"`
}

// TalkResponse is what the client renders after a turn.
type TalkResponse struct {
	Reply     string       `json:"reply"`
	Mood      string       `json:"mood"`
	Unlocks   []string     `json:"unlocks"`
	ArcStates arc.States   `json:"arc_states"`
	StoryArcs *arc.Catalog `json:"story_arcs"`
	// Objective is display text such as "Find Burned Names"; empty when nothing is in progress.
	Objective string `json:"objective,omitempty"`
}

// Director wires the model to the progression engine.
type Director struct {
	provider provider.Provider
	engine   *core.Engine
}

// NewDirector creates a director.
func NewDirector(p provider.Provider, engine *core.Engine) *Director {
	return &Director{provider: p, engine: engine}
}

// Talk runs a full turn. Model failures are returned as errors; a reply the
// director cannot parse only means nothing is unlocked this turn.
func (d *Director) Talk(ctx context.Context, req TalkRequest) (*TalkResponse, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, core.ErrMissingSession
	}
	req = normalize(req)

	if strings.EqualFold(strings.TrimSpace(req.UserInput), constants.InitInput) {
		res, err := d.engine.Inspect(req.SessionID, req.Memory)
		if err != nil {
			return nil, err
		}
		return d.response(constants.FallbackReply, constants.DefaultMood, res), nil
	}

	reply, err := d.reply(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("ghost reply: %w", err)
	}

	mood, err := d.mood(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("ghost mood: %w", err)
	}

	output, err := d.direct(ctx, req, reply)
	if err != nil {
		return nil, fmt.Errorf("director: %w", err)
	}

	res, err := d.engine.Advance(core.Request{
		SessionID: req.SessionID,
		Memory:    req.Memory,
		Output:    output,
	})
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("session", req.SessionID).
		Str("ghost", req.Ghost).
		Str("mood", mood).
		Strs("unlocks", res.Unlocks).
		Msg("Turn complete")

	return d.response(reply, mood, res), nil
}

// Suggest asks for follow-up questions the player could ask next.
func (d *Director) Suggest(ctx context.Context, req TalkRequest) ([]string, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return nil, core.ErrMissingSession
	}
	req = normalize(req)

	prompt := fill(constants.SuggestPrompt, map[string]string{
		"GHOST":  req.Ghost,
		"REPLY":  lastGhostLine(req.DialogueHistory),
		"INPUT":  req.UserInput,
		"MEMORY": strings.Join(req.Memory, ", "),
	})

	text, err := d.chat(ctx, []provider.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return nil, fmt.Errorf("suggest: %w", err)
	}

	questions := dedupeNonEmpty(sanitize.StringSlice(sanitize.ExtractJSONArray(text)))
	if len(questions) > constants.MaxSuggestions {
		questions = questions[:constants.MaxSuggestions]
	}
	return questions, nil
}

func (d *Director) response(reply, mood string, res *core.Result) *TalkResponse {
	out := &TalkResponse{
		Reply:     reply,
		Mood:      mood,
		Unlocks:   res.Unlocks,
		ArcStates: res.ArcStates,
		StoryArcs: res.Arcs,
	}
	if res.Objective != "" {
		out.Objective = "Find " + unlock.Label(res.Objective)
	}
	return out
}

func (d *Director) reply(ctx context.Context, req TalkRequest) (string, error) {
	system := fill(constants.GhostPrompt, map[string]string{
		"GHOST":  req.Ghost,
		"MEMORY": strings.Join(req.Memory, ", "),
	})

	messages := []provider.Message{{Role: "system", Content: system}}
	input := strings.TrimSpace(req.UserInput)
	for i, line := range req.DialogueHistory {
		role, content := splitHistoryLine(line)
		// Clients may already have appended the current utterance.
		if i == len(req.DialogueHistory)-1 && role == "user" && content == input {
			continue
		}
		messages = append(messages, provider.Message{Role: role, Content: content})
	}
	messages = append(messages, provider.Message{Role: "user", Content: req.UserInput})

	text, err := d.chat(ctx, messages)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return constants.FallbackReply, nil
	}
	return text, nil
}

func (d *Director) mood(ctx context.Context, req TalkRequest) (string, error) {
	prompt := fill(constants.MoodPrompt, map[string]string{"INPUT": req.UserInput})
	text, err := d.chat(ctx, []provider.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return "", err
	}
	return ParseMood(text), nil
}

func (d *Director) direct(ctx context.Context, req TalkRequest, reply string) (string, error) {
	snap, err := d.engine.Snapshot(req.SessionID)
	if err != nil {
		return "", err
	}

	arcs, err := json.MarshalIndent(snap.Arcs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode arcs: %w", err)
	}

	known := make([]string, 0, len(snap.KnownUnlocks))
	for tok := range snap.KnownUnlocks {
		known = append(known, tok)
	}
	sort.Strings(known)

	prompt := fill(constants.DirectorPrompt, map[string]string{
		"ARCS":    string(arcs),
		"UNLOCKS": strings.Join(d.engine.Registry().Summarize(known), "\n"),
		"REPLY":   reply,
		"INPUT":   req.UserInput,
		"MEMORY":  strings.Join(req.Memory, ", "),
	})

	return d.chat(ctx, []provider.Message{{Role: "user", Content: prompt}}, provider.WithJSONResponse())
}

func (d *Director) chat(ctx context.Context, messages []provider.Message, opts ...provider.CallOption) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.LLMRequestTimeout)
	defer cancel()

	return d.provider.Chat(ctx, messages, opts...)
}

// ParseMood maps a classifier answer onto the known moods.
func ParseMood(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.Trim(text, ".!\"' ")
	for _, m := range constants.Moods {
		if text == m {
			return m
		}
	}
	return constants.DefaultMood
}

func normalize(req TalkRequest) TalkRequest {
	if strings.TrimSpace(req.Ghost) == "" {
		req.Ghost = DefaultGhost
	}
	if req.Memory == nil {
		req.Memory = []string{}
	}
	if n := len(req.DialogueHistory); n > constants.MaxDialogueHistory {
		req.DialogueHistory = req.DialogueHistory[n-constants.MaxDialogueHistory:]
	}
	return req
}

// splitHistoryLine turns "User: ..." / "Ghost: ..." lines into chat roles.
func splitHistoryLine(line string) (role, content string) {
	if rest, ok := strings.CutPrefix(line, "Ghost:"); ok {
		return "assistant", strings.TrimSpace(rest)
	}
	if rest, ok := strings.CutPrefix(line, "User:"); ok {
		return "user", strings.TrimSpace(rest)
	}
	return "user", line
}

func lastGhostLine(history []string) string {
	for i := len(history) - 1; i >= 0; i-- {
		if role, content := splitHistoryLine(history[i]); role == "assistant" {
			return content
		}
	}
	return ""
}

func fill(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func dedupeNonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
