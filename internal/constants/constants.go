package constants

import "time"

// GhostPrompt is the persona every ghost speaks with.
// {{GHOST}} and {{MEMORY}} are replaced at runtime.
const GhostPrompt = `You are a ghost named {{GHOST}}. You speak cryptically, in riddles, and fragmented memory.
You are part of a narrative where the player is trying to uncover what happened in the Hollow.
Don't speak in parentheses. Don't use asterisks. Don't use ellipses. Say full thoughts. Don't ask questions.

You remember these things: {{MEMORY}}.

Based on the conversation, you may reveal or suggest dynamic objectives, clues, or insights.
You may guide the player with hints, obfuscation, or story beats.
A mysterious figure named Elira, a forgotten caretaker of the Hollow, lingers as a central force in the story.
Elira is known to have kept journals, whispered to the children, and possibly knows the truth about what fractured the village.`

// MoodPrompt asks for a one-word mood. {{INPUT}} is the player's utterance.
const MoodPrompt = `Classify the ghost's mood in response to this user input using ONLY one of the following: curious, angry, sad, peaceful.
Reply with only the one word that best fits:
{{INPUT}}`

// DirectorPrompt asks the game director for unlocks and at most one new arc.
// {{ARCS}}, {{UNLOCKS}}, {{REPLY}}, {{INPUT}} and {{MEMORY}} are replaced at runtime.
const DirectorPrompt = `You are an AI game director managing a mystery narrative.
Here is the current structure of known story arcs (each with required and optional unlocks):
{{ARCS}}

Only reveal unlocks from this approved list:
{{UNLOCKS}}

Respond with a single JSON object:
{"unlocks": ["clue:burned_names"], "new_arc": {"key": "sunken_chapel", "label": "Sunken Chapel", "required": ["map:sunken_chapel"]}}

"unlocks" is a list of 0 or more entries from the approved list. Return an empty list if nothing should be revealed.
"new_arc" is optional. Only propose one when the conversation opens a genuinely new thread.
A new arc must have a unique snake_case key and exactly one "map:" entry in "required".

Ghost: {{REPLY}}
User: {{INPUT}}
Memory: {{MEMORY}}`

// SuggestPrompt asks for follow-up questions the player could ask next.
const SuggestPrompt = `You help a player talk to a ghost named {{GHOST}} in a mystery game.
Suggest up to 3 short follow-up questions the player could ask next.
Respond with only a JSON list of strings.

Ghost: {{REPLY}}
User: {{INPUT}}
Memory: {{MEMORY}}`

// InitInput is the utterance clients send to fetch arc states without talking.
const InitInput = "init"

// FallbackReply is used when the ghost returns no text.
const FallbackReply = "(The ghost whispers nothing...)"

// DefaultMood is used when the mood classifier answers outside the known set.
const DefaultMood = "curious"

// Moods lists the moods a ghost can show.
var Moods = []string{"curious", "angry", "sad", "peaceful"}

// MaxArcsPerSession caps how many arcs a session catalog may hold.
const MaxArcsPerSession = 5

// MaxSuggestions caps follow-up questions returned to the client.
const MaxSuggestions = 3

// MaxDialogueHistory limits how many history lines are sent to the model.
const MaxDialogueHistory = 20

// LLMRequestTimeout caps a single model call.
const LLMRequestTimeout = 60 * time.Second

// MinEventBusBufferSize is the minimum buffer per subscriber channel.
const MinEventBusBufferSize = 256

// EventBusPublishTimeout is the per-subscriber timeout for critical events.
const EventBusPublishTimeout = 200 * time.Millisecond
