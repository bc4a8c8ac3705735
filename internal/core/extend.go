package core

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/hollow/internal/arc"
	"github.com/xonecas/hollow/internal/sanitize"
	"github.com/xonecas/hollow/internal/session"
	"github.com/xonecas/hollow/internal/unlock"
)

// RejectReason explains why a new-arc proposal was discarded.
type RejectReason string

const (
	RejectCatalogFull     RejectReason = "catalog_full"
	RejectMalformed       RejectReason = "malformed_proposal"
	RejectMissingKey      RejectReason = "missing_key"
	RejectDuplicateKey    RejectReason = "duplicate_key"
	RejectInvalidRequired RejectReason = "invalid_required"
	RejectEmptyRequired   RejectReason = "empty_required"
)

// Decision records the outcome of a new-arc proposal.
type Decision struct {
	Accepted bool         `json:"accepted"`
	Key      string       `json:"key,omitempty"`
	Required []string     `json:"required,omitempty"`
	Reason   RejectReason `json:"reason,omitempty"`
}

func reject(key string, reason RejectReason) Decision {
	return Decision{Key: key, Reason: reason}
}

// extend validates a proposed arc against the session state and merges it
// when every check passes. It never fails the caller; a rejected proposal
// only shows up in the returned Decision.
//
// Checks run in order: room in the catalog, a new non-empty key, then a
// non-empty list of non-empty string tokens. The convention that a new arc
// requires exactly one map: token is left to the director prompt.
func extend(st *session.State, registry *unlock.Registry, raw any, maxArcs int) Decision {
	if st.Arcs.Len() >= maxArcs {
		return reject("", RejectCatalogFull)
	}

	proposal, ok := raw.(map[string]any)
	if !ok {
		return reject("", RejectMalformed)
	}

	key := strings.TrimSpace(sanitize.String(proposal["key"]))
	if key == "" {
		return reject("", RejectMissingKey)
	}
	if st.Arcs.Has(key) {
		return reject(key, RejectDuplicateKey)
	}

	items, ok := proposal["required"].([]any)
	if !ok {
		return reject(key, RejectInvalidRequired)
	}
	required := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		tok, ok := item.(string)
		tok = strings.TrimSpace(tok)
		if !ok || tok == "" {
			return reject(key, RejectInvalidRequired)
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		required = append(required, tok)
	}
	if len(required) == 0 {
		return reject(key, RejectEmptyRequired)
	}

	if err := st.Arcs.Add(key, arc.Definition{Required: required, Optional: []string{}}); err != nil {
		// Has() was checked under the same session lock.
		return reject(key, RejectDuplicateKey)
	}
	st.KnownUnlocks.Add(required...)

	label := strings.TrimSpace(sanitize.String(proposal["label"]))
	if label == "" {
		label = unlock.Label(key)
	}
	for _, tok := range required {
		if unlock.Category(tok) != unlock.CategoryMap {
			continue
		}
		if registry.Register(tok, label) {
			log.Debug().Str("token", tok).Str("label", label).Msg("Registered map description")
		}
	}

	return Decision{Accepted: true, Key: key, Required: required}
}
