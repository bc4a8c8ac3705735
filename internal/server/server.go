// Package server exposes the ghost conversation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/hollow/internal/core"
	"github.com/xonecas/hollow/internal/ghost"
)

// Conversation is the turn-taking surface the server drives.
type Conversation interface {
	Talk(ctx context.Context, req ghost.TalkRequest) (*ghost.TalkResponse, error)
	Suggest(ctx context.Context, req ghost.TalkRequest) ([]string, error)
}

// Inspector reports the progression of a session without advancing it.
type Inspector interface {
	Inspect(sessionID string, memory []string) (*core.Result, error)
}

// Server serves the game API.
type Server struct {
	conv           Conversation
	inspector      Inspector
	allowedOrigins []string
	startedAt      time.Time
}

// New creates a server. An empty origin list disables CORS headers.
func New(conv Conversation, inspector Inspector, allowedOrigins []string) *Server {
	return &Server{
		conv:           conv,
		inspector:      inspector,
		allowedOrigins: allowedOrigins,
		startedAt:      time.Now().UTC(),
	}
}

// Handler returns the routed handler wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /talk", s.handleTalk)
	mux.HandleFunc("POST /suggest", s.handleSuggest)
	mux.HandleFunc("GET /sessions/{id}/arcs", s.handleArcs)
	return s.cors(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"started_at": s.startedAt.Format(time.RFC3339),
		"uptime_sec": int(time.Since(s.startedAt).Seconds()),
	})
}

func (s *Server) handleTalk(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTalk(w, r)
	if !ok {
		return
	}

	resp, err := s.conv.Talk(r.Context(), req)
	if err != nil {
		writeError(w, req.SessionID, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeTalk(w, r)
	if !ok {
		return
	}

	questions, err := s.conv.Suggest(r.Context(), req)
	if err != nil {
		writeError(w, req.SessionID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"suggestions": questions})
}

func (s *Server) handleArcs(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	memory := r.URL.Query()["memory"]

	res, err := s.inspector.Inspect(id, memory)
	if err != nil {
		writeError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"arc_states": res.ArcStates,
		"story_arcs": res.Arcs,
		"objective":  res.Objective,
	})
}

func decodeTalk(w http.ResponseWriter, r *http.Request) (ghost.TalkRequest, bool) {
	var req ghost.TalkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return req, false
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing session id"})
		return req, false
	}
	return req, true
}

func writeError(w http.ResponseWriter, sessionID string, err error) {
	switch {
	case errors.Is(err, core.ErrMissingSession):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing session id"})
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn().Err(err).Str("session", sessionID).Msg("Turn timed out")
		writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": "the ghost did not answer in time"})
	default:
		log.Error().Err(err).Str("session", sessionID).Msg("Turn failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowOrigin(r.Header.Get("Origin")); origin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			if origin != "*" {
				h.Add("Vary", "Origin")
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowOrigin(origin string) string {
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
