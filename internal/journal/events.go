package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/hollow/internal/core"
)

// Entry is one recorded event.
type Entry struct {
	ID        string
	SessionID string
	Type      core.EventType
	Payload   json.RawMessage
	CreatedAt time.Time
}

// Record stores an event.
func (j *Journal) Record(event core.Event) (*Entry, error) {
	payload := []byte("{}")
	if event.Data != nil {
		b, err := json.Marshal(event.Data)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		payload = b
	}

	created := event.Timestamp
	if created.IsZero() {
		created = time.Now()
	}

	e := &Entry{
		ID:        uuid.New().String(),
		SessionID: event.SessionID,
		Type:      event.Type,
		Payload:   payload,
		CreatedAt: created.UTC(),
	}

	_, err := j.db.Exec(`
		INSERT INTO events (id, session_id, type, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.ID, e.SessionID, string(e.Type), string(e.Payload), e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return e, nil
}

// ListForSession returns a session's events, oldest first.
func (j *Journal) ListForSession(sessionID string) ([]*Entry, error) {
	rows, err := j.db.Query(`
		SELECT id, session_id, type, payload, created_at
		FROM events
		WHERE session_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var payload string
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Type, &payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Payload = json.RawMessage(payload)
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// CountByType returns how many events of a type were recorded.
func (j *Journal) CountByType(t core.EventType) (int, error) {
	var n int
	err := j.db.QueryRow(`SELECT COUNT(*) FROM events WHERE type = ?`, string(t)).Scan(&n)
	return n, err
}

// Run records events until the channel closes or ctx is done.
func (j *Journal) Run(ctx context.Context, events <-chan core.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if _, err := j.Record(event); err != nil {
				log.Error().Err(err).Str("session", event.SessionID).Str("type", string(event.Type)).Msg("Failed to journal event")
			}
		}
	}
}
