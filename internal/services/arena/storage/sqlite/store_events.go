package sqlite

import (
	"context"
	"fmt"

	"github.com/louisbranch/emberarena/internal/services/arena/domain/event"
)

// AppendEvent assigns the next sequence number within the event's stream and
// persists the event. The sequence allocation and the insert share one
// transaction so concurrent appenders never produce gaps or duplicates.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return event.Event{}, fmt.Errorf("begin append tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const seqQuery = `
INSERT INTO event_seq (stream, next_seq)
VALUES (?1, 1)
ON CONFLICT (stream) DO UPDATE SET next_seq = next_seq + 1
RETURNING next_seq;
`
	var seq uint64
	if err := tx.QueryRowContext(ctx, seqQuery, evt.EncounterID).Scan(&seq); err != nil {
		return event.Event{}, fmt.Errorf("allocate event seq: %w", err)
	}

	const insertQuery = `
INSERT INTO events (stream, seq, timestamp, type, actor_type, actor_id, entity_type, entity_id, payload)
VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9);
`
	_, err = tx.ExecContext(ctx, insertQuery,
		evt.EncounterID,
		seq,
		toMillis(evt.Timestamp),
		string(evt.Type),
		string(evt.ActorType),
		evt.ActorID,
		evt.EntityType,
		evt.EntityID,
		string(evt.PayloadJSON),
	)
	if err != nil {
		return event.Event{}, fmt.Errorf("insert event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return event.Event{}, fmt.Errorf("commit append tx: %w", err)
	}

	evt.Seq = seq
	return evt, nil
}

// ListEvents returns a stream's events after the given sequence number.
func (s *Store) ListEvents(ctx context.Context, stream string, afterSeq uint64, limit int) ([]event.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
SELECT seq, timestamp, type, actor_type, actor_id, entity_type, entity_id, payload
FROM events
WHERE stream = ?1 AND seq > ?2
ORDER BY seq
LIMIT ?3;
`
	rows, err := s.sqlDB.QueryContext(ctx, query, stream, afterSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []event.Event
	for rows.Next() {
		var (
			evt       event.Event
			timestamp int64
			eventType string
			actorType string
			payload   string
		)
		if err := rows.Scan(&evt.Seq, &timestamp, &eventType, &actorType, &evt.ActorID, &evt.EntityType, &evt.EntityID, &payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt.EncounterID = stream
		evt.Timestamp = fromMillis(timestamp)
		evt.Type = event.Type(eventType)
		evt.ActorType = event.ActorType(actorType)
		evt.PayloadJSON = []byte(payload)
		out = append(out, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}
