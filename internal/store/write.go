package store

import (
	"context"
	"fmt"

	"github.com/roach88/canvasreplay/internal/event"
)

// Index replaces the index contents with events, in log order.
//
// The rebuild runs in one transaction: on error the previous contents are
// kept. Payloads that cannot be serialized fail the whole rebuild.
func (s *Store) Index(ctx context.Context, events []event.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM events`); err != nil {
		return fmt.Errorf("index: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events
		(idx, timestamp, event_type, session_id, user_id, data, event_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare: %w", err)
	}
	defer stmt.Close()

	for i, e := range events {
		data, err := marshalData(e.Data)
		if err != nil {
			return fmt.Errorf("index entry %d: %w", i, err)
		}
		hash, err := event.Hash(e)
		if err != nil {
			return fmt.Errorf("index entry %d: %w", i, err)
		}

		if _, err := stmt.ExecContext(ctx,
			i,
			e.Timestamp,
			string(e.Type),
			e.SessionID,
			e.UserID,
			data,
			hash,
		); err != nil {
			return fmt.Errorf("index entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("index: commit: %w", err)
	}
	return nil
}
