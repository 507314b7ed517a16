package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/canvasreplay/internal/event"
)

// Entry is one indexed log entry.
type Entry struct {
	Index int
	Event event.Event
	Hash  string
}

// Filter narrows ReadRange. Zero fields do not filter.
type Filter struct {
	Type      event.Type
	SessionID string
	// Since and Until bound the timestamp, both inclusive.
	Since int64
	Until int64
	Limit int
}

// TypeCount is the number of entries of one event type.
type TypeCount struct {
	Type  event.Type
	Count int
}

// Count returns the number of indexed entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// CountByType returns entry counts per event type, ordered by type name.
// Types with no entries are omitted.
func (s *Store) CountByType(ctx context.Context) ([]TypeCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_type, COUNT(*)
		FROM events
		GROUP BY event_type
		ORDER BY event_type COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query type counts: %w", err)
	}
	defer rows.Close()

	counts := []TypeCount{}
	for rows.Next() {
		var tc TypeCount
		var typ string
		if err := rows.Scan(&typ, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan type count: %w", err)
		}
		tc.Type = event.Type(typ)
		counts = append(counts, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate type counts: %w", err)
	}
	return counts, nil
}

// ReadAll returns every entry in log order.
func (s *Store) ReadAll(ctx context.Context) ([]Entry, error) {
	return s.ReadRange(ctx, Filter{})
}

// ReadRange returns the entries matching f in log order.
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) ReadRange(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.Type != "" {
		where = append(where, "event_type = ?")
		args = append(args, string(f.Type))
	}
	if f.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, f.SessionID)
	}
	if f.Since != 0 {
		where = append(where, "timestamp >= ?")
		args = append(args, f.Since)
	}
	if f.Until != 0 {
		where = append(where, "timestamp <= ?")
		args = append(args, f.Until)
	}

	query := `SELECT idx, timestamp, event_type, session_id, user_id, data, event_hash FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY idx ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		entry                             Entry
		ts                                int64
		typ, sessionID, userID, data, sum string
	)
	if err := rows.Scan(&entry.Index, &ts, &typ, &sessionID, &userID, &data, &sum); err != nil {
		return Entry{}, fmt.Errorf("scan event: %w", err)
	}

	e, err := unmarshalEvent(ts, typ, sessionID, userID, data)
	if err != nil {
		return Entry{}, fmt.Errorf("entry %d: %w", entry.Index, err)
	}
	entry.Event = e
	entry.Hash = sum
	return entry, nil
}
