package store

import (
	"context"
	"testing"
)

func TestOpen_CreatesSchema(t *testing.T) {
	s := createTestStore(t)

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	for name, want := range map[string]string{
		"journal_mode": "memory",
		"foreign_keys": "1",
		"user_version": "1",
	} {
		if err := s.verifyPragma(name, want); err != nil {
			t.Error(err)
		}
	}
}

func TestOpen_IndependentDatabases(t *testing.T) {
	a := createTestStore(t)
	b := createTestStore(t)
	ctx := context.Background()

	if err := a.Index(ctx, sampleLog()); err != nil {
		t.Fatalf("Index() failed: %v", err)
	}

	n, err := b.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("second store sees %d entries, want 0", n)
	}
}

func TestClose_Idempotent(t *testing.T) {
	s, err := Open()
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}

	var empty Store
	if err := empty.Close(); err != nil {
		t.Errorf("Close() on zero store failed: %v", err)
	}
}

func TestQuery(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	if err := s.Index(ctx, sampleLog()); err != nil {
		t.Fatalf("Index() failed: %v", err)
	}

	rows, err := s.Query(ctx, "SELECT DISTINCT session_id FROM events ORDER BY session_id")
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("Scan() failed: %v", err)
		}
		sessions = append(sessions, id)
	}
	if len(sessions) != 2 || sessions[0] != "s1" || sessions[1] != "s2" {
		t.Errorf("sessions = %v, want [s1 s2]", sessions)
	}
}
