package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"notion-forms/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := New(ctx, config.DatabaseConfig{Driver: "sqlite", Name: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return s
}

func TestSQLitePlaceholders(t *testing.T) {
	pb := (&SQLiteDialect{}).NewParamBuilder()
	if got := pb.Add("a"); got != "?1" {
		t.Fatalf("expected ?1, got %s", got)
	}
	if got := pb.Add("b"); got != "?2" {
		t.Fatalf("expected ?2, got %s", got)
	}
}

func TestMapError_SQLite_UniqueViolation(t *testing.T) {
	err := fmt.Errorf("exec: UNIQUE constraint failed: _submissions.id")
	if !errors.Is(MapError(&SQLiteDialect{}, err), ErrUniqueViolation) {
		t.Fatal("expected ErrUniqueViolation")
	}
}

func TestBootstrap_Idempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Bootstrap(context.Background()); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
}

func TestInstallations_ResolveToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	inst := NewInstallations(s, "default-token")

	tok, err := inst.ResolveToken(ctx, "ws-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if tok != "default-token" {
		t.Fatalf("expected fallback token, got %q", tok)
	}

	if err := inst.Put(ctx, "ws-1", "secret_a"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := inst.Put(ctx, "ws-1", "secret_b"); err != nil {
		t.Fatalf("replace: %v", err)
	}
	tok, err = inst.ResolveToken(ctx, "ws-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if tok != "secret_b" {
		t.Fatalf("expected secret_b, got %q", tok)
	}
}

func TestInstallations_NoToken(t *testing.T) {
	s := newTestStore(t)
	inst := NewInstallations(s, "")
	_, err := inst.ResolveToken(context.Background(), "unknown")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := inst.Put(context.Background(), "", "tok"); err == nil {
		t.Fatal("expected error for empty workspace")
	}
}

func TestSubmissions_RecordAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	subs := NewSubmissions(s)

	id, err := subs.Record(ctx, "db-1", "page-1", "https://notion.so/page-1", "user-1")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if id == "" {
		t.Fatal("expected a submission id")
	}
	if _, err := subs.Record(ctx, "db-1", "page-2", "", "user-2"); err != nil {
		t.Fatalf("record: %v", err)
	}

	recs, err := subs.ListRecent(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].ID != id || recs[0].PageID != "page-1" || recs[0].PageURL != "https://notion.so/page-1" {
		t.Fatalf("unexpected record: %+v", recs[0])
	}
	if recs[0].CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
}
