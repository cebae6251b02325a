package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapError_PG_UniqueViolation(t *testing.T) {
	dialect := &PostgresDialect{}
	pgErr := &pgconn.PgError{
		Code:           "23505",
		Message:        "duplicate key value violates unique constraint \"_installations_pkey\"",
		ConstraintName: "_installations_pkey",
		Detail:         "Key (workspace_id)=(ws-1) already exists.",
	}
	wrapped := fmt.Errorf("exec: %w", pgErr)

	mapped := MapError(dialect, wrapped)

	if !errors.Is(mapped, ErrUniqueViolation) {
		t.Fatalf("expected ErrUniqueViolation, got: %v", mapped)
	}

	// Original pgconn.PgError should still be extractable
	var extracted *pgconn.PgError
	if !errors.As(mapped, &extracted) {
		t.Fatal("expected pgconn.PgError to still be extractable via errors.As")
	}
	if extracted.ConstraintName != "_installations_pkey" {
		t.Fatalf("expected constraint name '_installations_pkey', got: %s", extracted.ConstraintName)
	}
}

func TestMapError_PG_OtherError(t *testing.T) {
	dialect := &PostgresDialect{}
	err := fmt.Errorf("some other error")
	mapped := MapError(dialect, err)
	if mapped != err {
		t.Fatalf("expected same error back, got: %v", mapped)
	}
}

func TestMapError_PG_Nil(t *testing.T) {
	dialect := &PostgresDialect{}
	mapped := MapError(dialect, nil)
	if mapped != nil {
		t.Fatalf("expected nil, got: %v", mapped)
	}
}

func TestPostgresIntervalDeleteExpr(t *testing.T) {
	d := &PostgresDialect{}
	pb := d.NewParamBuilder()
	pb.Add("first")
	got := d.IntervalDeleteExpr("created_at", pb, "7")
	want := "created_at < now() - ($2 || ' days')::interval"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if pb.Count() != 2 || pb.Params()[1] != "7" {
		t.Fatalf("expected days as second param, got %v", pb.Params())
	}
}
