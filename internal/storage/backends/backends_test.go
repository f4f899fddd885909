package backends

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()
	for _, kind := range []string{Memory, File, SQLite, "", "SQLite"} {
		dir := filepath.Join(t.TempDir(), "state")
		s, err := Open(ctx, kind, dir, "")
		if err != nil {
			t.Fatalf("%q: open: %v", kind, err)
		}
		if err := s.Put(ctx, "k", []byte("v")); err != nil {
			t.Fatalf("%q: put: %v", kind, err)
		}
		got, err := s.Get(ctx, "k")
		if err != nil || string(got) != "v" {
			t.Fatalf("%q: expected v, got %q, %v", kind, got, err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("%q: close: %v", kind, err)
		}
	}
}

func TestOpenSQLiteCreatesDatabaseFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	s, err := Open(context.Background(), SQLite, dir, "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	if _, err := os.Stat(filepath.Join(dir, "rps.db")); err != nil {
		t.Fatalf("expected database file: %v", err)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), "redis", t.TempDir(), ""); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestShared(t *testing.T) {
	for kind, want := range map[string]bool{Postgres: true, " Postgres ": true, SQLite: false, File: false, Memory: false, "": false} {
		if got := Shared(kind); got != want {
			t.Fatalf("%q: expected %v, got %v", kind, want, got)
		}
	}
}
