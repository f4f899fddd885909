package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kiliankoe/rpsdash/internal/config"
	"github.com/kiliankoe/rpsdash/internal/game"
	"github.com/kiliankoe/rpsdash/internal/storage/backends"
)

func testConfig(backend, dir string) config.Config {
	return config.Config{
		StoreBackend: backend,
		StorePath:    dir,
		StorageKey:   game.DefaultStorageKey,
		SharedGame:   true,
		MaxEngines:   8,
	}
}

func TestRunReturnsStoreError(t *testing.T) {
	err := run(context.Background(), testConfig("redis", t.TempDir()), "0")
	if err == nil || !strings.Contains(err.Error(), "redis") {
		t.Fatalf("expected store error to be returned, got %v", err)
	}
}

func TestRunClosesStoreOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := run(ctx, testConfig(backends.Memory, t.TempDir()), "0"); err != nil {
		t.Fatalf("cancelled run should shut down cleanly: %v", err)
	}
}

func TestAppPersistsToSQLiteAcrossRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := testConfig(backends.SQLite, dir)
	cfg.SocketIOEnabled = true

	a, err := newApp(ctx, cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/play", strings.NewReader(`{"move":"rock"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err := backends.Open(ctx, backends.SQLite, dir, "")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	s, fellBack, err := game.LoadOrDefault(ctx, store, game.DefaultStorageKey)
	if err != nil || fellBack {
		t.Fatalf("round should survive a restart, fellBack=%v err=%v", fellBack, err)
	}
	if s.Scores.Rounds() != 1 || len(s.History) != 1 {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestAppServesPageAndHealth(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(backends.Memory, t.TempDir()))
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()
	for path, want := range map[string]string{"/health": `"ok":true`, "/": "Rock Paper Scissors"} {
		w := httptest.NewRecorder()
		a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), want) {
			t.Fatalf("%s: expected 200 containing %q, got %d", path, want, w.Code)
		}
	}
}
