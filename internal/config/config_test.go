package config

import (
	"os"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE_BACKEND", "STORE_PATH", "STORAGE_KEY", "SHARED_GAME", "EXPORT_ENABLED", "SOCKETIO_ENABLED", "MAX_ENGINES"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	c, err := FromEnv()
	if err != nil {
		t.Fatalf("should parse empty env: %v", err)
	}
	if c.Port != "8080" {
		t.Fatalf("expected port 8080, got %s", c.Port)
	}
	if c.StoreBackend != "file" {
		t.Fatalf("expected file backend, got %s", c.StoreBackend)
	}
	if c.StorageKey != "rockPaperScissorsGame" {
		t.Fatalf("unexpected storage key %s", c.StorageKey)
	}
	if c.SharedGame || c.ExportEnabled {
		t.Fatal("shared game and export should be off by default")
	}
	if !c.SocketIOEnabled {
		t.Fatal("socket.io should be on by default")
	}
	if c.MaxEngines != 1024 {
		t.Fatalf("expected 1024 cached engines, got %d", c.MaxEngines)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SHARED_GAME", "true")
	c, err := FromEnv()
	if err != nil {
		t.Fatalf("should parse env: %v", err)
	}
	if c.Port != "3000" || c.StoreBackend != "sqlite" || !c.SharedGame {
		t.Fatalf("overrides not applied: %+v", c)
	}
}

func TestFromEnvRejectsBadBool(t *testing.T) {
	t.Setenv("EXPORT_ENABLED", "maybe")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for invalid bool")
	}
}
