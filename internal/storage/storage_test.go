package storage

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryGetPut(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	in := []byte("hello")
	if err := m.Put(ctx, "k", in); err != nil {
		t.Fatalf("put: %v", err)
	}
	in[0] = 'j'
	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("stored value should not alias caller memory, got %q", got)
	}
	got[0] = 'y'
	again, _ := m.Get(ctx, "k")
	if string(again) != "hello" {
		t.Fatalf("returned value should not alias store memory, got %q", again)
	}
}

func TestMemoryRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMemory()
	if err := m.Put(ctx, "k", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
