package memory

import (
	"testing"
)

func TestCursorStore_GetMissing(t *testing.T) {
	s := NewCursorStore()

	_, ok := s.Get(1, "0xabc")
	if ok {
		t.Fatal("expected no cursor for unseen pair")
	}
}

func TestCursorStore_PutAndGet(t *testing.T) {
	s := NewCursorStore()

	s.Put(1, "0xabc", 100)
	ts, ok := s.Get(1, "0xabc")
	if !ok || ts != 100 {
		t.Fatalf("expected cursor 100, got %d (ok=%v)", ts, ok)
	}

	// Same address for a different subscriber has its own cursor.
	_, ok = s.Get(2, "0xabc")
	if ok {
		t.Fatal("cursors must be per (subscriber, address)")
	}
}

func TestCursorStore_Monotonic(t *testing.T) {
	s := NewCursorStore()

	s.Put(1, "0xabc", 100)
	s.Put(1, "0xabc", 50) // older, must be ignored
	ts, _ := s.Get(1, "0xabc")
	if ts != 100 {
		t.Fatalf("cursor regressed to %d", ts)
	}

	s.Put(1, "0xabc", 150)
	ts, _ = s.Get(1, "0xabc")
	if ts != 150 {
		t.Fatalf("cursor did not advance, got %d", ts)
	}
}
