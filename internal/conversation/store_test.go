package conversation

import (
	"testing"
	"time"

	"github.com/tessro/roam/internal/api"
)

func fixedStore() *Store {
	s := NewStore()
	s.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestStore_AppendComplete(t *testing.T) {
	s := fixedStore()

	id := s.Append("Plan a trip to Thailand")
	entries := s.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !entries[0].Pending || entries[0].Assistant != "" {
		t.Errorf("expected pending entry with empty reply, got %+v", entries[0])
	}

	if !s.Complete(id, "Here is your plan", "2025-03-01T12:00:05") {
		t.Fatal("Complete() returned false")
	}
	e, _ := s.Get(id)
	if e.Pending || e.Failed {
		t.Errorf("expected completed entry, got %+v", e)
	}
	if e.Assistant != "Here is your plan" || e.Timestamp != "2025-03-01T12:00:05" {
		t.Errorf("unexpected entry %+v", e)
	}

	// A completed entry is immutable.
	if s.Complete(id, "again", "") {
		t.Error("Complete() on a completed entry should return false")
	}
	if s.Fail(id, "oops") {
		t.Error("Fail() on a completed entry should return false")
	}
}

func TestStore_MatchesByIdentityNotText(t *testing.T) {
	s := fixedStore()

	first := s.Append("same text")
	second := s.Append("same text")

	if !s.Fail(first, "error") {
		t.Fatal("Fail() returned false")
	}
	if !s.Complete(second, "reply", "") {
		t.Fatal("Complete() returned false")
	}

	entries := s.Entries()
	if !entries[0].Failed || entries[0].Assistant != "error" {
		t.Errorf("first entry = %+v, want failed", entries[0])
	}
	if entries[1].Failed || entries[1].Assistant != "reply" {
		t.Errorf("second entry = %+v, want completed", entries[1])
	}
}

func TestStore_UnknownID(t *testing.T) {
	s := fixedStore()
	s.Append("hello")
	if s.Complete("nope", "x", "") {
		t.Error("Complete() with unknown ID should return false")
	}
	if s.Fail("nope", "x") {
		t.Error("Fail() with unknown ID should return false")
	}
}

func TestStore_FirstLoad(t *testing.T) {
	s := fixedStore()
	if !s.FirstLoad() {
		t.Fatal("new store should be in first-load state")
	}

	s.Clear()
	if !s.FirstLoad() {
		t.Error("Clear() followed by no sends should be first-load")
	}

	id := s.Append("hi")
	if s.FirstLoad() {
		t.Error("Append() should clear first-load")
	}
	s.Fail(id, "error")
	if s.FirstLoad() {
		t.Error("first-load should stay false after a failed send")
	}

	s.Clear()
	if !s.FirstLoad() || s.Len() != 0 {
		t.Errorf("Clear() should empty the store and restore first-load")
	}
}

func TestStore_Load(t *testing.T) {
	tests := []struct {
		name          string
		history       []api.Message
		wantFirstLoad bool
	}{
		{"empty history", []api.Message{}, true},
		{"nil history", nil, true},
		{"existing conversation", []api.Message{{User: "a", Assistant: "b", Timestamp: "t"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := fixedStore()
			s.Load(tt.history)
			if got := s.FirstLoad(); got != tt.wantFirstLoad {
				t.Errorf("FirstLoad() = %v, want %v", got, tt.wantFirstLoad)
			}
			if s.Len() != len(tt.history) {
				t.Errorf("Len() = %d, want %d", s.Len(), len(tt.history))
			}
			if s.HasPending() {
				t.Error("loaded history should have no pending entries")
			}
		})
	}
}

func TestStore_HasPending(t *testing.T) {
	s := fixedStore()
	id := s.Append("hi")
	if !s.HasPending() {
		t.Error("expected pending entry")
	}
	s.Complete(id, "hello", "")
	if s.HasPending() {
		t.Error("expected no pending entries")
	}
}
