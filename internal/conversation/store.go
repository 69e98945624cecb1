// Package conversation holds the ordered chat history shown to the user.
package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tessro/roam/internal/api"
)

// ID identifies one entry in the store. IDs are never reused.
type ID string

// Entry is one user message and the assistant's reply to it.
// Assistant is empty while the reply is pending.
type Entry struct {
	ID        ID
	User      string
	Assistant string
	Timestamp string
	Pending   bool
	Failed    bool
}

// Store is an append-only conversation log.
// Entries are displayed in insertion order. It is safe for concurrent use.
type Store struct {
	mu sync.Mutex
	// +checklocks:mu
	entries []Entry
	// +checklocks:mu
	firstLoad bool

	now func() time.Time
}

// NewStore creates an empty store in the first-load state.
func NewStore() *Store {
	return &Store{
		firstLoad: true,
		now:       time.Now,
	}
}

// Append adds a pending entry for userText at the tail and returns its ID.
// After any Append the store is no longer in the first-load state.
func (s *Store) Append(userText string) ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ID(uuid.NewString())
	s.entries = append(s.entries, Entry{
		ID:        id,
		User:      userText,
		Timestamp: s.now().Format(time.RFC3339),
		Pending:   true,
	})
	s.firstLoad = false
	return id
}

// Complete fills in the assistant's reply for the entry with the given ID.
// Returns false if no pending entry has that ID.
func (s *Store) Complete(id ID, assistantText, timestamp string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.find(id)
	if e == nil || !e.Pending {
		return false
	}
	e.Assistant = assistantText
	if timestamp != "" {
		e.Timestamp = timestamp
	}
	e.Pending = false
	return true
}

// Fail replaces the pending reply for the entry with the given ID with errorText.
// Returns false if no pending entry has that ID.
func (s *Store) Fail(id ID, errorText string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.find(id)
	if e == nil || !e.Pending {
		return false
	}
	e.Assistant = errorText
	e.Timestamp = s.now().Format(time.RFC3339)
	e.Pending = false
	e.Failed = true
	return true
}

// Clear empties the store and returns it to the first-load state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.firstLoad = true
}

// Load replaces all entries with history fetched from the backend.
// The store is in the first-load state only if history is empty.
func (s *Store) Load(history []api.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(history))
	for _, m := range history {
		entries = append(entries, Entry{
			ID:        ID(uuid.NewString()),
			User:      m.User,
			Assistant: m.Assistant,
			Timestamp: m.Timestamp,
		})
	}
	s.entries = entries
	s.firstLoad = len(entries) == 0
}

// Entries returns a copy of all entries in display order.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

// Get returns the entry with the given ID.
func (s *Store) Get(id ID) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.find(id); e != nil {
		return *e, true
	}
	return Entry{}, false
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// FirstLoad reports whether the welcome view should be shown.
func (s *Store) FirstLoad() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firstLoad
}

// HasPending reports whether any entry is still waiting for a reply.
func (s *Store) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].Pending {
			return true
		}
	}
	return false
}

// find returns a pointer to the entry with id, or nil.
// +checklocks:s.mu
func (s *Store) find(id ID) *Entry {
	// Search from the tail: the entry being completed is almost always the last.
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].ID == id {
			return &s.entries[i]
		}
	}
	return nil
}
