package tui

import (
	"strings"
	"testing"

	"github.com/tessro/roam/internal/conversation"
	"github.com/tessro/roam/internal/view"
)

func TestRenderEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   conversation.Entry
		want    string
		notWant string
	}{
		{
			name:  "completed",
			entry: conversation.Entry{User: "Plan a trip", Assistant: "Where to?", Timestamp: "2025-01-01T10:00:00"},
			want:  "Where to?",
		},
		{
			name:    "pending",
			entry:   conversation.Entry{User: "Plan a trip", Pending: true},
			want:    "Thinking...",
			notWant: "Where to?",
		},
		{
			name:  "failed",
			entry: conversation.Entry{User: "Plan a trip", Assistant: "Sorry, network error", Failed: true},
			want:  "Sorry, network error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderEntry(tt.entry, 80)
			if !strings.Contains(got, "Plan a trip") {
				t.Errorf("renderEntry() missing user text:\n%s", got)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("renderEntry() missing %q:\n%s", tt.want, got)
			}
			if tt.notWant != "" && strings.Contains(got, tt.notWant) {
				t.Errorf("renderEntry() contains %q:\n%s", tt.notWant, got)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	got := wrap("pack light and travel far", 10)
	for _, line := range strings.Split(got, "\n") {
		if len(strings.TrimRight(line, " ")) > 10 {
			t.Errorf("line %q longer than 10", line)
		}
	}
	if wrap("keep\n", 0) != "keep" {
		t.Errorf("wrap with no width = %q", wrap("keep\n", 0))
	}
}

func TestFormatTime(t *testing.T) {
	if got := formatTime("not a time"); got != "" {
		t.Errorf("formatTime(invalid) = %q, want empty", got)
	}
	if got := formatTime("2025-01-01T10:00:00Z"); len(got) != 5 || got[2] != ':' {
		t.Errorf("formatTime() = %q, want HH:MM", got)
	}
}

func TestChatView_WelcomeAndEntries(t *testing.T) {
	v := NewChatView()
	v.SetSize(80, 20)

	if !v.Welcome() {
		t.Fatal("new chat view should show welcome")
	}
	if !strings.Contains(v.viewport.View(), "Welcome") {
		t.Errorf("welcome text not rendered:\n%s", v.viewport.View())
	}

	v.SetEntries([]conversation.Entry{{User: "hello", Assistant: "hi there"}}, false)
	if v.Welcome() {
		t.Error("welcome should hide once there are entries")
	}
	if !strings.Contains(v.viewport.View(), "hi there") {
		t.Errorf("entry not rendered:\n%s", v.viewport.View())
	}

	// A cleared conversation returns to the welcome screen.
	v.SetEntries(nil, true)
	if !v.Welcome() {
		t.Error("cleared conversation should show welcome")
	}
	if !view.ShowWelcome(true, 0) {
		t.Error("view.ShowWelcome disagrees")
	}
}
