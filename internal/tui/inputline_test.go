package tui

import (
	"fmt"
	"testing"
)

func TestRecall_Add(t *testing.T) {
	tests := []struct {
		name  string
		adds  []string
		wants []string
	}{
		{"empty dropped", []string{"", "a", ""}, []string{"a"}},
		{"repeat of newest dropped", []string{"a", "a", "b", "a"}, []string{"a", "b", "a"}},
		{"keeps order", []string{"plan japan", "budget", "todo"}, []string{"plan japan", "budget", "todo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r recall
			for _, a := range tt.adds {
				r.add(a)
			}
			if fmt.Sprint(r.entries) != fmt.Sprint(tt.wants) {
				t.Errorf("entries = %q, want %q", r.entries, tt.wants)
			}
			if r.walking() {
				t.Error("add should stop any walk")
			}
		})
	}
}

func TestRecall_Cap(t *testing.T) {
	var r recall
	for n := 0; n < maxHistorySize+10; n++ {
		r.add(fmt.Sprintf("msg %d", n))
	}
	if len(r.entries) != maxHistorySize {
		t.Fatalf("len = %d, want %d", len(r.entries), maxHistorySize)
	}
	if r.entries[0] != "msg 10" {
		t.Errorf("oldest = %q, want msg 10", r.entries[0])
	}
}

func TestInputLine_HistoryWalk(t *testing.T) {
	il := NewInputLine()

	if il.HistoryUp() || il.HistoryDown() {
		t.Fatal("walking empty history should do nothing")
	}

	for _, s := range []string{"first", "second", "third"} {
		il.AddToHistory(s)
	}
	il.input.SetValue("draft")

	steps := []struct {
		up     bool
		wantOK bool
		want   string
	}{
		{true, true, "third"},
		{true, true, "second"},
		{true, true, "first"},
		{true, false, "first"},
		{false, true, "second"},
		{false, true, "third"},
		{false, true, "draft"},
		{false, false, "draft"},
	}
	for n, s := range steps {
		var ok bool
		if s.up {
			ok = il.HistoryUp()
		} else {
			ok = il.HistoryDown()
		}
		if ok != s.wantOK || il.Value() != s.want {
			t.Fatalf("step %d (up=%v): ok=%v value=%q, want ok=%v value=%q", n, s.up, ok, il.Value(), s.wantOK, s.want)
		}
	}
}

func TestInputLine_ContentHeight(t *testing.T) {
	il := NewInputLine()
	il.SetSize(80, 1)

	if got := il.ContentHeight(); got != 1 {
		t.Errorf("empty ContentHeight = %d, want 1", got)
	}

	il.setValue("day one\nday two")
	if got := il.ContentHeight(); got != 2 {
		t.Errorf("two-line ContentHeight = %d, want 2", got)
	}

	long := ""
	for n := 0; n < maxInputHeight+3; n++ {
		long += "line\n"
	}
	il.setValue(long)
	if got := il.ContentHeight(); got != maxInputHeight {
		t.Errorf("ContentHeight = %d, want cap %d", got, maxInputHeight)
	}

	il.Clear()
	if got := il.ContentHeight(); got != 1 || il.Value() != "" {
		t.Errorf("after Clear: height %d, value %q", got, il.Value())
	}
}

func TestInputLine_SetHistory(t *testing.T) {
	il := NewInputLine()

	var saved []string
	for n := 0; n < maxHistorySize+5; n++ {
		saved = append(saved, fmt.Sprintf("msg %d", n))
	}
	il.SetHistory(saved)

	got := il.History()
	if len(got) != maxHistorySize {
		t.Fatalf("History() length = %d, want %d", len(got), maxHistorySize)
	}
	if got[len(got)-1] != saved[len(saved)-1] {
		t.Errorf("newest entry = %q, want %q", got[len(got)-1], saved[len(saved)-1])
	}

	got[0] = "changed"
	if il.History()[0] == "changed" {
		t.Error("History() exposed internal slice")
	}

	saved[len(saved)-1] = "mutated"
	if !il.HistoryUp() || il.Value() != fmt.Sprintf("msg %d", maxHistorySize+4) {
		t.Errorf("HistoryUp after SetHistory = %q", il.Value())
	}
}
