package tui

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

// maxHistorySize caps how many sent messages are kept for recall.
const maxHistorySize = 100

// maxInputHeight caps how many lines the composer grows to.
const maxInputHeight = 8

const defaultPlaceholder = "Ask about destinations, or say 'show thailand plan', 'add hotel $120 to my budget'..."

// recall walks previously sent messages, shell style. While walking, the
// unsent draft is parked and comes back after the newest entry.
type recall struct {
	entries []string
	pos     int // len(entries) when not walking
	draft   string
}

func (r *recall) load(entries []string) {
	if len(entries) > maxHistorySize {
		entries = entries[len(entries)-maxHistorySize:]
	}
	r.entries = append([]string(nil), entries...)
	r.reset()
}

// add records a sent message. Empty text and a repeat of the newest entry
// are dropped.
func (r *recall) add(text string) {
	if text != "" && (len(r.entries) == 0 || r.entries[len(r.entries)-1] != text) {
		r.entries = append(r.entries, text)
		if over := len(r.entries) - maxHistorySize; over > 0 {
			r.entries = r.entries[over:]
		}
	}
	r.reset()
}

func (r *recall) reset() {
	r.pos = len(r.entries)
	r.draft = ""
}

func (r *recall) walking() bool {
	return r.pos < len(r.entries)
}

// older steps back from current text. ok is false at the oldest entry.
func (r *recall) older(current string) (string, bool) {
	if r.pos == 0 {
		return "", false
	}
	if !r.walking() {
		r.draft = current
	}
	r.pos--
	return r.entries[r.pos], true
}

// newer steps forward, ending on the parked draft.
func (r *recall) newer() (string, bool) {
	if !r.walking() {
		return "", false
	}
	r.pos++
	if r.walking() {
		return r.entries[r.pos], true
	}
	draft := r.draft
	r.draft = ""
	return draft, true
}

// InputLine is the message composer docked under the conversation.
type InputLine struct {
	width   int
	focused bool
	input   textarea.Model
	recall  recall
}

// NewInputLine creates an empty, unfocused composer.
func NewInputLine() InputLine {
	ta := textarea.New()
	ta.Placeholder = defaultPlaceholder
	ta.CharLimit = 4096
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.SetHeight(1)
	// Enter sends; the model handles it.
	ta.KeyMap.InsertNewline.SetEnabled(false)
	return InputLine{input: ta}
}

// SetSize sets the outer width. Height follows the content.
func (i *InputLine) SetSize(width, _ int) {
	i.width = width
	i.input.SetWidth(max(width-6, 1))
}

// SetFocused focuses or blurs the textarea.
func (i *InputLine) SetFocused(focused bool) {
	i.focused = focused
	if focused {
		i.input.Focus()
		return
	}
	i.input.Blur()
}

// Update forwards msg to the textarea.
func (i *InputLine) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	i.input, cmd = i.input.Update(msg)
	i.input.SetHeight(i.ContentHeight())
	return cmd
}

// Value returns the text being composed.
func (i *InputLine) Value() string {
	return i.input.Value()
}

func (i *InputLine) setValue(text string) {
	i.input.SetValue(text)
	i.input.CursorEnd()
	i.input.SetHeight(i.ContentHeight())
}

// Clear empties the composer.
func (i *InputLine) Clear() {
	i.setValue("")
}

// ContentHeight is the number of lines the text needs, between 1 and
// maxInputHeight.
func (i *InputLine) ContentHeight() int {
	return min(max(i.input.LineCount(), 1), maxInputHeight)
}

// AddToHistory records a sent message for recall.
func (i *InputLine) AddToHistory(text string) {
	i.recall.add(text)
}

// SetHistory replaces the recall entries, e.g. with those saved on disk.
func (i *InputLine) SetHistory(history []string) {
	i.recall.load(history)
}

// History returns a copy of the recall entries, oldest first.
func (i *InputLine) History() []string {
	return append([]string(nil), i.recall.entries...)
}

// HistoryUp replaces the text with the previous sent message.
// It reports whether the text changed.
func (i *InputLine) HistoryUp() bool {
	text, ok := i.recall.older(i.Value())
	if ok {
		i.setValue(text)
	}
	return ok
}

// HistoryDown moves toward the newest message and then back to the draft.
// It reports whether the text changed.
func (i *InputLine) HistoryDown() bool {
	text, ok := i.recall.newer()
	if ok {
		i.setValue(text)
	}
	return ok
}

// View renders the composer.
func (i InputLine) View() string {
	style := inputLineStyle
	if i.focused {
		style = inputLineFocusedStyle
	}
	return style.Width(i.width).Render(i.input.View())
}
