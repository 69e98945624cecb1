package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/tessro/roam/internal/view"
)

// HelpBar displays context-sensitive keyboard shortcuts at the bottom of the TUI.
type HelpBar struct {
	width int
	keys  KeyBindings

	mode      ModeState
	panelMode view.Mode

	// Error display
	errorMsg string
}

// NewHelpBar creates a new help bar component.
func NewHelpBar() HelpBar {
	return HelpBar{
		keys: DefaultKeyBindings(),
	}
}

// SetWidth updates the help bar width.
func (h *HelpBar) SetWidth(width int) {
	h.width = width
}

// SetContext updates the help bar's context for rendering appropriate shortcuts.
func (h *HelpBar) SetContext(mode ModeState, panelMode view.Mode) {
	h.mode = mode
	h.panelMode = panelMode
}

// SetError sets the error message to display.
func (h *HelpBar) SetError(msg string) {
	h.errorMsg = msg
}

// ClearError clears the error message.
func (h *HelpBar) ClearError() {
	h.errorMsg = ""
}

// Error returns the error currently shown, if any.
func (h HelpBar) Error() string {
	return h.errorMsg
}

// View renders the help bar with context-sensitive keyboard shortcuts.
func (h HelpBar) View() string {
	if h.errorMsg != "" {
		return errorBarStyle.Width(h.width).Render("Error: " + h.errorMsg)
	}

	if h.mode.IsDeleteConfirming() {
		d := h.mode.Delete
		label := deleteConfirmLabelStyle.Render("Delete " + d.Kind.Noun() + " " + d.Filename + "?")
		hint := deleteConfirmHintStyle.Render(" " + formatHelp([]key.Binding{h.keys.Approve, h.keys.Reject}))
		return deleteConfirmStyle.Width(h.width).Render(label + hint)
	}

	return statusStyle.Width(h.width).Render(formatHelp(h.bindings()))
}

func (h HelpBar) bindings() []key.Binding {
	k := h.keys
	if h.mode.IsInputting() {
		return []key.Binding{k.Submit, k.HistoryUp, k.Cancel, k.ClearChat}
	}
	if h.mode.Focus == FocusChat {
		return []key.Binding{k.Compose, k.Down, k.PageUp, k.Tab, k.Panel, k.Quit}
	}
	switch h.panelMode {
	case view.ModeDetail:
		return []key.Binding{k.Down, k.Toggle, k.Back, k.Delete, k.Refresh, k.Tab, k.Quit}
	case view.ModeList:
		return []key.Binding{k.Down, k.Open, k.PlansTab, k.TodosTab, k.BudgetsTab, k.Delete, k.Refresh, k.Quit}
	default:
		return []key.Binding{k.Panel, k.Tab, k.Quit}
	}
}

// formatHelp formats a list of key bindings as help text.
func formatHelp(bindings []key.Binding) string {
	var parts []string
	for _, b := range bindings {
		help := b.Help()
		parts = append(parts, help.Key+": "+help.Desc)
	}
	return strings.Join(parts, "  ")
}
