package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/tessro/roam/internal/conversation"
	"github.com/tessro/roam/internal/view"
)

// ChatView displays the conversation, or the welcome screen before the first message.
type ChatView struct {
	entries   []conversation.Entry
	firstLoad bool
	width     int
	height    int
	focused   bool
	viewport  viewport.Model
	ready     bool
}

// NewChatView creates a new chat view component.
func NewChatView() ChatView {
	return ChatView{firstLoad: true}
}

// SetSize updates the component dimensions, border included.
func (v *ChatView) SetSize(width, height int) {
	v.width = width
	v.height = height

	contentWidth := max(width-2, 1)
	contentHeight := max(height-2, 1)

	if !v.ready {
		v.viewport = viewport.New(contentWidth, contentHeight)
		v.ready = true
	} else {
		v.viewport.Width = contentWidth
		v.viewport.Height = contentHeight
	}

	v.updateContent()
}

// SetFocused sets the focus state.
func (v *ChatView) SetFocused(focused bool) {
	v.focused = focused
}

// SetEntries replaces the conversation. The view follows the tail if the
// user was already at the bottom or the conversation grew.
func (v *ChatView) SetEntries(entries []conversation.Entry, firstLoad bool) {
	grew := len(entries) != len(v.entries)
	atBottom := v.viewport.AtBottom()

	v.entries = entries
	v.firstLoad = firstLoad
	v.updateContent()

	if grew || atBottom {
		v.viewport.GotoBottom()
	}
}

// Welcome reports whether the welcome screen is shown.
func (v *ChatView) Welcome() bool {
	return view.ShowWelcome(v.firstLoad, len(v.entries))
}

// ScrollUp scrolls the viewport up.
func (v *ChatView) ScrollUp(n int) {
	v.viewport.LineUp(n)
}

// ScrollDown scrolls the viewport down.
func (v *ChatView) ScrollDown(n int) {
	v.viewport.LineDown(n)
}

// ScrollToTop scrolls to the top.
func (v *ChatView) ScrollToTop() {
	v.viewport.GotoTop()
}

// ScrollToBottom scrolls to the bottom.
func (v *ChatView) ScrollToBottom() {
	v.viewport.GotoBottom()
}

// PageUp scrolls up by one page.
func (v *ChatView) PageUp() {
	v.viewport.ViewUp()
}

// PageDown scrolls down by one page.
func (v *ChatView) PageDown() {
	v.viewport.ViewDown()
}

// updateContent refreshes the viewport content from entries.
func (v *ChatView) updateContent() {
	if !v.ready {
		return
	}

	if v.Welcome() {
		v.viewport.SetContent(renderWelcome(v.viewport.Width))
		return
	}

	parts := make([]string, 0, len(v.entries))
	for _, e := range v.entries {
		parts = append(parts, renderEntry(e, v.viewport.Width))
	}
	v.viewport.SetContent(strings.Join(parts, "\n\n"))
}

// renderEntry renders one exchange: the user's message, then the reply.
func renderEntry(e conversation.Entry, width int) string {
	var b strings.Builder

	b.WriteString(chatUserStyle.Render("You"))
	if t := formatTime(e.Timestamp); t != "" {
		b.WriteString(" " + chatTimeStyle.Render(t))
	}
	b.WriteString("\n")
	b.WriteString(wrap(e.User, width))
	b.WriteString("\n\n")

	b.WriteString(chatAssistantStyle.Render("🧭 Assistant"))
	b.WriteString("\n")
	switch {
	case e.Pending:
		b.WriteString(chatPendingStyle.Render("Thinking..."))
	case e.Failed:
		b.WriteString(chatFailedStyle.Render(wrap(e.Assistant, width)))
	default:
		b.WriteString(wrap(e.Assistant, width))
	}
	return b.String()
}

func renderWelcome(width int) string {
	lines := []string{welcomeTitleStyle.Render(view.WelcomeTitle), ""}
	for _, l := range view.Welcome {
		lines = append(lines, welcomeBodyStyle.Render(wrap(l, width)))
	}
	return strings.Join(lines, "\n")
}

// wrap word-wraps text to width, leaving it alone when width is unknown.
func wrap(text string, width int) string {
	text = strings.TrimRight(text, "\n")
	if width <= 0 {
		return text
	}
	return wordwrap.String(text, width)
}

// formatTime renders a backend timestamp as a local clock time.
func formatTime(ts string) string {
	t, ok := view.ParseTime(ts)
	if !ok {
		return ""
	}
	return t.Local().Format("15:04")
}

// View renders the chat view.
func (v ChatView) View() string {
	borderStyle := paneBorderStyle
	if v.focused {
		borderStyle = paneFocusedBorderStyle
	}
	content := v.viewport.View()
	return borderStyle.Width(max(v.width-2, 1)).Height(max(v.height-2, 1)).
		Render(lipgloss.NewStyle().MaxWidth(max(v.width-2, 1)).Render(content))
}
