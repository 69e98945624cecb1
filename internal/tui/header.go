package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize/english"
)

// spinnerFrames animate the header while a reply is pending.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Header displays the roam header with branding and status info.
type Header struct {
	width int

	server string

	// Document counts
	plans   int
	todos   int
	budgets int

	sending      bool
	spinnerFrame int
}

// NewHeader creates a new header component.
func NewHeader(server string) Header {
	return Header{server: server}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.width = width
}

// SetCounts updates the document counts.
func (h *Header) SetCounts(plans, todos, budgets int) {
	h.plans = plans
	h.todos = todos
	h.budgets = budgets
}

// SetSending shows or hides the pending-reply indicator.
func (h *Header) SetSending(sending bool) {
	h.sending = sending
}

// SetSpinnerFrame advances the pending-reply animation.
func (h *Header) SetSpinnerFrame(frame int) {
	h.spinnerFrame = frame
}

// View renders the header.
func (h Header) View() string {
	brand := headerBrandStyle.Render("🧭 roam")

	var status string
	if h.sending {
		frame := spinnerFrames[h.spinnerFrame%len(spinnerFrames)]
		status = headerSendingStyle.Render(" " + frame + " thinking...")
	}

	statsParts := []string{
		english.Plural(h.plans, "plan", ""),
		english.Plural(h.todos, "todo list", ""),
		english.Plural(h.budgets, "budget", ""),
	}
	if h.server != "" {
		statsParts = append(statsParts, h.server)
	}
	stats := headerStatsStyle.Render(fmt.Sprintf("  %s", strings.Join(statsParts, "  •  ")))

	brandWidth := lipgloss.Width(brand)
	statusWidth := lipgloss.Width(status)
	statsWidth := lipgloss.Width(stats)
	spacerWidth := h.width - brandWidth - statusWidth - statsWidth
	if spacerWidth < 0 {
		spacerWidth = 0
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	content := lipgloss.JoinHorizontal(lipgloss.Top, brand, status, spacer, stats)

	return headerContainerStyle.Width(h.width).Render(content)
}
