package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor   = lipgloss.Color("#0E7490") // Teal
	secondaryColor = lipgloss.Color("#10B981") // Green
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	errorColor     = lipgloss.Color("#EF4444") // Red
	warningColor   = lipgloss.Color("#F59E0B") // Amber

	// Header styles
	headerContainerStyle = lipgloss.NewStyle().
				Background(primaryColor)

	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(primaryColor).
				Padding(0, 1)

	headerStatsStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#E0E0E0")).
				Background(primaryColor).
				Padding(0, 1)

	headerSendingStyle = lipgloss.NewStyle().
				Foreground(warningColor).
				Background(primaryColor)

	// Status bar style
	statusStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)

	// Chat styles
	chatUserStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true) // green
	chatAssistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true) // blue
	chatTimeStyle      = lipgloss.NewStyle().Foreground(mutedColor)
	chatPendingStyle   = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
	chatFailedStyle    = lipgloss.NewStyle().Foreground(errorColor)

	welcomeTitleStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Bold(true)

	welcomeBodyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#A0A0A0"))

	paneBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor)

	paneFocusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(primaryColor)

	// Input line styles (inline, docked at the bottom of the chat pane)
	inputLineStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#2D2D2D")).
			Padding(0, 1)

	inputLineFocusedStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#3B3B3B")).
				Padding(0, 1)

	// Panel styles
	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A0A0A0")).
			Padding(0, 1)

	tabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Bold(true).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	rowSelectedStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#3B3B3B")).
				Padding(0, 1)

	rowTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true)

	rowMetaStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	detailHeadingStyle = lipgloss.NewStyle().
				Foreground(primaryColor).
				Bold(true)

	detailBackStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	itemDoneStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Strikethrough(true)

	totalStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(1, 2)

	// Delete confirmation styles
	deleteConfirmStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#4B2B2B")).
				Padding(0, 1)

	deleteConfirmLabelStyle = lipgloss.NewStyle().
				Foreground(errorColor).
				Bold(true)

	deleteConfirmHintStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#A0A0A0"))

	// Error display styles
	errorBarStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Padding(0, 1)
)
