package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/roam/internal/api"
	"github.com/tessro/roam/internal/outline"
	"github.com/tessro/roam/internal/view"
)

// Panel is the document side pane: tabs, a document list, or one open document.
type Panel struct {
	width   int
	height  int
	focused bool

	screen   view.Screen
	selected int
	viewport viewport.Model
	ready    bool

	// Rendered plan markdown, keyed by filename, content and width.
	planKey      string
	planRendered string
}

// NewPanel creates an empty panel.
func NewPanel() Panel {
	return Panel{}
}

// SetSize updates the component dimensions, border included.
func (p *Panel) SetSize(width, height int) {
	p.width = width
	p.height = height

	// Border plus the tab row.
	contentWidth := max(width-2, 1)
	contentHeight := max(height-3, 1)
	if !p.ready {
		p.viewport = viewport.New(contentWidth, contentHeight)
		p.ready = true
	} else {
		p.viewport.Width = contentWidth
		p.viewport.Height = contentHeight
	}
	p.updateContent()
}

// SetFocused sets the focus state.
func (p *Panel) SetFocused(focused bool) {
	p.focused = focused
}

// SetScreen replaces what the panel shows. Selection and scroll reset when
// a different list or document comes into view.
func (p *Panel) SetScreen(s view.Screen) {
	if screenKey(s) != screenKey(p.screen) {
		p.selected = 0
		p.viewport.GotoTop()
	}
	p.screen = s
	p.clampSelection()
	p.updateContent()
}

// Screen returns the screen currently shown.
func (p *Panel) Screen() view.Screen {
	return p.screen
}

func screenKey(s view.Screen) string {
	switch s.Mode {
	case view.ModeDetail:
		return "detail:" + string(s.Detail.Kind) + ":" + s.Detail.Filename
	case view.ModeList:
		for _, t := range s.Tabs {
			if t.Active {
				return "list:" + string(t.Kind)
			}
		}
		return "list"
	default:
		return "hidden"
	}
}

// itemCount is the number of selectable lines in the current screen.
func (p *Panel) itemCount() int {
	switch p.screen.Mode {
	case view.ModeList:
		return len(p.screen.Rows)
	case view.ModeDetail:
		switch p.screen.Detail.Kind {
		case api.KindTodo:
			return len(p.screen.Detail.TodoItems)
		case api.KindBudget:
			return len(p.screen.Detail.BudgetItems)
		}
	}
	return 0
}

func (p *Panel) clampSelection() {
	n := p.itemCount()
	if p.selected >= n {
		p.selected = n - 1
	}
	if p.selected < 0 {
		p.selected = 0
	}
}

// MoveUp selects the previous line, or scrolls a plan.
func (p *Panel) MoveUp() {
	if p.itemCount() == 0 {
		p.viewport.LineUp(1)
		return
	}
	if p.selected > 0 {
		p.selected--
	}
	p.updateContent()
}

// MoveDown selects the next line, or scrolls a plan.
func (p *Panel) MoveDown() {
	if p.itemCount() == 0 {
		p.viewport.LineDown(1)
		return
	}
	if p.selected < p.itemCount()-1 {
		p.selected++
	}
	p.updateContent()
}

// MoveToTop selects the first line.
func (p *Panel) MoveToTop() {
	p.selected = 0
	p.viewport.GotoTop()
	p.updateContent()
}

// MoveToBottom selects the last line.
func (p *Panel) MoveToBottom() {
	if n := p.itemCount(); n > 0 {
		p.selected = n - 1
	}
	p.viewport.GotoBottom()
	p.updateContent()
}

// PageUp scrolls up by one page.
func (p *Panel) PageUp() {
	p.viewport.ViewUp()
}

// PageDown scrolls down by one page.
func (p *Panel) PageDown() {
	p.viewport.ViewDown()
}

// SelectedRow returns the highlighted list row.
func (p *Panel) SelectedRow() (view.Row, bool) {
	if p.screen.Mode != view.ModeList || p.selected >= len(p.screen.Rows) {
		return view.Row{}, false
	}
	return p.screen.Rows[p.selected], true
}

// SelectedTodoItem returns the highlighted item of an open todo list.
func (p *Panel) SelectedTodoItem() (api.TodoItem, bool) {
	d := p.screen.Detail
	if p.screen.Mode != view.ModeDetail || d.Kind != api.KindTodo || p.selected >= len(d.TodoItems) {
		return api.TodoItem{}, false
	}
	return d.TodoItems[p.selected], true
}

// Target returns the document a delete would act on: the open document,
// or the highlighted list row.
func (p *Panel) Target() (api.Kind, string, bool) {
	switch p.screen.Mode {
	case view.ModeDetail:
		return p.screen.Detail.Kind, p.screen.Detail.Filename, true
	case view.ModeList:
		if row, ok := p.SelectedRow(); ok {
			return row.Kind, row.Filename, true
		}
	}
	return "", "", false
}

// updateContent re-renders the body and keeps the selection visible.
func (p *Panel) updateContent() {
	if !p.ready {
		return
	}

	var body string
	line := -1
	switch p.screen.Mode {
	case view.ModeList:
		body, line = p.renderList()
	case view.ModeDetail:
		body, line = p.renderDetail()
	}
	p.viewport.SetContent(body)

	if line < 0 {
		return
	}
	if line < p.viewport.YOffset {
		p.viewport.SetYOffset(line)
	} else if line >= p.viewport.YOffset+p.viewport.Height {
		p.viewport.SetYOffset(line - p.viewport.Height + 1)
	}
}

// renderList returns the list body and the line of the selected row.
func (p *Panel) renderList() (string, int) {
	s := p.screen
	if len(s.Rows) == 0 {
		return emptyStyle.Render(wrap(s.EmptyHint, p.viewport.Width-4)), -1
	}

	var lines []string
	selectedLine := -1
	for i, row := range s.Rows {
		style := rowStyle
		if i == p.selected && p.focused {
			style = rowSelectedStyle
		}
		if i == p.selected {
			selectedLine = len(lines)
		}
		meta := row.Date
		if row.Summary != "" {
			meta = row.Summary + "  •  " + row.Date
		}
		width := max(p.viewport.Width, 1)
		lines = append(lines,
			style.Width(width).Render(rowTitleStyle.Render(row.Title)),
			style.Width(width).Render(rowMetaStyle.Render(meta)),
			"",
		)
	}
	return strings.Join(lines, "\n"), selectedLine
}

// renderDetail returns the open document and the line of the selected item.
func (p *Panel) renderDetail() (string, int) {
	d := p.screen.Detail
	width := max(p.viewport.Width, 1)

	lines := []string{
		detailBackStyle.Render(d.BackLabel),
		"",
		detailHeadingStyle.Render(wrap(d.Heading, width)),
	}
	if d.Dates != "" {
		lines = append(lines, rowMetaStyle.Render(d.Dates))
	}
	lines = append(lines, "")

	selectedLine := -1
	switch d.Kind {
	case api.KindPlan:
		if sections := planSections(d.Content); sections != "" {
			lines = append(lines, rowMetaStyle.Render(wrap(sections, width)), "")
		}
		lines = append(lines, p.renderPlan(d.Filename, d.Content, width))

	case api.KindTodo:
		lines = append(lines, rowMetaStyle.Render(d.Progress), "")
		for i, item := range d.TodoItems {
			box, text := "[ ]", item.Text
			if item.Completed {
				box = "[x]"
				text = itemDoneStyle.Render(text)
			}
			if i == p.selected {
				selectedLine = len(lines)
			}
			lines = append(lines, p.itemStyle(i).Width(width).Render(box+" "+text))
		}

	case api.KindBudget:
		for i, item := range d.BudgetItems {
			amount := view.Money(item.Amount)
			gap := max(width-lipgloss.Width(item.Name)-lipgloss.Width(amount)-2, 1)
			if i == p.selected {
				selectedLine = len(lines)
			}
			lines = append(lines, p.itemStyle(i).Width(width).Render(item.Name+strings.Repeat(" ", gap)+amount))
		}
		lines = append(lines, "", totalStyle.Render("Total: "+d.Total))
	}

	if d.EmptyHint != "" {
		lines = append(lines, emptyStyle.Render(wrap(d.EmptyHint, width-4)))
	}
	return strings.Join(lines, "\n"), selectedLine
}

func (p *Panel) itemStyle(i int) lipgloss.Style {
	if i == p.selected && p.focused {
		return rowSelectedStyle
	}
	return rowStyle
}

// renderPlan renders plan markdown for the terminal, caching the last result.
func (p *Panel) renderPlan(filename, content string, width int) string {
	key := fmt.Sprintf("%s\x00%d\x00%s", filename, width, content)
	if key == p.planKey {
		return p.planRendered
	}
	out, err := RenderMarkdown(content, width)
	if err != nil {
		slog.Warn("render plan markdown failed", "filename", filename, "error", err)
		out = wrap(content, width)
	}
	p.planKey = key
	p.planRendered = out
	return out
}

// RenderMarkdown renders markdown for the terminal at the given width.
func RenderMarkdown(input string, width int) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", nil
	}
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithWordWrap(width),
		glamour.WithStandardStyle("dark"),
	)
	if err != nil {
		return "", err
	}
	out, err := renderer.Render(input)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// planSections lists a plan's second-level headings, e.g. its days.
func planSections(content string) string {
	var names []string
	for _, h := range outline.Headings(content) {
		if h.Level == 2 {
			names = append(names, h.Text)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return "Sections: " + strings.Join(names, " · ")
}

// View renders the panel.
func (p Panel) View() string {
	borderStyle := paneBorderStyle
	if p.focused {
		borderStyle = paneFocusedBorderStyle
	}
	inner := lipgloss.JoinVertical(lipgloss.Left, p.renderTabs(), p.viewport.View())
	return borderStyle.Width(max(p.width-2, 1)).Height(max(p.height-2, 1)).Render(inner)
}

func (p Panel) renderTabs() string {
	var tabs []string
	for _, t := range p.screen.Tabs {
		style := tabStyle
		if t.Active {
			style = tabActiveStyle
		}
		tabs = append(tabs, style.Render(fmt.Sprintf("%s (%d)", t.Label, t.Count)))
	}
	return lipgloss.NewStyle().MaxWidth(max(p.width-2, 1)).Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}
