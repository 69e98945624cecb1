// Package view derives what the document panel shows from controller state.
// Everything here is pure: no I/O, no clocks except the Now passed in.
package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tessro/roam/internal/api"
	"github.com/tessro/roam/internal/registry"
)

// Mode is what the document panel displays.
type Mode int

const (
	// ModeHidden means the panel is closed.
	ModeHidden Mode = iota
	// ModeList shows the active tab's document summaries.
	ModeList
	// ModeDetail shows the open document.
	ModeDetail
)

func (m Mode) String() string {
	switch m {
	case ModeHidden:
		return "hidden"
	case ModeList:
		return "list"
	case ModeDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// Input is the state the panel is derived from.
type Input struct {
	ShowPanel bool
	ActiveTab api.Kind
	Current   registry.Current

	Plans   []api.TravelPlanSummary
	Todos   []api.TodoListSummary
	Budgets []api.BudgetSummary

	// Now anchors relative dates. Zero means dates are shown absolute only.
	Now time.Time
}

// Tab is one list tab with its document count.
type Tab struct {
	Kind   api.Kind
	Label  string
	Count  int
	Active bool
}

// Row is one document in a list.
type Row struct {
	Kind     api.Kind
	Filename string
	Title    string
	Summary  string
	Date     string
}

// Detail is an open document ready to render.
type Detail struct {
	Kind      api.Kind
	Filename  string
	Heading   string
	BackLabel string
	Dates     string

	// Plan
	Content string

	// Todo list
	Progress  string
	TodoItems []api.TodoItem

	// Budget
	BudgetItems []api.BudgetItem
	Total       string

	// EmptyHint is set when a todo list or budget has no items.
	EmptyHint string
}

// Screen is the derived panel.
type Screen struct {
	Mode Mode
	Tabs []Tab

	// List mode.
	Rows      []Row
	EmptyHint string

	// Detail mode.
	Detail *Detail
}

// Select derives the panel from in.
func Select(in Input) Screen {
	if !in.ShowPanel {
		return Screen{Mode: ModeHidden}
	}

	tab := in.ActiveTab
	if tab == "" {
		tab = api.KindPlan
	}
	screen := Screen{Tabs: tabs(in, tab)}

	if d := detail(in, tab); d != nil {
		screen.Mode = ModeDetail
		screen.Detail = d
		return screen
	}

	screen.Mode = ModeList
	screen.Rows = rows(in, tab)
	if len(screen.Rows) == 0 {
		screen.EmptyHint = EmptyListHint(tab)
	}
	return screen
}

func tabs(in Input, active api.Kind) []Tab {
	counts := map[api.Kind]int{
		api.KindPlan:   len(in.Plans),
		api.KindTodo:   len(in.Todos),
		api.KindBudget: len(in.Budgets),
	}
	out := make([]Tab, 0, len(api.Kinds))
	for _, k := range api.Kinds {
		out = append(out, Tab{Kind: k, Label: TabLabel(k), Count: counts[k], Active: k == active})
	}
	return out
}

func rows(in Input, tab api.Kind) []Row {
	var out []Row
	switch tab {
	case api.KindPlan:
		for _, p := range in.Plans {
			out = append(out, Row{
				Kind:     api.KindPlan,
				Filename: p.Filename,
				Title:    "📍 " + p.Destination,
				Date:     Date(p.Created, in.Now),
			})
		}
	case api.KindTodo:
		for _, t := range in.Todos {
			out = append(out, Row{
				Kind:     api.KindTodo,
				Filename: t.Filename,
				Title:    "📝 " + t.Title,
				Summary:  Progress(t.CompletedCount, t.ItemCount),
				Date:     Date(t.Created, in.Now),
			})
		}
	case api.KindBudget:
		for _, b := range in.Budgets {
			out = append(out, Row{
				Kind:     api.KindBudget,
				Filename: b.Filename,
				Title:    "💰 " + b.Title,
				Summary:  fmt.Sprintf("%s (%s)", Money(b.TotalAmount), Items(b.ItemCount)),
				Date:     Date(b.Created, in.Now),
			})
		}
	}
	return out
}

// detail returns the open document, or nil when none is open. The document
// shown is the one Type names, so a slot that disagrees with Type is ignored.
func detail(in Input, tab api.Kind) *Detail {
	c := in.Current
	back := BackLabel(tab)

	switch {
	case c.Type == api.KindPlan && c.Plan != nil:
		return &Detail{
			Kind:      api.KindPlan,
			Filename:  c.Plan.Filename,
			Heading:   fmt.Sprintf("📋 %s Travel Plan", c.Plan.Destination),
			BackLabel: back,
			Content:   c.Plan.Content,
		}
	case c.Type == api.KindTodo && c.Todo != nil:
		d := &Detail{
			Kind:      api.KindTodo,
			Filename:  c.Todo.Filename,
			Heading:   "✅ " + c.Todo.Title,
			BackLabel: back,
			Dates:     Dates(c.Todo.Created, c.Todo.Updated),
			Progress:  Progress(c.Todo.CompletedCount(), len(c.Todo.Items)),
			TodoItems: c.Todo.Items,
		}
		if len(c.Todo.Items) == 0 {
			d.EmptyHint = "No items yet. Add some by chatting with the assistant!"
		}
		return d
	case c.Type == api.KindBudget && c.Budget != nil:
		d := &Detail{
			Kind:        api.KindBudget,
			Filename:    c.Budget.Filename,
			Heading:     "💰 " + c.Budget.Title,
			BackLabel:   back,
			Dates:       Dates(c.Budget.Created, c.Budget.Updated),
			BudgetItems: c.Budget.Items,
			Total:       Money(c.Budget.Total()),
		}
		if len(c.Budget.Items) == 0 {
			d.EmptyHint = "No budget items yet. Add some by chatting with the assistant!"
		}
		return d
	}
	return nil
}

// TabLabel is the tab title for kind.
func TabLabel(kind api.Kind) string {
	switch kind {
	case api.KindPlan:
		return "📋 Travel Plans"
	case api.KindTodo:
		return "✅ Todo Lists"
	case api.KindBudget:
		return "💰 Budgets"
	default:
		return string(kind)
	}
}

// BackLabel names the list the back action returns to.
func BackLabel(tab api.Kind) string {
	switch tab {
	case api.KindTodo:
		return "← Back to Todo Lists"
	case api.KindBudget:
		return "← Back to Budgets"
	default:
		return "← Back to Travel Plans"
	}
}

// EmptyListHint is shown when a tab has no documents.
func EmptyListHint(kind api.Kind) string {
	switch kind {
	case api.KindTodo:
		return `No todo lists yet. Create some by saying "create a new todo list"!`
	case api.KindBudget:
		return `No budgets yet. Create some by saying "create a new budget"!`
	default:
		return "No travel plans yet. Create some by chatting about destinations!"
	}
}

// Progress formats todo completion, e.g. "1 of 3 completed".
func Progress(done, total int) string {
	return fmt.Sprintf("%d of %d completed", done, total)
}

// Items formats an item count.
func Items(n int) string {
	if n == 1 {
		return "1 item"
	}
	return humanize.Comma(int64(n)) + " items"
}

// Money formats a dollar amount with thousands separators and cents.
func Money(amount float64) string {
	if amount < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -amount)
	}
	return "$" + humanize.FormatFloat("#,###.##", amount)
}

// timestamp layouts the backend is known to emit.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime parses a backend timestamp. Timestamps without a zone are UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Date formats a backend timestamp as a calendar date, followed by a
// relative time when now is set. Unparseable input is returned unchanged.
func Date(s string, now time.Time) string {
	t, ok := ParseTime(s)
	if !ok {
		return s
	}
	date := t.Format("Jan 2, 2006")
	if now.IsZero() {
		return date
	}
	return date + " (" + humanize.RelTime(t, now, "ago", "from now") + ")"
}

// Dates formats created and, if different, updated timestamps.
func Dates(created, updated string) string {
	out := "Created: " + Date(created, time.Time{})
	if updated != "" && updated != created {
		out += " • Updated: " + Date(updated, time.Time{})
	}
	return out
}

// WelcomeTitle and Welcome are shown instead of the conversation on first load.
const WelcomeTitle = "🌏 Welcome to your Travel Assistant!"

// Welcome is the body of the first-load screen.
var Welcome = []string{
	"I'm here to help you plan your backpacking adventure. I can:",
	"",
	"  📝 Create and manage travel plans",
	"  ✅ Set up todo lists for your trip",
	"  💰 Track your travel budget",
	"  🗺️ Provide travel advice and recommendations",
	"  🏨 Help with accommodation and activity suggestions",
	"",
	"Try asking me something like:",
	`  "Plan a trip to Thailand"`,
	`  "Create a travel todo list"`,
	`  "Make a budget for Vietnam"`,
	`  "What should I pack?"`,
}

// ShowWelcome reports whether the welcome screen replaces the conversation.
func ShowWelcome(firstLoad bool, entries int) bool {
	return firstLoad && entries == 0
}
