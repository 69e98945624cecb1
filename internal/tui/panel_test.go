package tui

import (
	"strings"
	"testing"

	"github.com/tessro/roam/internal/api"
	"github.com/tessro/roam/internal/registry"
	"github.com/tessro/roam/internal/view"
)

func todoScreen(filename string, items ...api.TodoItem) view.Screen {
	return view.Select(view.Input{
		ShowPanel: true,
		ActiveTab: api.KindTodo,
		Current:   registry.Current{Type: api.KindTodo, Todo: &api.TodoList{Filename: filename, Title: "Packing", Items: items}},
	})
}

func listScreen(tab api.Kind, plans int) view.Screen {
	in := view.Input{ShowPanel: true, ActiveTab: tab}
	for i := 0; i < plans; i++ {
		in.Plans = append(in.Plans, api.TravelPlanSummary{Filename: string(rune('a'+i)) + ".md", Destination: "Place"})
	}
	return view.Select(in)
}

func TestPanel_SelectionFollowsScreen(t *testing.T) {
	p := NewPanel()
	p.SetSize(60, 20)
	p.SetScreen(listScreen(api.KindPlan, 3))

	p.MoveDown()
	p.MoveDown()
	p.MoveDown()
	row, ok := p.SelectedRow()
	if !ok || row.Filename != "c.md" {
		t.Fatalf("SelectedRow() = %+v, %v; want c.md clamped at the end", row, ok)
	}

	// Same list, one row fewer: selection clamps.
	p.SetScreen(listScreen(api.KindPlan, 2))
	if row, _ := p.SelectedRow(); row.Filename != "b.md" {
		t.Errorf("after shrink SelectedRow() = %q, want b.md", row.Filename)
	}

	// A different screen resets the selection.
	p.SetScreen(todoScreen("t1.json", api.TodoItem{ID: 1, Text: "passport"}, api.TodoItem{ID: 2, Text: "charger"}))
	item, ok := p.SelectedTodoItem()
	if !ok || item.ID != 1 {
		t.Errorf("SelectedTodoItem() = %+v, %v; want item 1", item, ok)
	}
	if _, ok := p.SelectedRow(); ok {
		t.Error("SelectedRow() should be empty in detail mode")
	}

	p.MoveToBottom()
	if item, _ := p.SelectedTodoItem(); item.ID != 2 {
		t.Errorf("MoveToBottom() selected item %d", item.ID)
	}
	p.MoveToTop()
	if item, _ := p.SelectedTodoItem(); item.ID != 1 {
		t.Errorf("MoveToTop() selected item %d", item.ID)
	}
}

func TestPanel_Target(t *testing.T) {
	p := NewPanel()
	p.SetSize(60, 20)

	if _, _, ok := p.Target(); ok {
		t.Error("hidden panel should have no target")
	}

	p.SetScreen(listScreen(api.KindPlan, 0))
	if _, _, ok := p.Target(); ok {
		t.Error("empty list should have no target")
	}

	p.SetScreen(listScreen(api.KindPlan, 2))
	p.MoveDown()
	if kind, filename, ok := p.Target(); !ok || kind != api.KindPlan || filename != "b.md" {
		t.Errorf("Target() = %s %s %v", kind, filename, ok)
	}

	p.SetScreen(todoScreen("t1.json"))
	if kind, filename, ok := p.Target(); !ok || kind != api.KindTodo || filename != "t1.json" {
		t.Errorf("Target() = %s %s %v", kind, filename, ok)
	}
}

func TestPanel_RenderDetail(t *testing.T) {
	p := NewPanel()
	p.SetSize(60, 30)
	p.SetScreen(todoScreen("t1.json", api.TodoItem{ID: 1, Text: "passport", Completed: true}, api.TodoItem{ID: 2, Text: "charger"}))

	body, line := p.renderDetail()
	for _, want := range []string{"← Back to Todo Lists", "✅ Packing", "1 of 2 completed", "[x]", "[ ] charger"} {
		if !strings.Contains(body, want) {
			t.Errorf("renderDetail() missing %q:\n%s", want, body)
		}
	}
	if line < 0 {
		t.Error("selected item line not reported")
	}
}

func TestPanel_RenderEmptyList(t *testing.T) {
	p := NewPanel()
	p.SetSize(80, 20)
	p.SetScreen(listScreen(api.KindPlan, 0))

	body, line := p.renderList()
	if !strings.Contains(body, "No travel plans yet") || line != -1 {
		t.Errorf("renderList() = %q, %d", body, line)
	}
}

func TestPlanSections(t *testing.T) {
	content := "# Thailand\n\n## Day 1: Bangkok\n\nTemples.\n\n## Day 2: Chiang Mai\n\n### Food\n"
	if got := planSections(content); got != "Sections: Day 1: Bangkok · Day 2: Chiang Mai" {
		t.Errorf("planSections() = %q", got)
	}
	if got := planSections("just text"); got != "" {
		t.Errorf("planSections() = %q, want empty", got)
	}
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("# Japan\n\nRamen everywhere.", 40)
	if err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}
	if !strings.Contains(out, "Ramen") {
		t.Errorf("RenderMarkdown() = %q", out)
	}
	if out, _ := RenderMarkdown("  ", 40); out != "" {
		t.Errorf("RenderMarkdown(blank) = %q", out)
	}
}
