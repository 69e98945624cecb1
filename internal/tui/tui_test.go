package tui

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/roam/internal/api"
	"github.com/tessro/roam/internal/api/apitest"
	"github.com/tessro/roam/internal/controller"
	"github.com/tessro/roam/internal/view"
)

func newTestModel(t *testing.T, opts Options) (Model, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	m, cancel := New(context.Background(), controller.New(srv.Client()), opts)
	t.Cleanup(cancel)

	m, _ = update(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, srv
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// run executes cmd and any batched commands, feeding each result back into m.
// Only use it for commands that neither tick nor wait on the change channel.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case nil:
		return m
	case tea.BatchMsg:
		for _, c := range msg {
			m = run(t, m, c)
		}
		return m
	default:
		m, next := update(m, msg)
		return run(t, m, next)
	}
}

// quits reports whether cmd, or a command batched in it, quits the program.
func quits(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	switch msg := cmd().(type) {
	case tea.QuitMsg:
		return true
	case tea.BatchMsg:
		for _, c := range msg {
			if quits(c) {
				return true
			}
		}
	}
	return false
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = update(m, keyMsg(k))
	}
	return m, cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func TestModel_InitialState(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	if !m.modeState.IsInputting() {
		t.Errorf("mode = %v, want input", m.modeState.Mode)
	}
	if !m.chatView.Welcome() {
		t.Error("welcome screen should show before any message")
	}
	if !m.panelOpen || m.panel.Screen().Mode != view.ModeList {
		t.Errorf("panel should start open on a list, got %v", m.panel.Screen().Mode)
	}
	if !strings.Contains(m.View(), "🧭 roam") {
		t.Error("View() missing header brand")
	}
}

func TestModel_StartLoadsHistory(t *testing.T) {
	m, srv := newTestModel(t, Options{})
	srv.SetHistory([]api.Message{{User: "hi", Assistant: "hello", Timestamp: "2025-01-01T10:00:00"}})

	m, _ = update(m, m.start()())

	if m.chatView.Welcome() {
		t.Error("welcome screen should be replaced by loaded history")
	}
	if len(m.chatView.entries) != 1 || m.chatView.entries[0].Assistant != "hello" {
		t.Errorf("entries = %+v", m.chatView.entries)
	}
}

func TestModel_SubmitSendsMessage(t *testing.T) {
	histPath := filepath.Join(t.TempDir(), "input_history")
	m, srv := newTestModel(t, Options{HistoryPath: histPath})
	srv.OnChat(func(s *apitest.Server, msg string) api.ChatResponse {
		s.AddTodo(api.TodoList{Filename: "trip1.json", Title: "Trip", Created: "2025-03-01T10:00:00", Items: []api.TodoItem{}})
		return api.ChatResponse{Response: "Created a todo list.", Timestamp: "2025-03-01T10:00:01", ShowTodo: "trip1.json"}
	})

	m.inputLine.input.SetValue("create a new todo list")
	m, cmd := press(t, m, "enter")
	if cmd == nil {
		t.Fatal("submit returned no command")
	}
	if m.inputLine.Value() != "" {
		t.Errorf("input not cleared: %q", m.inputLine.Value())
	}

	m = run(t, m, cmd)

	if len(m.chatView.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(m.chatView.entries))
	}
	if got := m.chatView.entries[0].Assistant; got != "Created a todo list." {
		t.Errorf("reply = %q", got)
	}
	screen := m.panel.Screen()
	if screen.Mode != view.ModeDetail || screen.Detail.Filename != "trip1.json" {
		t.Errorf("panel = %v, want trip1.json open", screen.Mode)
	}

	data, err := os.ReadFile(histPath)
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	if string(data) != "create a new todo list\n" {
		t.Errorf("history file = %q", data)
	}
}

func TestModel_SubmitBlankIsIgnored(t *testing.T) {
	m, _ := newTestModel(t, Options{})
	m.inputLine.input.SetValue("   ")

	_, cmd := press(t, m, "enter")
	if cmd != nil {
		if msg := cmd(); msg != nil {
			t.Errorf("blank submit produced %T", msg)
		}
	}
}

func TestModel_SubmitWhileReplyPendingKeepsText(t *testing.T) {
	m, srv := newTestModel(t, Options{})
	release := make(chan struct{})
	srv.OnChat(func(s *apitest.Server, msg string) api.ChatResponse {
		<-release
		return api.ChatResponse{Response: "ok", Timestamp: "2025-03-01T10:00:00"}
	})

	done := make(chan error, 1)
	go func() {
		_, err := m.ctrl.Send(context.Background(), "first")
		done <- err
	}()
	deadline := time.Now().Add(5 * time.Second)
	for !m.ctrl.State().Sending {
		if time.Now().After(deadline) {
			close(release)
			t.Fatal("first send never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	m.inputLine.input.SetValue("second")
	m, cmd := press(t, m, "enter")
	if cmd != nil {
		t.Error("submit while a reply is pending returned a command")
	}
	if got := m.inputLine.Value(); got != "second" {
		t.Errorf("input = %q, want the unsent text kept", got)
	}
	if len(m.inputLine.History()) != 0 {
		t.Errorf("unsent text added to recall: %q", m.inputLine.History())
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first send: %v", err)
	}
	if got := srv.CountRequests("POST /chat"); got != 1 {
		t.Errorf("POST /chat = %d, want 1", got)
	}

	m, cmd = press(t, m, "enter")
	if cmd == nil || m.inputLine.Value() != "" {
		t.Errorf("submit after the reply: cmd=%v input=%q", cmd != nil, m.inputLine.Value())
	}
}

func TestModel_SendFailureShowsInChat(t *testing.T) {
	m, srv := newTestModel(t, Options{})
	srv.Fail("POST /chat", http.StatusInternalServerError)

	m.inputLine.input.SetValue("hello")
	m, cmd := press(t, m, "enter")
	m = run(t, m, cmd)

	if len(m.chatView.entries) != 1 || !m.chatView.entries[0].Failed {
		t.Fatalf("entries = %+v", m.chatView.entries)
	}
	if m.chatView.entries[0].Assistant != controller.ServerErrorText {
		t.Errorf("reply = %q", m.chatView.entries[0].Assistant)
	}
	if m.helpBar.Error() != "" {
		t.Errorf("status bar error = %q, the chat already explains the failure", m.helpBar.Error())
	}
}

func TestModel_FocusAndPanelKeys(t *testing.T) {
	m, _ := newTestModel(t, Options{})

	m, _ = press(t, m, "esc")
	if !m.modeState.IsNormal() {
		t.Fatalf("esc should leave input mode, mode = %v", m.modeState.Mode)
	}

	m, _ = press(t, m, "tab")
	if m.modeState.Focus != FocusPanel || !m.panel.focused {
		t.Errorf("tab should focus the panel")
	}

	m, _ = press(t, m, "p")
	if m.panelOpen {
		t.Error("p should hide the panel")
	}
	if m.modeState.Focus != FocusChat {
		t.Error("focus should return to the chat when the panel hides")
	}

	m, _ = press(t, m, "tab")
	if m.modeState.Focus != FocusChat {
		t.Error("tab should do nothing while the panel is hidden")
	}

	m, _ = press(t, m, "i")
	if !m.modeState.IsInputting() {
		t.Errorf("i should enter input mode, mode = %v", m.modeState.Mode)
	}

	_, cmd := press(t, m, "ctrl+c")
	if cmd == nil {
		t.Fatal("ctrl+c returned no command")
	}
	if !quits(cmd) {
		t.Error("ctrl+c should quit")
	}
}

func TestModel_OpenToggleAndBack(t *testing.T) {
	m, srv := newTestModel(t, Options{})
	srv.AddTodo(api.TodoList{
		Filename: "t1.json",
		Title:    "Packing",
		Created:  "2025-01-02T09:00:00",
		Items:    []api.TodoItem{{ID: 1, Text: "passport"}, {ID: 2, Text: "charger"}},
	})
	m = run(t, m, m.refresh())

	m, _ = press(t, m, "esc")
	m, cmd := press(t, m, "2")
	m = run(t, m, cmd)
	if m.modeState.Focus != FocusPanel {
		t.Fatal("switching tabs should focus the panel")
	}
	row, ok := m.panel.SelectedRow()
	if !ok || row.Filename != "t1.json" {
		t.Fatalf("SelectedRow() = %+v, %v", row, ok)
	}

	m, cmd = press(t, m, "enter")
	m = run(t, m, cmd)
	if s := m.panel.Screen(); s.Mode != view.ModeDetail || s.Detail.Filename != "t1.json" {
		t.Fatalf("panel = %v, want t1.json open", s.Mode)
	}

	m, _ = press(t, m, "j")
	m, cmd = press(t, m, "space")
	m = run(t, m, cmd)

	todo, _ := srv.Todo("t1.json")
	if todo.Items[0].Completed || !todo.Items[1].Completed {
		t.Errorf("backend items = %+v, want only item 2 completed", todo.Items)
	}
	if got := m.panel.Screen().Detail.Progress; got != "1 of 2 completed" {
		t.Errorf("Progress = %q", got)
	}

	m, _ = press(t, m, "esc")
	if m.panel.Screen().Mode != view.ModeList {
		t.Errorf("esc should return to the list, got %v", m.panel.Screen().Mode)
	}
}

func TestModel_DeleteConfirmation(t *testing.T) {
	m, srv := newTestModel(t, Options{ConfirmDeletes: true})
	srv.AddPlan(api.TravelPlan{Filename: "p1.md", Destination: "Japan"}, "2025-01-01T00:00:00")
	m = run(t, m, m.refresh())
	m, _ = press(t, m, "esc", "tab")

	m, _ = press(t, m, "d")
	if !m.modeState.IsDeleteConfirming() {
		t.Fatalf("d should ask for confirmation, mode = %v", m.modeState.Mode)
	}
	if !strings.Contains(m.helpBar.View(), "p1.md") {
		t.Errorf("help bar should name the document: %q", m.helpBar.View())
	}

	m, _ = press(t, m, "n")
	if !m.modeState.IsNormal() {
		t.Fatalf("n should cancel, mode = %v", m.modeState.Mode)
	}
	if srv.CountRequests("DELETE /travel-plans/p1.md") != 0 {
		t.Fatal("declined delete reached the backend")
	}

	m, _ = press(t, m, "d")
	m, cmd := press(t, m, "y")
	m = run(t, m, cmd)

	if srv.CountRequests("DELETE /travel-plans/p1.md") != 1 {
		t.Errorf("requests = %v", srv.Requests())
	}
	if rows := m.panel.Screen().Rows; len(rows) != 0 {
		t.Errorf("rows after delete = %+v", rows)
	}
}

func TestModel_DeleteWithoutConfirmation(t *testing.T) {
	m, srv := newTestModel(t, Options{ConfirmDeletes: false})
	srv.AddPlan(api.TravelPlan{Filename: "p1.md", Destination: "Japan"}, "2025-01-01T00:00:00")
	m = run(t, m, m.refresh())
	m, _ = press(t, m, "esc", "tab")

	m, cmd := press(t, m, "d")
	if m.modeState.IsDeleteConfirming() {
		t.Fatal("delete should not ask when confirmation is off")
	}
	run(t, m, cmd)
	if srv.CountRequests("DELETE /travel-plans/p1.md") != 1 {
		t.Errorf("requests = %v", srv.Requests())
	}
}

func TestModel_ErrorShownThenCleared(t *testing.T) {
	m, srv := newTestModel(t, Options{})
	srv.Fail("GET /todo-lists", http.StatusInternalServerError)

	m, _ = update(m, m.refresh()())
	if m.helpBar.Error() == "" {
		t.Fatal("refresh failure should show in the status bar")
	}

	m, _ = update(m, clearErrorMsg{})
	if m.helpBar.Error() != "" || m.err != nil {
		t.Errorf("error not cleared: %q", m.helpBar.Error())
	}
}

func TestModel_ChangeNotification(t *testing.T) {
	m, srv := newTestModel(t, Options{})
	srv.AddBudget(api.Budget{Filename: "b1.json", Title: "Vietnam"})

	// A change made outside the TUI arrives on the change channel.
	m.ctrl.Refresh(context.Background())
	msg := m.waitForChange()()
	if _, ok := msg.(changeMsg); !ok {
		t.Fatalf("waitForChange() = %T, want changeMsg", msg)
	}

	m, cmd := update(m, msg)
	if cmd == nil {
		t.Error("changeMsg should re-arm the change listener")
	}
	if m.header.budgets != 1 {
		t.Errorf("header budgets = %d, want 1", m.header.budgets)
	}
}
