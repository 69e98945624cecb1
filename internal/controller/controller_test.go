package controller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/tessro/roam/internal/api"
	"github.com/tessro/roam/internal/api/apitest"
)

func newTestController(t *testing.T) (*Controller, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	return New(srv.Client()), srv
}

func addPacking(srv *apitest.Server) {
	srv.AddTodo(api.TodoList{
		Filename: "t1.json",
		Title:    "Packing",
		Created:  "2025-01-02T09:00:00",
		Updated:  "2025-01-02T09:00:00",
		Items: []api.TodoItem{
			{ID: 1, Text: "passport"},
			{ID: 2, Text: "charger", Completed: true},
		},
	})
}

func TestSend_CreateTodoScenario(t *testing.T) {
	c, srv := newTestController(t)
	ctx := context.Background()

	srv.OnChat(func(s *apitest.Server, msg string) api.ChatResponse {
		s.AddTodo(api.TodoList{Filename: "trip1.json", Title: "Trip", Created: "2025-03-01T10:00:00", Items: []api.TodoItem{}})
		return api.ChatResponse{Response: "Created a todo list.", Timestamp: "2025-03-01T10:00:01", ShowTodo: "trip1.json"}
	})

	entry, err := c.Send(ctx, "create a new todo list")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if entry.Assistant != "Created a todo list." || entry.Failed || entry.Pending {
		t.Errorf("entry = %+v", entry)
	}

	st := c.State()
	if !st.ShowPanel {
		t.Error("panel should be shown after a reply names a document")
	}
	if !st.Current.Is(api.KindTodo, "trip1.json") {
		t.Fatalf("current = %+v, want trip1.json open", st.Current)
	}
	if n, done := len(st.Current.Todo.Items), st.Current.Todo.CompletedCount(); n != 0 || done != 0 {
		t.Errorf("open todo shows %d/%d, want 0/0", done, n)
	}
	if len(st.Todos) != 1 || st.Todos[0].Filename != "trip1.json" || st.Todos[0].ItemCount != 0 {
		t.Errorf("refreshed todos = %+v", st.Todos)
	}
}

func TestSend_ShowPrecedence(t *testing.T) {
	c, srv := newTestController(t)
	srv.AddPlan(api.TravelPlan{Filename: "p1.md", Destination: "Japan"}, "2025-01-01T00:00:00")
	addPacking(srv)
	srv.OnChat(func(*apitest.Server, string) api.ChatResponse {
		return api.ChatResponse{Response: "both", ShowPlan: "p1.md", ShowTodo: "t1.json"}
	})

	if _, err := c.Send(context.Background(), "show me"); err != nil {
		t.Fatal(err)
	}
	if !c.State().Current.Is(api.KindPlan, "p1.md") {
		t.Errorf("show_plan should win, current = %+v", c.State().Current)
	}
	if srv.CountRequests("GET /todo-lists/t1.json") != 0 {
		t.Error("show_todo should be ignored when show_plan is set")
	}
}

// Budgets have no stale-view correction: a reply that changes the open
// budget without naming it leaves the displayed budget stale, while the
// refreshed summary shows the new total.
func TestSend_OpenBudgetIsNotReopened(t *testing.T) {
	c, srv := newTestController(t)
	ctx := context.Background()
	srv.AddBudget(api.Budget{Filename: "b1.json", Title: "Vietnam", Created: "2025-01-03T09:00:00", Items: []api.BudgetItem{}})

	if err := c.SelectDocument(ctx, api.KindBudget, "b1.json"); err != nil {
		t.Fatal(err)
	}
	srv.OnChat(func(s *apitest.Server, _ string) api.ChatResponse {
		s.AddBudgetItem("b1.json", api.BudgetItem{ID: 1, Name: "hotel", Amount: 120})
		return api.ChatResponse{Response: "Added hotel."}
	})

	if _, err := c.Send(ctx, "add hotel $120 to my budget"); err != nil {
		t.Fatal(err)
	}

	st := c.State()
	if len(st.Budgets) != 1 || st.Budgets[0].TotalAmount != 120 {
		t.Fatalf("refreshed budgets = %+v, want total 120", st.Budgets)
	}
	if !st.Current.Is(api.KindBudget, "b1.json") {
		t.Fatalf("budget should still be open, current = %+v", st.Current)
	}
	if got := len(st.Current.Budget.Items); got != 0 {
		t.Errorf("open budget has %d items, want 0 (stale until re-selected)", got)
	}
	if got := srv.CountRequests("GET /budgets/b1.json"); got != 1 {
		t.Errorf("budget fetched %d times, want 1", got)
	}
}

func TestSend_OpenTodoIsReopened(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(s *apitest.Server)
		wantFile  string
		wantItems int
	}{
		{
			name: "items added in place",
			mutate: func(s *apitest.Server) {
				s.AddTodoItem("t1.json", api.TodoItem{ID: 3, Text: "adapter"})
			},
			wantFile:  "t1.json",
			wantItems: 3,
		},
		{
			name: "rewritten under a new filename, matched by title",
			mutate: func(s *apitest.Server) {
				s.Remove("t1.json")
				s.AddTodo(api.TodoList{Filename: "t1-v2.json", Title: "Packing", Created: "2025-03-01T00:00:00",
					Items: []api.TodoItem{{ID: 1, Text: "passport"}, {ID: 2, Text: "charger"}, {ID: 3, Text: "adapter"}, {ID: 4, Text: "socks"}}})
			},
			wantFile:  "t1-v2.json",
			wantItems: 4,
		},
		{
			name: "renamed, matched by created",
			mutate: func(s *apitest.Server) {
				s.Remove("t1.json")
				s.AddTodo(api.TodoList{Filename: "t1.json", Title: "Packing list", Created: "2025-01-02T09:00:00",
					Items: []api.TodoItem{{ID: 1, Text: "passport"}}})
			},
			wantFile:  "t1.json",
			wantItems: 1,
		},
		{
			name: "no match keeps the stale view",
			mutate: func(s *apitest.Server) {
				s.Remove("t1.json")
			},
			wantFile:  "t1.json",
			wantItems: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, srv := newTestController(t)
			ctx := context.Background()
			addPacking(srv)
			if err := c.SelectDocument(ctx, api.KindTodo, "t1.json"); err != nil {
				t.Fatal(err)
			}
			srv.OnChat(func(s *apitest.Server, _ string) api.ChatResponse {
				tt.mutate(s)
				return api.ChatResponse{Response: "done"}
			})

			if _, err := c.Send(ctx, "add an adapter to my packing list"); err != nil {
				t.Fatalf("Send() error = %v", err)
			}

			cur := c.State().Current
			if !cur.Is(api.KindTodo, tt.wantFile) {
				t.Fatalf("current = %+v, want todo %s", cur, tt.wantFile)
			}
			if got := len(cur.Todo.Items); got != tt.wantItems {
				t.Errorf("items = %d, want %d", got, tt.wantItems)
			}
		})
	}
}

func TestSend_Failures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T) Backend
		wantText string
	}{
		{
			name: "server error",
			setup: func(t *testing.T) Backend {
				srv := apitest.NewServer()
				t.Cleanup(srv.Close)
				srv.Fail("POST /chat", http.StatusInternalServerError)
				return srv.Client()
			},
			wantText: ServerErrorText,
		},
		{
			name: "connection refused",
			setup: func(t *testing.T) Backend {
				srv := httptest.NewServer(http.NotFoundHandler())
				client, err := api.New(srv.URL, nil)
				if err != nil {
					t.Fatal(err)
				}
				srv.Close()
				return client
			},
			wantText: NetworkErrorText,
		},
		{
			name: "unreadable reply",
			setup: func(t *testing.T) Backend {
				srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Write([]byte("<html>proxy error</html>"))
				}))
				t.Cleanup(srv.Close)
				client, err := api.New(srv.URL, nil)
				if err != nil {
					t.Fatal(err)
				}
				return client
			},
			wantText: NetworkErrorText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.setup(t))

			var types []ChangeType
			c.Subscribe(func(ch Change) { types = append(types, ch.Type) })

			entry, err := c.Send(context.Background(), "plan a trip")
			if err == nil {
				t.Fatal("Send() should return the failure")
			}
			if !entry.Failed || entry.Assistant != tt.wantText {
				t.Errorf("entry = %+v, want failed with %q", entry, tt.wantText)
			}
			if entry.Timestamp == "" {
				t.Error("failed entry should carry a timestamp")
			}
			for _, typ := range types {
				if typ == DocumentsRefreshed || typ == DocumentOpened {
					t.Errorf("failed send must not cascade, saw %s", typ)
				}
			}
			if st := c.State(); st.Sending || st.FirstLoad {
				t.Errorf("state after failure = %+v", st)
			}
		})
	}
}

func TestSend_EmptyMessage(t *testing.T) {
	c, srv := newTestController(t)
	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := c.Send(context.Background(), text); !errors.Is(err, ErrEmptyMessage) {
			t.Errorf("Send(%q) error = %v, want ErrEmptyMessage", text, err)
		}
	}
	if len(c.State().Entries) != 0 || len(srv.Requests()) != 0 {
		t.Error("blank input should not be sent or recorded")
	}
}

// blockingChat holds Chat until released.
type blockingChat struct {
	Backend
	entered chan struct{}
	release chan struct{}
}

func (b *blockingChat) Chat(ctx context.Context, message string) (*api.ChatResponse, error) {
	close(b.entered)
	<-b.release
	return b.Backend.Chat(ctx, message)
}

func TestSend_Busy(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	b := &blockingChat{Backend: srv.Client(), entered: make(chan struct{}), release: make(chan struct{})}
	c := New(b)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := c.Send(ctx, "first"); err != nil {
			t.Errorf("first Send() error = %v", err)
		}
	}()
	<-b.entered

	if !c.State().Sending {
		t.Error("State().Sending should be true while a reply is pending")
	}
	if _, err := c.Send(ctx, "second"); !errors.Is(err, ErrBusy) {
		t.Errorf("second Send() error = %v, want ErrBusy", err)
	}

	close(b.release)
	wg.Wait()

	entries := c.State().Entries
	if len(entries) != 1 || entries[0].User != "first" {
		t.Errorf("entries = %+v, want only the first message", entries)
	}
	if c.State().Sending {
		t.Error("Sending should be false after the reply")
	}
}

func TestSend_Events(t *testing.T) {
	c, srv := newTestController(t)
	addPacking(srv)
	srv.OnChat(func(*apitest.Server, string) api.ChatResponse {
		return api.ChatResponse{Response: "here", ShowTodo: "t1.json"}
	})

	var types []ChangeType
	c.Subscribe(func(ch Change) { types = append(types, ch.Type) })

	if _, err := c.Send(context.Background(), "show packing"); err != nil {
		t.Fatal(err)
	}
	want := []ChangeType{MessageAppended, MessageCompleted, DocumentOpened, DocumentsRefreshed}
	if len(types) != len(want) {
		t.Fatalf("changes = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("change %d = %s, want %s", i, types[i], want[i])
		}
	}
}

func TestSelectDocument_NotFound(t *testing.T) {
	c, srv := newTestController(t)
	ctx := context.Background()
	addPacking(srv)

	if err := c.SelectDocument(ctx, api.KindTodo, "t1.json"); err != nil {
		t.Fatal(err)
	}
	refreshes := srv.CountRequests("GET /todo-lists")

	err := c.SelectDocument(ctx, api.KindPlan, "missing.md")
	if !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("SelectDocument() error = %v, want ErrNotFound", err)
	}
	if !c.State().Current.Is(api.KindTodo, "t1.json") {
		t.Error("previous document should remain open")
	}
	if srv.CountRequests("GET /todo-lists") != refreshes {
		t.Error("failed open should not refresh")
	}
}

func TestDeleteDocument(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		c, srv := newTestController(t)
		addPacking(srv)
		var asked []string
		confirm := ConfirmFunc(func(kind api.Kind, filename string) bool {
			asked = append(asked, kind.String()+":"+filename)
			return false
		})

		err := c.DeleteDocument(context.Background(), api.KindTodo, "t1.json", confirm)
		if !errors.Is(err, ErrDeclined) {
			t.Fatalf("DeleteDocument() error = %v, want ErrDeclined", err)
		}
		if len(asked) != 1 || asked[0] != "todo:t1.json" {
			t.Errorf("confirm asked %v", asked)
		}
		if srv.CountRequests("DELETE /todo-lists/t1.json") != 0 {
			t.Error("declined delete reached the backend")
		}
	})

	t.Run("nil confirmer declines", func(t *testing.T) {
		c, _ := newTestController(t)
		if err := c.DeleteDocument(context.Background(), api.KindTodo, "t1.json", nil); !errors.Is(err, ErrDeclined) {
			t.Errorf("DeleteDocument() error = %v, want ErrDeclined", err)
		}
	})

	t.Run("open plan removed", func(t *testing.T) {
		c, srv := newTestController(t)
		ctx := context.Background()
		srv.AddPlan(api.TravelPlan{Filename: "p1.md", Destination: "Peru"}, "2025-01-01T00:00:00")
		if err := c.SelectDocument(ctx, api.KindPlan, "p1.md"); err != nil {
			t.Fatal(err)
		}

		if err := c.DeleteDocument(ctx, api.KindPlan, "p1.md", AlwaysConfirm); err != nil {
			t.Fatalf("DeleteDocument() error = %v", err)
		}
		st := c.State()
		if st.Current.IsOpen() {
			t.Errorf("deleted plan still open: %+v", st.Current)
		}
		if len(st.Plans) != 0 {
			t.Errorf("plans = %+v, want none", st.Plans)
		}
	})

	t.Run("backend failure", func(t *testing.T) {
		c, srv := newTestController(t)
		addPacking(srv)
		srv.Fail("DELETE /todo-lists/t1.json", http.StatusInternalServerError)

		err := c.DeleteDocument(context.Background(), api.KindTodo, "t1.json", AlwaysConfirm)
		if !api.IsStatus(err) {
			t.Errorf("DeleteDocument() error = %v, want status error", err)
		}
		if srv.CountRequests("GET /todo-lists") != 0 {
			t.Error("failed delete should not refresh")
		}
	})
}

func TestToggleTodoItem(t *testing.T) {
	c, srv := newTestController(t)
	ctx := context.Background()
	addPacking(srv)

	if err := c.ToggleTodoItem(ctx, 1, true); !errors.Is(err, ErrNoDocument) {
		t.Errorf("ToggleTodoItem() with nothing open = %v, want ErrNoDocument", err)
	}

	if err := c.SelectDocument(ctx, api.KindTodo, "t1.json"); err != nil {
		t.Fatal(err)
	}
	if err := c.ToggleTodoItem(ctx, 1, true); err != nil {
		t.Fatalf("ToggleTodoItem() error = %v", err)
	}

	stored, _ := srv.Todo("t1.json")
	if !stored.Items[0].Completed {
		t.Error("backend item 1 not completed")
	}
	cur := c.State().Current.Todo
	if !cur.Items[0].Completed || !cur.Items[1].Completed {
		t.Errorf("open todo items = %+v", cur.Items)
	}
	if cur.Title != "Packing" || cur.Created != "2025-01-02T09:00:00" {
		t.Errorf("patch changed document fields: %+v", cur)
	}

	if err := c.ToggleTodoItem(ctx, 99, true); !errors.Is(err, ErrNoItem) {
		t.Errorf("ToggleTodoItem(99) = %v, want ErrNoItem", err)
	}
}

func TestToggleTodoItem_FailureLeavesDocument(t *testing.T) {
	c, srv := newTestController(t)
	ctx := context.Background()
	addPacking(srv)
	if err := c.SelectDocument(ctx, api.KindTodo, "t1.json"); err != nil {
		t.Fatal(err)
	}
	srv.Fail("PUT /todo-lists/t1.json", http.StatusInternalServerError)

	if err := c.ToggleTodoItem(ctx, 1, true); err == nil {
		t.Fatal("expected error")
	}
	if c.State().Current.Todo.Items[0].Completed {
		t.Error("failed update should not patch the open document")
	}
}

func TestUpdateBudgetItem(t *testing.T) {
	c, srv := newTestController(t)
	ctx := context.Background()
	srv.AddBudget(api.Budget{Filename: "b1.json", Title: "Vietnam", Items: []api.BudgetItem{
		{ID: 1, Name: "hostel", Amount: 80},
		{ID: 2, Name: "bus", Amount: 15},
	}})
	if err := c.SelectDocument(ctx, api.KindBudget, "b1.json"); err != nil {
		t.Fatal(err)
	}

	if err := c.UpdateBudgetItem(ctx, 1, "hotel", 120); err != nil {
		t.Fatalf("UpdateBudgetItem() error = %v", err)
	}
	stored, _ := srv.Budget("b1.json")
	if stored.Items[0].Name != "hotel" || stored.Items[0].Amount != 120 || stored.Items[1].Amount != 15 {
		t.Errorf("backend items = %+v", stored.Items)
	}
	if got := c.State().Current.Budget.Total(); got != 135 {
		t.Errorf("open budget total = %v, want 135", got)
	}

	if err := c.ToggleTodoItem(ctx, 1, true); !errors.Is(err, ErrNoDocument) {
		t.Errorf("ToggleTodoItem() with a budget open = %v, want ErrNoDocument", err)
	}
}

func TestPanelAndTabs(t *testing.T) {
	c, srv := newTestController(t)
	ctx := context.Background()
	addPacking(srv)

	st := c.State()
	if !st.ShowPanel || st.ActiveTab != api.KindPlan {
		t.Fatalf("initial state = %+v", st)
	}

	// Switching tabs on a visible panel uses the cached lists.
	c.ChangeTab(ctx, api.KindTodo)
	if srv.CountRequests("GET /todo-lists") != 0 {
		t.Error("tab change on a visible panel should not refresh")
	}
	if c.State().ActiveTab != api.KindTodo {
		t.Error("active tab not updated")
	}

	if err := c.SelectDocument(ctx, api.KindTodo, "t1.json"); err != nil {
		t.Fatal(err)
	}
	c.BackToList()
	st = c.State()
	if st.Current.IsOpen() || st.ActiveTab != api.KindTodo || !st.ShowPanel {
		t.Errorf("after BackToList state = %+v", st)
	}

	if err := c.SelectDocument(ctx, api.KindTodo, "t1.json"); err != nil {
		t.Fatal(err)
	}
	c.HidePanel()
	st = c.State()
	if st.ShowPanel || st.Current.IsOpen() {
		t.Errorf("after HidePanel state = %+v", st)
	}

	// First reveal through a tab refreshes.
	before := srv.CountRequests("GET /budgets")
	c.ChangeTab(ctx, api.KindBudget)
	if srv.CountRequests("GET /budgets") != before+1 {
		t.Error("tab change on a hidden panel should refresh")
	}
	if !c.State().ShowPanel {
		t.Error("tab change should reveal the panel")
	}

	c.HidePanel()
	before = srv.CountRequests("GET /travel-plans")
	c.ShowPanel(ctx)
	if srv.CountRequests("GET /travel-plans") != before+1 || !c.State().ShowPanel {
		t.Error("ShowPanel should reveal and refresh")
	}
}

func TestHistory(t *testing.T) {
	c, srv := newTestController(t)
	ctx := context.Background()
	addPacking(srv)
	srv.SetHistory([]api.Message{{User: "hi", Assistant: "hello", Timestamp: "2025-01-01T00:00:00"}})

	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	st := c.State()
	if len(st.Entries) != 1 || st.FirstLoad {
		t.Fatalf("after Start entries = %+v firstLoad = %v", st.Entries, st.FirstLoad)
	}
	if len(st.Todos) != 1 {
		t.Errorf("Start should load documents, todos = %+v", st.Todos)
	}

	if err := c.SelectDocument(ctx, api.KindTodo, "t1.json"); err != nil {
		t.Fatal(err)
	}
	if err := c.ClearHistory(ctx); err != nil {
		t.Fatalf("ClearHistory() error = %v", err)
	}
	st = c.State()
	if len(st.Entries) != 0 || !st.FirstLoad || st.ShowPanel || st.Current.IsOpen() {
		t.Errorf("after ClearHistory state = %+v", st)
	}
}

func TestClearHistory_FailureKeepsConversation(t *testing.T) {
	c, srv := newTestController(t)
	ctx := context.Background()
	srv.SetHistory([]api.Message{{User: "hi", Assistant: "hello"}})
	if err := c.LoadHistory(ctx); err != nil {
		t.Fatal(err)
	}
	srv.Fail("DELETE /history", http.StatusInternalServerError)

	if err := c.ClearHistory(ctx); err == nil {
		t.Fatal("expected error")
	}
	if len(c.State().Entries) != 1 {
		t.Error("conversation should be kept when the backend clear fails")
	}
}
