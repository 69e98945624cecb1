// Package controller coordinates the conversation, the document registry,
// and panel state. Every user action in the TUI and CLI goes through it.
//
// Methods block on network calls and are safe to call from several
// goroutines at once; the TUI runs them inside tea.Cmds.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/tessro/roam/internal/api"
	"github.com/tessro/roam/internal/conversation"
	"github.com/tessro/roam/internal/event"
	"github.com/tessro/roam/internal/registry"
)

// Backend is the subset of the API client the controller needs.
type Backend interface {
	registry.Backend
	History(ctx context.Context) ([]api.Message, error)
	ClearHistory(ctx context.Context) error
	Chat(ctx context.Context, message string) (*api.ChatResponse, error)
	UpdateTodo(ctx context.Context, filename string, items []api.TodoItem) error
	UpdateBudget(ctx context.Context, filename string, items []api.BudgetItem) error
}

// Compile-time assertion that the API client satisfies Backend.
var _ Backend = (*api.Client)(nil)

// Confirmer asks the user whether a document may be deleted.
type Confirmer interface {
	ConfirmDelete(kind api.Kind, filename string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(kind api.Kind, filename string) bool

// ConfirmDelete calls f.
func (f ConfirmFunc) ConfirmDelete(kind api.Kind, filename string) bool {
	return f(kind, filename)
}

// AlwaysConfirm approves every delete. Use only when the user already
// confirmed out of band, such as with --yes.
var AlwaysConfirm Confirmer = ConfirmFunc(func(api.Kind, string) bool { return true })

// State is a snapshot of everything the views render.
type State struct {
	Entries   []conversation.Entry
	FirstLoad bool
	Sending   bool

	ShowPanel bool
	ActiveTab api.Kind
	Current   registry.Current

	Plans   []api.TravelPlanSummary
	Todos   []api.TodoListSummary
	Budgets []api.BudgetSummary
}

// Controller owns the session state.
type Controller struct {
	backend Backend
	store   *conversation.Store
	docs    *registry.Registry
	events  event.Emitter[Change]

	mu sync.Mutex
	// +checklocks:mu
	sending bool
	// +checklocks:mu
	showPanel bool
	// +checklocks:mu
	activeTab api.Kind
	// +checklocks:mu
	editSeq map[string]uint64
}

// New creates a controller. The document panel starts visible on the
// travel plans tab.
func New(b Backend) *Controller {
	return &Controller{
		backend:   b,
		store:     conversation.NewStore(),
		docs:      registry.New(b),
		showPanel: true,
		activeTab: api.KindPlan,
		editSeq:   make(map[string]uint64),
	}
}

// Subscribe registers fn for change notifications and returns a cancel func.
// fn runs on the goroutine that made the change and must not block.
func (c *Controller) Subscribe(fn func(Change)) (cancel func()) {
	return c.events.Subscribe(fn)
}

func (c *Controller) emit(ch Change) {
	slog.Debug("controller change", "type", ch.Type.String(), "kind", ch.Kind, "filename", ch.Filename)
	c.events.Emit(ch)
}

// Start loads the conversation history and the document lists.
func (c *Controller) Start(ctx context.Context) error {
	histErr := c.LoadHistory(ctx)
	refreshErr := c.Refresh(ctx).Err()
	return errors.Join(histErr, refreshErr)
}

// LoadHistory replaces the conversation with the backend's history.
// On failure the conversation is left as is.
func (c *Controller) LoadHistory(ctx context.Context) error {
	history, err := c.backend.History(ctx)
	if err != nil {
		slog.Error("load history failed", "error", err)
		return fmt.Errorf("load history: %w", err)
	}
	c.store.Load(history)
	c.emit(Change{Type: HistoryLoaded})
	return nil
}

// ClearHistory deletes the conversation on the backend, then empties the
// local conversation, closes any open document, and hides the panel.
// On failure nothing changes locally.
func (c *Controller) ClearHistory(ctx context.Context) error {
	if err := c.backend.ClearHistory(ctx); err != nil {
		slog.Error("clear history failed", "error", err)
		return fmt.Errorf("clear history: %w", err)
	}
	c.store.Clear()
	c.docs.Close()

	c.mu.Lock()
	c.showPanel = false
	c.mu.Unlock()

	c.emit(Change{Type: HistoryCleared})
	return nil
}

// Send posts text to the assistant and records the exchange.
//
// Blank text returns ErrEmptyMessage and a send while another reply is
// pending returns ErrBusy; neither touches the conversation. Otherwise the
// returned entry is the finished exchange. If the request fails, the entry
// carries ServerErrorText or NetworkErrorText as its reply, the error is
// returned, and nothing else happens. After a successful reply the document
// registry is brought up to date (see refreshAfterReply).
func (c *Controller) Send(ctx context.Context, text string) (conversation.Entry, error) {
	if strings.TrimSpace(text) == "" {
		return conversation.Entry{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return conversation.Entry{}, ErrBusy
	}
	c.sending = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.sending = false
		c.mu.Unlock()
	}()

	id := c.store.Append(text)
	c.emit(Change{Type: MessageAppended, Entry: id})

	resp, err := c.backend.Chat(ctx, text)
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) {
			slog.Error("chat request rejected", "status", se.StatusCode, "body", se.Body)
		} else {
			slog.Error("chat request failed", "error", err)
		}
		c.store.Fail(id, failureText(err))
		c.emit(Change{Type: MessageFailed, Entry: id, Err: err})
		entry, _ := c.store.Get(id)
		return entry, fmt.Errorf("send message: %w", err)
	}

	c.store.Complete(id, resp.Response, resp.Timestamp)
	c.emit(Change{Type: MessageCompleted, Entry: id})

	c.refreshAfterReply(ctx, resp)

	entry, _ := c.store.Get(id)
	return entry, nil
}

// refreshAfterReply runs after every successful reply:
//  1. open the document the reply names, if any;
//  2. refresh every document list, since the reply may have created or
//     changed documents without naming them;
//  3. if a todo list was open before step 1, re-open the first refreshed
//     todo list whose title or created time matches it, so items the
//     assistant added show up. No match leaves the open list as it was.
//
// Budgets and plans are never re-opened this way.
func (c *Controller) refreshAfterReply(ctx context.Context, resp *api.ChatResponse) {
	var viewing *api.TodoList
	// Untitled lists are never corrected, even when created would match.
	if cur := c.docs.Current(); cur.Type == api.KindTodo && cur.Todo != nil && cur.Todo.Title != "" {
		viewing = cur.Todo
	}

	if kind, filename, ok := resp.Shown(); ok {
		if err := c.open(ctx, kind, filename); err != nil {
			slog.Warn("could not open document named in reply", "kind", kind, "filename", filename, "error", err)
		}
	}

	c.Refresh(ctx)

	if viewing == nil {
		return
	}
	match, ok := c.docs.FindTodo(viewing.Title, viewing.Created)
	if !ok {
		slog.Debug("open todo list not found after refresh", "title", viewing.Title, "created", viewing.Created)
		return
	}
	if err := c.open(ctx, api.KindTodo, match.Filename); err != nil {
		slog.Warn("could not re-open todo list", "filename", match.Filename, "error", err)
	}
}

// open makes filename the current document and reveals the panel.
// A response superseded by a newer open is not an error.
func (c *Controller) open(ctx context.Context, kind api.Kind, filename string) error {
	if err := c.docs.Open(ctx, kind, filename); err != nil {
		if errors.Is(err, registry.ErrStale) {
			return nil
		}
		return err
	}

	c.mu.Lock()
	c.showPanel = true
	c.mu.Unlock()

	c.emit(Change{Type: DocumentOpened, Kind: kind, Filename: filename})
	return nil
}

// Refresh re-fetches every document list.
func (c *Controller) Refresh(ctx context.Context) registry.RefreshResult {
	result := c.docs.Refresh(ctx)
	c.emit(Change{Type: DocumentsRefreshed, Refresh: result})
	return result
}

// SelectDocument opens a document from a list, shows the panel, and
// refreshes the lists. If the document cannot be fetched the previous
// document stays open and nothing is refreshed.
func (c *Controller) SelectDocument(ctx context.Context, kind api.Kind, filename string) error {
	if err := c.open(ctx, kind, filename); err != nil {
		return err
	}
	c.Refresh(ctx)
	return nil
}

// DeleteDocument deletes a document after confirm approves it.
// A nil confirm declines.
func (c *Controller) DeleteDocument(ctx context.Context, kind api.Kind, filename string, confirm Confirmer) error {
	if confirm == nil || !confirm.ConfirmDelete(kind, filename) {
		return ErrDeclined
	}
	if err := c.docs.Remove(ctx, kind, filename); err != nil {
		return err
	}
	c.emit(Change{Type: DocumentRemoved, Kind: kind, Filename: filename})
	return nil
}

// ToggleTodoItem marks an item in the open todo list done or not done.
// The full item list is sent to the backend; on success the open list is
// patched in place, on failure it is left unchanged.
func (c *Controller) ToggleTodoItem(ctx context.Context, itemID int, completed bool) error {
	todo := c.docs.Current().Todo
	if todo == nil {
		return fmt.Errorf("toggle item %d: %w", itemID, ErrNoDocument)
	}

	items := todo.Items
	found := false
	for i := range items {
		if items[i].ID == itemID {
			items[i].Completed = completed
			found = true
		}
	}
	if !found {
		return fmt.Errorf("toggle item %d in %s: %w", itemID, todo.Filename, ErrNoItem)
	}

	seq := c.beginEdit(todo.Filename)
	if err := c.backend.UpdateTodo(ctx, todo.Filename, items); err != nil {
		slog.Error("update todo list failed", "filename", todo.Filename, "item", itemID, "error", err)
		return fmt.Errorf("update todo list %s: %w", todo.Filename, err)
	}
	if !c.latestEdit(todo.Filename, seq) {
		return nil
	}
	if c.docs.PatchTodoItems(todo.Filename, items) {
		c.emit(Change{Type: DocumentUpdated, Kind: api.KindTodo, Filename: todo.Filename})
	}
	return nil
}

// UpdateBudgetItem renames and re-prices an item in the open budget.
// Same contract as ToggleTodoItem.
func (c *Controller) UpdateBudgetItem(ctx context.Context, itemID int, name string, amount float64) error {
	budget := c.docs.Current().Budget
	if budget == nil {
		return fmt.Errorf("update item %d: %w", itemID, ErrNoDocument)
	}

	items := budget.Items
	found := false
	for i := range items {
		if items[i].ID == itemID {
			items[i].Name = name
			items[i].Amount = amount
			found = true
		}
	}
	if !found {
		return fmt.Errorf("update item %d in %s: %w", itemID, budget.Filename, ErrNoItem)
	}

	seq := c.beginEdit(budget.Filename)
	if err := c.backend.UpdateBudget(ctx, budget.Filename, items); err != nil {
		slog.Error("update budget failed", "filename", budget.Filename, "item", itemID, "error", err)
		return fmt.Errorf("update budget %s: %w", budget.Filename, err)
	}
	if !c.latestEdit(budget.Filename, seq) {
		return nil
	}
	if c.docs.PatchBudgetItems(budget.Filename, items) {
		c.emit(Change{Type: DocumentUpdated, Kind: api.KindBudget, Filename: budget.Filename})
	}
	return nil
}

// beginEdit issues the next edit sequence number for filename.
func (c *Controller) beginEdit(filename string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editSeq[filename]++
	return c.editSeq[filename]
}

// latestEdit reports whether seq is still the newest edit for filename.
// Older edits that finish late must not overwrite newer local patches.
func (c *Controller) latestEdit(filename string, seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editSeq[filename] != seq {
		slog.Debug("discarding superseded edit", "filename", filename, "seq", seq, "latest", c.editSeq[filename])
		return false
	}
	return true
}

// ShowPanel reveals the document panel and refreshes the lists.
func (c *Controller) ShowPanel(ctx context.Context) {
	c.mu.Lock()
	c.showPanel = true
	c.mu.Unlock()
	c.emit(Change{Type: PanelChanged})
	c.Refresh(ctx)
}

// HidePanel hides the document panel and closes any open document.
func (c *Controller) HidePanel() {
	c.mu.Lock()
	c.showPanel = false
	c.mu.Unlock()
	c.docs.Close()
	c.emit(Change{Type: PanelChanged})
}

// ChangeTab switches the list tab. If the panel was hidden it is revealed
// and the lists are refreshed; otherwise the cached lists are shown.
func (c *Controller) ChangeTab(ctx context.Context, tab api.Kind) {
	c.mu.Lock()
	c.activeTab = tab
	reveal := !c.showPanel
	c.showPanel = true
	c.mu.Unlock()

	c.emit(Change{Type: PanelChanged})
	if reveal {
		c.Refresh(ctx)
	}
}

// BackToList closes the open document and returns to the active tab's list.
func (c *Controller) BackToList() {
	c.docs.Close()
	c.emit(Change{Type: DocumentClosed})
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	s := State{
		Sending:   c.sending,
		ShowPanel: c.showPanel,
		ActiveTab: c.activeTab,
	}
	c.mu.Unlock()

	s.Entries = c.store.Entries()
	s.FirstLoad = c.store.FirstLoad()
	s.Current = c.docs.Current()
	s.Plans = c.docs.Plans()
	s.Todos = c.docs.Todos()
	s.Budgets = c.docs.Budgets()
	return s
}
