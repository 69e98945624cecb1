// Package registry mirrors the backend's documents: summaries of every travel
// plan, todo list, and budget, plus the single document currently open.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tessro/roam/internal/api"
	"github.com/tessro/roam/internal/logging"
)

// Errors returned by registry operations.
var (
	// ErrStale is returned by Open when its response arrives after a newer
	// Open was issued. The response is discarded.
	ErrStale = errors.New("registry: response superseded by a newer request")
)

// Backend is the subset of the API client the registry needs.
type Backend interface {
	ListPlans(ctx context.Context) ([]api.TravelPlanSummary, error)
	ListTodos(ctx context.Context) ([]api.TodoListSummary, error)
	ListBudgets(ctx context.Context) ([]api.BudgetSummary, error)
	GetPlan(ctx context.Context, filename string) (*api.TravelPlan, error)
	GetTodo(ctx context.Context, filename string) (*api.TodoList, error)
	GetBudget(ctx context.Context, filename string) (*api.Budget, error)
	Delete(ctx context.Context, kind api.Kind, filename string) error
}

// Compile-time assertion that the API client satisfies Backend.
var _ Backend = (*api.Client)(nil)

// Current is the document open in the detail view.
// At most one of Plan, Todo, and Budget is non-nil, and Type names it.
// When none is open, Type is api.KindPlan.
type Current struct {
	Type   api.Kind
	Plan   *api.TravelPlan
	Todo   *api.TodoList
	Budget *api.Budget
}

// IsOpen reports whether any document is open.
func (c Current) IsOpen() bool {
	return c.Plan != nil || c.Todo != nil || c.Budget != nil
}

// Filename returns the open document's filename, or "" if none is open.
func (c Current) Filename() string {
	switch {
	case c.Plan != nil:
		return c.Plan.Filename
	case c.Todo != nil:
		return c.Todo.Filename
	case c.Budget != nil:
		return c.Budget.Filename
	default:
		return ""
	}
}

// Is reports whether the open document is the given kind and filename.
func (c Current) Is(kind api.Kind, filename string) bool {
	switch kind {
	case api.KindPlan:
		return c.Plan != nil && c.Plan.Filename == filename
	case api.KindTodo:
		return c.Todo != nil && c.Todo.Filename == filename
	case api.KindBudget:
		return c.Budget != nil && c.Budget.Filename == filename
	}
	return false
}

// RefreshResult reports per-category fetch errors from Refresh.
// A nil field means the fetch succeeded. Its list was stored, or dropped
// because a newer Refresh of that category had already been issued.
type RefreshResult struct {
	Plans   error
	Todos   error
	Budgets error
}

// Err joins all category errors, or returns nil if every fetch succeeded.
func (r RefreshResult) Err() error {
	return errors.Join(r.Plans, r.Todos, r.Budgets)
}

// Registry holds document summaries and the open document.
// It is safe for concurrent use.
type Registry struct {
	backend Backend

	mu sync.Mutex
	// +checklocks:mu
	plans []api.TravelPlanSummary
	// +checklocks:mu
	todos []api.TodoListSummary
	// +checklocks:mu
	budgets []api.BudgetSummary
	// +checklocks:mu
	current Current

	// Sequence numbers per target. A response is applied only if its
	// sequence is still the latest issued for that target.
	// +checklocks:mu
	openSeq uint64
	// +checklocks:mu
	listSeq map[api.Kind]uint64
}

// New creates an empty registry backed by b.
func New(b Backend) *Registry {
	return &Registry{
		backend: b,
		plans:   []api.TravelPlanSummary{},
		todos:   []api.TodoListSummary{},
		budgets: []api.BudgetSummary{},
		current: Current{Type: api.KindPlan},
		listSeq: make(map[api.Kind]uint64),
	}
}

// Refresh re-fetches all three summary lists concurrently.
// Each category is independent: a failed fetch leaves that category's prior
// list in place and is logged, without affecting the other two.
func (r *Registry) Refresh(ctx context.Context) RefreshResult {
	var (
		wg     sync.WaitGroup
		result RefreshResult
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		defer logging.LogPanic("registry-refresh-plans", nil)
		result.Plans = refreshList(r, ctx, api.KindPlan, r.backend.ListPlans, func(v []api.TravelPlanSummary) { r.plans = v })
	}()
	go func() {
		defer wg.Done()
		defer logging.LogPanic("registry-refresh-todos", nil)
		result.Todos = refreshList(r, ctx, api.KindTodo, r.backend.ListTodos, func(v []api.TodoListSummary) { r.todos = v })
	}()
	go func() {
		defer wg.Done()
		defer logging.LogPanic("registry-refresh-budgets", nil)
		result.Budgets = refreshList(r, ctx, api.KindBudget, r.backend.ListBudgets, func(v []api.BudgetSummary) { r.budgets = v })
	}()
	wg.Wait()

	return result
}

// refreshList fetches one category and stores it if the response is current.
// A superseded response is dropped without error. set is called with r.mu held.
func refreshList[T any](r *Registry, ctx context.Context, kind api.Kind, fetch func(context.Context) ([]T, error), set func([]T)) error {
	r.mu.Lock()
	r.listSeq[kind]++
	seq := r.listSeq[kind]
	r.mu.Unlock()

	items, err := fetch(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.listSeq[kind] {
		slog.Debug("registry: discarding stale list response", "kind", kind, "seq", seq, "latest", r.listSeq[kind], "error", err)
		return nil
	}
	if err != nil {
		slog.Warn("registry: refresh failed, keeping previous list", "kind", kind, "error", err)
		return err
	}
	if items == nil {
		items = []T{}
	}
	set(items)
	return nil
}

// Open fetches the full document and makes it the current document,
// clearing the other two slots. On failure the previous state is kept.
func (r *Registry) Open(ctx context.Context, kind api.Kind, filename string) error {
	r.mu.Lock()
	r.openSeq++
	seq := r.openSeq
	r.mu.Unlock()

	var (
		next Current
		err  error
	)
	switch kind {
	case api.KindPlan:
		next.Plan, err = r.backend.GetPlan(ctx, filename)
	case api.KindTodo:
		next.Todo, err = r.backend.GetTodo(ctx, filename)
	case api.KindBudget:
		next.Budget, err = r.backend.GetBudget(ctx, filename)
	default:
		return fmt.Errorf("open document: unknown kind %q", kind)
	}
	if err != nil {
		slog.Error("registry: open failed", "kind", kind, "filename", filename, "error", err)
		return fmt.Errorf("open %s %s: %w", kind.Noun(), filename, err)
	}
	next.Type = kind

	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != r.openSeq {
		slog.Debug("registry: discarding stale open response", "kind", kind, "filename", filename)
		return ErrStale
	}
	r.current = next
	return nil
}

// Close clears the current document. Any open still in flight is discarded.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
}

// +checklocks:r.mu
func (r *Registry) closeLocked() {
	r.openSeq++
	r.current = Current{Type: api.KindPlan}
}

// PatchTodoItems replaces the items of the open todo list without a round
// trip. The caller must already have persisted items with a successful
// update call. Returns false if filename is not the open todo list.
func (r *Registry) PatchTodoItems(filename string, items []api.TodoItem) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.current.Is(api.KindTodo, filename) {
		return false
	}
	patched := *r.current.Todo
	patched.Items = append([]api.TodoItem{}, items...)
	r.current.Todo = &patched
	return true
}

// PatchBudgetItems replaces the items of the open budget without a round
// trip. Same contract as PatchTodoItems.
func (r *Registry) PatchBudgetItems(filename string, items []api.BudgetItem) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.current.Is(api.KindBudget, filename) {
		return false
	}
	patched := *r.current.Budget
	patched.Items = append([]api.BudgetItem{}, items...)
	r.current.Budget = &patched
	return true
}

// Remove deletes a document on the backend. Callers must confirm with the
// user first. If the document is open it is closed, and the summaries are
// refreshed. On failure nothing changes and the registry is not refreshed.
func (r *Registry) Remove(ctx context.Context, kind api.Kind, filename string) error {
	if err := r.backend.Delete(ctx, kind, filename); err != nil {
		slog.Error("registry: delete failed", "kind", kind, "filename", filename, "error", err)
		return fmt.Errorf("delete %s %s: %w", kind.Noun(), filename, err)
	}

	r.mu.Lock()
	if r.current.Is(kind, filename) {
		r.closeLocked()
	}
	r.mu.Unlock()

	r.Refresh(ctx)
	return nil
}

// Current returns a copy of the current document state.
func (r *Registry) Current() Current {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.current
	if c.Plan != nil {
		p := *c.Plan
		c.Plan = &p
	}
	if c.Todo != nil {
		t := *c.Todo
		t.Items = append([]api.TodoItem(nil), c.Todo.Items...)
		c.Todo = &t
	}
	if c.Budget != nil {
		b := *c.Budget
		b.Items = append([]api.BudgetItem(nil), c.Budget.Items...)
		c.Budget = &b
	}
	return c
}

// Plans returns a copy of the travel plan summaries.
func (r *Registry) Plans() []api.TravelPlanSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]api.TravelPlanSummary{}, r.plans...)
}

// Todos returns a copy of the todo list summaries.
func (r *Registry) Todos() []api.TodoListSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]api.TodoListSummary{}, r.todos...)
}

// Budgets returns a copy of the budget summaries.
func (r *Registry) Budgets() []api.BudgetSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]api.BudgetSummary{}, r.budgets...)
}

// FindTodo returns the first todo summary whose title equals title or whose
// created timestamp equals created. This is a best-effort match: two lists
// sharing a title are not disambiguated.
func (r *Registry) FindTodo(title, created string) (api.TodoListSummary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.todos {
		if s.Title == title || s.Created == created {
			return s, true
		}
	}
	return api.TodoListSummary{}, false
}
