package api

import (
	"fmt"
	"strings"
)

// Kind identifies one of the three document types the assistant manages.
type Kind string

const (
	KindPlan   Kind = "plan"
	KindTodo   Kind = "todo"
	KindBudget Kind = "budget"
)

// Kinds lists every document kind in display order.
var Kinds = []Kind{KindPlan, KindTodo, KindBudget}

// String returns the kind as used on the wire and in messages.
func (k Kind) String() string {
	return string(k)
}

// Noun returns a human-readable name for the kind.
func (k Kind) Noun() string {
	switch k {
	case KindPlan:
		return "travel plan"
	case KindTodo:
		return "todo list"
	case KindBudget:
		return "budget"
	default:
		return string(k)
	}
}

// ParseKind converts user input to a Kind.
// Accepts singular and plural forms ("plan", "plans", "todo", "todos", ...).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plan", "plans", "travel-plan", "travel-plans":
		return KindPlan, nil
	case "todo", "todos", "todo-list", "todo-lists":
		return KindTodo, nil
	case "budget", "budgets":
		return KindBudget, nil
	default:
		return "", fmt.Errorf("unknown document kind %q", s)
	}
}

// Message is one exchange in the conversation history.
type Message struct {
	User      string `json:"user" yaml:"user"`
	Assistant string `json:"assistant" yaml:"assistant"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the assistant's reply to a chat message.
// At most one of the Show fields is expected to be set; it names a document
// the client should open.
type ChatResponse struct {
	Response   string `json:"response"`
	Timestamp  string `json:"timestamp"`
	ShowPlan   string `json:"show_plan,omitempty"`
	ShowTodo   string `json:"show_todo,omitempty"`
	ShowBudget string `json:"show_budget,omitempty"`
}

// Shown returns the document the reply asks the client to display.
// When several are set, plan wins over todo, and todo over budget.
func (r *ChatResponse) Shown() (Kind, string, bool) {
	switch {
	case r.ShowPlan != "":
		return KindPlan, r.ShowPlan, true
	case r.ShowTodo != "":
		return KindTodo, r.ShowTodo, true
	case r.ShowBudget != "":
		return KindBudget, r.ShowBudget, true
	default:
		return "", "", false
	}
}

// TravelPlan is a full travel plan document. Plans are read-only.
type TravelPlan struct {
	Filename    string `json:"filename" yaml:"filename"`
	Destination string `json:"destination" yaml:"destination"`
	Content     string `json:"content" yaml:"content"`
}

// TodoItem is a single entry in a todo list.
type TodoItem struct {
	ID        int    `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
	Created   string `json:"created" yaml:"created"`
}

// TodoList is a full todo list document.
type TodoList struct {
	Filename string     `json:"filename" yaml:"filename"`
	Title    string     `json:"title" yaml:"title"`
	Created  string     `json:"created" yaml:"created"`
	Updated  string     `json:"updated" yaml:"updated"`
	Items    []TodoItem `json:"items" yaml:"items"`
}

// CompletedCount returns how many items are marked completed.
func (t *TodoList) CompletedCount() int {
	n := 0
	for _, item := range t.Items {
		if item.Completed {
			n++
		}
	}
	return n
}

// BudgetItem is a single expense line in a budget.
type BudgetItem struct {
	ID      int     `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Amount  float64 `json:"amount" yaml:"amount"`
	Created string  `json:"created" yaml:"created"`
}

// Budget is a full budget document.
type Budget struct {
	Filename string       `json:"filename" yaml:"filename"`
	Title    string       `json:"title" yaml:"title"`
	Created  string       `json:"created" yaml:"created"`
	Updated  string       `json:"updated" yaml:"updated"`
	Items    []BudgetItem `json:"items" yaml:"items"`
}

// Total returns the sum of all item amounts.
func (b *Budget) Total() float64 {
	var total float64
	for _, item := range b.Items {
		total += item.Amount
	}
	return total
}

// TravelPlanSummary is the list-view projection of a travel plan.
type TravelPlanSummary struct {
	Filename    string `json:"filename" yaml:"filename"`
	Destination string `json:"destination" yaml:"destination"`
	Created     string `json:"created" yaml:"created"`
}

// TodoListSummary is the list-view projection of a todo list.
// Counts are computed by the backend.
type TodoListSummary struct {
	Filename       string `json:"filename" yaml:"filename"`
	Title          string `json:"title" yaml:"title"`
	Created        string `json:"created" yaml:"created"`
	Updated        string `json:"updated" yaml:"updated"`
	ItemCount      int    `json:"item_count" yaml:"item_count"`
	CompletedCount int    `json:"completed_count" yaml:"completed_count"`
}

// BudgetSummary is the list-view projection of a budget.
// Totals are computed by the backend.
type BudgetSummary struct {
	Filename    string  `json:"filename" yaml:"filename"`
	Title       string  `json:"title" yaml:"title"`
	Created     string  `json:"created" yaml:"created"`
	Updated     string  `json:"updated" yaml:"updated"`
	ItemCount   int     `json:"item_count" yaml:"item_count"`
	TotalAmount float64 `json:"total_amount" yaml:"total_amount"`
}

// UploadResponse is returned by POST /documents.
type UploadResponse struct {
	Message  string `json:"message" yaml:"message"`
	Filename string `json:"filename" yaml:"filename"`
}

// SearchResult is returned by POST /documents/search.
type SearchResult struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Context string `json:"context" yaml:"context"`
}

// ReferenceDocument is a knowledge-base document returned by GET /documents/read/:filename.
type ReferenceDocument struct {
	Filename string `json:"filename" yaml:"filename"`
	Content  string `json:"content" yaml:"content"`
}

// DocumentIndex is returned by GET /documents/list.
// The backend's summary and statistics shapes are loosely defined, so they
// are kept as generic JSON values.
type DocumentIndex struct {
	Summary    any `json:"summary" yaml:"summary"`
	Statistics any `json:"statistics" yaml:"statistics"`
}
