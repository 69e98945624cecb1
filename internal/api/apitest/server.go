// Package apitest provides an in-memory fake of the assistant backend for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/tessro/roam/internal/api"
)

// ChatHandler produces the reply to a chat message. It may mutate the server
// (create documents, add items) the way the real assistant does as a side
// effect of a reply.
type ChatHandler func(s *Server, message string) api.ChatResponse

// Server is a fake backend. All fields are guarded by the embedded mutex;
// use the helper methods from tests.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	history  []api.Message
	plans    map[string]*api.TravelPlan
	planMeta map[string]string // filename -> created
	todos    map[string]*api.TodoList
	budgets  map[string]*api.Budget
	order    []string
	refs     map[string]string // reference filename -> content
	refOrder []string
	fail     map[string]int // "METHOD /path" -> status code
	requests []string
	onChat   ChatHandler
}

// NewServer starts a fake backend. Close it with Close().
func NewServer() *Server {
	s := &Server{
		plans:    make(map[string]*api.TravelPlan),
		planMeta: make(map[string]string),
		todos:    make(map[string]*api.TodoList),
		budgets:  make(map[string]*api.Budget),
		refs:     make(map[string]string),
		fail:     make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Client returns an api.Client pointed at this server.
func (s *Server) Client() *api.Client {
	c, err := api.New(s.URL, nil)
	if err != nil {
		panic(err)
	}
	return c
}

// OnChat sets the chat handler.
func (s *Server) OnChat(h ChatHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChat = h
}

// Fail makes requests matching "METHOD /path" respond with status.
// A status of 0 removes the failure.
func (s *Server) Fail(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.fail, route)
		return
	}
	s.fail[route] = status
}

// Requests returns the "METHOD /path" log of requests received so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// CountRequests returns how many received requests equal route.
func (s *Server) CountRequests(route string) int {
	n := 0
	for _, r := range s.Requests() {
		if r == route {
			n++
		}
	}
	return n
}

// AddPlan stores a travel plan.
func (s *Server) AddPlan(plan api.TravelPlan, created string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := plan
	s.plans[plan.Filename] = &p
	s.planMeta[plan.Filename] = created
	s.track(plan.Filename)
}

// AddTodo stores a todo list.
func (s *Server) AddTodo(todo api.TodoList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := todo
	t.Items = append([]api.TodoItem(nil), todo.Items...)
	s.todos[todo.Filename] = &t
	s.track(todo.Filename)
}

// AddBudget stores a budget.
func (s *Server) AddBudget(budget api.Budget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := budget
	b.Items = append([]api.BudgetItem(nil), budget.Items...)
	s.budgets[budget.Filename] = &b
	s.track(budget.Filename)
}

// track records filename in listing order once.
func (s *Server) track(filename string) {
	for _, name := range s.order {
		if name == filename {
			return
		}
	}
	s.order = append(s.order, filename)
}

// Remove deletes a stored document of any kind, as the assistant might.
func (s *Server) Remove(filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plans, filename)
	delete(s.todos, filename)
	delete(s.budgets, filename)
}

// AddReference stores a knowledge-base document.
func (s *Server) AddReference(filename, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.refs[filename]; !ok {
		s.refOrder = append(s.refOrder, filename)
	}
	s.refs[filename] = content
}

// AddTodoItem appends an item to a stored todo list.
func (s *Server) AddTodoItem(filename string, item api.TodoItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.todos[filename]; ok {
		t.Items = append(t.Items, item)
	}
}

// AddBudgetItem appends an item to a stored budget.
func (s *Server) AddBudgetItem(filename string, item api.BudgetItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.budgets[filename]; ok {
		b.Items = append(b.Items, item)
	}
}

// Todo returns a copy of a stored todo list.
func (s *Server) Todo(filename string) (api.TodoList, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.todos[filename]
	if !ok {
		return api.TodoList{}, false
	}
	out := *t
	out.Items = append([]api.TodoItem(nil), t.Items...)
	return out, true
}

// Budget returns a copy of a stored budget.
func (s *Server) Budget(filename string) (api.Budget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[filename]
	if !ok {
		return api.Budget{}, false
	}
	out := *b
	out.Items = append([]api.BudgetItem(nil), b.Items...)
	return out, true
}

// SetHistory replaces the stored conversation.
func (s *Server) SetHistory(history []api.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append([]api.Message(nil), history...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path

	s.mu.Lock()
	s.requests = append(s.requests, route)
	status, failing := s.fail[route]
	s.mu.Unlock()

	if failing {
		writeJSON(w, status, map[string]string{"error": "injected failure"})
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.URL.Path == "/history":
		s.handleHistory(w, r)
	case r.URL.Path == "/chat" && r.Method == http.MethodPost:
		s.handleChat(w, r)
	case r.URL.Path == "/health":
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	case parts[0] == "documents":
		s.handleReference(w, r, parts[1:])
	case len(parts) == 1 && r.Method == http.MethodGet:
		s.handleList(w, parts[0])
	case len(parts) == 2:
		s.handleDocument(w, r, parts[0], parts[1])
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch r.Method {
	case http.MethodGet:
		history := s.history
		if history == nil {
			history = []api.Message{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"history": history})
	case http.MethodDelete:
		s.history = nil
		writeJSON(w, http.StatusOK, map[string]string{"message": "History cleared successfully"})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Message is required"})
		return
	}

	s.mu.Lock()
	handler := s.onChat
	s.mu.Unlock()

	resp := api.ChatResponse{Response: "ok", Timestamp: "2025-01-01T00:00:00"}
	if handler != nil {
		resp = handler(s, req.Message)
	}

	s.mu.Lock()
	s.history = append(s.history, api.Message{User: req.Message, Assistant: resp.Response, Timestamp: resp.Timestamp})
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleList(w http.ResponseWriter, collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch collection {
	case "travel-plans":
		plans := []api.TravelPlanSummary{}
		for _, name := range s.order {
			if p, ok := s.plans[name]; ok {
				plans = append(plans, api.TravelPlanSummary{Filename: p.Filename, Destination: p.Destination, Created: s.planMeta[name]})
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
	case "todo-lists":
		lists := []api.TodoListSummary{}
		for _, name := range s.order {
			if t, ok := s.todos[name]; ok {
				lists = append(lists, api.TodoListSummary{
					Filename:       t.Filename,
					Title:          t.Title,
					Created:        t.Created,
					Updated:        t.Updated,
					ItemCount:      len(t.Items),
					CompletedCount: t.CompletedCount(),
				})
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"lists": lists})
	case "budgets":
		budgets := []api.BudgetSummary{}
		for _, name := range s.order {
			if b, ok := s.budgets[name]; ok {
				budgets = append(budgets, api.BudgetSummary{
					Filename:    b.Filename,
					Title:       b.Title,
					Created:     b.Created,
					Updated:     b.Updated,
					ItemCount:   len(b.Items),
					TotalAmount: b.Total(),
				})
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"budgets": budgets})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request, collection, filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notFound := func() {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}

	switch collection {
	case "travel-plans":
		p, ok := s.plans[filename]
		if !ok {
			notFound()
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, p)
		case http.MethodDelete:
			delete(s.plans, filename)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Travel plan deleted successfully"})
		default:
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		}
	case "todo-lists":
		t, ok := s.todos[filename]
		if !ok {
			notFound()
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, t)
		case http.MethodPut:
			var body struct {
				Items []api.TodoItem `json:"items"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
				return
			}
			t.Items = body.Items
			writeJSON(w, http.StatusOK, map[string]string{"message": "Todo list updated successfully", "filename": filename})
		case http.MethodDelete:
			delete(s.todos, filename)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Todo list deleted successfully"})
		}
	case "budgets":
		b, ok := s.budgets[filename]
		if !ok {
			notFound()
			return
		}
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, b)
		case http.MethodPut:
			var body struct {
				Items []api.BudgetItem `json:"items"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad request"})
				return
			}
			b.Items = body.Items
			writeJSON(w, http.StatusOK, map[string]string{"message": "Budget updated successfully", "filename": filename})
		case http.MethodDelete:
			delete(s.budgets, filename)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Budget deleted successfully"})
		}
	default:
		notFound()
	}
}

func (s *Server) handleReference(w http.ResponseWriter, r *http.Request, rest []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case len(rest) == 0 && r.Method == http.MethodPost:
		var body struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Content == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Content is required"})
			return
		}
		title := body.Title
		if title == "" {
			title = "untitled"
		}
		filename := strings.ReplaceAll(strings.ToLower(title), " ", "_") + ".md"
		if _, ok := s.refs[filename]; !ok {
			s.refOrder = append(s.refOrder, filename)
		}
		s.refs[filename] = body.Content
		writeJSON(w, http.StatusOK, api.UploadResponse{Message: "Document uploaded successfully", Filename: filename})
	case len(rest) == 1 && rest[0] == "list" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"summary":    map[string]any{"documents": s.refOrder},
			"statistics": map[string]any{"total_documents": len(s.refOrder)},
		})
	case len(rest) == 1 && rest[0] == "search" && r.Method == http.MethodPost:
		var body struct {
			Keyword string `json:"keyword"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Keyword == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Keyword is required"})
			return
		}
		var hits []string
		for _, name := range s.refOrder {
			for _, line := range strings.Split(s.refs[name], "\n") {
				if strings.Contains(strings.ToLower(line), strings.ToLower(body.Keyword)) {
					hits = append(hits, name+": "+line)
				}
			}
		}
		writeJSON(w, http.StatusOK, api.SearchResult{Keyword: body.Keyword, Context: strings.Join(hits, "\n")})
	case len(rest) == 2 && rest[0] == "read" && r.Method == http.MethodGet:
		content, ok := s.refs[rest[1]]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Document not found"})
			return
		}
		writeJSON(w, http.StatusOK, api.ReferenceDocument{Filename: rest[1], Content: content})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
