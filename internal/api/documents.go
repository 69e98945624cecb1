package api

import (
	"context"
	"net/http"
)

// ListPlans fetches summaries of all travel plans.
func (c *Client) ListPlans(ctx context.Context) ([]TravelPlanSummary, error) {
	var resp struct {
		Plans []TravelPlanSummary `json:"plans"`
	}
	if err := c.do(ctx, "list travel plans", http.MethodGet, "/travel-plans", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Plans == nil {
		return []TravelPlanSummary{}, nil
	}
	return resp.Plans, nil
}

// GetPlan fetches a full travel plan.
func (c *Client) GetPlan(ctx context.Context, filename string) (*TravelPlan, error) {
	var plan TravelPlan
	if err := c.do(ctx, "get travel plan", http.MethodGet, docPath("travel-plans", filename), nil, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListTodos fetches summaries of all todo lists.
func (c *Client) ListTodos(ctx context.Context) ([]TodoListSummary, error) {
	var resp struct {
		Lists []TodoListSummary `json:"lists"`
	}
	if err := c.do(ctx, "list todo lists", http.MethodGet, "/todo-lists", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Lists == nil {
		return []TodoListSummary{}, nil
	}
	return resp.Lists, nil
}

// GetTodo fetches a full todo list.
func (c *Client) GetTodo(ctx context.Context, filename string) (*TodoList, error) {
	var todo TodoList
	if err := c.do(ctx, "get todo list", http.MethodGet, docPath("todo-lists", filename), nil, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// UpdateTodo replaces the items of a todo list.
func (c *Client) UpdateTodo(ctx context.Context, filename string, items []TodoItem) error {
	if items == nil {
		items = []TodoItem{}
	}
	body := struct {
		Items []TodoItem `json:"items"`
	}{Items: items}
	return c.do(ctx, "update todo list", http.MethodPut, docPath("todo-lists", filename), body, nil)
}

// ListBudgets fetches summaries of all budgets.
// Older backends nest the list under "documents/budgets"; both keys are accepted.
func (c *Client) ListBudgets(ctx context.Context) ([]BudgetSummary, error) {
	var resp struct {
		Budgets []BudgetSummary `json:"budgets"`
		Legacy  []BudgetSummary `json:"documents/budgets"`
	}
	if err := c.do(ctx, "list budgets", http.MethodGet, "/budgets", nil, &resp); err != nil {
		return nil, err
	}
	switch {
	case resp.Budgets != nil:
		return resp.Budgets, nil
	case resp.Legacy != nil:
		return resp.Legacy, nil
	default:
		return []BudgetSummary{}, nil
	}
}

// GetBudget fetches a full budget.
func (c *Client) GetBudget(ctx context.Context, filename string) (*Budget, error) {
	var budget Budget
	if err := c.do(ctx, "get budget", http.MethodGet, docPath("budgets", filename), nil, &budget); err != nil {
		return nil, err
	}
	return &budget, nil
}

// UpdateBudget replaces the items of a budget.
func (c *Client) UpdateBudget(ctx context.Context, filename string, items []BudgetItem) error {
	if items == nil {
		items = []BudgetItem{}
	}
	body := struct {
		Items []BudgetItem `json:"items"`
	}{Items: items}
	return c.do(ctx, "update budget", http.MethodPut, docPath("budgets", filename), body, nil)
}

// Delete removes a document of the given kind.
func (c *Client) Delete(ctx context.Context, kind Kind, filename string) error {
	coll, err := collection(kind)
	if err != nil {
		return err
	}
	return c.do(ctx, "delete "+kind.Noun(), http.MethodDelete, docPath(coll, filename), nil, nil)
}
