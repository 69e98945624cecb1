package api

import (
	"context"
	"net/http"
)

// History fetches the conversation history.
func (c *Client) History(ctx context.Context) ([]Message, error) {
	var resp struct {
		History []Message `json:"history"`
	}
	if err := c.do(ctx, "get history", http.MethodGet, "/history", nil, &resp); err != nil {
		return nil, err
	}
	if resp.History == nil {
		return []Message{}, nil
	}
	return resp.History, nil
}

// ClearHistory deletes the conversation history on the backend.
func (c *Client) ClearHistory(ctx context.Context) error {
	return c.do(ctx, "clear history", http.MethodDelete, "/history", nil, nil)
}

// Chat sends a user message and returns the assistant's reply.
func (c *Client) Chat(ctx context.Context, message string) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.do(ctx, "chat", http.MethodPost, "/chat", ChatRequest{Message: message}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
