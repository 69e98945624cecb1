package api

import (
	"context"
	"net/http"
)

// Health checks that the backend is reachable and healthy.
func (c *Client) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, "health check", http.MethodGet, "/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// UploadDocument adds a reference document to the assistant's knowledge base.
func (c *Client) UploadDocument(ctx context.Context, title, content string) (*UploadResponse, error) {
	body := struct {
		Title   string `json:"title,omitempty"`
		Content string `json:"content"`
	}{Title: title, Content: content}
	var resp UploadResponse
	if err := c.do(ctx, "upload document", http.MethodPost, "/documents", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListReferenceDocuments returns the knowledge-base index.
func (c *Client) ListReferenceDocuments(ctx context.Context) (*DocumentIndex, error) {
	var resp DocumentIndex
	if err := c.do(ctx, "list documents", http.MethodGet, "/documents/list", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchDocuments searches the knowledge base for keyword.
func (c *Client) SearchDocuments(ctx context.Context, keyword string, maxResults int) (*SearchResult, error) {
	body := struct {
		Keyword    string `json:"keyword"`
		MaxResults int    `json:"max_results,omitempty"`
	}{Keyword: keyword, MaxResults: maxResults}
	var resp SearchResult
	if err := c.do(ctx, "search documents", http.MethodPost, "/documents/search", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReadDocument fetches a knowledge-base document by filename.
func (c *Client) ReadDocument(ctx context.Context, filename string) (*ReferenceDocument, error) {
	var resp ReferenceDocument
	if err := c.do(ctx, "read document", http.MethodGet, docPath("documents/read", filename), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
