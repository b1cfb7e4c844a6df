package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"gitlab.com/timkado/api/lead-console/internal/model"
	validation "gitlab.com/timkado/api/lead-console/internal/validator"
)

const knowledgeBasePath = "/api/knowledge-base"

// ListKnowledgeBase returns every entry with its chunks in stored order.
func (c *Client) ListKnowledgeBase(ctx context.Context) ([]model.KnowledgeBaseEntry, error) {
	r, _ := jsonRequest("list_knowledge_base", http.MethodGet, knowledgeBasePath, nil)

	var entries []model.KnowledgeBaseEntry
	if err := c.do(ctx, r, &entries); err != nil {
		return nil, fmt.Errorf("list knowledge base: %w", err)
	}
	return entries, nil
}

// UpsertKnowledgeBase creates or replaces the entry keyed by title.
func (c *Client) UpsertKnowledgeBase(ctx context.Context, payload model.KnowledgeBaseUpsert) (*model.KnowledgeBaseUpsertResult, error) {
	if err := validation.Validate(payload); err != nil {
		return nil, err
	}
	r, err := jsonRequest("upsert_knowledge_base", http.MethodPost, knowledgeBasePath, payload)
	if err != nil {
		return nil, err
	}

	var result model.KnowledgeBaseUpsertResult
	if err := c.do(ctx, r, &result); err != nil {
		return nil, fmt.Errorf("upsert knowledge base %q: %w", payload.Title, err)
	}
	return &result, nil
}

// SearchKnowledgeBase runs a similarity search. A zero TopK uses the default.
func (c *Client) SearchKnowledgeBase(ctx context.Context, payload model.KnowledgeBaseSearchRequest) (*model.KnowledgeBaseSearchResponse, error) {
	payload.Normalize()
	if err := validation.Validate(payload); err != nil {
		return nil, err
	}
	r, err := jsonRequest("search_knowledge_base", http.MethodPost, knowledgeBasePath+"/search", payload)
	if err != nil {
		return nil, err
	}

	var result model.KnowledgeBaseSearchResponse
	if err := c.do(ctx, r, &result); err != nil {
		return nil, fmt.Errorf("search knowledge base: %w", err)
	}
	return &result, nil
}

// QuickSearchKnowledgeBase runs the same search through the GET form, with
// the query as a path segment and top_k in the query string.
func (c *Client) QuickSearchKnowledgeBase(ctx context.Context, payload model.KnowledgeBaseSearchRequest) (*model.KnowledgeBaseSearchResponse, error) {
	payload.Normalize()
	if err := validation.Validate(payload); err != nil {
		return nil, err
	}
	r, _ := jsonRequest("quick_search_knowledge_base", http.MethodGet, escapedPath(knowledgeBasePath+"/search", payload.Query), nil)
	r.query = url.Values{"top_k": {strconv.Itoa(payload.TopK)}}

	var result model.KnowledgeBaseSearchResponse
	if err := c.do(ctx, r, &result); err != nil {
		return nil, fmt.Errorf("quick search knowledge base: %w", err)
	}
	return &result, nil
}

// DeleteKnowledgeBase removes the entry with title. The title is path-escaped.
func (c *Client) DeleteKnowledgeBase(ctx context.Context, title string) (*model.MessageResult, error) {
	if err := requireID("title", title); err != nil {
		return nil, err
	}
	r, _ := jsonRequest("delete_knowledge_base", http.MethodDelete, escapedPath(knowledgeBasePath, title), nil)

	var result model.MessageResult
	if err := c.do(ctx, r, &result); err != nil {
		return nil, fmt.Errorf("delete knowledge base %q: %w", title, err)
	}
	return &result, nil
}
