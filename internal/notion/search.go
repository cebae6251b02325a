package notion

import (
	"context"
	"net/http"

	"notion-forms/internal/engine"
)

type searchBody struct {
	Query       string              `json:"query,omitempty"`
	Filter      engine.SearchFilter `json:"filter"`
	StartCursor *string             `json:"start_cursor,omitempty"`
}

type searchResponse struct {
	Results []struct {
		ID    string     `json:"id"`
		Title []richText `json:"title"`
	} `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

type richText struct {
	PlainText string `json:"plain_text"`
}

// Search fetches one page of search results.
func (c *Client) Search(ctx context.Context, req engine.SearchRequest) (*engine.SearchPage, error) {
	var resp searchResponse
	body := searchBody{Query: req.Query, Filter: req.Filter, StartCursor: req.Cursor}
	if err := c.do(ctx, "search", http.MethodPost, "/search", body, &resp); err != nil {
		return nil, err
	}

	page := &engine.SearchPage{Results: make([]engine.SearchResult, 0, len(resp.Results))}
	for _, r := range resp.Results {
		runs := make([]string, len(r.Title))
		for i, t := range r.Title {
			runs[i] = t.PlainText
		}
		page.Results = append(page.Results, engine.SearchResult{ID: r.ID, Title: runs})
	}
	if resp.HasMore && resp.NextCursor != nil && *resp.NextCursor != "" {
		page.NextCursor = resp.NextCursor
	}
	return page, nil
}
