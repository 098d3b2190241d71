package notion

import (
	"context"
	"net/http"
)

// DatabaseQuery is the body of a "query database" call.
type DatabaseQuery struct {
	Filter *Filter `json:"filter,omitempty"`
	Sorts  []Sort  `json:"sorts,omitempty"`
}

// Filter is either a compound (And) or a single property condition.
type Filter struct {
	And      []Filter           `json:"and,omitempty"`
	Property string             `json:"property,omitempty"`
	Checkbox *CheckboxCondition `json:"checkbox,omitempty"`
	RichText *TextCondition     `json:"rich_text,omitempty"`
}

type CheckboxCondition struct {
	Equals bool `json:"equals"`
}

type TextCondition struct {
	Equals string `json:"equals"`
}

type Sort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

// PublishedFilter matches pages with Published checked.
func PublishedFilter() *Filter {
	return &Filter{
		Property: "Published",
		Checkbox: &CheckboxCondition{Equals: true},
	}
}

// PublishedSlugFilter matches the published page with the given slug.
func PublishedSlugFilter(slug string) *Filter {
	return &Filter{
		And: []Filter{
			{Property: "Slug", RichText: &TextCondition{Equals: slug}},
			{Property: "Published", Checkbox: &CheckboxCondition{Equals: true}},
		},
	}
}

// QueryResult is a page of database query results.
type QueryResult struct {
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// QueryDatabase runs a filtered query against a content database.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, query DatabaseQuery) (*QueryResult, error) {
	var result QueryResult
	if err := c.do(ctx, http.MethodPost, "/databases/"+databaseID+"/query", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Page fetches a single page by ID.
func (c *Client) Page(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, "/pages/"+pageID, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
