package notion

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// BlockChildrenResponse is one page of a "get block children" call.
type BlockChildrenResponse struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// Block fetches a single block by ID.
func (c *Client) Block(ctx context.Context, blockID string) (*Block, error) {
	var block Block
	if err := c.do(ctx, http.MethodGet, "/blocks/"+blockID, nil, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

// BlockChildrenPage fetches one page of a block's direct children.
// An empty cursor requests the first page.
func (c *Client) BlockChildrenPage(ctx context.Context, blockID, cursor string) (*BlockChildrenResponse, error) {
	path := fmt.Sprintf("/blocks/%s/children?page_size=%d", blockID, c.pageSize)
	if cursor != "" {
		path += "&start_cursor=" + url.QueryEscape(cursor)
	}

	var page BlockChildrenResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// BlockChildren enumerates all direct children of a block, following
// cursors until the collection is exhausted.
//
// Partial-success policy: a mid-stream failure returns everything
// accumulated so far together with the error. Callers decide whether
// partial content is acceptable; a failure on the very first page leaves
// the result empty, which is the only case detail endpoints escalate.
func (c *Client) BlockChildren(ctx context.Context, blockID string) ([]Block, error) {
	all := []Block{}
	cursor := ""

	for {
		page, err := c.BlockChildrenPage(ctx, blockID, cursor)
		if err != nil {
			return all, err
		}

		all = append(all, page.Results...)

		if !page.HasMore || page.NextCursor == nil {
			return all, nil
		}
		cursor = *page.NextCursor
	}
}
