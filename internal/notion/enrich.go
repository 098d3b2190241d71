package notion

import (
	"context"
	"sync"

	"github.com/keving3ng/notion-gateway/internal/logger"
)

// Enricher recursively attaches child subtrees to blocks that have them.
type Enricher struct {
	client *Client
	logger logger.Logger
}

func NewEnricher(client *Client, log logger.Logger) *Enricher {
	return &Enricher{client: client, logger: log}
}

// Enrich fetches and attaches children for every block whose has_children
// flag is set, recursing into each subtree. Sibling subtrees fan out
// concurrently; each goroutine owns exactly one slice element, so no
// locking is needed. Enrich returns only after every reachable node has
// been visited.
//
// A failure on one block's children is logged and leaves that block's
// Children unset (or partial, when later pages failed); sibling subtrees
// are unaffected.
func (e *Enricher) Enrich(ctx context.Context, blocks []Block) []Block {
	var wg sync.WaitGroup

	for i := range blocks {
		if !blocks[i].HasChildren {
			continue
		}

		wg.Add(1)
		go func(b *Block) {
			defer wg.Done()

			children, err := e.client.BlockChildren(ctx, b.ID)
			if err != nil {
				e.logger.Warn("failed to fetch block children",
					logger.String("block_id", b.ID),
					logger.Error(err),
				)
				if len(children) == 0 {
					return
				}
			}

			b.Children = e.Enrich(ctx, children)
		}(&blocks[i])
	}

	wg.Wait()
	return blocks
}
