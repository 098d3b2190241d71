package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/keving3ng/notion-gateway/internal/cache"
	"github.com/keving3ng/notion-gateway/internal/logger"
	"github.com/keving3ng/notion-gateway/internal/notion"
	"github.com/keving3ng/notion-gateway/internal/ratelimit"
	"github.com/keving3ng/notion-gateway/internal/telemetry"
)

// Post is the list-endpoint projection of a published page.
type Post struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Slug  string   `json:"slug"`
	Tags  []string `json:"tags"`
	Date  *string  `json:"date"`
}

// PostDetail adds the enriched block tree.
type PostDetail struct {
	Post
	Blocks []notion.Block `json:"blocks"`
}

type PostsHandler struct {
	client     *notion.Client
	enricher   *notion.Enricher
	limiter    *ratelimit.Limiter
	respCache  *responseCache
	databaseID string
	listTTL    time.Duration
	detailTTL  time.Duration
	logger     logger.Logger
	metrics    *telemetry.Metrics
}

type PostsConfig struct {
	DatabaseID string
	ListTTL    time.Duration
	DetailTTL  time.Duration
}

func NewPostsHandler(
	client *notion.Client,
	enricher *notion.Enricher,
	limiter *ratelimit.Limiter,
	store cache.Store,
	cfg PostsConfig,
	log logger.Logger,
	metrics *telemetry.Metrics,
) *PostsHandler {
	return &PostsHandler{
		client:     client,
		enricher:   enricher,
		limiter:    limiter,
		respCache:  newResponseCache(store, log, metrics),
		databaseID: cfg.DatabaseID,
		listTTL:    cfg.ListTTL,
		detailTTL:  cfg.DetailTTL,
		logger:     log,
		metrics:    metrics,
	}
}

// List handles GET /api/posts: published pages, newest first.
func (h *PostsHandler) List(c *gin.Context) {
	const endpoint = "posts"
	localDev := isLocalDev(c.Request)

	if !localDev {
		if !rateGate(c, h.limiter, h.metrics, endpoint) {
			return
		}
		if h.respCache.serve(c, endpoint, h.listTTL) {
			return
		}
	}

	h.metrics.IncUpstreamRequest("query_database")
	result, err := h.client.QueryDatabase(c.Request.Context(), h.databaseID, notion.DatabaseQuery{
		Filter: notion.PublishedFilter(),
		Sorts:  []notion.Sort{{Property: "Date", Direction: "descending"}},
	})
	if err != nil {
		h.logger.Error("failed to query posts database",
			logger.String("endpoint", endpoint),
			logger.Error(err),
		)
		errorJSON(c, http.StatusInternalServerError, "Failed to fetch posts")
		return
	}

	posts := make([]Post, 0, len(result.Results))
	for i := range result.Results {
		posts = append(posts, projectPost(&result.Results[i]))
	}

	h.respCache.respondJSON(c, endpoint, posts, h.listTTL, localDev)
}

// GetBySlug handles GET /api/posts/:slug.
func (h *PostsHandler) GetBySlug(c *gin.Context) {
	const endpoint = "posts-slug"
	slug := c.Param("slug")
	localDev := isLocalDev(c.Request)

	if !localDev {
		if !rateGate(c, h.limiter, h.metrics, endpoint) {
			return
		}
		if h.respCache.serve(c, endpoint, h.detailTTL) {
			return
		}
	}

	h.metrics.IncUpstreamRequest("query_database")
	result, err := h.client.QueryDatabase(c.Request.Context(), h.databaseID, notion.DatabaseQuery{
		Filter: notion.PublishedSlugFilter(slug),
	})
	if err != nil {
		h.logger.Error("failed to query post by slug",
			logger.String("endpoint", endpoint),
			logger.String("slug", slug),
			logger.Error(err),
		)
		errorJSON(c, http.StatusInternalServerError, "Failed to fetch post")
		return
	}

	if len(result.Results) == 0 {
		errorJSON(c, http.StatusNotFound, "Post not found")
		return
	}

	page := &result.Results[0]

	blocks, err := h.fetchBlocks(c, endpoint, page.ID)
	if err != nil {
		return
	}

	detail := PostDetail{
		Post:   projectPost(page),
		Blocks: blocks,
	}

	h.respCache.respondJSON(c, endpoint, detail, h.detailTTL, localDev)
}

// fetchBlocks loads and enriches the page's block tree. A root fetch that
// fails with nothing accumulated is a hard failure (the 500 is written
// here); a partial root fetch degrades to partial content.
func (h *PostsHandler) fetchBlocks(c *gin.Context, endpoint, pageID string) ([]notion.Block, error) {
	h.metrics.IncUpstreamRequest("block_children")
	blocks, err := h.client.BlockChildren(c.Request.Context(), pageID)
	if err != nil {
		if len(blocks) == 0 {
			h.logger.Error("failed to fetch page blocks",
				logger.String("endpoint", endpoint),
				logger.String("page_id", pageID),
				logger.Error(err),
			)
			errorJSON(c, http.StatusInternalServerError, "Failed to fetch content")
			return nil, err
		}
		h.logger.Warn("partial page blocks fetched",
			logger.String("endpoint", endpoint),
			logger.String("page_id", pageID),
			logger.Error(err),
		)
	}

	return h.enricher.Enrich(c.Request.Context(), blocks), nil
}

func projectPost(page *notion.Page) Post {
	return Post{
		ID:    page.ID,
		Title: page.Title(),
		Slug:  page.Slug(),
		Tags:  page.Tags(),
		Date:  page.Date(),
	}
}
