package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/keving3ng/notion-gateway/internal/cache"
	"github.com/keving3ng/notion-gateway/internal/logger"
	"github.com/keving3ng/notion-gateway/internal/notion"
	"github.com/keving3ng/notion-gateway/internal/ratelimit"
	"github.com/keving3ng/notion-gateway/internal/telemetry"
)

// Recipe is the list-endpoint projection of a recipe page. HasContent
// reports whether the page body holds anything worth rendering, so the
// front end can skip linking to empty detail pages.
type Recipe struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	URL        *string  `json:"url"`
	Notes      *string  `json:"notes"`
	Tags       []string `json:"tags"`
	HasContent bool     `json:"hasContent"`
}

// RecipeDetail carries the enriched block tree instead of the probe flag.
type RecipeDetail struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	URL    *string        `json:"url"`
	Notes  *string        `json:"notes"`
	Tags   []string       `json:"tags"`
	Blocks []notion.Block `json:"blocks"`
}

type RecipesHandler struct {
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

type RecipesConfig struct {
	DatabaseID string
	ListTTL    time.Duration
	DetailTTL  time.Duration
}

func NewRecipesHandler(
	client *notion.Client,
	enricher *notion.Enricher,
	limiter *ratelimit.Limiter,
	store cache.Store,
	cfg RecipesConfig,
	log logger.Logger,
	metrics *telemetry.Metrics,
) *RecipesHandler {
	return &RecipesHandler{
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

// List handles GET /api/recipes. Every recipe's first page of blocks is
// probed concurrently to compute hasContent; a probe failure leaves the
// flag false rather than failing the listing.
func (h *RecipesHandler) List(c *gin.Context) {
	const endpoint = "recipes"
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
	result, err := h.client.QueryDatabase(c.Request.Context(), h.databaseID, notion.DatabaseQuery{})
	if err != nil {
		h.logger.Error("failed to query recipes database",
			logger.String("endpoint", endpoint),
			logger.Error(err),
		)
		errorJSON(c, http.StatusInternalServerError, "Failed to fetch recipes")
		return
	}

	recipes := make([]Recipe, len(result.Results))
	var wg sync.WaitGroup
	for i := range result.Results {
		page := &result.Results[i]
		recipes[i] = Recipe{
			ID:    page.ID,
			Name:  page.RecipeName(),
			URL:   page.URL(),
			Notes: page.Notes(),
			Tags:  page.Tags(),
		}

		wg.Add(1)
		go func(i int, pageID string) {
			defer wg.Done()

			probe, probeErr := h.client.BlockChildrenPage(c.Request.Context(), pageID, "")
			if probeErr != nil {
				h.logger.Debug("recipe content probe failed",
					logger.String("page_id", pageID),
					logger.Error(probeErr),
				)
				return
			}
			recipes[i].HasContent = notion.HasRenderableContent(probe.Results)
		}(i, page.ID)
	}
	wg.Wait()

	h.respCache.respondJSON(c, endpoint, recipes, h.listTTL, localDev)
}

// GetByID handles GET /api/recipes/:id. Recipes are addressed by page ID
// directly, so the lookup is a page fetch rather than a database query.
func (h *RecipesHandler) GetByID(c *gin.Context) {
	const endpoint = "recipes-id"
	id := c.Param("id")
	localDev := isLocalDev(c.Request)

	if !localDev {
		if !rateGate(c, h.limiter, h.metrics, endpoint) {
			return
		}
		if h.respCache.serve(c, endpoint, h.detailTTL) {
			return
		}
	}

	h.metrics.IncUpstreamRequest("get_page")
	page, err := h.client.Page(c.Request.Context(), id)
	if err != nil {
		if notion.IsNotFound(err) {
			errorJSON(c, http.StatusNotFound, "Recipe not found")
			return
		}
		h.logger.Error("failed to fetch recipe page",
			logger.String("endpoint", endpoint),
			logger.String("recipe_id", id),
			logger.Error(err),
		)
		errorJSON(c, http.StatusInternalServerError, "Failed to fetch recipe")
		return
	}

	blocks, err := h.fetchBlocks(c, endpoint, page.ID)
	if err != nil {
		return
	}

	detail := RecipeDetail{
		ID:     page.ID,
		Name:   page.RecipeName(),
		URL:    page.URL(),
		Notes:  page.Notes(),
		Tags:   page.Tags(),
		Blocks: blocks,
	}

	h.respCache.respondJSON(c, endpoint, detail, h.detailTTL, localDev)
}

func (h *RecipesHandler) fetchBlocks(c *gin.Context, endpoint, pageID string) ([]notion.Block, error) {
	h.metrics.IncUpstreamRequest("block_children")
	blocks, err := h.client.BlockChildren(c.Request.Context(), pageID)
	if err != nil {
		if len(blocks) == 0 {
			h.logger.Error("failed to fetch recipe blocks",
				logger.String("endpoint", endpoint),
				logger.String("page_id", pageID),
				logger.Error(err),
			)
			errorJSON(c, http.StatusInternalServerError, "Failed to fetch content")
			return nil, err
		}
		h.logger.Warn("partial recipe blocks fetched",
			logger.String("endpoint", endpoint),
			logger.String("page_id", pageID),
			logger.Error(err),
		)
	}

	return h.enricher.Enrich(c.Request.Context(), blocks), nil
}
