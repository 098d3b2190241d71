package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/keving3ng/notion-gateway/internal/cache"
	"github.com/keving3ng/notion-gateway/internal/images"
	"github.com/keving3ng/notion-gateway/internal/logger"
	"github.com/keving3ng/notion-gateway/internal/notion"
	"github.com/keving3ng/notion-gateway/internal/ratelimit"
	"github.com/keving3ng/notion-gateway/internal/telemetry"
)

const (
	// immutableCacheControl is safe because cached bytes are addressed by
	// block ID and refreshed lazily on the next miss, not on upstream change.
	immutableCacheControl = "public, max-age=31536000, immutable"

	defaultImageContentType = "image/jpeg"

	// maxImageBytes caps fetched image size.
	maxImageBytes = 20 * 1024 * 1024

	imageFetchTimeout = 30 * time.Second
)

// ImageHandler proxies image blocks: Notion-hosted image URLs expire
// after an hour, so the front end addresses images by block ID and the
// gateway resolves and caches the bytes.
type ImageHandler struct {
	client    *notion.Client
	allowlist *images.Allowlist
	binCache  *images.BinaryCache
	limiter   *ratelimit.Limiter
	fetcher   *http.Client
	logger    logger.Logger
	metrics   *telemetry.Metrics
}

func NewImageHandler(
	client *notion.Client,
	allowlist *images.Allowlist,
	binCache *images.BinaryCache,
	limiter *ratelimit.Limiter,
	log logger.Logger,
	metrics *telemetry.Metrics,
) *ImageHandler {
	return &ImageHandler{
		client:    client,
		allowlist: allowlist,
		binCache:  binCache,
		limiter:   limiter,
		fetcher:   &http.Client{Timeout: imageFetchTimeout},
		logger:    log,
		metrics:   metrics,
	}
}

// Get handles GET /api/image/:blockId.
func (h *ImageHandler) Get(c *gin.Context) {
	const endpoint = "image"
	blockID := c.Param("blockId")

	if !isLocalDev(c.Request) {
		if !rateGate(c, h.limiter, h.metrics, endpoint) {
			return
		}
	}

	// The binary cache is checked even in local dev; entries are keyed by
	// block ID, not request URL, so staleness is not a concern.
	if obj, err := h.binCache.Get(c.Request.Context(), blockID); err == nil {
		h.metrics.IncCacheHit(endpoint)
		c.Header("Cache-Control", immutableCacheControl)
		c.Data(http.StatusOK, obj.ContentType, obj.Data)
		return
	} else if !errors.Is(err, cache.ErrNotFound) {
		h.logger.Warn("image cache read failed",
			logger.String("block_id", blockID),
			logger.Error(err),
		)
	}
	h.metrics.IncCacheMiss(endpoint)

	// Fetch the block to discover its current, time-limited image URL.
	h.metrics.IncUpstreamRequest("get_block")
	block, err := h.client.Block(c.Request.Context(), blockID)
	if err != nil {
		h.logger.Error("failed to fetch image block",
			logger.String("endpoint", endpoint),
			logger.String("block_id", blockID),
			logger.Error(err),
		)
		errorJSON(c, http.StatusNotFound, "Block not found")
		return
	}

	if block.Type != notion.BlockImage || block.Image == nil {
		errorJSON(c, http.StatusBadRequest, "Not an image block")
		return
	}

	imageURL := block.ImageURL()
	if imageURL == "" {
		errorJSON(c, http.StatusNotFound, "No image URL found")
		return
	}

	if !h.allowlist.Allowed(imageURL) {
		h.metrics.IncImageBlocked()
		h.logger.Warn("blocked image from untrusted domain",
			logger.String("block_id", blockID),
			logger.String("url", imageURL),
		)
		errorJSON(c, http.StatusForbidden, "Image source not allowed")
		return
	}

	obj, err := h.fetchImage(c, imageURL)
	if err != nil {
		h.logger.Error("failed to fetch image bytes",
			logger.String("block_id", blockID),
			logger.Error(err),
		)
		errorJSON(c, http.StatusBadGateway, "Failed to fetch image")
		return
	}

	h.storeAsync(blockID, obj)

	c.Header("Cache-Control", immutableCacheControl)
	c.Data(http.StatusOK, obj.ContentType, obj.Data)
}

func (h *ImageHandler) fetchImage(c *gin.Context, imageURL string) (*images.Object, error) {
	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.fetcher.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("upstream image fetch returned " + resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultImageContentType
	}

	return &images.Object{ContentType: contentType, Data: data}, nil
}

func (h *ImageHandler) storeAsync(blockID string, obj *images.Object) {
	go func() {
		ctx, cancel := newDetachedContext()
		defer cancel()

		if err := h.binCache.Put(ctx, blockID, obj); err != nil {
			h.logger.Warn("image cache write failed",
				logger.String("block_id", blockID),
				logger.Error(err),
			)
		}
	}()
}
