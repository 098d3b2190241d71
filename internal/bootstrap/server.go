package bootstrap

import (
	"github.com/gin-gonic/gin"
	"github.com/keving3ng/notion-gateway/internal/api"
	"github.com/keving3ng/notion-gateway/internal/cache"
	"github.com/keving3ng/notion-gateway/internal/config"
	"github.com/keving3ng/notion-gateway/internal/handlers"
	"github.com/keving3ng/notion-gateway/internal/images"
	"github.com/keving3ng/notion-gateway/internal/logger"
	"github.com/keving3ng/notion-gateway/internal/notion"
	"github.com/keving3ng/notion-gateway/internal/ratelimit"
	"github.com/keving3ng/notion-gateway/internal/telemetry"
)

// SetupCacheStore selects Redis when enabled, otherwise an in-process
// TTL store (local development, single-instance deployments).
func SetupCacheStore(cfg *config.Config, log logger.Logger) (cache.Store, error) {
	if !cfg.Redis.Enabled {
		log.Info("redis disabled, using in-memory cache store")
		return cache.NewMemoryStore(), nil
	}

	store, err := cache.NewRedisStore(cache.RedisConfig{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}

	log.Info("connected to redis", logger.String("address", cfg.Redis.Address))
	return store, nil
}

// SetupRouter builds the full handler graph and returns the gin engine.
func SetupRouter(cfg *config.Config, store cache.Store, log logger.Logger) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := telemetry.NewMetrics()

	client := notion.NewClient(notion.Config{
		BaseURL:  cfg.Notion.BaseURL,
		APIKey:   cfg.Notion.APIKey,
		Version:  cfg.Notion.Version,
		PageSize: cfg.Notion.PageSize,
		Timeout:  cfg.Notion.Timeout,
	}, log)
	enricher := notion.NewEnricher(client, log)

	limiter := ratelimit.NewLimiter(store, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window, log)

	h := api.Handlers{
		Posts: handlers.NewPostsHandler(client, enricher, limiter, store, handlers.PostsConfig{
			DatabaseID: cfg.Notion.PostsDatabaseID,
			ListTTL:    cfg.Cache.ListTTL,
			DetailTTL:  cfg.Cache.DetailTTL,
		}, log, metrics),
		Recipes: handlers.NewRecipesHandler(client, enricher, limiter, store, handlers.RecipesConfig{
			DatabaseID: cfg.Notion.RecipesDatabaseID,
			ListTTL:    cfg.Cache.ListTTL,
			DetailTTL:  cfg.Cache.DetailTTL,
		}, log, metrics),
		Image: handlers.NewImageHandler(
			client,
			images.NewAllowlist(cfg.Images.AllowedDomains),
			images.NewBinaryCache(store, cfg.Cache.ImageTTL),
			limiter,
			log,
			metrics,
		),
	}

	return api.NewRouter(h, cfg.Server.CORSOrigins, log, metrics)
}
