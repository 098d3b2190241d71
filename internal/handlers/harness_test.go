package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"

	"github.com/keving3ng/notion-gateway/internal/api"
	"github.com/keving3ng/notion-gateway/internal/cache"
	"github.com/keving3ng/notion-gateway/internal/handlers"
	"github.com/keving3ng/notion-gateway/internal/images"
	"github.com/keving3ng/notion-gateway/internal/notion"
	"github.com/keving3ng/notion-gateway/internal/ratelimit"
	"github.com/keving3ng/notion-gateway/internal/testhelpers"
)

const (
	postsDatabaseID   = "db-posts"
	recipesDatabaseID = "db-recipes"

	testListTTL   = 5 * time.Minute
	testDetailTTL = time.Hour
)

var testCORSOrigins = []string{"https://kgeng.dev", "https://www.kgeng.dev"}

type gatewayOptions struct {
	rateLimitMax   int
	allowedDomains []string
}

// gateway assembles the full router against a fake Notion upstream and a
// miniredis-backed store, mirroring the production wiring.
type gateway struct {
	router   *gin.Engine
	mr       *miniredis.Miniredis
	store    cache.Store
	binCache *images.BinaryCache
}

func newGateway(t *testing.T, upstream http.Handler, opts gatewayOptions) *gateway {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	if opts.rateLimitMax == 0 {
		opts.rateLimitMax = 60
	}
	if opts.allowedDomains == nil {
		opts.allowedDomains = []string{"images.unsplash.com"}
	}

	log := testhelpers.NewTestLogger()
	store, mr := testhelpers.NewRedisStore(t)

	client := notion.NewClient(notion.Config{
		BaseURL:  srv.URL,
		APIKey:   "secret-key",
		Version:  "2022-06-28",
		PageSize: 100,
	}, log)
	enricher := notion.NewEnricher(client, log)
	limiter := ratelimit.NewLimiter(store, opts.rateLimitMax, time.Minute, log)
	binCache := images.NewBinaryCache(store, 0)

	router := api.NewRouter(api.Handlers{
		Posts: handlers.NewPostsHandler(client, enricher, limiter, store, handlers.PostsConfig{
			DatabaseID: postsDatabaseID,
			ListTTL:    testListTTL,
			DetailTTL:  testDetailTTL,
		}, log, nil),
		Recipes: handlers.NewRecipesHandler(client, enricher, limiter, store, handlers.RecipesConfig{
			DatabaseID: recipesDatabaseID,
			ListTTL:    testListTTL,
			DetailTTL:  testDetailTTL,
		}, log, nil),
		Image: handlers.NewImageHandler(client, images.NewAllowlist(opts.allowedDomains), binCache, limiter, log, nil),
	}, testCORSOrigins, log, nil)

	return &gateway{router: router, mr: mr, store: store, binCache: binCache}
}

// get issues a request with a non-loopback Host so rate limiting and
// response caching are in effect.
func (g *gateway) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Host = "gateway.kgeng.dev"
	w := httptest.NewRecorder()
	g.router.ServeHTTP(w, req)
	return w
}

func (g *gateway) getLocal(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Host = "localhost:8788"
	w := httptest.NewRecorder()
	g.router.ServeHTTP(w, req)
	return w
}

// waitForCachedResponse blocks until the async cache write for path has
// landed in the store.
func (g *gateway) waitForCachedResponse(t *testing.T, path string) {
	t.Helper()

	key := "resp:gateway.kgeng.dev" + path
	deadline := time.After(2 * time.Second)
	for !g.mr.Exists(key) {
		select {
		case <-deadline:
			t.Fatalf("cached response for %s never arrived", path)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// hostOf returns the hostname of a test server URL, for allow-listing it.
func hostOf(t *testing.T, rawURL string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse %s: %v", rawURL, err)
	}
	return u.Hostname()
}

// Upstream response fixtures, shaped like the Notion API.

func queryResults(pages ...string) string {
	return fmt.Sprintf(`{"results":[%s],"has_more":false,"next_cursor":null}`, strings.Join(pages, ","))
}

func postPageJSON(id, title, slug, date string) string {
	return fmt.Sprintf(`{
		"id": %q,
		"properties": {
			"Title": {"title": [{"plain_text": %q}]},
			"Slug": {"rich_text": [{"plain_text": %q}]},
			"Tags": {"multi_select": [{"name": "go"}]},
			"Date": {"date": {"start": %q}},
			"Published": {"checkbox": true}
		}
	}`, id, title, slug, date)
}

func recipePageJSON(id, name string) string {
	return fmt.Sprintf(`{
		"id": %q,
		"properties": {
			"Recipe Name": {"title": [{"plain_text": %q}]},
			"Link": {"url": "https://example.com/recipe"},
			"Notes": {"rich_text": [{"plain_text": "weeknight favourite"}]},
			"Tags": {"multi_select": [{"name": "dinner"}]}
		}
	}`, id, name)
}

func blockChildrenJSON(blocks ...string) string {
	return fmt.Sprintf(`{"results":[%s],"has_more":false,"next_cursor":null}`, strings.Join(blocks, ","))
}

func paragraphJSON(id, text string, hasChildren bool) string {
	return fmt.Sprintf(`{"id":%q,"type":"paragraph","has_children":%t,"paragraph":{"rich_text":[{"plain_text":%q}]}}`, id, hasChildren, text)
}

func bookmarkJSON(id string) string {
	return fmt.Sprintf(`{"id":%q,"type":"bookmark","bookmark":{"url":"https://example.com"}}`, id)
}

func imageBlockJSON(id, imageURL string) string {
	return fmt.Sprintf(`{"id":%q,"type":"image","image":{"type":"external","external":{"url":%q}}}`, id, imageURL)
}
