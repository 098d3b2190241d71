package handlers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keving3ng/notion-gateway/internal/handlers"
)

func TestPostsList(t *testing.T) {
	var queryBody atomic.Value

	mux := http.NewServeMux()
	mux.HandleFunc("POST /databases/"+postsDatabaseID+"/query", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		queryBody.Store(string(body))
		fmt.Fprint(w, queryResults(
			postPageJSON("p1", "Second Post", "second-post", "2025-07-01"),
			postPageJSON("p2", "First Post", "first-post", "2025-06-01"),
		))
	})

	g := newGateway(t, mux, gatewayOptions{})
	w := g.get("/api/posts")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=300", w.Header().Get("Cache-Control"))

	var posts []handlers.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	require.Len(t, posts, 2)
	assert.Equal(t, "Second Post", posts[0].Title)
	assert.Equal(t, "second-post", posts[0].Slug)
	assert.Equal(t, []string{"go"}, posts[0].Tags)
	require.NotNil(t, posts[0].Date)
	assert.Equal(t, "2025-07-01", *posts[0].Date)

	// Upstream is asked for published pages, newest first.
	body, _ := queryBody.Load().(string)
	assert.Contains(t, body, `"Published"`)
	assert.Contains(t, body, `"descending"`)
}

func TestPostsList_ServedFromCacheOnSecondRequest(t *testing.T) {
	var queries atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /databases/"+postsDatabaseID+"/query", func(w http.ResponseWriter, _ *http.Request) {
		queries.Add(1)
		fmt.Fprint(w, queryResults(postPageJSON("p1", "Only Post", "only-post", "2025-06-01")))
	})

	g := newGateway(t, mux, gatewayOptions{})

	first := g.get("/api/posts")
	require.Equal(t, http.StatusOK, first.Code)
	g.waitForCachedResponse(t, "/api/posts")

	second := g.get("/api/posts")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "public, max-age=300", second.Header().Get("Cache-Control"))

	assert.EqualValues(t, 1, queries.Load(), "cached hit should not reach upstream")
}

func TestPostsList_UpstreamFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /databases/"+postsDatabaseID+"/query", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	g := newGateway(t, mux, gatewayOptions{})
	w := g.get("/api/posts")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch posts"}`, w.Body.String())
}

func TestPostGetBySlug(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /databases/"+postsDatabaseID+"/query", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.Contains(t, string(body), `"hello-world"`)
		fmt.Fprint(w, queryResults(postPageJSON("p1", "Hello World", "hello-world", "2025-06-01")))
	})
	mux.HandleFunc("GET /blocks/p1/children", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, blockChildrenJSON(
			paragraphJSON("b1", "intro", false),
			paragraphJSON("b2", "toggle", true),
		))
	})
	mux.HandleFunc("GET /blocks/b2/children", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, blockChildrenJSON(
			paragraphJSON("b2-1", "nested one", false),
			paragraphJSON("b2-2", "nested two", false),
		))
	})

	g := newGateway(t, mux, gatewayOptions{})
	w := g.get("/api/posts/hello-world")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))

	var detail handlers.PostDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "Hello World", detail.Title)
	require.Len(t, detail.Blocks, 2)
	assert.Empty(t, detail.Blocks[0].Children)
	require.Len(t, detail.Blocks[1].Children, 2)
	assert.Equal(t, "b2-1", detail.Blocks[1].Children[0].ID)
}

func TestPostGetBySlug_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /databases/"+postsDatabaseID+"/query", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, queryResults())
	})

	g := newGateway(t, mux, gatewayOptions{})
	w := g.get("/api/posts/no-such-post")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Post not found"}`, w.Body.String())
}

func TestPostGetBySlug_BlocksFetchFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /databases/"+postsDatabaseID+"/query", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, queryResults(postPageJSON("p1", "Hello World", "hello-world", "2025-06-01")))
	})
	mux.HandleFunc("GET /blocks/p1/children", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	g := newGateway(t, mux, gatewayOptions{})
	w := g.get("/api/posts/hello-world")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch content"}`, w.Body.String())
}

func TestPosts_RateLimited(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /databases/"+postsDatabaseID+"/query", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, queryResults())
	})

	g := newGateway(t, mux, gatewayOptions{rateLimitMax: 2})

	require.Equal(t, http.StatusOK, g.get("/api/posts").Code)
	require.Equal(t, http.StatusOK, g.get("/api/posts").Code)

	third := g.get("/api/posts")
	assert.Equal(t, http.StatusTooManyRequests, third.Code)
	assert.Equal(t, "60", third.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many requests. Please try again later."}`, third.Body.String())

	// Rejections still carry CORS headers.
	assert.Equal(t, "https://kgeng.dev", third.Header().Get("Access-Control-Allow-Origin"))
}

func TestPosts_LocalDevBypass(t *testing.T) {
	var queries atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /databases/"+postsDatabaseID+"/query", func(w http.ResponseWriter, _ *http.Request) {
		queries.Add(1)
		fmt.Fprint(w, queryResults())
	})

	g := newGateway(t, mux, gatewayOptions{rateLimitMax: 1})

	for range 3 {
		w := g.getLocal("/api/posts")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	}

	// Every local request hit upstream: no rate limit, no response cache.
	assert.EqualValues(t, 3, queries.Load())
	assert.Empty(t, g.mr.Keys())
}
