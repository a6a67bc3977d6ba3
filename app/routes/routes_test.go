package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"postboard/app/models"
	"postboard/app/repositories"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func setupTestRouter(t *testing.T, opts Options) http.Handler {
	t.Helper()
	repo, err := repositories.NewInMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	if opts.Driver == "" {
		opts.Driver = repo.Driver
	}
	if opts.AllowedOrigins == "" {
		opts.AllowedOrigins = "*"
	}
	return SetupRoutes(repo.Posts, repo.Comments, opts)
}

func send(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func TestBlogScenario(t *testing.T) {
	router := setupTestRouter(t, Options{})

	w := send(t, router, "POST", "/posts", `{"title":"Hello","content":"World","author":"Ann"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var created []models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Len(t, created, 1)
	post := created[0]

	w = send(t, router, "GET", "/posts", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var posts []models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posts))
	require.Len(t, posts, 1)
	assert.Equal(t, post.ID, posts[0].ID)
	assert.Equal(t, "Hello", posts[0].Title)
	assert.Equal(t, "World", posts[0].Content)
	assert.Equal(t, "Ann", *posts[0].Author)

	w = send(t, router, "POST", "/comments", fmt.Sprintf(`{"post_id":%d,"content":"First!","author":null}`, post.ID))
	require.Equal(t, http.StatusOK, w.Code)

	w = send(t, router, "GET", fmt.Sprintf("/comments/%d", post.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	var comments []models.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "First!", comments[0].Content)
	assert.Nil(t, comments[0].Author)

	t.Run("comments for missing post", func(t *testing.T) {
		w := send(t, router, "GET", "/comments/999", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("comment for missing post", func(t *testing.T) {
		w := send(t, router, "POST", "/comments", `{"post_id":999,"content":"orphan"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		var res errorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Contains(t, res.Error, "foreign key")
		assert.Equal(t, "store_failure", res.Kind)

		w = send(t, router, "GET", "/comments/999", "")
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}

func TestInvalidRequests(t *testing.T) {
	router := setupTestRouter(t, Options{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"missing title", "POST", "/posts", `{"content":"World"}`},
		{"missing post_id", "POST", "/comments", `{"content":"x"}`},
		{"non-numeric postId", "GET", "/comments/abc", ""},
		{"malformed body", "POST", "/posts", `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := send(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			var res errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			assert.NotEmpty(t, res.Error)
			assert.Equal(t, "invalid_request", res.Kind)
		})
	}
}

func TestUnreachableStore(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	client := repositories.NewRestClient(addr, "key", nil)
	router := SetupRoutes(
		repositories.NewRestPostRepository(client),
		repositories.NewRestCommentRepository(client),
		Options{AllowedOrigins: "*", Driver: "rest"},
	)

	requests := []struct {
		method string
		path   string
		body   string
	}{
		{"GET", "/posts", ""},
		{"POST", "/posts", `{"title":"Hello","content":"World"}`},
		{"GET", "/comments/1", ""},
		{"POST", "/comments", `{"post_id":1,"content":"x"}`},
	}

	for _, rq := range requests {
		t.Run(rq.method+" "+rq.path, func(t *testing.T) {
			w := send(t, router, rq.method, rq.path, rq.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			var res errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			assert.NotEmpty(t, res.Error)
			assert.Equal(t, "store_failure", res.Kind)
		})
	}
}

func TestRouterExtras(t *testing.T) {
	router := setupTestRouter(t, Options{})

	t.Run("health", func(t *testing.T) {
		w := send(t, router, "GET", "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","store":"memory"}`, w.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		w := send(t, router, "GET", "/nope", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
	})

	t.Run("method not allowed", func(t *testing.T) {
		w := send(t, router, "DELETE", "/posts", "")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.JSONEq(t, `{"error":"method not allowed"}`, w.Body.String())
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/posts", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("request id", func(t *testing.T) {
		w := send(t, router, "GET", "/posts", "")
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})
}

func TestStaticDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>blog</h1>"), 0o644))

	router := setupTestRouter(t, Options{StaticDir: dir})

	w := send(t, router, "GET", "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>blog</h1>")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	w = send(t, router, "GET", "/posts", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
