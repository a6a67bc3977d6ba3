package repositories_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"postboard/app/models"
	"postboard/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakePostgREST serves the subset of the PostgREST contract the rest
// driver uses, storing rows in an in-memory badger repository.
func newFakePostgREST(t *testing.T, key string) *httptest.Server {
	t.Helper()
	repo, err := repositories.NewInMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	writeJSON := func(w http.ResponseWriter, status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	writeErr := func(w http.ResponseWriter, status int, code, message string) {
		writeJSON(w, status, map[string]string{"code": code, "message": message})
	}
	filterID := func(r *http.Request, column string) (int64, bool) {
		v := strings.TrimPrefix(r.URL.Query().Get(column), "eq.")
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/posts", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != key || r.Header.Get("Authorization") != "Bearer "+key {
			writeErr(w, http.StatusUnauthorized, "", "Invalid API key")
			return
		}
		ctx := r.Context()
		switch r.Method {
		case http.MethodGet:
			posts, err := repo.Posts.List(ctx)
			if err != nil {
				writeErr(w, http.StatusInternalServerError, "XX000", err.Error())
				return
			}
			writeJSON(w, http.StatusOK, posts)
		case http.MethodPost:
			var post models.Post
			if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
				writeErr(w, http.StatusBadRequest, "PGRST102", "Empty or invalid json")
				return
			}
			if err := repo.Posts.Create(ctx, &post); err != nil {
				writeErr(w, http.StatusInternalServerError, "XX000", err.Error())
				return
			}
			writeJSON(w, http.StatusCreated, []*models.Post{&post})
		case http.MethodDelete:
			id, ok := filterID(r, "id")
			if !ok {
				writeErr(w, http.StatusBadRequest, "22P02", "invalid input syntax for type bigint")
				return
			}
			if err := repo.Posts.Delete(ctx, id); errors.Is(err, repositories.ErrNotFound) {
				writeJSON(w, http.StatusOK, []*models.Post{})
				return
			}
			writeJSON(w, http.StatusOK, []map[string]int64{{"id": id}})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/rest/v1/comments", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != key {
			writeErr(w, http.StatusUnauthorized, "", "Invalid API key")
			return
		}
		ctx := r.Context()
		switch r.Method {
		case http.MethodGet:
			postID, ok := filterID(r, "post_id")
			if !ok {
				writeErr(w, http.StatusBadRequest, "22P02", "invalid input syntax for type bigint")
				return
			}
			comments, err := repo.Comments.ListByPost(ctx, postID)
			if err != nil {
				writeErr(w, http.StatusInternalServerError, "XX000", err.Error())
				return
			}
			writeJSON(w, http.StatusOK, comments)
		case http.MethodPost:
			var comment models.Comment
			if err := json.NewDecoder(r.Body).Decode(&comment); err != nil {
				writeErr(w, http.StatusBadRequest, "PGRST102", "Empty or invalid json")
				return
			}
			err := repo.Comments.Create(ctx, &comment)
			if errors.Is(err, repositories.ErrForeignKeyViolation) {
				writeErr(w, http.StatusConflict, "23503", err.Error())
				return
			}
			if err != nil {
				writeErr(w, http.StatusInternalServerError, "XX000", err.Error())
				return
			}
			writeJSON(w, http.StatusCreated, []*models.Comment{&comment})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRestClientSendsPostgRESTRequests(t *testing.T) {
	var seen []*http.Request
	var bodies []map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Clone(context.Background()))
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies = append(bodies, body)
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `[{"id":12,"title":"Hello","content":"World","author":null,"created_at":"2024-05-01T10:00:00Z"}]`)
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	client := repositories.NewRestClient(srv.URL, "secret", srv.Client())
	posts := repositories.NewRestPostRepository(client)
	comments := repositories.NewRestCommentRepository(client)
	ctx := context.Background()

	post := &models.Post{Title: "Hello", Content: "World"}
	require.NoError(t, posts.Create(ctx, post))
	assert.Equal(t, int64(12), post.ID)
	assert.Equal(t, 2024, post.CreatedAt.Year())

	_, err := comments.ListByPost(ctx, 12)
	require.NoError(t, err)

	require.Len(t, seen, 2)

	insert := seen[0]
	assert.Equal(t, http.MethodPost, insert.Method)
	assert.Equal(t, "/rest/v1/posts", insert.URL.Path)
	assert.Equal(t, "secret", insert.Header.Get("apikey"))
	assert.Equal(t, "Bearer secret", insert.Header.Get("Authorization"))
	assert.Equal(t, "return=representation", insert.Header.Get("Prefer"))
	assert.Equal(t, "application/json", insert.Header.Get("Content-Type"))
	assert.Equal(t, map[string]interface{}{"title": "Hello", "content": "World", "author": nil}, bodies[0])

	list := seen[1]
	assert.Equal(t, http.MethodGet, list.Method)
	assert.Equal(t, "/rest/v1/comments", list.URL.Path)
	assert.Equal(t, "eq.12", list.URL.Query().Get("post_id"))
	assert.Equal(t, "*", list.URL.Query().Get("select"))
	assert.Empty(t, list.Header.Get("Prefer"))
}

func TestRestClientErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("message is forwarded verbatim", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"code":"42P01","message":"relation \"public.posts\" does not exist","details":null,"hint":null}`)
		}))
		defer srv.Close()

		posts := repositories.NewRestPostRepository(repositories.NewRestClient(srv.URL, "k", srv.Client()))
		_, err := posts.List(ctx)
		require.Error(t, err)
		assert.Equal(t, `relation "public.posts" does not exist`, err.Error())

		var restErr *repositories.RestError
		require.ErrorAs(t, err, &restErr)
		assert.Equal(t, http.StatusNotFound, restErr.Status)
		assert.Equal(t, "42P01", restErr.Code)
		assert.NotErrorIs(t, err, repositories.ErrForeignKeyViolation)
	})

	t.Run("foreign key code matches the sentinel", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			fmt.Fprint(w, `{"code":"23503","message":"insert or update on table \"comments\" violates foreign key constraint \"comments_post_id_fkey\""}`)
		}))
		defer srv.Close()

		comments := repositories.NewRestCommentRepository(repositories.NewRestClient(srv.URL, "k", srv.Client()))
		err := comments.Create(ctx, &models.Comment{PostID: 5, Content: "hi"})
		assert.ErrorIs(t, err, repositories.ErrForeignKeyViolation)
		assert.Contains(t, err.Error(), "comments_post_id_fkey")
	})

	t.Run("plain text body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, "upstream unavailable")
		}))
		defer srv.Close()

		posts := repositories.NewRestPostRepository(repositories.NewRestClient(srv.URL, "k", srv.Client()))
		_, err := posts.List(ctx)
		assert.EqualError(t, err, "upstream unavailable")
	})

	t.Run("empty body falls back to status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		posts := repositories.NewRestPostRepository(repositories.NewRestClient(srv.URL, "k", srv.Client()))
		_, err := posts.List(ctx)
		assert.EqualError(t, err, "data store returned 503 Service Unavailable")
	})

	t.Run("unreachable data store", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		posts := repositories.NewRestPostRepository(repositories.NewRestClient(url, "k", nil))
		_, err := posts.List(ctx)
		require.Error(t, err)
		assert.NotEmpty(t, err.Error())
	})

	t.Run("wrong key", func(t *testing.T) {
		srv := newFakePostgREST(t, "right")
		posts := repositories.NewRestPostRepository(repositories.NewRestClient(srv.URL, "wrong", srv.Client()))
		_, err := posts.List(ctx)
		assert.EqualError(t, err, "Invalid API key")
	})
}
