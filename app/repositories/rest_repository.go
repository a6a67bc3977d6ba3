package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"postboard/app/models"
)

// RestClient talks to a hosted PostgREST endpoint (for example Supabase) at
// <baseURL>/rest/v1/<table>, authenticating with the project's API key.
type RestClient struct {
	baseURL string
	key     string
	http    *http.Client
}

// NewRestClient creates a client. A nil httpClient means http.DefaultClient.
func NewRestClient(baseURL, key string, httpClient *http.Client) *RestClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RestClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		http:    httpClient,
	}
}

// RestError is the error body PostgREST returns for a rejected request.
type RestError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *RestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("data store returned %d %s", e.Status, http.StatusText(e.Status))
}

// Is lets errors.Is match foreign key rejections against ErrForeignKeyViolation.
func (e *RestError) Is(target error) bool {
	return target == ErrForeignKeyViolation && e.Code == foreignKeyViolation
}

func (c *RestClient) tableURL(table string, query url.Values) string {
	u := c.baseURL + "/rest/v1/" + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do sends one request and decodes a successful JSON response into out.
func (c *RestClient) do(ctx context.Context, method, table string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.tableURL(table, query), reader)
	if err != nil {
		return err
	}
	request.Header.Set("apikey", c.key)
	request.Header.Set("Authorization", "Bearer "+c.key)
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		request.Header.Set("Prefer", "return=representation")
	}

	response, err := c.http.Do(request)
	if response != nil && response.Body != nil {
		defer func() {
			_ = response.Body.Close()
		}()
	}
	if err != nil {
		return err
	}

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}
	if response.StatusCode >= http.StatusMultipleChoices {
		restErr := &RestError{Status: response.StatusCode}
		if jsonErr := json.Unmarshal(data, restErr); jsonErr != nil && len(data) > 0 {
			restErr.Message = string(data)
		}
		return restErr
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func eq(id int64) string {
	return "eq." + strconv.FormatInt(id, 10)
}

type postInsert struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Author  *string `json:"author"`
}

type commentInsert struct {
	PostID  int64   `json:"post_id"`
	Content string  `json:"content"`
	Author  *string `json:"author"`
}

// RestPostRepository implements PostRepository over the posts endpoint.
type RestPostRepository struct {
	client *RestClient
}

func NewRestPostRepository(client *RestClient) *RestPostRepository {
	return &RestPostRepository{client: client}
}

func (r *RestPostRepository) Create(ctx context.Context, post *models.Post) error {
	var rows []*models.Post
	in := postInsert{Title: post.Title, Content: post.Content, Author: post.Author}
	if err := r.client.do(ctx, http.MethodPost, "posts", nil, in, &rows); err != nil {
		return err
	}
	if len(rows) > 0 {
		*post = *rows[0]
	}
	return nil
}

func (r *RestPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	posts := []*models.Post{}
	query := url.Values{"select": {"*"}, "order": {"id.asc"}}
	if err := r.client.do(ctx, http.MethodGet, "posts", query, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *RestPostRepository) Delete(ctx context.Context, id int64) error {
	var rows []*models.Post
	query := url.Values{"id": {eq(id)}}
	if err := r.client.do(ctx, http.MethodDelete, "posts", query, nil, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

// RestCommentRepository implements CommentRepository over the comments endpoint.
type RestCommentRepository struct {
	client *RestClient
}

func NewRestCommentRepository(client *RestClient) *RestCommentRepository {
	return &RestCommentRepository{client: client}
}

func (r *RestCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	var rows []*models.Comment
	in := commentInsert{PostID: comment.PostID, Content: comment.Content, Author: comment.Author}
	if err := r.client.do(ctx, http.MethodPost, "comments", nil, in, &rows); err != nil {
		return err
	}
	if len(rows) > 0 {
		*comment = *rows[0]
	}
	return nil
}

func (r *RestCommentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	query := url.Values{"select": {"*"}, "post_id": {eq(postID)}, "order": {"id.asc"}}
	if err := r.client.do(ctx, http.MethodGet, "comments", query, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}
