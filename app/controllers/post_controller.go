package controllers

import (
	"net/http"

	"postboard/app/models"
	"postboard/app/services"
)

// PostController handles HTTP requests for blog posts
type PostController struct {
	postService *services.PostService
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService) *PostController {
	return &PostController{postService: postService}
}

// Index handles listing all posts
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.ListPosts(r.Context())
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, posts)
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var in models.NewPost
	if err := decodeJSON(r, &in); err != nil {
		sendError(w, r, err)
		return
	}

	rows, err := pc.postService.CreatePost(r.Context(), &in)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, rows)
}
