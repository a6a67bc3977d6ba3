package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"postboard/app/models"
	"postboard/app/services"

	"github.com/gorilla/mux"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	commentService *services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService *services.CommentService) *CommentController {
	return &CommentController{commentService: commentService}
}

// Index lists the comments of the post named by the postId path variable.
func (cc *CommentController) Index(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["postId"]
	postID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		sendError(w, r, services.Invalid(fmt.Errorf("postId must be an integer, got %q", raw)))
		return
	}

	comments, err := cc.commentService.ListPostComments(r.Context(), postID)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, comments)
}

// Create handles creating a new comment
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	var in models.NewComment
	if err := decodeJSON(r, &in); err != nil {
		sendError(w, r, err)
		return
	}

	rows, err := cc.commentService.CreateComment(r.Context(), &in)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, rows)
}
