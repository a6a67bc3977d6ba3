package models

import "time"

// Post represents a blog post row.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    *string   `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment represents a comment row attached to exactly one post.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	Content   string    `json:"content"`
	Author    *string   `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPost is the body accepted by the create post endpoint.
type NewPost struct {
	Title   string  `json:"title" validate:"required"`
	Content string  `json:"content"`
	Author  *string `json:"author"`
}

// NewComment is the body accepted by the create comment endpoint.
type NewComment struct {
	PostID  int64   `json:"post_id" validate:"required,gt=0"`
	Content string  `json:"content" validate:"required"`
	Author  *string `json:"author"`
}
