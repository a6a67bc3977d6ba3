package models

import "time"

// Validate checks that the request carries the fields a comment needs.
func (c *NewComment) Validate() error {
	return check(c)
}

// Row builds the comment row to insert.
func (c *NewComment) Row() *Comment {
	return &Comment{
		PostID:  c.PostID,
		Content: c.Content,
		Author:  c.Author,
	}
}

// BeforeCreate applies the defaults a store assigns on insert
func (c *Comment) BeforeCreate() {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
}
