package models

import "time"

// Validate checks that the request carries the fields a post needs.
func (p *NewPost) Validate() error {
	return check(p)
}

// Row builds the post row to insert. ID and CreatedAt are left to the store.
func (p *NewPost) Row() *Post {
	return &Post{
		Title:   p.Title,
		Content: p.Content,
		Author:  p.Author,
	}
}

// BeforeCreate applies the defaults a store assigns on insert.
func (p *Post) BeforeCreate() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
}
