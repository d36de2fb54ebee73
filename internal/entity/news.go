package domain

import "time"

// News is a storefront article. Only published articles are public.
type News struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Image       string    `json:"image"`
	AuthorID    string    `json:"author"`
	AuthorName  string    `json:"authorName,omitempty"`
	PublishDate time.Time `json:"publishDate"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
