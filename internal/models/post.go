package models

import (
	"time"
)

// FeedPageSize caps the global community feed.
const FeedPageSize = 50

type Post struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	ImageURL  *string   `json:"imageUrl"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

// FeedPost is a post as shown in the community feed, with its author's
// snapshot taken at read time. User is null when the author no longer exists.
type FeedPost struct {
	Post
	User *Author `json:"user"`
}

// CreatePostRequest has no likes field: the like count starts at zero and
// only ever moves through the like endpoint.
type CreatePostRequest struct {
	Content  string  `json:"content" validate:"required"`
	ImageURL *string `json:"imageUrl" validate:"omitempty,url"`
}

func (r *CreatePostRequest) ToPost(owner string, now time.Time) *Post {
	return &Post{
		UserID:    owner,
		Content:   r.Content,
		ImageURL:  r.ImageURL,
		CreatedAt: now,
	}
}
