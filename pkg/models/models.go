// Package models contains the entity and event types shared across postboard packages.
package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Post struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	Content   string    `json:"content"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comment belongs to exactly one post and one author. ReplyTo is nil for
// root comments; when set it references an already persisted comment on the
// same post. The replies view is a derived reverse-index query, not a stored
// edge.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	AuthorID  int64     `json:"author_id"`
	Content   string    `json:"content"`
	ReplyTo   *int64    `json:"reply_to,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EventNewComment is the only topic the notification bus carries.
const EventNewComment = "NEW_COMMENT"

// Event is an ephemeral notification value. It is never persisted; its
// lifetime is the delivery to currently attached subscribers.
type Event struct {
	Type    string  `json:"type"`
	Comment Comment `json:"payload"`
}
