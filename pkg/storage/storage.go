// Package storage defines the persistent-store contract shared by all
// postboard backends.
package storage

import (
	"context"
	"fmt"

	"postboard/pkg/models"
)

var (
	ErrConnectDB       = fmt.Errorf("unable to establish DB connection")
	ErrDBNotResponding = fmt.Errorf("DB not responding")

	ErrUserNotFound    = fmt.Errorf("user not found")
	ErrEmailTaken      = fmt.Errorf("email already taken")
	ErrPostNotFound    = fmt.Errorf("post not found")
	ErrCommentNotFound = fmt.Errorf("comment not found")
)

// UserNameUpdate carries the optional name fields of an update; a nil field
// is left unchanged.
type UserNameUpdate struct {
	FirstName *string
	LastName  *string
}

// Storage is the CRUD and relation-traversal surface over users, posts and
// comments. Implementations must be safe for concurrent use.
type Storage interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	Users(ctx context.Context) ([]models.User, error)
	UpdateUserName(ctx context.Context, id int64, upd UserNameUpdate) (models.User, error)

	CreatePost(ctx context.Context, post models.Post) (models.Post, error)
	PostByID(ctx context.Context, id int64) (models.Post, error)
	PostsByAuthor(ctx context.Context, authorID int64, published bool) ([]models.Post, error)
	Feed(ctx context.Context, contains string, page, limit int) (posts []models.Post, numPages int, err error)
	UpdatePostContent(ctx context.Context, id int64, content string) (models.Post, error)
	SetPostPublished(ctx context.Context, id int64, published bool) (models.Post, error)
	DeletePost(ctx context.Context, id int64) error

	CreateComment(ctx context.Context, comment models.Comment) (models.Comment, error)
	CommentByID(ctx context.Context, id int64) (models.Comment, error)
	CommentsByPost(ctx context.Context, postID int64) ([]models.Comment, error)
	CommentsByAuthor(ctx context.Context, authorID int64) ([]models.Comment, error)
	CommentsByReplyTo(ctx context.Context, replyToID int64) ([]models.Comment, error)
	UpdateCommentContent(ctx context.Context, id int64, content string) (models.Comment, error)
	DeleteComment(ctx context.Context, id int64) error

	Close()
}
