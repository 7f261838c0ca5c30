// Package comments enforces the structural and ownership rules of threaded
// comments. Reply links may only reference comments that already exist, so
// the reply graph stays a forest by construction.
package comments

import (
	"context"
	"errors"
	"strings"

	"postboard/pkg/apperr"
	"postboard/pkg/auth"
	"postboard/pkg/models"
	"postboard/pkg/pubsub"
	"postboard/pkg/storage"
)

type Manager struct {
	db  storage.Storage
	bus *pubsub.Bus
}

func New(db storage.Storage, bus *pubsub.Bus) *Manager {
	return &Manager{db: db, bus: bus}
}

type CreateInput struct {
	PostID  int64  `json:"post_id"`
	Content string `json:"content"`
	ReplyTo *int64 `json:"reply_to,omitempty"`
}

// Create persists a new comment authored by ident and publishes a NEW_COMMENT
// event. The author always comes from the authenticated identity, never from
// client input. The reply target, when set, must be an existing comment on
// the same post.
func (m *Manager) Create(ctx context.Context, ident auth.Identity, in CreateInput) (models.Comment, error) {
	if _, err := m.db.PostByID(ctx, in.PostID); err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			return models.Comment{}, apperr.NotFound("post not found")
		}
		return models.Comment{}, err
	}

	if in.ReplyTo != nil {
		parent, err := m.db.CommentByID(ctx, *in.ReplyTo)
		if errors.Is(err, storage.ErrCommentNotFound) {
			return models.Comment{}, apperr.NotFound("reply target not found")
		}
		if err != nil {
			return models.Comment{}, err
		}
		if parent.PostID != in.PostID {
			return models.Comment{}, apperr.Validation("reply target belongs to a different post")
		}
	}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return models.Comment{}, apperr.Validation("comment content must not be empty")
	}

	comment, err := m.db.CreateComment(ctx, models.Comment{
		PostID:   in.PostID,
		AuthorID: ident.UserID,
		Content:  content,
		ReplyTo:  in.ReplyTo,
	})
	if err != nil {
		// The post or parent may have vanished between the checks and the
		// insert; the store reports that as a missing reference.
		if errors.Is(err, storage.ErrPostNotFound) {
			return models.Comment{}, apperr.NotFound("post not found")
		}
		if errors.Is(err, storage.ErrCommentNotFound) {
			return models.Comment{}, apperr.NotFound("reply target not found")
		}
		return models.Comment{}, err
	}

	// Fire-and-forget: a slow subscriber degrades delivery, never the create.
	m.bus.Publish(models.EventNewComment, models.Event{Type: models.EventNewComment, Comment: comment})

	return comment, nil
}

// Update changes the comment's content. Only the stored author may update,
// and only the content is mutable.
func (m *Manager) Update(ctx context.Context, ident auth.Identity, id int64, content string) (models.Comment, error) {
	comment, err := m.byID(ctx, id)
	if err != nil {
		return models.Comment{}, err
	}
	if comment.AuthorID != ident.UserID {
		return models.Comment{}, apperr.Forbidden("action not allowed")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, apperr.Validation("comment content must not be empty")
	}

	return m.db.UpdateCommentContent(ctx, id, content)
}

// Delete removes the comment. Direct replies survive and become root
// comments of their post (the store nullifies their reply link).
func (m *Manager) Delete(ctx context.Context, ident auth.Identity, id int64) (models.Comment, error) {
	comment, err := m.byID(ctx, id)
	if err != nil {
		return models.Comment{}, err
	}
	if comment.AuthorID != ident.UserID {
		return models.Comment{}, apperr.Forbidden("action not allowed")
	}

	if err := m.db.DeleteComment(ctx, id); err != nil {
		return models.Comment{}, err
	}

	return comment, nil
}

func (m *Manager) ByID(ctx context.Context, id int64) (models.Comment, error) {
	return m.byID(ctx, id)
}

func (m *Manager) OfPost(ctx context.Context, postID int64) ([]models.Comment, error) {
	return m.db.CommentsByPost(ctx, postID)
}

// ByAuthor lists every comment the user wrote, across all posts.
func (m *Manager) ByAuthor(ctx context.Context, authorID int64) ([]models.Comment, error) {
	if _, err := m.db.UserByID(ctx, authorID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}

	return m.db.CommentsByAuthor(ctx, authorID)
}

// Replies returns the comments whose reply link points at id, the derived
// reverse of the stored parent edge.
func (m *Manager) Replies(ctx context.Context, id int64) ([]models.Comment, error) {
	if _, err := m.byID(ctx, id); err != nil {
		return nil, err
	}

	return m.db.CommentsByReplyTo(ctx, id)
}

// ReplyTarget resolves the parent of a comment; root comments have none.
func (m *Manager) ReplyTarget(ctx context.Context, id int64) (models.Comment, error) {
	comment, err := m.byID(ctx, id)
	if err != nil {
		return models.Comment{}, err
	}
	if comment.ReplyTo == nil {
		return models.Comment{}, apperr.NotFound("comment has no reply target")
	}

	return m.byID(ctx, *comment.ReplyTo)
}

func (m *Manager) byID(ctx context.Context, id int64) (models.Comment, error) {
	comment, err := m.db.CommentByID(ctx, id)
	if errors.Is(err, storage.ErrCommentNotFound) {
		return models.Comment{}, apperr.NotFound("comment not found")
	}
	if err != nil {
		return models.Comment{}, err
	}

	return comment, nil
}
