// Package posts applies ownership rules to post mutations. Reads are plain
// lookups; drafts are only visible to their author.
package posts

import (
	"context"
	"errors"

	"postboard/pkg/apperr"
	"postboard/pkg/auth"
	"postboard/pkg/models"
	"postboard/pkg/storage"
)

type Manager struct {
	db storage.Storage
}

func New(db storage.Storage) *Manager {
	return &Manager{db: db}
}

type CreateInput struct {
	Content   string `json:"content"`
	Published bool   `json:"published"`
}

// Create stores a new post authored by ident. Posts start as drafts unless
// the input says otherwise.
func (m *Manager) Create(ctx context.Context, ident auth.Identity, in CreateInput) (models.Post, error) {
	return m.db.CreatePost(ctx, models.Post{
		AuthorID:  ident.UserID,
		Content:   in.Content,
		Published: in.Published,
	})
}

func (m *Manager) ByID(ctx context.Context, id int64) (models.Post, error) {
	return m.byID(ctx, id)
}

func (m *Manager) PublishedByAuthor(ctx context.Context, authorID int64) ([]models.Post, error) {
	return m.db.PostsByAuthor(ctx, authorID, true)
}

// Drafts returns the author's unpublished posts; nobody else may list them.
func (m *Manager) Drafts(ctx context.Context, ident auth.Identity, authorID int64) ([]models.Post, error) {
	if ident.UserID != authorID {
		return nil, apperr.Forbidden("action not allowed")
	}

	return m.db.PostsByAuthor(ctx, authorID, false)
}

func (m *Manager) Feed(ctx context.Context, contains string, page, limit int) ([]models.Post, int, error) {
	return m.db.Feed(ctx, contains, page, limit)
}

func (m *Manager) UpdateContent(ctx context.Context, ident auth.Identity, id int64, content string) (models.Post, error) {
	if err := m.checkOwner(ctx, ident, id); err != nil {
		return models.Post{}, err
	}

	return m.db.UpdatePostContent(ctx, id, content)
}

// TogglePublished flips the published flag and returns the updated post.
func (m *Manager) TogglePublished(ctx context.Context, ident auth.Identity, id int64) (models.Post, error) {
	post, err := m.byID(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	if post.AuthorID != ident.UserID {
		return models.Post{}, apperr.Forbidden("action not allowed")
	}

	return m.db.SetPostPublished(ctx, id, !post.Published)
}

// Delete removes the post and, via the store, all of its comments.
func (m *Manager) Delete(ctx context.Context, ident auth.Identity, id int64) (models.Post, error) {
	post, err := m.byID(ctx, id)
	if err != nil {
		return models.Post{}, err
	}
	if post.AuthorID != ident.UserID {
		return models.Post{}, apperr.Forbidden("action not allowed")
	}

	if err := m.db.DeletePost(ctx, id); err != nil {
		return models.Post{}, err
	}

	return post, nil
}

func (m *Manager) checkOwner(ctx context.Context, ident auth.Identity, id int64) error {
	post, err := m.byID(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != ident.UserID {
		return apperr.Forbidden("action not allowed")
	}

	return nil
}

func (m *Manager) byID(ctx context.Context, id int64) (models.Post, error) {
	post, err := m.db.PostByID(ctx, id)
	if errors.Is(err, storage.ErrPostNotFound) {
		return models.Post{}, apperr.NotFound("post not found")
	}
	if err != nil {
		return models.Post{}, err
	}

	return post, nil
}
