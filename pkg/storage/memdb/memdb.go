// Package memdb is an in-memory Storage backend used in development mode and
// in unit tests. Records live in id-keyed maps with store-assigned sequential
// ids; parent links are kept by id and the replies view is computed as a
// reverse-index scan.
package memdb

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"postboard/pkg/models"
	"postboard/pkg/storage"
)

type Store struct {
	mu sync.Mutex

	users    map[int64]models.User
	posts    map[int64]models.Post
	comments map[int64]models.Comment

	nextUserID    int64
	nextPostID    int64
	nextCommentID int64
}

func New() *Store {
	return &Store{
		users:    make(map[int64]models.User),
		posts:    make(map[int64]models.Post),
		comments: make(map[int64]models.Comment),
	}
}

func (db *Store) Close() {}

func (db *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == user.Email {
			return models.User{}, storage.ErrEmailTaken
		}
	}

	db.nextUserID++
	user.ID = db.nextUserID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	db.users[user.ID] = user

	return user, nil
}

func (db *Store) UserByID(ctx context.Context, id int64) (models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	user, ok := db.users[id]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return user, nil
}

func (db *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (db *Store) Users(ctx context.Context) ([]models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	users := make([]models.User, 0, len(db.users))
	for _, u := range db.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return users, nil
}

func (db *Store) UpdateUserName(ctx context.Context, id int64, upd storage.UserNameUpdate) (models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	user, ok := db.users[id]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}
	if upd.FirstName != nil {
		user.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		user.LastName = *upd.LastName
	}
	db.users[id] = user

	return user, nil
}

func (db *Store) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.users[post.AuthorID]; !ok {
		return models.Post{}, storage.ErrUserNotFound
	}

	db.nextPostID++
	post.ID = db.nextPostID
	now := time.Now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = post.CreatedAt
	db.posts[post.ID] = post

	return post, nil
}

func (db *Store) PostByID(ctx context.Context, id int64) (models.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	post, ok := db.posts[id]
	if !ok {
		return models.Post{}, storage.ErrPostNotFound
	}

	return post, nil
}

func (db *Store) PostsByAuthor(ctx context.Context, authorID int64, published bool) ([]models.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var posts []models.Post
	for _, p := range db.posts {
		if p.AuthorID == authorID && p.Published == published {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })

	return posts, nil
}

func (db *Store) Feed(ctx context.Context, contains string, page, limit int) ([]models.Post, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}

	db.mu.Lock()
	var all []models.Post
	for _, p := range db.posts {
		if !p.Published {
			continue
		}
		if contains != "" && !strings.Contains(p.Content, contains) {
			continue
		}
		all = append(all, p)
	}
	db.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})

	total := len(all)
	numPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start >= total {
		return []models.Post{}, numPages, nil
	}
	end := start + limit
	if end > total {
		end = total
	}

	return all[start:end], numPages, nil
}

func (db *Store) UpdatePostContent(ctx context.Context, id int64, content string) (models.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	post, ok := db.posts[id]
	if !ok {
		return models.Post{}, storage.ErrPostNotFound
	}
	post.Content = content
	post.UpdatedAt = time.Now().UTC()
	db.posts[id] = post

	return post, nil
}

func (db *Store) SetPostPublished(ctx context.Context, id int64, published bool) (models.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	post, ok := db.posts[id]
	if !ok {
		return models.Post{}, storage.ErrPostNotFound
	}
	post.Published = published
	post.UpdatedAt = time.Now().UTC()
	db.posts[id] = post

	return post, nil
}

// DeletePost removes the post together with its comments, mirroring the
// postgres backend's ON DELETE CASCADE on comments.post_id.
func (db *Store) DeletePost(ctx context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.posts[id]; !ok {
		return storage.ErrPostNotFound
	}
	delete(db.posts, id)
	for cid, c := range db.comments {
		if c.PostID == id {
			delete(db.comments, cid)
		}
	}

	return nil
}

func (db *Store) CreateComment(ctx context.Context, comment models.Comment) (models.Comment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.posts[comment.PostID]; !ok {
		return models.Comment{}, storage.ErrPostNotFound
	}
	if comment.ReplyTo != nil {
		if _, ok := db.comments[*comment.ReplyTo]; !ok {
			return models.Comment{}, storage.ErrCommentNotFound
		}
	}

	db.nextCommentID++
	comment.ID = db.nextCommentID
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	db.comments[comment.ID] = comment

	return comment, nil
}

func (db *Store) CommentByID(ctx context.Context, id int64) (models.Comment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	comment, ok := db.comments[id]
	if !ok {
		return models.Comment{}, storage.ErrCommentNotFound
	}

	return comment, nil
}

func (db *Store) CommentsByPost(ctx context.Context, postID int64) ([]models.Comment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var comments []models.Comment
	for _, c := range db.comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })

	return comments, nil
}

func (db *Store) CommentsByAuthor(ctx context.Context, authorID int64) ([]models.Comment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var comments []models.Comment
	for _, c := range db.comments {
		if c.AuthorID == authorID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })

	return comments, nil
}

func (db *Store) CommentsByReplyTo(ctx context.Context, replyToID int64) ([]models.Comment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var comments []models.Comment
	for _, c := range db.comments {
		if c.ReplyTo != nil && *c.ReplyTo == replyToID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })

	return comments, nil
}

func (db *Store) UpdateCommentContent(ctx context.Context, id int64, content string) (models.Comment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	comment, ok := db.comments[id]
	if !ok {
		return models.Comment{}, storage.ErrCommentNotFound
	}
	comment.Content = content
	db.comments[id] = comment

	return comment, nil
}

// DeleteComment removes the comment and nullifies the reply link of its
// direct replies, which become root comments of their post. This mirrors the
// postgres backend's ON DELETE SET NULL on comments.reply_to.
func (db *Store) DeleteComment(ctx context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.comments[id]; !ok {
		return storage.ErrCommentNotFound
	}
	delete(db.comments, id)
	for cid, c := range db.comments {
		if c.ReplyTo != nil && *c.ReplyTo == id {
			c.ReplyTo = nil
			db.comments[cid] = c
		}
	}

	return nil
}
