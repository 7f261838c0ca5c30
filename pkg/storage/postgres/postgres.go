// Package postgres is the production Storage backend.
package postgres

import (
	"context"
	_ "embed"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"postboard/pkg/models"
	"postboard/pkg/storage"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

type Store struct {
	db *pgxpool.Pool
}

// New connects to the database and applies the embedded schema. The schema
// only creates missing objects, so repeated startups are safe.
func New(ctx context.Context, conStr string) (*Store, error) {
	db, err := pgxpool.Connect(ctx, conStr)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close() {
	s.db.Close()
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	err := s.db.QueryRow(ctx, `
		INSERT INTO users (email, first_name, last_name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.User{}, storage.ErrEmailTaken
		}
		return models.User{}, err
	}

	return user, nil
}

func (s *Store) UserByID(ctx context.Context, id int64) (models.User, error) {
	return s.scanUser(s.db.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, password_hash, created_at
		FROM users
		WHERE id = $1
	`, id))
}

func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.scanUser(s.db.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, password_hash, created_at
		FROM users
		WHERE email = $1
	`, email))
}

func (s *Store) scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, storage.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}

	return u, nil
}

func (s *Store) Users(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, email, first_name, last_name, password_hash, created_at
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func (s *Store) UpdateUserName(ctx context.Context, id int64, upd storage.UserNameUpdate) (models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx, `
		UPDATE users
		SET first_name = COALESCE($2, first_name),
		    last_name  = COALESCE($3, last_name)
		WHERE id = $1
		RETURNING id, email, first_name, last_name, password_hash, created_at
	`,
		id,
		upd.FirstName,
		upd.LastName,
	).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, storage.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}

	return u, nil
}

func (s *Store) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	err := s.db.QueryRow(ctx, `
		INSERT INTO posts (author_id, content, published)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`,
		post.AuthorID,
		post.Content,
		post.Published,
	).Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "posts_author_id_fkey" {
			return models.Post{}, storage.ErrUserNotFound
		}
		return models.Post{}, err
	}

	return post, nil
}

func (s *Store) PostByID(ctx context.Context, id int64) (models.Post, error) {
	var p models.Post
	err := s.db.QueryRow(ctx, `
		SELECT id, author_id, content, published, created_at, updated_at
		FROM posts
		WHERE id = $1
	`, id).Scan(&p.ID, &p.AuthorID, &p.Content, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Post{}, storage.ErrPostNotFound
	}
	if err != nil {
		return models.Post{}, err
	}

	return p, nil
}

func (s *Store) PostsByAuthor(ctx context.Context, authorID int64, published bool) ([]models.Post, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, author_id, content, published, created_at, updated_at
		FROM posts
		WHERE author_id = $1 AND published = $2
		ORDER BY id
	`, authorID, published)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPosts(rows)
}

// Feed returns a page of published posts ordered by updated date descending,
// optionally filtered by a content substring, together with the total number
// of pages available.
func (s *Store) Feed(ctx context.Context, contains string, page, limit int) ([]models.Post, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}

	var total int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM posts
		WHERE published AND ($1 = '' OR content LIKE '%' || $1 || '%')
	`, contains).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, author_id, content, published, created_at, updated_at
		FROM posts
		WHERE published AND ($1 = '' OR content LIKE '%' || $1 || '%')
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`, contains, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts, err := scanPosts(rows)
	if err != nil {
		return nil, 0, err
	}

	numPages := (total + limit - 1) / limit

	return posts, numPages, nil
}

func scanPosts(rows pgx.Rows) ([]models.Post, error) {
	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Content, &p.Published, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}

	return posts, rows.Err()
}

func (s *Store) UpdatePostContent(ctx context.Context, id int64, content string) (models.Post, error) {
	var p models.Post
	err := s.db.QueryRow(ctx, `
		UPDATE posts
		SET content = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, author_id, content, published, created_at, updated_at
	`, id, content).Scan(&p.ID, &p.AuthorID, &p.Content, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Post{}, storage.ErrPostNotFound
	}
	if err != nil {
		return models.Post{}, err
	}

	return p, nil
}

func (s *Store) SetPostPublished(ctx context.Context, id int64, published bool) (models.Post, error) {
	var p models.Post
	err := s.db.QueryRow(ctx, `
		UPDATE posts
		SET published = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, author_id, content, published, created_at, updated_at
	`, id, published).Scan(&p.ID, &p.AuthorID, &p.Content, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Post{}, storage.ErrPostNotFound
	}
	if err != nil {
		return models.Post{}, err
	}

	return p, nil
}

func (s *Store) DeletePost(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrPostNotFound
	}

	return nil
}

func (s *Store) CreateComment(ctx context.Context, comment models.Comment) (models.Comment, error) {
	err := s.db.QueryRow(ctx, `
		INSERT INTO comments (post_id, author_id, content, reply_to)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`,
		comment.PostID,
		comment.AuthorID,
		comment.Content,
		comment.ReplyTo,
	).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.ConstraintName {
			case "comments_post_id_fkey":
				return models.Comment{}, storage.ErrPostNotFound
			case "comments_reply_to_fkey":
				return models.Comment{}, storage.ErrCommentNotFound
			}
		}
		return models.Comment{}, err
	}

	return comment, nil
}

func (s *Store) CommentByID(ctx context.Context, id int64) (models.Comment, error) {
	var c models.Comment
	err := s.db.QueryRow(ctx, `
		SELECT id, post_id, author_id, content, reply_to, created_at
		FROM comments
		WHERE id = $1
	`, id).Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.ReplyTo, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Comment{}, storage.ErrCommentNotFound
	}
	if err != nil {
		return models.Comment{}, err
	}

	return c, nil
}

func (s *Store) CommentsByPost(ctx context.Context, postID int64) ([]models.Comment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, post_id, author_id, content, reply_to, created_at
		FROM comments
		WHERE post_id = $1
		ORDER BY id
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanComments(rows)
}

func (s *Store) CommentsByAuthor(ctx context.Context, authorID int64) ([]models.Comment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, post_id, author_id, content, reply_to, created_at
		FROM comments
		WHERE author_id = $1
		ORDER BY id
	`, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanComments(rows)
}

func (s *Store) CommentsByReplyTo(ctx context.Context, replyToID int64) ([]models.Comment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, post_id, author_id, content, reply_to, created_at
		FROM comments
		WHERE reply_to = $1
		ORDER BY id
	`, replyToID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanComments(rows)
}

func scanComments(rows pgx.Rows) ([]models.Comment, error) {
	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.ReplyTo, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

func (s *Store) UpdateCommentContent(ctx context.Context, id int64, content string) (models.Comment, error) {
	var c models.Comment
	err := s.db.QueryRow(ctx, `
		UPDATE comments
		SET content = $2
		WHERE id = $1
		RETURNING id, post_id, author_id, content, reply_to, created_at
	`, id, content).Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.ReplyTo, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Comment{}, storage.ErrCommentNotFound
	}
	if err != nil {
		return models.Comment{}, err
	}

	return c, nil
}

func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrCommentNotFound
	}

	return nil
}
