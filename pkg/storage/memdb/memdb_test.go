package memdb

import (
	"context"
	"errors"
	"testing"

	"postboard/pkg/models"
	"postboard/pkg/storage"
)

func TestStore_CreateUser_UniqueEmail(t *testing.T) {
	db := New()
	ctx := context.Background()

	user, err := db.CreateUser(ctx, models.User{Email: "a@x.com", FirstName: "Ann"})
	if err != nil {
		t.Fatalf("unexpected error creating user: %v", err)
	}
	if user.ID != 1 {
		t.Errorf("want user id 1, got %d", user.ID)
	}
	if user.CreatedAt.IsZero() {
		t.Error("user created_at has zero time value")
	}

	_, err = db.CreateUser(ctx, models.User{Email: "a@x.com", FirstName: "Another"})
	if !errors.Is(err, storage.ErrEmailTaken) {
		t.Errorf("want ErrEmailTaken, got %v", err)
	}

	got, err := db.UserByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error fetching user by email: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("want user id %d, got %d", user.ID, got.ID)
	}

	if _, err := db.UserByID(ctx, 999); !errors.Is(err, storage.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}

func TestStore_UpdateUserName(t *testing.T) {
	db := New()
	ctx := context.Background()

	if _, err := db.CreateUser(ctx, models.User{Email: "a@x.com", FirstName: "Ann", LastName: "Lee"}); err != nil {
		t.Fatalf("unexpected error creating user: %v", err)
	}

	first := "Anna"
	got, err := db.UpdateUserName(ctx, 1, storage.UserNameUpdate{FirstName: &first})
	if err != nil {
		t.Fatalf("unexpected error updating name: %v", err)
	}
	if got.FirstName != "Anna" {
		t.Errorf("want first name Anna, got %q", got.FirstName)
	}
	// Unset fields stay untouched.
	if got.LastName != "Lee" {
		t.Errorf("want last name Lee, got %q", got.LastName)
	}
}

func commentsFixture(t *testing.T) (*Store, models.Post) {
	t.Helper()
	ctx := context.Background()

	db := New()
	if _, err := db.CreateUser(ctx, models.User{Email: "a@x.com", FirstName: "Ann"}); err != nil {
		t.Fatalf("unexpected error creating user: %v", err)
	}
	post, err := db.CreatePost(ctx, models.Post{AuthorID: 1, Content: "hello", Published: true})
	if err != nil {
		t.Fatalf("unexpected error creating post: %v", err)
	}

	return db, post
}

func TestStore_CommentsByAuthor(t *testing.T) {
	db, post := commentsFixture(t)
	ctx := context.Background()

	if _, err := db.CreateUser(ctx, models.User{Email: "b@x.com", FirstName: "Bob"}); err != nil {
		t.Fatalf("unexpected error creating user: %v", err)
	}

	mine, err := db.CreateComment(ctx, models.Comment{PostID: post.ID, AuthorID: 1, Content: "mine"})
	if err != nil {
		t.Fatalf("unexpected error creating comment: %v", err)
	}
	if _, err := db.CreateComment(ctx, models.Comment{PostID: post.ID, AuthorID: 2, Content: "theirs"}); err != nil {
		t.Fatalf("unexpected error creating comment: %v", err)
	}

	comments, err := db.CommentsByAuthor(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error listing comments by author: %v", err)
	}
	if len(comments) != 1 || comments[0].ID != mine.ID {
		t.Errorf("want comments [%d], got %+v", mine.ID, comments)
	}

	none, err := db.CommentsByAuthor(ctx, 999)
	if err != nil {
		t.Fatalf("unexpected error listing comments by author: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("want no comments for unknown author, got %+v", none)
	}
}

func TestStore_CreateComment(t *testing.T) {
	db, post := commentsFixture(t)
	ctx := context.Background()

	comment, err := db.CreateComment(ctx, models.Comment{PostID: post.ID, AuthorID: 1, Content: "root"})
	if err != nil {
		t.Fatalf("unexpected error creating comment: %v", err)
	}

	reply, err := db.CreateComment(ctx, models.Comment{PostID: post.ID, AuthorID: 1, Content: "reply", ReplyTo: &comment.ID})
	if err != nil {
		t.Fatalf("unexpected error creating reply: %v", err)
	}

	if _, err := db.CreateComment(ctx, models.Comment{PostID: 999, AuthorID: 1, Content: "x"}); !errors.Is(err, storage.ErrPostNotFound) {
		t.Errorf("want ErrPostNotFound for missing post, got %v", err)
	}
	missing := int64(999)
	if _, err := db.CreateComment(ctx, models.Comment{PostID: post.ID, AuthorID: 1, Content: "x", ReplyTo: &missing}); !errors.Is(err, storage.ErrCommentNotFound) {
		t.Errorf("want ErrCommentNotFound for missing parent, got %v", err)
	}

	replies, err := db.CommentsByReplyTo(ctx, comment.ID)
	if err != nil {
		t.Fatalf("unexpected error listing replies: %v", err)
	}
	if len(replies) != 1 || replies[0].ID != reply.ID {
		t.Errorf("want replies [%d], got %+v", reply.ID, replies)
	}
}

func TestStore_DeleteComment_PromotesReplies(t *testing.T) {
	db, post := commentsFixture(t)
	ctx := context.Background()

	parent, err := db.CreateComment(ctx, models.Comment{PostID: post.ID, AuthorID: 1, Content: "root"})
	if err != nil {
		t.Fatalf("unexpected error creating comment: %v", err)
	}
	reply, err := db.CreateComment(ctx, models.Comment{PostID: post.ID, AuthorID: 1, Content: "reply", ReplyTo: &parent.ID})
	if err != nil {
		t.Fatalf("unexpected error creating reply: %v", err)
	}

	if err := db.DeleteComment(ctx, parent.ID); err != nil {
		t.Fatalf("unexpected error deleting comment: %v", err)
	}

	got, err := db.CommentByID(ctx, reply.ID)
	if err != nil {
		t.Fatalf("unexpected error reading reply: %v", err)
	}
	if got.ReplyTo != nil {
		t.Errorf("want nullified reply link after parent delete, got %d", *got.ReplyTo)
	}

	if err := db.DeleteComment(ctx, parent.ID); !errors.Is(err, storage.ErrCommentNotFound) {
		t.Errorf("want ErrCommentNotFound for repeated delete, got %v", err)
	}
}

func TestStore_DeletePost_CascadesComments(t *testing.T) {
	db, post := commentsFixture(t)
	ctx := context.Background()

	if _, err := db.CreateComment(ctx, models.Comment{PostID: post.ID, AuthorID: 1, Content: "c1"}); err != nil {
		t.Fatalf("unexpected error creating comment: %v", err)
	}

	if err := db.DeletePost(ctx, post.ID); err != nil {
		t.Fatalf("unexpected error deleting post: %v", err)
	}

	comments, err := db.CommentsByPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("unexpected error listing comments: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("want no comments after post delete, got %+v", comments)
	}
}

func TestStore_Feed(t *testing.T) {
	db, _ := commentsFixture(t)
	ctx := context.Background()

	// The fixture post plus four more published, one draft.
	for i := 0; i < 4; i++ {
		if _, err := db.CreatePost(ctx, models.Post{AuthorID: 1, Content: "published post", Published: true}); err != nil {
			t.Fatalf("unexpected error creating post: %v", err)
		}
	}
	if _, err := db.CreatePost(ctx, models.Post{AuthorID: 1, Content: "draft post"}); err != nil {
		t.Fatalf("unexpected error creating post: %v", err)
	}

	posts, numPages, err := db.Feed(ctx, "", 1, 3)
	if err != nil {
		t.Fatalf("unexpected error fetching feed: %v", err)
	}
	if len(posts) != 3 {
		t.Errorf("want 3 posts on page 1, got %d", len(posts))
	}
	if numPages != 2 {
		t.Errorf("want 2 pages, got %d", numPages)
	}
	for _, p := range posts {
		if !p.Published {
			t.Errorf("want only published posts in feed, got draft %d", p.ID)
		}
	}

	filtered, _, err := db.Feed(ctx, "hello", 1, 10)
	if err != nil {
		t.Fatalf("unexpected error fetching filtered feed: %v", err)
	}
	if len(filtered) != 1 {
		t.Errorf("want 1 post matching %q, got %d", "hello", len(filtered))
	}
}
