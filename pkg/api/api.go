// Package api composes the credential service, auth guard, post and comment
// managers and the notification bus behind an HTTP surface. Handlers stay
// thin: authenticate, forward, map errors.
package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"postboard/pkg/auth"
	"postboard/pkg/comments"
	"postboard/pkg/posts"
	"postboard/pkg/pubsub"
	"postboard/pkg/storage"
)

type API struct {
	r *mux.Router

	db       storage.Storage
	auth     *auth.Service
	posts    *posts.Manager
	comments *comments.Manager
	bus      *pubsub.Bus
}

func New(db storage.Storage, authSvc *auth.Service, bus *pubsub.Bus) *API {
	api := API{
		r:        mux.NewRouter(),
		db:       db,
		auth:     authSvc,
		posts:    posts.New(db),
		comments: comments.New(db, bus),
		bus:      bus,
	}
	api.endpoints()

	return &api
}

func (api *API) Router() *mux.Router {
	return api.r
}

func (api *API) endpoints() {
	api.r.Use(api.requestIDMiddleware)
	api.r.Use(api.loggingMiddleware)
	api.r.Use(api.headerMiddleware)
	api.r.Use(api.tokenMiddleware)

	api.r.HandleFunc("/signup", api.signupHandler).Methods(http.MethodPost)
	api.r.HandleFunc("/login", api.loginHandler).Methods(http.MethodPost)

	api.r.HandleFunc("/users", api.usersHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/users/{id:[0-9]+}", api.userHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/users/{id:[0-9]+}/name", api.updateUserNameHandler).Methods(http.MethodPatch)
	api.r.HandleFunc("/users/{id:[0-9]+}/posts", api.postsByAuthorHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/users/{id:[0-9]+}/comments", api.commentsByAuthorHandler).Methods(http.MethodGet)

	api.r.HandleFunc("/feed", api.feedHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/posts", api.createPostHandler).Methods(http.MethodPost)
	api.r.HandleFunc("/posts/{id:[0-9]+}", api.postHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/posts/{id:[0-9]+}", api.updatePostHandler).Methods(http.MethodPatch)
	api.r.HandleFunc("/posts/{id:[0-9]+}", api.deletePostHandler).Methods(http.MethodDelete)
	api.r.HandleFunc("/posts/{id:[0-9]+}/publish", api.togglePublishHandler).Methods(http.MethodPost)
	api.r.HandleFunc("/posts/{id:[0-9]+}/comments", api.commentsOfPostHandler).Methods(http.MethodGet)

	api.r.HandleFunc("/comments", api.createCommentHandler).Methods(http.MethodPost)
	api.r.HandleFunc("/comments/events", api.commentEventsHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/comments/{id:[0-9]+}", api.commentHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/comments/{id:[0-9]+}", api.updateCommentHandler).Methods(http.MethodPatch)
	api.r.HandleFunc("/comments/{id:[0-9]+}", api.deleteCommentHandler).Methods(http.MethodDelete)
	api.r.HandleFunc("/comments/{id:[0-9]+}/replies", api.repliesHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/comments/{id:[0-9]+}/replyto", api.replyTargetHandler).Methods(http.MethodGet)
}

// pathID extracts the numeric {id} path variable.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}
