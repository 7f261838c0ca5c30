package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"postboard/pkg/apperr"
	"postboard/pkg/posts"
)

func (api *API) createPostHandler(w http.ResponseWriter, r *http.Request) {
	ident, err := api.auth.Authenticate(r.Context())
	if err != nil {
		api.writeError(w, r, "createPostHandler", err)
		return
	}

	var in posts.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.writeError(w, r, "createPostHandler", apperr.Validation("invalid JSON body"))
		return
	}
	defer r.Body.Close()

	post, err := api.posts.Create(r.Context(), ident, in)
	if err != nil {
		api.writeError(w, r, "createPostHandler", err)
		return
	}

	api.writeJSON(w, r, "createPostHandler", http.StatusCreated, post)
}

func (api *API) postHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		api.writeError(w, r, "postHandler", apperr.Validation("invalid post id"))
		return
	}

	post, err := api.posts.ByID(r.Context(), id)
	if err != nil {
		api.writeError(w, r, "postHandler", err)
		return
	}

	api.writeJSON(w, r, "postHandler", http.StatusOK, post)
}

// postsByAuthorHandler lists an author's published posts, or their drafts
// when ?drafts=true; drafts require the author's own token.
func (api *API) postsByAuthorHandler(w http.ResponseWriter, r *http.Request) {
	authorID, err := pathID(r)
	if err != nil {
		api.writeError(w, r, "postsByAuthorHandler", apperr.Validation("invalid user id"))
		return
	}

	if r.URL.Query().Get("drafts") == "true" {
		ident, err := api.auth.Authenticate(r.Context())
		if err != nil {
			api.writeError(w, r, "postsByAuthorHandler", err)
			return
		}
		drafts, err := api.posts.Drafts(r.Context(), ident, authorID)
		if err != nil {
			api.writeError(w, r, "postsByAuthorHandler", err)
			return
		}
		api.writeJSON(w, r, "postsByAuthorHandler", http.StatusOK, drafts)
		return
	}

	published, err := api.posts.PublishedByAuthor(r.Context(), authorID)
	if err != nil {
		api.writeError(w, r, "postsByAuthorHandler", err)
		return
	}

	api.writeJSON(w, r, "postsByAuthorHandler", http.StatusOK, published)
}

func (api *API) feedHandler(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}

	limit := 10
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if limit > 100 {
		limit = 100
	}

	contains := r.URL.Query().Get("contains")

	feed, numPages, err := api.posts.Feed(r.Context(), contains, page, limit)
	if err != nil {
		api.writeError(w, r, "feedHandler", err)
		return
	}

	resp := FeedResponse{
		Posts:      feed,
		Pagination: Pagination{TotalPages: numPages, CurrentPage: page, Limit: limit},
	}
	api.writeJSON(w, r, "feedHandler", http.StatusOK, resp)
}

type updatePostInput struct {
	Content string `json:"content"`
}

func (api *API) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	ident, err := api.auth.Authenticate(r.Context())
	if err != nil {
		api.writeError(w, r, "updatePostHandler", err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		api.writeError(w, r, "updatePostHandler", apperr.Validation("invalid post id"))
		return
	}

	var in updatePostInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.writeError(w, r, "updatePostHandler", apperr.Validation("invalid JSON body"))
		return
	}
	defer r.Body.Close()

	post, err := api.posts.UpdateContent(r.Context(), ident, id, in.Content)
	if err != nil {
		api.writeError(w, r, "updatePostHandler", err)
		return
	}

	api.writeJSON(w, r, "updatePostHandler", http.StatusOK, post)
}

func (api *API) togglePublishHandler(w http.ResponseWriter, r *http.Request) {
	ident, err := api.auth.Authenticate(r.Context())
	if err != nil {
		api.writeError(w, r, "togglePublishHandler", err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		api.writeError(w, r, "togglePublishHandler", apperr.Validation("invalid post id"))
		return
	}

	post, err := api.posts.TogglePublished(r.Context(), ident, id)
	if err != nil {
		api.writeError(w, r, "togglePublishHandler", err)
		return
	}

	api.writeJSON(w, r, "togglePublishHandler", http.StatusOK, post)
}

func (api *API) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	ident, err := api.auth.Authenticate(r.Context())
	if err != nil {
		api.writeError(w, r, "deletePostHandler", err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		api.writeError(w, r, "deletePostHandler", apperr.Validation("invalid post id"))
		return
	}

	post, err := api.posts.Delete(r.Context(), ident, id)
	if err != nil {
		api.writeError(w, r, "deletePostHandler", err)
		return
	}

	api.writeJSON(w, r, "deletePostHandler", http.StatusOK, post)
}
