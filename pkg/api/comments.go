package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"postboard/pkg/apperr"
	"postboard/pkg/comments"
	"postboard/pkg/models"
)

func (api *API) createCommentHandler(w http.ResponseWriter, r *http.Request) {
	ident, err := api.auth.Authenticate(r.Context())
	if err != nil {
		api.writeError(w, r, "createCommentHandler", err)
		return
	}

	var in comments.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.writeError(w, r, "createCommentHandler", apperr.Validation("invalid JSON body"))
		return
	}
	defer r.Body.Close()

	comment, err := api.comments.Create(r.Context(), ident, in)
	if err != nil {
		api.writeError(w, r, "createCommentHandler", err)
		return
	}

	api.writeJSON(w, r, "createCommentHandler", http.StatusCreated, comment)
}

func (api *API) commentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		api.writeError(w, r, "commentHandler", apperr.Validation("invalid comment id"))
		return
	}

	comment, err := api.comments.ByID(r.Context(), id)
	if err != nil {
		api.writeError(w, r, "commentHandler", err)
		return
	}

	api.writeJSON(w, r, "commentHandler", http.StatusOK, comment)
}

func (api *API) commentsOfPostHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r)
	if err != nil {
		api.writeError(w, r, "commentsOfPostHandler", apperr.Validation("invalid post id"))
		return
	}

	list, err := api.comments.OfPost(r.Context(), postID)
	if err != nil {
		api.writeError(w, r, "commentsOfPostHandler", err)
		return
	}

	api.writeJSON(w, r, "commentsOfPostHandler", http.StatusOK, list)
}

func (api *API) commentsByAuthorHandler(w http.ResponseWriter, r *http.Request) {
	authorID, err := pathID(r)
	if err != nil {
		api.writeError(w, r, "commentsByAuthorHandler", apperr.Validation("invalid user id"))
		return
	}

	list, err := api.comments.ByAuthor(r.Context(), authorID)
	if err != nil {
		api.writeError(w, r, "commentsByAuthorHandler", err)
		return
	}

	api.writeJSON(w, r, "commentsByAuthorHandler", http.StatusOK, list)
}

func (api *API) repliesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		api.writeError(w, r, "repliesHandler", apperr.Validation("invalid comment id"))
		return
	}

	replies, err := api.comments.Replies(r.Context(), id)
	if err != nil {
		api.writeError(w, r, "repliesHandler", err)
		return
	}

	api.writeJSON(w, r, "repliesHandler", http.StatusOK, replies)
}

func (api *API) replyTargetHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		api.writeError(w, r, "replyTargetHandler", apperr.Validation("invalid comment id"))
		return
	}

	parent, err := api.comments.ReplyTarget(r.Context(), id)
	if err != nil {
		api.writeError(w, r, "replyTargetHandler", err)
		return
	}

	api.writeJSON(w, r, "replyTargetHandler", http.StatusOK, parent)
}

type updateCommentInput struct {
	Content string `json:"content"`
}

func (api *API) updateCommentHandler(w http.ResponseWriter, r *http.Request) {
	ident, err := api.auth.Authenticate(r.Context())
	if err != nil {
		api.writeError(w, r, "updateCommentHandler", err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		api.writeError(w, r, "updateCommentHandler", apperr.Validation("invalid comment id"))
		return
	}

	var in updateCommentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.writeError(w, r, "updateCommentHandler", apperr.Validation("invalid JSON body"))
		return
	}
	defer r.Body.Close()

	comment, err := api.comments.Update(r.Context(), ident, id, in.Content)
	if err != nil {
		api.writeError(w, r, "updateCommentHandler", err)
		return
	}

	api.writeJSON(w, r, "updateCommentHandler", http.StatusOK, comment)
}

func (api *API) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	ident, err := api.auth.Authenticate(r.Context())
	if err != nil {
		api.writeError(w, r, "deleteCommentHandler", err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		api.writeError(w, r, "deleteCommentHandler", apperr.Validation("invalid comment id"))
		return
	}

	comment, err := api.comments.Delete(r.Context(), ident, id)
	if err != nil {
		api.writeError(w, r, "deleteCommentHandler", err)
		return
	}

	api.writeJSON(w, r, "deleteCommentHandler", http.StatusOK, comment)
}

// commentEventsHandler streams NEW_COMMENT events to the caller as
// server-sent events until the connection closes. The subscriber sees no
// backlog, only comments created after it attached.
func (api *API) commentEventsHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := api.auth.Authenticate(r.Context()); err != nil {
		api.writeError(w, r, "commentEventsHandler", err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		api.writeError(w, r, "commentEventsHandler", fmt.Errorf("response writer does not support streaming"))
		return
	}

	sub, err := api.bus.Subscribe(models.EventNewComment)
	if err != nil {
		api.writeError(w, r, "commentEventsHandler", err)
		return
	}
	defer sub.Unsubscribe()

	sID := shorten(GetRequestID(r.Context()))
	log.Debugf("[commentEventsHandler][%s] subscriber attached: %v", sID, r.RemoteAddr)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			log.Debugf("[commentEventsHandler][%s] subscriber disconnected: %v", sID, r.RemoteAddr)
			return
		case event, ok := <-sub.C:
			if !ok {
				return
			}
			b, err := json.Marshal(event)
			if err != nil {
				log.Errorf("[commentEventsHandler][%s] failed to marshal event: %v", sID, err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", b)
			flusher.Flush()
		}
	}
}
