package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"postboard/pkg/apperr"
	"postboard/pkg/auth"
	"postboard/pkg/storage"
)

func (api *API) signupHandler(w http.ResponseWriter, r *http.Request) {
	var in auth.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.writeError(w, r, "signupHandler", apperr.Validation("invalid JSON body"))
		return
	}
	defer r.Body.Close()

	user, token, err := api.auth.Signup(r.Context(), in)
	if err != nil {
		api.writeError(w, r, "signupHandler", err)
		return
	}

	api.writeJSON(w, r, "signupHandler", http.StatusCreated, AuthResponse{User: user, Token: token})
}

func (api *API) loginHandler(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.writeError(w, r, "loginHandler", apperr.Validation("invalid JSON body"))
		return
	}
	defer r.Body.Close()

	user, token, err := api.auth.Login(r.Context(), in)
	if err != nil {
		api.writeError(w, r, "loginHandler", err)
		return
	}

	api.writeJSON(w, r, "loginHandler", http.StatusOK, AuthResponse{User: user, Token: token})
}

func (api *API) usersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := api.db.Users(r.Context())
	if err != nil {
		api.writeError(w, r, "usersHandler", err)
		return
	}

	api.writeJSON(w, r, "usersHandler", http.StatusOK, users)
}

func (api *API) userHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		api.writeError(w, r, "userHandler", apperr.Validation("invalid user id"))
		return
	}

	user, err := api.db.UserByID(r.Context(), id)
	if errors.Is(err, storage.ErrUserNotFound) {
		api.writeError(w, r, "userHandler", apperr.NotFound("user not found"))
		return
	}
	if err != nil {
		api.writeError(w, r, "userHandler", err)
		return
	}

	api.writeJSON(w, r, "userHandler", http.StatusOK, user)
}

type updateUserNameInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// updateUserNameHandler changes the caller's display names. Identity comes
// from the token; users may only rename themselves.
func (api *API) updateUserNameHandler(w http.ResponseWriter, r *http.Request) {
	ident, err := api.auth.Authenticate(r.Context())
	if err != nil {
		api.writeError(w, r, "updateUserNameHandler", err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		api.writeError(w, r, "updateUserNameHandler", apperr.Validation("invalid user id"))
		return
	}
	if id != ident.UserID {
		api.writeError(w, r, "updateUserNameHandler", apperr.Forbidden("action not allowed"))
		return
	}

	var in updateUserNameInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.writeError(w, r, "updateUserNameHandler", apperr.Validation("invalid JSON body"))
		return
	}
	defer r.Body.Close()

	if in.FirstName == nil && in.LastName == nil {
		api.writeError(w, r, "updateUserNameHandler", apperr.Validation("nothing to update"))
		return
	}
	if in.FirstName != nil && *in.FirstName == "" {
		api.writeError(w, r, "updateUserNameHandler",
			apperr.ValidationFields("invalid name", map[string]string{"first_name": "must not be empty"}))
		return
	}

	user, err := api.db.UpdateUserName(r.Context(), id, storage.UserNameUpdate{
		FirstName: in.FirstName,
		LastName:  in.LastName,
	})
	if err != nil {
		api.writeError(w, r, "updateUserNameHandler", err)
		return
	}

	api.writeJSON(w, r, "updateUserNameHandler", http.StatusOK, user)
}
