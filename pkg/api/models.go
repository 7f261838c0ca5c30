package api

import "postboard/pkg/models"

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// AuthResponse is returned by signup and login: the user plus a token, so
// the caller is authenticated immediately.
type AuthResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type Pagination struct {
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	Limit       int `json:"limit"`
}

type FeedResponse struct {
	Posts      []models.Post `json:"posts"`
	Pagination Pagination    `json:"pagination"`
}
