package api

import (
	"context"
	"fmt"
	"net/http"
)

// User is the backend user object; only the identifier matters to this
// client.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CreateUser registers a new account. Guest accounts use a generated
// username/email pair and a fixed placeholder password.
func (c *Client) CreateUser(ctx context.Context, username, email, password string) (User, error) {
	var u User
	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	if err := c.doJSON(ctx, http.MethodPost, "/users/", body, &u); err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetUser checks that an account still exists. A 404 surfaces as an *Error
// matched by IsNotFound.
func (c *Client) GetUser(ctx context.Context, id string) (User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/users/"+id, nil, "", &u); err != nil {
		return User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}
