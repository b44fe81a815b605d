package api

import (
	"context"
	"net/http"

	"github.com/hostelguard/hostelctl/internal/models"
)

// LoginResult is the outcome of a credential login. Either Token and User
// are set, or the server answered with a two-factor challenge.
type LoginResult struct {
	User           *models.User `json:"user"`
	Token          string       `json:"token"`
	ChallengeID    string       `json:"challengeId"`
	ChallengeEmail string       `json:"email"`
}

// TwoFactorRequired reports whether the login must continue with a second
// factor before a token is issued.
func (r LoginResult) TwoFactorRequired() bool {
	return r.Token == "" && r.ChallengeID != ""
}

// Login authenticates with a single identifier, posted as both email and
// username so either works.
func (c *Client) Login(ctx context.Context, identifier, password string) (LoginResult, error) {
	body := map[string]string{
		"email":    identifier,
		"username": identifier,
		"password": password,
	}
	var result LoginResult
	if err := c.send(ctx, http.MethodPost, "/auth/login", body, &result); err != nil {
		return LoginResult{}, err
	}
	return result, nil
}
