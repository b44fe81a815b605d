package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hostelguard/hostelctl/internal/models"
)

// UserRequest carries the writable fields of a user record. Zero-valued
// fields are omitted so partial updates stay partial.
type UserRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=STUDENT ADMIN SUPER_ADMIN"`
	Status   string `json:"status,omitempty"`
	Password string `json:"password,omitempty"`
}

// GetUsers fetches the full user roster.
func (c *Client) GetUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.get(ctx, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches a single user by id.
func (c *Client) GetUser(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := c.get(ctx, fmt.Sprintf("/users/%d", id), nil, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// CreateUser creates a user record.
func (c *Client) CreateUser(ctx context.Context, req UserRequest) (models.User, error) {
	if err := c.validateRequest(req); err != nil {
		return models.User{}, err
	}
	var user models.User
	if err := c.send(ctx, http.MethodPost, "/users", req, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// UpdateUser patches a user record.
func (c *Client) UpdateUser(ctx context.Context, id uint, req UserRequest) (models.User, error) {
	if err := c.validateRequest(req); err != nil {
		return models.User{}, err
	}
	var user models.User
	if err := c.send(ctx, http.MethodPatch, fmt.Sprintf("/users/%d", id), req, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// DeleteUser removes a user record.
func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil)
}

// ChangeUserPassword sets a new password for a user.
func (c *Client) ChangeUserPassword(ctx context.Context, id uint, currentPassword, newPassword string) error {
	body := map[string]string{
		"current_password": currentPassword,
		"new_password":     newPassword,
	}
	return c.send(ctx, http.MethodPost, fmt.Sprintf("/users/%d/password", id), body, nil)
}

// UploadUserAvatar replaces a user's avatar with base64-encoded image data.
func (c *Client) UploadUserAvatar(ctx context.Context, id uint, encoded string) (models.User, error) {
	body := map[string]string{"avatar": encoded}
	var user models.User
	if err := c.send(ctx, http.MethodPost, fmt.Sprintf("/users/%d/avatar", id), body, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// DeleteUserAvatar removes a user's avatar.
func (c *Client) DeleteUserAvatar(ctx context.Context, id uint) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/users/%d/avatar", id), nil, nil)
}
