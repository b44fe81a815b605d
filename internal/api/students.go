package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hostelguard/hostelctl/internal/models"
)

// GetStudents fetches the student roster.
func (c *Client) GetStudents(ctx context.Context) ([]models.User, error) {
	var students []models.User
	if err := c.get(ctx, "/admin/students", nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// InviteStudent invites a student by email; the account stays pending until
// the invite is accepted.
func (c *Client) InviteStudent(ctx context.Context, req UserRequest) (models.User, error) {
	if err := c.validate.Var(req.Email, "required,email"); err != nil {
		return models.User{}, &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf("%q is not a valid email address", req.Email)}
	}
	if err := c.validateRequest(req); err != nil {
		return models.User{}, err
	}
	var student models.User
	if err := c.send(ctx, http.MethodPost, "/admin/students", req, &student); err != nil {
		return models.User{}, err
	}
	return student, nil
}

// UpdateStudent patches a student record.
func (c *Client) UpdateStudent(ctx context.Context, id uint, req UserRequest) (models.User, error) {
	if err := c.validateRequest(req); err != nil {
		return models.User{}, err
	}
	var student models.User
	if err := c.send(ctx, http.MethodPatch, fmt.Sprintf("/admin/students/%d", id), req, &student); err != nil {
		return models.User{}, err
	}
	return student, nil
}

// PasswordResetResult carries the temporary credential issued by a reset.
type PasswordResetResult struct {
	TemporaryPassword string `json:"temporary_password"`
}

// ResetStudentPassword issues a temporary password for a student.
func (c *Client) ResetStudentPassword(ctx context.Context, id uint) (PasswordResetResult, error) {
	var result PasswordResetResult
	if err := c.send(ctx, http.MethodPost, fmt.Sprintf("/admin/students/%d/reset_password", id), nil, &result); err != nil {
		return PasswordResetResult{}, err
	}
	return result, nil
}

// DeleteStudent removes a student record.
func (c *Client) DeleteStudent(ctx context.Context, id uint) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/admin/students/%d", id), nil, nil)
}

// InviteAdmin invites a new administrator.
func (c *Client) InviteAdmin(ctx context.Context, req UserRequest) (models.User, error) {
	if err := c.validate.Var(req.Email, "required,email"); err != nil {
		return models.User{}, &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf("%q is not a valid email address", req.Email)}
	}
	if err := c.validateRequest(req); err != nil {
		return models.User{}, err
	}
	var admin models.User
	if err := c.send(ctx, http.MethodPost, "/admin/admins", req, &admin); err != nil {
		return models.User{}, err
	}
	return admin, nil
}
