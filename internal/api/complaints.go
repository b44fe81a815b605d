package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hostelguard/hostelctl/internal/models"
)

// ISOTime marshals as a millisecond-precision UTC instant, the format the
// complaint endpoints expect for incident dates.
type ISOTime time.Time

// MarshalJSON renders the instant as e.g. "2025-08-10T14:30:00.000Z".
func (t ISOTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).UTC().Format("2006-01-02T15:04:05.000Z") + `"`), nil
}

// ComplaintPayload is the submission body. StudentName is null for
// anonymous complaints; UserID is null when no session exists.
type ComplaintPayload struct {
	UserID       *uint               `json:"user_id"`
	StudentName  *string             `json:"student_name"`
	Anonymous    bool                `json:"anonymous"`
	IncidentType models.IncidentType `json:"incident_type"`
	IncidentDate ISOTime             `json:"incident_date"`
	Description  string              `json:"description" validate:"required"`
	RoomNumber   string              `json:"room_number" validate:"required"`
	Witnesses    string              `json:"witnesses"`
	Attachments  []models.Attachment `json:"attachments"`
}

// ComplaintListParams narrows a complaint list fetch.
type ComplaintListParams struct {
	IncludeComments bool
}

// CreateComplaint submits a new complaint and returns the created record.
func (c *Client) CreateComplaint(ctx context.Context, payload ComplaintPayload) (models.Complaint, error) {
	if err := c.validateRequest(payload); err != nil {
		return models.Complaint{}, err
	}
	raw, err := c.do(ctx, http.MethodPost, "/complaints", nil, payload)
	if err != nil {
		return models.Complaint{}, err
	}
	return c.decodeComplaint(raw)
}

// GetComplaints fetches complaints visible to the current session.
func (c *Client) GetComplaints(ctx context.Context, params ComplaintListParams) ([]models.Complaint, error) {
	query := url.Values{}
	if params.IncludeComments {
		query.Set("include_comments", "true")
	}
	raw, err := c.do(ctx, http.MethodGet, "/complaints", query, nil)
	if err != nil {
		return nil, err
	}
	return c.decodeComplaints(raw)
}

// GetComplaintByIdentifier fetches one complaint by reference code or
// numeric id.
func (c *Client) GetComplaintByIdentifier(ctx context.Context, identifier string) (models.Complaint, error) {
	raw, err := c.do(ctx, http.MethodGet, "/complaints/"+url.PathEscape(identifier), nil, nil)
	if err != nil {
		return models.Complaint{}, err
	}
	return c.decodeComplaint(raw)
}

// GetComplaintComments fetches a complaint's comment thread.
func (c *Client) GetComplaintComments(ctx context.Context, id uint) ([]models.Comment, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/complaints/%d/comments", id), nil, nil)
	if err != nil {
		return nil, err
	}
	var wire []wireComment
	if err := decode(raw, &wire); err != nil {
		return nil, err
	}
	comments := make([]models.Comment, 0, len(wire))
	for _, w := range wire {
		comments = append(comments, w.normalize())
	}
	return comments, nil
}

// AddComplaintComment appends a comment authored by the given user.
func (c *Client) AddComplaintComment(ctx context.Context, id uint, authorID uint, message string) (models.Comment, error) {
	body := map[string]interface{}{
		"user_id": authorID,
		"message": message,
	}
	raw, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/complaints/%d/comments", id), nil, body)
	if err != nil {
		return models.Comment{}, err
	}
	var wire wireComment
	if err := decode(raw, &wire); err != nil {
		return models.Comment{}, err
	}
	return wire.normalize(), nil
}

// UpdateComplaintStatus moves a complaint to a new status. The payload
// always carries the canonical status key regardless of what the server
// spelled on read.
func (c *Client) UpdateComplaintStatus(ctx context.Context, id uint, status models.Status) (models.Complaint, error) {
	body := map[string]string{"status": string(models.CanonicalStatus(status))}
	raw, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/complaints/%d/status", id), nil, body)
	if err != nil {
		return models.Complaint{}, err
	}
	return c.decodeComplaint(raw)
}

func (c *Client) decodeComplaint(raw []byte) (models.Complaint, error) {
	if c.strict {
		if err := validateComplaintPayload(raw); err != nil {
			return models.Complaint{}, fmt.Errorf("strict decode: %w", err)
		}
	}
	var wire wireComplaint
	if err := decode(raw, &wire); err != nil {
		return models.Complaint{}, err
	}
	return wire.normalize(), nil
}

func (c *Client) decodeComplaints(raw []byte) ([]models.Complaint, error) {
	var wire []wireComplaint
	if err := decode(raw, &wire); err != nil {
		return nil, err
	}
	complaints := make([]models.Complaint, 0, len(wire))
	for _, w := range wire {
		complaints = append(complaints, w.normalize())
	}
	return complaints, nil
}
