// Package view derives render-ready state for the reporter and triage
// surfaces. Views hold in-memory state only; every mutation goes through
// the API client and is replaced from the server response.
package view

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/hostelguard/hostelctl/internal/api"
	"github.com/hostelguard/hostelctl/internal/models"
)

// URLResolver turns a possibly relative attachment path into an absolute
// URL. The API client's ToAbsoluteURL satisfies it.
type URLResolver func(path string) string

// AttachmentLink is a render-ready attachment with view and download
// affordances.
type AttachmentLink struct {
	Name        string
	SizeLabel   string
	ViewURL     string
	DownloadURL string
}

// CommentLine is a render-ready comment thread entry.
type CommentLine struct {
	Author  string
	Role    models.Role
	When    string
	Message string
}

// Card is one complaint prepared for rendering.
type Card struct {
	ID             uint
	Reference      string
	StudentName    string
	StatusLabel    string
	StatusClass    string
	Notice         string
	IncidentType   models.IncidentType
	RoomNumber     string
	Description    string
	Witnesses      string
	SubmittedLabel string
	ResponseTime   string
	Attachments    []AttachmentLink
	Comments       []CommentLine
	Highlighted    bool
}

// sanitizer strips markup from server-supplied free text before rendering.
var sanitizer = bluemonday.StrictPolicy()

func sanitize(text string) string {
	return strings.TrimSpace(sanitizer.Sanitize(text))
}

func buildCard(c models.Complaint, resolve URLResolver) Card {
	card := Card{
		ID:             c.ID,
		Reference:      c.ReferenceCode,
		StudentName:    c.DisplayName(),
		StatusLabel:    c.Status.Label(),
		StatusClass:    c.Status.Class(),
		Notice:         c.Status.Notice(),
		IncidentType:   c.IncidentType,
		RoomNumber:     c.RoomNumber,
		Description:    sanitize(c.Description),
		Witnesses:      sanitize(c.Witnesses),
		SubmittedLabel: models.FormatSubmittedAt(c.SubmittedAt),
		ResponseTime:   models.FormatResponseTime(c.SubmittedAt, c.UpdatedAt),
	}

	for _, a := range c.Attachments {
		resolved := resolve(a.URL)
		card.Attachments = append(card.Attachments, AttachmentLink{
			Name:        a.FileName,
			SizeLabel:   models.FormatFileSize(a.SizeBytes),
			ViewURL:     resolved,
			DownloadURL: api.DownloadURL(resolved),
		})
	}

	for _, comment := range c.Comments {
		card.Comments = append(card.Comments, CommentLine{
			Author:  comment.AuthorName,
			Role:    comment.AuthorRole,
			When:    models.FormatSubmittedAt(comment.CreatedAt),
			Message: sanitize(comment.Message),
		})
	}

	return card
}
