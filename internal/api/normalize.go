package api

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/hostelguard/hostelctl/internal/models"
)

// The server returns complaint records with inconsistently named fields
// depending on which backend build produced them (submitted_at vs
// submittedAt). Wire types below accept every spelling and collapse to the
// canonical shape once, here at the boundary, so the views never carry
// fallbacks.

type flexTime struct {
	time.Time
}

var flexTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range flexTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	// Unparseable timestamps degrade to zero instead of failing the whole
	// record; views render them as unknown.
	t.Time = time.Time{}
	return nil
}

type wireComplaint struct {
	ID               uint             `json:"id"`
	ReferenceCode    string           `json:"reference_code"`
	ReferenceCodeAlt string           `json:"referenceCode"`
	UserID           *uint            `json:"user_id"`
	UserIDAlt        *uint            `json:"userId"`
	StudentName      *string          `json:"student_name"`
	StudentNameAlt   *string          `json:"studentName"`
	Anonymous        bool             `json:"anonymous"`
	IncidentType     string           `json:"incident_type"`
	IncidentTypeAlt  string           `json:"incidentType"`
	IncidentDate     flexTime         `json:"incident_date"`
	IncidentDateAlt  flexTime         `json:"incidentDate"`
	Description      string           `json:"description"`
	RoomNumber       string           `json:"room_number"`
	RoomNumberAlt    string           `json:"roomNumber"`
	Witnesses        string           `json:"witnesses"`
	Attachments      []wireAttachment `json:"attachments"`
	SubmittedAt      flexTime         `json:"submitted_at"`
	SubmittedAtAlt   flexTime         `json:"submittedAt"`
	Status           string           `json:"status"`
	UpdatedAt        flexTime         `json:"updated_at"`
	UpdatedAtAlt     flexTime         `json:"updatedAt"`
	Comments         []wireComment    `json:"comments"`
}

func (w wireComplaint) normalize() models.Complaint {
	attachments := make([]models.Attachment, 0, len(w.Attachments))
	for _, a := range w.Attachments {
		attachments = append(attachments, a.normalize())
	}
	comments := make([]models.Comment, 0, len(w.Comments))
	for _, c := range w.Comments {
		comments = append(comments, c.normalize())
	}

	submitted := firstTime(w.SubmittedAt, w.SubmittedAtAlt)
	updated := firstTime(w.UpdatedAt, w.UpdatedAtAlt)
	if updated.Before(submitted) {
		updated = submitted
	}

	return models.Complaint{
		ID:            w.ID,
		ReferenceCode: firstString(w.ReferenceCode, w.ReferenceCodeAlt),
		UserID:        firstUintPtr(w.UserID, w.UserIDAlt),
		StudentName:   firstStringPtr(w.StudentName, w.StudentNameAlt),
		Anonymous:     w.Anonymous,
		IncidentType:  models.IncidentType(firstString(w.IncidentType, w.IncidentTypeAlt)),
		IncidentDate:  firstTime(w.IncidentDate, w.IncidentDateAlt),
		Description:   w.Description,
		RoomNumber:    firstString(w.RoomNumber, w.RoomNumberAlt),
		Witnesses:     w.Witnesses,
		Attachments:   attachments,
		SubmittedAt:   submitted,
		Status:        models.Status(w.Status),
		UpdatedAt:     updated,
		Comments:      comments,
	}
}

type wireAttachment struct {
	FileName     string `json:"file_name"`
	FileNameAlt  string `json:"fileName"`
	Filename     string `json:"filename"`
	Name         string `json:"name"`
	SizeBytes    int64  `json:"size_bytes"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mime_type"`
	MimeTypeAlt  string `json:"mimeType"`
	DeclaredType string `json:"type"`
	URL          string `json:"url"`
	Path         string `json:"path"`
	FileURL      string `json:"file_url"`
}

func (w wireAttachment) normalize() models.Attachment {
	size := w.SizeBytes
	if size == 0 {
		size = w.Size
	}
	return models.Attachment{
		FileName:  firstString(w.FileName, w.FileNameAlt, w.Filename, w.Name),
		SizeBytes: size,
		MimeType:  firstString(w.MimeType, w.MimeTypeAlt, w.DeclaredType),
		URL:       firstString(w.URL, w.Path, w.FileURL),
	}
}

type wireComment struct {
	ID           uint     `json:"id"`
	AuthorID     uint     `json:"author_id"`
	UserID       uint     `json:"user_id"`
	AuthorName   string   `json:"author_name"`
	UserName     string   `json:"user_name"`
	Name         string   `json:"name"`
	AuthorRole   string   `json:"author_role"`
	Role         string   `json:"role"`
	CreatedAt    flexTime `json:"created_at"`
	CreatedAtAlt flexTime `json:"createdAt"`
	Message      string   `json:"message"`
	MessageAlt   string   `json:"body"`
}

func (w wireComment) normalize() models.Comment {
	id := w.AuthorID
	if id == 0 {
		id = w.UserID
	}
	return models.Comment{
		ID:         w.ID,
		AuthorID:   id,
		AuthorName: firstString(w.AuthorName, w.UserName, w.Name),
		AuthorRole: models.NormalizeRole(firstString(w.AuthorRole, w.Role)),
		CreatedAt:  firstTime(w.CreatedAt, w.CreatedAtAlt),
		Message:    firstString(w.Message, w.MessageAlt),
	}
}

func firstString(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstStringPtr(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstUintPtr(values ...*uint) *uint {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstTime(values ...flexTime) time.Time {
	for _, v := range values {
		if !v.IsZero() {
			return v.Time
		}
	}
	return time.Time{}
}
