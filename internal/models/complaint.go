package models

import "time"

// IncidentType is the closed set of complaint categories.
type IncidentType string

// Incident categories accepted by the platform.
const (
	IncidentVerbalBullying   IncidentType = "verbal-bullying"
	IncidentPhysicalBullying IncidentType = "physical-bullying"
	IncidentCyberBullying    IncidentType = "cyber-bullying"
	IncidentSocialExclusion  IncidentType = "social-exclusion"
	IncidentHarassment       IncidentType = "harassment"
	IncidentOther            IncidentType = "other"
)

// IncidentTypes lists every accepted category in display order.
func IncidentTypes() []IncidentType {
	return []IncidentType{
		IncidentVerbalBullying,
		IncidentPhysicalBullying,
		IncidentCyberBullying,
		IncidentSocialExclusion,
		IncidentHarassment,
		IncidentOther,
	}
}

// Valid reports whether t is one of the enumerated categories.
func (t IncidentType) Valid() bool {
	switch t {
	case IncidentVerbalBullying, IncidentPhysicalBullying, IncidentCyberBullying,
		IncidentSocialExclusion, IncidentHarassment, IncidentOther:
		return true
	}
	return false
}

// Complaint is a bullying report as returned by the API, normalized to a
// single canonical shape regardless of which field spelling the server used.
type Complaint struct {
	ID            uint         `json:"id"`
	ReferenceCode string       `json:"reference_code"`
	UserID        *uint        `json:"user_id"`
	StudentName   *string      `json:"student_name"`
	Anonymous     bool         `json:"anonymous"`
	IncidentType  IncidentType `json:"incident_type"`
	IncidentDate  time.Time    `json:"incident_date"`
	Description   string       `json:"description"`
	RoomNumber    string       `json:"room_number"`
	Witnesses     string       `json:"witnesses"`
	Attachments   []Attachment `json:"attachments"`
	SubmittedAt   time.Time    `json:"submitted_at"`
	Status        Status       `json:"status"`
	UpdatedAt     time.Time    `json:"updated_at"`
	Comments      []Comment    `json:"comments"`
}

// DisplayName returns the reporter's name, or "Anonymous" when the complaint
// was filed anonymously or carries no name.
func (c Complaint) DisplayName() string {
	if c.Anonymous || c.StudentName == nil || *c.StudentName == "" {
		return "Anonymous"
	}
	return *c.StudentName
}

// Attachment describes an uploaded file. The client never keeps file bytes
// after submission; descriptors carry metadata and the stored location only.
type Attachment struct {
	FileName  string `json:"file_name"`
	SizeBytes int64  `json:"size_bytes"`
	MimeType  string `json:"mime_type"`
	URL       string `json:"url"`
}

// Comment is a single entry in a complaint's append-only thread.
type Comment struct {
	ID         uint      `json:"id"`
	AuthorID   uint      `json:"author_id"`
	AuthorName string    `json:"author_name"`
	AuthorRole Role      `json:"author_role"`
	CreatedAt  time.Time `json:"created_at"`
	Message    string    `json:"message"`
}
