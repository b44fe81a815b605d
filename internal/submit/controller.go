// Package submit owns the complaint submission form: its state, the
// anonymity toggle, attachment acceptance, and the final payload build.
package submit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/hostelguard/hostelctl/internal/api"
	"github.com/hostelguard/hostelctl/internal/models"
	"github.com/hostelguard/hostelctl/internal/policy"
	"github.com/hostelguard/hostelctl/internal/session"
)

var (
	// ErrSubmissionInFlight indicates a previous submission has not resolved.
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	// ErrNameReadOnly indicates the name field cannot be edited while the
	// user is authenticated and non-anonymous.
	ErrNameReadOnly = errors.New("name is taken from your account")
)

// ValidationError aggregates inline form failures. No network call is made
// when one is returned.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Form is the submission form state. The validate tags drive the inline
// messages; formMessages maps each field to its message.
type Form struct {
	Anonymous    bool
	StudentName  string              `validate:"required_if=Anonymous false"`
	RoomNumber   string              `validate:"required"`
	IncidentType models.IncidentType `validate:"oneof=verbal-bullying physical-bullying cyber-bullying social-exclusion harassment other"`
	Description  string              `validate:"required"`
	IncidentDate time.Time           `validate:"required"`
	Witnesses    string
	Attachments  []policy.File
}

var formMessages = map[string]string{
	"IncidentType": "Please select an incident type",
	"Description":  "Please describe what happened",
	"RoomNumber":   "Please provide a room number",
	"IncidentDate": "Please provide the incident date and time",
	"StudentName":  "Please provide your name or submit anonymously",
}

// ComplaintCreator is the slice of the API client the controller needs.
type ComplaintCreator interface {
	CreateComplaint(ctx context.Context, payload api.ComplaintPayload) (models.Complaint, error)
}

// Controller drives the submission form for one user session.
type Controller struct {
	creator  ComplaintCreator
	rules    policy.AttachmentRules
	validate *validator.Validate
	logger   zerolog.Logger
	user     *session.UserClaims
	now      func() time.Time

	form     Form
	inFlight bool
}

// NewController constructs a submission controller. user is nil for an
// unauthenticated session; otherwise the name field is prefilled from it.
func NewController(creator ComplaintCreator, user *session.UserClaims, logger zerolog.Logger) *Controller {
	c := &Controller{
		creator:  creator,
		rules:    policy.DefaultAttachmentRules(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With().Str("component", "submit_controller").Logger(),
		user:     user,
		now:      time.Now,
	}
	if user != nil {
		c.form.StudentName = user.DisplayName()
	}
	return c
}

// Form returns a copy of the current form state.
func (c *Controller) Form() Form {
	return c.form
}

// NameFieldReadOnly reports whether the name field is locked to the session
// user's identity.
func (c *Controller) NameFieldReadOnly() bool {
	return c.user != nil && !c.form.Anonymous
}

// ToggleAnonymous flips the anonymity flag. Turning it on clears the name;
// turning it off restores the name from the session user.
func (c *Controller) ToggleAnonymous(on bool) {
	c.form.Anonymous = on
	if on {
		c.form.StudentName = ""
		return
	}
	if c.user != nil {
		c.form.StudentName = c.user.DisplayName()
	}
}

// SetStudentName edits the name field. It is rejected while the field is
// read-only.
func (c *Controller) SetStudentName(name string) error {
	if c.NameFieldReadOnly() {
		return ErrNameReadOnly
	}
	c.form.StudentName = strings.TrimSpace(name)
	return nil
}

// SetIncidentDate records when the incident happened, clamped to now. The
// server revalidates the bound on submission.
func (c *Controller) SetIncidentDate(t time.Time) {
	if now := c.now(); t.After(now) {
		t = now
	}
	c.form.IncidentDate = t
}

// SetIncidentType selects the incident category.
func (c *Controller) SetIncidentType(t models.IncidentType) {
	c.form.IncidentType = t
}

// SetRoomNumber edits the room number field.
func (c *Controller) SetRoomNumber(room string) {
	c.form.RoomNumber = strings.TrimSpace(room)
}

// SetDescription edits the free-text description.
func (c *Controller) SetDescription(text string) {
	c.form.Description = text
}

// SetWitnesses edits the witnesses field.
func (c *Controller) SetWitnesses(text string) {
	c.form.Witnesses = strings.TrimSpace(text)
}

// AttachFiles runs a batch of candidates through the acceptance policy and
// returns the aggregated error messages for inline display. Previously
// accepted files always survive a bad batch.
func (c *Controller) AttachFiles(batch []policy.File) []string {
	next, errs := c.rules.EvaluateAttachments(c.form.Attachments, batch)
	c.form.Attachments = next
	if len(errs) > 0 {
		c.logger.Debug().Strs("errors", errs).Int("accepted", len(next)).Msg("attachment batch partially rejected")
	}
	return errs
}

// RemoveAttachment drops the accepted file at the given index.
func (c *Controller) RemoveAttachment(index int) {
	if index < 0 || index >= len(c.form.Attachments) {
		return
	}
	c.form.Attachments = append(c.form.Attachments[:index], c.form.Attachments[index+1:]...)
}

// Submit validates the form, posts the complaint, and resets the form on
// success. A submission already in flight refuses re-entry.
func (c *Controller) Submit(ctx context.Context) (models.Complaint, error) {
	if c.inFlight {
		return models.Complaint{}, ErrSubmissionInFlight
	}
	if err := c.validateForm(); err != nil {
		return models.Complaint{}, err
	}

	c.inFlight = true
	defer func() { c.inFlight = false }()

	payload := c.buildPayload()
	created, err := c.creator.CreateComplaint(ctx, payload)
	if err != nil {
		c.logger.Warn().Err(err).Msg("complaint submission failed")
		return models.Complaint{}, err
	}

	c.logger.Info().Str("reference", created.ReferenceCode).Msg("complaint submitted")
	c.reset()
	return created, nil
}

func (c *Controller) validateForm() error {
	form := c.form
	form.StudentName = strings.TrimSpace(form.StudentName)
	form.RoomNumber = strings.TrimSpace(form.RoomNumber)
	form.Description = strings.TrimSpace(form.Description)

	var msgs []string
	if err := c.validate.Struct(form); err != nil {
		var fields validator.ValidationErrors
		if !errors.As(err, &fields) {
			return err
		}
		for _, fe := range fields {
			msg, ok := formMessages[fe.Field()]
			if !ok {
				msg = "The form could not be validated"
			}
			msgs = append(msgs, msg)
		}
	}
	if !form.IncidentDate.IsZero() && form.IncidentDate.After(c.now()) {
		msgs = append(msgs, "The incident date cannot be in the future")
	}
	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}

func (c *Controller) buildPayload() api.ComplaintPayload {
	payload := api.ComplaintPayload{
		Anonymous:    c.form.Anonymous,
		IncidentType: c.form.IncidentType,
		IncidentDate: api.ISOTime(c.form.IncidentDate),
		Description:  c.form.Description,
		RoomNumber:   c.form.RoomNumber,
		Witnesses:    c.form.Witnesses,
		Attachments:  make([]models.Attachment, 0, len(c.form.Attachments)),
	}
	for _, f := range c.form.Attachments {
		payload.Attachments = append(payload.Attachments, f.Descriptor())
	}
	if c.user != nil {
		id := c.user.UserID
		payload.UserID = &id
	}
	if !c.form.Anonymous {
		name := strings.TrimSpace(c.form.StudentName)
		payload.StudentName = &name
	}
	return payload
}

// reset returns the form to its initial state, restoring the prefilled name
// for authenticated users.
func (c *Controller) reset() {
	c.form = Form{}
	if c.user != nil {
		c.form.StudentName = c.user.DisplayName()
	}
}

// ErrorMessage maps a submission failure to the inline message shown next
// to the form. Server-provided messages win; anything else collapses to a
// generic fallback.
func ErrorMessage(err error) string {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Error()
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrSubmissionInFlight) {
		return ErrSubmissionInFlight.Error()
	}
	return "Unable to submit complaint"
}
