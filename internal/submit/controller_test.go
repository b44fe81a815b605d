package submit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hostelguard/hostelctl/internal/api"
	"github.com/hostelguard/hostelctl/internal/models"
	"github.com/hostelguard/hostelctl/internal/policy"
	"github.com/hostelguard/hostelctl/internal/session"
)

type creatorStub struct {
	payload api.ComplaintPayload
	created models.Complaint
	err     error
	onCall  func()
	calls   int
}

func (s *creatorStub) CreateComplaint(ctx context.Context, payload api.ComplaintPayload) (models.Complaint, error) {
	s.calls++
	s.payload = payload
	if s.onCall != nil {
		s.onCall()
	}
	return s.created, s.err
}

func adaClaims() *session.UserClaims {
	return &session.UserClaims{UserID: 9, FullName: "Ada", Username: "ada", Email: "ada@example.com"}
}

func fillForm(c *Controller) {
	c.SetRoomNumber("B-204")
	c.SetIncidentType(models.IncidentCyberBullying)
	c.SetDescription("Threatening messages in the group chat.")
	c.SetIncidentDate(time.Date(2025, 8, 10, 14, 30, 0, 0, time.UTC))
}

func TestSubmitNonAnonymous(t *testing.T) {
	stub := &creatorStub{created: models.Complaint{ID: 1, ReferenceCode: "A0001"}}
	controller := NewController(stub, adaClaims(), zerolog.Nop())
	fillForm(controller)

	created, err := controller.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, "A0001", created.ReferenceCode)

	require.False(t, stub.payload.Anonymous)
	require.NotNil(t, stub.payload.StudentName)
	require.Equal(t, "Ada", *stub.payload.StudentName)
	require.NotNil(t, stub.payload.UserID)
	require.Equal(t, uint(9), *stub.payload.UserID)
	require.Equal(t, "B-204", stub.payload.RoomNumber)
	require.Equal(t, models.IncidentCyberBullying, stub.payload.IncidentType)

	encoded, err := json.Marshal(stub.payload.IncidentDate)
	require.NoError(t, err)
	require.Equal(t, `"2025-08-10T14:30:00.000Z"`, string(encoded))

	// Form resets after success; the prefilled name comes back.
	form := controller.Form()
	require.Equal(t, "Ada", form.StudentName)
	require.Empty(t, form.Description)
	require.Empty(t, form.Attachments)
}

func TestSubmitAnonymousOmitsName(t *testing.T) {
	stub := &creatorStub{created: models.Complaint{ID: 2}}
	controller := NewController(stub, adaClaims(), zerolog.Nop())
	fillForm(controller)
	controller.ToggleAnonymous(true)

	_, err := controller.Submit(context.Background())
	require.NoError(t, err)

	require.True(t, stub.payload.Anonymous)
	require.Nil(t, stub.payload.StudentName)

	encoded, err := json.Marshal(stub.payload)
	require.NoError(t, err)
	require.Contains(t, string(encoded), `"student_name":null`)
}

func TestToggleAnonymityRestoresName(t *testing.T) {
	controller := NewController(&creatorStub{}, adaClaims(), zerolog.Nop())
	require.Equal(t, "Ada", controller.Form().StudentName)
	require.True(t, controller.NameFieldReadOnly())

	controller.ToggleAnonymous(true)
	require.Empty(t, controller.Form().StudentName)
	require.False(t, controller.NameFieldReadOnly())

	controller.ToggleAnonymous(false)
	require.Equal(t, "Ada", controller.Form().StudentName)
}

func TestNameFieldReadOnlyWhileAuthenticated(t *testing.T) {
	controller := NewController(&creatorStub{}, adaClaims(), zerolog.Nop())
	require.ErrorIs(t, controller.SetStudentName("Mallory"), ErrNameReadOnly)

	anonymousSession := NewController(&creatorStub{}, nil, zerolog.Nop())
	require.NoError(t, anonymousSession.SetStudentName("Walk-in"))
	require.Equal(t, "Walk-in", anonymousSession.Form().StudentName)
}

func TestIncidentDateClampedToNow(t *testing.T) {
	controller := NewController(&creatorStub{}, adaClaims(), zerolog.Nop())

	controller.SetIncidentDate(time.Now().Add(48 * time.Hour))
	require.WithinDuration(t, time.Now(), controller.Form().IncidentDate, time.Minute)
}

func TestValidationFailuresSkipNetwork(t *testing.T) {
	stub := &creatorStub{}
	controller := NewController(stub, adaClaims(), zerolog.Nop())

	_, err := controller.Submit(context.Background())
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	require.NotEmpty(t, validation.Messages)
	require.Zero(t, stub.calls)
}

func TestValidationMessagesPerField(t *testing.T) {
	stub := &creatorStub{}
	controller := NewController(stub, adaClaims(), zerolog.Nop())
	controller.SetDescription("   ")

	_, err := controller.Submit(context.Background())
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	require.Equal(t, []string{
		"Please provide a room number",
		"Please select an incident type",
		"Please describe what happened",
		"Please provide the incident date and time",
	}, validation.Messages)
	require.Zero(t, stub.calls)

	fillForm(controller)
	controller.form.IncidentDate = time.Now().Add(time.Hour)
	_, err = controller.Submit(context.Background())
	require.ErrorAs(t, err, &validation)
	require.Equal(t, []string{"The incident date cannot be in the future"}, validation.Messages)
}

func TestAnonymousWalkInNeedsName(t *testing.T) {
	controller := NewController(&creatorStub{}, nil, zerolog.Nop())
	fillForm(controller)

	_, err := controller.Submit(context.Background())
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	require.Contains(t, validation.Error(), "name")
}

func TestSubmitRefusesReentry(t *testing.T) {
	stub := &creatorStub{}
	controller := NewController(stub, adaClaims(), zerolog.Nop())
	fillForm(controller)

	stub.onCall = func() {
		_, err := controller.Submit(context.Background())
		require.ErrorIs(t, err, ErrSubmissionInFlight)
	}

	_, err := controller.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stub.calls)
}

func TestAttachmentsFlowIntoPayload(t *testing.T) {
	stub := &creatorStub{}
	controller := NewController(stub, adaClaims(), zerolog.Nop())
	fillForm(controller)

	errs := controller.AttachFiles([]policy.File{
		{Name: "notes.pdf", Size: 2048, MimeType: "application/pdf"},
		{Name: "script.exe.pdf", Size: 100, MimeType: "application/pdf"},
	})
	require.Len(t, errs, 1)
	require.Len(t, controller.Form().Attachments, 1)

	controller.RemoveAttachment(0)
	require.Empty(t, controller.Form().Attachments)

	errs = controller.AttachFiles([]policy.File{{Name: "photo.jpg", Size: 512, MimeType: "image/jpeg"}})
	require.Empty(t, errs)

	_, err := controller.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, stub.payload.Attachments, 1)
	require.Equal(t, "photo.jpg", stub.payload.Attachments[0].FileName)
	require.Equal(t, int64(512), stub.payload.Attachments[0].SizeBytes)
}

func TestErrorMessageMapping(t *testing.T) {
	require.Equal(t, "room number is required",
		ErrorMessage(&api.Error{Status: 400, Message: "room number is required"}))
	require.Equal(t, "Unable to submit complaint", ErrorMessage(errors.New("dial tcp: refused")))
	require.Equal(t, ErrSubmissionInFlight.Error(), ErrorMessage(ErrSubmissionInFlight))
}
