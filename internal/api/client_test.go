package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hostelguard/hostelctl/internal/config"
	"github.com/hostelguard/hostelctl/internal/models"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Config{
		APIBaseURL:  server.URL + "/api",
		HTTPTimeout: 5 * time.Second,
	}
	return New(cfg, zerolog.Nop()), server
}

func TestToAbsoluteURL(t *testing.T) {
	cfg := config.Config{APIBaseURL: "http://localhost:5001/api", HTTPTimeout: time.Second}
	client := New(cfg, zerolog.Nop())

	require.Equal(t, "https://x/y", client.ToAbsoluteURL("https://x/y"))
	require.Equal(t, "http://localhost:5001/foo", client.ToAbsoluteURL("/foo"))
	require.Equal(t, "http://localhost:5001/foo", client.ToAbsoluteURL("foo"))
	require.Equal(t, "", client.ToAbsoluteURL(""))
}

func TestDownloadURL(t *testing.T) {
	require.Equal(t, "http://x/f.pdf?download=1", DownloadURL("http://x/f.pdf"))
	require.Equal(t, "http://x/f.pdf?v=2&download=1", DownloadURL("http://x/f.pdf?v=2"))
	require.Equal(t, "", DownloadURL(""))
}

func TestBearerTokenAndCorrelationHeader(t *testing.T) {
	var gotAuth, gotCorrelation string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCorrelation = r.Header.Get("X-Correlation-ID")
		_ = json.NewEncoder(w).Encode([]models.User{})
	}))

	client.SetAuthToken("token-123")
	_, err := client.GetUsers(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer token-123", gotAuth)
	require.NotEmpty(t, gotCorrelation)

	client.SetAuthToken("")
	_, err = client.GetUsers(context.Background())
	require.NoError(t, err)
	require.Empty(t, gotAuth)
}

func TestServerErrorMessageExtraction(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"room number is required"}`))
	}))

	_, err := client.GetUsers(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "room number is required", apiErr.Message)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestSessionExpiryInvokesHook(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	cleared := false
	client.OnUnauthorized(func() { cleared = true })

	_, err := client.GetUsers(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)
	require.True(t, cleared)
}

func TestUnknownIdentifierIsNotFound(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"complaint not found"}`))
	}))

	_, err := client.GetComplaintByIdentifier(context.Background(), "A9999")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestComplaintTimestampNormalization(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id": 12,
			"referenceCode": "A0012",
			"studentName": "Ada",
			"status": "pending",
			"submittedAt": "2025-08-10T14:30:00Z",
			"updatedAt": "2025-08-10T16:35:00Z",
			"roomNumber": "B-204"
		}`))
	}))

	complaint, err := client.GetComplaintByIdentifier(context.Background(), "A0012")
	require.NoError(t, err)
	require.Equal(t, "A0012", complaint.ReferenceCode)
	require.Equal(t, "B-204", complaint.RoomNumber)
	require.NotNil(t, complaint.StudentName)
	require.Equal(t, "Ada", *complaint.StudentName)
	require.Equal(t, time.Date(2025, 8, 10, 14, 30, 0, 0, time.UTC), complaint.SubmittedAt)
	require.Equal(t, time.Date(2025, 8, 10, 16, 35, 0, 0, time.UTC), complaint.UpdatedAt)
	require.Equal(t, models.StatusNew, models.CanonicalStatus(complaint.Status))
}

func TestUpdatedAtNeverPrecedesSubmittedAt(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id": 3,
			"status": "new",
			"submitted_at": "2025-08-10T14:30:00Z",
			"updated_at": "2025-08-01T00:00:00Z"
		}`))
	}))

	complaint, err := client.GetComplaintByIdentifier(context.Background(), "3")
	require.NoError(t, err)
	require.Equal(t, complaint.SubmittedAt, complaint.UpdatedAt)
}

func TestEnvelopeUnwrap(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":[{"id":1,"username":"ada"}]}`))
	}))

	users, err := client.GetUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "ada", users[0].Username)
}

func TestUpdateComplaintStatusSendsCanonicalKey(t *testing.T) {
	var body map[string]string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"id":12,"status":"in_progress","submitted_at":"2025-08-10T14:30:00Z","updated_at":"2025-08-11T10:00:00Z"}`))
	}))

	updated, err := client.UpdateComplaintStatus(context.Background(), 12, "Pending")
	require.NoError(t, err)
	require.Equal(t, "new", body["status"])
	require.Equal(t, "Investigating", updated.Status.Label())
}

func TestStrictDecodeRejectsMalformedComplaint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"new"}`))
	}))
	t.Cleanup(server.Close)

	cfg := config.Config{APIBaseURL: server.URL + "/api", HTTPTimeout: time.Second, StrictDecode: true}
	client := New(cfg, zerolog.Nop())

	_, err := client.GetComplaintByIdentifier(context.Background(), "A0001")
	require.Error(t, err)
	require.Contains(t, err.Error(), "strict decode")
}

func TestLoginPostsIdentifierTwice(t *testing.T) {
	var body map[string]string
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"user":{"id":1,"username":"ada","role":"STUDENT"},"token":"t"}`))
	}))

	result, err := client.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", body["email"])
	require.Equal(t, "ada@example.com", body["username"])
	require.False(t, result.TwoFactorRequired())
	require.Equal(t, "t", result.Token)
}

func TestInviteStudentRejectsInvalidEmailBeforeSending(t *testing.T) {
	var hits int
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"id":7,"email":"new@example.com"}`))
	}))

	_, err := client.InviteStudent(context.Background(), UserRequest{Email: "not-an-email"})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Contains(t, apiErr.Message, "not a valid email address")
	require.Zero(t, hits)

	_, err = client.InviteStudent(context.Background(), UserRequest{Email: ""})
	require.ErrorAs(t, err, &apiErr)
	require.Zero(t, hits)

	invited, err := client.InviteStudent(context.Background(), UserRequest{Email: "new@example.com"})
	require.NoError(t, err)
	require.Equal(t, uint(7), invited.ID)
	require.Equal(t, 1, hits)
}

func TestUpdateUserRejectsInvalidFieldsBeforeSending(t *testing.T) {
	var hits int
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"id":3}`))
	}))

	var apiErr *Error
	_, err := client.UpdateUser(context.Background(), 3, UserRequest{Email: "bad@"})
	require.ErrorAs(t, err, &apiErr)
	require.Zero(t, hits)

	_, err = client.UpdateUser(context.Background(), 3, UserRequest{Role: "JANITOR"})
	require.ErrorAs(t, err, &apiErr)
	require.Contains(t, apiErr.Message, "role")
	require.Zero(t, hits)

	// Partial updates leave the tagged fields empty; nothing fires.
	_, err = client.UpdateUser(context.Background(), 3, UserRequest{FullName: "Ada L."})
	require.NoError(t, err)
	require.Equal(t, 1, hits)
}

func TestCreateComplaintRejectsIncompletePayload(t *testing.T) {
	var hits int
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"id":1,"status":"new"}`))
	}))

	var apiErr *Error
	_, err := client.CreateComplaint(context.Background(), ComplaintPayload{RoomNumber: "B-204"})
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Contains(t, apiErr.Message, "description")
	require.Zero(t, hits)
}

func TestLoginTwoFactorChallenge(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"challengeId":"ch-1","email":"ada@example.com"}`))
	}))

	result, err := client.Login(context.Background(), "ada", "pw")
	require.NoError(t, err)
	require.True(t, result.TwoFactorRequired())
	require.Equal(t, "ch-1", result.ChallengeID)
}
