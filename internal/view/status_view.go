package view

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hostelguard/hostelctl/internal/api"
	"github.com/hostelguard/hostelctl/internal/models"
	"github.com/hostelguard/hostelctl/internal/session"
)

const highlightWindow = 3 * time.Second

var (
	// ErrEmptyComment indicates a blank comment draft; nothing is posted.
	ErrEmptyComment = errors.New("comment cannot be empty")
	// ErrCommentInFlight guards the comment editor against double-fire.
	ErrCommentInFlight = errors.New("a comment is already being posted")
)

// ReporterAPI is the slice of the API client the reporter view needs.
type ReporterAPI interface {
	GetComplaints(ctx context.Context, params api.ComplaintListParams) ([]models.Complaint, error)
	AddComplaintComment(ctx context.Context, id uint, authorID uint, message string) (models.Comment, error)
}

// StatusView renders the current user's complaints with their status
// notices, response times, attachments and comment threads.
type StatusView struct {
	api     ReporterAPI
	resolve URLResolver
	logger  zerolog.Logger
	user    session.UserClaims
	now     func() time.Time

	complaints     []models.Complaint
	drafts         map[uint]string
	posting        map[uint]bool
	mounted        bool
	highlightID    uint
	highlightUntil time.Time
}

// NewStatusView constructs the reporter view for one session.
func NewStatusView(client ReporterAPI, resolve URLResolver, user session.UserClaims, logger zerolog.Logger) *StatusView {
	return &StatusView{
		api:     client,
		resolve: resolve,
		logger:  logger.With().Str("component", "status_view").Logger(),
		user:    user,
		now:     time.Now,
		drafts:  map[uint]string{},
		posting: map[uint]bool{},
		mounted: true,
	}
}

// OpenAt marks a complaint for deep-link highlighting. The highlight lasts
// about three seconds and the navigation state is consumed exactly once.
func (v *StatusView) OpenAt(complaintID uint) {
	v.highlightID = complaintID
	v.highlightUntil = v.now().Add(highlightWindow)
}

// Unmount tells the view to discard any in-flight results.
func (v *StatusView) Unmount() {
	v.mounted = false
}

// Load fetches the user's complaints, comments included. A view that
// unmounted while the request was in flight ignores the result.
func (v *StatusView) Load(ctx context.Context) error {
	complaints, err := v.api.GetComplaints(ctx, api.ComplaintListParams{IncludeComments: true})
	if err != nil {
		return err
	}
	if !v.mounted {
		v.logger.Debug().Msg("discarding fetch result after unmount")
		return nil
	}
	v.complaints = complaints
	return nil
}

// Complaints exposes the loaded records.
func (v *StatusView) Complaints() []models.Complaint {
	return v.complaints
}

// Cards derives the render-ready card list. The deep-linked card stays
// highlighted until its window expires.
func (v *StatusView) Cards() []Card {
	cards := make([]Card, 0, len(v.complaints))
	highlightActive := v.highlightID != 0 && v.now().Before(v.highlightUntil)
	for _, c := range v.complaints {
		card := buildCard(c, v.resolve)
		card.Highlighted = highlightActive && c.ID == v.highlightID
		cards = append(cards, card)
	}
	return cards
}

// SetDraft updates the inline comment editor for a complaint.
func (v *StatusView) SetDraft(complaintID uint, text string) {
	v.drafts[complaintID] = text
}

// Draft returns the current editor content for a complaint.
func (v *StatusView) Draft(complaintID uint) string {
	return v.drafts[complaintID]
}

// SubmitComment posts the draft for a complaint. On success the returned
// comment is appended to the thread tail and the draft cleared; on failure
// the draft is preserved so nothing typed is lost.
func (v *StatusView) SubmitComment(ctx context.Context, complaintID uint) (models.Comment, error) {
	if v.posting[complaintID] {
		return models.Comment{}, ErrCommentInFlight
	}
	draft := strings.TrimSpace(v.drafts[complaintID])
	if draft == "" {
		return models.Comment{}, ErrEmptyComment
	}

	v.posting[complaintID] = true
	defer func() { v.posting[complaintID] = false }()

	comment, err := v.api.AddComplaintComment(ctx, complaintID, v.user.UserID, draft)
	if err != nil {
		v.logger.Warn().Err(err).Uint("complaint_id", complaintID).Msg("comment post failed")
		return models.Comment{}, err
	}

	for i := range v.complaints {
		if v.complaints[i].ID == complaintID {
			v.complaints[i].Comments = append(v.complaints[i].Comments, comment)
			if comment.CreatedAt.After(v.complaints[i].UpdatedAt) {
				v.complaints[i].UpdatedAt = comment.CreatedAt
			}
			break
		}
	}
	delete(v.drafts, complaintID)
	return comment, nil
}
