package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hostelguard/hostelctl/internal/api"
	"github.com/hostelguard/hostelctl/internal/models"
)

const (
	triagePageSize    = 10
	pageWindowSize    = 5
	statusBannerShown = 3500 * time.Millisecond
)

var (
	// ErrNoPermission indicates the session role may not use the triage
	// surface; no data is fetched.
	ErrNoPermission = errors.New("you do not have permission to view complaints")
	// ErrInvalidDateRange indicates the filter's start date is after its
	// end date; the filter is not applied.
	ErrInvalidDateRange = errors.New("the start date must not be after the end date")
	// ErrStatusSaveInFlight guards the status control against double-fire.
	ErrStatusSaveInFlight = errors.New("a status change is already being saved")
	// ErrTransitionNotAllowed indicates a forbidden status edge.
	ErrTransitionNotAllowed = errors.New("this status change is not allowed")
)

// TriageAPI is the slice of the API client the triage surface needs.
type TriageAPI interface {
	GetComplaints(ctx context.Context, params api.ComplaintListParams) ([]models.Complaint, error)
	GetComplaintByIdentifier(ctx context.Context, identifier string) (models.Complaint, error)
	AddComplaintComment(ctx context.Context, id uint, authorID uint, message string) (models.Comment, error)
	UpdateComplaintStatus(ctx context.Context, id uint, status models.Status) (models.Complaint, error)
}

// Row is one complaint shaped for the triage table.
type Row struct {
	ID             uint
	Reference      string
	SubmittedLabel string
	StudentName    string
	RawStatus      models.Status
	StatusLabel    string
}

// Filter narrows the triage list. A zero Status means all statuses; zero
// times leave that bound open. The upper bound is inclusive through end of
// day.
type Filter struct {
	Status models.Status
	From   time.Time
	To     time.Time
}

// TriageList is the admin list surface: search, filter, pagination.
type TriageList struct {
	api    TriageAPI
	logger zerolog.Logger

	complaints []models.Complaint
	query      string
	filter     Filter
	page       int
	mounted    bool
}

// NewTriageList constructs the list surface.
func NewTriageList(client TriageAPI, logger zerolog.Logger) *TriageList {
	return &TriageList{
		api:     client,
		logger:  logger.With().Str("component", "triage_list").Logger(),
		page:    1,
		mounted: true,
	}
}

// Unmount tells the list to discard any in-flight results.
func (l *TriageList) Unmount() {
	l.mounted = false
}

// Load fetches all complaints once per mount. Only ADMIN and SUPER_ADMIN
// roles may fetch; anyone else gets ErrNoPermission without a request.
func (l *TriageList) Load(ctx context.Context, role models.Role) error {
	if !role.IsAdmin() {
		return ErrNoPermission
	}
	complaints, err := l.api.GetComplaints(ctx, api.ComplaintListParams{})
	if err != nil {
		return err
	}
	if !l.mounted {
		l.logger.Debug().Msg("discarding fetch result after unmount")
		return nil
	}
	l.complaints = complaints
	return nil
}

// SetQuery updates the search term.
func (l *TriageList) SetQuery(query string) {
	l.query = strings.TrimSpace(query)
}

// ApplyFilter installs a status and date-range filter. An inverted range is
// rejected at apply-time and the previous filter stays in place.
func (l *TriageList) ApplyFilter(f Filter) error {
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return ErrInvalidDateRange
	}
	l.filter = f
	return nil
}

// Rows derives the filtered, searched triage rows.
func (l *TriageList) Rows() []Row {
	rows := make([]Row, 0, len(l.complaints))
	query := strings.ToLower(l.query)
	for _, c := range l.complaints {
		row := Row{
			ID:             c.ID,
			Reference:      c.ReferenceCode,
			SubmittedLabel: models.FormatSubmittedAt(c.SubmittedAt),
			StudentName:    c.DisplayName(),
			RawStatus:      c.Status,
			StatusLabel:    c.Status.Label(),
		}
		if !l.matchesFilter(c) {
			continue
		}
		if query != "" && !matchesQuery(row, query) {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func (l *TriageList) matchesFilter(c models.Complaint) bool {
	if l.filter.Status != "" && models.CanonicalStatus(c.Status) != models.CanonicalStatus(l.filter.Status) {
		return false
	}
	if !l.filter.From.IsZero() && c.SubmittedAt.Before(l.filter.From) {
		return false
	}
	if !l.filter.To.IsZero() {
		endOfDay := time.Date(l.filter.To.Year(), l.filter.To.Month(), l.filter.To.Day(),
			23, 59, 59, int(time.Second-time.Nanosecond), l.filter.To.Location())
		if c.SubmittedAt.After(endOfDay) {
			return false
		}
	}
	return true
}

func matchesQuery(row Row, query string) bool {
	haystacks := []string{row.StudentName, row.Reference, row.SubmittedLabel, row.StatusLabel}
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), query) {
			return true
		}
	}
	return false
}

// PageCount returns the number of pages for the current filtered set,
// never less than one.
func (l *TriageList) PageCount() int {
	count := (len(l.Rows()) + triagePageSize - 1) / triagePageSize
	if count < 1 {
		return 1
	}
	return count
}

// Page returns the current page, clamped whenever the filtered set shrank
// beneath it.
func (l *TriageList) Page() int {
	if pages := l.PageCount(); l.page > pages {
		l.page = pages
	}
	if l.page < 1 {
		l.page = 1
	}
	return l.page
}

// SetPage navigates to a page, clamped to the valid range.
func (l *TriageList) SetPage(page int) {
	l.page = page
	l.Page()
}

// PageRows returns the rows visible on the current page.
func (l *TriageList) PageRows() []Row {
	rows := l.Rows()
	page := l.Page()
	start := (page - 1) * triagePageSize
	if start >= len(rows) {
		return nil
	}
	end := start + triagePageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// PageWindow returns up to five page numbers centered on the current page,
// for the pagination buttons.
func (l *TriageList) PageWindow() []int {
	count := l.PageCount()
	page := l.Page()

	start := page - pageWindowSize/2
	if start < 1 {
		start = 1
	}
	end := start + pageWindowSize - 1
	if end > count {
		end = count
		if start = end - pageWindowSize + 1; start < 1 {
			start = 1
		}
	}

	window := make([]int, 0, pageWindowSize)
	for p := start; p <= end; p++ {
		window = append(window, p)
	}
	return window
}

// TriageDetail is the single-complaint surface: status state machine and
// comment append.
type TriageDetail struct {
	api     TriageAPI
	resolve URLResolver
	logger  zerolog.Logger
	adminID uint
	now     func() time.Time

	complaint   models.Complaint
	loaded      bool
	mounted     bool
	saving      bool
	posting     bool
	banner      string
	bannerUntil time.Time

	// onRefreshComplaints, when set, runs after a mutating call resolves so
	// the list surface can refetch.
	onRefreshComplaints func()
}

// NewTriageDetail constructs the detail surface for one acting admin.
func NewTriageDetail(client TriageAPI, resolve URLResolver, adminID uint, logger zerolog.Logger) *TriageDetail {
	return &TriageDetail{
		api:     client,
		resolve: resolve,
		logger:  logger.With().Str("component", "triage_detail").Logger(),
		adminID: adminID,
		now:     time.Now,
		mounted: true,
	}
}

// Unmount tells the detail surface to discard any in-flight results.
func (d *TriageDetail) Unmount() {
	d.mounted = false
}

// OnRefreshComplaints registers a best-effort hook invoked after mutations.
func (d *TriageDetail) OnRefreshComplaints(fn func()) {
	d.onRefreshComplaints = fn
}

// Load fetches one complaint by reference code or id. An unknown identifier
// surfaces api.ErrNotFound; callers render the empty-state card for it.
func (d *TriageDetail) Load(ctx context.Context, identifier string) error {
	complaint, err := d.api.GetComplaintByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}
	if !d.mounted {
		d.logger.Debug().Msg("discarding fetch result after unmount")
		return nil
	}
	d.complaint = complaint
	d.loaded = true
	return nil
}

// Complaint exposes the loaded record.
func (d *TriageDetail) Complaint() models.Complaint {
	return d.complaint
}

// Card derives the render-ready detail card.
func (d *TriageDetail) Card() Card {
	return buildCard(d.complaint, d.resolve)
}

// Banner returns the transient confirmation banner, or empty once it has
// expired.
func (d *TriageDetail) Banner() string {
	if d.banner == "" || d.now().After(d.bannerUntil) {
		return ""
	}
	return d.banner
}

// ChangeStatus confirms a transition to the target status. On success the
// local record is replaced by the server response and a confirmation banner
// shows for about 3.5 seconds.
func (d *TriageDetail) ChangeStatus(ctx context.Context, target models.Status) error {
	if d.saving {
		return ErrStatusSaveInFlight
	}
	if !models.CanTransition(d.complaint.Status, target) {
		return ErrTransitionNotAllowed
	}

	d.saving = true
	defer func() { d.saving = false }()

	updated, err := d.api.UpdateComplaintStatus(ctx, d.complaint.ID, target)
	if err != nil {
		d.logger.Warn().Err(err).Uint("complaint_id", d.complaint.ID).Msg("status change failed")
		return err
	}
	if !d.mounted {
		d.logger.Debug().Msg("discarding status change result after unmount")
		return nil
	}

	d.complaint = updated
	d.banner = fmt.Sprintf("Status updated to %s", updated.Status.Label())
	d.bannerUntil = d.now().Add(statusBannerShown)
	d.logger.Info().
		Uint("complaint_id", updated.ID).
		Str("status", string(updated.Status)).
		Msg("complaint status updated")

	if d.onRefreshComplaints != nil {
		d.onRefreshComplaints()
	}
	return nil
}

// AddComment appends a comment tagged with the acting admin's id. On
// success the server's comment is appended to the in-memory thread.
func (d *TriageDetail) AddComment(ctx context.Context, message string) (models.Comment, error) {
	if d.posting {
		return models.Comment{}, ErrCommentInFlight
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return models.Comment{}, ErrEmptyComment
	}

	d.posting = true
	defer func() { d.posting = false }()

	comment, err := d.api.AddComplaintComment(ctx, d.complaint.ID, d.adminID, message)
	if err != nil {
		return models.Comment{}, err
	}
	if !d.mounted {
		d.logger.Debug().Msg("discarding comment result after unmount")
		return comment, nil
	}

	d.complaint.Comments = append(d.complaint.Comments, comment)
	if comment.CreatedAt.After(d.complaint.UpdatedAt) {
		d.complaint.UpdatedAt = comment.CreatedAt
	}

	if d.onRefreshComplaints != nil {
		d.onRefreshComplaints()
	}
	return comment, nil
}
