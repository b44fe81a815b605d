package models

import "strings"

// Status is a complaint's position in the triage workflow. The wire format
// is underscored lowercase and is round-tripped verbatim; human labels are
// derived on read only.
type Status string

// Canonical statuses.
const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusRejected   Status = "rejected"
)

// Statuses lists the canonical statuses in workflow order.
func Statuses() []Status {
	return []Status{StatusNew, StatusInProgress, StatusResolved, StatusRejected}
}

// CanonicalStatus collapses the server's status spellings onto the closed
// set. "pending" is a legacy alias for "new" and is accepted on read;
// update payloads only ever carry canonical keys. Unknown strings fall back
// to "new". The mapping is idempotent.
func CanonicalStatus(raw Status) Status {
	s := strings.ToLower(strings.TrimSpace(string(raw)))
	switch s {
	case "", "pending", "new":
		return StatusNew
	case "in_progress", "investigating":
		return StatusInProgress
	}
	switch {
	case strings.Contains(s, "progress"):
		return StatusInProgress
	case strings.Contains(s, "resolve"), strings.Contains(s, "complete"):
		return StatusResolved
	case strings.Contains(s, "reject"), strings.Contains(s, "fail"):
		return StatusRejected
	}
	return StatusNew
}

// Label returns the human-readable form of a status.
func (s Status) Label() string {
	switch CanonicalStatus(s) {
	case StatusInProgress:
		return "Investigating"
	case StatusResolved:
		return "Resolved"
	case StatusRejected:
		return "Rejected"
	default:
		return "New"
	}
}

// Class returns the render class for a status, used to pick card styling.
func (s Status) Class() string {
	return "status-" + string(CanonicalStatus(s))
}

// Notice returns the reporter-facing explanation shown on a complaint card.
func (s Status) Notice() string {
	switch CanonicalStatus(s) {
	case StatusInProgress:
		return "Our team is investigating your complaint."
	case StatusResolved:
		return "Your complaint has been resolved. Thank you for speaking up."
	case StatusRejected:
		return "Your complaint was rejected. Please review the feedback in the comments."
	default:
		return "Your complaint has been received and is pending review."
	}
}

// CanTransition reports whether an administrator may move a complaint from
// one status to another. Every edge is currently allowed; the table exists
// so that forbidding one (e.g. resolved back to new) is a one-line change.
func CanTransition(from, to Status) bool {
	forbidden := map[Status][]Status{
		// No forbidden edges today.
	}
	for _, t := range forbidden[CanonicalStatus(from)] {
		if t == CanonicalStatus(to) {
			return false
		}
	}
	return true
}
