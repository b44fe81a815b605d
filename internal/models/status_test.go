package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalStatus(t *testing.T) {
	cases := map[Status]Status{
		"":              StatusNew,
		"new":           StatusNew,
		"pending":       StatusNew,
		"Pending":       StatusNew,
		"PENDING":       StatusNew,
		"in_progress":   StatusInProgress,
		"In_Progress":   StatusInProgress,
		"in progress":   StatusInProgress,
		"investigating": StatusInProgress,
		"resolved":      StatusResolved,
		"completed":     StatusResolved,
		"rejected":      StatusRejected,
		"failed":        StatusRejected,
		"garbage":       StatusNew,
	}
	for raw, want := range cases {
		require.Equal(t, want, CanonicalStatus(raw), "input %q", raw)
	}
}

func TestCanonicalStatusIdempotent(t *testing.T) {
	inputs := []Status{"Pending", "PENDING", "in progress", "In_Progress", "", "Resolved!", "reject", "anything"}
	for _, raw := range inputs {
		once := CanonicalStatus(raw)
		require.Equal(t, once, CanonicalStatus(once), "input %q", raw)
	}
}

func TestStatusLabels(t *testing.T) {
	require.Equal(t, "New", Status("pending").Label())
	require.Equal(t, "Investigating", Status("in_progress").Label())
	require.Equal(t, "Resolved", Status("resolved").Label())
	require.Equal(t, "Rejected", Status("rejected").Label())
}

func TestStatusClass(t *testing.T) {
	require.Equal(t, "status-new", Status("").Class())
	require.Equal(t, "status-in_progress", Status("investigating").Class())
}

func TestStatusNotices(t *testing.T) {
	require.Contains(t, Status("new").Notice(), "pending review")
	require.Contains(t, Status("in_progress").Notice(), "investigating")
	require.Contains(t, Status("resolved").Notice(), "resolved")
	require.Contains(t, Status("rejected").Notice(), "rejected")
}

func TestCanTransitionAllowsEveryEdge(t *testing.T) {
	for _, from := range Statuses() {
		for _, to := range Statuses() {
			require.True(t, CanTransition(from, to))
		}
	}
}
