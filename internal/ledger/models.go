package ledger

import (
	"fmt"
	"strings"
)

// Status represents the lifecycle of a ledger row.
type Status string

const (
	StatusPending          Status = "pending"
	StatusResolved         Status = "resolved"
	StatusResolutionFailed Status = "resolution_failed"
	StatusDownloaded       Status = "downloaded"
	StatusDownloadFailed   Status = "download_failed"
	StatusSkippedExisting  Status = "skipped_existing"
)

var allStatuses = []Status{
	StatusPending,
	StatusResolved,
	StatusResolutionFailed,
	StatusDownloaded,
	StatusDownloadFailed,
	StatusSkippedExisting,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// transitions is the forward-only state machine. A status absent from the map
// is terminal.
var transitions = map[Status][]Status{
	StatusPending:  {StatusResolved, StatusResolutionFailed},
	StatusResolved: {StatusDownloaded, StatusDownloadFailed, StatusSkippedExisting},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether no further transition exists from the status.
func (s Status) IsTerminal() bool {
	_, ok := transitions[s]
	return !ok
}

// CanTransition reports whether the state machine permits moving from one
// status to another. Transitions never move backward and never skip a state.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Row is one CSV record, the unit of persisted state.
type Row struct {
	Index          int
	Query          string
	Status         Status
	ResultURL      string
	ResultTitle    string
	ResultDuration string
	ResultUploader string
	OutputPath     string
}

// NewRow returns a pending row for a query at the given position.
func NewRow(index int, query string) Row {
	return Row{Index: index, Query: query, Status: StatusPending}
}

// Advance moves the row to the requested status, enforcing the forward-only
// state machine. Fields recorded earlier are never cleared here.
func (r *Row) Advance(to Status) error {
	if _, ok := statusSet[to]; !ok {
		return fmt.Errorf("unknown status %q", to)
	}
	if !CanTransition(r.Status, to) {
		return fmt.Errorf("illegal status transition %s -> %s for row %d", r.Status, to, r.Index)
	}
	r.Status = to
	return nil
}

// Summarize counts rows per status.
func Summarize(rows []Row) map[Status]int {
	counts := make(map[Status]int, len(allStatuses))
	for _, row := range rows {
		counts[row.Status]++
	}
	return counts
}
