package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/holidaycal/internal/calendar"
	"github.com/JonMunkholm/holidaycal/internal/logging"
)

var (
	// ErrCountryNotFound is returned when no sheet row carries a country name.
	ErrCountryNotFound = errors.New("country not found in sheet")

	// ErrDateNotInCalendar is returned when a date has no header column.
	ErrDateNotInCalendar = errors.New("date not in calendar")

	// ErrNoSource is returned for a country whose URL is not on the source host.
	ErrNoSource = errors.New("no scrapeable source URL")

	// ErrRunNotFound is returned for an unknown run ID.
	ErrRunNotFound = errors.New("run not found")
)

// RunKind names what a run does.
type RunKind string

const (
	KindPopulate RunKind = "populate"
	KindOverride RunKind = "override"
	KindURLs     RunKind = "urls"
)

// RunStatus is a run's lifecycle state.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Issue is one non-fatal condition met during a run. The write it concerns
// was skipped; the run carried on.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Country string `json:"country,omitempty"`
	Date    string `json:"date,omitempty"`
	URL     string `json:"url,omitempty"`
}

// WrittenHoliday is a holiday placed in the sheet.
type WrittenHoliday struct {
	Date     calendar.Day `json:"date"`
	Name     string       `json:"name"`
	National bool         `json:"national"`
	Column   int          `json:"column"`
	Source   string       `json:"source"`
}

// CountryReport is what a run did to one country row.
type CountryReport struct {
	Row     int              `json:"row"`
	Name    string           `json:"name"`
	Status  Status           `json:"status"`
	URL     string           `json:"url,omitempty"`
	Written []WrittenHoliday `json:"written,omitempty"`
	// OutOfWindow counts fetched holidays dated outside the calendar.
	OutOfWindow int `json:"out_of_window,omitempty"`
	// Pages counts listing pages fetched successfully.
	Pages int `json:"pages,omitempty"`
	// Unpublished counts years the listing site has no page for yet.
	Unpublished int `json:"unpublished,omitempty"`
	// Discarded counts listing rows dropped as malformed.
	Discarded int     `json:"discarded,omitempty"`
	Issues    []Issue `json:"issues,omitempty"`
}

// RunReport is the outcome of one run.
type RunReport struct {
	ID          uuid.UUID        `json:"id"`
	Kind        RunKind          `json:"kind"`
	Status      RunStatus        `json:"status"`
	Trigger     string           `json:"trigger"`
	RequestedBy string           `json:"requested_by,omitempty"`
	StartedAt   time.Time        `json:"started_at"`
	FinishedAt  time.Time        `json:"finished_at,omitzero"`
	Input       string           `json:"input"`
	Output      string           `json:"output,omitempty"`
	WindowStart calendar.Day     `json:"window_start,omitzero"`
	WindowEnd   calendar.Day     `json:"window_end,omitzero"`
	Countries   []*CountryReport `json:"countries"`
	Warnings    []string         `json:"warnings,omitempty"`
	Error       *UserMessage     `json:"error,omitempty"`
	ErrorDetail string           `json:"error_detail,omitempty"`
}

func newReport(ctx context.Context, kind RunKind, now time.Time) *RunReport {
	return &RunReport{
		ID:          uuid.New(),
		Kind:        kind,
		Status:      RunRunning,
		Trigger:     TriggerFromContext(ctx),
		RequestedBy: GetIPAddressFromContext(ctx),
		StartedAt:   now,
	}
}

// Written returns the total number of holidays written.
func (r *RunReport) Written() int {
	n := 0
	for _, c := range r.Countries {
		n += len(c.Written)
	}
	return n
}

// IssueCount returns the total number of issues.
func (r *RunReport) IssueCount() int {
	n := 0
	for _, c := range r.Countries {
		n += len(c.Issues)
	}
	return n
}

// Country returns the report for the named country.
func (r *RunReport) Country(name string) *CountryReport {
	for _, c := range r.Countries {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Duration returns how long the run took, or has taken so far.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// snapshot copies the report's header fields for publication while the run
// is still mutating it.
func (r *RunReport) snapshot() *RunReport {
	cp := *r
	cp.Countries = nil
	cp.Warnings = nil
	return &cp
}

func (r *RunReport) finish(now time.Time, err error) {
	r.FinishedAt = now
	if err != nil {
		msg := MapError(err)
		r.Status = RunFailed
		r.Error = &msg
		r.ErrorDetail = err.Error()
		return
	}
	r.Status = RunSucceeded
}

// issue records a skipped write on c and logs it.
func (c *CountryReport) issue(ctx context.Context, err error, date, url string) {
	msg := MapError(err)
	c.Issues = append(c.Issues, Issue{
		Code:    msg.Code,
		Message: msg.Message,
		Detail:  err.Error(),
		Country: c.Name,
		Date:    date,
		URL:     url,
	})
	logging.FromContext(ctx).Warn("write skipped",
		"code", msg.Code,
		"country", c.Name,
		"date", date,
		"url", url,
		"error", err,
	)
}

// runStore keeps recent reports in memory for the HTTP API.
type runStore struct {
	mu    sync.RWMutex
	runs  map[uuid.UUID]*RunReport
	order []uuid.UUID
	limit int
}

func newRunStore(limit int) *runStore {
	return &runStore{runs: make(map[uuid.UUID]*RunReport), limit: limit}
}

func (s *runStore) put(r *RunReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[r.ID]; !ok {
		s.order = append(s.order, r.ID)
	}
	s.runs[r.ID] = r
	for len(s.order) > s.limit {
		delete(s.runs, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *runStore) get(id uuid.UUID) (*RunReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	return r, ok
}

func (s *runStore) list() []*RunReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*RunReport, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.runs[s.order[i]])
	}
	return out
}
