package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/holidaycal/internal/calendar"
	"github.com/JonMunkholm/holidaycal/internal/core"
	"github.com/JonMunkholm/holidaycal/internal/logging"
	"github.com/JonMunkholm/holidaycal/internal/store"
)

// maxRequestBody caps run request bodies.
const maxRequestBody = 64 << 10

// StartRunResponse answers POST /api/runs.
type StartRunResponse struct {
	ID        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	StatusURL string    `json:"status_url"`
	ReportURL string    `json:"report_url"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"archive": s.archive != nil,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.Limiter().Status())
}

func (s *Server) handleListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := s.service.ListCountries(r.Context())
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, countries)
}

// handleStartRun starts a populate run in the background. The body is an
// optional JSON PopulateRequest.
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var req core.PopulateRequest
	if r.Body != nil && r.ContentLength != 0 {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, r, http.StatusBadRequest, "REQ001", "The request body is not a valid run request", "Send JSON with year, offset_weeks and filter")
			return
		}
	}
	if _, err := core.CompileFilter(req.Filter); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	id, err := s.service.StartPopulate(WithRequestMetadata(r.Context(), r), req)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	logging.FromContext(r.Context()).Info("run requested", "run_id", id.String(), "ip", clientIP(r))
	writeJSON(w, r, http.StatusAccepted, StartRunResponse{
		ID:        id,
		Status:    string(core.RunRunning),
		StatusURL: "/api/runs/" + id.String(),
		ReportURL: "/runs/" + id.String(),
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.Runs())
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, ok := parseRunID(w, r)
	if !ok {
		return
	}
	report, err := s.lookupRun(r.Context(), id)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

// handleRunPage renders a run report as HTML.
func (s *Server) handleRunPage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseRunID(w, r)
	if !ok {
		return
	}
	report, err := s.lookupRun(r.Context(), id)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	templ.Handler(RunReportPage(report)).ServeHTTP(w, r)
}

// lookupRun finds a run in memory, then in the archive.
func (s *Server) lookupRun(ctx context.Context, id uuid.UUID) (*core.RunReport, error) {
	report, err := s.service.Run(id)
	if err == nil || s.archive == nil || !errors.Is(err, core.ErrRunNotFound) {
		return report, err
	}
	return s.archive.GetRun(ctx, id)
}

func (s *Server) handleListArchivedRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireArchive(w, r) {
		return
	}
	q := store.RunQuery{Kind: core.RunKind(r.URL.Query().Get("kind"))}
	var ok bool
	if q.Limit, ok = intParam(w, r, "limit"); !ok {
		return
	}
	if q.Offset, ok = intParam(w, r, "offset"); !ok {
		return
	}

	runs, err := s.archive.ListRuns(r.Context(), q)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}
	writeJSON(w, r, http.StatusOK, runs)
}

// handleListHolidays lists the archived holidays of one country, optionally
// between the from and to dates (YYYY-MM-DD, inclusive).
func (s *Server) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	if !s.requireArchive(w, r) {
		return
	}
	country, err := url.PathUnescape(chi.URLParam(r, "country"))
	if err != nil || country == "" {
		writeError(w, r, http.StatusBadRequest, "REQ003", "The country name is not valid", "Use the name as it appears in the sheet")
		return
	}

	q := store.HolidayQuery{Country: country}
	var ok bool
	if q.From, ok = dayParam(w, r, "from"); !ok {
		return
	}
	if q.To, ok = dayParam(w, r, "to"); !ok {
		return
	}
	if q.Limit, ok = intParam(w, r, "limit"); !ok {
		return
	}

	holidays, err := s.archive.ListHolidays(r.Context(), q)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if holidays == nil {
		holidays = []store.Holiday{}
	}
	writeJSON(w, r, http.StatusOK, holidays)
}

func (s *Server) requireArchive(w http.ResponseWriter, r *http.Request) bool {
	if s.archive != nil {
		return true
	}
	writeError(w, r, http.StatusServiceUnavailable, "STORE001", "The holiday archive is not configured", "Set DATABASE_URL and restart serve mode")
	return false
}

func parseRunID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "REQ002", "The run ID is not valid", "Use the ID returned when the run started")
		return uuid.Nil, false
	}
	return id, true
}

// intParam reads a non-negative integer query parameter; absent means 0.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(w, r, http.StatusBadRequest, "REQ004", "Query parameter "+name+" must be a non-negative number", "")
		return 0, false
	}
	return n, true
}

// dayParam reads a YYYY-MM-DD query parameter; absent means the zero Day.
func dayParam(w http.ResponseWriter, r *http.Request, name string) (calendar.Day, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return calendar.Day{}, true
	}
	d, err := calendar.ParseISO(raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "REQ004", "Query parameter "+name+" must be a YYYY-MM-DD date", "")
		return calendar.Day{}, false
	}
	return d, true
}
