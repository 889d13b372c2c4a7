package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/holidaycal/internal/calendar"
	"github.com/JonMunkholm/holidaycal/internal/core"
	"github.com/JonMunkholm/holidaycal/internal/logging"
)

// DefaultListLimit caps list queries without an explicit limit.
const DefaultListLimit = 50

// SaveRun stores a finished run and the holidays it wrote, replacing any
// earlier copy of the same run. It implements core.Archive.
func (s *Store) SaveRun(ctx context.Context, r *core.RunReport) error {
	report, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", r.ID, err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `INSERT INTO runs (id, kind, status, trigger, requested_by, started_at,
			finished_at, input, output, window_start, window_end, countries, written, issues, report)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, finished_at = EXCLUDED.finished_at,
			output = EXCLUDED.output, countries = EXCLUDED.countries, written = EXCLUDED.written,
			issues = EXCLUDED.issues, report = EXCLUDED.report`,
		ToPgUUID(r.ID), string(r.Kind), string(r.Status), r.Trigger, ToPgText(r.RequestedBy),
		ToPgTimestamptz(r.StartedAt), ToPgTimestamptz(r.FinishedAt), r.Input, ToPgText(r.Output),
		ToPgDate(r.WindowStart), ToPgDate(r.WindowEnd),
		len(r.Countries), r.Written(), r.IssueCount(), report,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.ID, err)
	}

	batch := &pgx.Batch{}
	for _, c := range r.Countries {
		for _, h := range c.Written {
			batch.Queue(`INSERT INTO holidays (run_id, country, country_key, day, name, national, source)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (run_id, country_key, day) DO UPDATE
				SET name = EXCLUDED.name, national = EXCLUDED.national, source = EXCLUDED.source`,
				ToPgUUID(r.ID), c.Name, countryKey(c.Name), ToPgDate(h.Date), h.Name, h.National, ToPgText(h.Source))
		}
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert holidays of run %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run %s: %w", r.ID, err)
	}

	logging.FromContext(ctx).Debug("run archived", "run_id", r.ID.String(), "holidays", batch.Len())
	return nil
}

// RunSummary is a run row without its report.
type RunSummary struct {
	ID          uuid.UUID      `json:"id"`
	Kind        core.RunKind   `json:"kind"`
	Status      core.RunStatus `json:"status"`
	Trigger     string         `json:"trigger"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at,omitzero"`
	Output      string         `json:"output,omitempty"`
	WindowStart calendar.Day   `json:"window_start,omitzero"`
	WindowEnd   calendar.Day   `json:"window_end,omitzero"`
	Countries   int            `json:"countries"`
	Written     int            `json:"written"`
	Issues      int            `json:"issues"`
}

// RunQuery filters ListRuns.
type RunQuery struct {
	Kind   core.RunKind
	Limit  int
	Offset int
}

// ListRuns returns archived runs, newest first.
func (s *Store) ListRuns(ctx context.Context, q RunQuery) ([]RunSummary, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultListLimit
	}

	wb := NewWhereBuilder()
	wb.Add("kind", string(q.Kind))
	whereClause, args := wb.Build()

	query := `SELECT id, kind, status, trigger, started_at, finished_at, output,
		window_start, window_end, countries, written, issues
		FROM runs` + whereClause + ` ORDER BY started_at DESC LIMIT $` +
		fmt.Sprintf("%d OFFSET $%d", wb.NextArgIndex(), wb.NextArgIndex()+1)
	args = append(args, q.Limit, q.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		sum, err := scanRunSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// GetRun returns the full report of an archived run.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*core.RunReport, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT report FROM runs WHERE id = $1`, ToPgUUID(id)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, core.ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	var r core.RunReport
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &r, nil
}

func scanRunSummary(rows pgx.Rows) (RunSummary, error) {
	var (
		id          pgtype.UUID
		kind        string
		status      string
		trigger     string
		startedAt   pgtype.Timestamptz
		finishedAt  pgtype.Timestamptz
		output      pgtype.Text
		windowStart pgtype.Date
		windowEnd   pgtype.Date
		sum         RunSummary
	)
	err := rows.Scan(&id, &kind, &status, &trigger, &startedAt, &finishedAt, &output,
		&windowStart, &windowEnd, &sum.Countries, &sum.Written, &sum.Issues)
	if err != nil {
		return RunSummary{}, err
	}

	sum.ID = FromPgUUID(id)
	sum.Kind = core.RunKind(kind)
	sum.Status = core.RunStatus(status)
	sum.Trigger = trigger
	sum.StartedAt = startedAt.Time
	if finishedAt.Valid {
		sum.FinishedAt = finishedAt.Time
	}
	sum.Output = output.String
	sum.WindowStart = FromPgDate(windowStart)
	sum.WindowEnd = FromPgDate(windowEnd)
	return sum, nil
}
