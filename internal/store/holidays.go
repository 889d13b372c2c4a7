package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/holidaycal/internal/calendar"
)

// Holiday is an archived holiday with the run that wrote it.
type Holiday struct {
	RunID      uuid.UUID    `json:"run_id"`
	Country    string       `json:"country"`
	Date       calendar.Day `json:"date"`
	Name       string       `json:"name"`
	National   bool         `json:"national"`
	Source     string       `json:"source,omitempty"`
	RecordedAt time.Time    `json:"recorded_at"`
}

// HolidayQuery filters ListHolidays. Zero fields are not applied.
type HolidayQuery struct {
	Country string
	From    calendar.Day
	To      calendar.Day
	Limit   int
}

// ListHolidays returns the most recently archived holiday for each country
// and day, ordered by country then date.
func (s *Store) ListHolidays(ctx context.Context, q HolidayQuery) ([]Holiday, error) {
	if q.Limit <= 0 {
		q.Limit = 1000
	}

	wb := NewWhereBuilder()
	wb.Add("h.country_key", countryKey(q.Country))
	var from, to any
	if !q.From.IsZero() {
		from = ToPgDate(q.From)
	}
	if !q.To.IsZero() {
		to = ToPgDate(q.To)
	}
	wb.AddRange("h.day", from, to)
	whereClause, args := wb.Build()

	query := `SELECT DISTINCT ON (h.country_key, h.day)
			h.run_id, h.country, h.day, h.name, h.national, h.source, r.started_at
		FROM holidays h JOIN runs r ON r.id = h.run_id` + whereClause + `
		ORDER BY h.country_key, h.day, r.started_at DESC
		LIMIT $` + fmt.Sprint(wb.NextArgIndex())
	args = append(args, q.Limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	defer rows.Close()

	var out []Holiday
	for rows.Next() {
		var (
			runID      pgtype.UUID
			day        pgtype.Date
			source     pgtype.Text
			recordedAt pgtype.Timestamptz
			h          Holiday
		)
		if err := rows.Scan(&runID, &h.Country, &day, &h.Name, &h.National, &source, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan holiday: %w", err)
		}
		h.RunID = FromPgUUID(runID)
		h.Date = FromPgDate(day)
		h.Source = source.String
		h.RecordedAt = recordedAt.Time
		out = append(out, h)
	}
	return out, rows.Err()
}
