package store

// convert.go maps report values to and from PostgreSQL types.
//
// The To* functions return pgtype values with Valid=false for empty input so
// optional columns are stored as NULL.

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/holidaycal/internal/calendar"
)

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgDate converts a day to pgtype.Date. The zero day is invalid.
func ToPgDate(d calendar.Day) pgtype.Date {
	if d.IsZero() {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: d.Time(), Valid: true}
}

// ToPgTimestamptz converts a time to pgtype.Timestamptz. The zero time is
// invalid.
func ToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// ToPgUUID converts a UUID to pgtype.UUID. uuid.Nil is invalid.
func ToPgUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

// FromPgUUID converts a pgtype.UUID back, returning uuid.Nil when invalid.
func FromPgUUID(u pgtype.UUID) uuid.UUID {
	if !u.Valid {
		return uuid.Nil
	}
	return uuid.UUID(u.Bytes)
}

// FromPgDate converts a pgtype.Date to a day, the zero day when invalid.
func FromPgDate(d pgtype.Date) calendar.Day {
	if !d.Valid {
		return calendar.Day{}
	}
	return calendar.DayOf(d.Time)
}

// countryKey is the case-folded country name holidays are looked up by.
func countryKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
