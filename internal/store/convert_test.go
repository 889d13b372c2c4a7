package store

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/holidaycal/internal/calendar"
)

func TestToPgText(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		wantValue string
	}{
		{"hello", true, "hello"},
		{"  spaced  ", true, "spaced"},
		{"", false, ""},
		{"   ", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ToPgText(tt.input)
			if got.Valid != tt.wantValid {
				t.Errorf("ToPgText(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.String != tt.wantValue {
				t.Errorf("ToPgText(%q).String = %q, want %q", tt.input, got.String, tt.wantValue)
			}
		})
	}
}

func TestPgDateRoundTrip(t *testing.T) {
	d := calendar.Date(2026, time.March, 20)
	pg := ToPgDate(d)
	if !pg.Valid {
		t.Fatal("ToPgDate(2026-03-20) is invalid")
	}
	if got := FromPgDate(pg); got != d {
		t.Errorf("FromPgDate = %v, want %v", got, d)
	}

	if ToPgDate(calendar.Day{}).Valid {
		t.Error("zero day should be invalid")
	}
	if got := FromPgDate(ToPgDate(calendar.Day{})); !got.IsZero() {
		t.Errorf("FromPgDate(invalid) = %v, want zero", got)
	}
}

func TestPgUUIDRoundTrip(t *testing.T) {
	id := uuid.New()
	if got := FromPgUUID(ToPgUUID(id)); got != id {
		t.Errorf("round trip = %v, want %v", got, id)
	}
	if ToPgUUID(uuid.Nil).Valid {
		t.Error("uuid.Nil should be invalid")
	}
	if got := FromPgUUID(ToPgUUID(uuid.Nil)); got != uuid.Nil {
		t.Errorf("FromPgUUID(invalid) = %v, want Nil", got)
	}
}

func TestToPgTimestamptz(t *testing.T) {
	if ToPgTimestamptz(time.Time{}).Valid {
		t.Error("zero time should be invalid")
	}
	now := time.Now()
	if got := ToPgTimestamptz(now); !got.Valid || !got.Time.Equal(now) {
		t.Errorf("ToPgTimestamptz(now) = %+v", got)
	}
}

func TestCountryKey(t *testing.T) {
	if got := countryKey("  United Kingdom "); got != "united kingdom" {
		t.Errorf("countryKey = %q", got)
	}
}
