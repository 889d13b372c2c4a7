package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/holidaycal/internal/calendar"
	"github.com/JonMunkholm/holidaycal/internal/config"
	"github.com/JonMunkholm/holidaycal/internal/core"
)

// openTestStore connects to TEST_DATABASE_URL or skips.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, config.DatabaseConfig{URL: dsn, MaxConns: 2, MaxConnLifetime: time.Hour, MaxConnIdleTime: time.Minute})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.Migrate(ctx))
	return s
}

func sampleRun(country string, started time.Time, holidays ...core.WrittenHoliday) *core.RunReport {
	return &core.RunReport{
		ID:          uuid.New(),
		Kind:        core.KindPopulate,
		Status:      core.RunSucceeded,
		Trigger:     core.TriggerCLI,
		StartedAt:   started,
		FinishedAt:  started.Add(time.Minute),
		Input:       "template.ods",
		Output:      "out.ods",
		WindowStart: calendar.Date(2026, 1, 1),
		WindowEnd:   calendar.Date(2026, 12, 31),
		Countries: []*core.CountryReport{{
			Row:     1,
			Name:    country,
			Status:  core.StatusYes,
			Written: holidays,
		}},
	}
}

func TestOpen_Disabled(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{})
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestSaveRunAndQuery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	country := "Testland " + uuid.NewString()
	started := time.Now().UTC().Truncate(time.Second)

	first := sampleRun(country, started.Add(-time.Hour),
		core.WrittenHoliday{Date: calendar.Date(2026, 1, 1), Name: "Old Name", National: true, Column: 5},
		core.WrittenHoliday{Date: calendar.Date(2026, 5, 1), Name: "Labour Day", National: true, Column: 125},
	)
	second := sampleRun(country, started,
		core.WrittenHoliday{Date: calendar.Date(2026, 1, 1), Name: "New Year's Day", National: true, Column: 5, Source: "https://example.org"},
	)
	require.NoError(t, s.SaveRun(ctx, first))
	require.NoError(t, s.SaveRun(ctx, second))
	require.NoError(t, s.SaveRun(ctx, second), "saving twice replaces")

	got, err := s.ListHolidays(ctx, HolidayQuery{Country: country})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "New Year's Day", got[0].Name)
	assert.Equal(t, second.ID, got[0].RunID)
	assert.Equal(t, "https://example.org", got[0].Source)
	assert.Equal(t, "Labour Day", got[1].Name)

	got, err = s.ListHolidays(ctx, HolidayQuery{Country: country, From: calendar.Date(2026, 2, 1)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, calendar.Date(2026, 5, 1), got[0].Date)

	report, err := s.GetRun(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, report.ID)
	assert.Equal(t, 1, report.Written())

	runs, err := s.ListRuns(ctx, RunQuery{Kind: core.KindPopulate, Limit: 500})
	require.NoError(t, err)
	var found bool
	for _, r := range runs {
		if r.ID == second.ID {
			found = true
			assert.Equal(t, 1, r.Written)
			assert.Equal(t, calendar.Date(2026, 1, 1), r.WindowStart)
		}
	}
	assert.True(t, found)
}

func TestGetRun_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun(context.Background(), uuid.New())
	assert.ErrorIs(t, err, core.ErrRunNotFound)
}
