package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/holidaycal/internal/ods"
)

func TestRunStore(t *testing.T) {
	store := newRunStore(2)
	ctx := context.Background()
	now := time.Now()

	a := newReport(ctx, KindPopulate, now)
	b := newReport(ctx, KindOverride, now)
	c := newReport(ctx, KindURLs, now)
	store.put(a)
	store.put(b)
	store.put(a)
	store.put(c)

	_, ok := store.get(a.ID)
	assert.False(t, ok, "oldest evicted")

	list := store.list()
	require.Len(t, list, 2)
	assert.Equal(t, c.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)
}

func TestRunReport_Finish(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := ContextWithIPAddress(ContextWithTrigger(context.Background(), TriggerAPI), "10.0.0.1")

	r := newReport(ctx, KindPopulate, start)
	assert.Equal(t, RunRunning, r.Status)
	assert.Equal(t, TriggerAPI, r.Trigger)
	assert.Equal(t, "10.0.0.1", r.RequestedBy)

	r.finish(start.Add(time.Minute), &ods.SaveError{Path: "out.ods", Err: errors.New("disk full")})
	assert.Equal(t, RunFailed, r.Status)
	assert.Equal(t, "SAVE001", r.Error.Code)
	assert.Equal(t, "save out.ods: disk full", r.ErrorDetail)
	assert.Equal(t, time.Minute, r.Duration())
}

func TestRunReport_Snapshot(t *testing.T) {
	r := newReport(context.Background(), KindPopulate, time.Now())
	r.Countries = []*CountryReport{{Name: "Japan"}}
	r.Warnings = []string{"w"}

	snap := r.snapshot()
	assert.Equal(t, r.ID, snap.ID)
	assert.Nil(t, snap.Countries)
	assert.Nil(t, snap.Warnings)
	assert.Len(t, r.Countries, 1)
}

func TestCountryReport_Issue(t *testing.T) {
	cr := &CountryReport{Name: "Japan"}
	cr.issue(context.Background(), ErrDateNotInCalendar, "2026-01-01", "https://example.org")

	require.Len(t, cr.Issues, 1)
	got := cr.Issues[0]
	assert.Equal(t, "LOOKUP002", got.Code)
	assert.Equal(t, "Japan", got.Country)
	assert.Equal(t, "2026-01-01", got.Date)
	assert.Equal(t, "https://example.org", got.URL)
}
