package core

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/holidaycal/internal/calendar"
	"github.com/JonMunkholm/holidaycal/internal/ods/odstest"
)

// populatedContent is a calendar whose header covers 1-5 February 2026 in
// columns 5-9.
func populatedContent() string {
	header := []string{
		odstest.Cell("Supported", 1, ""),
		odstest.Cell("Flag", 1, ""),
		odstest.Cell("Override", 1, ""),
		odstest.Cell("Country", 1, ""),
		odstest.Cell("URL", 1, ""),
	}
	for d := 1; d <= 5; d++ {
		header = append(header, odstest.Cell(calendar.HeaderLabel(calendar.Date(2026, time.February, d)), 1, ""))
	}
	return odstest.Content(false,
		odstest.Row(header...),
		odstest.Row(odstest.Cell("Yes", 1, ""), odstest.Cell("", 2, ""), odstest.Cell("Atlantis", 1, ""), odstest.Cell("", 6, "")),
	)
}

const overrideYAML = `
- country: atlantis
  url: https://example.org/atlantis-holidays
  holidays:
    - date: 02/02/26
      name: Founding Day
    - date: 03/02/2026
      name: Second Day
    - date: 31/02/26
      name: Impossible Day
    - date: 01/01/27
      name: Next Year
- country: Lemuria
  holidays:
    - date: 01/02/26
      name: Sunken Day
`

func TestParseOverrides(t *testing.T) {
	got, err := ParseOverrides([]byte(overrideYAML))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "atlantis", got[0].Country)
	assert.Equal(t, "https://example.org/atlantis-holidays", got[0].URL)
	assert.Equal(t, OverrideHoliday{Date: "02/02/26", Name: "Founding Day"}, got[0].Holidays[0])
	assert.Empty(t, got[1].URL)

	tests := []struct {
		name string
		data string
	}{
		{"not a list", "country: x"},
		{"no country", "- url: https://example.org\n"},
		{"bad yaml", "- country: [x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOverrides([]byte(tt.data))
			require.Error(t, err)
			assert.Equal(t, "PARSE002", MapError(err).Code)
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	f := newFixture(t, populatedContent())
	overrides, err := ParseOverrides([]byte(overrideYAML))
	require.NoError(t, err)
	out := filepath.Join(f.dir, "amended.ods")

	report, err := f.svc.ApplyOverrides(context.Background(), OverrideRequest{
		Document:  f.template,
		Output:    out,
		Overrides: overrides,
	})
	require.NoError(t, err)
	assert.Equal(t, KindOverride, report.Kind)
	assert.Equal(t, RunSucceeded, report.Status)
	assert.Empty(t, f.source.Calls())

	require.Len(t, report.Countries, 2)
	atlantis := report.Countries[0]
	assert.Equal(t, "Atlantis", atlantis.Name)
	assert.Equal(t, 1, atlantis.Row)
	assert.Equal(t, []string{"PARSE001", "LOOKUP002"}, issueCodes(atlantis))
	require.Len(t, atlantis.Written, 2)
	assert.Equal(t, 6, atlantis.Written[0].Column)
	assert.True(t, atlantis.Written[0].National)

	lemuria := report.Countries[1]
	assert.Equal(t, -1, lemuria.Row)
	assert.Equal(t, []string{"LOOKUP001"}, issueCodes(lemuria))

	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "four-digit year")

	sheet := reopen(t, out)
	text, style := cellAt(t, sheet, 1, 6)
	assert.Equal(t, "Founding Day", text)
	assert.Equal(t, StyleNational, style)
	text, style = cellAt(t, sheet, 1, 7)
	assert.Equal(t, "Second Day", text)
	assert.Equal(t, StyleNational, style)
	text, _ = cellAt(t, sheet, 1, 2)
	assert.Equal(t, "https://example.org/atlantis-holidays", text)
	text, _ = cellAt(t, sheet, 1, 5)
	assert.Empty(t, text)
}

func TestApplyOverrides_NoCalendar(t *testing.T) {
	f := newFixture(t, templateContent())

	report, err := f.svc.ApplyOverrides(context.Background(), OverrideRequest{Document: f.template})
	require.Error(t, err)
	assert.ErrorIs(t, err, calendar.ErrNoCalendar)
	assert.Equal(t, "LOAD001", report.Error.Code)
}

func TestApplyOverrides_DefaultsToTodaysOutput(t *testing.T) {
	f := newFixture(t, populatedContent())
	target := f.svc.DefaultOutputPath()
	odstest.Write(t, f.dir, filepath.Base(target), populatedContent())

	report, err := f.svc.ApplyOverrides(context.Background(), OverrideRequest{
		Overrides: []Override{{Country: "Atlantis", Holidays: []OverrideHoliday{{Date: "05/02/26", Name: "Last"}}}},
	})
	require.NoError(t, err)
	assert.Equal(t, target, report.Input)
	assert.Equal(t, target, report.Output)

	text, _ := cellAt(t, reopen(t, target), 1, 9)
	assert.Equal(t, "Last", text)
}
