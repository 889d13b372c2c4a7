package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/holidaycal/internal/config"
	"github.com/JonMunkholm/holidaycal/internal/core"
)

func TestXLSXPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BH_List_20260601.ods", "BH_List_20260601.xlsx"},
		{"out/calendar.v2.ods", "out/calendar.v2.xlsx"},
		{"calendar", "calendar.xlsx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, xlsxPath(tt.in), tt.in)
	}
}

func TestParseFlags(t *testing.T) {
	newSet := func() *flag.FlagSet {
		fs := flag.NewFlagSet("populate", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		fs.Int("year", 0, "")
		return fs
	}

	require.NoError(t, parseFlags(newSet(), []string{"-year", "2027"}))

	var ue usageError
	assert.ErrorAs(t, parseFlags(newSet(), []string{"-nope"}), &ue)
	assert.ErrorAs(t, parseFlags(newSet(), []string{"stray"}), &ue)
	assert.True(t, errors.Is(parseFlags(newSet(), []string{"-h"}), flag.ErrHelp))
}

func TestFlagSet(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{name: "absent", args: nil, want: false},
		{name: "explicit zero", args: []string{"-offset", "0"}, want: true},
		{name: "explicit value", args: []string{"-offset=13"}, want: true},
		{name: "other flag only", args: []string{"-year", "2027"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("populate", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			fs.Int("year", 0, "")
			fs.Int("offset", 0, "")
			require.NoError(t, parseFlags(fs, tt.args))

			assert.Equal(t, tt.want, flagSet(fs, "offset"))
		})
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	err := run(context.Background(), &config.Config{}, "frobnicate", nil)

	var ue usageError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Error(), `unknown command "frobnicate"`)
}

func TestRunOverride_RequiresFile(t *testing.T) {
	err := runOverride(context.Background(), &config.Config{}, nil)

	var ue usageError
	require.ErrorAs(t, err, &ue)
}

func sampleReport() *core.RunReport {
	start := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	return &core.RunReport{
		Kind:       core.KindPopulate,
		Status:     core.RunSucceeded,
		StartedAt:  start,
		FinishedAt: start.Add(1500 * time.Millisecond),
		Output:     "BH_List_20260601.ods",
		Warnings:   []string{"Japan: four-digit year"},
		Countries: []*core.CountryReport{
			{
				Name:        "Japan",
				Written:     []core.WrittenHoliday{{Name: "New Year's Day"}},
				Unpublished: 1,
				Issues:      []core.Issue{{Code: "LOOKUP002", Message: "The date has no header column", Date: "2027-01-01"}},
			},
		},
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, sampleReport(), false)

	assert.Equal(t, "populate succeeded in 1.5s: 1 countries, 1 holidays written, 1 issues\n"+
		"saved BH_List_20260601.ods\n"+
		"warning: Japan: four-digit year\n"+
		"  LOOKUP002  Japan: The date has no header column (2027-01-01)\n"+
		"  note  Japan: 1 year(s) not yet published\n", buf.String())
}

func TestPrintReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, sampleReport(), true)

	var got core.RunReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, core.RunSucceeded, got.Status)
	require.Len(t, got.Countries, 1)
	assert.Equal(t, "LOOKUP002", got.Countries[0].Issues[0].Code)
}
