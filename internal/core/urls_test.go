package core

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"France", "france"},
		{" Sri Lanka ", "sri-lanka"},
		{"Bosnia & Herzegovina", "bosnia-and-herzegovina"},
		{"Cote d'Ivoire", "cote-divoire"},
		{"Antigua and Barbuda", "antigua-and-barbuda"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.name))
		})
	}
}

func TestRefreshURLs(t *testing.T) {
	f := newFixture(t, templateContent())
	out := filepath.Join(f.dir, "urls.ods")

	report, err := f.svc.RefreshURLs(context.Background(), URLRequest{
		Output: out,
		Year:   2027,
		Fixes:  map[string]string{"France": "frankreich"},
		Skip:   []string{"narnia"},
	})
	require.NoError(t, err)
	assert.Equal(t, KindURLs, report.Kind)
	assert.Equal(t, f.template, report.Input)
	require.Len(t, report.Countries, 3)

	sheet := reopen(t, out)
	tests := []struct {
		row  int
		want string
	}{
		{1, sourceBase + "/japan/2027"},
		{2, narniaURL},
		{3, sourceBase + "/atlantis/2027"},
		{4, sourceBase + "/frankreich/2027"},
	}
	for _, tt := range tests {
		got, err := sheet.TextAt(tt.row, 4)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "row %d", tt.row)
	}
}

func TestRefreshURLs_Defaults(t *testing.T) {
	f := newFixture(t, templateContent())

	report, err := f.svc.RefreshURLs(context.Background(), URLRequest{})
	require.NoError(t, err)
	assert.Equal(t, f.template, report.Output)
	assert.Len(t, report.Countries, 4)

	got, err := reopen(t, f.template).TextAt(4, 4)
	require.NoError(t, err)
	assert.Equal(t, sourceBase+"/france/2026", got)
}

func TestDefaultSlugFixes(t *testing.T) {
	assert.Equal(t, "usa", DefaultSlugFixes["United States of America"])
	assert.Equal(t, "south-korea", DefaultSlugFixes["Republic of Korea"])
	assert.Contains(t, DefaultSkip, "Nauru")
}
