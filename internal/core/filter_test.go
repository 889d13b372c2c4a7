package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountryFilter(t *testing.T) {
	japan := Country{Row: 1, Name: "Japan", Status: StatusYes, URL: japanURL}
	narnia := Country{Row: 2, Name: "Narnia", Status: StatusNo}

	tests := []struct {
		expr      string
		wantJapan bool
		wantNarn  bool
	}{
		{"", true, true},
		{`Status == "yes"`, true, false},
		{`Name startsWith "N"`, false, true},
		{`Row > 1`, false, true},
		{`URL contains "officeholidays"`, true, false},
		{`Name in ["Japan", "Narnia"] && Status != "no"`, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := CompileFilter(tt.expr)
			require.NoError(t, err)

			got, err := f.Match(japan)
			require.NoError(t, err)
			assert.Equal(t, tt.wantJapan, got)
			got, err = f.Match(narnia)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNarn, got)
		})
	}
}

func TestCompileFilter_Errors(t *testing.T) {
	for _, expr := range []string{"Name ==", "Population > 3", `Name + "x"`} {
		t.Run(expr, func(t *testing.T) {
			_, err := CompileFilter(expr)
			require.Error(t, err)
			assert.Equal(t, "PARSE002", MapError(err).Code)
		})
	}
}
