package core

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// filterEnv is what a filter expression can see of a country.
type filterEnv struct {
	Name   string
	Status string
	URL    string
	Row    int
}

// CountryFilter selects which countries a run processes.
type CountryFilter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles a boolean expression over Name, Status, URL and Row,
// for example `Status == "yes" && Name startsWith "S"`. An empty expression
// matches every country.
func CompileFilter(source string) (*CountryFilter, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return &CountryFilter{}, nil
	}
	program, err := expr.Compile(source, expr.Env(filterEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("filter expression %q: %w", source, err)
	}
	return &CountryFilter{source: source, program: program}, nil
}

// String returns the expression source.
func (f *CountryFilter) String() string {
	return f.source
}

// Match reports whether c passes the filter.
func (f *CountryFilter) Match(c Country) (bool, error) {
	if f == nil || f.program == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, filterEnv{
		Name:   c.Name,
		Status: string(c.Status),
		URL:    c.URL,
		Row:    c.Row,
	})
	if err != nil {
		return false, fmt.Errorf("filter expression %q: %w", f.source, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}
