package core

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/holidaycal/internal/calendar"
	"github.com/JonMunkholm/holidaycal/internal/logging"
	"github.com/JonMunkholm/holidaycal/internal/ods"
)

// Override is a hand-entered batch for one country, used where the listing
// site has no page or gets a country wrong.
type Override struct {
	Country  string            `yaml:"country" json:"country"`
	URL      string            `yaml:"url" json:"url"`
	Holidays []OverrideHoliday `yaml:"holidays" json:"holidays"`
}

// OverrideHoliday is one hand-entered holiday. Date is DD/MM/YY.
type OverrideHoliday struct {
	Date string `yaml:"date" json:"date"`
	Name string `yaml:"name" json:"name"`
}

// ParseOverrides decodes a YAML list of overrides.
func ParseOverrides(data []byte) ([]Override, error) {
	var out []Override
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("override file: %w", err)
	}
	for i, o := range out {
		if strings.TrimSpace(o.Country) == "" {
			return nil, fmt.Errorf("override file: entry %d has no country", i+1)
		}
	}
	return out, nil
}

// LoadOverrides reads and decodes an override file.
func LoadOverrides(path string) ([]Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("override file: %w", err)
	}
	return ParseOverrides(data)
}

// OverrideRequest parameterizes an override run.
type OverrideRequest struct {
	// Document is the populated calendar to amend. Empty means today's
	// default output path.
	Document string
	// Output is where the result is saved. Empty means Document.
	Output    string
	Overrides []Override
}

// ApplyOverrides writes hand-entered holidays into an already populated
// calendar. Each country's URL goes into the override URL column and its
// holidays are written as national. Unknown countries and dates outside the
// calendar are reported and skipped.
func (s *Service) ApplyOverrides(ctx context.Context, req OverrideRequest) (*RunReport, error) {
	ctx, report, release, err := s.begin(ctx, KindOverride, true)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.applyOverrides(ctx, req, report)
	s.end(ctx, report, err)
	return report, err
}

func (s *Service) applyOverrides(ctx context.Context, req OverrideRequest, report *RunReport) error {
	report.Input = req.Document
	if report.Input == "" {
		report.Input = s.DefaultOutputPath()
	}
	report.Output = req.Output
	if report.Output == "" {
		report.Output = report.Input
	}

	doc, err := ods.Open(report.Input)
	if err != nil {
		return err
	}
	sheet := doc.Sheet()

	index, err := calendar.ReadHeader(sheet)
	if err != nil {
		return fmt.Errorf("load %s: %w", report.Input, err)
	}
	EnsureStyles(doc)
	countries := Countries(sheet, s.cfg.Sheet)

	for _, o := range req.Overrides {
		cr := s.applyOverride(ctx, sheet, index, countries, o, report)
		report.Countries = append(report.Countries, cr)
	}

	return doc.Save(report.Output)
}

func (s *Service) applyOverride(ctx context.Context, sheet *ods.Sheet, index *calendar.Index, countries []Country, o Override, report *RunReport) *CountryReport {
	url := strings.TrimSpace(o.URL)
	c, ok := FindCountry(countries, o.Country)
	if !ok {
		cr := &CountryReport{Row: -1, Name: strings.TrimSpace(o.Country), URL: url}
		cr.issue(ctx, fmt.Errorf("%q: %w", o.Country, ErrCountryNotFound), "", url)
		return cr
	}

	cr := &CountryReport{Row: c.Row, Name: c.Name, Status: c.Status, URL: url}
	if url != "" {
		if err := sheet.SetCellText(c.Row, s.cfg.Sheet.OverrideURLColumn, url, ""); err != nil {
			cr.issue(ctx, err, "", url)
		}
	}

	log := logging.FromContext(ctx)
	records := make([]holidayRecord, 0, len(o.Holidays))
	for _, h := range o.Holidays {
		day, warning, err := calendar.ParseLiteralDate(h.Date)
		if err != nil {
			cr.issue(ctx, err, h.Date, url)
			continue
		}
		if warning != "" {
			report.Warnings = append(report.Warnings, c.Name+": "+warning)
			log.Warn("override date", "country", c.Name, "date", h.Date, "warning", warning)
		}
		records = append(records, holidayRecord{
			Date:     day,
			Name:     strings.TrimSpace(h.Name),
			National: true,
			Source:   url,
		})
	}
	writeHolidays(ctx, sheet, index, cr, records)

	log.Info("override applied", "country", c.Name, "written", len(cr.Written), "issues", len(cr.Issues))
	return cr
}
