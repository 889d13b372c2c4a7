package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/holidaycal/internal/logging"
	"github.com/JonMunkholm/holidaycal/internal/ods"
)

// DefaultSlugFixes maps sheet country names to the listing site's slugs where
// slugifying the name gives the wrong page.
var DefaultSlugFixes = map[string]string{
	"Democratic Republic of the Congo": "congo-democratic-republic",
	"Eswatini":                         "swaziland",
	"North Macedonia":                  "macedonia",
	"Republic of the Congo":            "congo",
	"United Arab Emirates":             "uae",
	"United States of America":         "usa",
	"Democratic Republic of Korea":     "north-korea",
	"Republic of Korea":                "south-korea",
	"Macao":                            "macau",
	"Bagladesh":                        "bangladesh",
	"Brunei Darussalam":                "brunei",
	"Laos":                             "laos",
	"Timor-Leste":                      "east-timor",
	"Viet Nam":                         "vietnam",
	"Marshal Islands":                  "marshall-islands",
	"Micronesia":                       "micronesia",
}

// DefaultSkip lists countries the listing site has no page for.
var DefaultSkip = []string{"Saint Helena", "Nauru", "Niue", "Palau"}

var slugReplacer = strings.NewReplacer("&", "and", " ", "-", "'", "", "’", "")

// Slugify turns a country name into a listing site path segment.
func Slugify(name string) string {
	return slugReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
}

// URLRequest parameterizes a URL refresh.
type URLRequest struct {
	// Document is rewritten in place unless Output is set. Empty means the
	// template.
	Document string
	Output   string
	// Year is appended to every URL; 0 means the configured target year.
	Year int
	// Fixes and Skip default to DefaultSlugFixes and DefaultSkip when nil.
	Fixes map[string]string
	Skip  []string
}

// RefreshURLs writes <base>/<slug>/<year> into the source URL column of every
// country row.
func (s *Service) RefreshURLs(ctx context.Context, req URLRequest) (*RunReport, error) {
	ctx, report, release, err := s.begin(ctx, KindURLs, true)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.refreshURLs(ctx, req, report)
	s.end(ctx, report, err)
	return report, err
}

func (s *Service) refreshURLs(ctx context.Context, req URLRequest, report *RunReport) error {
	report.Input = req.Document
	if report.Input == "" {
		report.Input = s.cfg.Document.TemplatePath
	}
	report.Output = req.Output
	if report.Output == "" {
		report.Output = report.Input
	}
	fixes := req.Fixes
	if fixes == nil {
		fixes = DefaultSlugFixes
	}
	skip := req.Skip
	if skip == nil {
		skip = DefaultSkip
	}
	year := req.Year
	if year == 0 {
		year = s.cfg.Calendar.TargetYear(s.now())
	}
	base := strings.TrimRight(s.cfg.Scrape.BaseURL, "/")

	doc, err := ods.Open(report.Input)
	if err != nil {
		return err
	}
	sheet := doc.Sheet()
	log := logging.FromContext(ctx)

	for _, c := range Countries(sheet, s.cfg.Sheet) {
		if skipped(skip, c.Name) {
			log.Debug("url refresh skipped", "country", c.Name)
			continue
		}
		slug, ok := fixes[c.Name]
		if !ok {
			slug = Slugify(c.Name)
		}
		u := base + "/" + slug + "/" + strconv.Itoa(year)

		cr := &CountryReport{Row: c.Row, Name: c.Name, Status: c.Status, URL: u}
		if err := sheet.SetCellText(c.Row, s.cfg.Sheet.SourceURLColumn, u, ""); err != nil {
			cr.issue(ctx, fmt.Errorf("write url: %w", err), "", u)
		}
		report.Countries = append(report.Countries, cr)
	}

	log.Info("urls refreshed", "countries", len(report.Countries), "year", year)
	return doc.Save(report.Output)
}

func skipped(skip []string, name string) bool {
	for _, s := range skip {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}
