package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JonMunkholm/holidaycal/internal/calendar"
	"github.com/JonMunkholm/holidaycal/internal/logging"
	"github.com/JonMunkholm/holidaycal/internal/ods"
	"github.com/JonMunkholm/holidaycal/internal/scrape"
)

// PopulateRequest parameterizes a populate run. Zero values fall back to the
// configuration.
type PopulateRequest struct {
	// Year is the calendar year to build.
	Year int `json:"year,omitempty"`
	// OffsetWeeks shifts the window start from 1 January. Nil uses the
	// configured offset; an explicit 0 asks for the solar year.
	OffsetWeeks *int `json:"offset_weeks,omitempty"`
	// Filter is an expression selecting countries; see CompileFilter.
	Filter   string `json:"filter,omitempty"`
	Template string `json:"-"`
	Output   string `json:"-"`

	// OnCountry, if set, is called after each country is processed.
	OnCountry func(done, total int, name string) `json:"-"`
}

// Window returns the calendar window req asks for.
func (s *Service) Window(req PopulateRequest) calendar.Window {
	year := req.Year
	if year == 0 {
		year = s.cfg.Calendar.TargetYear(s.now())
	}
	offset := s.cfg.Calendar.FiscalOffsetWeeks
	if req.OffsetWeeks != nil {
		offset = *req.OffsetWeeks
	}
	return calendar.YearWindow(year, offset)
}

// Populate builds a calendar from the template: a header for the window, row
// colours from the status column and the scraped holidays of every country.
// It waits for a running run to finish, up to the limiter's wait time.
func (s *Service) Populate(ctx context.Context, req PopulateRequest) (*RunReport, error) {
	ctx, report, release, err := s.begin(ctx, KindPopulate, true)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := s.runContext(ctx)
	defer cancel()

	err = s.populate(ctx, req, report)
	s.end(ctx, report, err)
	return report, err
}

// StartPopulate starts a populate run in the background and returns its ID.
// It returns ErrRunInProgress instead of waiting when a run is active. The
// run outlives ctx but keeps its values.
func (s *Service) StartPopulate(ctx context.Context, req PopulateRequest) (uuid.UUID, error) {
	ctx, report, release, err := s.begin(context.WithoutCancel(ctx), KindPopulate, false)
	if err != nil {
		return uuid.Nil, err
	}

	go func() {
		defer release()
		runCtx, cancel := s.runContext(ctx)
		defer cancel()

		err := s.populate(runCtx, req, report)
		s.end(runCtx, report, err)
	}()

	return report.ID, nil
}

func (s *Service) populate(ctx context.Context, req PopulateRequest, report *RunReport) error {
	filter, err := CompileFilter(req.Filter)
	if err != nil {
		return err
	}

	report.Input = req.Template
	if report.Input == "" {
		report.Input = s.cfg.Document.TemplatePath
	}
	report.Output = req.Output
	if report.Output == "" {
		report.Output = s.DefaultOutputPath()
	}
	window := s.Window(req)
	report.WindowStart, report.WindowEnd = window.Start, window.End()

	doc, err := ods.Open(report.Input)
	if err != nil {
		return err
	}
	sheet := doc.Sheet()

	index, err := calendar.BuildHeader(sheet, window.Start, window.Days, s.cfg.Sheet.MetadataWidth())
	if err != nil {
		return fmt.Errorf("load %s: %w", report.Input, err)
	}
	EnsureStyles(doc)

	var selected []Country
	for _, c := range Countries(sheet, s.cfg.Sheet) {
		ok, err := filter.Match(c)
		if err != nil {
			return err
		}
		if ok {
			selected = append(selected, c)
		}
	}

	log := logging.FromContext(ctx)
	log.Info("populating calendar",
		"input", report.Input,
		"window_start", window.Start.String(),
		"window_end", window.End().String(),
		"countries", len(selected),
		"filter", filter.String(),
	)

	for i, c := range selected {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run stopped after %d of %d countries: %w", i, len(selected), err)
		}
		cr, err := s.populateCountry(ctx, sheet, index, window, c)
		report.Countries = append(report.Countries, cr)
		if err != nil {
			return fmt.Errorf("run stopped at %s: %w", c.Name, err)
		}
		if req.OnCountry != nil {
			req.OnCountry(i+1, len(selected), c.Name)
		}
	}

	return doc.Save(report.Output)
}

// populateCountry colours and fills one country row. Only a cancelled ctx is
// returned as an error; everything else is an issue on the country report.
func (s *Service) populateCountry(ctx context.Context, sheet *ods.Sheet, index *calendar.Index, window calendar.Window, c Country) (*CountryReport, error) {
	cr := &CountryReport{Row: c.Row, Name: c.Name, Status: c.Status, URL: c.URL}
	last := index.LastColumn()

	if c.Status == StatusNo {
		if err := sheet.ApplyStyleRange(c.Row, 0, last, StyleUnsupported, nil, true); err != nil {
			cr.issue(ctx, err, "", c.URL)
		}
		return cr, nil
	}

	if c.URL == "" || !hostMatches(c.URL, s.cfg.Scrape.SourceHost) {
		cr.issue(ctx, fmt.Errorf("%s: %w", c.Name, ErrNoSource), "", c.URL)
	} else if err := s.scrapeCountry(ctx, sheet, index, window, cr); err != nil {
		return cr, err
	}

	if c.Status == StatusYes {
		if err := sheet.ApplyStyleRange(c.Row, 0, last, StyleSupported, holidayStyles, false); err != nil {
			cr.issue(ctx, err, "", c.URL)
		}
	}
	return cr, nil
}

func (s *Service) scrapeCountry(ctx context.Context, sheet *ods.Sheet, index *calendar.Index, window calendar.Window, cr *CountryReport) error {
	res, err := s.source.FetchYears(ctx, cr.URL, window.Years())
	if err != nil {
		return err
	}
	cr.Pages = res.Pages
	cr.Discarded = res.Discarded

	for _, f := range res.Failures {
		if errors.Is(f.Err, scrape.ErrNotPublished) {
			cr.Unpublished++
			continue
		}
		cr.issue(ctx, f.Err, "", f.URL)
	}

	log := logging.WithFields(ctx, "country", cr.Name, "url", cr.URL)
	records := make([]holidayRecord, 0, len(res.Holidays))
	for _, h := range res.Holidays {
		if !window.Contains(h.Date) {
			cr.OutOfWindow++
			log.Debug("holiday outside calendar",
				"date", h.Date.String(),
				"name", h.Name,
			)
			continue
		}
		records = append(records, holidayRecord{
			Date:     h.Date,
			Name:     h.Name,
			National: h.National,
			Source:   cr.URL,
		})
	}
	writeHolidays(ctx, sheet, index, cr, records)

	log.Info("country populated",
		"written", len(cr.Written),
		"out_of_window", cr.OutOfWindow,
		"pages", cr.Pages,
		"issues", len(cr.Issues),
	)
	return nil
}
