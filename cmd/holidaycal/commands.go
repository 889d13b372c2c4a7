package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/JonMunkholm/holidaycal/internal/config"
	"github.com/JonMunkholm/holidaycal/internal/core"
	"github.com/JonMunkholm/holidaycal/internal/export"
	"github.com/JonMunkholm/holidaycal/internal/ods"
	"github.com/JonMunkholm/holidaycal/internal/scrape"
	"github.com/JonMunkholm/holidaycal/internal/store"
	"github.com/JonMunkholm/holidaycal/internal/web"
)

// newService wires the fetcher and, when DATABASE_URL is set, the archive.
// The returned store is nil without a database and must be closed otherwise.
func newService(ctx context.Context, cfg *config.Config) (*core.Service, *store.Store, error) {
	fetcher := scrape.NewFetcher(&http.Client{}, scrape.FetchConfig{
		UserAgent:    cfg.Scrape.UserAgent,
		Timeout:      cfg.Scrape.Timeout,
		Delay:        cfg.Scrape.Delay,
		MaxBodyBytes: cfg.Scrape.MaxBodyBytes,
		Parser: scrape.ParserConfig{
			TableClass: cfg.Scrape.TableClass,
			NameClass:  cfg.Scrape.NameClass,
			TypeColumn: cfg.Scrape.TypeColumn,
		},
	})

	var archive core.Archive
	st, err := store.Open(ctx, cfg.Database)
	switch {
	case errors.Is(err, store.ErrDisabled):
		slog.Debug("holiday archive disabled")
	case err != nil:
		return nil, nil, err
	default:
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, nil, err
		}
		archive = st
	}
	return core.NewService(cfg, fetcher, archive), st, nil
}

// parseFlags parses args, turning bad flags into a usageError.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError(err.Error())
	}
	if fs.NArg() > 0 {
		return usageError(fmt.Sprintf("%s: unexpected argument %q", fs.Name(), fs.Arg(0)))
	}
	return nil
}

// flagSet reports whether name was given on the command line.
func flagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func runPopulate(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("populate", flag.ContinueOnError)
	year := fs.Int("year", 0, "calendar year (default: CALENDAR_YEAR, else the current year)")
	offset := fs.Int("offset", 0, "fiscal year offset in weeks from 1 January (default: CALENDAR_FISCAL_OFFSET_WEEKS)")
	filter := fs.String("filter", "", `country filter, e.g. 'Status == "yes" && Name startsWith "S"'`)
	template := fs.String("template", "", "template path (default: DOC_TEMPLATE)")
	output := fs.String("output", "", "output path (default: DOC_OUTPUT_DIR/DOC_OUTPUT_PREFIX<YYYYMMDD>.ods)")
	xlsx := fs.String("xlsx", "", "also export the calendar to this XLSX path")
	asJSON := fs.Bool("json", false, "print the run report as JSON")
	quiet := fs.Bool("quiet", false, "hide the progress bar")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	svc, st, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	req := core.PopulateRequest{
		Year:     *year,
		Filter:   *filter,
		Template: *template,
		Output:   *output,
	}
	if flagSet(fs, "offset") {
		req.OffsetWeeks = offset
	}
	var bar *progressbar.ProgressBar
	if !*quiet {
		req.OnCountry = func(done, total int, name string) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription("populating"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionSetWidth(30),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}
			bar.Describe(name)
			_ = bar.Set(done)
		}
	}

	report, err := svc.Populate(ctx, req)
	if bar != nil {
		_ = bar.Finish()
	}
	if report != nil {
		printReport(os.Stdout, report, *asJSON)
	}
	if err != nil {
		return err
	}

	if *xlsx != "" {
		return exportFile(report.Output, *xlsx)
	}
	return nil
}

func runOverride(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("override", flag.ContinueOnError)
	file := fs.String("file", "", "YAML override file (required)")
	document := fs.String("document", "", "populated calendar to amend (default: today's output)")
	output := fs.String("output", "", "where to save the result (default: the document)")
	asJSON := fs.Bool("json", false, "print the run report as JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *file == "" {
		return usageError("override: -file is required")
	}

	overrides, err := core.LoadOverrides(*file)
	if err != nil {
		return err
	}

	svc, st, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	report, err := svc.ApplyOverrides(ctx, core.OverrideRequest{
		Document:  *document,
		Output:    *output,
		Overrides: overrides,
	})
	if report != nil {
		printReport(os.Stdout, report, *asJSON)
	}
	return err
}

func runURLs(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("urls", flag.ContinueOnError)
	document := fs.String("document", "", "spreadsheet to update (default: DOC_TEMPLATE)")
	output := fs.String("output", "", "where to save the result (default: the document)")
	year := fs.Int("year", 0, "year appended to every URL (default: the target year)")
	asJSON := fs.Bool("json", false, "print the run report as JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	svc := core.NewService(cfg, nil, nil)
	report, err := svc.RefreshURLs(ctx, core.URLRequest{
		Document: *document,
		Output:   *output,
		Year:     *year,
	})
	if report != nil {
		printReport(os.Stdout, report, *asJSON)
	}
	return err
}

func runExport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	input := fs.String("input", "", "populated calendar (default: today's output)")
	output := fs.String("output", "", "XLSX path (default: the input with an .xlsx extension)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	in := *input
	if in == "" {
		in = core.NewService(cfg, nil, nil).DefaultOutputPath()
	}
	out := *output
	if out == "" {
		out = xlsxPath(in)
	}
	return exportFile(in, out)
}

func exportFile(input, output string) error {
	doc, err := ods.Open(input)
	if err != nil {
		return err
	}
	sum, err := export.WriteXLSX(doc, output)
	if err != nil {
		return err
	}
	slog.Info("calendar exported", "input", input, "output", output, "rows", sum.Rows, "cells", sum.Cells, "styles", sum.Styles)
	fmt.Printf("exported %s to %s (%d rows, %d cells)\n", input, output, sum.Rows, sum.Cells)
	return nil
}

// xlsxPath swaps the extension of path for .xlsx.
func xlsxPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".xlsx"
}

func runServe(ctx context.Context, cfg *config.Config) error {
	svc, st, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	var archive web.HolidayArchive
	if st != nil {
		defer st.Close()
		archive = st
	}

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"archive", archive != nil,
		"refresh_interval", cfg.Schedule.RefreshInterval.String(),
		"api_key_required", cfg.Security.RequireAPIKey,
	)

	server := web.NewServer(svc, archive, cfg)

	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()
	go svc.StartRefreshScheduler(jobCtx, cfg.Schedule.RefreshInterval)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	cancelJobs()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	limiter := svc.Limiter()
	if status := limiter.Status(); status.Busy {
		slog.Info("waiting for run to complete", "run_id", status.ActiveID)
		if err := limiter.WaitForDrain(shutdownCtx); err != nil {
			slog.Warn("run did not complete in time", "error", err)
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// printReport writes report as JSON or as a short text summary with one
// line per issue.
func printReport(w io.Writer, report *core.RunReport, asJSON bool) {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
		return
	}

	fmt.Fprintf(w, "%s %s in %s: %d countries, %d holidays written, %d issues\n",
		report.Kind, report.Status, report.Duration().Round(time.Millisecond),
		len(report.Countries), report.Written(), report.IssueCount())
	if report.Output != "" && report.Status == core.RunSucceeded {
		fmt.Fprintf(w, "saved %s\n", report.Output)
	}
	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	for _, c := range report.Countries {
		for _, is := range c.Issues {
			fmt.Fprintf(w, "  %s  %s: %s", is.Code, c.Name, is.Message)
			if is.Date != "" {
				fmt.Fprintf(w, " (%s)", is.Date)
			}
			fmt.Fprintln(w)
		}
		if c.Unpublished > 0 {
			fmt.Fprintf(w, "  note  %s: %d year(s) not yet published\n", c.Name, c.Unpublished)
		}
	}
}
