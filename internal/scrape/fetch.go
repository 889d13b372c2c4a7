package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/JonMunkholm/holidaycal/internal/logging"
)

// DefaultUserAgent is sent with every request; the listing site serves an
// error page to clients without a browser identity.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// ErrNotPublished is returned for a 404 on a year after the current one: the
// site has not posted that year yet.
var ErrNotPublished = errors.New("holidays not yet published")

// StatusError is a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// FetchConfig controls how pages are requested.
type FetchConfig struct {
	UserAgent    string
	Timeout      time.Duration
	Delay        time.Duration
	MaxBodyBytes int64
	Parser       ParserConfig
}

// Failure is one URL that yielded no holidays because it could not be fetched
// or read.
type Failure struct {
	URL  string
	Year int
	Err  error
}

// Result is everything fetched for one country.
type Result struct {
	Holidays []Holiday
	Failures []Failure
	// Pages is the number of pages fetched and parsed.
	Pages int
	// Discarded counts table rows dropped for an unparsable date.
	Discarded int
}

// Fetcher requests listing pages one at a time, waiting Delay between
// requests.
type Fetcher struct {
	client *http.Client
	cfg    FetchConfig
	now    func() time.Time
	last   time.Time
}

// NewFetcher returns a fetcher. A nil client uses a fresh http.Client; zero
// config values take defaults.
func NewFetcher(client *http.Client, cfg FetchConfig) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 10 << 20
	}
	return &Fetcher{client: client, cfg: cfg, now: time.Now}
}

var yearSuffix = regexp.MustCompile(`/\d{4}/?$`)

// StripYear removes a trailing /YYYY path segment from a URL.
func StripYear(u string) string {
	return yearSuffix.ReplaceAllString(strings.TrimSpace(u), "")
}

// YearURLs returns one URL per year, base with its year segment replaced,
// without duplicates.
func YearURLs(base string, years []int) []YearURL {
	root := strings.TrimRight(StripYear(base), "/")
	seen := make(map[string]bool)
	var out []YearURL
	for _, y := range years {
		u := root + "/" + strconv.Itoa(y)
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, YearURL{URL: u, Year: y})
	}
	return out
}

// YearURL is a page URL for one year.
type YearURL struct {
	URL  string
	Year int
}

// FetchYears fetches the page for each year and returns the holidays of all
// pages combined. A failed page never fails the batch; it is recorded in
// Result.Failures and contributes no holidays. Only a cancelled ctx is
// returned as an error.
func (f *Fetcher) FetchYears(ctx context.Context, base string, years []int) (Result, error) {
	log := logging.FromContext(ctx)
	var res Result

	for _, yu := range YearURLs(base, years) {
		if err := f.wait(ctx); err != nil {
			return res, err
		}

		holidays, discarded, err := f.fetch(ctx, yu)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Failures = append(res.Failures, Failure{URL: yu.URL, Year: yu.Year, Err: err})
			if errors.Is(err, ErrNotPublished) {
				log.Info("holidays not yet published", slog.String("url", yu.URL), slog.Int("year", yu.Year))
			} else {
				log.Warn("fetch failed", slog.String("url", yu.URL), slog.Any("error", err))
			}
			continue
		}

		res.Pages++
		res.Discarded += discarded
		res.Holidays = append(res.Holidays, holidays...)
		log.Debug("page parsed",
			slog.String("url", yu.URL),
			slog.Int("holidays", len(holidays)),
			slog.Int("discarded", discarded),
		)
	}
	return res, nil
}

func (f *Fetcher) fetch(ctx context.Context, yu YearURL) ([]Holiday, int, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, yu.URL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	f.last = f.now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && yu.Year > f.now().Year() {
		return nil, 0, fmt.Errorf("%s: %w", yu.URL, ErrNotPublished)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, 0, &StatusError{URL: yu.URL, StatusCode: resp.StatusCode}
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", yu.URL, err)
	}
	holidays, discarded, err := Parse(body, f.cfg.Parser)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", yu.URL, err)
	}
	return holidays, discarded, nil
}

// wait sleeps until Delay has passed since the previous request.
func (f *Fetcher) wait(ctx context.Context) error {
	if f.cfg.Delay <= 0 || f.last.IsZero() {
		return nil
	}
	d := f.cfg.Delay - f.now().Sub(f.last)
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
