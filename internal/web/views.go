package web

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/holidaycal/internal/core"
)

const pageStyle = `body{font-family:sans-serif;margin:2rem;color:#222}
table{border-collapse:collapse;margin-top:1rem}
th,td{border:1px solid #ccc;padding:.25rem .5rem;text-align:left;font-size:.9rem}
.failed{color:#b00020}.succeeded{color:#1b5e20}.running{color:#8a6d00}
.national{background:#ffbf00}.regional{background:#ffb6c1}`

// RunReportPage renders a run report: the run header, its error if it
// failed, and one table row per country with its written holidays and issues.
func RunReportPage(report *core.RunReport) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		e := templ.EscapeString

		fmt.Fprintf(&b, "<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\"><title>Run %s</title><style>%s</style></head><body>",
			e(report.ID.String()), pageStyle)
		fmt.Fprintf(&b, "<h1>%s run <span class=\"%s\">%s</span></h1>",
			e(string(report.Kind)), e(string(report.Status)), e(string(report.Status)))

		b.WriteString("<dl>")
		field(&b, "Run", report.ID.String())
		field(&b, "Trigger", report.Trigger)
		field(&b, "Requested by", report.RequestedBy)
		field(&b, "Started", report.StartedAt.Format(time.RFC3339))
		if !report.FinishedAt.IsZero() {
			field(&b, "Finished", report.FinishedAt.Format(time.RFC3339))
		}
		field(&b, "Duration", report.Duration().Round(time.Millisecond).String())
		field(&b, "Input", report.Input)
		field(&b, "Output", report.Output)
		if !report.WindowStart.IsZero() {
			field(&b, "Window", report.WindowStart.String()+" to "+report.WindowEnd.String())
		}
		field(&b, "Holidays written", fmt.Sprint(report.Written()))
		field(&b, "Issues", fmt.Sprint(report.IssueCount()))
		b.WriteString("</dl>")

		if report.Error != nil {
			fmt.Fprintf(&b, "<p class=\"failed\"><strong>%s</strong> (%s). %s</p>",
				e(report.Error.Message), e(report.Error.Code), e(report.Error.Action))
		}
		if len(report.Warnings) > 0 {
			b.WriteString("<h2>Warnings</h2><ul>")
			for _, warning := range report.Warnings {
				fmt.Fprintf(&b, "<li>%s</li>", e(warning))
			}
			b.WriteString("</ul>")
		}

		if len(report.Countries) > 0 {
			b.WriteString("<h2>Countries</h2><table><thead><tr><th>Row</th><th>Country</th><th>Status</th><th>Holidays</th><th>Outside calendar</th><th>Issues</th></tr></thead><tbody>")
			for _, c := range report.Countries {
				countryRow(&b, c)
			}
			b.WriteString("</tbody></table>")
		}

		b.WriteString("</body></html>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func field(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "<dt>%s</dt><dd>%s</dd>", templ.EscapeString(name), templ.EscapeString(value))
}

func countryRow(b *strings.Builder, c *core.CountryReport) {
	e := templ.EscapeString

	name := e(c.Name)
	if c.URL != "" {
		name = fmt.Sprintf("<a href=\"%s\">%s</a>", e(string(templ.URL(c.URL))), name)
	}
	fmt.Fprintf(b, "<tr><td>%d</td><td>%s</td><td>%s</td><td>", c.Row, name, e(string(c.Status)))

	for _, h := range c.Written {
		class := "regional"
		if h.National {
			class = "national"
		}
		fmt.Fprintf(b, "<div class=\"%s\">%s %s</div>", class, e(h.Date.String()), e(h.Name))
	}
	fmt.Fprintf(b, "</td><td>%d</td><td>", c.OutOfWindow)

	for _, is := range c.Issues {
		fmt.Fprintf(b, "<div><strong>%s</strong> %s", e(is.Code), e(is.Message))
		if is.Date != "" {
			fmt.Fprintf(b, " (%s)", e(is.Date))
		}
		b.WriteString("</div>")
	}
	b.WriteString("</td></tr>")
}
