package scrape

import (
	"strings"
	"testing"

	"github.com/JonMunkholm/holidaycal/internal/calendar"
)

func page(rows ...string) string {
	return `<html><body><table class="country-table wide"><thead><tr><th>Day</th><th>Date</th><th>Name</th><th>Type</th></tr></thead><tbody>` +
		strings.Join(rows, "") +
		`</tbody></table></body></html>`
}

func row(date, name, kind string) string {
	var b strings.Builder
	b.WriteString("<tr><td>Fri</td><td>")
	if date != "" {
		b.WriteString(`<time itemprop="startDate" datetime="` + date + `">Mar 20</time>`)
	}
	b.WriteString("</td><td>")
	if name != "" {
		b.WriteString(`<a class="country-listing" href="/h">` + name + `</a>`)
	}
	b.WriteString("</td><td>" + kind + "</td></tr>")
	return b.String()
}

func TestParse_RegionalHoliday(t *testing.T) {
	got, discarded, err := Parse(strings.NewReader(page(row("2026-03-20", "Local Fair", "Regional Holiday"))), DefaultParserConfig())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if discarded != 0 {
		t.Errorf("discarded = %d, want 0", discarded)
	}
	want := []Holiday{{Date: calendar.Date(2026, 3, 20), Name: "Local Fair", National: false}}
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParse_Robustness(t *testing.T) {
	tests := []struct {
		name          string
		html          string
		want          []Holiday
		wantDiscarded int
	}{
		{
			name: "missing date",
			html: page(row("", "New Year", "National Holiday")),
		},
		{
			name: "missing name",
			html: page(row("2026-01-01", "", "National Holiday")),
		},
		{
			name:          "unparsable date",
			html:          page(row("2026-13-45", "New Year", "National Holiday")),
			wantDiscarded: 1,
		},
		{
			name: "empty type is national",
			html: page(row("2026-01-01", "New Year", "")),
			want: []Holiday{{Date: calendar.Date(2026, 1, 1), Name: "New Year", National: true}},
		},
		{
			name: "other type is national",
			html: page(row("2026-12-25", "Christmas", "Public Holiday")),
			want: []Holiday{{Date: calendar.Date(2026, 12, 25), Name: "Christmas", National: true}},
		},
		{
			name: "local type is regional",
			html: page(row("2026-06-01", "Town Day", "Local holiday")),
			want: []Holiday{{Date: calendar.Date(2026, 6, 1), Name: "Town Day", National: false}},
		},
		{
			name: "bad row does not affect neighbours",
			html: page(
				row("2026-01-01", "New Year", "National"),
				row("not-a-date", "Broken", "National"),
				row("2026-05-01", "  Labour   Day ", "REGIONAL"),
			),
			want: []Holiday{
				{Date: calendar.Date(2026, 1, 1), Name: "New Year", National: true},
				{Date: calendar.Date(2026, 5, 1), Name: "Labour   Day", National: false},
			},
			wantDiscarded: 1,
		},
		{
			name: "other tables ignored",
			html: `<table class="sidebar"><tr><td><time datetime="2026-01-01"></time><a class="country-listing">Ad</a></td></tr></table>` +
				page(row("2026-02-02", "Real", "National")),
			want: []Holiday{{Date: calendar.Date(2026, 2, 2), Name: "Real", National: true}},
		},
		{
			name: "rows after table ignored",
			html: page(row("2026-02-02", "Real", "National")) +
				`<table><tr><td><time datetime="2026-03-03"></time><a class="country-listing">After</a></td></tr></table>`,
			want: []Holiday{{Date: calendar.Date(2026, 2, 2), Name: "Real", National: true}},
		},
		{
			name: "unclosed rows and cells",
			html: `<table class="country-table"><tr><td>Thu<td><time datetime="2026-01-01">x</time><td><a class="country-listing">New Year</a><td>National` +
				`<tr><td>Fri<td><time datetime="2026-04-03">x</time><td><a class="country-listing">Good Friday</a><td>Regional</table>`,
			want: []Holiday{
				{Date: calendar.Date(2026, 1, 1), Name: "New Year", National: true},
				{Date: calendar.Date(2026, 4, 3), Name: "Good Friday", National: false},
			},
		},
		{
			name: "entities and nested markup in name",
			html: page(`<tr><td>Mon</td><td><time datetime="2026-08-31">Aug 31</time></td><td><a class="country-listing" href="/x">Bank <b>Holiday</b> &amp; Fair</a></td><td><span>Regional</span> holiday</td></tr>`),
			want: []Holiday{{Date: calendar.Date(2026, 8, 31), Name: "Bank Holiday & Fair", National: false}},
		},
		{
			name: "date without leading zeros",
			html: page(row("2026-3-20", "Equinox", "National")),
			want: []Holiday{{Date: calendar.Date(2026, 3, 20), Name: "Equinox", National: true}},
		},
		{
			name: "row header cell does not shift the type column",
			html: page(`<tr><th scope="row">12</th><td>Fri</td><td><time datetime="2026-03-20">Mar 20</time></td><td><a class="country-listing" href="/h">Local Fair</a></td><td>Regional Holiday</td></tr>`),
			want: []Holiday{{Date: calendar.Date(2026, 3, 20), Name: "Local Fair", National: false}},
		},
		{
			name: "no table",
			html: `<html><body><p>Nothing here</p></body></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, discarded, err := Parse(strings.NewReader(tt.html), DefaultParserConfig())
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if discarded != tt.wantDiscarded {
				t.Errorf("discarded = %d, want %d", discarded, tt.wantDiscarded)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Parse() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("holiday[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParse_TypeColumnConfigurable(t *testing.T) {
	html := `<table class="country-table"><tr><td>Regional</td><td><time datetime="2026-01-01"></time><a class="country-listing">New Year</a></td><td>National</td></tr></table>`

	cfg := DefaultParserConfig()
	cfg.TypeColumn = 1
	got, _, err := Parse(strings.NewReader(html), cfg)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got) != 1 || got[0].National {
		t.Errorf("Parse() with type column 1 = %+v, want one regional holiday", got)
	}

	cfg.TypeColumn = 3
	got, _, _ = Parse(strings.NewReader(html), cfg)
	if len(got) != 1 || !got[0].National {
		t.Errorf("Parse() with type column 3 = %+v, want one national holiday", got)
	}
}

func TestParser_Tokens(t *testing.T) {
	p := NewParser(ParserConfig{})
	p.StartTag("table", map[string]string{"class": "country-table"})
	p.StartTag("tr", nil)
	p.StartTag("td", nil)
	p.StartTag("time", map[string]string{"datetime": "2026-07-14"})
	p.EndTag("time")
	p.EndTag("td")
	p.StartTag("td", nil)
	p.StartTag("a", map[string]string{"class": "country-listing"})
	p.Text("Bastille ")
	p.Text("Day")
	p.EndTag("a")
	p.EndTag("td")
	p.StartTag("td", nil)
	p.EndTag("td")
	p.StartTag("td", nil)
	p.Text("National Holiday")
	p.EndTag("td")
	p.EndTag("tr")
	p.EndTag("table")

	got := p.Holidays()
	want := Holiday{Date: calendar.Date(2026, 7, 14), Name: "Bastille Day", National: true}
	if len(got) != 1 || got[0] != want {
		t.Errorf("Holidays() = %+v, want [%+v]", got, want)
	}
	if p.state != stateOutside {
		t.Errorf("state = %v, want %v", p.state, stateOutside)
	}
}

func TestIsNational(t *testing.T) {
	tests := map[string]bool{
		"":                  true,
		"National Holiday":  true,
		"Observance":        true,
		"Regional Holiday":  false,
		"REGIONAL":          false,
		"Local holiday":     false,
		"Government, Local": false,
	}
	for in, want := range tests {
		if got := IsNational(in); got != want {
			t.Errorf("IsNational(%q) = %v, want %v", in, got, want)
		}
	}
}
