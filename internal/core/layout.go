package core

import (
	"net/url"
	"strings"

	"github.com/JonMunkholm/holidaycal/internal/config"
	"github.com/JonMunkholm/holidaycal/internal/ods"
)

// Status is a country's support flag from the status column.
type Status string

const (
	StatusYes   Status = "yes"
	StatusNo    Status = "no"
	StatusBlank Status = ""
)

// ParseStatus reads a status cell. Anything other than yes/no is blank.
func ParseStatus(text string) Status {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "yes":
		return StatusYes
	case "no":
		return StatusNo
	default:
		return StatusBlank
	}
}

// Country is one country row of the sheet.
type Country struct {
	Row    int    `json:"row"`
	Name   string `json:"name"`
	Status Status `json:"status"`
	// URL is the listing page: the country name's hyperlink, else the
	// source URL column.
	URL string `json:"url,omitempty"`
}

// Countries lists the country rows of sheet using the configured columns.
func Countries(sheet *ods.Sheet, layout config.SheetConfig) []Country {
	rows := sheet.CountryRows(layout.CountryColumn)
	out := make([]Country, 0, len(rows))
	for _, r := range rows {
		c := Country{Row: r.Row, Name: r.Name, URL: strings.TrimSpace(r.Link)}
		if text, err := sheet.TextAt(r.Row, layout.StatusColumn); err == nil {
			c.Status = ParseStatus(text)
		}
		if c.URL == "" {
			if text, err := sheet.TextAt(r.Row, layout.SourceURLColumn); err == nil {
				c.URL = strings.TrimSpace(text)
			}
		}
		out = append(out, c)
	}
	return out
}

// FindCountry returns the first row whose name matches name,
// case-insensitively.
func FindCountry(countries []Country, name string) (Country, bool) {
	want := strings.TrimSpace(name)
	for _, c := range countries {
		if strings.EqualFold(c.Name, want) {
			return c, true
		}
	}
	return Country{}, false
}

// hostMatches reports whether rawURL is on host or one of its subdomains.
func hostMatches(rawURL, host string) bool {
	if host == "" {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	h := strings.ToLower(u.Hostname())
	host = strings.ToLower(host)
	return h == host || strings.HasSuffix(h, "."+host)
}
