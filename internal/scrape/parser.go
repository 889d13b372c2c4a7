// Package scrape extracts public holidays from country listing pages.
//
// A page lists holidays in one table. Each row carries the date in a
// <time datetime="YYYY-MM-DD"> element, the holiday name in a listing link,
// and the holiday type as text in a fixed column. [Parser] is a streaming
// state machine over those few markers; everything else in the page is
// ignored, and rows missing a marker are dropped.
package scrape

import (
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/JonMunkholm/holidaycal/internal/calendar"
)

// Holiday is one dated holiday read from a page.
type Holiday struct {
	Date     calendar.Day
	Name     string
	National bool
}

// ParserConfig names the markers the parser looks for.
type ParserConfig struct {
	// TableClass is a class of the holiday table element.
	TableClass string
	// NameClass is a class of the link holding the holiday name.
	NameClass string
	// TypeColumn is the 1-based cell ordinal holding the holiday type.
	TypeColumn int
}

// DefaultParserConfig matches the current layout of the listing pages.
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		TableClass: "country-table",
		NameClass:  "country-listing",
		TypeColumn: 4,
	}
}

type state int

const (
	stateOutside state = iota
	stateInTable
	stateInRow
	stateInCell
	stateRecordingName
	stateRecordingType
)

func (s state) String() string {
	switch s {
	case stateOutside:
		return "outside"
	case stateInTable:
		return "in-table"
	case stateInRow:
		return "in-row"
	case stateInCell:
		return "in-cell"
	case stateRecordingName:
		return "recording-name"
	case stateRecordingType:
		return "recording-type"
	default:
		return "unknown"
	}
}

// Parser accumulates holidays from a stream of start tags, end tags and text.
// Drive it with [Parse] or feed it tokens directly.
type Parser struct {
	cfg   ParserConfig
	state state
	// resume is the state to return to when a name link closes; a link can
	// open inside a cell that is also recording the type.
	resume state

	column   int
	date     string
	name     strings.Builder
	typeText strings.Builder
	kind     string

	holidays  []Holiday
	discarded int
}

// NewParser returns a parser for cfg. A TypeColumn below 1 falls back to the
// default.
func NewParser(cfg ParserConfig) *Parser {
	def := DefaultParserConfig()
	if cfg.TableClass == "" {
		cfg.TableClass = def.TableClass
	}
	if cfg.NameClass == "" {
		cfg.NameClass = def.NameClass
	}
	if cfg.TypeColumn < 1 {
		cfg.TypeColumn = def.TypeColumn
	}
	return &Parser{cfg: cfg}
}

// StartTag handles an opening element. attrs holds its attributes.
func (p *Parser) StartTag(tag string, attrs map[string]string) {
	switch p.state {
	case stateOutside:
		if tag == "table" && hasClass(attrs["class"], p.cfg.TableClass) {
			p.state = stateInTable
		}

	case stateInTable:
		if tag == "tr" {
			p.resetRow()
			p.state = stateInRow
		}

	case stateInRow, stateInCell, stateRecordingType:
		switch tag {
		case "tr":
			// An unclosed row: finish it before starting the next.
			p.endRow()
			p.resetRow()
			p.state = stateInRow
		case "td":
			// Only data cells count; a row header does not shift the columns.
			p.column++
			if p.column == p.cfg.TypeColumn {
				p.typeText.Reset()
				p.state = stateRecordingType
			} else {
				p.state = stateInCell
			}
		case "time":
			if v, ok := attrs["datetime"]; ok {
				p.date = v
			}
		case "a":
			if hasClass(attrs["class"], p.cfg.NameClass) {
				p.name.Reset()
				p.resume = p.state
				p.state = stateRecordingName
			}
		}

	case stateRecordingName:
		if tag == "time" {
			if v, ok := attrs["datetime"]; ok {
				p.date = v
			}
		}
	}
}

// EndTag handles a closing element.
func (p *Parser) EndTag(tag string) {
	switch tag {
	case "table":
		if p.state != stateOutside && p.state != stateInTable {
			p.endRow()
			p.resetRow()
		}
		p.state = stateOutside
	case "tr":
		if p.state == stateOutside || p.state == stateInTable {
			return
		}
		p.endRow()
		p.resetRow()
		p.state = stateInTable
	case "td":
		switch p.state {
		case stateRecordingType:
			p.kind = strings.TrimSpace(p.typeText.String())
			p.state = stateInRow
		case stateInCell:
			p.state = stateInRow
		case stateRecordingName:
			// The link was never closed; close it with its cell.
			if p.resume == stateRecordingType {
				p.kind = strings.TrimSpace(p.typeText.String())
			}
			p.state = stateInRow
		}
	case "a":
		if p.state == stateRecordingName {
			p.state = p.resume
		}
	}
}

// Text handles character data.
func (p *Parser) Text(s string) {
	switch p.state {
	case stateRecordingName:
		p.name.WriteString(s)
		if p.resume == stateRecordingType {
			p.typeText.WriteString(s)
		}
	case stateRecordingType:
		p.typeText.WriteString(s)
	}
}

// Holidays returns the holidays emitted so far, in page order.
func (p *Parser) Holidays() []Holiday {
	return p.holidays
}

// Discarded returns how many rows had a date and a name but a date that did
// not parse.
func (p *Parser) Discarded() int {
	return p.discarded
}

func (p *Parser) resetRow() {
	p.column = 0
	p.date = ""
	p.name.Reset()
	p.typeText.Reset()
	p.kind = ""
	p.resume = stateInRow
}

func (p *Parser) endRow() {
	if p.state == stateRecordingType {
		p.kind = strings.TrimSpace(p.typeText.String())
	}
	name := strings.TrimSpace(p.name.String())
	if p.date == "" || name == "" {
		return
	}
	d, err := calendar.ParseISO(strings.TrimSpace(p.date))
	if err != nil {
		p.discarded++
		return
	}
	p.holidays = append(p.holidays, Holiday{Date: d, Name: name, National: IsNational(p.kind)})
}

// IsNational reports whether a holiday type denotes a nationwide holiday:
// anything not mentioning "regional" or "local".
func IsNational(kind string) bool {
	k := strings.ToLower(kind)
	return !strings.Contains(k, "regional") && !strings.Contains(k, "local")
}

func hasClass(attr, class string) bool {
	return slices.Contains(strings.Fields(attr), class)
}

// Parse tokenizes r and returns the holidays found and the number of rows
// discarded for an unparsable date. Only read errors are returned; malformed
// markup is tolerated.
func Parse(r io.Reader, cfg ParserConfig) ([]Holiday, int, error) {
	p := NewParser(cfg)
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return p.Holidays(), p.Discarded(), err
			}
			if p.state != stateOutside && p.state != stateInTable {
				p.endRow()
			}
			return p.Holidays(), p.Discarded(), nil

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			var attrs map[string]string
			if hasAttr && wantsAttrs(tag) {
				attrs = make(map[string]string)
				for {
					key, val, more := z.TagAttr()
					attrs[string(key)] = string(val)
					if !more {
						break
					}
				}
			}
			p.StartTag(tag, attrs)

		case html.EndTagToken:
			name, _ := z.TagName()
			p.EndTag(string(name))

		case html.TextToken:
			p.Text(string(z.Text()))
		}
	}
}

func wantsAttrs(tag string) bool {
	return tag == "table" || tag == "time" || tag == "a"
}
