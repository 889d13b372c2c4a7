package core

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/JonMunkholm/holidaycal/internal/calendar"
	"github.com/JonMunkholm/holidaycal/internal/ods"
)

// nameSeparator joins the names of holidays falling on the same day.
const nameSeparator = " / "

// holidayRecord is a holiday about to be written, scraped or hand-entered.
type holidayRecord struct {
	Date     calendar.Day
	Name     string
	National bool
	Source   string
}

// pendingCell collects the holidays of one column before it is written.
type pendingCell struct {
	date     calendar.Day
	col      int
	names    []string
	national bool
	source   string
}

// writeHolidays writes records into the country row of cr. Holidays sharing
// a day share a cell: their names are joined and a national holiday makes the
// cell national. A date with no header column is recorded as an issue and
// skipped.
func writeHolidays(ctx context.Context, sheet *ods.Sheet, index *calendar.Index, cr *CountryReport, records []holidayRecord) {
	var cells []*pendingCell
	byCol := make(map[int]*pendingCell)

	for _, rec := range records {
		col, ok := index.Lookup(rec.Date)
		if !ok {
			cr.issue(ctx, fmt.Errorf("%s %q: %w", rec.Date, rec.Name, ErrDateNotInCalendar), rec.Date.String(), rec.Source)
			continue
		}
		pc, seen := byCol[col]
		if !seen {
			pc = &pendingCell{date: rec.Date, col: col, source: rec.Source}
			byCol[col] = pc
			cells = append(cells, pc)
		}
		if !slices.Contains(pc.names, rec.Name) {
			pc.names = append(pc.names, rec.Name)
		}
		pc.national = pc.national || rec.National
	}

	for _, pc := range cells {
		name := strings.Join(pc.names, nameSeparator)
		if err := sheet.SetCellText(cr.Row, pc.col, name, holidayStyle(pc.national)); err != nil {
			cr.issue(ctx, err, pc.date.String(), pc.source)
			continue
		}
		cr.Written = append(cr.Written, WrittenHoliday{
			Date:     pc.date,
			Name:     name,
			National: pc.national,
			Column:   pc.col,
			Source:   pc.source,
		})
	}
}
