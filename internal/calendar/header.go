package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/holidaycal/internal/ods"
)

// HeaderLayout is the time layout of a header label.
const HeaderLayout = "Mon 02/01/06"

var (
	// ErrNoHeader is returned when the sheet has no row 0.
	ErrNoHeader = errors.New("sheet has no header row")

	// ErrNoCalendar is returned when row 0 holds no date labels.
	ErrNoCalendar = errors.New("header row has no date columns")
)

// Index maps days to header columns. It is not modified after it is built.
type Index struct {
	cols  map[Day]int
	first int
	last  int
}

// Lookup returns the column of d.
func (x *Index) Lookup(d Day) (int, bool) {
	col, ok := x.cols[d]
	return col, ok
}

// Len returns the number of days indexed.
func (x *Index) Len() int {
	return len(x.cols)
}

// FirstColumn returns the leftmost date column.
func (x *Index) FirstColumn() int {
	return x.first
}

// LastColumn returns the rightmost date column.
func (x *Index) LastColumn() int {
	return x.last
}

func (x *Index) add(d Day, col int) {
	if _, dup := x.cols[d]; dup {
		return
	}
	if len(x.cols) == 0 || col < x.first {
		x.first = col
	}
	if col > x.last {
		x.last = col
	}
	x.cols[d] = col
}

// HeaderLabel returns the header text for d, e.g. "Thu 01/01/26".
func HeaderLabel(d Day) string {
	return d.Time().Format(HeaderLayout)
}

// ParseHeaderLabel reads the trailing DD/MM/YY token of a header cell.
func ParseHeaderLabel(text string) (Day, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Day{}, false
	}
	t, err := time.Parse("02/01/06", fields[len(fields)-1])
	if err != nil {
		return Day{}, false
	}
	return DayOf(t), true
}

// BuildHeader appends days consecutive date labels to row 0, starting after
// the row's last used column and never before minStart, and returns their
// index. Existing columns are never overwritten. minStart is the width of the
// metadata block, whose header cells may be blank.
func BuildHeader(sheet *ods.Sheet, start Day, days, minStart int) (*Index, error) {
	if days <= 0 {
		return nil, fmt.Errorf("build header for %d days: %w", days, ErrNoCalendar)
	}
	row, err := sheet.Row(0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoHeader, err)
	}

	col := row.TrimTrailingBlank()
	if col < minStart {
		if _, err := row.Locate(minStart-1, true); err != nil {
			return nil, fmt.Errorf("pad header to column %d: %w", minStart, err)
		}
		col = minStart
	}
	x := &Index{cols: make(map[Day]int, days)}
	for i := 0; i < days; i++ {
		d := start.AddDays(i)
		row.AppendText(HeaderLabel(d))
		x.add(d, col+i)
	}
	return x, nil
}

// ReadHeader rebuilds the index from a header row written by BuildHeader.
// Cells that do not end in a DD/MM/YY token are skipped; when a day appears
// twice the leftmost column wins.
func ReadHeader(sheet *ods.Sheet) (*Index, error) {
	row, err := sheet.Row(0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoHeader, err)
	}

	x := &Index{cols: make(map[Day]int)}
	for _, run := range row.Runs() {
		d, ok := ParseHeaderLabel(run.Cell.Text())
		if !ok {
			continue
		}
		x.add(d, run.Start)
	}
	if x.Len() == 0 {
		return nil, ErrNoCalendar
	}
	return x, nil
}
