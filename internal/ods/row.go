package ods

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
)

var (
	// ErrColumnOutOfRange is returned when a column is negative, or lies past
	// the row's width and the caller did not ask for the row to grow.
	ErrColumnOutOfRange = errors.New("column out of range")

	// ErrRowOutOfRange is returned for a row index the sheet does not have.
	ErrRowOutOfRange = errors.New("row out of range")

	// ErrCorruptRow is returned when a mutation would change a row's width.
	ErrCorruptRow = errors.New("row width not conserved")
)

// Run is one cell element together with the logical columns it covers:
// [Start, Start+Repeat).
type Run struct {
	Cell   *Cell
	Start  int
	Repeat int
}

// End returns the first column after the run.
func (r Run) End() int {
	return r.Start + r.Repeat
}

// Row is one table:table-row. Its cells are stored as runs; a run of n
// identical columns is a single element carrying number-columns-repeated=n.
type Row struct {
	el *etree.Element
}

// Runs decodes the row into its runs, in column order.
func (r *Row) Runs() []Run {
	var runs []Run
	col := 0
	for _, child := range r.el.ChildElements() {
		if !isCell(child) {
			continue
		}
		n := repeatOf(child)
		runs = append(runs, Run{Cell: &Cell{el: child}, Start: col, Repeat: n})
		col += n
	}
	return runs
}

// Width returns the row's logical column count.
func (r *Row) Width() int {
	w := 0
	for _, child := range r.el.ChildElements() {
		if isCell(child) {
			w += repeatOf(child)
		}
	}
	return w
}

// Values expands the row into one text value per logical column.
func (r *Row) Values() []string {
	var out []string
	for _, run := range r.Runs() {
		text := run.Cell.Text()
		for i := 0; i < run.Repeat; i++ {
			out = append(out, text)
		}
	}
	return out
}

// Locate returns the single-column cell at col.
//
// When col is past the row's width and autoExtend is set, one blank run wide
// enough to reach col is appended. When col falls inside a run of several
// columns, that run is replaced in place by up to three runs (before, the
// target, after), each a copy of the original so content and style of every
// other column are unchanged.
func (r *Row) Locate(col int, autoExtend bool) (*Cell, error) {
	if col < 0 {
		return nil, fmt.Errorf("column %d: %w", col, ErrColumnOutOfRange)
	}

	width := r.Width()
	if col >= width {
		if !autoExtend {
			return nil, fmt.Errorf("column %d of %d: %w", col, width, ErrColumnOutOfRange)
		}
		r.extend(col - width + 1)
		width = col + 1
	}

	for _, run := range r.Runs() {
		if col >= run.End() {
			continue
		}
		if run.Repeat == 1 {
			return run.Cell, nil
		}
		target := r.split(run, col-run.Start)
		if got := r.Width(); got != width {
			return nil, fmt.Errorf("split at column %d changed width %d to %d: %w", col, width, got, ErrCorruptRow)
		}
		return target, nil
	}
	return nil, fmt.Errorf("column %d of %d: %w", col, width, ErrColumnOutOfRange)
}

// TrimTrailingBlank removes blank, unstyled runs from the end of the row and
// returns the new width. LibreOffice pads rows this way up to the sheet's
// column limit; appending after such padding would push new columns far to
// the right.
func (r *Row) TrimTrailingBlank() int {
	runs := r.Runs()
	for i := len(runs) - 1; i >= 0; i-- {
		c := runs[i].Cell
		if c.Text() != "" || c.StyleName() != "" || len(c.el.ChildElements()) > 0 {
			break
		}
		r.el.RemoveChild(c.el)
	}
	return r.Width()
}

// AppendText adds a single-column string cell at the end of the row.
func (r *Row) AppendText(text string) *Cell {
	c := &Cell{el: r.el.CreateElement(tagCell)}
	c.SetText(text)
	return c
}

// extend appends n blank columns as one run.
func (r *Row) extend(n int) {
	r.el.AddChild(setRepeat(etree.NewElement(tagCell), n))
}

// split replaces run with the runs [before][target][after] around offset and
// returns the target.
func (r *Row) split(run Run, offset int) *Cell {
	orig := run.Cell.el
	idx := orig.Index()
	after := run.Repeat - offset - 1

	var parts []*etree.Element
	if offset > 0 {
		parts = append(parts, setRepeat(orig.Copy(), offset))
	}
	target := setRepeat(orig.Copy(), 1)
	parts = append(parts, target)
	if after > 0 {
		parts = append(parts, setRepeat(orig.Copy(), after))
	}

	r.el.RemoveChildAt(idx)
	for i, p := range parts {
		r.el.InsertChildAt(idx+i, p)
	}
	return &Cell{el: target}
}

func isCell(el *etree.Element) bool {
	return el.Space == "table" && (el.Tag == "table-cell" || el.Tag == "covered-table-cell")
}
