package ods

import (
	"fmt"
	"slices"
	"strings"

	"github.com/beevik/etree"
)

// Sheet is the document's table. Row 0 is the calendar header; every other
// row describes one country.
type Sheet struct {
	table *etree.Element
}

// Name returns the table's table:name attribute.
func (s *Sheet) Name() string {
	return s.table.SelectAttrValue(attrTableName, "")
}

// Rows returns the table's rows in order.
func (s *Sheet) Rows() []*Row {
	els := s.table.SelectElements(tagRow)
	rows := make([]*Row, len(els))
	for i, el := range els {
		rows[i] = &Row{el: el}
	}
	return rows
}

// RowCount returns the number of row elements.
func (s *Sheet) RowCount() int {
	return len(s.table.SelectElements(tagRow))
}

// Row returns row i.
func (s *Sheet) Row(i int) (*Row, error) {
	rows := s.table.SelectElements(tagRow)
	if i < 0 || i >= len(rows) {
		return nil, fmt.Errorf("row %d of %d: %w", i, len(rows), ErrRowOutOfRange)
	}
	return &Row{el: rows[i]}, nil
}

// Cell locates the single-column cell at (row, col); see [Row.Locate].
func (s *Sheet) Cell(row, col int, autoExtend bool) (*Cell, error) {
	r, err := s.Row(row)
	if err != nil {
		return nil, err
	}
	return r.Locate(col, autoExtend)
}

// SetCellText replaces the text of the cell at (row, col), growing the row if
// needed. A non-empty style is set on the cell as well.
func (s *Sheet) SetCellText(row, col int, text, style string) error {
	c, err := s.Cell(row, col, true)
	if err != nil {
		return err
	}
	c.SetText(text)
	if style != "" {
		c.SetStyleName(style)
	}
	return nil
}

// ApplyStyleRange sets style on every column of row in [start, end]. Columns
// already carrying one of the exclude styles are left alone unless force is
// set.
func (s *Sheet) ApplyStyleRange(row, start, end int, style string, exclude []string, force bool) error {
	r, err := s.Row(row)
	if err != nil {
		return err
	}
	for col := start; col <= end; col++ {
		c, err := r.Locate(col, true)
		if err != nil {
			return err
		}
		if !force && slices.Contains(exclude, c.StyleName()) {
			continue
		}
		c.SetStyleName(style)
	}
	return nil
}

// CountryRow is a row whose country column holds a name.
type CountryRow struct {
	Row  int
	Name string
	// Link is the hyperlink target wrapped around the name, if any.
	Link string
}

// CountryRows lists rows 1..N whose column col has text. When the name is
// wrapped in a hyperlink, the link text is the name and its target is kept.
func (s *Sheet) CountryRows(col int) []CountryRow {
	var out []CountryRow
	for i, r := range s.Rows() {
		if i == 0 {
			continue
		}
		run, ok := runAt(r, col)
		if !ok {
			continue
		}
		name := strings.TrimSpace(run.Cell.Text())
		var link string
		if text, href, ok := run.Cell.Link(); ok {
			if t := strings.TrimSpace(text); t != "" {
				name = t
			}
			link = href
		}
		if name == "" {
			continue
		}
		out = append(out, CountryRow{Row: i, Name: name, Link: link})
	}
	return out
}

// TextAt returns the text of column col in row without splitting runs.
func (s *Sheet) TextAt(row, col int) (string, error) {
	r, err := s.Row(row)
	if err != nil {
		return "", err
	}
	run, ok := runAt(r, col)
	if !ok {
		return "", fmt.Errorf("column %d: %w", col, ErrColumnOutOfRange)
	}
	return run.Cell.Text(), nil
}

func runAt(r *Row, col int) (Run, bool) {
	for _, run := range r.Runs() {
		if col >= run.Start && col < run.End() {
			return run, true
		}
	}
	return Run{}, false
}
