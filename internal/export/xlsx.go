// Package export writes a populated calendar as an XLSX workbook for readers
// without an OpenDocument spreadsheet application.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/holidaycal/internal/ods"
)

// Summary counts what WriteXLSX wrote.
type Summary struct {
	Rows   int
	Cells  int
	Styles int
}

// WriteXLSX writes the sheet of doc to path. Every column with text or a
// style becomes a cell; registered styles become solid fills with their font
// size. Text under a merged cell is hidden in the sheet and is not exported.
func WriteXLSX(doc *ods.Document, path string) (Summary, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := doc.Sheet()
	name := sheet.Name()
	if name == "" {
		name = "Sheet1"
	}
	if name != "Sheet1" {
		if err := f.SetSheetName("Sheet1", name); err != nil {
			return Summary{}, fmt.Errorf("export %s: %w", path, err)
		}
	}

	styles, err := registerStyles(f, doc.Styles())
	if err != nil {
		return Summary{}, fmt.Errorf("export %s: %w", path, err)
	}
	sum := Summary{Styles: len(styles)}

	for i, row := range sheet.Rows() {
		for _, run := range row.Runs() {
			text := run.Cell.Text()
			styleID, styled := styles[run.Cell.StyleName()]
			if text == "" && !styled {
				continue
			}
			if styled {
				first, _ := excelize.CoordinatesToCellName(run.Start+1, i+1)
				last, _ := excelize.CoordinatesToCellName(run.End(), i+1)
				if err := f.SetCellStyle(name, first, last, styleID); err != nil {
					return sum, fmt.Errorf("export %s: %w", path, err)
				}
			}
			if text != "" && !run.Cell.Covered() {
				value := cellValue(run.Cell, text)
				for col := run.Start; col < run.End(); col++ {
					addr, _ := excelize.CoordinatesToCellName(col+1, i+1)
					if err := f.SetCellValue(name, addr, value); err != nil {
						return sum, fmt.Errorf("export %s: %w", path, err)
					}
				}
			}
			sum.Cells += run.Repeat
		}
		sum.Rows++
	}

	if err := f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return sum, fmt.Errorf("export %s: %w", path, err)
	}

	if err := f.SaveAs(path); err != nil {
		return sum, fmt.Errorf("save %s: %w", path, err)
	}
	return sum, nil
}

// cellValue keeps float cells numeric in the workbook.
func cellValue(c *ods.Cell, text string) any {
	if c.ValueType() != "float" {
		return text
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return text
	}
	return v
}

// registerStyles creates one workbook style per cell style with a background.
func registerStyles(f *excelize.File, defs []ods.StyleDef) (map[string]int, error) {
	out := make(map[string]int, len(defs))
	for _, def := range defs {
		if def.Background == "" || def.Background == "transparent" {
			continue
		}
		style := &excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{def.Background}},
		}
		if size, ok := points(def.FontSize); ok {
			style.Font = &excelize.Font{Size: size}
		}
		id, err := f.NewStyle(style)
		if err != nil {
			return nil, fmt.Errorf("style %s: %w", def.Name, err)
		}
		out[def.Name] = id
	}
	return out, nil
}

// points parses a font size such as "6pt".
func points(size string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(size), "pt"), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
