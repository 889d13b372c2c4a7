package ods

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Cell is one table:table-cell (or covered cell) element. A Cell returned by
// [Row.Locate] always spans exactly one column; cells reached through
// [Row.Runs] may span several.
type Cell struct {
	el *etree.Element
}

// Repeat returns how many consecutive columns this element occupies.
func (c *Cell) Repeat() int {
	return repeatOf(c.el)
}

// Covered reports whether the cell is hidden under a merged neighbour.
func (c *Cell) Covered() bool {
	return c.el.Tag == "covered-table-cell"
}

// Text returns the cell's paragraphs joined by newlines.
func (c *Cell) Text() string {
	var parts []string
	for _, p := range c.el.SelectElements(tagParagraph) {
		parts = append(parts, innerText(p))
	}
	return strings.Join(parts, "\n")
}

// StyleName returns the cell's table:style-name, or "" when unstyled.
func (c *Cell) StyleName() string {
	return c.el.SelectAttrValue(attrStyleName, "")
}

// SetStyleName references a named style from the cell.
func (c *Cell) SetStyleName(name string) {
	c.el.CreateAttr(attrStyleName, name)
}

// ValueType returns the cell's office:value-type.
func (c *Cell) ValueType() string {
	return c.el.SelectAttrValue(attrValueType, "")
}

// Link returns the text and target of the first hyperlink in the cell's
// first paragraph.
func (c *Cell) Link() (text, href string, ok bool) {
	p := c.el.SelectElement(tagParagraph)
	if p == nil {
		return "", "", false
	}
	a := p.FindElement(".//" + tagLink)
	if a == nil {
		return "", "", false
	}
	return innerText(a), a.SelectAttrValue(attrHref, ""), true
}

// SetText replaces the cell's paragraphs. An empty text clears the content
// and leaves the value type alone.
func (c *Cell) SetText(text string) {
	for _, p := range c.el.SelectElements(tagParagraph) {
		c.el.RemoveChild(p)
	}
	if text == "" {
		return
	}
	p := c.el.CreateElement(tagParagraph)
	p.SetText(text)
	c.el.CreateAttr(attrValueType, valueTypeString)
	if c.el.SelectAttr(attrCalcValueType) != nil {
		c.el.CreateAttr(attrCalcValueType, valueTypeString)
	}
}

func repeatOf(el *etree.Element) int {
	v := el.SelectAttrValue(attrRepeat, "")
	if v == "" {
		return 1
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func setRepeat(el *etree.Element, n int) *etree.Element {
	if n > 1 {
		el.CreateAttr(attrRepeat, strconv.Itoa(n))
	} else {
		el.RemoveAttr(attrRepeat)
	}
	return el
}

// innerText flattens the character data below el, expanding the ODF
// whitespace elements.
func innerText(el *etree.Element) string {
	var b strings.Builder
	writeText(&b, el)
	return b.String()
}

func writeText(b *strings.Builder, el *etree.Element) {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			b.WriteString(t.Data)
		case *etree.Element:
			switch t.FullTag() {
			case tagSpace:
				n, err := strconv.Atoi(t.SelectAttrValue(attrSpaceCount, "1"))
				if err != nil || n < 1 {
					n = 1
				}
				b.WriteString(strings.Repeat(" ", n))
			case tagTab:
				b.WriteByte('\t')
			case tagLineBreak:
				b.WriteByte('\n')
			default:
				writeText(b, t)
			}
		}
	}
}
