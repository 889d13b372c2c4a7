package ods

import (
	"strings"

	"github.com/beevik/etree"
)

// StyleDef is an automatic table-cell style: a background colour and an
// optional font size ("6pt").
type StyleDef struct {
	Name       string
	Background string
	FontSize   string
}

// Styles lists the table-cell styles in office:automatic-styles.
func (d *Document) Styles() []StyleDef {
	auto := d.automaticStyles(false)
	if auto == nil {
		return nil
	}
	var out []StyleDef
	for _, el := range auto.SelectElements(tagStyle) {
		if el.SelectAttrValue(attrStyleFamily, "") != familyTableCell {
			continue
		}
		out = append(out, styleDefOf(el))
	}
	return out
}

// FindStyle returns the automatic style called name.
func (d *Document) FindStyle(name string) (StyleDef, bool) {
	el := d.findStyle(name)
	if el == nil {
		return StyleDef{}, false
	}
	return styleDefOf(el), true
}

// EnsureStyle adds def to office:automatic-styles unless a style of that name
// is already present, and returns the name. An existing style is never
// redefined, so running twice over the same document leaves one definition.
func (d *Document) EnsureStyle(def StyleDef) string {
	if d.findStyle(def.Name) != nil {
		return def.Name
	}

	d.declareNamespaces("style", "fo")
	auto := d.automaticStyles(true)

	el := auto.CreateElement(tagStyle)
	el.CreateAttr(attrStyleNameDef, def.Name)
	el.CreateAttr(attrStyleFamily, familyTableCell)
	el.CreateAttr(attrParentStyle, defaultParentStyle)

	props := el.CreateElement(tagTableCellProperties)
	props.CreateAttr(attrBackground, def.Background)

	if def.FontSize != "" {
		text := el.CreateElement(tagTextProperties)
		text.CreateAttr(attrFontSize, def.FontSize)
	}
	return def.Name
}

func (d *Document) findStyle(name string) *etree.Element {
	auto := d.automaticStyles(false)
	if auto == nil {
		return nil
	}
	for _, el := range auto.SelectElements(tagStyle) {
		if el.SelectAttrValue(attrStyleNameDef, "") == name {
			return el
		}
	}
	return nil
}

// automaticStyles returns office:automatic-styles, creating it just before
// office:body when create is set.
func (d *Document) automaticStyles(create bool) *etree.Element {
	root := d.content.Root()
	if auto := root.SelectElement(tagAutomaticStyles); auto != nil || !create {
		return auto
	}

	auto := etree.NewElement(tagAutomaticStyles)
	if body := root.SelectElement(tagBody); body != nil {
		root.InsertChildAt(body.Index(), auto)
	} else {
		root.AddChild(auto)
	}
	return auto
}

// declareNamespaces adds xmlns declarations for prefixes the root does not
// already bind.
func (d *Document) declareNamespaces(prefixes ...string) {
	root := d.content.Root()
	for _, p := range prefixes {
		if root.SelectAttr("xmlns:"+p) == nil {
			root.CreateAttr("xmlns:"+p, namespaces[p])
		}
	}
}

func styleDefOf(el *etree.Element) StyleDef {
	def := StyleDef{Name: el.SelectAttrValue(attrStyleNameDef, "")}
	if props := el.SelectElement(tagTableCellProperties); props != nil {
		def.Background = strings.ToLower(props.SelectAttrValue(attrBackground, ""))
	}
	if text := el.SelectElement(tagTextProperties); text != nil {
		def.FontSize = text.SelectAttrValue(attrFontSize, "")
	}
	return def
}
