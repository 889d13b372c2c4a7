package core

import "github.com/JonMunkholm/holidaycal/internal/ods"

// Cell styles written by runs.
const (
	StyleNational    = "AmberHoliday"
	StyleRegional    = "PinkHoliday"
	StyleSupported   = "GreenRow"
	StyleUnsupported = "GreyRow"
)

// Palette is the set of styles a run needs.
var Palette = []ods.StyleDef{
	{Name: StyleNational, Background: "#ffbf00", FontSize: "6pt"},
	{Name: StyleRegional, Background: "#ffb6c1", FontSize: "6pt"},
	{Name: StyleSupported, Background: "#ccffcc"},
	{Name: StyleUnsupported, Background: "#808080"},
}

// holidayStyles are never painted over by row colouring unless forced.
var holidayStyles = []string{StyleNational, StyleRegional}

// EnsureStyles registers the palette in doc.
func EnsureStyles(doc *ods.Document) {
	for _, def := range Palette {
		doc.EnsureStyle(def)
	}
}

func holidayStyle(national bool) string {
	if national {
		return StyleNational
	}
	return StyleRegional
}
