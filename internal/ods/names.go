package ods

// Qualified names as LibreOffice and other ODF producers write them. etree
// matches on the prefix used in the file, and ODF producers use these
// canonical prefixes.
const (
	tagBody            = "office:body"
	tagSpreadsheet     = "office:spreadsheet"
	tagAutomaticStyles = "office:automatic-styles"

	tagTable       = "table:table"
	tagRow         = "table:table-row"
	tagCell        = "table:table-cell"
	tagCoveredCell = "table:covered-table-cell"

	tagParagraph = "text:p"
	tagLink      = "text:a"
	tagSpace     = "text:s"
	tagTab       = "text:tab"
	tagLineBreak = "text:line-break"

	tagStyle               = "style:style"
	tagTableCellProperties = "style:table-cell-properties"
	tagTextProperties      = "style:text-properties"

	attrTableName     = "table:name"
	attrRepeat        = "table:number-columns-repeated"
	attrStyleName     = "table:style-name"
	attrValueType     = "office:value-type"
	attrCalcValueType = "calcext:value-type"
	attrHref          = "xlink:href"
	attrSpaceCount    = "text:c"

	attrStyleNameDef   = "style:name"
	attrStyleFamily    = "style:family"
	attrParentStyle    = "style:parent-style-name"
	attrBackground     = "fo:background-color"
	attrFontSize       = "fo:font-size"
	familyTableCell    = "table-cell"
	defaultParentStyle = "Default"
	valueTypeString    = "string"
)

var namespaces = map[string]string{
	"office": "urn:oasis:names:tc:opendocument:xmlns:office:1.0",
	"style":  "urn:oasis:names:tc:opendocument:xmlns:style:1.0",
	"text":   "urn:oasis:names:tc:opendocument:xmlns:text:1.0",
	"table":  "urn:oasis:names:tc:opendocument:xmlns:table:1.0",
	"fo":     "urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0",
	"xlink":  "http://www.w3.org/1999/xlink",
}
