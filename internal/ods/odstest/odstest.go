// Package odstest builds small spreadsheet archives for tests.
package odstest

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:style="urn:oasis:names:tc:opendocument:xmlns:style:1.0" xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0" xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0" xmlns:fo="urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0" xmlns:xlink="http://www.w3.org/1999/xlink" office:version="1.3">`

// Styles is the automatic-styles block used by Content when styles are
// requested.
const Styles = `<office:automatic-styles><style:style style:name="ce1" style:family="table-cell" style:parent-style-name="Default"><style:table-cell-properties fo:background-color="#ffffff"/></style:style></office:automatic-styles>`

// Manifest is the META-INF/manifest.xml written into every archive.
const Manifest = `<?xml version="1.0" encoding="UTF-8"?>
<manifest:manifest xmlns:manifest="urn:oasis:names:tc:opendocument:xmlns:manifest:1.0" manifest:version="1.3"><manifest:file-entry manifest:full-path="/" manifest:media-type="application/vnd.oasis.opendocument.spreadsheet"/><manifest:file-entry manifest:full-path="content.xml" manifest:media-type="text/xml"/><manifest:file-entry manifest:full-path="styles.xml" manifest:media-type="text/xml"/></manifest:manifest>`

// StylesXML is the styles.xml member written into every archive.
const StylesXML = `<?xml version="1.0" encoding="UTF-8"?>
<office:document-styles xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" office:version="1.3"><office:styles/></office:document-styles>`

// Content returns a content.xml document with one table holding rows.
// When withStyles is set the Styles block is included.
func Content(withStyles bool, rows ...string) string {
	var b strings.Builder
	b.WriteString(header)
	if withStyles {
		b.WriteString(Styles)
	}
	b.WriteString(`<office:body><office:spreadsheet><table:table table:name="Sheet1">`)
	for _, r := range rows {
		b.WriteString(r)
	}
	b.WriteString(`</table:table></office:spreadsheet></office:body></office:document-content>`)
	return b.String()
}

// Row wraps cells in a table:table-row.
func Row(cells ...string) string {
	return "<table:table-row>" + strings.Join(cells, "") + "</table:table-row>"
}

// Cell returns a table:table-cell. Repeat values above 1 are written as
// number-columns-repeated; an empty style is omitted.
func Cell(text string, repeat int, style string) string {
	var attrs string
	if repeat > 1 {
		attrs += fmt.Sprintf(` table:number-columns-repeated="%d"`, repeat)
	}
	if style != "" {
		attrs += fmt.Sprintf(` table:style-name="%s"`, style)
	}
	if text == "" {
		return "<table:table-cell" + attrs + "/>"
	}
	return fmt.Sprintf(`<table:table-cell%s office:value-type="string"><text:p>%s</text:p></table:table-cell>`, attrs, text)
}

// LinkCell returns a cell whose paragraph is a hyperlink.
func LinkCell(text, href string) string {
	return fmt.Sprintf(`<table:table-cell office:value-type="string"><text:p><text:a xlink:href="%s">%s</text:a></text:p></table:table-cell>`, href, text)
}

// Archive returns the member names and bodies, in order, of an archive with
// the given content.
func Archive(content string) [][2]string {
	return [][2]string{
		{"mimetype", "application/vnd.oasis.opendocument.spreadsheet"},
		{"META-INF/manifest.xml", Manifest},
		{"content.xml", content},
		{"styles.xml", StylesXML},
	}
}

// Write creates dir/name as an .ods archive around content and returns its
// path. mimetype is stored uncompressed as the first member.
func Write(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := WriteMembers(path, Archive(content)); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteMembers writes an archive with the given members to path.
func WriteMembers(path string, members [][2]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(f)
	for _, m := range members {
		method := zip.Deflate
		if m[0] == "mimetype" {
			method = zip.Store
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: m[0], Method: method})
		if err != nil {
			f.Close()
			return err
		}
		if _, err := w.Write([]byte(m[1])); err != nil {
			f.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadMember returns the body of one member of the archive at path.
func ReadMember(t testing.TB, path, member string) []byte {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != member {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open member %s: %v", member, err)
		}
		defer rc.Close()
		body, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read member %s: %v", member, err)
		}
		return body
	}
	t.Fatalf("%s has no member %s", path, member)
	return nil
}
