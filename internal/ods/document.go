// Package ods reads and rewrites OpenDocument spreadsheet archives.
//
// A [Document] owns the parsed content.xml tree of one archive and exposes its
// first table as a [Sheet]. Rows inside the sheet keep the run-length column
// compression of the file format (table:number-columns-repeated); see [Row]
// for how single cells are addressed without disturbing sibling columns.
//
// Every archive member other than content.xml is carried through [Document.Save]
// byte-for-byte, so styles.xml, settings.xml, thumbnails and the manifest are
// never touched.
package ods

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
)

// ContentMember is the archive member that holds the spreadsheet body.
const ContentMember = "content.xml"

var (
	// ErrNoContent is returned when the archive lacks a content.xml member.
	ErrNoContent = errors.New("archive has no content.xml member")

	// ErrNoSheet is returned when content.xml has no office:spreadsheet table.
	ErrNoSheet = errors.New("content has no spreadsheet table")
)

// LoadError reports a failure to open a document. Nothing has been mutated
// when it is returned.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// SaveError reports a failure to write a document. The destination file is
// left exactly as it was before the save started.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// Document is one opened spreadsheet archive.
type Document struct {
	path    string
	archive []byte
	content *etree.Document
	sheet   *Sheet
}

// Open reads the archive at path and parses its content member.
// The raw archive is kept in memory so Save can copy untouched members even
// when the destination is the file that was opened.
func Open(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return Read(path, raw)
}

// Read parses an archive already held in memory. name is used for errors and
// as the document's default save path.
func Read(name string, raw []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, &LoadError{Path: name, Err: err}
	}

	var member *zip.File
	for _, f := range zr.File {
		if f.Name == ContentMember {
			member = f
			break
		}
	}
	if member == nil {
		return nil, &LoadError{Path: name, Err: ErrNoContent}
	}

	rc, err := member.Open()
	if err != nil {
		return nil, &LoadError{Path: name, Err: fmt.Errorf("open %s: %w", ContentMember, err)}
	}
	defer rc.Close()

	content := etree.NewDocument()
	if _, err := content.ReadFrom(rc); err != nil {
		return nil, &LoadError{Path: name, Err: fmt.Errorf("parse %s: %w", ContentMember, err)}
	}

	table := findTable(content)
	if table == nil {
		return nil, &LoadError{Path: name, Err: ErrNoSheet}
	}

	return &Document{
		path:    name,
		archive: raw,
		content: content,
		sheet:   &Sheet{table: table},
	}, nil
}

// findTable returns the first table of office:body/office:spreadsheet.
func findTable(content *etree.Document) *etree.Element {
	root := content.Root()
	if root == nil {
		return nil
	}
	body := root.SelectElement(tagBody)
	if body == nil {
		return nil
	}
	spreadsheet := body.SelectElement(tagSpreadsheet)
	if spreadsheet == nil {
		return nil
	}
	return spreadsheet.SelectElement(tagTable)
}

// Path returns the path the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// Sheet returns the document's active sheet.
func (d *Document) Sheet() *Sheet {
	return d.sheet
}

// Content serializes the current content tree.
func (d *Document) Content() ([]byte, error) {
	return d.content.WriteToBytes()
}

// Save writes the document to path. Members are copied from the archive as it
// was loaded, with content.xml replaced by the serialized tree. The archive is
// assembled in a temporary file next to path and renamed over it, so a failed
// save never leaves a partial file behind.
func (d *Document) Save(path string) error {
	content, err := d.Content()
	if err != nil {
		return &SaveError{Path: path, Err: fmt.Errorf("serialize %s: %w", ContentMember, err)}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &SaveError{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if err := d.writeArchive(tmp, content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &SaveError{Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &SaveError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &SaveError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return &SaveError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &SaveError{Path: path, Err: err}
	}
	return nil
}

// writeArchive streams the repacked archive to w.
func (d *Document) writeArchive(w io.Writer, content []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(d.archive), int64(len(d.archive)))
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for _, f := range zr.File {
		if f.Name == ContentMember {
			if err := writeContent(zw, f, content); err != nil {
				return err
			}
			continue
		}
		if err := copyRaw(zw, f); err != nil {
			return fmt.Errorf("copy %s: %w", f.Name, err)
		}
	}
	return zw.Close()
}

// copyRaw copies a member without recompressing it.
func copyRaw(zw *zip.Writer, f *zip.File) error {
	hdr := f.FileHeader
	w, err := zw.CreateRaw(&hdr)
	if err != nil {
		return err
	}
	r, err := f.OpenRaw()
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	return err
}

func writeContent(zw *zip.Writer, orig *zip.File, content []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     orig.Name,
		Comment:  orig.Comment,
		Method:   zip.Deflate,
		Modified: orig.Modified,
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", ContentMember, err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("write %s: %w", ContentMember, err)
	}
	return nil
}
