package ods_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/holidaycal/internal/ods"
	"github.com/JonMunkholm/holidaycal/internal/ods/odstest"
)

func rawMembers(t *testing.T, path string) map[string][]byte {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	out := make(map[string][]byte)
	for _, f := range zr.File {
		r, err := f.OpenRaw()
		require.NoError(t, err)
		b, err := io.ReadAll(r)
		require.NoError(t, err)
		out[f.Name] = b
	}
	return out
}

func memberOrder(t *testing.T, path string) []string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func TestSave_PreservesOtherMembers(t *testing.T) {
	dir := t.TempDir()
	src := odstest.Write(t, dir, "in.ods", odstest.Content(false,
		odstest.Row(odstest.Cell("Status", 1, "")),
		odstest.Row(odstest.Cell("", 4, "")),
	))

	doc, err := ods.Open(src)
	require.NoError(t, err)
	require.NoError(t, doc.Sheet().SetCellText(1, 2, "New Year", ""))

	dst := filepath.Join(dir, "out.ods")
	require.NoError(t, doc.Save(dst))

	before := rawMembers(t, src)
	after := rawMembers(t, dst)
	for name, body := range before {
		if name == ods.ContentMember {
			continue
		}
		assert.Equal(t, body, after[name], "member %s changed", name)
	}
	assert.Equal(t, memberOrder(t, src), memberOrder(t, dst))

	reopened, err := ods.Open(dst)
	require.NoError(t, err)
	got, err := reopened.Sheet().TextAt(1, 2)
	require.NoError(t, err)
	assert.Equal(t, "New Year", got)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestSave_OverwritesSource(t *testing.T) {
	dir := t.TempDir()
	path := odstest.Write(t, dir, "doc.ods", odstest.Content(false, odstest.Row(odstest.Cell("a", 1, ""))))

	doc, err := ods.Open(path)
	require.NoError(t, err)
	require.NoError(t, doc.Sheet().SetCellText(0, 0, "b", ""))
	require.NoError(t, doc.Save(path))

	reopened, err := ods.Open(path)
	require.NoError(t, err)
	got, err := reopened.Sheet().TextAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "b", got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestSave_FailureLeavesDestination(t *testing.T) {
	dir := t.TempDir()
	path := odstest.Write(t, dir, "doc.ods", odstest.Content(false, odstest.Row(odstest.Cell("a", 1, ""))))
	doc, err := ods.Open(path)
	require.NoError(t, err)

	err = doc.Save(filepath.Join(dir, "missing", "out.ods"))
	var saveErr *ods.SaveError
	require.True(t, errors.As(err, &saveErr))
	_, statErr := os.Stat(filepath.Join(dir, "missing"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()

	notZip := filepath.Join(dir, "plain.ods")
	require.NoError(t, os.WriteFile(notZip, []byte("not a zip"), 0o644))

	noContent := filepath.Join(dir, "nocontent.ods")
	require.NoError(t, odstest.WriteMembers(noContent, [][2]string{{"mimetype", "x"}}))

	badXML := filepath.Join(dir, "bad.ods")
	require.NoError(t, odstest.WriteMembers(badXML, [][2]string{{"content.xml", "<office:document-content"}}))

	noTable := filepath.Join(dir, "notable.ods")
	require.NoError(t, odstest.WriteMembers(noTable, [][2]string{{"content.xml", `<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"><office:body/></office:document-content>`}}))

	tests := []struct {
		name   string
		path   string
		target error
	}{
		{name: "missing file", path: filepath.Join(dir, "none.ods"), target: os.ErrNotExist},
		{name: "not a zip", path: notZip, target: zip.ErrFormat},
		{name: "no content member", path: noContent, target: ods.ErrNoContent},
		{name: "malformed xml", path: badXML},
		{name: "no table", path: noTable, target: ods.ErrNoSheet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ods.Open(tt.path)
			var loadErr *ods.LoadError
			require.True(t, errors.As(err, &loadErr), "got %v", err)
			assert.Equal(t, tt.path, loadErr.Path)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestEnsureStyle(t *testing.T) {
	doc := openContent(t, odstest.Content(false, odstest.Row(odstest.Cell("a", 1, ""))))

	amber := ods.StyleDef{Name: "AmberHoliday", Background: "#ffbf00", FontSize: "6pt"}
	assert.Equal(t, "AmberHoliday", doc.EnsureStyle(amber))
	assert.Equal(t, "AmberHoliday", doc.EnsureStyle(amber))
	doc.EnsureStyle(ods.StyleDef{Name: "GreenRow", Background: "#ccffcc"})

	assert.Equal(t, []ods.StyleDef{amber, {Name: "GreenRow", Background: "#ccffcc"}}, doc.Styles())

	got, ok := doc.FindStyle("GreenRow")
	require.True(t, ok)
	assert.Equal(t, "#ccffcc", got.Background)

	_, ok = doc.FindStyle("Missing")
	assert.False(t, ok)

	content, err := doc.Content()
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), `style:name="AmberHoliday"`))
	autoAt := bytes.Index(content, []byte("<office:automatic-styles"))
	bodyAt := bytes.Index(content, []byte("<office:body"))
	assert.True(t, autoAt >= 0 && autoAt < bodyAt, "automatic styles must precede the body")
}

func TestEnsureStyle_ExistingBlock(t *testing.T) {
	doc := openContent(t, odstest.Content(true, odstest.Row(odstest.Cell("a", 1, "ce1"))))

	doc.EnsureStyle(ods.StyleDef{Name: "GreyRow", Background: "#808080"})

	names := make([]string, 0)
	for _, s := range doc.Styles() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"ce1", "GreyRow"}, names)

	content, err := doc.Content()
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), "<office:automatic-styles"))
}
