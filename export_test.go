package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/muhammadolammi/cvcustomizer/internal/layout"
	"github.com/stretchr/testify/require"
)

func TestRenderExport(t *testing.T) {
	file, err := renderExport("pdf", DocumentCoverLetter, "Dear **team**,\n---\nRegards")
	require.NoError(t, err)
	require.Equal(t, "application/pdf", file.ContentType)
	require.Equal(t, "cover_letter.pdf", file.Filename)
	require.Equal(t, 1, file.Pages)
	// "Dear ", "team", "," and "Regards"
	require.Equal(t, 4, file.Fragments)
	require.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))

	file, err = renderExport("txt", DocumentResume, "**Jane**\n---")
	require.NoError(t, err)
	require.Equal(t, "tailored_resume.txt", file.Filename)
	require.Equal(t, "Jane\n"+strings.Repeat("-", 60), string(file.Body))

	file, err = renderExport("txt", "", "x")
	require.NoError(t, err)
	require.Equal(t, "document.txt", file.Filename)
}

func TestRenderExportErrors(t *testing.T) {
	_, err := renderExport("pdf", DocumentResume, "")
	require.ErrorIs(t, err, layout.ErrEmptyText)

	_, err = renderExport("txt", DocumentResume, "\n\t ")
	require.ErrorIs(t, err, layout.ErrEmptyText)

	_, err = renderExport("html", DocumentResume, "text")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "resume.md")
	require.NoError(t, os.WriteFile(in, []byte("**Jane Doe**\n---\nGo developer"), 0o644))

	out, err := exportToFile(in, "pdf", "", DocumentResume)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "resume.pdf"), out)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	// never overwrite the input
	txt := filepath.Join(dir, "letter.txt")
	require.NoError(t, os.WriteFile(txt, []byte("Dear **team**"), 0o644))
	out, err = exportToFile(txt, "txt", "", DocumentCoverLetter)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "letter.out.txt"), out)
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "Dear team", string(data))

	_, err = exportToFile(filepath.Join(dir, "missing.txt"), "pdf", "", DocumentResume)
	require.Error(t, err)
}

func TestWriteDocuments(t *testing.T) {
	dir := t.TempDir()
	written, err := writeDocuments(dir, TailorResult{
		TailoredResume: "**Jane Doe**",
		CoverLetter:    "Dear team,",
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "tailored_resume.txt"),
		filepath.Join(dir, "tailored_resume.pdf"),
		filepath.Join(dir, "cover_letter.txt"),
		filepath.Join(dir, "cover_letter.pdf"),
	}, written)
}
