package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/muhammadolammi/cvcustomizer/internal/layout"
	"github.com/muhammadolammi/cvcustomizer/internal/markup"
)

var ErrUnknownFormat = errors.New("unknown export format")

// exportFile is a rendered download.
type exportFile struct {
	Body        []byte
	ContentType string
	Filename    string
	Pages       int
	Fragments   int
}

// renderExport renders text as "pdf" or "txt". Empty text is rejected before
// the renderer runs, and a failed render never yields a partial body.
func renderExport(format string, kind DocumentKind, text string) (exportFile, error) {
	if strings.TrimSpace(text) == "" {
		return exportFile{}, layout.ErrEmptyText
	}
	switch format {
	case "txt":
		return exportFile{
			Body:        []byte(markup.PlainText(text)),
			ContentType: "text/plain; charset=utf-8",
			Filename:    kind.Filename("txt"),
		}, nil
	case "pdf":
		var buf bytes.Buffer
		doc, err := layout.WritePDF(&buf, text, layout.DefaultConfig())
		if err != nil {
			return exportFile{}, err
		}
		return exportFile{
			Body:        buf.Bytes(),
			ContentType: "application/pdf",
			Filename:    kind.Filename("pdf"),
			Pages:       len(doc.Pages),
			Fragments:   len(doc.Text()),
		}, nil
	default:
		return exportFile{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
