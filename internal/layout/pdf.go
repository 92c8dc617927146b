package layout

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// ErrEmptyText is returned when there is nothing to export.
var ErrEmptyText = errors.New("no text content to convert to PDF")

type fpdfMeasurer struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	family string
	size   float64
}

func (m *fpdfMeasurer) StringWidth(text string, bold bool) float64 {
	m.pdf.SetFont(m.family, fontStyle(bold), m.size)
	return m.pdf.GetStringWidth(m.tr(text))
}

func fontStyle(bold bool) string {
	if bold {
		return "B"
	}
	return ""
}

func newFpdf(cfg Config) *gofpdf.Fpdf {
	if cfg.PageWidth > 0 && cfg.PageHeight > 0 {
		return gofpdf.NewCustom(&gofpdf.InitType{
			OrientationStr: "P",
			UnitStr:        cfg.Unit,
			Size:           gofpdf.SizeType{Wd: cfg.PageWidth, Ht: cfg.PageHeight},
		})
	}
	return gofpdf.New("P", cfg.Unit, cfg.PageSize, "")
}

// WritePDF lays out text with cfg and writes the PDF to w. Nothing is
// written to w unless the whole document was built without error.
func WritePDF(w io.Writer, text string, cfg Config) (*Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	cfg = DefaultConfig().Merge(cfg)
	if cfg.FontFamily == "" || cfg.FontSize <= 0 {
		return nil, fmt.Errorf("pdf render: invalid font configuration")
	}
	pdf := newFpdf(cfg)
	if cfg.PageWidth <= 0 || cfg.PageHeight <= 0 {
		cfg.PageWidth, cfg.PageHeight = pdf.GetPageSize()
	}
	pdf.SetMargins(cfg.Margin, cfg.Margin, cfg.Margin)
	pdf.SetAutoPageBreak(false, cfg.Margin)
	pdf.SetFont(cfg.FontFamily, "", cfg.FontSize)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdf render: font setup failed: %w", err)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdf render: code page: %w", err)
	}

	doc, err := Layout(text, cfg, &fpdfMeasurer{
		pdf:    pdf,
		tr:     tr,
		family: cfg.FontFamily,
		size:   cfg.FontSize,
	})
	if err != nil {
		return nil, fmt.Errorf("pdf render: %w", err)
	}
	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, op := range page.Ops {
			switch op.Kind {
			case OpRule:
				pdf.Line(op.X, op.Y, op.X2, op.Y)
			case OpText:
				pdf.SetFont(cfg.FontFamily, fontStyle(op.Bold), cfg.FontSize)
				pdf.Text(op.X, op.Y, tr(op.Text))
			}
		}
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdf render: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return nil, fmt.Errorf("pdf render: output: %w", err)
	}
	return doc, nil
}
