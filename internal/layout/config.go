package layout

import (
	"fmt"
)

// Config holds page geometry and body font settings. Lengths are in Unit.
type Config struct {
	PageSize   string
	Unit       string
	PageWidth  float64
	PageHeight float64
	Margin     float64
	LineHeight float64
	FontFamily string
	FontSize   float64
}

// DefaultConfig returns an A4 page in millimetres with a 15mm margin, 7mm
// lines and 10pt Helvetica.
func DefaultConfig() Config {
	return Config{
		PageSize:   "A4",
		Unit:       "mm",
		PageWidth:  210,
		PageHeight: 297,
		Margin:     15,
		LineHeight: 7,
		FontFamily: "Helvetica",
		FontSize:   10,
	}
}

// PrintableWidth is the page width inside the margins.
func (c Config) PrintableWidth() float64 {
	return c.PageWidth - 2*c.Margin
}

// PrintableHeight is the page height inside the margins.
func (c Config) PrintableHeight() float64 {
	return c.PageHeight - 2*c.Margin
}

// Validate reports geometry that cannot hold a single line of text.
func (c Config) Validate() error {
	if c.PageWidth <= 0 || c.PageHeight <= 0 {
		return fmt.Errorf("invalid page size %gx%g", c.PageWidth, c.PageHeight)
	}
	if c.Margin < 0 {
		return fmt.Errorf("invalid margin %g", c.Margin)
	}
	if c.PrintableWidth() <= 0 || c.PrintableHeight() <= 0 {
		return fmt.Errorf("margin %g leaves no printable area on a %gx%g page", c.Margin, c.PageWidth, c.PageHeight)
	}
	if c.LineHeight <= 0 || c.LineHeight > c.PrintableHeight() {
		return fmt.Errorf("line height %g does not fit printable height %g", c.LineHeight, c.PrintableHeight())
	}
	if c.FontSize <= 0 {
		return fmt.Errorf("invalid font size %g", c.FontSize)
	}
	return nil
}

// Merge overlays the non-zero fields of src onto c. A zero field means "keep
// c's value", so Merge cannot set a zero margin; set Margin on the result
// instead. A named page size without explicit dimensions clears c's
// dimensions so the PDF builder resolves them.
func (c Config) Merge(src Config) Config {
	if src.PageSize != "" && src.PageSize != c.PageSize {
		c.PageSize = src.PageSize
		c.PageWidth, c.PageHeight = 0, 0
	}
	if src.Unit != "" {
		c.Unit = src.Unit
	}
	if src.PageWidth != 0 {
		c.PageWidth = src.PageWidth
	}
	if src.PageHeight != 0 {
		c.PageHeight = src.PageHeight
	}
	if src.Margin != 0 {
		c.Margin = src.Margin
	}
	if src.LineHeight != 0 {
		c.LineHeight = src.LineHeight
	}
	if src.FontFamily != "" {
		c.FontFamily = src.FontFamily
	}
	if src.FontSize != 0 {
		c.FontSize = src.FontSize
	}
	return c
}
