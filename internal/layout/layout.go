// Package layout paginates marked-up text into draw operations and writes
// them out as a PDF.
//
// Layout is pure: it only needs a Measurer for string widths and returns a
// Document that lists, page by page, where every text fragment and rule goes.
// WritePDF replays that Document onto gofpdf.
package layout

import (
	"github.com/muhammadolammi/cvcustomizer/internal/markup"
)

// Measurer reports the rendered width of text in the body font.
type Measurer interface {
	StringWidth(text string, bold bool) float64
}

// OpKind tags a draw operation.
type OpKind int

const (
	OpText OpKind = iota
	OpRule
)

// Op is one draw instruction. Text ops are placed with their baseline at Y.
// Rule ops run from (X, Y) to (X2, Y).
type Op struct {
	Kind OpKind
	X    float64
	Y    float64
	X2   float64
	Text string
	Bold bool
}

// Page holds the operations drawn on one page.
type Page struct {
	Ops []Op
}

// Document is the paginated result of a layout pass.
type Document struct {
	Config Config
	Pages  []Page
}

// Text returns every text op of every page in drawing order.
func (d *Document) Text() []Op {
	var ops []Op
	for _, p := range d.Pages {
		for _, op := range p.Ops {
			if op.Kind == OpText {
				ops = append(ops, op)
			}
		}
	}
	return ops
}

type engine struct {
	cfg     Config
	measure Measurer
	doc     *Document
	x, y    float64
}

// Layout places text on pages of cfg's geometry. The Document always has at
// least one page.
func Layout(text string, cfg Config, m Measurer) (*Document, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &engine{
		cfg:     cfg,
		measure: m,
		doc:     &Document{Config: cfg},
	}
	e.newPage()
	for _, line := range markup.Parse(text) {
		switch {
		case line.Kind == markup.RuleLine:
			e.rule()
		case line.Text() == "":
			// blank line: advance without reserving
			e.y += cfg.LineHeight
		default:
			e.textLine(line.Runs)
		}
	}
	return e.doc, nil
}

func (e *engine) newPage() {
	e.doc.Pages = append(e.doc.Pages, Page{})
	e.y = e.cfg.Margin
}

func (e *engine) bottom() float64 {
	return e.cfg.PageHeight - e.cfg.Margin
}

// reserve breaks the page when advance more units would cross the bottom
// margin. A page whose cursor has not moved is never broken.
func (e *engine) reserve(advance float64) {
	if e.y+advance > e.bottom() && e.y > e.cfg.Margin {
		e.newPage()
	}
}

func (e *engine) emit(op Op) {
	p := &e.doc.Pages[len(e.doc.Pages)-1]
	p.Ops = append(p.Ops, op)
}

func (e *engine) rule() {
	half := e.cfg.LineHeight / 2
	e.reserve(half)
	e.emit(Op{
		Kind: OpRule,
		X:    e.cfg.Margin,
		Y:    e.y,
		X2:   e.cfg.PageWidth - e.cfg.Margin,
	})
	e.y += half
}

func (e *engine) textLine(runs []markup.Run) {
	left := e.cfg.Margin
	full := e.cfg.PrintableWidth()
	e.x = left
	// Space is reserved lazily so blank lines never open a page of their own.
	placed := false
	for _, run := range runs {
		width := func(s string) float64 {
			return e.measure.StringWidth(s, run.Bold)
		}
		remaining := full - (e.x - left)
		for i, sub := range wrap(run.Text, remaining, full, width) {
			if i > 0 {
				e.y += e.cfg.LineHeight
				e.x = left
				placed = false
			}
			if sub == "" {
				continue
			}
			if !placed {
				e.reserve(e.cfg.LineHeight)
				placed = true
			}
			e.emit(Op{Kind: OpText, X: e.x, Y: e.y, Text: sub, Bold: run.Bold})
			e.x += width(sub)
		}
	}
	e.y += e.cfg.LineHeight
}
