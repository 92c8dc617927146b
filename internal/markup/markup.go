// Package markup scans the light markup produced by the generator: a line
// holding only "---" is a horizontal rule and paired "**" markers toggle bold.
package markup

import (
	"strings"
)

const (
	RuleMarker = "---"
	BoldMarker = "**"
)

// LineKind tags a parsed line.
type LineKind int

const (
	TextLine LineKind = iota
	RuleLine
)

// Run is a span of one line's text sharing one weight.
type Run struct {
	Text string
	Bold bool
}

// Line is either a rule or a sequence of runs. Runs is nil for rules.
type Line struct {
	Kind LineKind
	Runs []Run
}

// Parse splits text on "\n" and scans every line. Bold state starts over on
// each line.
func Parse(text string) []Line {
	raw := strings.Split(text, "\n")
	lines := make([]Line, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, ParseLine(strings.TrimSuffix(l, "\r")))
	}
	return lines
}

// ParseLine scans a single line. Markers need not balance: the run after an
// unmatched marker stays bold to the end of the line.
func ParseLine(line string) Line {
	if strings.TrimSpace(line) == RuleMarker {
		return Line{Kind: RuleLine}
	}
	parts := strings.Split(line, BoldMarker)
	runs := make([]Run, len(parts))
	bold := false
	for i, p := range parts {
		if i > 0 {
			bold = !bold
		}
		runs[i] = Run{Text: p, Bold: bold}
	}
	return Line{Kind: TextLine, Runs: runs}
}

// Text joins the run texts without markers.
func (l Line) Text() string {
	if l.Kind == RuleLine {
		return ""
	}
	var b strings.Builder
	for _, r := range l.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}
