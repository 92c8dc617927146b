package layout

import (
	"unicode"
	"unicode/utf8"
)

// wrap breaks text at whitespace so the first sub-line fits first and the
// rest fit rest. Whitespace at a break point is dropped; a word wider than
// the limit overflows on its own sub-line. When even the first word does not
// fit a partially used line, the first sub-line is empty.
func wrap(text string, first, rest float64, width func(string) float64) []string {
	if width(text) <= first {
		return []string{text}
	}
	var lines []string
	limit := first
	line, space := "", ""
	for _, tok := range tokenize(text) {
		if isSpace(tok) {
			space += tok
			continue
		}
		candidate := line + space + tok
		space = ""
		if width(candidate) <= limit || (line == "" && limit >= rest) {
			line = candidate
			continue
		}
		lines = append(lines, line)
		limit = rest
		line = tok
	}
	return append(lines, line+space)
}

// tokenize splits s into alternating runs of whitespace and non-whitespace.
func tokenize(s string) []string {
	var toks []string
	start := 0
	prev := false
	for i, r := range s {
		sp := unicode.IsSpace(r)
		if i > 0 && sp != prev {
			toks = append(toks, s[start:i])
			start = i
		}
		prev = sp
	}
	if start < len(s) {
		toks = append(toks, s[start:])
	}
	return toks
}

func isSpace(tok string) bool {
	r, _ := utf8.DecodeRuneInString(tok)
	return unicode.IsSpace(r)
}
