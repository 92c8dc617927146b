package markup

import (
	"regexp"
	"strings"
)

// PlainRule replaces rule lines in plain-text exports.
var PlainRule = strings.Repeat("-", 60)

var boldPair = regexp.MustCompile(`\*\*(.*?)\*\*`)

// PlainText normalizes marked-up text for a .txt download. Lines that are
// exactly "---" become PlainRule and paired bold markers are removed. An
// unpaired marker is left in place.
func PlainText(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if strings.TrimSuffix(l, "\r") == RuleMarker {
			lines[i] = PlainRule + l[len(RuleMarker):]
			continue
		}
		lines[i] = boldPair.ReplaceAllString(l, "$1")
	}
	return strings.Join(lines, "\n")
}
