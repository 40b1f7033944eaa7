package recommend

import (
	"regexp"
	"strings"
)

var (
	codeFencePattern  = regexp.MustCompile("(?m)^[ \t]*```[a-zA-Z]*[ \t]*$\n?")
	headerPattern     = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+`)
	bulletPattern     = regexp.MustCompile(`(?m)^[ \t]*[*\-][ \t]+`)
	boldPattern       = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	italicPattern     = regexp.MustCompile(`\*([^*\n]+)\*`)
	blankLinesPattern = regexp.MustCompile(`\n{3,}`)
)

// CleanOutput strips markdown decoration from model output for plain display.
// Bullets become "  • " and runs of blank lines collapse to one.
func CleanOutput(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = codeFencePattern.ReplaceAllString(text, "")
	text = headerPattern.ReplaceAllString(text, "")
	text = bulletPattern.ReplaceAllString(text, "  • ")
	text = boldPattern.ReplaceAllString(text, "$1")
	text = italicPattern.ReplaceAllString(text, "$1")
	text = blankLinesPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
