package markdown

import (
	"regexp"
	"strings"
)

// The normalizer is a best-effort cleanup for loosely structured model
// output, not a parser. It applies an ordered sequence of substitutions:
// bullet markers are unified, inline bullets are broken onto their own
// lines, headers get surrounding blank lines, and runs of blank lines
// collapse to a single separator. Applying it twice yields the same text.
var (
	bulletMarkerRe = regexp.MustCompile(`(?m)^[ \t]*[-*+\x{2022}][ \t]+`)
	inlineBulletRe = regexp.MustCompile(`([^\n])[ \t]+\x{2022}[ \t]+`)
	headerLineRe   = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(.*)$`)
	headerSpaceRe  = regexp.MustCompile(`(?m)^(#{1,6})[ \t]*([^#\s].*)$`)
	blankRunRe     = regexp.MustCompile(`\n{3,}`)
	trailingWSRe   = regexp.MustCompile(`(?m)[ \t]+$`)
)

// Normalize coerces text into canonical block form: one bullet per line
// with a "- " marker, headers separated from surrounding text by blank
// lines, and exactly one blank line between blocks.
func Normalize(text string) string {
	out := strings.ReplaceAll(text, "\r\n", "\n")
	out = trailingWSRe.ReplaceAllString(out, "")

	// Bullets glued into a paragraph get their own line first, then every
	// bullet marker collapses to "- " at the left margin.
	out = inlineBulletRe.ReplaceAllString(out, "$1\n- ")
	out = bulletMarkerRe.ReplaceAllString(out, "- ")

	// Headers need a space after the hashes and a blank line on each side.
	out = headerSpaceRe.ReplaceAllString(out, "$1 $2")
	out = spaceHeaders(out)

	out = blankRunRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func spaceHeaders(text string) string {
	lines := strings.Split(text, "\n")
	var b strings.Builder
	for i, line := range lines {
		isHeader := headerLineRe.MatchString(line)
		if isHeader && i > 0 && strings.TrimSpace(lines[i-1]) != "" {
			b.WriteString("\n")
		}
		b.WriteString(line)
		if i < len(lines)-1 {
			if isHeader && strings.TrimSpace(lines[i+1]) != "" {
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
