package gateway

import (
	"regexp"
	"strings"
)

// Response cleanup heuristics. Models sometimes echo the instruction, add a
// "here you go" preamble or wrap the answer in a code fence or quotes. Each
// heuristic is narrow on purpose; upstream output format carries no
// contract, so the worst case is returning the raw text unchanged.
var (
	preambleRe = regexp.MustCompile(`(?i)^(sure[,!.]?|certainly[,!.]?|of course[,!.]?)?\s*(here('s| is)[^:\n]*|improved (text|version|paragraph))\s*:\s*`)
	fenceRe    = regexp.MustCompile("(?s)^```[a-zA-Z]*\\n(.*?)\\n?```$")
	bulletRe   = regexp.MustCompile(`(?m)^[ \t]*[*+\x{2022}][ \t]+`)
)

// CleanResponse strips prompt echo and decoration from raw model output.
// The original input text is used to detect instruction echo.
func CleanResponse(input, raw string) string {
	out := strings.TrimSpace(raw)

	// Some models repeat the whole instruction block before answering.
	if idx := strings.Index(out, improveInstruction); idx >= 0 {
		out = out[idx+len(improveInstruction):]
		out = strings.TrimSpace(out)
		// The echoed input usually follows the echoed instruction.
		out = strings.TrimSpace(strings.TrimPrefix(out, strings.TrimSpace(input)))
	}

	out = preambleRe.ReplaceAllString(out, "")

	if m := fenceRe.FindStringSubmatch(out); m != nil {
		out = m[1]
	}
	out = strings.TrimSpace(out)

	// Matching quote pairs around the entire answer.
	for _, pair := range [][2]string{{`"`, `"`}, {"“", "”"}, {"'", "'"}} {
		if len(out) >= 2 && strings.HasPrefix(out, pair[0]) && strings.HasSuffix(out, pair[1]) {
			out = strings.TrimSpace(out[len(pair[0]) : len(out)-len(pair[1])])
			break
		}
	}

	// Unify bullet markers so the normalizer downstream has less to guess.
	out = bulletRe.ReplaceAllString(out, "- ")
	return strings.TrimSpace(out)
}
