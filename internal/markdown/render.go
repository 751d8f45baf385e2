package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

var sanitizer = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	// chroma emits class-based spans; styles live in a stylesheet.
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-zA-Z0-9\- ]+$`)).
		OnElements("span", "code", "pre", "div")
	return p
}

var fencedBlockRe = regexp.MustCompile("(?ms)^```([a-zA-Z0-9+_-]*)\\n(.*?)^```[ \t]*$")

// ToHTML normalizes text and converts it to sanitized HTML. Fenced code
// blocks are highlighted with chroma before the markdown pass; if the
// renderer fails the regex fallback takes over.
func ToHTML(text string) string {
	normalized := Normalize(text)
	withCode := fencedBlockRe.ReplaceAllStringFunc(normalized, func(block string) string {
		m := fencedBlockRe.FindStringSubmatch(block)
		if m == nil {
			return block
		}
		highlighted, ok := highlightCode(m[1], m[2])
		if !ok {
			return block
		}
		return highlighted
	})

	var b strings.Builder
	if err := mdRenderer.Convert([]byte(withCode), &b); err != nil {
		return sanitizer.Sanitize(fallbackHTML(normalized))
	}
	return sanitizer.Sanitize(b.String())
}

func highlightCode(lang, source string) (string, bool) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		return "", false
	}
	lexer = chroma.Coalesce(lexer)
	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", false
	}
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	var buf strings.Builder
	if err := formatter.Format(&buf, styles.Fallback, iterator); err != nil {
		return "", false
	}
	return buf.String(), true
}

var (
	fallbackHeaderRe = regexp.MustCompile(`(?m)^(#{1,6}) (.*)$`)
	fallbackBoldRe   = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	fallbackItalicRe = regexp.MustCompile(`\*([^*]+)\*`)
)

// fallbackHTML is the hand-written substitution path used when the real
// renderer cannot process the input. It only knows headers, bullets, bold,
// italics and paragraphs.
func fallbackHTML(text string) string {
	escaped := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(text)
	escaped = fallbackHeaderRe.ReplaceAllStringFunc(escaped, func(line string) string {
		m := fallbackHeaderRe.FindStringSubmatch(line)
		level := len(m[1])
		return fmt.Sprintf("<h%d>%s</h%d>", level, m[2], level)
	})
	escaped = fallbackBoldRe.ReplaceAllString(escaped, "<strong>$1</strong>")
	escaped = fallbackItalicRe.ReplaceAllString(escaped, "<em>$1</em>")

	var b strings.Builder
	inList := false
	for _, block := range strings.Split(escaped, "\n\n") {
		lines := strings.Split(block, "\n")
		for _, line := range lines {
			switch {
			case strings.HasPrefix(line, "- "):
				if !inList {
					b.WriteString("<ul>")
					inList = true
				}
				b.WriteString("<li>" + strings.TrimPrefix(line, "- ") + "</li>")
			case strings.HasPrefix(line, "<h"):
				if inList {
					b.WriteString("</ul>")
					inList = false
				}
				b.WriteString(line)
			case strings.TrimSpace(line) == "":
			default:
				if inList {
					b.WriteString("</ul>")
					inList = false
				}
				b.WriteString("<p>" + line + "</p>")
			}
		}
	}
	if inList {
		b.WriteString("</ul>")
	}
	return b.String()
}
