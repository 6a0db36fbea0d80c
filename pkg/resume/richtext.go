package resume

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagPattern   = regexp.MustCompile(`<\s*/?\s*[a-zA-Z][a-zA-Z0-9]*[^>]*>`)
	blankPattern = regexp.MustCompile(`\n\s*\n`)
)

// LooksLikeHTML reports whether s contains at least one HTML tag.
func LooksLikeHTML(s string) bool {
	return tagPattern.MatchString(s)
}

// FromPlain converts plain text to paragraphs. Blank lines separate
// paragraphs and single newlines become line breaks.
func FromPlain(text string) string {
	text = strings.ReplaceAll(strings.TrimSpace(text), "\r\n", "\n")
	if text == "" {
		return ""
	}

	var sb strings.Builder
	for _, para := range blankPattern.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		lines := strings.Split(para, "\n")
		for i, l := range lines {
			lines[i] = html.EscapeString(strings.TrimSpace(l))
		}
		sb.WriteString("<p>")
		sb.WriteString(strings.Join(lines, "<br>"))
		sb.WriteString("</p>")
	}
	return sb.String()
}

// List renders items as an unordered list, skipping blanks.
func List(items []string) string {
	var sb strings.Builder
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		sb.WriteString("<li>")
		sb.WriteString(html.EscapeString(it))
		sb.WriteString("</li>")
	}
	if sb.Len() == 0 {
		return ""
	}
	return "<ul>" + sb.String() + "</ul>"
}

// Text renders plain text followed by an optional highlights list.
func Text(text string, highlights []string) string {
	return FromPlain(text) + List(highlights)
}

var unsafeElements = []string{"script", "style", "iframe", "object", "embed", "link", "meta", "form", "noscript"}

// Fragment normalises s into a safe HTML body fragment. Plain text is
// wrapped in paragraphs; markup has active content and event handlers removed.
func Fragment(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if !LooksLikeHTML(s) {
		return FromPlain(s), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return "", err
	}

	for _, tag := range unsafeElements {
		doc.Find(tag).Remove()
	}

	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		if len(sel.Nodes) == 0 {
			return
		}
		var drop []string
		for _, attr := range sel.Nodes[0].Attr {
			key := strings.ToLower(attr.Key)
			val := strings.ToLower(strings.TrimSpace(attr.Val))
			if strings.HasPrefix(key, "on") || key == "style" ||
				((key == "href" || key == "src") && strings.HasPrefix(val, "javascript:")) {
				drop = append(drop, attr.Key)
			}
		}
		for _, key := range drop {
			sel.RemoveAttr(key)
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
