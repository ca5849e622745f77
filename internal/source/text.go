// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	multiSpace   = regexp.MustCompile(`[ \t]+`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
)

// HTMLToText converts a post body to plain text. Paragraphs become blank-line
// separated blocks and <br> becomes a newline. Input without markup is
// returned trimmed.
func HTMLToText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}

	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, li, div, h1, h2, h3, h4, blockquote").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n\n")
	})

	return normalizeText(doc.Text())
}

func normalizeText(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(multiSpace.ReplaceAllString(l, " "))
	}
	s = strings.Join(lines, "\n")
	s = multiNewline.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
