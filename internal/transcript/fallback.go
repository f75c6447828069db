package transcript

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Document is the static text of a page that was never rendered by a
// browser.
type Document struct {
	Title       string
	Description string
	Text        string
	// Article is the readability extraction, used when the heuristic text
	// is too thin.
	Article string
}

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "nav": true,
	"footer": true, "aside": true, "iframe": true, "template": true,
}

var consentMarkers = []string{"cookie", "consent", "gdpr"}

// FromHTML reads the title, the meta description and the main readable
// text of a raw page. Content comes from <main>, then <article>, then
// <body>. The readability article is extracted alongside.
func FromHTML(input []byte) Document {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
	if err != nil {
		return Document{}
	}
	out := Document{Title: Normalize(doc.Find("head title").First().Text())}
	for _, sel := range []string{`meta[property="og:description"]`, `meta[name="description"]`} {
		if v, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
			out.Description = Normalize(v)
			break
		}
	}

	root := doc.Find("main").First()
	if root.Length() == 0 {
		root = doc.Find("article").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}
	if root.Length() == 0 {
		return out
	}
	var b strings.Builder
	for _, n := range root.Nodes {
		writeText(&b, n)
	}
	out.Text = tidyLines(b.String())

	if article, err := readability.FromReader(bytes.NewReader(input), nil); err == nil {
		out.Article = Normalize(article.TextContent)
	}
	return out
}

// Best picks the text to summarize from a static page, preferring the meta
// description when it is long enough.
func (d Document) Best() (Result, error) {
	if len([]rune(d.Description)) > minDescriptionLen {
		return Result{Text: d.Description, Source: SourceMeta}, nil
	}
	if t := Normalize(d.Text); len([]rune(t)) > minDescriptionLen {
		return Result{Text: t, Source: SourceBody}, nil
	}
	if len([]rune(d.Article)) > minDescriptionLen {
		return Result{Text: d.Article, Source: SourceArticle}, nil
	}
	return Result{}, ErrNoText
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if skipTags[n.Data] || looksLikeConsent(n) {
			return
		}
	}
	block := n.Type == html.ElementNode && isBlock(n.Data)
	if block {
		b.WriteString("\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if block {
		b.WriteString("\n")
	}
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "section", "li", "ul", "ol", "br", "hr", "pre", "blockquote",
		"h1", "h2", "h3", "h4", "h5", "h6", "tr", "table":
		return true
	}
	return false
}

func looksLikeConsent(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key != "id" && a.Key != "class" && a.Key != "role" && !strings.HasPrefix(a.Key, "data-") {
			continue
		}
		v := strings.ToLower(a.Val)
		for _, m := range consentMarkers {
			if strings.Contains(v, m) {
				return true
			}
		}
	}
	return false
}

// tidyLines collapses whitespace per line and keeps at most one blank line
// between paragraphs.
func tidyLines(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = Normalize(line)
		if line == "" {
			if len(out) > 0 && out[len(out)-1] != "" {
				out = append(out, "")
			}
			continue
		}
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
