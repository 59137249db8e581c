// Package source captures external web pages as notes.
package source

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// extracted is the result of pulling readable content out of an HTML page.
type extracted struct {
	Title string
	Text  string
}

// extractHTML parses a page and pulls out its title and readable text.
// Content is preferred from <article> or <main>; the whole <body> is the
// fallback. Chrome elements (nav, scripts, footers) are skipped.
func extractHTML(doc *html.Node) extracted {
	return extracted{
		Title: extractTitle(doc),
		Text:  extractText(doc),
	}
}

func extractTitle(doc *html.Node) string {
	title := findFirstText(doc, "title")
	if title == "" {
		title = metaProperty(doc, "og:title")
	}
	if title == "" {
		title = findFirstText(doc, "h1")
	}
	return cleanLine(title)
}

func findFirstText(doc *html.Node, tag string) string {
	var out string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if out != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == tag {
			out = nodeText(n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func metaProperty(doc *html.Node, prop string) string {
	var out string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if out != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "meta" {
			var name, content string
			for _, a := range n.Attr {
				switch a.Key {
				case "property", "name":
					name = a.Val
				case "content":
					content = a.Val
				}
			}
			if name == prop {
				out = content
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

// skippedTags are page chrome that never contributes readable content.
var skippedTags = map[string]bool{
	"script": true, "style": true, "nav": true, "footer": true,
	"aside": true, "header": true, "noscript": true, "iframe": true,
	"form": true, "button": true,
}

// blockTags mark paragraph boundaries in the extracted text.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "li": true, "br": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "tr": true,
}

func extractText(doc *html.Node) string {
	container := findContainer(doc, "article")
	if container == nil {
		container = findContainer(doc, "main")
	}
	if container == nil {
		container = findContainer(doc, "body")
	}
	if container == nil {
		container = doc
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skippedTags[n.Data] {
				return
			}
			if blockTags[n.Data] {
				sb.WriteString("\n")
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(container)

	lines := strings.Split(sb.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if l := cleanLine(line); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func findContainer(doc *html.Node, tag string) *html.Node {
	var out *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if out != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == tag {
			out = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func cleanLine(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
