package web

import (
	"net/url"
	"strings"

	"ideation-orchestrator/internal/domain/entity"

	"golang.org/x/net/html"
)

type CleanConfig struct {
	TagsToRemove  []string
	MaxOutputSize int
	MaxLinks      int
}

// DefaultCleanConfig drops non-content elements and keeps up to 130k chars.
var DefaultCleanConfig = CleanConfig{
	TagsToRemove: []string{
		"script", "style", "noscript", "svg", "iframe",
		"link", "meta", "head", "nav", "footer", "form", "button",
	},
	MaxOutputSize: 130_000,
	MaxLinks:      40,
}

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"br": true, "li": true, "tr": true, "table": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "header": true,
}

// ExtractPage parses rawHTML and returns the page title, its readable text
// and the absolute links found in the body. Unparseable input is returned
// as text unchanged.
func ExtractPage(rawHTML, pageURL string, cfg *CleanConfig) (title, text string, links []entity.Link) {
	if cfg == nil {
		cfg = &DefaultCleanConfig
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", truncate(rawHTML, cfg.MaxOutputSize), nil
	}

	title = strings.TrimSpace(textOf(findNode(doc, "title")))

	body := findNode(doc, "body")
	if body == nil {
		body = doc
	}
	cleanNode(body, cfg)

	base, _ := url.Parse(pageURL)
	var sb strings.Builder
	collect(body, &sb, base, &links, cfg.MaxLinks)

	return title, truncate(normalizeWhitespace(sb.String()), cfg.MaxOutputSize), links
}

func findNode(n *html.Node, tag string) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// cleanNode removes comments and unwanted elements in place.
func cleanNode(n *html.Node, cfg *CleanConfig) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.CommentNode:
			n.RemoveChild(c)
		case c.Type == html.ElementNode && isOneOf(c.Data, cfg.TagsToRemove...):
			n.RemoveChild(c)
		default:
			cleanNode(c, cfg)
		}
		c = next
	}
}

func collect(n *html.Node, sb *strings.Builder, base *url.URL, links *[]entity.Link, maxLinks int) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		if strings.HasPrefix(n.Data, "h") && len(n.Data) == 2 && n.Data[1] >= '1' && n.Data[1] <= '6' {
			sb.WriteString("\n" + strings.Repeat("#", int(n.Data[1]-'0')) + " ")
		}
		if n.Data == "li" {
			sb.WriteString("\n- ")
		}
		if n.Data == "a" && len(*links) < maxLinks {
			if href := attr(n, "href"); href != "" {
				if abs := resolve(base, href); abs != "" {
					*links = append(*links, entity.Link{Text: strings.TrimSpace(textOf(n)), Href: abs})
				}
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, sb, base, links, maxLinks)
	}

	if n.Type == html.ElementNode && blockTags[n.Data] {
		sb.WriteString("\n")
	}
}

func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
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

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func resolve(base *url.URL, href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// normalizeWhitespace collapses runs of spaces inside lines and drops blank
// lines beyond one.
func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" || line == "-" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func truncate(s string, maxSize int) string {
	if maxSize > 0 && len(s) > maxSize {
		return s[:maxSize] + "\n... (page truncated)"
	}
	return s
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
