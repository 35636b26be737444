// Package htmlclean strips a page's markup down to what an agent needs to
// locate form controls.
package htmlclean

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

const TruncationNotice = "\n<!-- HTML truncated to fit token limit -->"

type Config struct {
	TagsToRemove  []string
	AttrsToRemove []string
	// KeepAttrs survive even when a prefix rule would drop them.
	KeepAttrs        []string
	MaxOutputSize    int
	CustomAttrFilter func(attr html.Attribute) bool
}

// DefaultConfig keeps labels, names, placeholders and aria-label, which the
// locator policy relies on.
var DefaultConfig = Config{
	TagsToRemove: []string{
		"script", "style", "noscript", "svg", "iframe",
		"link", "meta", "head", "title",
	},
	AttrsToRemove: []string{
		"style", "srcset", "sizes", "loading", "decoding", "fetchpriority", "tabindex",
	},
	KeepAttrs:     []string{"aria-label", "aria-labelledby"},
	MaxOutputSize: 130_000,
}

// Clean returns the cleaned <body> of rawHTML. Input that cannot be parsed,
// or has no body, is returned unchanged.
func Clean(rawHTML string, cfg *Config) string {
	if cfg == nil {
		cfg = &DefaultConfig
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	body := findBody(doc)
	if body == nil {
		return rawHTML
	}

	cleanNode(body, cfg)

	var sb strings.Builder
	if err := html.Render(&sb, body); err != nil {
		return rawHTML
	}
	return truncate(sb.String(), cfg.MaxOutputSize)
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func cleanNode(n *html.Node, cfg *Config) {
	switch {
	case n.Type == html.CommentNode:
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		return
	case n.Type != html.ElementNode:
		return
	case slices.Contains(cfg.TagsToRemove, n.Data):
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		return
	}

	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool {
		return shouldRemoveAttr(a, cfg)
	})

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		cleanNode(c, cfg)
		c = next
	}
}

func shouldRemoveAttr(attr html.Attribute, cfg *Config) bool {
	key := attr.Key
	if slices.Contains(cfg.KeepAttrs, key) {
		return false
	}
	if slices.Contains(cfg.AttrsToRemove, key) {
		return true
	}
	if strings.HasPrefix(key, "data-") || strings.HasPrefix(key, "aria-") || strings.HasPrefix(key, "on") {
		return true
	}
	return cfg.CustomAttrFilter != nil && cfg.CustomAttrFilter(attr)
}

func truncate(s string, maxSize int) string {
	if maxSize <= 0 || len(s) <= maxSize {
		return s
	}
	return s[:maxSize] + TruncationNotice
}
