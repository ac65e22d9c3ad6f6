package services

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// textLines collects the trimmed, non-empty text node contents of a subtree
// in document order, skipping script and style elements.
func textLines(n *html.Node) []string {
	var lines []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
			return
		}
		if node.Type == html.TextNode {
			if t := strings.TrimSpace(node.Data); t != "" {
				lines = append(lines, t)
			}
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return lines
}

// selectionText renders a selection's text with segments separated by sep
func selectionText(sel *goquery.Selection, sep string) string {
	var parts []string
	for _, n := range sel.Nodes {
		parts = append(parts, textLines(n)...)
	}
	return strings.Join(parts, sep)
}

// normalizedText is a selection's text with mojibake repaired and
// whitespace collapsed to spaces
func normalizedText(sel *goquery.Selection) string {
	return CollapseWhitespace(FixBrokenCharacters(selectionText(sel, " ")))
}

// nextInDocument returns the node that follows n in document order,
// descending into children first, without leaving the subtree rooted at stop.
func nextInDocument(n, stop *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for n != nil && n != stop {
		if n.NextSibling != nil {
			return n.NextSibling
		}
		n = n.Parent
	}
	return nil
}

// isHeading reports whether a node is an h1-h4 element
func isHeading(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "h1", "h2", "h3", "h4":
		return true
	}
	return false
}

// nodeClass returns the value of a node's class attribute
func nodeClass(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			return attr.Val
		}
	}
	return ""
}
