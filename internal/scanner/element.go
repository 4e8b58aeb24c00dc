package scanner

import (
	"strings"

	"golang.org/x/net/html"
)

// ElementInfo holds the identifying attributes of the first element in
// an HTML fragment. These fields feed the violation grouping key, so
// extraction must be stable for a given fragment.
type ElementInfo struct {
	Tag     string
	ID      string
	Classes string
	Text    string
}

// ExtractElementInfo parses an HTML fragment and describes its first
// element. An empty or unparseable fragment yields zero values; grouping
// then falls back to the rule id alone.
func ExtractElementInfo(fragment string) ElementInfo {
	node := firstElementNode(fragment)
	if node == nil {
		return ElementInfo{}
	}

	var info ElementInfo
	info.Tag = node.Data
	for _, attr := range node.Attr {
		switch attr.Key {
		case "id":
			info.ID = attr.Val
		case "class":
			info.Classes = strings.Join(strings.Fields(attr.Val), " ")
		}
	}
	info.Text = strings.TrimSpace(collectText(node))

	return info
}

// firstElementNode parses a fragment and returns its first element node,
// skipping the html/head/body scaffolding the parser synthesizes.
func firstElementNode(fragment string) *html.Node {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil
	}

	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil
	}

	scaffold := map[string]bool{"html": true, "head": true, "body": true}

	var find func(*html.Node) *html.Node
	find = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && !scaffold[n.Data] {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := find(c); found != nil {
				return found
			}
		}
		return nil
	}
	return find(doc)
}

// collectText concatenates the text content beneath a node, collapsing
// runs of whitespace to single spaces.
func collectText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			if trimmed := strings.TrimSpace(node.Data); trimmed != "" {
				parts = append(parts, strings.Join(strings.Fields(trimmed), " "))
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

// PrettyHTML re-indents an HTML fragment with two-space nesting, one tag
// per line, for readable report cells. A fragment that fails to parse is
// returned unchanged.
func PrettyHTML(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return fragment
	}

	node := firstElementNode(fragment)
	if node == nil {
		return fragment
	}

	var buf strings.Builder
	writeIndented(&buf, node, 0)
	return strings.TrimRight(buf.String(), "\n")
}

func writeIndented(buf *strings.Builder, n *html.Node, depth int) {
	indent := strings.Repeat("  ", depth)

	switch n.Type {
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text != "" {
			buf.WriteString(indent)
			buf.WriteString(strings.Join(strings.Fields(text), " "))
			buf.WriteString("\n")
		}
	case html.ElementNode:
		buf.WriteString(indent)
		buf.WriteString("<" + n.Data)
		for _, attr := range n.Attr {
			buf.WriteString(" " + attr.Key + `="` + attr.Val + `"`)
		}

		if voidElements[n.Data] {
			buf.WriteString(">\n")
			return
		}
		buf.WriteString(">\n")

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeIndented(buf, c, depth+1)
		}

		buf.WriteString(indent)
		buf.WriteString("</" + n.Data + ">\n")
	}
}

// voidElements have no closing tag in HTML.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}
