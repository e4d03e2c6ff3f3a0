package reader

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vegasq/jsonxml2sql/document"
)

// ParseHTML converts the <body> of an HTML document into nested
// {tag, attributes, children} mappings. Whitespace-only text is dropped.
func ParseHTML(data []byte) (document.Value, bool) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return document.Value{}, false
	}

	body := findBody(doc)
	if body == nil {
		return document.Mapping(nil), true
	}
	v, ok := htmlNode(body)
	if !ok {
		return document.Mapping(nil), true
	}
	return v, true
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func htmlNode(n *html.Node) (document.Value, bool) {
	switch n.Type {
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text == "" {
			return document.Value{}, false
		}
		return document.String(text), true

	case html.ElementNode:
		out := document.NewObject()
		out.Set("tag", document.String(strings.ToLower(n.Data)))

		if len(n.Attr) > 0 {
			attrs := document.NewObject()
			for _, a := range n.Attr {
				name := a.Key
				if a.Namespace != "" {
					name = a.Namespace + ":" + a.Key
				}
				attrs.Set(name, document.String(a.Val))
			}
			out.Set("attributes", document.Mapping(attrs))
		}

		var children []document.Value
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if v, ok := htmlNode(c); ok {
				children = append(children, v)
			}
		}
		if len(children) > 0 {
			out.Set("children", document.Sequence(children))
		}
		return document.Mapping(out), true
	}
	return document.Value{}, false
}
