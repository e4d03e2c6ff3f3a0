package reader

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/vegasq/jsonxml2sql/document"
)

// TextKey holds the text of an element that also has attributes or children
const TextKey = "_text"

var errMalformedXML = errors.New("malformed XML")

// element collects one open element while its children are read
type element struct {
	name   string
	attrs  []xml.Attr
	keys   []string // child element names, first appearance order
	groups map[string][]document.Value
	text   []string
}

func newElement(start xml.StartElement) *element {
	return &element{
		name:   qualifiedName(start.Name),
		attrs:  start.Attr,
		groups: make(map[string][]document.Value),
	}
}

func (e *element) addChild(name string, v document.Value) {
	if _, ok := e.groups[name]; !ok {
		e.keys = append(e.keys, name)
	}
	e.groups[name] = append(e.groups[name], v)
}

// value folds the element into a document value:
//   - repeated child names become arrays, single ones stay scalar
//   - attributes are merged in after the children
//   - a leaf with only text becomes that text
//   - a lone repeated child with no attributes or text collapses to its array
//   - any other text is kept under TextKey
func (e *element) value() document.Value {
	out := document.NewObject()
	for _, k := range e.keys {
		items := e.groups[k]
		if len(items) == 1 {
			out.Set(k, items[0])
		} else {
			out.Set(k, document.Sequence(items))
		}
	}
	for _, a := range e.attrs {
		out.Set(qualifiedName(a.Name), document.String(a.Value))
	}

	text := strings.Join(e.text, " ")
	if out.Len() == 0 && text != "" {
		return document.String(text)
	}
	if out.Len() == 1 && len(e.attrs) == 0 && text == "" {
		if only, _ := out.Get(out.Keys()[0]); only.Kind() == document.KindSequence {
			return only
		}
	}
	if text != "" {
		out.Set(TextKey, document.String(text))
	}
	return document.Mapping(out)
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// ParseXML converts an XML document into a document tree. A root that
// collapses to an array is wrapped as {rootName: [...]}.
func ParseXML(data []byte) (document.Value, bool) {
	v, err := decodeXML(data)
	if err != nil {
		return document.Value{}, false
	}
	return v, true
}

func decodeXML(data []byte) (document.Value, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	var (
		stack []*element
		root  document.Value
		done  bool
	)
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return document.Value{}, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if done {
				return document.Value{}, errMalformedXML
			}
			stack = append(stack, newElement(t))

		case xml.EndElement:
			if len(stack) == 0 {
				return document.Value{}, errMalformedXML
			}
			top := stack[len(stack)-1]
			if top.name != qualifiedName(t.Name) {
				return document.Value{}, errMalformedXML
			}
			stack = stack[:len(stack)-1]

			v := top.value()
			if len(stack) > 0 {
				stack[len(stack)-1].addChild(top.name, v)
				continue
			}
			if v.Kind() == document.KindSequence {
				wrapped := document.NewObject()
				wrapped.Set(top.name, v)
				v = document.Mapping(wrapped)
			}
			root, done = v, true

		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if len(stack) == 0 {
				if text != "" {
					return document.Value{}, errMalformedXML
				}
				continue
			}
			if text != "" {
				top := stack[len(stack)-1]
				top.text = append(top.text, text)
			}
		}
	}

	if !done || len(stack) > 0 {
		return document.Value{}, errMalformedXML
	}
	return root, nil
}
