package scanning

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Document is a parsed XML tree queried by the classifier and the extractor.
// Implementations must not be mutated while a document is being scanned.
type Document interface {
	// RootName returns the namespace URI and local name of the document
	// element. ok is false when the document has no root.
	RootName() (namespace, local string, ok bool)
	// ElementText returns the text of the first element with the given local
	// name, whatever its namespace
	ElementText(local string) (Field, bool)
	// Evaluate runs q against the document. Prefixes are resolved against
	// the root element's declarations first, then against defaults.
	Evaluate(q *Query, defaults Namespaces) (Field, error)
}

// XMLDocument implements Document on top of an etree DOM
type XMLDocument struct {
	doc *etree.Document
}

// ParseDocument parses XML bytes. The encoding declaration is honored and a
// leading UTF-8 byte order mark is ignored.
func ParseDocument(data []byte) (*XMLDocument, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if err := doc.ReadFromBytes(bytes.TrimPrefix(data, utf8BOM)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedDocument)
	}
	return &XMLDocument{doc: doc}, nil
}

// RootName implements Document
func (d *XMLDocument) RootName() (string, string, bool) {
	if d == nil || d.doc == nil {
		return "", "", false
	}
	root := d.doc.Root()
	if root == nil {
		return "", "", false
	}
	return root.NamespaceURI(), root.Tag, true
}

// ElementText implements Document
func (d *XMLDocument) ElementText(local string) (Field, bool) {
	if d == nil || d.doc == nil || d.doc.Root() == nil {
		return Field{}, false
	}
	var found *etree.Element
	walkElements(d.doc.Root(), func(e *etree.Element) bool {
		if e.Tag == local {
			found = e
			return false
		}
		return true
	})
	if found == nil {
		return Field{}, false
	}
	return Found(stringValue(found)), true
}

// Evaluate implements Document
func (d *XMLDocument) Evaluate(q *Query, defaults Namespaces) (Field, error) {
	if d == nil || d.doc == nil || d.doc.Root() == nil {
		return Field{}, ErrMalformedDocument
	}
	root := d.doc.Root()

	uris := make([]string, len(q.steps))
	for i, s := range q.steps {
		if s.prefix == "" {
			continue
		}
		uri, ok := declaredPrefix(root, s.prefix)
		if !ok {
			uri, ok = defaults[s.prefix]
		}
		if !ok {
			return Field{}, fmt.Errorf("query %s: unbound prefix %q", q, s.prefix)
		}
		uris[i] = uri
	}

	matches := func(e *etree.Element, i int) bool {
		s := q.steps[i]
		if e.Tag != s.local {
			return false
		}
		return s.prefix == "" || e.NamespaceURI() == uris[i]
	}

	// A candidate matches the last step and its ancestors match the steps
	// before it, so the walk yields the first match in document order.
	last := len(q.steps) - 1
	var found *etree.Element
	walkElements(root, func(e *etree.Element) bool {
		p := e
		for i := last; i >= 0; i-- {
			if p == nil || !matches(p, i) {
				return true
			}
			p = p.Parent()
		}
		found = e
		return false
	})
	if found == nil {
		return Field{}, nil
	}
	return Found(stringValue(found)), nil
}

// walkElements visits e and its descendants in document order until visit
// returns false. It reports whether the walk ran to completion.
func walkElements(e *etree.Element, visit func(*etree.Element) bool) bool {
	if !visit(e) {
		return false
	}
	for _, c := range e.ChildElements() {
		if !walkElements(c, visit) {
			return false
		}
	}
	return true
}

// stringValue concatenates all character data below e
func stringValue(e *etree.Element) string {
	var b strings.Builder
	var collect func(*etree.Element)
	collect = func(e *etree.Element) {
		for _, t := range e.Child {
			switch t := t.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				collect(t)
			}
		}
	}
	collect(e)
	return b.String()
}

// declaredPrefix looks up a prefix declared on e itself
func declaredPrefix(e *etree.Element, prefix string) (string, bool) {
	for _, a := range e.Attr {
		if a.Space == "xmlns" && a.Key == prefix {
			return a.Value, true
		}
	}
	return "", false
}
