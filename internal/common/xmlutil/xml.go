// Package xmlutil provides a small element tree on top of encoding/xml used by
// the workflow parsers and serializers.
package xmlutil

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"golang.org/x/text/encoding/ianaindex"
)

// Header is the declaration written at the top of every generated document
const Header = `<?xml version="1.0" encoding="utf-8"?>` + "\n"

// BOM is the UTF-8 byte order mark
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Attr is a single attribute in document order
type Attr struct {
	Name  string
	Value string
}

// Element is a parsed or generated XML element
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element
	// Text is the element's own character data with surrounding whitespace trimmed
	Text string
}

// NewElement creates an element with the given tag name
func NewElement(name string) *Element {
	return &Element{Name: name}
}

// Attr returns the value of the named attribute or "" when absent
func (e *Element) Attr(name string) string {
	v, _ := e.LookupAttr(name)
	return v
}

// LookupAttr returns the value of the named attribute and whether it was present
func (e *Element) LookupAttr(name string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, replacing an existing value. It returns e for chaining.
func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

// SetText sets the element's character data. It returns e for chaining.
func (e *Element) SetText(text string) *Element {
	e.Text = text
	return e
}

// AddChild appends a new child element with the given name and returns it
func (e *Element) AddChild(name string) *Element {
	child := NewElement(name)
	e.Children = append(e.Children, child)
	return child
}

// Child returns the first direct child with the given name, or nil
func (e *Element) Child(name string) *Element {
	if e == nil {
		return nil
	}
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildText returns the text of the first direct child with the given name
func (e *Element) ChildText(name string) string {
	if c := e.Child(name); c != nil {
		return c.Text
	}
	return ""
}

// ChildrenNamed returns every direct child with the given name
func (e *Element) ChildrenNamed(name string) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	for _, c := range e.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Iter returns e and all its descendants with the given name in document order.
// An empty name matches every element.
func (e *Element) Iter(name string) []*Element {
	var out []*Element
	e.Walk(func(el *Element) {
		if name == "" || el.Name == name {
			out = append(out, el)
		}
	})
	return out
}

// Walk calls fn for e and every descendant, depth first in document order
func (e *Element) Walk(fn func(*Element)) {
	if e == nil {
		return
	}
	fn(e)
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// Parse decodes data into an element tree. A leading UTF-8 BOM is accepted and
// non UTF-8 encoding declarations are decoded through the IANA charset index.
func Parse(data []byte) (*Element, error) {
	data = bytes.TrimPrefix(data, BOM)

	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charsetReader

	var (
		root  *Element
		stack []*Element
		texts []*strings.Builder
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrParse, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("%w: multiple root elements", errors.ErrParse)
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
			texts = append(texts, &strings.Builder{})
		case xml.CharData:
			if len(texts) > 0 {
				texts[len(texts)-1].Write(t)
			}
		case xml.EndElement:
			el := stack[len(stack)-1]
			el.Text = strings.TrimSpace(texts[len(texts)-1].String())
			stack = stack[:len(stack)-1]
			texts = texts[:len(texts)-1]
		}
	}

	if root == nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrParse, errors.ErrEmptyDocument)
	}
	return root, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %q", errors.ErrUnsupportedFormat, label)
	}
	if enc == nil {
		return input, nil
	}
	return enc.NewDecoder().Reader(input), nil
}

// Marshal serialises root with two-space indentation after the standard
// declaration. When bom is true the output is prefixed with a UTF-8 BOM.
func Marshal(root *Element, bom bool) ([]byte, error) {
	var buf bytes.Buffer
	if bom {
		buf.Write(BOM)
	}
	buf.WriteString(Header)

	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")
	if err := encodeElement(encoder, root); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrSerializeFailed, err)
	}
	if err := encoder.Flush(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrSerializeFailed, err)
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

func encodeElement(encoder *xml.Encoder, el *Element) error {
	start := xml.StartElement{Name: xml.Name{Local: el.Name}}
	for _, a := range el.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}
	if err := encoder.EncodeToken(start); err != nil {
		return err
	}
	if el.Text != "" {
		if err := encoder.EncodeToken(xml.CharData(el.Text)); err != nil {
			return err
		}
	}
	for _, c := range el.Children {
		if err := encodeElement(encoder, c); err != nil {
			return err
		}
	}
	return encoder.EncodeToken(start.End())
}
