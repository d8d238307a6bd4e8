// Package xml provides an XML codec for mapstream maps.
//
// XML has no native types, so every element carries its kind:
//
//	<map>
//	  <entry key="title" kind="string">Dune</entry>
//	  <entry key="tags" kind="list"><item kind="string">a</item></entry>
//	</map>
package xml

import (
	"encoding"
	"encoding/xml"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/zoobzio/mapstream"
)

const contentType = "application/xml"

// xmlCodec implements mapstream.Codec for XML.
type xmlCodec struct{}

// New returns an XML codec.
func New() mapstream.Codec {
	return &xmlCodec{}
}

// ContentType returns the MIME type for XML.
func (c *xmlCodec) ContentType() string {
	return contentType
}

// node is one element of the document.
type node struct {
	XMLName  xml.Name
	Key      *string `xml:"key,attr"`
	Kind     string  `xml:"kind,attr,omitempty"`
	Text     string  `xml:",chardata"`
	Children []node  `xml:",any"`
}

// Encode renders m as a <map> document. Opaque values must implement
// encoding.TextMarshaler and are written as strings; uint64 values above
// math.MaxInt64 get kind "uint". Keys and strings that XML cannot carry,
// such as control characters, fail with ErrEncode.
func (c *xmlCodec) Encode(m *mapstream.Map) ([]byte, error) {
	root, err := mapNode(m)
	if err != nil {
		return nil, mapstream.NewCodecError(mapstream.ErrEncode, contentType, err)
	}
	root.XMLName = xml.Name{Local: "map"}
	root.Kind = ""
	out, err := xml.Marshal(root)
	if err != nil {
		return nil, mapstream.NewCodecError(mapstream.ErrEncode, contentType, err)
	}
	return out, nil
}

// Decode parses a <map> document.
func (c *xmlCodec) Decode(data []byte) (*mapstream.Map, error) {
	var root node
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, mapstream.NewCodecError(mapstream.ErrDecode, contentType, err)
	}
	if root.XMLName.Local != "map" {
		return nil, mapstream.NewCodecError(mapstream.ErrDecode, contentType,
			fmt.Errorf("root element is <%s>, not <map>", root.XMLName.Local))
	}
	m, err := decodeEntries(root.Children)
	if err != nil {
		return nil, mapstream.NewCodecError(mapstream.ErrDecode, contentType, err)
	}
	return m, nil
}

func mapNode(m *mapstream.Map) (node, error) {
	n := node{Kind: "map"}
	var err error
	m.Range(func(k string, v mapstream.Value) bool {
		if err = checkText(k); err != nil {
			err = fmt.Errorf("key %q: %w", k, err)
			return false
		}
		var child node
		if child, err = valueNode(v); err != nil {
			err = fmt.Errorf("%s: %w", k, err)
			return false
		}
		key := k
		child.XMLName = xml.Name{Local: "entry"}
		child.Key = &key
		n.Children = append(n.Children, child)
		return true
	})
	return n, err
}

func valueNode(v mapstream.Value) (node, error) {
	n := node{Kind: v.Kind().String()}
	switch v.Kind() {
	case mapstream.KindBool:
		b, _ := v.AsBool()
		n.Text = strconv.FormatBool(b)
	case mapstream.KindInt:
		i, _ := v.AsInt()
		n.Text = strconv.FormatInt(i, 10)
	case mapstream.KindFloat:
		f, _ := v.AsFloat()
		n.Text = strconv.FormatFloat(f, 'g', -1, 64)
	case mapstream.KindString:
		n.Text, _ = v.AsString()
		if err := checkText(n.Text); err != nil {
			return n, err
		}
	case mapstream.KindList:
		list, _ := v.AsList()
		for i, e := range list {
			item, err := valueNode(e)
			if err != nil {
				return n, fmt.Errorf("[%d]: %w", i, err)
			}
			item.XMLName = xml.Name{Local: "item"}
			n.Children = append(n.Children, item)
		}
	case mapstream.KindMap:
		nested, _ := v.AsMap()
		return mapNode(nested)
	case mapstream.KindOpaque:
		if u, ok := v.Interface().(uint64); ok {
			n.Kind = "uint"
			n.Text = strconv.FormatUint(u, 10)
			return n, nil
		}
		tm, ok := v.Interface().(encoding.TextMarshaler)
		if !ok {
			return n, fmt.Errorf("opaque %T has no text form", v.Interface())
		}
		text, err := tm.MarshalText()
		if err != nil {
			return n, err
		}
		n.Kind = mapstream.KindString.String()
		n.Text = string(text)
		if err := checkText(n.Text); err != nil {
			return n, err
		}
	}
	return n, nil
}

// checkText rejects text encoding/xml would not write back verbatim:
// invalid UTF-8 and characters outside the XML Char production.
func checkText(s string) error {
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size == 1 {
				return fmt.Errorf("invalid UTF-8 at byte %d", i)
			}
		}
		if !isXMLChar(r) {
			return fmt.Errorf("character %U at byte %d is not allowed in XML", r, i)
		}
	}
	return nil
}

func isXMLChar(r rune) bool {
	return r == '\t' || r == '\n' || r == '\r' ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

func decodeEntries(children []node) (*mapstream.Map, error) {
	m := mapstream.NewMap()
	for _, child := range children {
		if child.XMLName.Local != "entry" || child.Key == nil {
			return nil, fmt.Errorf("unexpected <%s> in map", child.XMLName.Local)
		}
		v, err := decodeNode(child)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", *child.Key, err)
		}
		m.Set(*child.Key, v)
	}
	return m, nil
}

func decodeNode(n node) (mapstream.Value, error) {
	switch n.Kind {
	case "null":
		return mapstream.Null(), nil
	case "bool":
		b, err := strconv.ParseBool(n.Text)
		return mapstream.Bool(b), err
	case "int":
		i, err := strconv.ParseInt(n.Text, 10, 64)
		return mapstream.Int(i), err
	case "float":
		f, err := strconv.ParseFloat(n.Text, 64)
		return mapstream.Float(f), err
	case "uint":
		u, err := strconv.ParseUint(n.Text, 10, 64)
		if err != nil {
			return mapstream.Null(), err
		}
		return mapstream.FromNative(u)
	case "string":
		return mapstream.String(n.Text), nil
	case "list":
		list := make([]mapstream.Value, 0, len(n.Children))
		for i, child := range n.Children {
			if child.XMLName.Local != "item" {
				return mapstream.Null(), fmt.Errorf("unexpected <%s> in list", child.XMLName.Local)
			}
			v, err := decodeNode(child)
			if err != nil {
				return mapstream.Null(), fmt.Errorf("[%d]: %w", i, err)
			}
			list = append(list, v)
		}
		return mapstream.List(list...), nil
	case "map":
		m, err := decodeEntries(n.Children)
		if err != nil {
			return mapstream.Null(), err
		}
		return mapstream.MapValue(m), nil
	}
	return mapstream.Null(), fmt.Errorf("unknown kind %q", n.Kind)
}
