// Package yaml provides a YAML codec for mapstream maps.
//
// Encoding goes through yaml.Node so mappings keep the map's insertion
// order and floats stay floats. Decoding walks the node tree, keeping
// document order.
package yaml

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zoobzio/mapstream"
	"gopkg.in/yaml.v3"
)

const contentType = "application/yaml"

// yamlCodec implements mapstream.Codec for YAML.
type yamlCodec struct{}

// New returns a YAML codec.
func New() mapstream.Codec {
	return &yamlCodec{}
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return contentType
}

// Encode renders m as a YAML mapping.
func (c *yamlCodec) Encode(m *mapstream.Map) ([]byte, error) {
	node, err := mapNode(m)
	if err != nil {
		return nil, mapstream.NewCodecError(mapstream.ErrEncode, contentType, err)
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return nil, mapstream.NewCodecError(mapstream.ErrEncode, contentType, err)
	}
	return out, nil
}

// Decode parses a YAML mapping.
func (c *yamlCodec) Decode(data []byte) (*mapstream.Map, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, mapstream.NewCodecError(mapstream.ErrDecode, contentType, err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, mapstream.NewCodecError(mapstream.ErrDecode, contentType,
			fmt.Errorf("document is not a mapping"))
	}
	m, err := decodeMapping(root)
	if err != nil {
		return nil, mapstream.NewCodecError(mapstream.ErrDecode, contentType, err)
	}
	return m, nil
}

func mapNode(m *mapstream.Map) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	var err error
	m.Range(func(k string, v mapstream.Value) bool {
		var vn *yaml.Node
		if vn, err = valueNode(v); err != nil {
			return false
		}
		node.Content = append(node.Content, scalar("!!str", k), vn)
		return true
	})
	return node, err
}

func valueNode(v mapstream.Value) (*yaml.Node, error) {
	switch v.Kind() {
	case mapstream.KindNull:
		return scalar("!!null", "null"), nil
	case mapstream.KindBool:
		b, _ := v.AsBool()
		return scalar("!!bool", strconv.FormatBool(b)), nil
	case mapstream.KindInt:
		i, _ := v.AsInt()
		return scalar("!!int", strconv.FormatInt(i, 10)), nil
	case mapstream.KindFloat:
		f, _ := v.AsFloat()
		return scalar("!!float", formatFloat(f)), nil
	case mapstream.KindString:
		s, _ := v.AsString()
		return scalar("!!str", s), nil
	case mapstream.KindList:
		list, _ := v.AsList()
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range list {
			n, err := valueNode(e)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, n)
		}
		return seq, nil
	case mapstream.KindMap:
		nested, _ := v.AsMap()
		return mapNode(nested)
	}
	var n yaml.Node
	if err := n.Encode(v.Interface()); err != nil {
		return nil, err
	}
	return &n, nil
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func decodeMapping(n *yaml.Node) (*mapstream.Map, error) {
	m := mapstream.NewMap()
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, vn := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: mapping key is not a scalar", k.Line)
		}
		v, err := decodeNode(vn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k.Value, err)
		}
		m.Set(k.Value, v)
	}
	return m, nil
}

func decodeNode(n *yaml.Node) (mapstream.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return decodeNode(n.Alias)
	case yaml.MappingNode:
		m, err := decodeMapping(n)
		if err != nil {
			return mapstream.Null(), err
		}
		return mapstream.MapValue(m), nil
	case yaml.SequenceNode:
		list := make([]mapstream.Value, len(n.Content))
		for i, e := range n.Content {
			v, err := decodeNode(e)
			if err != nil {
				return mapstream.Null(), fmt.Errorf("[%d]: %w", i, err)
			}
			list[i] = v
		}
		return mapstream.List(list...), nil
	}
	var x any
	if err := n.Decode(&x); err != nil {
		return mapstream.Null(), err
	}
	return mapstream.FromNative(x)
}
