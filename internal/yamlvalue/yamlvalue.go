// Package yamlvalue converts between YAML documents and FastRPC value
// trees.
//
// YAML distinguishes integers from floats and strings from binaries
// with tags, which FastRPC host values cannot express on their own.
// Params records that information as encoding hints, so that a YAML
// float such as "1.0" encodes as a FastRPC double.
package yamlvalue

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/danderson/fastrpc"
	"gopkg.in/yaml.v3"
)

// Params parses a YAML document containing a sequence of call
// parameters. It returns the parameters, and the hints needed to
// encode them with their YAML types.
//
// An empty document is an empty parameter list.
func Params(data []byte) ([]any, fastrpc.PathHints, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, fmt.Errorf("YAML parse error: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, fastrpc.PathHints{}, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.SequenceNode {
		return nil, nil, fmt.Errorf("line %d: parameters must be a YAML sequence", doc.Line)
	}

	hints := fastrpc.PathHints{}
	params := make([]any, 0, len(doc.Content))
	for i, n := range doc.Content {
		v, err := FromNode(n, strconv.Itoa(i), hints)
		if err != nil {
			return nil, nil, err
		}
		params = append(params, v)
	}
	return params, hints, nil
}

// FromNode converts n, found at the given hint path, into a FastRPC
// host value. Hints for ambiguous values are added to hints.
//
// Mappings become [fastrpc.Struct] in document order, sequences
// become []any, and scalars convert according to their resolved
// tag.
func FromNode(n *yaml.Node, path string, hints fastrpc.PathHints) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return FromNode(n.Content[0], path, hints)
	case yaml.AliasNode:
		return FromNode(n.Alias, path, hints)
	case yaml.SequenceNode:
		ret := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := FromNode(c, fastrpc.Path(path, i), hints)
			if err != nil {
				return nil, err
			}
			ret = append(ret, v)
		}
		return ret, nil
	case yaml.MappingNode:
		ret := make(fastrpc.Struct, 0, len(n.Content)/2)
		for i := 0; i < len(n.Content)-1; i += 2 {
			k, vn := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: struct member names must be scalars", k.Line)
			}
			v, err := FromNode(vn, fastrpc.Path(path, k.Value), hints)
			if err != nil {
				return nil, err
			}
			ret = append(ret, fastrpc.Member{Name: k.Value, Value: v})
		}
		return ret, nil
	case yaml.ScalarNode:
		return scalar(n, path, hints)
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node kind %v", n.Line, n.Kind)
}

func scalar(n *yaml.Node, path string, hints fastrpc.PathHints) (any, error) {
	switch tag := n.ShortTag(); tag {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return i, nil
		}
		var u uint64
		if err := n.Decode(&u); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return u, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		hints[path] = fastrpc.HintFloat
		return f, nil
	case "!!binary":
		bs, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid !!binary: %w", n.Line, err)
		}
		return bs, nil
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return t, nil
	case "!!str":
		return n.Value, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML tag %s", n.Line, tag)
	}
}

// ToNode converts a decoded FastRPC value into a YAML node. Doubles
// and binaries carry explicit tags where YAML would otherwise read
// them back as a different type.
func ToNode(v any) (*yaml.Node, error) {
	switch v := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}, nil
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v, 10)}, nil
	case uint64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatUint(v, 10)}, nil
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(v)}, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}, nil
	case []byte:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!binary", Value: base64.StdEncoding.EncodeToString(v)}, nil
	case time.Time:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: v.Format(time.RFC3339)}, nil
	case []any:
		ret := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v {
			n, err := ToNode(e)
			if err != nil {
				return nil, err
			}
			ret.Content = append(ret.Content, n)
		}
		return ret, nil
	case fastrpc.Struct:
		ret := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range v {
			n, err := ToNode(m.Value)
			if err != nil {
				return nil, err
			}
			k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Name}
			ret.Content = append(ret.Content, k, n)
		}
		return ret, nil
	}
	return nil, fmt.Errorf("no YAML representation for %T", v)
}

// MessageNode converts a decoded message into a YAML mapping.
func MessageNode(msg fastrpc.Message) (*yaml.Node, error) {
	var s fastrpc.Struct
	switch m := msg.(type) {
	case *fastrpc.Call:
		s = fastrpc.Struct{{Name: "method", Value: m.Method}, {Name: "params", Value: m.Params}}
	case *fastrpc.Response:
		s = fastrpc.Struct{{Name: "response", Value: m.Value}}
	default:
		return nil, fmt.Errorf("unknown message type %T", msg)
	}
	return ToNode(s)
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
	return strconv.FormatFloat(f, 'g', -1, 64)
}
