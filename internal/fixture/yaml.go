package fixture

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gopkg.in/yaml.v3"
)

// loadYAML decodes every document of a YAML stream. A stream document that
// is a sequence contributes each of its elements.
func loadYAML(name string, data []byte) ([]bson.D, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var docs []bson.D
	for {
		var root yaml.Node
		err := dec.Decode(&root)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "%s: parse YAML", name)
		}
		if len(root.Content) == 0 {
			continue
		}

		top := resolveAlias(root.Content[0])
		switch top.Kind {
		case yaml.MappingNode:
			d, err := yamlMapping(name, top)
			if err != nil {
				return nil, err
			}
			docs = append(docs, d)
		case yaml.SequenceNode:
			for _, item := range top.Content {
				item = resolveAlias(item)
				if item.Kind != yaml.MappingNode {
					return nil, yamlError(name, item, "expected a mapping (document), got %s", item.ShortTag())
				}
				d, err := yamlMapping(name, item)
				if err != nil {
					return nil, err
				}
				docs = append(docs, d)
			}
		default:
			return nil, yamlError(name, top, "expected a mapping or a sequence of mappings, got %s", top.ShortTag())
		}
	}
	return docs, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func yamlMapping(name string, n *yaml.Node) (bson.D, error) {
	d := make(bson.D, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode := resolveAlias(n.Content[i])
		if keyNode.Kind != yaml.ScalarNode {
			return nil, yamlError(name, keyNode, "mapping keys must be scalars")
		}
		v, err := yamlValue(name, n.Content[i+1])
		if err != nil {
			return nil, err
		}
		d = append(d, bson.E{Key: keyNode.Value, Value: v})
	}
	return d, nil
}

func yamlValue(name string, n *yaml.Node) (any, error) {
	n = resolveAlias(n)
	switch n.Kind {
	case yaml.MappingNode:
		return yamlMapping(name, n)
	case yaml.SequenceNode:
		arr := make(bson.A, len(n.Content))
		for i, item := range n.Content {
			v, err := yamlValue(name, item)
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return arr, nil
	case yaml.ScalarNode:
		return yamlScalar(name, n)
	default:
		return nil, yamlError(name, n, "unexpected YAML node")
	}
}

// yamlScalar maps resolved YAML tags onto stored types. Timestamps become
// dates; integers follow the same int32/int64 rule as Extended JSON.
func yamlScalar(name string, n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, yamlError(name, n, "%v", err)
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, yamlError(name, n, "%v", err)
		}
		return smallInt(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, yamlError(name, n, "%v", err)
		}
		return f, nil
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return nil, yamlError(name, n, "%v", err)
		}
		return primitive.NewDateTimeFromTime(t.UTC()), nil
	default:
		return n.Value, nil
	}
}

func yamlError(name string, n *yaml.Node, format string, args ...any) error {
	return &Error{File: name, Line: n.Line, Column: n.Column, Message: fmt.Sprintf(format, args...)}
}
