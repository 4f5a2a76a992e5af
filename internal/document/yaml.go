package document

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a YAML mapping into a document. Values are normalized to
// the JSON data model so templates see the same types either way.
func ParseYAML(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}

	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrConfigParse)
	}

	top := root.Content[0]
	if top.Kind == yaml.AliasNode {
		top = top.Alias
	}
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrConfigParse)
	}

	doc := New()
	for i := 0; i+1 < len(top.Content); i += 2 {
		keyNode, valueNode := top.Content[i], top.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: line %d: keys must be scalars", ErrConfigParse, keyNode.Line)
		}

		value, err := fromYAMLNode(valueNode)
		if err != nil {
			return nil, fmt.Errorf("%w: value of %q: %w", ErrConfigParse, keyNode.Value, err)
		}
		doc.Set(keyNode.Value, value)
	}

	return doc, nil
}

func fromYAMLNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return fromYAMLNode(node.Alias)

	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			value, err := fromYAMLNode(item)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		return out, nil

	case yaml.MappingNode:
		out := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: keys must be scalars", keyNode.Line)
			}
			value, err := fromYAMLNode(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[keyNode.Value] = value
		}
		return out, nil

	case yaml.ScalarNode:
		return fromYAMLScalar(node)
	}

	return nil, fmt.Errorf("line %d: unsupported YAML node", node.Line)
}

// jsonNumberPattern is the JSON number grammar. YAML numbers written this way
// keep their literal text.
var jsonNumberPattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

func fromYAMLScalar(node *yaml.Node) (any, error) {
	switch node.ShortTag() {
	case "!!null":
		return nil, nil

	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil

	case "!!int":
		if jsonNumberPattern.MatchString(node.Value) {
			return json.Number(node.Value), nil
		}
		var i int64
		if err := node.Decode(&i); err != nil {
			var u uint64
			if uerr := node.Decode(&u); uerr != nil {
				return nil, err
			}
			return json.Number(strconv.FormatUint(u, 10)), nil
		}
		return json.Number(strconv.FormatInt(i, 10)), nil

	case "!!float":
		if jsonNumberPattern.MatchString(node.Value) {
			return json.Number(node.Value), nil
		}
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("line %d: %s is not representable in JSON", node.Line, node.Value)
		}
		return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	}

	return node.Value, nil
}
