package envs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/envs/internal/coerce"
)

// Var pairs a key with its declaration.
type Var struct {
	Key  string
	Spec Spec
}

// Vars is an ordered list of declarations.
//
// In YAML it is a mapping from key to either a scalar shorthand or a full
// declaration:
//
//	PORT: 8080
//	DEBUG: false
//	API_URL:
//	  default: http://localhost:3000
//	  release: https://api.example.com
//	  required: true
//	FEATURES:
//	  type: json
//	  default: {beta: false}
//
// The keys default, required, override, checkDuplicate and type are options;
// every other key is a per-environment value.
type Vars []Var

// UnmarshalYAML decodes declarations in document order.
func (v *Vars) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("vars must be a mapping (line %d)", node.Line)
	}

	out := make(Vars, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		spec, err := decodeSpec(valueNode)
		if err != nil {
			return fmt.Errorf("var %s: %w", keyNode.Value, err)
		}
		out = append(out, Var{Key: keyNode.Value, Spec: spec})
	}
	*v = out
	return nil
}

// LoadVarsFile reads YAML declarations from path.
func LoadVarsFile(path string) (Vars, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vars file: %w", err)
	}

	var vars Vars
	if err := yaml.Unmarshal(data, &vars); err != nil {
		return nil, fmt.Errorf("parse vars file %s: %w", path, err)
	}
	return vars, nil
}

func decodeSpec(node *yaml.Node) (Spec, error) {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}

	switch node.Kind {
	case yaml.ScalarNode:
		return decodeShorthand(node)
	case yaml.MappingNode:
		return decodeOptions(node)
	}
	return nil, fmt.Errorf("unsupported declaration at line %d", node.Line)
}

func decodeShorthand(node *yaml.Node) (Spec, error) {
	switch node.ShortTag() {
	case "!!null":
		return Options{}, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return BoolValue(b), nil
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		return NumberValue(f), nil
	}
	return StringValue(node.Value), nil
}

func decodeOptions(node *yaml.Node) (Spec, error) {
	var opts Options
	for i := 0; i+1 < len(node.Content); i += 2 {
		name, value := node.Content[i].Value, node.Content[i+1]

		switch name {
		case "default":
			if err := value.Decode(&opts.Default); err != nil {
				return nil, fmt.Errorf("default: %w", err)
			}
		case "required":
			if err := decodeFlag(value, &opts.Required); err != nil {
				return nil, fmt.Errorf("required: %w", err)
			}
		case "override":
			if err := decodeFlag(value, &opts.Override); err != nil {
				return nil, fmt.Errorf("override: %w", err)
			}
		case "checkDuplicate":
			if err := decodeFlag(value, &opts.CheckDuplicate); err != nil {
				return nil, fmt.Errorf("checkDuplicate: %w", err)
			}
		case "type":
			kind, err := coerce.ParseKind(value.Value)
			if err != nil {
				return nil, err
			}
			opts.Type = kind
		default:
			var envValue any
			if err := value.Decode(&envValue); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			if opts.Env == nil {
				opts.Env = make(map[string]any)
			}
			opts.Env[name] = envValue
		}
	}
	return opts, nil
}

func decodeFlag(node *yaml.Node, dst **bool) error {
	var b bool
	if err := node.Decode(&b); err != nil {
		return err
	}
	*dst = &b
	return nil
}
