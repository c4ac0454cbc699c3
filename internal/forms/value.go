// Package forms binds submitted form data to models. Every field arrives as
// text, is cleaned and validated, and errors are reported per field.
package forms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Value is a raw form field. It accepts JSON strings and numbers, and YAML
// scalars, so clients may send either "0123456" or 123.
type Value string

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value(strings.TrimSpace(s))
	case len(b) > 0 && (b[0] == '-' || (b[0] >= '0' && b[0] <= '9')):
		*v = Value(b)
	default:
		return fmt.Errorf("form value must be a string or number, got %s", b)
	}
	return nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: form value must be a scalar", node.Line)
	}
	if node.Tag == "!!null" {
		*v = ""
		return nil
	}
	*v = Value(strings.TrimSpace(node.Value))
	return nil
}

func (v Value) String() string {
	return string(v)
}
