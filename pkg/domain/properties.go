package domain

import (
	"encoding/json"
	"fmt"
	"maps"

	"gopkg.in/yaml.v3"
)

// Kind identifies which scalar a Value holds.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

// Value is a property value. Only booleans and strings are representable.
type Value struct {
	kind Kind
	b    bool
	s    string
}

// Bool wraps a boolean property value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String wraps a string property value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// ValueOf converts a decoded scalar (from JSON, YAML or a generic map) into a Value.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrInvalidValue, v)
	}
}

// Kind reports the kind of scalar held.
func (v Value) Kind() Kind { return v.kind }

// AsBool returns the boolean and true if the value is a bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsString returns the string and true if the value is a string.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// Interface returns the underlying scalar, or nil for the zero Value.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindString:
		return v.s
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindInvalid {
		return nil, ErrInvalidValue
	}
	return json.Marshal(v.Interface())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) MarshalYAML() (any, error) {
	if v.kind == KindInvalid {
		return nil, ErrInvalidValue
	}
	return v.Interface(), nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d is not a scalar", ErrInvalidValue, node.Line)
	}
	switch node.ShortTag() {
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		*v = Bool(b)
	case "!!str":
		*v = String(node.Value)
	default:
		return fmt.Errorf("%w: %s at line %d", ErrInvalidValue, node.ShortTag(), node.Line)
	}
	return nil
}

// Properties is the open key/value bag carried by Nodes and Transitions.
// See KeyIsInitial, KeyExpectedResult and KeyInputData for the keys the
// generator understands.
type Properties map[string]Value

// Get returns the value stored under key.
func (p Properties) Get(key string) (Value, bool) {
	v, ok := p[key]
	return v, ok
}

// Set stores a value under key.
func (p Properties) Set(key string, v Value) { p[key] = v }

// Delete removes key. Missing keys are ignored.
func (p Properties) Delete(key string) { delete(p, key) }

// Flag returns the boolean stored under key, false when absent or not a bool.
func (p Properties) Flag(key string) bool {
	b, ok := p[key].AsBool()
	return ok && b
}

// Text returns the string stored under key and whether it was present as a string.
func (p Properties) Text(key string) (string, bool) {
	return p[key].AsString()
}

// Clone returns an independent copy. A nil bag clones to an empty one.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	maps.Copy(out, p)
	return out
}
