package profile

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Kind tells which variant a Content value holds.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "empty"
	}
}

// Content is the value of one profile section: a piece of text, a list of
// nested contents or an object such as a role record. Objects are scanned as
// their flattened JSON text.
type Content struct {
	kind  Kind
	text  string
	items []Content
	role  Role
}

// Role carries the attributes of an object content that influence scoring.
type Role struct {
	Current bool
	Years   float64
}

type roleFields struct {
	Current         any `mapstructure:"current"`
	YearsExperience any `mapstructure:"yearsExperience"`
	Duration        any `mapstructure:"duration"`
}

// Text returns a text content.
func Text(s string) Content {
	return Content{kind: KindText, text: s}
}

// List returns a list content.
func List(items ...Content) Content {
	return Content{kind: KindList, items: items}
}

// Strings returns a list content made of text items.
func Strings(values ...string) Content {
	items := make([]Content, 0, len(values))
	for _, v := range values {
		items = append(items, Text(v))
	}
	return List(items...)
}

// Object returns an object content built from any JSON-marshalable value.
// Struct field order is kept in the flattened text.
func Object(v any) (Content, error) {
	raw, err := marshalNoEscape(v)
	if err != nil {
		return Content{}, fmt.Errorf("marshal object content: %w", err)
	}
	return objectFromJSON(raw)
}

// MustObject is like Object but panics on values that cannot be marshaled.
func MustObject(v any) Content {
	c, err := Object(v)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Content) Kind() Kind { return c.kind }

// Text returns the scanned text of a text or object content.
func (c Content) Text() string { return c.text }

func (c Content) Items() []Content { return c.items }

func (c Content) Role() Role { return c.role }

func (c Content) IsEmpty() bool {
	switch c.kind {
	case KindText, KindObject:
		return c.text == ""
	case KindList:
		return len(c.items) == 0
	default:
		return true
	}
}

func objectFromJSON(raw []byte) (Content, error) {
	var compacted bytes.Buffer
	if err := json.Compact(&compacted, raw); err != nil {
		return Content{}, fmt.Errorf("compact object content: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(compacted.Bytes(), &fields); err != nil {
		return Content{}, fmt.Errorf("decode object content: %w", err)
	}

	return Content{
		kind: KindObject,
		text: compacted.String(),
		role: roleFromFields(fields),
	}, nil
}

func roleFromFields(fields map[string]any) Role {
	var rf roleFields
	if err := mapstructure.Decode(fields, &rf); err != nil {
		return Role{}
	}

	current, ok := rf.Current.(bool)

	years := 0.0
	for _, candidate := range []any{rf.YearsExperience, rf.Duration} {
		if v, err := cast.ToFloat64E(candidate); err == nil && v > 0 {
			years = v
			break
		}
	}

	return Role{Current: ok && current, Years: years}
}

// UnmarshalJSON decodes strings, arrays and objects. Other JSON values
// (numbers, booleans, null) decode to an empty content.
func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*c = Content{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*c = Text(s)
	case '[':
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return err
		}
		items := make([]Content, 0, len(raws))
		for _, raw := range raws {
			var item Content
			if err := item.UnmarshalJSON(raw); err != nil {
				return err
			}
			items = append(items, item)
		}
		*c = List(items...)
	case '{':
		obj, err := objectFromJSON(trimmed)
		if err != nil {
			return err
		}
		*c = obj
	default:
		*c = Content{}
	}

	return nil
}

// MarshalJSON writes the content back in its natural JSON shape.
func (c Content) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case KindText:
		return marshalNoEscape(c.text)
	case KindList:
		return marshalNoEscape(c.items)
	case KindObject:
		return []byte(c.text), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalYAML decodes a YAML node. Mapping key order is kept in the
// flattened object text.
func (c *Content) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			*c = Content{}
			return nil
		}
		return c.UnmarshalYAML(node.Content[0])
	case yaml.AliasNode:
		return c.UnmarshalYAML(node.Alias)
	case yaml.ScalarNode:
		if node.ShortTag() != "!!str" {
			*c = Content{}
			return nil
		}
		*c = Text(node.Value)
	case yaml.SequenceNode:
		items := make([]Content, 0, len(node.Content))
		for _, child := range node.Content {
			var item Content
			if err := item.UnmarshalYAML(child); err != nil {
				return err
			}
			items = append(items, item)
		}
		*c = List(items...)
	case yaml.MappingNode:
		var buf bytes.Buffer
		if err := writeOrderedJSON(&buf, node); err != nil {
			return err
		}
		obj, err := objectFromJSON(buf.Bytes())
		if err != nil {
			return err
		}
		*c = obj
	default:
		*c = Content{}
	}

	return nil
}

func writeOrderedJSON(buf *bytes.Buffer, node *yaml.Node) error {
	switch node.Kind {
	case yaml.AliasNode:
		return writeOrderedJSON(buf, node.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(node.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := marshalNoEscape(node.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeOrderedJSON(buf, node.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, child := range node.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeOrderedJSON(buf, child); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		var v any
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("decode yaml scalar: %w", err)
		}
		raw, err := marshalNoEscape(v)
		if err != nil {
			return err
		}
		buf.Write(raw)
	}
	return nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
